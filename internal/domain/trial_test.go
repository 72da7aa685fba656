package domain

import (
	"math"
	"testing"
)

func TestResultCollection_Summarize(t *testing.T) {
	tests := []struct {
		name     string
		results  ResultCollection
		expected Summary
	}{
		{
			name: "two trials",
			results: ResultCollection{
				{Cov: 0.1, UnadjustedATE: 2.5, AdjustedATE: 2.1},
				{Cov: -0.1, UnadjustedATE: 1.5, AdjustedATE: 1.9},
			},
			expected: Summary{
				Trials:         2,
				MeanCov:        0,
				MeanUnadjusted: 2.0,
				MeanAdjusted:   2.0,
				SDUnadjusted:   math.Sqrt(0.5), // (0.5^2 + 0.5^2) / 1
				SDAdjusted:     math.Sqrt(0.02),
				BiasUnadjusted: 0,
				BiasAdjusted:   0,
			},
		},
		{
			name: "single trial — no spread",
			results: ResultCollection{
				{Cov: 0.2, UnadjustedATE: 3.0, AdjustedATE: 2.2},
			},
			expected: Summary{
				Trials:         1,
				MeanCov:        0.2,
				MeanUnadjusted: 3.0,
				MeanAdjusted:   2.2,
				SDUnadjusted:   0,
				SDAdjusted:     0,
				BiasUnadjusted: 1.0,
				BiasAdjusted:   0.2,
			},
		},
		{
			name:     "empty collection — all zeros",
			results:  ResultCollection{},
			expected: Summary{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.results.Summarize()
			if got.Trials != tt.expected.Trials {
				t.Errorf("Trials = %d, want %d", got.Trials, tt.expected.Trials)
			}
			fields := []struct {
				name      string
				got, want float64
			}{
				{"MeanCov", got.MeanCov, tt.expected.MeanCov},
				{"MeanUnadjusted", got.MeanUnadjusted, tt.expected.MeanUnadjusted},
				{"MeanAdjusted", got.MeanAdjusted, tt.expected.MeanAdjusted},
				{"SDUnadjusted", got.SDUnadjusted, tt.expected.SDUnadjusted},
				{"SDAdjusted", got.SDAdjusted, tt.expected.SDAdjusted},
				{"BiasUnadjusted", got.BiasUnadjusted, tt.expected.BiasUnadjusted},
				{"BiasAdjusted", got.BiasAdjusted, tt.expected.BiasAdjusted},
			}
			for _, f := range fields {
				if math.Abs(f.got-f.want) > 1e-9 {
					t.Errorf("%s = %v, want %v", f.name, f.got, f.want)
				}
			}
		})
	}
}

func TestDataset_ArmCounts(t *testing.T) {
	ds := Dataset{{Z: 1}, {Z: 0}, {Z: 1}, {Z: 1}}
	treated, control := ds.ArmCounts()
	if treated != 3 || control != 1 {
		t.Errorf("ArmCounts() = (%d, %d), want (3, 1)", treated, control)
	}
}
