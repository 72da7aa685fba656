package domain

// Unit is one simulated observation. Only the realized observables are kept:
// the generator draws potential outcomes internally and discards the
// counterfactual, mirroring what an observational dataset would expose.
type Unit struct {
	Z int     // treatment indicator, 0 or 1
	X int     // binary covariate
	Y float64 // observed outcome
}

// Dataset is an ordered collection of units belonging to a single trial.
type Dataset []Unit

// ArmCounts returns the number of treated and control units.
func (ds Dataset) ArmCounts() (treated, control int) {
	for _, u := range ds {
		if u.Z == 1 {
			treated++
		} else {
			control++
		}
	}
	return treated, control
}
