package otel

import "testing"

func TestLoadConfig_EnvOverridesBase(t *testing.T) {
	t.Setenv("COVARSIM_OTEL_ENABLED", "true")
	t.Setenv("COVARSIM_OTEL_ENDPOINT", "collector:4317")
	t.Setenv("COVARSIM_OTEL_INSECURE", "")

	got := LoadConfig(Config{Endpoint: "file-configured:4317", Insecure: true})
	if !got.Enabled {
		t.Error("enabled = false, want env override to true")
	}
	if got.Endpoint != "collector:4317" {
		t.Errorf("endpoint = %q, want collector:4317", got.Endpoint)
	}
	if !got.Insecure {
		t.Error("insecure = false, want base value kept when env unset")
	}
}

func TestLoadConfig_NoEnvKeepsBase(t *testing.T) {
	t.Setenv("COVARSIM_OTEL_ENABLED", "")
	t.Setenv("COVARSIM_OTEL_ENDPOINT", "")
	t.Setenv("COVARSIM_OTEL_INSECURE", "")

	base := Config{Endpoint: "collector:4317", Enabled: true}
	if got := LoadConfig(base); got != base {
		t.Errorf("got %+v, want %+v", got, base)
	}
}

func TestLoadConfig_BadBoolIgnored(t *testing.T) {
	t.Setenv("COVARSIM_OTEL_ENABLED", "yes-please")
	t.Setenv("COVARSIM_OTEL_ENDPOINT", "")
	t.Setenv("COVARSIM_OTEL_INSECURE", "")

	if got := LoadConfig(Config{}); got.Enabled {
		t.Error("enabled = true, want unparsable value ignored")
	}
}
