package otel

import (
	"os"
	"strconv"
)

// Config holds OTEL exporter configuration.
type Config struct {
	Endpoint string
	Enabled  bool
	Insecure bool
}

// LoadConfig overlays the COVARSIM_OTEL_* environment variables on base.
// Unset variables leave the base values untouched, so file-level settings
// survive unless explicitly overridden.
func LoadConfig(base Config) Config {
	if v := os.Getenv("COVARSIM_OTEL_ENDPOINT"); v != "" {
		base.Endpoint = v
	}
	if v := os.Getenv("COVARSIM_OTEL_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			base.Enabled = b
		}
	}
	if v := os.Getenv("COVARSIM_OTEL_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			base.Insecure = b
		}
	}
	return base
}
