package config

import "fmt"

// TracingConfig selects the OpenTelemetry span exporter.
type TracingConfig struct {
	// Exporter is none, stdout or otlphttp.
	Exporter    string            `json:"exporter"`
	Endpoint    string            `json:"endpoint"`
	Insecure    bool              `json:"insecure"`
	Headers     map[string]string `json:"headers"`
	SampleRatio float64           `json:"sample_ratio"`
	ServiceName string            `json:"service_name"`
}

func (c *TracingConfig) SetDefaults() {
	if c.Exporter == "" {
		c.Exporter = "none"
	}
	if c.Exporter == "otlphttp" && c.Endpoint == "" {
		c.Endpoint = "http://localhost:4318"
	}
	if c.SampleRatio == 0 {
		c.SampleRatio = 1
	}
	if c.ServiceName == "" {
		c.ServiceName = "sprintplan"
	}
}

func (c TracingConfig) Validate() error {
	switch c.Exporter {
	case "none", "stdout", "otlphttp":
	default:
		return fmt.Errorf("unknown exporter %q", c.Exporter)
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("sample_ratio must be within [0, 1], got %v", c.SampleRatio)
	}
	return nil
}
