package instrumentation

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Exporter types.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Outcome values for metric labels.
const (
	ResultSuccess            = "success"
	ResultError              = "error"
	ResultNoAccount          = "no_account"
	ResultCredentialsMissing = "credentials_missing"
	ResultFallback           = "fallback"
	ResultUnknown            = "unknown"
)

// Config holds the configuration for OpenTelemetry instrumentation.
type Config struct {
	// ServiceName is the reported service name (default: mailfold).
	ServiceName string `yaml:"serviceName"`

	// ServiceVersion is the version of the service, set from the build.
	ServiceVersion string `yaml:"-"`

	// ServiceInstanceID is the unique instance identifier (default: hostname).
	ServiceInstanceID string `yaml:"serviceInstanceId"`

	// Enabled determines if instrumentation is active (default: true).
	Enabled bool `yaml:"enabled"`

	// MetricsExporter is "prometheus", "otlp" or "stdout" (default: prometheus).
	MetricsExporter string `yaml:"metricsExporter"`

	// TracingExporter is "otlp", "stdout" or "none" (default: none).
	TracingExporter string `yaml:"tracingExporter"`

	// OTLPEndpoint is the OTLP collector endpoint, host:port without scheme.
	OTLPEndpoint string `yaml:"otlpEndpoint"`

	// OTLPInsecure disables TLS for OTLP export. Local development only.
	OTLPInsecure bool `yaml:"otlpInsecure"`

	// TraceSamplingRate is the trace sampling ratio, 0.0 to 1.0 (default: 0.1).
	TraceSamplingRate float64 `yaml:"traceSamplingRate"`

	// PrometheusEndpoint is the metrics HTTP path (default: /metrics).
	PrometheusEndpoint string `yaml:"prometheusEndpoint"`
}

// DefaultConfig returns a Config with defaults taken from environment variables.
func DefaultConfig() Config {
	return Config{
		ServiceName:        getEnvOrDefault("OTEL_SERVICE_NAME", "mailfold"),
		ServiceVersion:     "unknown",
		ServiceInstanceID:  getEnvOrDefault("OTEL_SERVICE_INSTANCE_ID", ""),
		Enabled:            getEnvBoolOrDefault("INSTRUMENTATION_ENABLED", true),
		MetricsExporter:    getEnvOrDefault("METRICS_EXPORTER", ExporterPrometheus),
		TracingExporter:    getEnvOrDefault("TRACING_EXPORTER", ExporterNone),
		OTLPEndpoint:       getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:       getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate:  getEnvFloatOrDefault("OTEL_TRACES_SAMPLER_ARG", 0.1),
		PrometheusEndpoint: getEnvOrDefault("PROMETHEUS_ENDPOINT", "/metrics"),
	}
}

// LoadConfigFile overlays settings from a YAML file onto the defaults.
// An empty path returns the defaults unchanged.
func LoadConfigFile(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	validMetrics := map[string]bool{ExporterPrometheus: true, ExporterOTLP: true, ExporterStdout: true}
	if c.MetricsExporter != "" && !validMetrics[c.MetricsExporter] {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}

	validTracing := map[string]bool{ExporterOTLP: true, ExporterStdout: true, ExporterNone: true}
	if c.TracingExporter != "" && !validTracing[c.TracingExporter] {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	if c.MetricsExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP metrics exporter")
	}
	if c.TracingExporter == ExporterOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using OTLP tracing exporter")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
