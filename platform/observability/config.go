package observability

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Config конфигурация OpenTelemetry (traces + metrics + propagator)
type Config struct {
	// Enabled включить экспорт в OTLP collector
	Enabled bool `env:"OTEL_ENABLED" envDefault:"false"`
	// OTLPEndpoint адрес OTLP gRPC (traces + metrics), например "127.0.0.1:4317" или "otel-collector:4317"
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"127.0.0.1:4317"`
	// SamplingRatio доля трасс для семплирования (0..1), 1.0 = все
	SamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1.0"`
	// ServiceVersion опционально, например из build
	ServiceVersion string `env:"SERVICE_VERSION"`

	// ServiceName и DeploymentEnvironment заполняет сервис, из env не читаются
	ServiceName           string
	DeploymentEnvironment string
}

// LoadEnv читает OTEL_* переменные окружения в cfg
func LoadEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse observability env: %w", err)
	}
	return cfg.Validate()
}

// Validate проверяет корректность конфигурации
func (c Config) Validate() error {
	if c.SamplingRatio < 0 || c.SamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be within 0..1, got %v", c.SamplingRatio)
	}
	if c.Enabled && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED=true")
	}
	return nil
}
