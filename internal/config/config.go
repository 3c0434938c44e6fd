package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/domain"
	platformkafka "github.com/ChristopherHoole/LavaLava-Payments/platform/kafka"
	platformobservability "github.com/ChristopherHoole/LavaLava-Payments/platform/observability"
)

// Env представляет окружение приложения
type Env string

const (
	// EnvLocal - локальное окружение (для разработки на хосте)
	EnvLocal Env = "local"
	// EnvDocker - Docker окружение (для запуска в контейнерах)
	EnvDocker Env = "docker"
)

// WebhookPath путь, на который Mercado Pago присылает уведомления
const WebhookPath = "/webhook/mercadopago"

// MercadoPago настройки доступа к API провайдера
type MercadoPago struct {
	AccessToken     string
	PayerEmail      string
	NotificationURL string
	APIBaseURL      string
	HTTPTimeout     time.Duration
}

// Config содержит конфигурацию relay. Создаётся один раз при старте
// и передаётся в конструкторы, дальше не меняется.
type Config struct {
	AppEnv          Env
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string

	MercadoPago MercadoPago

	CORSAllowedOrigins []string

	WebhookKafkaEnabled bool
	Kafka               platformkafka.Config

	Observability platformobservability.Config
}

// envConfig плоское отображение переменных окружения (caarlos0/env)
type envConfig struct {
	AppEnv          string        `env:"APP_ENV" envDefault:"local"`
	Port            string        `env:"PORT" envDefault:"3000"`
	HTTPAddr        string        `env:"HTTP_ADDR"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT"`

	AccessToken     string        `env:"MP_ACCESS_TOKEN"`
	PayerEmail      string        `env:"MP_PAYER_EMAIL"`
	NotificationURL string        `env:"MP_NOTIFICATION_URL"`
	APIBaseURL      string        `env:"MP_API_BASE_URL" envDefault:"https://api.mercadopago.com"`
	HTTPTimeout     time.Duration `env:"MP_HTTP_TIMEOUT" envDefault:"10s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	WebhookKafkaEnabled bool `env:"WEBHOOK_KAFKA_ENABLED" envDefault:"false"`
}

// Load загружает конфигурацию из переменных окружения.
// Отсутствие MP_ACCESS_TOKEN / MP_PAYER_EMAIL не ошибка старта: такие запросы
// падают по отдельности с ConfigurationError.
func Load() (Config, error) {
	var raw envConfig
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	appEnv := Env(raw.AppEnv)
	if appEnv != EnvLocal && appEnv != EnvDocker {
		return Config{}, fmt.Errorf("invalid APP_ENV: %s (must be 'local' or 'docker')", raw.AppEnv)
	}

	cfg := Config{
		AppEnv:          appEnv,
		HTTPAddr:        raw.HTTPAddr,
		ShutdownTimeout: raw.ShutdownTimeout,
		LogLevel:        raw.LogLevel,
		LogFormat:       raw.LogFormat,
		MercadoPago: MercadoPago{
			AccessToken:     strings.TrimSpace(raw.AccessToken),
			PayerEmail:      strings.TrimSpace(raw.PayerEmail),
			NotificationURL: strings.TrimSpace(raw.NotificationURL),
			APIBaseURL:      strings.TrimRight(raw.APIBaseURL, "/"),
			HTTPTimeout:     raw.HTTPTimeout,
		},
		CORSAllowedOrigins:  trimAll(raw.CORSAllowedOrigins),
		WebhookKafkaEnabled: raw.WebhookKafkaEnabled,
	}

	// HTTP_ADDR, по умолчанию из PORT
	if cfg.HTTPAddr == "" {
		if cfg.AppEnv == EnvLocal {
			cfg.HTTPAddr = "127.0.0.1:" + raw.Port
		} else {
			cfg.HTTPAddr = "0.0.0.0:" + raw.Port
		}
	}

	// MP_NOTIFICATION_URL, по умолчанию PUBLIC_BASE_URL + WebhookPath
	if cfg.MercadoPago.NotificationURL == "" {
		base := raw.PublicBaseURL
		if base == "" {
			base = "http://localhost:" + raw.Port
		}
		cfg.MercadoPago.NotificationURL = strings.TrimRight(base, "/") + WebhookPath
	}

	if err := platformkafka.LoadEnv(&cfg.Kafka); err != nil {
		return Config{}, err
	}

	if err := platformobservability.LoadEnv(&cfg.Observability); err != nil {
		return Config{}, err
	}
	cfg.Observability.ServiceName = "pixrelay"
	cfg.Observability.DeploymentEnvironment = string(cfg.AppEnv)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.MercadoPago.HTTPTimeout <= 0 {
		return fmt.Errorf("MP_HTTP_TIMEOUT must be positive")
	}
	if err := validateAbsoluteURL("MP_API_BASE_URL", c.MercadoPago.APIBaseURL); err != nil {
		return err
	}
	if err := validateAbsoluteURL("MP_NOTIFICATION_URL", c.MercadoPago.NotificationURL); err != nil {
		return err
	}
	if c.WebhookKafkaEnabled {
		if err := c.Kafka.Validate(); err != nil {
			return fmt.Errorf("WEBHOOK_KAFKA_ENABLED=true: %w", err)
		}
	}
	return c.Observability.Validate()
}

// RequireToken возвращает ConfigurationError, если MP_ACCESS_TOKEN не задан.
// Вызывается до любого обращения к провайдеру.
func (m MercadoPago) RequireToken() error {
	if m.AccessToken == "" {
		return domain.NewConfigurationError(domain.MsgTokenMissing)
	}
	return nil
}

// Log выводит конфигурацию в лог (токен маскируется)
func (c Config) Log(logger *zap.Logger) {
	logger.Info("Config loaded",
		zap.String("APP_ENV", string(c.AppEnv)),
		zap.String("HTTP_ADDR", c.HTTPAddr),
		zap.Duration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout),
		zap.String("MP_ACCESS_TOKEN", MaskToken(c.MercadoPago.AccessToken)),
		zap.Bool("MP_PAYER_EMAIL_SET", c.MercadoPago.PayerEmail != ""),
		zap.String("MP_NOTIFICATION_URL", c.MercadoPago.NotificationURL),
		zap.String("MP_API_BASE_URL", c.MercadoPago.APIBaseURL),
		zap.Duration("MP_HTTP_TIMEOUT", c.MercadoPago.HTTPTimeout),
		zap.Strings("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins),
		zap.Bool("WEBHOOK_KAFKA_ENABLED", c.WebhookKafkaEnabled),
		zap.Bool("OTEL_ENABLED", c.Observability.Enabled),
	)
}

// MaskToken маскирует токен для логов и /debug/env.
// Пустой -> "MISSING", до 8 символов -> "SET", иначе первые 4 + "..." + последние 4.
func MaskToken(token string) string {
	if token == "" {
		return "MISSING"
	}
	if len(token) <= 8 {
		return "SET"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func validateAbsoluteURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q is not an absolute URL", name, raw)
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
