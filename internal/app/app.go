package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/ChristopherHoole/LavaLava-Payments/internal/api/http"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/client/mercadopago"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/config"
	kafkaevent "github.com/ChristopherHoole/LavaLava-Payments/internal/event/kafka"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/service"
	platformlogging "github.com/ChristopherHoole/LavaLava-Payments/platform/logging"
	platformobservability "github.com/ChristopherHoole/LavaLava-Payments/platform/observability"
	platformshutdown "github.com/ChristopherHoole/LavaLava-Payments/platform/shutdown"
)

// App содержит все зависимости для запуска и корректного shutdown relay
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости relay
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	// Создаём logger
	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: httpapi.ServiceName,
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: logger: %w", op, err)
	}

	logger.Info("Building relay", zap.String("op", op), zap.String("http_addr", cfg.HTTPAddr))
	cfg.Log(logger)

	if err := cfg.MercadoPago.RequireToken(); err != nil {
		logger.Warn("MP_ACCESS_TOKEN is not set, provider routes will answer 500")
	}
	if cfg.MercadoPago.PayerEmail == "" {
		logger.Warn("MP_PAYER_EMAIL is not set, payer_email must be sent per request")
	}

	// OpenTelemetry: noop провайдеры, если OTEL_ENABLED=false
	otelShutdown, err := platformobservability.Init(context.Background(), cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("%s: otel: %w", op, err)
	}

	// Клиент Mercado Pago (после Init, чтобы метрики шли в настроенный MeterProvider)
	mpClient, err := mercadopago.NewClient(cfg.MercadoPago, logger)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, fmt.Errorf("%s: mercadopago client: %w", op, err)
	}

	// Публикация webhook в Kafka
	var publisher service.WebhookPublisher
	var closePublisher func(context.Context) error
	if cfg.WebhookKafkaEnabled {
		kafkaPublisher := kafkaevent.NewKafkaWebhookPublisher(logger, cfg.Kafka)
		publisher = kafkaPublisher
		closePublisher = platformshutdown.Close(kafkaPublisher)
		logger.Info("Webhook Kafka publisher enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	} else {
		publisher = kafkaevent.NewNoOpWebhookPublisher(logger)
		logger.Info("Webhook Kafka publisher disabled, using no-op publisher")
	}

	// Создаем service слой с зависимостями
	relayService := service.NewRelayService(logger, cfg.MercadoPago, mpClient, publisher)

	// Создаем HTTP handler и роутер
	handler := httpapi.NewHandler(relayService, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	// Создаём HTTP сервер
	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Создаём shutdown manager
	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	// Регистрируем shutdown функции в обратном порядке выполнения
	shutdownMgr.Add("otel", otelShutdown)
	if closePublisher != nil {
		shutdownMgr.Add("kafka_webhook_publisher", closePublisher)
	}
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
	}, nil
}

// Handler возвращает HTTP handler приложения
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run запускает сервис и блокируется до SIGINT/SIGTERM, отмены ctx или ошибки listener
func (a *App) Run(ctx context.Context) error {
	defer platformlogging.Sync(a.logger)

	a.logger.Info("Starting relay", zap.String("addr", a.httpServer.Addr))
	a.logger.Info("Health check available", zap.String("url", "http://"+a.httpServer.Addr+"/health"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var serveErr error
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
			serveErr = err
			cancel()
		}
	}()

	// Ожидаем сигнал и выполняем shutdown
	a.shutdownMgr.Wait(ctx)

	a.wg.Wait()
	a.logger.Info("Relay stopped")
	return serveErr
}
