package httpapi

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/api/http/middleware"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/config"
	platformhealth "github.com/ChristopherHoole/LavaLava-Payments/platform/health/http"
	platformobservability "github.com/ChristopherHoole/LavaLava-Payments/platform/observability"
)

// ServiceName имя сервиса в трейсах и логах
const ServiceName = "pixrelay"

// NewRouter создаёт и настраивает HTTP роутер relay.
// allowedOrigins - origins клиентского приложения для CORS.
func NewRouter(handler *Handler, logger *zap.Logger, allowedOrigins []string) chi.Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	router := chi.NewRouter()

	// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
	router.Use(platformobservability.HTTPMiddleware(ServiceName, logger))
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	router.NotFound(handler.NotFound)
	router.MethodNotAllowed(handler.NotFound)

	router.Get("/", platformhealth.Liveness("OK"))
	router.Get("/health", platformhealth.Handler(nil))
	router.Get("/debug/env", handler.DebugEnv)

	// /qr/create оставлен для старых клиентов, обработчик тот же
	router.Post("/pix/create", handler.CreatePixPayment)
	router.Post("/qr/create", handler.CreatePixPayment)

	// Без id тоже попадаем в обработчик, чтобы ответить 400, а не 404
	router.Get("/pix/status", handler.GetPaymentStatus)
	router.Get("/pix/status/", handler.GetPaymentStatus)
	router.Get("/pix/status/{id}", handler.GetPaymentStatus)

	// Любой метод
	router.HandleFunc(config.WebhookPath, handler.Webhook)

	return router
}
