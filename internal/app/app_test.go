package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/config"
	platformkafka "github.com/ChristopherHoole/LavaLava-Payments/platform/kafka"
	platformobservability "github.com/ChristopherHoole/LavaLava-Payments/platform/observability"
)

func testConfig(apiBaseURL string) config.Config {
	return config.Config{
		AppEnv:          config.EnvLocal,
		HTTPAddr:        "127.0.0.1:0",
		ShutdownTimeout: time.Second,
		LogLevel:        "error",
		MercadoPago: config.MercadoPago{
			AccessToken:     "APP_USR-1234567890-abcd",
			PayerEmail:      "payer@example.com",
			NotificationURL: "http://localhost:3000/webhook/mercadopago",
			APIBaseURL:      apiBaseURL,
			HTTPTimeout:     time.Second,
		},
		CORSAllowedOrigins: []string{"*"},
		Kafka: platformkafka.Config{
			Brokers:      []string{"localhost:19092"},
			Topic:        "mercadopago.webhook.received",
			WriteTimeout: time.Second,
		},
		Observability: platformobservability.Config{
			ServiceName:   "pixrelay",
			SamplingRatio: 1,
		},
	}
}

func TestBuild_WiresRelay(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1, "status": "pending"}`))
	}))
	defer provider.Close()

	a, err := Build(testConfig(provider.URL))
	require.NoError(t, err)
	defer a.shutdownMgr.Shutdown()

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/pix/create",
		bytes.NewBufferString(`{"amount": 10, "description": "order"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok": true, "payment_id": 1, "status": "pending", "qr_code": null, "qr_code_base64": null, "ticket_url": null}`, rec.Body.String())

	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, "OK", rec.Body.String())
}

func TestBuild_KafkaPublisherEnabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.WebhookKafkaEnabled = true

	a, err := Build(cfg)
	require.NoError(t, err)
	defer a.shutdownMgr.Shutdown()

	require.NotNil(t, a.Handler())
}

func TestBuild_InvalidLogLevel(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.LogLevel = "loud"

	_, err := Build(cfg)
	require.Error(t, err)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	a, err := Build(testConfig("http://127.0.0.1:1"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}
