package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ChristopherHoole/LavaLava-Payments/internal/config"
	"github.com/ChristopherHoole/LavaLava-Payments/internal/domain"
)

const testToken = "TEST-1234567890-token"

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(config.MercadoPago{
		AccessToken:     testToken,
		NotificationURL: "https://relay.example.com/webhook/mercadopago",
		APIBaseURL:      baseURL,
		HTTPTimeout:     2 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func validRequest() domain.PaymentCreateRequest {
	return domain.PaymentCreateRequest{
		Amount:      decimal.RequireFromString("1.5"),
		Description: "test",
		PayerEmail:  "payer@example.com",
	}
}

func TestClient_CreatePixPayment_Success(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payments", r.URL.Path)
		require.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := uuid.Parse(r.Header.Get(IdempotencyHeader))
		require.NoError(t, err)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{
			"transaction_amount": 1.5,
			"description": "test",
			"payment_method_id": "pix",
			"payer": {"email": "payer@example.com"},
			"external_reference": "order-42",
			"notification_url": "https://relay.example.com/webhook/mercadopago"
		}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 123, "status": "pending", "status_detail": "pending_waiting_transfer",
			"point_of_interaction": {"transaction_data": {"qr_code": "000201", "qr_code_base64": "iVBORw0", "ticket_url": "https://mp.example/ticket"}}}`))
	}))
	defer srv.Close()

	req := validRequest()
	req.ExternalReference = "order-42"

	result, err := newTestClient(t, srv.URL).CreatePixPayment(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	require.JSONEq(t, `123`, string(result.PaymentID))
	require.JSONEq(t, `"pending"`, string(result.Status))
	require.JSONEq(t, `"pending_waiting_transfer"`, string(result.StatusDetail))
	require.Equal(t, "000201", *result.QRCode)
	require.Equal(t, "iVBORw0", *result.QRCodeBase64)
	require.Equal(t, "https://mp.example/ticket", *result.TicketURL)
	require.Nil(t, result.Raw)
}

func TestClient_CreatePixPayment_FreshIdempotencyKeyPerCall(t *testing.T) {
	keys := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys <- r.Header.Get(IdempotencyHeader)
		_, _ = w.Write([]byte(`{"id": 1, "status": "pending"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.CreatePixPayment(context.Background(), validRequest())
	require.NoError(t, err)
	_, err = c.CreatePixPayment(context.Background(), validRequest())
	require.NoError(t, err)

	first, second := <-keys, <-keys
	require.NotEmpty(t, first)
	require.NotEqual(t, first, second)
}

func TestClient_CreatePixPayment_MissingQRFieldsAreNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 7, "status": "pending", "point_of_interaction": {"transaction_data": {"qr_code": ""}}}`))
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL).CreatePixPayment(context.Background(), validRequest())
	require.NoError(t, err)
	require.Nil(t, result.QRCode)
	require.Nil(t, result.QRCodeBase64)
	require.Nil(t, result.TicketURL)
	require.Nil(t, result.StatusDetail)
}

func TestClient_CreatePixPayment_NonJSONSuccessKeepsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`created, but not json`))
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL).CreatePixPayment(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, result.Raw)
	require.Equal(t, "created, but not json", *result.Raw)
	require.Nil(t, result.PaymentID)
}

func TestClient_CreatePixPayment_ProviderError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{
			name:       "json error body",
			status:     http.StatusBadRequest,
			body:       `{"message": "invalid payer", "status": 400}`,
			wantDetail: `{"message": "invalid payer", "status": 400}`,
		},
		{
			name:       "html error body",
			status:     http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			wantDetail: `{"raw": "<html>bad gateway</html>"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL).CreatePixPayment(context.Background(), validRequest())
			require.Error(t, err)

			var perr *ProviderError
			require.True(t, errors.As(err, &perr))
			require.Equal(t, tt.status, perr.StatusCode)
			require.Equal(t, OpCreatePayment, perr.Operation)

			detail, err := json.Marshal(perr.Body)
			require.NoError(t, err)
			require.JSONEq(t, tt.wantDetail, string(detail))
		})
	}
}

func TestClient_CreatePixPayment_ValidationBeforeNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	tests := []struct {
		name    string
		mutate  func(r *domain.PaymentCreateRequest)
		wantErr error
		wantMsg string
	}{
		{name: "zero amount", mutate: func(r *domain.PaymentCreateRequest) { r.Amount = decimal.Zero }, wantErr: domain.ErrInvalidArgument, wantMsg: "Invalid amount"},
		{name: "negative amount", mutate: func(r *domain.PaymentCreateRequest) { r.Amount = decimal.NewFromInt(-5) }, wantErr: domain.ErrInvalidArgument, wantMsg: "Invalid amount"},
		{name: "blank description", mutate: func(r *domain.PaymentCreateRequest) { r.Description = "  " }, wantErr: domain.ErrInvalidArgument, wantMsg: "Missing description"},
		{name: "no payer email", mutate: func(r *domain.PaymentCreateRequest) { r.PayerEmail = "" }, wantErr: domain.ErrConfiguration, wantMsg: "MP_PAYER_EMAIL missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			_, err := c.CreatePixPayment(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantMsg, err.Error())
		})
	}

	require.Zero(t, calls.Load())
}

func TestClient_MissingToken(t *testing.T) {
	c, err := NewClient(config.MercadoPago{APIBaseURL: "http://127.0.0.1:1", HTTPTimeout: time.Second}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.CreatePixPayment(context.Background(), validRequest())
	require.ErrorIs(t, err, domain.ErrConfiguration)

	_, err = c.GetPaymentStatus(context.Background(), "123")
	require.ErrorIs(t, err, domain.ErrConfiguration)
	require.Equal(t, "MP_ACCESS_TOKEN missing", err.Error())
}

func TestClient_GetPaymentStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/payments/a%2Fb", r.URL.EscapedPath())
		require.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		require.Empty(t, r.Header.Get(IdempotencyHeader))

		_, _ = w.Write([]byte(`{"id": 555, "status": "approved", "status_detail": "accredited",
			"external_reference": "order-42", "transaction_amount": 10.5, "payment_method_id": "pix",
			"payer": {"email": "payer@example.com"}, "date_created": "2024-01-01"}`))
	}))
	defer srv.Close()

	result, err := newTestClient(t, srv.URL).GetPaymentStatus(context.Background(), "a/b")
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load())

	require.JSONEq(t, `555`, string(result.ID))
	require.JSONEq(t, `"approved"`, string(result.Status))
	require.JSONEq(t, `"accredited"`, string(result.StatusDetail))
	require.JSONEq(t, `"order-42"`, string(result.ExternalReference))
	require.JSONEq(t, `10.5`, string(result.TransactionAmount))
	require.JSONEq(t, `"pix"`, string(result.PaymentMethodID))
	require.JSONEq(t, `{"email": "payer@example.com"}`, string(result.Payer))
}

func TestClient_GetPaymentStatus_BlankID(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GetPaymentStatus(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	require.Zero(t, calls.Load())
}

func TestClient_GetPaymentStatus_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Payment not found", "status": 404}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GetPaymentStatus(context.Background(), "999")

	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, http.StatusNotFound, perr.StatusCode)
	require.Equal(t, OpGetPayment, perr.Operation)
	require.Contains(t, perr.Error(), "status 404")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).GetPaymentStatus(context.Background(), "1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to send request")

	var perr *ProviderError
	require.False(t, errors.As(err, &perr))
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(config.MercadoPago{
		AccessToken: testToken,
		APIBaseURL:  srv.URL,
		HTTPTimeout: 50 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.GetPaymentStatus(context.Background(), "1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to send request")
}
