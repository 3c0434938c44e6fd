package http

import (
	"encoding/json"
	"net/http"
)

// Liveness возвращает handler, который всегда отвечает 200 с текстом body.
// Зависимости не проверяются: процесс жив, пока отвечает.
func Liveness(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	}
}

// Handler возвращает JSON health endpoint.
// 200 {"status":"ok"} если readiness не задана или возвращает true,
// 503 {"status":"not ready"} если readiness возвращает false.
func Handler(readiness func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, "ok"
		if readiness != nil && !readiness() {
			status, body = http.StatusServiceUnavailable, "not ready"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": body})
	}
}
