package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Manager управляет graceful shutdown сервиса.
// Ждёт SIGINT/SIGTERM и выполняет зарегистрированные функции в обратном порядке.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	funcs []shutdownFunc
	once  sync.Once
}

type shutdownFunc struct {
	name string
	fn   func(context.Context) error
}

// New создаёт Manager; timeout применяется к каждой функции отдельно
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Add регистрирует shutdown функцию.
// Последняя зарегистрированная выполняется первой.
func (m *Manager) Add(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.funcs = append(m.funcs, shutdownFunc{name: name, fn: fn})
}

// Wait блокируется до SIGINT/SIGTERM или отмены ctx, затем вызывает Shutdown
func (m *Manager) Wait(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	m.logger.Info("Received shutdown signal, starting graceful shutdown")
	m.Shutdown()
}

// Shutdown выполняет зарегистрированные функции. Повторный вызов ничего не делает.
func (m *Manager) Shutdown() {
	m.once.Do(func() {
		m.mu.Lock()
		funcs := make([]shutdownFunc, len(m.funcs))
		copy(funcs, m.funcs)
		m.mu.Unlock()

		for i := len(funcs) - 1; i >= 0; i-- {
			m.run(funcs[i])
		}

		m.logger.Info("Graceful shutdown completed")
	})
}

func (m *Manager) run(f shutdownFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	start := time.Now()
	err := f.fn(ctx)
	duration := time.Since(start)

	if err != nil {
		m.logger.Error("Shutdown function failed",
			zap.String("name", f.name),
			zap.Error(err),
			zap.Duration("duration", duration))
		return
	}
	m.logger.Info("Shutdown function completed",
		zap.String("name", f.name),
		zap.Duration("duration", duration))
}

// ShutdownHTTPServer возвращает shutdown функцию для http.Server
func ShutdownHTTPServer(srv interface {
	Shutdown(context.Context) error
}) func(context.Context) error {
	return func(ctx context.Context) error {
		return srv.Shutdown(ctx)
	}
}

// Close возвращает shutdown функцию для io.Closer-подобных ресурсов (kafka writer и т.п.)
func Close(c interface {
	Close() error
}) func(context.Context) error {
	return func(context.Context) error {
		return c.Close()
	}
}
