package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

const readHeaderTimeout = 10 * time.Second

type Server struct {
	server          *http.Server
	logger          *zap.Logger
	shutdownTimeout time.Duration
	cancel          context.CancelFunc
}

// New не задает WriteTimeout: скачивание архива может длиться сколь угодно
// долго. Контекст всех запросов отменяется при остановке сервера.
func New(host, port string, handler http.Handler, shutdownTimeout time.Duration, logger *zap.Logger) *Server {
	baseCtx, cancel := context.WithCancel(context.Background())
	return &Server{
		server: &http.Server{
			Addr:              net.JoinHostPort(host, port),
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
			BaseContext:       func(net.Listener) context.Context { return baseCtx },
		},
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		cancel:          cancel,
	}
}

func (s *Server) Start() error {
	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(done)

	serverErr := make(chan error, 1)

	go func() {
		s.logger.Info("Запуск HTTP сервера", zap.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("ошибка HTTP сервера: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		s.cancel()
		return err
	case sig := <-done:
		s.logger.Info("Получен сигнал завершения", zap.String("signal", sig.String()))
		return s.Shutdown()
	}
}

// Shutdown прерывает текущие скачивания и останавливает сервер.
func (s *Server) Shutdown() error {
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при завершении сервера: %w", err)
	}

	s.logger.Info("HTTP сервер успешно остановлен")
	return nil
}
