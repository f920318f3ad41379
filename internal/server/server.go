package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"example.com/ko-tokenizer/internal/config"
	"example.com/ko-tokenizer/internal/handlers"
	"example.com/ko-tokenizer/internal/metrics"
	"example.com/ko-tokenizer/internal/tokenizer"
)

var (
	ErrAlreadyStarted = errors.New("server already started")
	ErrNotStarted     = errors.New("server not started")
)

type Server struct {
	cfg    config.ServerConfig
	logger *slog.Logger
	echo   *echo.Echo
	http   *http.Server

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
	err      error
}

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, tok tokenizer.Tokenizer, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(requestLogger(logger, m))
	e.Use(traceRequests(logger))

	tokenizeHandler := handlers.NewTokenizeHandler(tok, m, logger)

	var metricsHandler http.Handler
	if m != nil {
		metricsHandler = m.Handler()
	}
	registerRoutes(e, tokenizeHandler, metricsHandler)

	httpServer := NewHTTPServer(cfg.Server, e)
	if closer, ok := tok.(io.Closer); ok {
		httpServer.RegisterOnShutdown(func() {
			if err := closer.Close(); err != nil {
				logger.Error("tokenizer cleanup failed", slog.String("error", err.Error()))
			}
		})
	}

	return &Server{
		cfg:    cfg.Server,
		logger: logger,
		echo:   e,
		http:   httpServer,
	}
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Handler возвращает корневой обработчик со всеми middleware.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start открывает сокет с заданным backlog и запускает обслуживание в фоне.
// Возвращает управление, когда сокет уже принимает соединения.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return ErrAlreadyStarted
	}

	ln, err := listen(s.cfg.Addr(), s.cfg.Backlog)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr(), err)
	}

	s.listener = ln
	s.done = make(chan struct{})

	go s.serve(ln, s.done)

	s.logger.Info("server listening",
		slog.String("addr", ln.Addr().String()),
		slog.Int("backlog", s.cfg.Backlog),
	)
	return nil
}

func (s *Server) serve(ln net.Listener, done chan struct{}) {
	err := s.http.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
	close(done)
}

// Stop дает активным запросам завершиться в течение grace, затем закрывает соединения.
func (s *Server) Stop(grace time.Duration) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return ErrNotStarted
	}

	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	err := s.http.Shutdown(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("shutdown grace period expired, closing connections", slog.Duration("grace", grace))
		if closeErr := s.http.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}

	<-done
	s.logger.Info("server stopped")
	return err
}

// Addr возвращает фактический адрес сокета или nil до Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Done закрывается, когда цикл обслуживания завершен.
func (s *Server) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Err возвращает ошибку цикла обслуживания после закрытия Done.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
