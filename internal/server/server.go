// Package server реализует HTTP сервер защищённого доступа к отчётам
// тестовых прогонов. Ссылки на отчёты подписываются JWT токеном,
// сервер проверяет подпись, срок действия и scope токена.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kargones/apk-alert/internal/config"
	"github.com/Kargones/apk-alert/internal/constants"
	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/token"
)

// TokenVerifier проверяет подписанный токен доступа.
// Реализация — token.Service.
type TokenVerifier interface {
	Verify(tokenString string) (token.Claims, error)
}

// Server — HTTP сервер защищённого доступа к отчётам.
type Server struct {
	cfg      *config.ServerConfig
	verifier TokenVerifier
	reports  ReportStore
	logger   logging.Logger
	registry *prometheus.Registry
	engine   *gin.Engine
}

// Option настраивает Server при создании.
type Option func(*Server)

// WithRegistry подключает Prometheus registry для endpoint /metrics.
// Без registry /metrics отдаёт пустой набор метрик.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithReportStore заменяет хранилище отчётов (для тестирования).
func WithReportStore(store ReportStore) Option {
	return func(s *Server) {
		s.reports = store
	}
}

// New создаёт Server с роутингом.
// verifier может быть nil — все запросы к защищённым отчётам
// отклоняются с 503 до тех пор, пока не задан JWT_SECRET.
func New(cfg *config.ServerConfig, verifier TokenVerifier, logger logging.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		verifier: verifier,
		reports:  NewFileReportStore(cfg.ReportsDir),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())

	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/metrics", s.metricsHandler())
	engine.GET(constants.SecureReportPathPrefix+"/:reportId", s.handleSecureReport)

	s.engine = engine
	return s
}

// Engine возвращает роутер (для httptest).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run запускает сервер и блокируется до отмены ctx или фатальной ошибки.
// При отмене ctx выполняется graceful shutdown с таймаутом из конфигурации.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP сервер запущен", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("остановка HTTP сервера", "timeout", s.cfg.ShutdownTimeout.String())
	return srv.Shutdown(shutdownCtx)
}

// requestLogger логирует каждый запрос с латентностью.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http запрос",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// metricsHandler отдаёт метрики из подключённого registry.
func (s *Server) metricsHandler() gin.HandlerFunc {
	if s.registry != nil {
		return gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return gin.WrapH(promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{}))
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": constants.Version,
	})
}
