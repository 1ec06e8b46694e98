package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// ServerConfig содержит настройки HTTP сервера защищённого доступа к отчётам.
type ServerConfig struct {
	// Addr — адрес прослушивания (host:port).
	Addr string `yaml:"addr" env:"BR_SERVER_ADDR" env-default:":8080"`

	// ReportsDir — директория с JSON отчётами прогонов.
	ReportsDir string `yaml:"reportsDir" env:"BR_SERVER_REPORTS_DIR" env-default:"./reports"`

	// ReadTimeout — таймаут чтения запроса.
	ReadTimeout time.Duration `yaml:"readTimeout" env:"BR_SERVER_READ_TIMEOUT" env-default:"10s"`

	// WriteTimeout — таймаут записи ответа.
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"BR_SERVER_WRITE_TIMEOUT" env-default:"30s"`

	// ShutdownTimeout — таймаут graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"BR_SERVER_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// isServerConfigPresent проверяет, задана ли конфигурация сервера.
func isServerConfigPresent(cfg *ServerConfig) bool {
	if cfg == nil {
		return false
	}
	return cfg.Addr != "" || cfg.ReportsDir != ""
}

// getDefaultServerConfig возвращает конфигурацию сервера по умолчанию.
func getDefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:            ":8080",
		ReportsDir:      "./reports",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// loadServerConfig загружает конфигурацию сервера из AppConfig и окружения.
func loadServerConfig(l *slog.Logger, cfg *Config) (*ServerConfig, error) {
	if cfg.AppConfig != nil && isServerConfigPresent(&cfg.AppConfig.Server) {
		serverConfig := &cfg.AppConfig.Server
		if err := cleanenv.ReadEnv(serverConfig); err != nil {
			l.Warn("Ошибка загрузки Server конфигурации из переменных окружения",
				slog.String("error", err.Error()),
			)
		}
		l.Debug("Server конфигурация загружена из AppConfig",
			slog.String("addr", serverConfig.Addr),
		)
		return serverConfig, nil
	}

	serverConfig := getDefaultServerConfig()

	if err := cleanenv.ReadEnv(serverConfig); err != nil {
		l.Warn("Ошибка загрузки Server конфигурации из переменных окружения",
			slog.String("error", err.Error()),
		)
	}

	return serverConfig, nil
}

// validateServerConfig проверяет корректность конфигурации сервера при загрузке.
func validateServerConfig(sc *ServerConfig) error {
	if sc.Addr == "" {
		return fmt.Errorf("server: addr обязателен")
	}
	if sc.ReportsDir == "" {
		return fmt.Errorf("server: reportsDir обязателен")
	}
	if sc.ReadTimeout <= 0 || sc.WriteTimeout <= 0 || sc.ShutdownTimeout <= 0 {
		return fmt.Errorf("server: таймауты должны быть положительными")
	}
	return nil
}
