package config

import (
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Kargones/apk-alert/internal/constants"
)

// MustLoad загружает конфигурацию приложения из окружения и YAML файла.
// Порядок источников (от младшего к старшему): значения по умолчанию,
// YAML файл (BR_ALERT_CONFIG), переменные окружения.
// Невалидная секция отключает соответствующую подсистему с warning,
// процесс продолжает работу — кроме фатальных ошибок чтения окружения.
// Возвращает:
//   - *Config: указатель на загруженную конфигурацию приложения
//   - error: ошибка загрузки конфигурации или nil при успехе
func MustLoad() (*Config, error) {
	var cfg Config
	var err error

	// Необязательный .env файл для локальной разработки.
	// Отсутствие файла — не ошибка.
	if err = godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "предупреждение: .env не загружен: %v\n", err)
	}

	// Читаем переменные окружения в структуру Config
	if err = cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("не удалось прочитать переменные окружения в Config: %w", err)
	}

	// Инициализируем bootstrap логгер
	l := getSlog(os.Getenv("BR_LOG_LEVEL"))
	cfg.Logger = l

	// Загрузка конфигурации приложения из YAML файла
	if cfg.AppConfig, err = loadAppConfig(l, &cfg); err != nil {
		l.Warn("ошибка загрузки конфигурации приложения", slog.String("error", err.Error()))
		// Используем значения по умолчанию
		cfg.AppConfig = getDefaultAppConfig()
	}

	// Загрузка конфигурации логирования
	if cfg.LoggingConfig, err = loadLoggingConfig(l, &cfg); err != nil {
		l.Warn("ошибка загрузки конфигурации логирования", slog.String("error", err.Error()))
		cfg.LoggingConfig = getDefaultLoggingConfig()
	}

	// Загрузка конфигурации алертинга
	if cfg.AlertingConfig, err = loadAlertingConfig(l, &cfg); err != nil {
		l.Warn("ошибка загрузки конфигурации алертинга", slog.String("error", err.Error()))
		cfg.AlertingConfig = getDefaultAlertingConfig()
	}
	// Fail-fast валидация: обнаруживаем невалидную конфигурацию при загрузке,
	// а не при первом Dispatch в runtime.
	if cfg.AlertingConfig != nil && cfg.AlertingConfig.Enabled {
		if valErr := validateAlertingConfig(cfg.AlertingConfig); valErr != nil {
			l.Warn("невалидная конфигурация алертинга, алертинг отключён",
				slog.String("error", valErr.Error()),
				slog.String("reason", "validation_failed"),
			)
			cfg.AlertingConfig.Enabled = false
		}
	}

	// Загрузка конфигурации токенов
	if cfg.TokenConfig, err = loadTokenConfig(l, &cfg); err != nil {
		l.Warn("ошибка загрузки конфигурации токенов", slog.String("error", err.Error()))
		cfg.TokenConfig = getDefaultTokenConfig()
	}
	// Непригодный секрет отключает подписанные ссылки, не процесс.
	if cfg.TokenConfig != nil && cfg.TokenConfig.Secret != "" {
		if valErr := validateTokenConfig(cfg.TokenConfig); valErr != nil {
			l.Warn("невалидная конфигурация токенов, подписанные ссылки отключены",
				slog.String("error", valErr.Error()),
				slog.String("reason", "validation_failed"),
			)
			cfg.TokenConfig.Secret = ""
		}
	}

	// Загрузка конфигурации метрик
	if cfg.MetricsConfig, err = loadMetricsConfig(l, &cfg); err != nil {
		l.Warn("ошибка загрузки конфигурации метрик", slog.String("error", err.Error()))
		cfg.MetricsConfig = getDefaultMetricsConfig()
	}
	// Fail-fast валидация: обнаруживаем невалидную конфигурацию при загрузке.
	if cfg.MetricsConfig != nil && cfg.MetricsConfig.Enabled {
		if valErr := validateMetricsConfig(cfg.MetricsConfig); valErr != nil {
			l.Warn("невалидная конфигурация метрик, метрики отключены",
				slog.String("error", valErr.Error()),
				slog.String("reason", "validation_failed"),
			)
			cfg.MetricsConfig.Enabled = false
		}
	}

	// Загрузка конфигурации трейсинга
	if cfg.TracingConfig, err = loadTracingConfig(l, &cfg); err != nil {
		l.Warn("ошибка загрузки конфигурации трейсинга", slog.String("error", err.Error()))
		cfg.TracingConfig = getDefaultTracingConfig()
	}
	// Fail-fast валидация: обнаруживаем невалидную конфигурацию при загрузке.
	if cfg.TracingConfig != nil && cfg.TracingConfig.Enabled {
		if valErr := validateTracingConfig(cfg.TracingConfig); valErr != nil {
			l.Warn("невалидная конфигурация трейсинга, трейсинг отключён",
				slog.String("error", valErr.Error()),
				slog.String("reason", "validation_failed"),
			)
			cfg.TracingConfig.Enabled = false
		}
	}

	// Загрузка конфигурации сервера
	if cfg.ServerConfig, err = loadServerConfig(l, &cfg); err != nil {
		l.Warn("ошибка загрузки конфигурации сервера", slog.String("error", err.Error()))
		cfg.ServerConfig = getDefaultServerConfig()
	}
	if cfg.ServerConfig != nil {
		if valErr := validateServerConfig(cfg.ServerConfig); valErr != nil {
			l.Warn("невалидная конфигурация сервера, используются значения по умолчанию",
				slog.String("error", valErr.Error()),
			)
			cfg.ServerConfig = getDefaultServerConfig()
		}
	}

	return &cfg, nil
}

func getSlog(logLevel string) *slog.Logger {
	var programLevel = new(slog.LevelVar)
	boLogLevel := logLevel
	if boLogLevel == "" {
		boLogLevel = constants.LogLevelDefault
	}
	switch boLogLevel {
	default:
		programLevel.Set(slog.LevelInfo)
	case constants.LogLevelDebug, "debug":
		programLevel.Set(slog.LevelDebug)
	case constants.LogLevelInfo, "info":
		programLevel.Set(slog.LevelInfo)
	case constants.LogLevelWarn, "warn":
		programLevel.Set(slog.LevelWarn)
	case constants.LogLevelError, "error":
		programLevel.Set(slog.LevelError)
	}

	l := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		AddSource: true,
		Level:     programLevel,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				s := a.Value.Any().(*slog.Source)
				s.File = path.Base(s.File)
			}
			return a
		},
	}))
	l = l.With(slog.Group("App info",
		slog.String("version", constants.Version),
	))
	return l
}

// loadAppConfig загружает конфигурацию приложения из YAML файла.
// Путь задаётся переменной BR_ALERT_CONFIG; пустой путь — файла нет,
// используются значения по умолчанию.
func loadAppConfig(l *slog.Logger, cfg *Config) (*AppConfig, error) {
	if cfg.ConfigPath == "" {
		l.Debug("Путь к конфигурационному файлу не задан, используются значения по умолчанию")
		return getDefaultAppConfig(), nil
	}

	data, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации %s: %w", cfg.ConfigPath, err)
	}

	var appConfig AppConfig
	if err = yaml.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML конфигурации: %w", err)
	}

	l.Debug("Конфигурация приложения загружена",
		slog.String("path", cfg.ConfigPath),
	)
	return &appConfig, nil
}
