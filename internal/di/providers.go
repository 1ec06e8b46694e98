package di

import (
	"context"
	"log/slog"

	"github.com/Kargones/apk-alert/internal/config"
	"github.com/Kargones/apk-alert/internal/constants"
	"github.com/Kargones/apk-alert/internal/pkg/alerting"
	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/metrics"
	"github.com/Kargones/apk-alert/internal/pkg/output"
	"github.com/Kargones/apk-alert/internal/pkg/token"
	"github.com/Kargones/apk-alert/internal/pkg/tracing"
)

// ProvideLogger создаёт Logger на основе LoggingConfig из Config.
// Использует logging.NewLogger() для создания SlogAdapter.
//
// Если LoggingConfig == nil или поля пусты, используются значения по умолчанию:
//   - Level: "info"
//   - Format: "text"
//   - Output: "stderr"
func ProvideLogger(cfg *config.Config) logging.Logger {
	logCfg := logging.DefaultConfig()

	if cfg != nil && cfg.LoggingConfig != nil {
		if cfg.LoggingConfig.Level != "" {
			logCfg.Level = cfg.LoggingConfig.Level
		}
		if cfg.LoggingConfig.Format != "" {
			logCfg.Format = cfg.LoggingConfig.Format
		}
		if cfg.LoggingConfig.Output != "" {
			logCfg.Output = cfg.LoggingConfig.Output
		}
		if cfg.LoggingConfig.FilePath != "" {
			logCfg.FilePath = cfg.LoggingConfig.FilePath
		}
		if cfg.LoggingConfig.MaxSize > 0 {
			logCfg.MaxSize = cfg.LoggingConfig.MaxSize
		}
		if cfg.LoggingConfig.MaxBackups > 0 {
			logCfg.MaxBackups = cfg.LoggingConfig.MaxBackups
		}
		if cfg.LoggingConfig.MaxAge > 0 {
			logCfg.MaxAge = cfg.LoggingConfig.MaxAge
		}
		logCfg.Compress = cfg.LoggingConfig.Compress
	}

	return logging.NewLogger(logCfg)
}

// ProvideOutputWriter создаёт OutputWriter на основе OutputFormat из Config.
//   - "json": возвращает JSONWriter
//   - "text" или пустая строка: возвращает TextWriter (default)
func ProvideOutputWriter(cfg *config.Config) output.Writer {
	format := output.FormatText
	if cfg != nil && cfg.OutputFormat != "" {
		format = cfg.OutputFormat
	}
	return output.NewWriter(format)
}

// ProvideTraceID генерирует уникальный trace_id для корреляции логов.
// Формат: 32-символьный hex string (16 байт).
// Генерируется один раз при инициализации App и используется
// для корреляции всех логов в рамках одного запуска команды.
func ProvideTraceID() string {
	return tracing.GenerateTraceID()
}

// ProvideTokenService создаёт сервис подписанных токенов доступа.
// Если JWT_SECRET не задан или невалиден — возвращает nil:
// рассылка продолжается без подписанных ссылок, сервер защищённого
// доступа отклоняет все запросы.
func ProvideTokenService(cfg *config.Config, logger logging.Logger) *token.Service {
	if cfg == nil || cfg.TokenConfig == nil || !cfg.TokenConfig.Configured() {
		logger.Debug("секрет токенов не задан, подписанные ссылки отключены")
		return nil
	}

	svc, err := token.NewService(cfg.ToTokenConfig(), logger)
	if err != nil {
		logger.Error("ошибка создания TokenService, подписанные ссылки отключены",
			slog.String("error", err.Error()),
		)
		return nil
	}
	return svc
}

// ProvideDispatcher создаёт диспетчер алертинга на основе AlertingConfig.
// Каналы без credentials не создаются. При невалидной конфигурации
// возвращает диспетчер без каналов — оценка порогов продолжает работать,
// рассылка не выполняется.
func ProvideDispatcher(cfg *config.Config, tokenService *token.Service, logger logging.Logger, collector metrics.Collector) *alerting.Dispatcher {
	alertingCfg := cfg.ToAlertingConfig()

	// *token.Service(nil) как интерфейс не эквивалентен nil — передаём
	// signer только при живом сервисе.
	var signer alerting.URLSigner
	if tokenService != nil {
		signer = tokenService
	}

	dispatcher, err := alerting.NewDispatcherFromConfig(alertingCfg, signer, logger, collector)
	if err != nil {
		logger.Error("невалидная конфигурация алертинга, рассылка отключена",
			slog.String("error", err.Error()),
		)
		return alerting.NewDispatcher(alertingCfg.Thresholds, nil, signer, logger, collector)
	}
	return dispatcher
}

// ProvideMetricsCollector создаёт Collector на основе MetricsConfig из Config.
// Если MetricsConfig == nil или Enabled=false, возвращает NopCollector.
// При ошибке создания Collector возвращает NopCollector и логирует ошибку.
func ProvideMetricsCollector(cfg *config.Config, logger logging.Logger) metrics.Collector {
	if cfg == nil || cfg.MetricsConfig == nil {
		return metrics.NewNopCollector()
	}

	collector, err := metrics.NewCollector(cfg.MetricsConfig.ToMetricsConfig(), logger)
	if err != nil {
		logger.Error("ошибка создания MetricsCollector, используется NopCollector",
			slog.String("error", err.Error()),
		)
		return metrics.NewNopCollector()
	}

	return collector
}

// ProvideTracerProvider создаёт и инициализирует OTel TracerProvider.
// Возвращает shutdown function для graceful завершения.
// Если TracingConfig == nil или Enabled=false, возвращает nop shutdown.
// При ошибке создания TracerProvider возвращает nop shutdown и логирует ошибку.
func ProvideTracerProvider(cfg *config.Config, logger logging.Logger) func(context.Context) error {
	if cfg == nil || cfg.TracingConfig == nil {
		return tracing.NewNopTracerProvider()
	}

	shutdown, err := tracing.NewTracerProvider(cfg.TracingConfig.ToTracingConfig(constants.Version), logger)
	if err != nil {
		logger.Error("ошибка инициализации tracing, используется nop provider",
			slog.String("error", err.Error()),
		)
		return tracing.NewNopTracerProvider()
	}

	return shutdown
}
