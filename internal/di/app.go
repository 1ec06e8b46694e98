package di

import (
	"context"

	"github.com/Kargones/apk-alert/internal/config"
	"github.com/Kargones/apk-alert/internal/pkg/alerting"
	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/metrics"
	"github.com/Kargones/apk-alert/internal/pkg/output"
	"github.com/Kargones/apk-alert/internal/pkg/token"
)

// App содержит инициализированные зависимости приложения.
// Создаётся через Wire DI в InitializeApp().
//
// Все поля инициализируются через провайдеры в providers.go.
// При добавлении новых зависимостей:
// 1. Добавить поле в App struct
// 2. Создать провайдер в providers.go
// 3. Добавить провайдер в ProviderSet в wire.go
// 4. Перегенерировать wire_gen.go: go generate ./internal/di/...
type App struct {
	// Config содержит конфигурацию приложения.
	// Передаётся извне через InitializeApp().
	Config *config.Config

	// Logger предоставляет структурированное логирование.
	// Создаётся через ProvideLogger на основе LoggingConfig.
	Logger logging.Logger

	// OutputWriter форматирует результаты команд.
	// Создаётся через ProvideOutputWriter на основе OutputFormat.
	OutputWriter output.Writer

	// TraceID содержит уникальный идентификатор для корреляции логов.
	// Генерируется через ProvideTraceID.
	TraceID string

	// TokenService выпускает и проверяет подписанные токены доступа к отчётам.
	// nil если JWT_SECRET не задан — рассылка идёт без подписанных ссылок.
	TokenService *token.Service

	// Dispatcher оценивает пороги и рассылает алерты по каналам.
	// Создаётся через ProvideDispatcher на основе AlertingConfig.
	Dispatcher *alerting.Dispatcher

	// MetricsCollector собирает и отправляет метрики в Prometheus Pushgateway.
	// Если метрики отключены — используется NopCollector.
	MetricsCollector metrics.Collector

	// TracerShutdown завершает OTel TracerProvider и отправляет буферизированные span-ы.
	// Если трейсинг отключён — nop function.
	TracerShutdown func(context.Context) error
}
