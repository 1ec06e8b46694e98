// Package metrics собирает метрики рассылки алертов и отправляет их
// в Prometheus Pushgateway; в режиме serve регистр отдаётся на /metrics.
package metrics

import (
	"context"
	"time"
)

// Collector — интерфейс сбора метрик алертинга.
// Реализации: PrometheusCollector и NopCollector (метрики отключены).
type Collector interface {
	// RecordDispatch записывает завершение одного вызова Dispatch.
	// duration — полное время вызова, triggered — сработали ли пороги.
	RecordDispatch(duration time.Duration, triggered bool)

	// RecordDelivery записывает результат доставки в один канал.
	// attempts — фактическое число попыток отправки.
	RecordDelivery(channel string, success bool, attempts int)

	// Push отправляет метрики в Pushgateway.
	// Ошибки логируются внутри и не возвращаются: недоступный
	// Pushgateway не должен влиять на exit code рассылки.
	Push(ctx context.Context) error
}
