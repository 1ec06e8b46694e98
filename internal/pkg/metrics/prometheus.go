package metrics

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/urlutil"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// PrometheusCollector реализует Collector с Prometheus метриками.
// Отправляет метрики в Pushgateway при вызове Push().
type PrometheusCollector struct {
	config   Config
	logger   logging.Logger
	registry *prometheus.Registry

	// Метрики
	dispatchDuration *prometheus.HistogramVec
	deliveryTotal    *prometheus.CounterVec
	deliveryAttempts *prometheus.HistogramVec

	// Instance label (hostname)
	instance string
}

// NewPrometheusCollector создаёт PrometheusCollector с указанной конфигурацией.
// Регистрирует метрики:
//   - apkalert_dispatch_duration_seconds (histogram)
//   - apkalert_delivery_total (counter)
//   - apkalert_delivery_attempts (histogram)
func NewPrometheusCollector(config Config, logger logging.Logger) (*PrometheusCollector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	instance := config.InstanceLabel
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			logger.Warn("не удалось получить hostname для metrics instance label, используется 'unknown'",
				"error", err.Error())
			hostname = "unknown"
		}
		instance = hostname
	}

	registry := prometheus.NewRegistry()

	// Histogram для duration (в секундах)
	// Buckets покрывают диапазон от мгновенной оценки порогов (без рассылки)
	// до рассылки с полным исчерпанием retry по всем каналам
	dispatchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apkalert",
			Name:      "dispatch_duration_seconds",
			Help:      "Duration of alert dispatch in seconds",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"triggered"},
	)

	// Counter доставок по каналам с итоговым статусом
	deliveryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "apkalert",
			Name:      "delivery_total",
			Help:      "Total number of channel delivery attempts by final status",
		},
		[]string{"channel", "status"},
	)

	// Histogram фактического числа попыток на доставку.
	// Хвост распределения показывает каналы, живущие на retry.
	deliveryAttempts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "apkalert",
			Name:      "delivery_attempts",
			Help:      "Number of send attempts per channel delivery",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
		[]string{"channel"},
	)

	// Регистрируем все метрики атомарно.
	// Используем Register вместо MustRegister для избежания panic.
	// Ошибка возможна только при дублировании имён метрик в одном registry.
	collectors := []prometheus.Collector{dispatchDuration, deliveryTotal, deliveryAttempts}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("ошибка регистрации метрики: %w", err)
		}
	}

	return &PrometheusCollector{
		config:           config,
		logger:           logger,
		registry:         registry,
		dispatchDuration: dispatchDuration,
		deliveryTotal:    deliveryTotal,
		deliveryAttempts: deliveryAttempts,
		instance:         instance,
	}, nil
}

// maxLabelLength — максимальная длина значения label для защиты от cardinality explosion.
const maxLabelLength = 128

// sanitizeLabel обрезает значение label до допустимой длины и удаляет
// контрольные символы (\n, \r, \0), которые могут нарушить Prometheus text format.
// Обрезка выполняется по рунам (не по байтам) для корректной работы с UTF-8.
func sanitizeLabel(value string) string {
	// Удаляем контрольные символы, опасные для Prometheus text format
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 { // контрольные символы: \n, \r, \t, \0 и др.
			return '_'
		}
		return r
	}, value)

	runes := []rune(clean)
	if len(runes) > maxLabelLength {
		return string(runes[:maxLabelLength])
	}
	return clean
}

// RecordDispatch записывает завершение вызова Dispatch.
func (c *PrometheusCollector) RecordDispatch(duration time.Duration, triggered bool) {
	label := "false"
	if triggered {
		label = "true"
	}
	c.dispatchDuration.WithLabelValues(label).Observe(duration.Seconds())

	c.logger.Debug("metrics: dispatch recorded",
		"duration_ms", duration.Milliseconds(),
		"triggered", triggered,
	)
}

// RecordDelivery записывает результат доставки в канал.
// Обновляет counter по статусу и histogram числа попыток.
func (c *PrometheusCollector) RecordDelivery(channel string, success bool, attempts int) {
	status := "success"
	if !success {
		status = "error"
	}

	// Sanitize labels для защиты от cardinality explosion
	channel = sanitizeLabel(channel)

	c.deliveryTotal.WithLabelValues(channel, status).Inc()
	c.deliveryAttempts.WithLabelValues(channel).Observe(float64(attempts))

	c.logger.Debug("metrics: delivery recorded",
		"channel", channel,
		"success", success,
		"attempts", attempts,
	)
}

// Push отправляет метрики в Pushgateway.
// Возвращает nil даже при ошибке — ошибки логируются.
func (c *PrometheusCollector) Push(ctx context.Context) error {
	if c.config.PushgatewayURL == "" {
		c.logger.Debug("metrics: pushgateway URL not configured, skipping push")
		return nil
	}

	// Проверяем контекст
	select {
	case <-ctx.Done():
		c.logger.Debug("metrics push отменён")
		return nil
	default:
	}

	pusher := push.New(c.config.PushgatewayURL, c.config.JobName).
		Gatherer(c.registry).
		Grouping("instance", c.instance)

	// Устанавливаем таймаут через контекст
	pushCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	// Push с контекстом
	if err := pusher.PushContext(pushCtx); err != nil {
		c.logger.Error("ошибка отправки метрик в Pushgateway",
			"error", err.Error(),
			"url", urlutil.MaskURL(c.config.PushgatewayURL),
			"job", c.config.JobName,
		)
		// Возвращаем nil — ошибка метрик не критична
		return nil
	}

	c.logger.Info("метрики отправлены в Pushgateway",
		"url", urlutil.MaskURL(c.config.PushgatewayURL),
		"job", c.config.JobName,
		"instance", c.instance,
	)
	return nil
}

// GetRegistry возвращает внутренний registry.
// Используется HTTP сервером для /metrics endpoint и в unit-тестах.
func (c *PrometheusCollector) GetRegistry() *prometheus.Registry {
	return c.registry
}
