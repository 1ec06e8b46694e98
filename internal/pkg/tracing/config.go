package tracing

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Ошибки валидации конфигурации трейсинга.
var (
	ErrTracingEndpointRequired    = errors.New("tracing: endpoint обязателен когда tracing включён")
	ErrTracingServiceNameRequired = errors.New("tracing: service name обязателен")
	ErrTracingTimeoutInvalid      = errors.New("tracing: timeout должен быть положительным")

	// ErrTracingEndpointInvalidFormat — endpoint не парсится как URL с host.
	ErrTracingEndpointInvalidFormat = errors.New("tracing: endpoint должен быть валидным URL с host (например http://jaeger:4318)")

	// ErrTracingSamplingRateInvalid — sampling rate вне диапазона [0.0, 1.0].
	ErrTracingSamplingRateInvalid = errors.New("tracing: sampling rate должен быть от 0.0 до 1.0")
)

// Config — настройки инициализации TracerProvider.
type Config struct {
	// Enabled — включён ли трейсинг.
	Enabled bool

	// Endpoint — OTLP HTTP endpoint, например "http://jaeger:4318".
	Endpoint string

	// ServiceName — имя сервиса в resource attributes.
	ServiceName string

	// Version — версия сборки в resource attributes.
	Version string

	// Environment — окружение (production, staging, development).
	Environment string

	// Insecure — HTTP вместо HTTPS. Для публичных сетей держать false.
	Insecure bool

	// Timeout — таймаут экспорта спанов.
	Timeout time.Duration

	// SamplingRate — доля сэмплируемых трейсов: 0.0 ни одного, 1.0 все.
	SamplingRate float64
}

// Validate проверяет конфигурацию. Выключенный трейсинг всегда валиден.
// Ошибки — sentinel значения, проверяемые через errors.Is.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return ErrTracingEndpointRequired
	}
	if u, err := url.Parse(c.Endpoint); err != nil || u.Host == "" {
		return ErrTracingEndpointInvalidFormat
	}
	if c.ServiceName == "" {
		return ErrTracingServiceNameRequired
	}
	if c.Timeout <= 0 {
		return ErrTracingTimeoutInvalid
	}
	if c.SamplingRate < 0.0 || c.SamplingRate > 1.0 {
		return fmt.Errorf("%w, получено: %g", ErrTracingSamplingRateInvalid, c.SamplingRate)
	}
	return nil
}

// DefaultConfig возвращает конфигурацию по умолчанию: трейсинг выключен.
func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		ServiceName:  "apk-alert",
		Environment:  "production",
		Insecure:     false,
		Timeout:      5 * time.Second,
		SamplingRate: 1.0,
	}
}
