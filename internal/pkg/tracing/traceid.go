// Package tracing отвечает за trace ID и интеграцию с OpenTelemetry.
// Trace ID — 32-символьная hex строка (16 байт), совместимая с
// W3C Trace Context: один и тот же идентификатор связывает логи
// рассылки и OTel спаны.
package tracing

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"
)

var fallbackCounter atomic.Uint64

// GenerateTraceID возвращает новый trace ID из crypto/rand.
// При недоступности генератора случайных чисел используется
// fallback из timestamp и счётчика — корреляция логов важнее
// криптографического качества ID.
func GenerateTraceID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackTraceID собирает 32 hex символа из наносекунд и счётчика.
// %016x на uint64 всегда даёт ровно 16 символов на каждую половину.
func fallbackTraceID() string {
	counter := fallbackCounter.Add(1)
	timestamp := uint64(time.Now().UnixNano())
	return fmt.Sprintf("%016x%016x", timestamp, counter)
}
