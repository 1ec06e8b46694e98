package metrics

import (
	"context"
	"time"
)

// NopCollector отбрасывает все метрики. Возвращается фабрикой
// при Config.Enabled = false.
type NopCollector struct{}

// NewNopCollector создаёт NopCollector.
func NewNopCollector() *NopCollector {
	return &NopCollector{}
}

func (c *NopCollector) RecordDispatch(_ time.Duration, _ bool) {}

func (c *NopCollector) RecordDelivery(_ string, _ bool, _ int) {}

func (c *NopCollector) Push(_ context.Context) error { return nil }
