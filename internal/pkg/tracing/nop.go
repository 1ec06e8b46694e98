package tracing

import "context"

// NewNopTracerProvider возвращает shutdown-функцию без провайдера.
// Применяется при выключенном трейсинге: спаны уходят в otel noop.
func NewNopTracerProvider() func(context.Context) error {
	return func(_ context.Context) error { return nil }
}
