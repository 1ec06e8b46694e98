package tracing

import "context"

// Приватный тип ключа исключает коллизии с другими пакетами.
type traceIDKey struct{}

// WithTraceID кладёт trace ID в context. Существующее значение
// перезаписывается.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, id)
}

// TraceIDFromContext достаёт trace ID из context.
// Возвращает пустую строку, если ID не установлен или ctx == nil.
// Используется при формировании Metadata результата команды
// и в request-логах HTTP сервера.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey{}).(string); ok {
		return id
	}
	return ""
}
