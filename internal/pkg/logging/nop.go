package logging

// NopLogger отбрасывает все записи. Используется в тестах каналов
// доставки и как fallback до инициализации полноценного логгера.
type NopLogger struct{}

// NewNopLogger создаёт Logger, игнорирующий все сообщения.
func NewNopLogger() Logger {
	return &NopLogger{}
}

func (n *NopLogger) Debug(_ string, _ ...any) {}
func (n *NopLogger) Info(_ string, _ ...any)  {}
func (n *NopLogger) Warn(_ string, _ ...any)  {}
func (n *NopLogger) Error(_ string, _ ...any) {}

// With возвращает тот же экземпляр: атрибуты всё равно игнорируются.
func (n *NopLogger) With(_ ...any) Logger {
	return n
}
