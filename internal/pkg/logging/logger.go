// Package logging предоставляет структурированное логирование поверх slog.
package logging

// Logger — интерфейс структурированного логирования приложения.
// Методы принимают сообщение и чередующиеся key-value пары:
//
//	logger.Info("алерт отправлен", "channel", "slack", "attempts", 2)
//
// Логи пишутся только в stderr (или файл): stdout зарезервирован под
// результат команды — его читает CI. Секреты (JWT_SECRET, API ключи,
// webhook URL целиком) в аргументы логгера не передаются.
type Logger interface {
	// Debug — детальная диагностика, по умолчанию отключена.
	Debug(msg string, args ...any)

	// Info — значимые события: отправка алерта, старт сервера.
	Info(msg string, args ...any)

	// Warn — восстановимые проблемы: канал не сконфигурирован,
	// невалидная секция конфигурации отключена.
	Warn(msg string, args ...any)

	// Error — ошибки доставки и отказы внешних API.
	Error(msg string, args ...any)

	// With возвращает Logger с постоянными атрибутами,
	// добавляемыми ко всем последующим записям:
	//
	//	logger.With("dispatch_id", id).Info("рассылка началась")
	With(args ...any) Logger
}
