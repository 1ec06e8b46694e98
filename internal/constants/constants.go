// Package constants содержит все константы, используемые в проекте apk-alert.
// Константы сгруппированы по их функциональному назначению для удобства
// использования и поддержки.
package constants

// AppName - имя приложения.
const AppName = "apk-alert"

// Константы сообщений приложения
const (
	// MsgAppExit - сообщение о завершении работы программы
	MsgAppExit = "Завершение работы програмы"
	// MsgErrProcessing - сообщение об обработке ошибки
	MsgErrProcessing = "Обработка ошибки"
)

// Константы действий (команд)
const (
	// ActDispatch - оценка порогов и рассылка алертов по каналам
	ActDispatch = "dispatch"
	// ActEvaluate - оценка порогов без рассылки (dry-run)
	ActEvaluate = "evaluate"
	// ActServe - HTTP сервер защищённого доступа к отчётам
	ActServe = "serve"
	// ActMintToken - выпуск подписанного токена доступа к отчёту
	ActMintToken = "mint-token"
	// ActVerifyToken - проверка подписанного токена
	ActVerifyToken = "verify-token"
	// ActVersion - вывод информации о версии
	ActVersion = "version"
	// ActHelp - вывод справки по командам
	ActHelp = "help"
)

// Константы API
const (
	// APIVersion - версия API
	APIVersion = "v1"
	// SecureReportPathPrefix - префикс защищённых ссылок на отчёты
	SecureReportPathPrefix = "/api/test-results/secure"
)

// Константы уровней логирования
const (
	// LogLevelDebug - уровень отладки
	LogLevelDebug = "Debug"
	// LogLevelInfo - информационный уровень
	LogLevelInfo = "Info"
	// LogLevelWarn - уровень предупреждений
	LogLevelWarn = "Warn"
	// LogLevelError - уровень ошибок
	LogLevelError = "Error"
	// LogLevelDefault - уровень по умолчанию
	LogLevelDefault = LogLevelInfo
)

// Константы exit code процесса
const (
	// ExitOK - успешное выполнение
	ExitOK = 0
	// ExitDeliveryFailed - алерт сработал, но хотя бы один канал не доставил
	ExitDeliveryFailed = 1
	// ExitConfigError - ошибка загрузки конфигурации
	ExitConfigError = 5
	// ExitReportError - ошибка чтения или парсинга отчёта
	ExitReportError = 6
	// ExitTokenError - ошибка операций с токенами
	ExitTokenError = 7
	// ExitCommandError - ошибка выполнения команды
	ExitCommandError = 8
)
