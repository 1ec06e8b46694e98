package alerting

import "errors"

// Ошибки валидации конфигурации порогов.
var (
	// ErrThresholdFailureRateInvalid — failureRate отрицателен или NaN.
	ErrThresholdFailureRateInvalid = errors.New("alerting: failureRate threshold must be a non-negative number")

	// ErrThresholdCriticalAlertsInvalid — criticalAlerts порог отрицателен.
	ErrThresholdCriticalAlertsInvalid = errors.New("alerting: criticalAlerts threshold must be non-negative")

	// ErrThresholdResponseTimeInvalid — responseTime порог отрицателен или NaN.
	ErrThresholdResponseTimeInvalid = errors.New("alerting: responseTime threshold must be a non-negative number")
)

// Ошибки валидации конфигурации каналов.
var (
	// ErrSlackWebhookURLInvalid — URL slack webhook имеет невалидный формат.
	ErrSlackWebhookURLInvalid = errors.New("alerting: slack webhook url has invalid format (must have scheme and host)")

	// ErrMailgunDomainRequired — домен mailgun не указан при включённом email канале.
	ErrMailgunDomainRequired = errors.New("alerting: mailgun domain is required when email channel is enabled")

	// ErrMailgunRecipientRequired — получатель не указан при включённом email канале.
	ErrMailgunRecipientRequired = errors.New("alerting: at least one recipient is required when email channel is enabled")

	// ErrEmailAddressInvalid — email адрес содержит управляющие символы (CRLF injection).
	ErrEmailAddressInvalid = errors.New("alerting: email address contains invalid characters (control chars)")

	// ErrTelegramChatIDInvalid — chat_id имеет невалидный формат (ожидается числовой ID или @username).
	ErrTelegramChatIDInvalid = errors.New("alerting: chat_id must be a numeric ID or @username")

	// ErrWebhookURLInvalid — URL имеет невалидный формат.
	ErrWebhookURLInvalid = errors.New("alerting: webhook url has invalid format (must have scheme and host)")

	// ErrWebhookHeaderInvalid — HTTP заголовок содержит недопустимые символы.
	ErrWebhookHeaderInvalid = errors.New("alerting: webhook header contains invalid characters (\\r or \\n)")
)
