// Package alerting: структуры конфигурации каналов и значения по умолчанию.
package alerting

import (
	"net/url"
	"time"
)

// Значения по умолчанию для конфигурации alerting.
const (
	// DefaultMaxRetries — общее число попыток доставки по умолчанию.
	DefaultMaxRetries = 3

	// DefaultRetryDelay — пауза между попытками по умолчанию.
	DefaultRetryDelay = 2 * time.Second

	// DefaultHTTPTimeout — таймаут одного HTTP запроса к API канала.
	// Превышение таймаута — обычная retryable ошибка попытки.
	DefaultHTTPTimeout = 10 * time.Second

	// DefaultSlackUsername — имя отправителя в slack сообщениях.
	DefaultSlackUsername = "apk-alert"

	// DefaultSlackIconEmoji — иконка отправителя в slack сообщениях.
	DefaultSlackIconEmoji = ":rotating_light:"

	// DefaultMailgunAPIBase — базовый URL Mailgun API.
	DefaultMailgunAPIBase = "https://api.mailgun.net"
)

// Config содержит полную конфигурацию диспетчера алертинга.
// Загружается один раз при старте процесса, далее read-only —
// конкурентные вызовы Dispatch разделяют её без блокировок.
type Config struct {
	// Enabled — включён ли алертинг в целом.
	Enabled bool

	// Thresholds — пороги срабатывания.
	Thresholds ThresholdPolicy

	// Retry — общая retry политика каналов (канал может переопределить).
	Retry RetryPolicy

	// Slack — конфигурация slack канала.
	Slack SlackConfig

	// Email — конфигурация email (Mailgun) канала.
	Email MailgunConfig

	// Telegram — конфигурация telegram канала.
	Telegram TelegramConfig

	// Webhook — конфигурация generic webhook канала.
	Webhook WebhookConfig
}

// SlackConfig содержит настройки slack канала.
// Канал считается сконфигурированным при непустом WebhookURL.
type SlackConfig struct {
	// Enabled — включён ли slack канал.
	Enabled bool

	// WebhookURL — incoming webhook URL (SLACK_WEBHOOK_URL).
	WebhookURL string

	// Username — имя отправителя в сообщении.
	Username string

	// IconEmoji — emoji-иконка отправителя.
	IconEmoji string

	// Timeout — таймаут HTTP запросов.
	Timeout time.Duration
}

// Validate проверяет корректность SlackConfig.
func (s *SlackConfig) Validate() error {
	if !s.Enabled || s.WebhookURL == "" {
		return nil
	}
	u, err := url.Parse(s.WebhookURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrSlackWebhookURLInvalid
	}
	// Только http/https — защита от SSRF через file://, ftp:// и т.п.
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrSlackWebhookURLInvalid
	}
	return nil
}

// MailgunConfig содержит настройки email канала через Mailgun HTTP API.
// Отправка письма — form-encoded POST на /v3/<domain>/messages
// с Basic auth "api:<apikey>". SMTP не используется.
type MailgunConfig struct {
	// Enabled — включён ли email канал.
	Enabled bool

	// APIKey — ключ Mailgun API (MAILGUN_API_KEY).
	APIKey string

	// Domain — домен отправителя в Mailgun (MAILGUN_DOMAIN).
	Domain string

	// APIBase — базовый URL API (переопределяется для EU региона и тестов).
	APIBase string

	// From — адрес отправителя. По умолчанию alerts@<domain>.
	From string

	// To — список получателей (ALERT_RECIPIENT_EMAIL).
	To []string

	// Timeout — таймаут HTTP запросов.
	Timeout time.Duration
}

// Validate проверяет корректность MailgunConfig.
func (m *MailgunConfig) Validate() error {
	if !m.Enabled || m.APIKey == "" {
		return nil
	}
	if m.Domain == "" {
		return ErrMailgunDomainRequired
	}
	if len(m.To) == 0 {
		return ErrMailgunRecipientRequired
	}
	// Защита от CRLF injection в адресах: управляющие символы в from/to
	// могут внедрить произвольные MIME заголовки.
	if m.From != "" && containsControlChars(m.From) {
		return ErrEmailAddressInvalid
	}
	for _, to := range m.To {
		if containsControlChars(to) {
			return ErrEmailAddressInvalid
		}
	}
	return nil
}

// TelegramConfig содержит настройки telegram канала.
type TelegramConfig struct {
	// Enabled — включён ли telegram канал.
	Enabled bool

	// BotToken — токен Telegram бота (TELEGRAM_BOT_TOKEN).
	BotToken string

	// ChatID — идентификатор чата/группы (TELEGRAM_CHAT_ID).
	ChatID string

	// Timeout — таймаут HTTP запросов к Telegram API.
	Timeout time.Duration
}

// Validate проверяет корректность TelegramConfig.
func (t *TelegramConfig) Validate() error {
	if !t.Enabled || t.BotToken == "" {
		return nil
	}
	if t.ChatID == "" {
		return nil // не сконфигурирован — канал будет пропущен, не ошибка
	}
	if t.ChatID[0] == '@' {
		return nil
	}
	start := 0
	if t.ChatID[0] == '-' {
		if len(t.ChatID) == 1 {
			return ErrTelegramChatIDInvalid
		}
		start = 1
	}
	for _, ch := range t.ChatID[start:] {
		if ch < '0' || ch > '9' {
			return ErrTelegramChatIDInvalid
		}
	}
	return nil
}

// WebhookConfig содержит настройки generic webhook канала.
type WebhookConfig struct {
	// Enabled — включён ли webhook канал.
	Enabled bool

	// URL — адрес для отправки webhook.
	URL string

	// Headers — дополнительные HTTP заголовки (Authorization, X-Api-Key и т.д.).
	Headers map[string]string

	// Timeout — таймаут HTTP запросов.
	Timeout time.Duration
}

// Validate проверяет корректность WebhookConfig.
func (w *WebhookConfig) Validate() error {
	if !w.Enabled || w.URL == "" {
		return nil
	}
	u, err := url.Parse(w.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrWebhookURLInvalid
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrWebhookURLInvalid
	}
	// Валидация HTTP заголовков — защита от Header Injection (RFC 7230).
	for key, value := range w.Headers {
		if containsInvalidHTTPHeaderChars(key) || containsInvalidHTTPHeaderChars(value) {
			return ErrWebhookHeaderInvalid
		}
	}
	return nil
}

// DefaultConfig возвращает конфигурацию со значениями по умолчанию.
// Алертинг отключён по умолчанию.
func DefaultConfig() Config {
	return Config{
		Enabled: false,
		Thresholds: ThresholdPolicy{
			FailureRateThreshold:    0.05,
			CriticalAlertsThreshold: 1,
			ResponseTimeThresholdMs: 500,
		},
		Retry: RetryPolicy{
			MaxRetries: DefaultMaxRetries,
			RetryDelay: DefaultRetryDelay,
		},
		Slack: SlackConfig{
			Username:  DefaultSlackUsername,
			IconEmoji: DefaultSlackIconEmoji,
			Timeout:   DefaultHTTPTimeout,
		},
		Email: MailgunConfig{
			APIBase: DefaultMailgunAPIBase,
			Timeout: DefaultHTTPTimeout,
		},
		Telegram: TelegramConfig{
			Timeout: DefaultHTTPTimeout,
		},
		Webhook: WebhookConfig{
			Timeout: DefaultHTTPTimeout,
		},
	}
}

// Validate проверяет корректность всей конфигурации.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if err := c.Slack.Validate(); err != nil {
		return err
	}
	if err := c.Email.Validate(); err != nil {
		return err
	}
	if err := c.Telegram.Validate(); err != nil {
		return err
	}
	if err := c.Webhook.Validate(); err != nil {
		return err
	}
	return nil
}

// containsInvalidHTTPHeaderChars проверяет наличие запрещённых символов в HTTP заголовке.
// По RFC 7230 разрешены HTAB (0x09) и printable ASCII.
func containsInvalidHTTPHeaderChars(s string) bool {
	for _, r := range s {
		if r == 0x09 {
			continue // HTAB допустим в HTTP header values
		}
		if r <= 0x1f || r == 0x7f {
			return true
		}
	}
	return false
}

// containsControlChars проверяет наличие управляющих символов.
// Для email адресов запрещены все control chars, включая HTAB (RFC 5322).
func containsControlChars(s string) bool {
	for _, r := range s {
		if r <= 0x1f || r == 0x7f {
			return true
		}
	}
	return false
}
