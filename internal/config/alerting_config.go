package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/Kargones/apk-alert/internal/pkg/alerting"
)

// AlertingConfig содержит настройки алертинга: пороги, retry политику
// и credentials каналов доставки.
//
// Credentials каналов читаются из фиксированных имён переменных окружения
// (SLACK_WEBHOOK_URL, MAILGUN_API_KEY и т.д.) — они задаются CI-окружением
// и не имеют BR_ префикса. Отсутствие переменной отключает канал,
// процесс продолжает работу.
type AlertingConfig struct {
	// Enabled — включён ли алертинг (по умолчанию true).
	Enabled bool `yaml:"enabled" env:"BR_ALERTING_ENABLED" env-default:"true"`

	// Thresholds — пороги срабатывания алертов.
	Thresholds AlertThresholdsConfig `yaml:"thresholds"`

	// Retry — политика повторных попыток доставки.
	Retry AlertRetryConfig `yaml:"retryConfig"`

	// SlackEnabled — явное включение/выключение slack канала.
	// nil — канал включён при наличии credentials. Флаги задаются
	// только через YAML: cleanenv не разбирает указатели из env.
	SlackEnabled *bool `yaml:"slackEnabled"`

	// EmailEnabled — явное включение/выключение email канала.
	EmailEnabled *bool `yaml:"emailEnabled"`

	// TelegramEnabled — явное включение/выключение telegram канала.
	TelegramEnabled *bool `yaml:"telegramEnabled"`

	// WebhookEnabled — явное включение/выключение webhook канала.
	WebhookEnabled *bool `yaml:"webhookEnabled"`

	// Slack — конфигурация slack канала.
	Slack SlackChannelConfig `yaml:"slack"`

	// Email — конфигурация email канала (Mailgun HTTP API).
	Email EmailChannelConfig `yaml:"email"`

	// Telegram — конфигурация telegram канала.
	Telegram TelegramChannelConfig `yaml:"telegram"`

	// Webhook — конфигурация generic webhook канала.
	Webhook WebhookChannelConfig `yaml:"webhook"`
}

// AlertThresholdsConfig содержит пороги срабатывания алертов.
type AlertThresholdsConfig struct {
	// FailureRate — допустимая доля отказов (0.05 = нужно ≥95% успеха).
	FailureRate float64 `yaml:"failureRate" env:"BR_ALERTING_FAILURE_RATE" env-default:"0.05"`

	// CriticalAlerts — порог количества критических срабатываний.
	CriticalAlerts int64 `yaml:"criticalAlerts" env:"BR_ALERTING_CRITICAL_ALERTS" env-default:"1"`

	// ResponseTimeMs — порог среднего времени ответа, мс.
	ResponseTimeMs float64 `yaml:"responseTime" env:"BR_ALERTING_RESPONSE_TIME_MS" env-default:"500"`
}

// AlertRetryConfig содержит политику повторных попыток доставки.
type AlertRetryConfig struct {
	// MaxRetries — общее число попыток доставки на канал.
	MaxRetries int `yaml:"maxRetries" env:"BR_ALERTING_MAX_RETRIES" env-default:"3"`

	// RetryDelay — фиксированная пауза между попытками.
	RetryDelay time.Duration `yaml:"retryDelay" env:"BR_ALERTING_RETRY_DELAY" env-default:"2s"`
}

// SlackChannelConfig содержит настройки slack канала.
type SlackChannelConfig struct {
	// WebhookURL — incoming webhook URL. Пусто — канал выключен.
	WebhookURL string `yaml:"webhookUrl" env:"SLACK_WEBHOOK_URL"`

	// Username — имя отправителя в сообщении.
	Username string `yaml:"username" env:"BR_ALERTING_SLACK_USERNAME" env-default:"apk-alert"`

	// IconEmoji — emoji-иконка отправителя.
	IconEmoji string `yaml:"iconEmoji" env:"BR_ALERTING_SLACK_ICON" env-default:":rotating_light:"`

	// Timeout — таймаут HTTP запросов.
	Timeout time.Duration `yaml:"timeout" env:"BR_ALERTING_SLACK_TIMEOUT" env-default:"10s"`
}

// EmailChannelConfig содержит настройки email канала через Mailgun.
type EmailChannelConfig struct {
	// APIKey — ключ Mailgun API. Пусто — канал выключен.
	APIKey string `yaml:"apiKey" env:"MAILGUN_API_KEY"`

	// Domain — домен отправителя в Mailgun.
	Domain string `yaml:"domain" env:"MAILGUN_DOMAIN"`

	// APIBase — базовый URL API (для EU региона: https://api.eu.mailgun.net).
	APIBase string `yaml:"apiBase" env:"BR_ALERTING_MAILGUN_API_BASE" env-default:"https://api.mailgun.net"`

	// From — адрес отправителя. Пусто — alerts@<domain>.
	From string `yaml:"from" env:"BR_ALERTING_EMAIL_FROM"`

	// To — список получателей (comma-separated в env).
	To []string `yaml:"to" env:"ALERT_RECIPIENT_EMAIL" env-separator:","`

	// Timeout — таймаут HTTP запросов.
	Timeout time.Duration `yaml:"timeout" env:"BR_ALERTING_EMAIL_TIMEOUT" env-default:"10s"`
}

// TelegramChannelConfig содержит настройки telegram канала.
type TelegramChannelConfig struct {
	// BotToken — токен Telegram бота (получить у @BotFather).
	BotToken string `yaml:"botToken" env:"TELEGRAM_BOT_TOKEN"`

	// ChatID — идентификатор чата/группы. Числовой ID или @username.
	ChatID string `yaml:"chatId" env:"TELEGRAM_CHAT_ID"`

	// Timeout — таймаут HTTP запросов к Telegram API.
	Timeout time.Duration `yaml:"timeout" env:"BR_ALERTING_TELEGRAM_TIMEOUT" env-default:"10s"`
}

// WebhookChannelConfig содержит настройки generic webhook канала.
type WebhookChannelConfig struct {
	// URL — адрес для отправки webhook. Пусто — канал выключен.
	URL string `yaml:"url" env:"ALERT_WEBHOOK_URL"`

	// Headers — дополнительные HTTP заголовки (Authorization, X-Api-Key).
	// TODO: Headers доступны только через YAML — cleanenv не поддерживает
	// map[string]string из env переменных.
	Headers map[string]string `yaml:"headers"`

	// Timeout — таймаут HTTP запросов.
	Timeout time.Duration `yaml:"timeout" env:"BR_ALERTING_WEBHOOK_TIMEOUT" env-default:"10s"`
}

// isAlertingConfigPresent проверяет, задана ли конфигурация алертинга.
// Возвращает true если хотя бы одно значимое поле отличается от zero value.
func isAlertingConfigPresent(cfg *AlertingConfig) bool {
	if cfg == nil {
		return false
	}
	return cfg.Enabled ||
		cfg.Thresholds.FailureRate != 0 ||
		cfg.Slack.WebhookURL != "" ||
		cfg.Email.APIKey != "" ||
		cfg.Telegram.BotToken != "" ||
		cfg.Webhook.URL != ""
}

// getDefaultAlertingConfig возвращает конфигурацию алертинга по умолчанию.
// Используем константы из пакета alerting вместо magic numbers.
func getDefaultAlertingConfig() *AlertingConfig {
	return &AlertingConfig{
		Enabled: true,
		Thresholds: AlertThresholdsConfig{
			FailureRate:    0.05,
			CriticalAlerts: 1,
			ResponseTimeMs: 500,
		},
		Retry: AlertRetryConfig{
			MaxRetries: alerting.DefaultMaxRetries,
			RetryDelay: alerting.DefaultRetryDelay,
		},
		Slack: SlackChannelConfig{
			Username:  alerting.DefaultSlackUsername,
			IconEmoji: alerting.DefaultSlackIconEmoji,
			Timeout:   alerting.DefaultHTTPTimeout,
		},
		Email: EmailChannelConfig{
			APIBase: alerting.DefaultMailgunAPIBase,
			Timeout: alerting.DefaultHTTPTimeout,
		},
		Telegram: TelegramChannelConfig{
			Timeout: alerting.DefaultHTTPTimeout,
		},
		Webhook: WebhookChannelConfig{
			Timeout: alerting.DefaultHTTPTimeout,
		},
	}
}

// loadAlertingConfig загружает конфигурацию алертинга из AppConfig,
// переменных окружения или устанавливает значения по умолчанию.
// Переменные окружения переопределяют значения из AppConfig.
func loadAlertingConfig(l *slog.Logger, cfg *Config) (*AlertingConfig, error) {
	if cfg.AppConfig != nil && isAlertingConfigPresent(&cfg.AppConfig.Alerting) {
		alertingConfig := &cfg.AppConfig.Alerting
		if err := cleanenv.ReadEnv(alertingConfig); err != nil {
			l.Warn("Ошибка загрузки Alerting конфигурации из переменных окружения",
				slog.String("error", err.Error()),
			)
		}
		l.Info("Alerting конфигурация загружена из AppConfig",
			slog.Bool("enabled", alertingConfig.Enabled),
			slog.Bool("slack_configured", alertingConfig.Slack.WebhookURL != ""),
			slog.Bool("email_configured", alertingConfig.Email.APIKey != ""),
			slog.Bool("telegram_configured", alertingConfig.Telegram.BotToken != ""),
		)
		return alertingConfig, nil
	}

	alertingConfig := getDefaultAlertingConfig()

	if err := cleanenv.ReadEnv(alertingConfig); err != nil {
		l.Warn("Ошибка загрузки Alerting конфигурации из переменных окружения",
			slog.String("error", err.Error()),
		)
	}

	l.Debug("Alerting конфигурация: используются значения по умолчанию",
		slog.Bool("enabled", alertingConfig.Enabled),
	)

	return alertingConfig, nil
}

// validateAlertingConfig проверяет корректность конфигурации алертинга при загрузке.
//
// Это предварительная (config-level) валидация — проверяет пороги и retry
// политику. Полная валидация (формат URL, CRLF injection в email адресах,
// Header Injection в webhook headers) выполняется в alerting.Config.Validate()
// при создании Dispatcher. Defense-in-depth: fail-fast при явно невалидной
// конфигурации.
func validateAlertingConfig(ac *AlertingConfig) error {
	if !ac.Enabled {
		return nil
	}
	if ac.Thresholds.FailureRate < 0 {
		return fmt.Errorf("alerting: thresholds.failureRate не может быть отрицательным")
	}
	if ac.Thresholds.CriticalAlerts < 0 {
		return fmt.Errorf("alerting: thresholds.criticalAlerts не может быть отрицательным")
	}
	if ac.Thresholds.ResponseTimeMs < 0 {
		return fmt.Errorf("alerting: thresholds.responseTime не может быть отрицательным")
	}
	if ac.Retry.MaxRetries < 1 {
		return fmt.Errorf("alerting: retryConfig.maxRetries должен быть не меньше 1")
	}
	if ac.Retry.RetryDelay < 0 {
		return fmt.Errorf("alerting: retryConfig.retryDelay не может быть отрицательным")
	}
	return nil
}
