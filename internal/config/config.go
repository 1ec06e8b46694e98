// Package config загружает конфигурацию процесса: YAML файл приложения,
// переменные окружения и значения по умолчанию. Переменные окружения
// переопределяют значения из файла.
package config

import (
	"log/slog"

	"github.com/Kargones/apk-alert/internal/pkg/alerting"
	"github.com/Kargones/apk-alert/internal/pkg/token"
)

// Config — корневая конфигурация процесса.
// Заполняется в MustLoad и далее read-only.
type Config struct {
	// Command — выполняемая подкоманда (dispatch, serve, mint-token...).
	Command string `env:"BR_COMMAND"`

	// ReportPath — путь к JSON отчёту прогона. "-" означает stdin.
	ReportPath string `env:"BR_REPORT_PATH" env-default:"-"`

	// OutputFormat — формат вывода результата (json, text).
	OutputFormat string `env:"BR_OUTPUT_FORMAT" env-default:"text"`

	// ConfigPath — путь к YAML файлу приложения.
	ConfigPath string `env:"BR_ALERT_CONFIG" env-default:""`

	// Logger — bootstrap логгер процесса.
	Logger *slog.Logger

	// AppConfig — конфигурация из YAML файла (может быть nil).
	AppConfig *AppConfig

	LoggingConfig  *LoggingConfig
	MetricsConfig  *MetricsConfig
	TracingConfig  *TracingConfig
	AlertingConfig *AlertingConfig
	TokenConfig    *TokenConfig
	ServerConfig   *ServerConfig
}

// AppConfig представляет настройки приложения из YAML файла.
// Каждая секция может быть переопределена переменными окружения.
type AppConfig struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Alerting AlertingConfig `yaml:"alerting"`
	Token    TokenConfig    `yaml:"token"`
	Server   ServerConfig   `yaml:"server"`
}

// getDefaultAppConfig возвращает конфигурацию приложения по умолчанию.
func getDefaultAppConfig() *AppConfig {
	return &AppConfig{
		Logging:  *getDefaultLoggingConfig(),
		Metrics:  *getDefaultMetricsConfig(),
		Tracing:  *getDefaultTracingConfig(),
		Alerting: *getDefaultAlertingConfig(),
		Token:    *getDefaultTokenConfig(),
		Server:   *getDefaultServerConfig(),
	}
}

// ToAlertingConfig собирает runtime конфигурацию диспетчера алертинга.
// Каналы с незаполненными credentials остаются выключенными — отсутствие
// переменной окружения никогда не валит процесс.
func (c *Config) ToAlertingConfig() *alerting.Config {
	ac := c.AlertingConfig
	if ac == nil {
		cfg := alerting.DefaultConfig()
		return &cfg
	}
	return &alerting.Config{
		Enabled: ac.Enabled,
		Thresholds: alerting.ThresholdPolicy{
			FailureRateThreshold:    ac.Thresholds.FailureRate,
			CriticalAlertsThreshold: ac.Thresholds.CriticalAlerts,
			ResponseTimeThresholdMs: ac.Thresholds.ResponseTimeMs,
		},
		Retry: alerting.RetryPolicy{
			MaxRetries: ac.Retry.MaxRetries,
			RetryDelay: ac.Retry.RetryDelay,
		},
		Slack: alerting.SlackConfig{
			Enabled:    ac.Enabled && channelEnabled(ac.SlackEnabled, ac.Slack.WebhookURL != ""),
			WebhookURL: ac.Slack.WebhookURL,
			Username:   ac.Slack.Username,
			IconEmoji:  ac.Slack.IconEmoji,
			Timeout:    ac.Slack.Timeout,
		},
		Email: alerting.MailgunConfig{
			Enabled: ac.Enabled && channelEnabled(ac.EmailEnabled,
				ac.Email.APIKey != "" && ac.Email.Domain != "" && len(ac.Email.To) > 0),
			APIKey:  ac.Email.APIKey,
			Domain:  ac.Email.Domain,
			APIBase: ac.Email.APIBase,
			From:    ac.Email.From,
			To:      ac.Email.To,
			Timeout: ac.Email.Timeout,
		},
		Telegram: alerting.TelegramConfig{
			Enabled:  ac.Enabled && channelEnabled(ac.TelegramEnabled, ac.Telegram.BotToken != "" && ac.Telegram.ChatID != ""),
			BotToken: ac.Telegram.BotToken,
			ChatID:   ac.Telegram.ChatID,
			Timeout:  ac.Telegram.Timeout,
		},
		Webhook: alerting.WebhookConfig{
			Enabled: ac.Enabled && channelEnabled(ac.WebhookEnabled, ac.Webhook.URL != ""),
			URL:     ac.Webhook.URL,
			Headers: ac.Webhook.Headers,
			Timeout: ac.Webhook.Timeout,
		},
	}
}

// channelEnabled решает, включён ли канал доставки.
// Явный флаг из конфигурации выключает канал или требует credentials;
// при nil флаге канал включён когда credentials заполнены.
func channelEnabled(flag *bool, hasCredentials bool) bool {
	if flag != nil && !*flag {
		return false
	}
	return hasCredentials
}

// ToTokenConfig собирает конфигурацию сервиса токенов.
func (c *Config) ToTokenConfig() token.Config {
	tc := c.TokenConfig
	if tc == nil {
		return token.Config{}
	}
	return token.Config{
		Secret:        tc.Secret,
		TTL:           tc.TTL,
		Issuer:        tc.Issuer,
		ReportBaseURL: tc.ReportBaseURL,
	}
}
