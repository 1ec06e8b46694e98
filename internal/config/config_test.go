package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestGetDefaultAlertingConfig(t *testing.T) {
	ac := getDefaultAlertingConfig()

	assert.True(t, ac.Enabled)
	assert.Equal(t, 0.05, ac.Thresholds.FailureRate)
	assert.Equal(t, int64(1), ac.Thresholds.CriticalAlerts)
	assert.Equal(t, 500.0, ac.Thresholds.ResponseTimeMs)
	assert.Equal(t, 3, ac.Retry.MaxRetries)
	assert.Equal(t, 2*time.Second, ac.Retry.RetryDelay)
	assert.Equal(t, "apk-alert", ac.Slack.Username)
	assert.Equal(t, "https://api.mailgun.net", ac.Email.APIBase)
}

func TestValidateAlertingConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AlertingConfig)
		wantErr bool
	}{
		{"default валиден", func(_ *AlertingConfig) {}, false},
		{"отрицательный failureRate", func(ac *AlertingConfig) { ac.Thresholds.FailureRate = -0.1 }, true},
		{"отрицательный criticalAlerts", func(ac *AlertingConfig) { ac.Thresholds.CriticalAlerts = -1 }, true},
		{"отрицательный responseTime", func(ac *AlertingConfig) { ac.Thresholds.ResponseTimeMs = -5 }, true},
		{"maxRetries ноль", func(ac *AlertingConfig) { ac.Retry.MaxRetries = 0 }, true},
		{"отрицательный retryDelay", func(ac *AlertingConfig) { ac.Retry.RetryDelay = -time.Second }, true},
		{"выключенный не проверяется", func(ac *AlertingConfig) { ac.Enabled = false; ac.Retry.MaxRetries = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ac := getDefaultAlertingConfig()
			tt.mutate(ac)
			err := validateAlertingConfig(ac)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToAlertingConfig_ChannelsDisabledWithoutCredentials(t *testing.T) {
	cfg := &Config{AlertingConfig: getDefaultAlertingConfig()}

	ac := cfg.ToAlertingConfig()

	assert.True(t, ac.Enabled)
	assert.False(t, ac.Slack.Enabled, "slack без webhook URL должен быть выключен")
	assert.False(t, ac.Email.Enabled, "email без credentials должен быть выключен")
	assert.False(t, ac.Telegram.Enabled, "telegram без токена должен быть выключен")
	assert.False(t, ac.Webhook.Enabled, "webhook без URL должен быть выключен")
}

func TestToAlertingConfig_ConfiguredChannels(t *testing.T) {
	c := getDefaultAlertingConfig()
	c.Slack.WebhookURL = "https://hooks.slack.com/services/T/B/X"
	c.Email.APIKey = "key-123"
	c.Email.Domain = "mg.example.com"
	c.Email.To = []string{"qa@example.com"}
	c.Telegram.BotToken = "12345:token"
	c.Telegram.ChatID = "-100200300"
	c.Webhook.URL = "https://alerts.example.com/hook"
	cfg := &Config{AlertingConfig: c}

	ac := cfg.ToAlertingConfig()

	assert.True(t, ac.Slack.Enabled)
	assert.True(t, ac.Email.Enabled)
	assert.True(t, ac.Telegram.Enabled)
	assert.True(t, ac.Webhook.Enabled)
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", ac.Slack.WebhookURL)
	assert.Equal(t, []string{"qa@example.com"}, ac.Email.To)
	assert.Equal(t, "-100200300", ac.Telegram.ChatID)
}

func TestToAlertingConfig_GlobalDisableWinsOverCredentials(t *testing.T) {
	c := getDefaultAlertingConfig()
	c.Enabled = false
	c.Slack.WebhookURL = "https://hooks.slack.com/services/T/B/X"
	cfg := &Config{AlertingConfig: c}

	ac := cfg.ToAlertingConfig()

	assert.False(t, ac.Enabled)
	assert.False(t, ac.Slack.Enabled)
}

func TestToAlertingConfig_Thresholds(t *testing.T) {
	c := getDefaultAlertingConfig()
	c.Thresholds.FailureRate = 0.1
	c.Thresholds.CriticalAlerts = 5
	c.Thresholds.ResponseTimeMs = 1000
	c.Retry.MaxRetries = 4
	c.Retry.RetryDelay = 500 * time.Millisecond
	cfg := &Config{AlertingConfig: c}

	ac := cfg.ToAlertingConfig()

	assert.Equal(t, 0.1, ac.Thresholds.FailureRateThreshold)
	assert.Equal(t, int64(5), ac.Thresholds.CriticalAlertsThreshold)
	assert.Equal(t, 1000.0, ac.Thresholds.ResponseTimeThresholdMs)
	assert.Equal(t, 4, ac.Retry.MaxRetries)
	assert.Equal(t, 500*time.Millisecond, ac.Retry.RetryDelay)
}

func TestValidateTokenConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     TokenConfig
		wantErr bool
	}{
		{"пустой секрет не ошибка", TokenConfig{}, false},
		{"валидный секрет", TokenConfig{Secret: "super-secret-key-0123456789", TTL: time.Hour}, false},
		{"короткий секрет", TokenConfig{Secret: "short", TTL: time.Hour}, true},
		{"нулевой ttl", TokenConfig{Secret: "super-secret-key-0123456789"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTokenConfig(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTokenConfig_Configured(t *testing.T) {
	assert.False(t, (&TokenConfig{}).Configured())
	assert.True(t, (&TokenConfig{Secret: "x"}).Configured())

	var nilCfg *TokenConfig
	assert.False(t, nilCfg.Configured())
}

func TestToTokenConfig(t *testing.T) {
	cfg := &Config{TokenConfig: &TokenConfig{
		Secret:        "super-secret-key-0123456789",
		TTL:           time.Hour,
		Issuer:        "apk-alert",
		ReportBaseURL: "https://reports.example.com",
	}}

	tc := cfg.ToTokenConfig()

	assert.Equal(t, "super-secret-key-0123456789", tc.Secret)
	assert.Equal(t, time.Hour, tc.TTL)
	assert.Equal(t, "https://reports.example.com", tc.ReportBaseURL)
}

func TestValidateMetricsConfig(t *testing.T) {
	valid := &MetricsConfig{Enabled: true, PushgatewayURL: "http://pushgateway:9091", Timeout: time.Second}
	assert.NoError(t, validateMetricsConfig(valid))

	assert.NoError(t, validateMetricsConfig(&MetricsConfig{Enabled: false}))
	assert.Error(t, validateMetricsConfig(&MetricsConfig{Enabled: true, Timeout: time.Second}))
	assert.Error(t, validateMetricsConfig(&MetricsConfig{Enabled: true, PushgatewayURL: "http://p:9091"}))
}

func TestValidateTracingConfig(t *testing.T) {
	valid := getDefaultTracingConfig()
	valid.Enabled = true
	valid.Endpoint = "http://jaeger:4318"
	assert.NoError(t, validateTracingConfig(valid))

	noEndpoint := getDefaultTracingConfig()
	noEndpoint.Enabled = true
	assert.Error(t, validateTracingConfig(noEndpoint))

	badRate := getDefaultTracingConfig()
	badRate.Enabled = true
	badRate.Endpoint = "http://jaeger:4318"
	badRate.SamplingRate = 1.5
	assert.Error(t, validateTracingConfig(badRate))
}

func TestValidateServerConfig(t *testing.T) {
	assert.NoError(t, validateServerConfig(getDefaultServerConfig()))
	assert.Error(t, validateServerConfig(&ServerConfig{ReportsDir: "./reports", ReadTimeout: 1, WriteTimeout: 1, ShutdownTimeout: 1}))
	assert.Error(t, validateServerConfig(&ServerConfig{Addr: ":8080", ReadTimeout: 1, WriteTimeout: 1, ShutdownTimeout: 1}))
	assert.Error(t, validateServerConfig(&ServerConfig{Addr: ":8080", ReportsDir: "./reports"}))
}

func TestLoadAppConfig_FromYAML(t *testing.T) {
	yamlContent := `
alerting:
  enabled: true
  thresholds:
    failureRate: 0.1
    criticalAlerts: 3
    responseTime: 750
  retryConfig:
    maxRetries: 5
    retryDelay: 3s
  slack:
    username: qa-bot
logging:
  level: debug
  format: json
server:
  addr: ":9090"
`
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	cfg := &Config{ConfigPath: path}
	appConfig, err := loadAppConfig(testSlog(), cfg)
	require.NoError(t, err)

	// Документированная форма секции alerting: каждое значение из
	// вложенных thresholds/retryConfig должно попасть в конфигурацию,
	// а не молча остаться нулём.
	assert.True(t, appConfig.Alerting.Enabled)
	assert.Equal(t, 0.1, appConfig.Alerting.Thresholds.FailureRate)
	assert.Equal(t, int64(3), appConfig.Alerting.Thresholds.CriticalAlerts)
	assert.Equal(t, 750.0, appConfig.Alerting.Thresholds.ResponseTimeMs)
	assert.Equal(t, 5, appConfig.Alerting.Retry.MaxRetries)
	assert.Equal(t, 3*time.Second, appConfig.Alerting.Retry.RetryDelay)
	assert.Equal(t, "qa-bot", appConfig.Alerting.Slack.Username)
	assert.Equal(t, "debug", appConfig.Logging.Level)
	assert.Equal(t, ":9090", appConfig.Server.Addr)
}

func TestLoadAppConfig_ChannelEnableFlags(t *testing.T) {
	yamlContent := `
alerting:
  enabled: true
  slackEnabled: false
  telegramEnabled: true
  slack:
    webhookUrl: "https://hooks.slack.com/services/T/B/yaml"
  telegram:
    botToken: "111:yamltoken"
    chatId: "-100"
`
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o600))

	cfg := &Config{ConfigPath: path}
	appConfig, err := loadAppConfig(testSlog(), cfg)
	require.NoError(t, err)

	runtime := (&Config{AlertingConfig: &appConfig.Alerting}).ToAlertingConfig()

	// slackEnabled: false выключает канал даже при заполненном webhook URL.
	assert.False(t, runtime.Slack.Enabled)
	assert.True(t, runtime.Telegram.Enabled)
	// emailEnabled не задан — канал управляется наличием credentials.
	assert.Nil(t, appConfig.Alerting.EmailEnabled)
	assert.False(t, runtime.Email.Enabled)
}

func TestToAlertingConfig_ExplicitEnableStillRequiresCredentials(t *testing.T) {
	on := true
	c := getDefaultAlertingConfig()
	c.SlackEnabled = &on
	cfg := &Config{AlertingConfig: c}

	ac := cfg.ToAlertingConfig()

	// Флаг включения не заменяет credentials: без webhook URL слать некуда.
	assert.False(t, ac.Slack.Enabled)
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	cfg := &Config{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")}
	_, err := loadAppConfig(testSlog(), cfg)
	assert.Error(t, err)
}

func TestLoadAppConfig_EmptyPath(t *testing.T) {
	cfg := &Config{}
	appConfig, err := loadAppConfig(testSlog(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, appConfig)
	assert.True(t, appConfig.Alerting.Enabled)
}

func TestLoadAlertingConfig_EnvOverride(t *testing.T) {
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "999:envtoken")
	t.Setenv("TELEGRAM_CHAT_ID", "@qa_alerts")
	t.Setenv("BR_ALERTING_MAX_RETRIES", "4")

	cfg := &Config{}
	ac, err := loadAlertingConfig(testSlog(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://hooks.slack.com/services/T/B/env", ac.Slack.WebhookURL)
	assert.Equal(t, "999:envtoken", ac.Telegram.BotToken)
	assert.Equal(t, "@qa_alerts", ac.Telegram.ChatID)
	assert.Equal(t, 4, ac.Retry.MaxRetries)
}

func TestLoadAlertingConfig_MissingEnvKeepsChannelsUnconfigured(t *testing.T) {
	cfg := &Config{}
	ac, err := loadAlertingConfig(testSlog(), cfg)
	require.NoError(t, err)

	// Отсутствие credentials — штатный режим, не ошибка.
	runtime := (&Config{AlertingConfig: ac}).ToAlertingConfig()
	assert.False(t, runtime.Slack.Enabled)
	assert.False(t, runtime.Email.Enabled)
	assert.False(t, runtime.Telegram.Enabled)
	assert.False(t, runtime.Webhook.Enabled)
}

func TestLoadTokenConfig_SecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret-key-0123456789abcdef")

	cfg := &Config{}
	tc, err := loadTokenConfig(testSlog(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "env-secret-key-0123456789abcdef", tc.Secret)
	assert.Equal(t, 24*time.Hour, tc.TTL)
	assert.Equal(t, "apk-alert", tc.Issuer)
}

func TestLoggingConfig_ToLoggingConfig(t *testing.T) {
	lc := getDefaultLoggingConfig()
	out := lc.ToLoggingConfig()

	assert.Equal(t, "info", out.Level)
	assert.Equal(t, "text", out.Format)
	assert.Equal(t, "stderr", out.Output)
	assert.Equal(t, 100, out.MaxSize)
}

func TestTracingConfig_ToTracingConfig(t *testing.T) {
	tc := getDefaultTracingConfig()
	out := tc.ToTracingConfig("1.2.3")

	assert.Equal(t, "apk-alert", out.ServiceName)
	assert.Equal(t, "1.2.3", out.Version)
	assert.Equal(t, 1.0, out.SamplingRate)
}
