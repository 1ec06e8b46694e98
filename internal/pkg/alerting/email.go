package alerting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/urlutil"
)

// MailgunChannel реализует Channel для отправки email через Mailgun HTTP API.
// Письмо отправляется form-encoded POST'ом на /v3/<domain>/messages
// с Basic auth "api:<apikey>".
type MailgunChannel struct {
	config     MailgunConfig
	retry      *RetryExecutor
	logger     logging.Logger
	httpClient HTTPClient
}

// NewMailgunChannel создаёт MailgunChannel с указанной конфигурацией и retry политикой.
func NewMailgunChannel(config MailgunConfig, retry RetryPolicy, logger logging.Logger) *MailgunChannel {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}
	if config.APIBase == "" {
		config.APIBase = DefaultMailgunAPIBase
	}
	if config.From == "" && config.Domain != "" {
		config.From = "alerts@" + config.Domain
	}

	return &MailgunChannel{
		config:     config,
		retry:      NewRetryExecutor(retry, logger),
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient устанавливает кастомный HTTPClient (для тестирования).
func (m *MailgunChannel) SetHTTPClient(client HTTPClient) {
	m.httpClient = client
}

// SetSleepFunc устанавливает кастомную SleepFunc retry executor'а (для тестирования).
func (m *MailgunChannel) SetSleepFunc(fn SleepFunc) {
	m.retry.SetSleepFunc(fn)
}

// Name возвращает имя канала.
func (m *MailgunChannel) Name() string { return ChannelEmail }

// Configured сообщает, заданы ли API key, домен и хотя бы один получатель.
func (m *MailgunChannel) Configured() bool {
	return m.config.Enabled && m.config.APIKey != "" && m.config.Domain != "" && len(m.config.To) > 0
}

// Send доставляет алерт на email с retry.
func (m *MailgunChannel) Send(ctx context.Context, msg AlertMessage) DeliveryOutcome {
	if !m.Configured() {
		m.logger.Debug("email канал не сконфигурирован — пропуск", "channel", ChannelEmail)
		return DeliveryOutcome{Channel: ChannelEmail, NotConfigured: true}
	}

	html, err := RenderEmailHTML(msg)
	if err != nil {
		// Рендерер тотален по контракту; ошибка возможна только при
		// поломке встроенного шаблона — фиксируем как неуспех доставки.
		return DeliveryOutcome{Channel: ChannelEmail, Attempts: 1, LastError: err.Error()}
	}

	subject := fmt.Sprintf("[apk-alert] %s: %s", msg.Severity.String(), Substitute(msg.Title, Vars(msg)))

	outcome := m.retry.Execute(ctx, ChannelEmail, func(ctx context.Context) error {
		return m.post(ctx, subject, html)
	})

	if outcome.Success {
		m.logger.Info("email алерт отправлен",
			"report_id", msg.ReportID,
			"severity", msg.Severity.String(),
			"recipients", len(m.config.To),
			"attempts", outcome.Attempts,
		)
	} else {
		m.logger.Error("ошибка отправки email алерта",
			"error", outcome.LastError,
			"domain", m.config.Domain,
			"report_id", msg.ReportID,
			"attempts", outcome.Attempts,
		)
	}
	return outcome
}

// post выполняет один HTTP POST к Mailgun API.
func (m *MailgunChannel) post(ctx context.Context, subject, html string) error {
	form := url.Values{}
	form.Set("from", m.config.From)
	for _, to := range m.config.To {
		form.Add("to", to)
	}
	form.Set("subject", subject)
	form.Set("html", html)

	endpoint := fmt.Sprintf("%s/v3/%s/messages", strings.TrimRight(m.config.APIBase, "/"), m.config.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", m.config.APIKey)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		// Санитизируем ошибку: текст может включать URL с credentials.
		return fmt.Errorf("HTTP request failed: %s", urlutil.RedactSecret(err.Error(), m.config.APIKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		drainBody(resp.Body)
		return nil
	}
	return &httpError{StatusCode: resp.StatusCode, Body: readLimitedBody(resp.Body)}
}
