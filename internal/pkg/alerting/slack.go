package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/urlutil"
)

// SlackChannel реализует Channel для отправки в Slack через incoming webhook.
type SlackChannel struct {
	config     SlackConfig
	retry      *RetryExecutor
	logger     logging.Logger
	httpClient HTTPClient
}

// NewSlackChannel создаёт SlackChannel с указанной конфигурацией и retry политикой.
func NewSlackChannel(config SlackConfig, retry RetryPolicy, logger logging.Logger) *SlackChannel {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}
	if config.Username == "" {
		config.Username = DefaultSlackUsername
	}
	if config.IconEmoji == "" {
		config.IconEmoji = DefaultSlackIconEmoji
	}

	return &SlackChannel{
		config:     config,
		retry:      NewRetryExecutor(retry, logger),
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient устанавливает кастомный HTTPClient (для тестирования).
func (s *SlackChannel) SetHTTPClient(client HTTPClient) {
	s.httpClient = client
}

// SetSleepFunc устанавливает кастомную SleepFunc retry executor'а (для тестирования).
func (s *SlackChannel) SetSleepFunc(fn SleepFunc) {
	s.retry.SetSleepFunc(fn)
}

// Name возвращает имя канала.
func (s *SlackChannel) Name() string { return ChannelSlack }

// Configured сообщает, задан ли webhook URL.
func (s *SlackChannel) Configured() bool {
	return s.config.Enabled && s.config.WebhookURL != ""
}

// Send доставляет алерт в Slack с retry.
// Несконфигурированный канал — no-op без сетевых вызовов.
func (s *SlackChannel) Send(ctx context.Context, msg AlertMessage) DeliveryOutcome {
	if !s.Configured() {
		s.logger.Debug("slack канал не сконфигурирован — пропуск", "channel", ChannelSlack)
		return DeliveryOutcome{Channel: ChannelSlack, NotConfigured: true}
	}

	payload := RenderSlack(msg, s.config.Username, s.config.IconEmoji)
	body, err := json.Marshal(payload)
	if err != nil {
		// Payload строится из типизированных структур — маршалинг не падает,
		// guard оставлен на случай будущих полей с нестандартными типами.
		return DeliveryOutcome{Channel: ChannelSlack, Attempts: 1, LastError: err.Error()}
	}

	outcome := s.retry.Execute(ctx, ChannelSlack, func(ctx context.Context) error {
		return s.post(ctx, body)
	})

	if outcome.Success {
		s.logger.Info("slack алерт отправлен",
			"report_id", msg.ReportID,
			"severity", msg.Severity.String(),
			"attempts", outcome.Attempts,
		)
	} else {
		s.logger.Error("ошибка отправки slack алерта",
			"error", outcome.LastError,
			"url", urlutil.MaskURL(s.config.WebhookURL),
			"report_id", msg.ReportID,
			"attempts", outcome.Attempts,
		)
	}
	return outcome
}

// post выполняет один HTTP POST к slack webhook.
func (s *SlackChannel) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err // network error — retryable
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		drainBody(resp.Body)
		return nil
	}
	return &httpError{StatusCode: resp.StatusCode, Body: readLimitedBody(resp.Body)}
}
