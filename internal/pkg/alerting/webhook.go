package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/urlutil"
)

// WebhookChannel реализует Channel для отправки через generic HTTP webhook.
type WebhookChannel struct {
	config     WebhookConfig
	retry      *RetryExecutor
	logger     logging.Logger
	httpClient HTTPClient
	hostname   string // кэшируется при создании, не при каждом Send
}

// WebhookPayload представляет JSON payload для webhook.
type WebhookPayload struct {
	Title     string            `json:"title"`
	Severity  string            `json:"severity"`
	Timestamp time.Time         `json:"timestamp"`
	ReportID  string            `json:"report_id"`
	SignedURL string            `json:"signed_url,omitempty"`
	Failures  []string          `json:"failures,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Source    string            `json:"source"`
	Hostname  string            `json:"hostname,omitempty"`
}

// NewWebhookChannel создаёт WebhookChannel с указанной конфигурацией и retry политикой.
func NewWebhookChannel(config WebhookConfig, retry RetryPolicy, logger logging.Logger) *WebhookChannel {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return &WebhookChannel{
		config:     config,
		retry:      NewRetryExecutor(retry, logger),
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		hostname:   hostname,
	}
}

// SetHTTPClient устанавливает кастомный HTTPClient (для тестирования).
func (w *WebhookChannel) SetHTTPClient(client HTTPClient) {
	w.httpClient = client
}

// SetSleepFunc устанавливает кастомную SleepFunc retry executor'а (для тестирования).
func (w *WebhookChannel) SetSleepFunc(fn SleepFunc) {
	w.retry.SetSleepFunc(fn)
}

// Name возвращает имя канала.
func (w *WebhookChannel) Name() string { return ChannelWebhook }

// Configured сообщает, задан ли URL.
func (w *WebhookChannel) Configured() bool {
	return w.config.Enabled && w.config.URL != ""
}

// Send доставляет алерт через webhook с retry.
func (w *WebhookChannel) Send(ctx context.Context, msg AlertMessage) DeliveryOutcome {
	if !w.Configured() {
		w.logger.Debug("webhook канал не сконфигурирован — пропуск", "channel", ChannelWebhook)
		return DeliveryOutcome{Channel: ChannelWebhook, NotConfigured: true}
	}

	payload := w.createPayload(msg)

	outcome := w.retry.Execute(ctx, ChannelWebhook, func(ctx context.Context) error {
		return w.post(ctx, payload)
	})

	if outcome.Success {
		w.logger.Info("webhook алерт отправлен",
			"report_id", msg.ReportID,
			"severity", msg.Severity.String(),
			"attempts", outcome.Attempts,
		)
	} else {
		w.logger.Error("ошибка отправки webhook алерта",
			"error", outcome.LastError,
			"url", urlutil.MaskURL(w.config.URL),
			"report_id", msg.ReportID,
			"attempts", outcome.Attempts,
		)
	}
	return outcome
}

// createPayload создаёт WebhookPayload из AlertMessage.
func (w *WebhookChannel) createPayload(msg AlertMessage) WebhookPayload {
	vars := Vars(msg)

	var meta map[string]string
	if len(msg.Metadata) > 0 {
		meta = make(map[string]string, len(msg.Metadata))
		for _, f := range msg.Metadata {
			meta[f.Key] = Substitute(f.Value, vars)
		}
	}

	failures := msg.Failures
	if len(failures) > maxRenderedFailures {
		failures = failures[:maxRenderedFailures]
	}

	return WebhookPayload{
		Title:     Substitute(msg.Title, vars),
		Severity:  msg.Severity.String(),
		Timestamp: msg.Timestamp,
		ReportID:  msg.ReportID,
		SignedURL: msg.SignedURL,
		Failures:  failures,
		Metadata:  meta,
		Source:    "apk-alert",
		Hostname:  w.hostname,
	}
}

// post выполняет один HTTP POST с payload.
func (w *WebhookChannel) post(ctx context.Context, payload WebhookPayload) error {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.config.URL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "apk-alert/1.0")
	for key, value := range w.config.Headers {
		req.Header.Set(key, value)
	}

	resp, err := w.httpClient.Do(req)
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
