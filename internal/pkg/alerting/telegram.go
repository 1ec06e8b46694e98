package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/urlutil"
)

// TelegramAPIBaseURL — базовый URL Telegram Bot API.
const TelegramAPIBaseURL = "https://api.telegram.org/bot"

// TelegramParseMode — режим парсинга сообщений.
// Markdown v1 deprecated в Telegram API, но v2 требует другого escaping.
const TelegramParseMode = "Markdown"

// maxTelegramResponseSize — максимальный размер тела ответа Telegram API (1 KB).
// Типичный JSON ответ — 200-500 байт; ограничение защищает от OOM.
const maxTelegramResponseSize = 1024

// TelegramChannel реализует Channel для отправки в Telegram.
type TelegramChannel struct {
	config     TelegramConfig
	retry      *RetryExecutor
	logger     logging.Logger
	httpClient HTTPClient
	apiBase    string
}

// NewTelegramChannel создаёт TelegramChannel с указанной конфигурацией и retry политикой.
func NewTelegramChannel(config TelegramConfig, retry RetryPolicy, logger logging.Logger) *TelegramChannel {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultHTTPTimeout
	}

	return &TelegramChannel{
		config:     config,
		retry:      NewRetryExecutor(retry, logger),
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		apiBase:    TelegramAPIBaseURL,
	}
}

// SetHTTPClient устанавливает кастомный HTTPClient (для тестирования).
func (t *TelegramChannel) SetHTTPClient(client HTTPClient) {
	t.httpClient = client
}

// SetSleepFunc устанавливает кастомную SleepFunc retry executor'а (для тестирования).
func (t *TelegramChannel) SetSleepFunc(fn SleepFunc) {
	t.retry.SetSleepFunc(fn)
}

// SetAPIBase переопределяет базовый URL Telegram API (для тестирования).
func (t *TelegramChannel) SetAPIBase(base string) {
	t.apiBase = base
}

// Name возвращает имя канала.
func (t *TelegramChannel) Name() string { return ChannelTelegram }

// Configured сообщает, заданы ли bot token и chat id.
func (t *TelegramChannel) Configured() bool {
	return t.config.Enabled && t.config.BotToken != "" && t.config.ChatID != ""
}

// Send доставляет алерт в Telegram с retry.
func (t *TelegramChannel) Send(ctx context.Context, msg AlertMessage) DeliveryOutcome {
	if !t.Configured() {
		t.logger.Debug("telegram канал не сконфигурирован — пропуск", "channel", ChannelTelegram)
		return DeliveryOutcome{Channel: ChannelTelegram, NotConfigured: true}
	}

	text := RenderTelegram(msg)

	outcome := t.retry.Execute(ctx, ChannelTelegram, func(ctx context.Context) error {
		return t.sendMessage(ctx, text)
	})

	if outcome.Success {
		t.logger.Info("telegram алерт отправлен",
			"report_id", msg.ReportID,
			"severity", msg.Severity.String(),
			"attempts", outcome.Attempts,
		)
	} else {
		t.logger.Error("ошибка отправки telegram алерта",
			"error", outcome.LastError,
			"chat_id", t.config.ChatID,
			"report_id", msg.ReportID,
			"attempts", outcome.Attempts,
		)
	}
	return outcome
}

// telegramRequest представляет запрос к Telegram API sendMessage.
type telegramRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// telegramResponse представляет ответ Telegram API.
type telegramResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// sendMessage выполняет один вызов sendMessage.
// Успех — не HTTP статус, а поле ok=true в JSON ответе.
func (t *TelegramChannel) sendMessage(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s%s/sendMessage", t.apiBase, t.config.BotToken)

	reqBody := telegramRequest{
		ChatID:                t.config.ChatID,
		Text:                  text,
		ParseMode:             TelegramParseMode,
		DisableWebPagePreview: true,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// Санитизируем ошибку: Go stdlib включает URL (с BotToken) в текст ошибки.
		return fmt.Errorf("HTTP request failed: %s", urlutil.RedactSecret(err.Error(), t.config.BotToken))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTelegramResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var telegramResp telegramResponse
	if err := json.Unmarshal(body, &telegramResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !telegramResp.OK {
		return fmt.Errorf("Telegram API error %d: %s", telegramResp.ErrorCode, telegramResp.Description)
	}
	return nil
}
