package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"
)

func newTestTelegramChannel(client *mockHTTPClient) *TelegramChannel {
	ch := NewTelegramChannel(TelegramConfig{
		Enabled:  true,
		BotToken: "123456:ABC-secret",
		ChatID:   "-1001234567890",
	}, RetryPolicy{MaxRetries: 3, RetryDelay: time.Millisecond}, testLogger)
	ch.SetHTTPClient(client)
	ch.SetSleepFunc(instantSleep)
	return ch
}

func TestTelegramChannel_SendSuccess(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return okResponse(http.StatusOK, `{"ok":true,"result":{"message_id":1}}`), nil
		},
	}
	ch := newTestTelegramChannel(client)

	outcome := ch.Send(context.Background(), testMessage())

	if !outcome.Success {
		t.Fatalf("Success = false: %s", outcome.LastError)
	}

	req := client.Requests[0]
	if !strings.Contains(req.URL.String(), "/bot123456:ABC-secret/sendMessage") {
		t.Errorf("URL = %q", req.URL.String())
	}

	var body telegramRequest
	if err := json.Unmarshal([]byte(client.Bodies[0]), &body); err != nil {
		t.Fatalf("тело не JSON: %v", err)
	}
	if body.ChatID != "-1001234567890" {
		t.Errorf("chat_id = %q", body.ChatID)
	}
	if body.ParseMode != TelegramParseMode {
		t.Errorf("parse_mode = %q", body.ParseMode)
	}
	if !body.DisableWebPagePreview {
		t.Errorf("disable_web_page_preview должен быть true")
	}
	if !strings.Contains(body.Text, "run") {
		t.Errorf("текст без reportId: %q", body.Text)
	}
}

func TestTelegramChannel_APIError(t *testing.T) {
	// HTTP 200, но ok=false — это ошибка доставки.
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return okResponse(http.StatusOK, `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`), nil
		},
	}
	ch := newTestTelegramChannel(client)

	outcome := ch.Send(context.Background(), testMessage())

	if outcome.Success {
		t.Fatalf("Success = true при ok=false")
	}
	if !strings.Contains(outcome.LastError, "chat not found") {
		t.Errorf("LastError = %q, ожидалось описание из ответа API", outcome.LastError)
	}
	if client.requestCount() != 3 {
		t.Errorf("запросов = %d, ожидалось 3 (retry)", client.requestCount())
	}
}

func TestTelegramChannel_BotTokenRedactedInErrors(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New(`Post "https://api.telegram.org/bot123456:ABC-secret/sendMessage": dial timeout`)
		},
	}
	ch := newTestTelegramChannel(client)

	outcome := ch.Send(context.Background(), testMessage())

	if strings.Contains(outcome.LastError, "ABC-secret") {
		t.Errorf("bot token утёк в текст ошибки: %q", outcome.LastError)
	}
	if !strings.Contains(outcome.LastError, "[REDACTED]") {
		t.Errorf("ожидалась редакция токена: %q", outcome.LastError)
	}
}

func TestTelegramChannel_NotConfigured(t *testing.T) {
	tests := []struct {
		name   string
		config TelegramConfig
	}{
		{"без токена", TelegramConfig{Enabled: true, ChatID: "1"}},
		{"без chat id", TelegramConfig{Enabled: true, BotToken: "t"}},
		{"выключен", TelegramConfig{BotToken: "t", ChatID: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockHTTPClient{
				DoFunc: func(req *http.Request) (*http.Response, error) {
					t.Fatal("сетевой вызов для несконфигурированного канала")
					return nil, nil
				},
			}
			ch := NewTelegramChannel(tt.config, RetryPolicy{}, testLogger)
			ch.SetHTTPClient(client)

			outcome := ch.Send(context.Background(), testMessage())
			if !outcome.NotConfigured {
				t.Errorf("NotConfigured = false")
			}
		})
	}
}

func TestTelegramChannel_MalformedResponse(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return okResponse(http.StatusOK, "<html>gateway error</html>"), nil
		},
	}
	ch := newTestTelegramChannel(client)

	outcome := ch.Send(context.Background(), testMessage())
	if outcome.Success {
		t.Fatalf("Success = true для не-JSON ответа")
	}
}

func TestTelegramConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  TelegramConfig
		wantErr error
	}{
		{"числовой chat id", TelegramConfig{Enabled: true, BotToken: "t", ChatID: "123"}, nil},
		{"отрицательный chat id группы", TelegramConfig{Enabled: true, BotToken: "t", ChatID: "-1001234"}, nil},
		{"username канала", TelegramConfig{Enabled: true, BotToken: "t", ChatID: "@mychannel"}, nil},
		{"буквы в chat id", TelegramConfig{Enabled: true, BotToken: "t", ChatID: "abc"}, ErrTelegramChatIDInvalid},
		{"одиночный минус", TelegramConfig{Enabled: true, BotToken: "t", ChatID: "-"}, ErrTelegramChatIDInvalid},
		{"пустой chat id — канал пропускается", TelegramConfig{Enabled: true, BotToken: "t"}, nil},
		{"выключенный канал всегда валиден", TelegramConfig{ChatID: "abc"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, ожидалось %v", err, tt.wantErr)
			}
		})
	}
}
