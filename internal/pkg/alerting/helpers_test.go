package alerting

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Kargones/apk-alert/internal/pkg/logging"
)

// mockHTTPClient — мок HTTP клиента, записывающий все запросы.
// Безопасен для конкурентного использования (диспетчер шлёт из горутин).
type mockHTTPClient struct {
	mu       sync.Mutex
	DoFunc   func(req *http.Request) (*http.Response, error)
	Requests []*http.Request
	Bodies   []string
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		m.Bodies = append(m.Bodies, string(data))
		req.Body = io.NopCloser(bytes.NewReader(data))
	} else {
		m.Bodies = append(m.Bodies, "")
	}
	m.mu.Unlock()
	return m.DoFunc(req)
}

func (m *mockHTTPClient) requestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// okResponse возвращает HTTP ответ с указанным статусом и телом.
func okResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

// instantSleep — SleepFunc без реального ожидания для тестов retry.
func instantSleep(ctx context.Context, _ time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// testLogger — общий no-op логгер для тестов пакета.
var testLogger = logging.NewNopLogger()

// testMessage возвращает типовое сообщение алерта для тестов каналов.
func testMessage() AlertMessage {
	return AlertMessage{
		Title:     "Деградация тестового прогона {{reportId}}",
		Severity:  SeverityCritical,
		Timestamp: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		Metadata: []MetaField{
			{Key: "Success rate", Value: "94.12%"},
			{Key: "Среднее время ответа", Value: "15800 мс"},
		},
		ReportID:  "run-42",
		SignedURL: "https://reports.example.com/api/test-results/secure/run-42?token=abc",
		Failures:  []string{"login flow", "checkout flow"},
	}
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }
