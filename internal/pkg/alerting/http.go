package alerting

import (
	"fmt"
	"io"
	"net/http"
)

// HTTPClient определяет интерфейс HTTP клиента для тестирования.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// maxResponseBodySize — максимальный размер тела HTTP ответа для диагностики (1 KB).
// Ограничение защищает от OOM при аномально большом ответе API.
const maxResponseBodySize = 1024

// httpError представляет HTTP ошибку (не network).
type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// drainBody дочитывает тело ответа для переиспользования keep-alive соединений.
// Размер ограничен maxResponseBodySize.
func drainBody(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxResponseBodySize)) //nolint:errcheck // best-effort drain
}

// readLimitedBody читает тело ответа для диагностики с ограничением размера.
func readLimitedBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, maxResponseBodySize))
	return string(data)
}
