// Package report содержит сущности отчётов тестовых прогонов.
// MetricsSummary — снимок агрегированных метрик одного прогона,
// производится внешним runner'ом (newman, smoke tests) и не мутируется.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
)

// MetricsSummary — агрегированный результат одного тестового прогона.
// Числовые метрики — указатели: nil означает, что поле отсутствовало
// в исходном отчёте. Оценка порогов трактует отсутствующее/некорректное
// значение как безопасное (не триггерит алерт) и фиксирует note.
type MetricsSummary struct {
	// TotalRequests — всего запросов в прогоне.
	TotalRequests int64 `json:"totalRequests"`

	// FailCount — количество упавших запросов.
	FailCount int64 `json:"failCount"`

	// SuccessRatePercent — процент успешных запросов (0..100).
	SuccessRatePercent *float64 `json:"successRatePercent"`

	// AvgResponseTimeMs — среднее время ответа в миллисекундах.
	AvgResponseTimeMs *float64 `json:"avgResponseTimeMs"`

	// CriticalAlerts — количество критических срабатываний в прогоне.
	CriticalAlerts *int64 `json:"criticalAlerts"`

	// GeneratedAt — время формирования отчёта.
	GeneratedAt time.Time `json:"generatedAt"`

	// ReportID — идентификатор отчёта. Если runner не задал — генерируется UUID.
	ReportID string `json:"reportId"`

	// Failures — имена упавших проверок (опционально, для тела алерта).
	Failures []string `json:"failures,omitempty"`
}

// SuccessRate возвращает successRatePercent и признак наличия корректного значения.
// NaN и отсутствующее поле считаются некорректными.
func (s *MetricsSummary) SuccessRate() (float64, bool) {
	if s.SuccessRatePercent == nil || math.IsNaN(*s.SuccessRatePercent) {
		return 0, false
	}
	return *s.SuccessRatePercent, true
}

// ResponseTime возвращает avgResponseTimeMs и признак наличия корректного значения.
func (s *MetricsSummary) ResponseTime() (float64, bool) {
	if s.AvgResponseTimeMs == nil || math.IsNaN(*s.AvgResponseTimeMs) {
		return 0, false
	}
	return *s.AvgResponseTimeMs, true
}

// CriticalCount возвращает criticalAlerts и признак наличия значения.
func (s *MetricsSummary) CriticalCount() (int64, bool) {
	if s.CriticalAlerts == nil {
		return 0, false
	}
	return *s.CriticalAlerts, true
}

// LoadSummary читает MetricsSummary из файла path.
// Путь "-" означает чтение из stdin.
// Возвращает summary, пометки о качестве данных и ошибку чтения/парсинга.
// Пометки (notes) не являются ошибками: summary пригоден для оценки порогов,
// отсутствующие метрики трактуются как безопасные значения.
func LoadSummary(path string) (*MetricsSummary, []string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("чтение отчёта: %w", err)
	}
	return ParseSummary(data)
}

// ParseSummary парсит JSON отчёта.
// Схема проверяется через jsonschema (см. schema.go); нарушения схемы
// деградируют в data-quality notes — парсинг продолжается, некорректные
// числовые поля обнуляются в nil (безопасное значение).
func ParseSummary(data []byte) (*MetricsSummary, []string, error) {
	notes := ValidateSummaryJSON(data)

	var s MetricsSummary
	if err := json.Unmarshal(data, &s); err != nil {
		// Строгий парсинг не прошёл (например, строка вместо числа) —
		// пробуем лениво вытащить то, что можно.
		lenient, lenientNotes, lenientErr := parseLenient(data)
		if lenientErr != nil {
			return nil, notes, fmt.Errorf("парсинг отчёта: %w", err)
		}
		s = *lenient
		notes = append(notes, lenientNotes...)
	}

	if s.ReportID == "" {
		s.ReportID = uuid.NewString()
		notes = append(notes, "reportId отсутствует — сгенерирован автоматически")
	}
	if s.GeneratedAt.IsZero() {
		s.GeneratedAt = time.Now().UTC()
	}

	return &s, notes, nil
}

// parseLenient разбирает отчёт через map, пропуская поля с неожиданным типом.
// Каждое пропущенное поле фиксируется как note.
func parseLenient(data []byte) (*MetricsSummary, []string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	var notes []string
	s := &MetricsSummary{}

	if v, ok := asFloat(raw["totalRequests"]); ok {
		s.TotalRequests = int64(v)
	}
	if v, ok := asFloat(raw["failCount"]); ok {
		s.FailCount = int64(v)
	}
	if v, ok := asFloat(raw["successRatePercent"]); ok {
		s.SuccessRatePercent = &v
	} else if _, present := raw["successRatePercent"]; present {
		notes = append(notes, "successRatePercent: не число — игнорируется")
	}
	if v, ok := asFloat(raw["avgResponseTimeMs"]); ok {
		s.AvgResponseTimeMs = &v
	} else if _, present := raw["avgResponseTimeMs"]; present {
		notes = append(notes, "avgResponseTimeMs: не число — игнорируется")
	}
	if v, ok := asFloat(raw["criticalAlerts"]); ok {
		n := int64(v)
		s.CriticalAlerts = &n
	} else if _, present := raw["criticalAlerts"]; present {
		notes = append(notes, "criticalAlerts: не число — игнорируется")
	}
	if v, ok := raw["reportId"].(string); ok {
		s.ReportID = v
	}
	if v, ok := raw["generatedAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			s.GeneratedAt = t
		} else {
			notes = append(notes, "generatedAt: некорректный формат времени")
		}
	}
	if items, ok := raw["failures"].([]any); ok {
		for _, it := range items {
			if str, ok := it.(string); ok {
				s.Failures = append(s.Failures, str)
			}
		}
	}

	return s, notes, nil
}

// asFloat приводит JSON значение к float64 если это число.
func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
