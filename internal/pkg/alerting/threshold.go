package alerting

import (
	"fmt"
	"math"

	"github.com/Kargones/apk-alert/internal/entity/report"
)

// Имена правил порогов. Попадают в breached_rules результата и в тело алерта.
const (
	// RuleSuccessRate — процент успешных запросов ниже допустимого.
	RuleSuccessRate = "successRate"
	// RuleCriticalAlerts — количество критических срабатываний достигло порога.
	RuleCriticalAlerts = "criticalAlerts"
	// RuleResponseTime — среднее время ответа выше порога.
	RuleResponseTime = "responseTime"
)

// ThresholdPolicy — конфигурация порогов. Загружается один раз при старте
// процесса и далее не мутируется. Инвариант: все поля неотрицательны
// (проверяется в Validate).
type ThresholdPolicy struct {
	// FailureRateThreshold — допустимая доля отказов (0.05 = требуется ≥95% успеха).
	FailureRateThreshold float64

	// CriticalAlertsThreshold — порог количества критических срабатываний.
	CriticalAlertsThreshold int64

	// ResponseTimeThresholdMs — порог среднего времени ответа, мс.
	ResponseTimeThresholdMs float64
}

// Validate проверяет инвариант неотрицательности порогов.
func (p *ThresholdPolicy) Validate() error {
	if p.FailureRateThreshold < 0 || math.IsNaN(p.FailureRateThreshold) {
		return ErrThresholdFailureRateInvalid
	}
	if p.CriticalAlertsThreshold < 0 {
		return ErrThresholdCriticalAlertsInvalid
	}
	if p.ResponseTimeThresholdMs < 0 || math.IsNaN(p.ResponseTimeThresholdMs) {
		return ErrThresholdResponseTimeInvalid
	}
	return nil
}

// Decision — результат оценки порогов. Вычисляется заново на каждый вызов,
// не персистится и не мутируется после возврата.
type Decision struct {
	// Triggered — сработал ли хотя бы один порог.
	Triggered bool

	// BreachedRules — имена сработавших правил в фиксированном порядке
	// (successRate, criticalAlerts, responseTime).
	BreachedRules []string

	// DataNotes — пометки о некорректных/отсутствующих метриках.
	// Такие метрики НЕ триггерят алерт (fail-safe), но фиксируются
	// для диагностики качества данных.
	DataNotes []string
}

// EvaluateThresholds оценивает summary по policy.
// Чистая детерминированная функция без I/O: никогда не возвращает ошибку
// и не паникует. Правила объединяются логическим ИЛИ — достаточно одного
// пробитого порога.
func EvaluateThresholds(summary *report.MetricsSummary, policy ThresholdPolicy) Decision {
	d := Decision{}
	if summary == nil {
		d.DataNotes = append(d.DataNotes, "summary отсутствует — оценка пропущена")
		return d
	}

	// successRatePercent < 100 − failureRateThreshold*100
	if rate, ok := summary.SuccessRate(); ok {
		minRate := 100 - policy.FailureRateThreshold*100
		if rate < minRate {
			d.BreachedRules = append(d.BreachedRules, RuleSuccessRate)
		}
	} else {
		d.DataNotes = append(d.DataNotes, "successRatePercent отсутствует или не число — правило "+RuleSuccessRate+" пропущено")
	}

	// criticalAlerts >= criticalAlertsThreshold
	if count, ok := summary.CriticalCount(); ok {
		if count >= policy.CriticalAlertsThreshold {
			d.BreachedRules = append(d.BreachedRules, RuleCriticalAlerts)
		}
	} else {
		d.DataNotes = append(d.DataNotes, "criticalAlerts отсутствует — правило "+RuleCriticalAlerts+" пропущено")
	}

	// avgResponseTimeMs > responseTimeThresholdMs
	if rt, ok := summary.ResponseTime(); ok {
		if rt > policy.ResponseTimeThresholdMs {
			d.BreachedRules = append(d.BreachedRules, RuleResponseTime)
		}
	} else {
		d.DataNotes = append(d.DataNotes, "avgResponseTimeMs отсутствует или не число — правило "+RuleResponseTime+" пропущено")
	}

	d.Triggered = len(d.BreachedRules) > 0
	return d
}

// SeverityFor выводит уровень критичности алерта из решения.
// Маппинг: все три правила — CRITICAL, правило criticalAlerts — HIGH,
// два правила — MEDIUM, иначе — LOW.
func SeverityFor(d Decision) Severity {
	breached := func(rule string) bool {
		for _, r := range d.BreachedRules {
			if r == rule {
				return true
			}
		}
		return false
	}

	switch {
	case len(d.BreachedRules) == 3:
		return SeverityCritical
	case breached(RuleCriticalAlerts):
		return SeverityHigh
	case len(d.BreachedRules) == 2:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DescribeRule возвращает человекочитаемое описание сработавшего правила
// для тела алерта.
func DescribeRule(rule string, summary *report.MetricsSummary, policy ThresholdPolicy) string {
	switch rule {
	case RuleSuccessRate:
		rate, _ := summary.SuccessRate()
		return fmt.Sprintf("success rate %.2f%% ниже требуемых %.2f%%", rate, 100-policy.FailureRateThreshold*100)
	case RuleCriticalAlerts:
		count, _ := summary.CriticalCount()
		return fmt.Sprintf("критических срабатываний %d (порог %d)", count, policy.CriticalAlertsThreshold)
	case RuleResponseTime:
		rt, _ := summary.ResponseTime()
		return fmt.Sprintf("среднее время ответа %.0f мс (порог %.0f мс)", rt, policy.ResponseTimeThresholdMs)
	default:
		return rule
	}
}
