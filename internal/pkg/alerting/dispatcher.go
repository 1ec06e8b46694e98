package alerting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kargones/apk-alert/internal/entity/report"
	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/metrics"
)

// URLSigner выдаёт подписанную ссылку на полный отчёт.
// Реализация — token.Service. Ошибка подписи не блокирует доставку:
// диспетчер логирует её и отправляет алерт без ссылки.
type URLSigner interface {
	SignedReportURL(reportID string) (string, error)
}

// MessageFactory строит AlertMessage из сводки и решения по порогам.
// Позволяет переопределить формирование сообщения в тестах и спец-сценариях.
type MessageFactory func(summary *report.MetricsSummary, decision Decision, policy ThresholdPolicy) AlertMessage

// Dispatcher оценивает пороги и конкурентно рассылает алерты по каналам.
// Безопасен для конкурентного использования после создания.
type Dispatcher struct {
	policy    ThresholdPolicy
	channels  []Channel
	signer    URLSigner
	factory   MessageFactory
	logger    logging.Logger
	collector metrics.Collector
	nowFunc   func() time.Time
}

// NewDispatcher создаёт Dispatcher с заданной политикой порогов и каналами.
// signer может быть nil — алерты уходят без подписанной ссылки.
func NewDispatcher(policy ThresholdPolicy, channels []Channel, signer URLSigner, logger logging.Logger, collector metrics.Collector) *Dispatcher {
	if collector == nil {
		collector = metrics.NewNopCollector()
	}
	return &Dispatcher{
		policy:    policy,
		channels:  channels,
		signer:    signer,
		factory:   DefaultMessageFactory,
		logger:    logger,
		collector: collector,
		nowFunc:   time.Now,
	}
}

// SetMessageFactory заменяет фабрику сообщений (для тестирования).
func (d *Dispatcher) SetMessageFactory(factory MessageFactory) {
	d.factory = factory
}

// SetNowFunc устанавливает источник времени (для тестирования).
func (d *Dispatcher) SetNowFunc(fn func() time.Time) {
	d.nowFunc = fn
}

// Dispatch оценивает пороги по сводке и при срабатывании рассылает алерт
// во все сконфигурированные каналы конкурентно.
//
// Семантика all-settled: Dispatch ждёт завершения всех каналов и возвращает
// результат по каждому. Отказ одного канала не прерывает остальные.
// Если ни один порог не сработал — сетевых вызовов нет вообще.
// Nil summary трактуется как отсутствие данных: рассылка пропускается.
func (d *Dispatcher) Dispatch(ctx context.Context, summary *report.MetricsSummary) DispatchResult {
	dispatchID := uuid.NewString()
	start := d.nowFunc()

	if summary == nil {
		d.logger.Warn("summary отсутствует, рассылка пропущена",
			"dispatch_id", dispatchID,
		)
		d.collector.RecordDispatch(d.nowFunc().Sub(start), false)
		return DispatchResult{
			DispatchID: dispatchID,
			Triggered:  false,
			DataNotes:  []string{"summary отсутствует — рассылка пропущена"},
		}
	}

	decision := EvaluateThresholds(summary, d.policy)

	result := DispatchResult{
		DispatchID:    dispatchID,
		ReportID:      summary.ReportID,
		Triggered:     decision.Triggered,
		BreachedRules: decision.BreachedRules,
		DataNotes:     decision.DataNotes,
	}

	if !decision.Triggered {
		d.logger.Info("пороги не превышены, алерт не требуется",
			"dispatch_id", dispatchID,
			"report_id", summary.ReportID,
		)
		d.collector.RecordDispatch(d.nowFunc().Sub(start), false)
		return result
	}

	d.logger.Info("пороги превышены, запуск рассылки",
		"dispatch_id", dispatchID,
		"report_id", summary.ReportID,
		"breached_rules", decision.BreachedRules,
	)

	msg := d.factory(summary, decision, d.policy)
	if d.signer != nil {
		signedURL, err := d.signer.SignedReportURL(summary.ReportID)
		if err != nil {
			d.logger.Warn("не удалось подписать ссылку на отчёт, алерт уйдёт без неё",
				"error", err,
				"report_id", summary.ReportID,
			)
		} else {
			msg.SignedURL = signedURL
		}
	}

	configured := make([]Channel, 0, len(d.channels))
	for _, ch := range d.channels {
		if !ch.Configured() {
			d.logger.Debug("канал не сконфигурирован — исключён из рассылки", "channel", ch.Name())
			continue
		}
		configured = append(configured, ch)
	}

	result.Outcomes = d.fanOut(ctx, configured, msg)

	for _, outcome := range result.Outcomes {
		d.collector.RecordDelivery(outcome.Channel, outcome.Success, outcome.Attempts)
		if !outcome.Success && !outcome.NotConfigured {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: %s", outcome.Channel, outcome.LastError))
		}
	}

	d.collector.RecordDispatch(d.nowFunc().Sub(start), true)

	d.logger.Info("рассылка завершена",
		"dispatch_id", dispatchID,
		"report_id", summary.ReportID,
		"channels", len(result.Outcomes),
		"failed", len(result.Errors),
	)
	return result
}

// fanOut конкурентно отправляет msg во все каналы и собирает результаты.
// Порядок результатов соответствует порядку каналов, не порядку завершения.
func (d *Dispatcher) fanOut(ctx context.Context, channels []Channel, msg AlertMessage) []DeliveryOutcome {
	if len(channels) == 0 {
		return nil
	}

	outcomes := make([]DeliveryOutcome, len(channels))
	var wg sync.WaitGroup
	for i, ch := range channels {
		wg.Add(1)
		go func(i int, ch Channel) {
			defer wg.Done()
			outcomes[i] = ch.Send(ctx, msg)
		}(i, ch)
	}
	wg.Wait()
	return outcomes
}

// DefaultMessageFactory строит стандартное AlertMessage из сводки метрик.
func DefaultMessageFactory(summary *report.MetricsSummary, decision Decision, policy ThresholdPolicy) AlertMessage {
	meta := make([]MetaField, 0, 8)
	meta = append(meta, MetaField{Key: "Всего запросов", Value: fmt.Sprintf("%d", summary.TotalRequests)})
	meta = append(meta, MetaField{Key: "Провалов", Value: fmt.Sprintf("%d", summary.FailCount)})
	if rate, ok := summary.SuccessRate(); ok {
		meta = append(meta, MetaField{Key: "Success rate", Value: fmt.Sprintf("%.2f%%", rate)})
	}
	if rt, ok := summary.ResponseTime(); ok {
		meta = append(meta, MetaField{Key: "Среднее время ответа", Value: fmt.Sprintf("%.0f мс", rt)})
	}
	if crit, ok := summary.CriticalCount(); ok {
		meta = append(meta, MetaField{Key: "Критических алертов", Value: fmt.Sprintf("%d", crit)})
	}
	for _, rule := range decision.BreachedRules {
		meta = append(meta, MetaField{Key: "Порог", Value: DescribeRule(rule, summary, policy)})
	}
	for _, note := range decision.DataNotes {
		meta = append(meta, MetaField{Key: "Качество данных", Value: note})
	}

	return AlertMessage{
		Title:     fmt.Sprintf("Деградация тестового прогона %s", summary.ReportID),
		Severity:  SeverityFor(decision),
		Timestamp: summary.GeneratedAt,
		Metadata:  meta,
		ReportID:  summary.ReportID,
		Failures:  summary.Failures,
	}
}
