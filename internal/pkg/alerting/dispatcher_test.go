package alerting

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Kargones/apk-alert/internal/entity/report"
)

// stubChannel — управляемый канал для тестов диспетчера.
type stubChannel struct {
	name       string
	configured bool
	delay      time.Duration
	outcome    DeliveryOutcome
	calls      atomic.Int64
	gotMsg     AlertMessage
}

func (s *stubChannel) Name() string     { return s.name }
func (s *stubChannel) Configured() bool { return s.configured }

func (s *stubChannel) Send(ctx context.Context, msg AlertMessage) DeliveryOutcome {
	s.calls.Add(1)
	s.gotMsg = msg
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	out := s.outcome
	out.Channel = s.name
	return out
}

// stubSigner — управляемый URLSigner.
type stubSigner struct {
	url string
	err error
}

func (s *stubSigner) SignedReportURL(reportID string) (string, error) {
	return s.url, s.err
}

func breachedSummary() *report.MetricsSummary {
	return &report.MetricsSummary{
		TotalRequests:      17,
		FailCount:          1,
		SuccessRatePercent: f64(94.12),
		AvgResponseTimeMs:  f64(15800),
		CriticalAlerts:     i64(1),
		GeneratedAt:        time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		ReportID:           "run-7",
	}
}

func TestDispatcher_NoAlertPathIsNetworkSilent(t *testing.T) {
	ch := &stubChannel{name: "slack", configured: true, outcome: DeliveryOutcome{Success: true}}
	d := NewDispatcher(testPolicy(), []Channel{ch}, nil, testLogger, nil)

	result := d.Dispatch(context.Background(), healthySummary())

	if result.Triggered {
		t.Errorf("Triggered = true для здоровой сводки")
	}
	if ch.calls.Load() != 0 {
		t.Errorf("канал вызван %d раз, при здоровой сводке вызовов быть не должно", ch.calls.Load())
	}
	if len(result.Outcomes) != 0 {
		t.Errorf("Outcomes = %v, ожидался пустой список", result.Outcomes)
	}
	if result.DispatchID == "" {
		t.Errorf("DispatchID пустой")
	}
}

func TestDispatcher_NilSummarySkipsDelivery(t *testing.T) {
	ch := &stubChannel{name: "slack", configured: true, outcome: DeliveryOutcome{Success: true}}
	d := NewDispatcher(testPolicy(), []Channel{ch}, nil, testLogger, nil)

	result := d.Dispatch(context.Background(), nil)

	if result.Triggered {
		t.Errorf("Triggered = true для отсутствующей сводки")
	}
	if ch.calls.Load() != 0 {
		t.Errorf("канал вызван %d раз, без сводки вызовов быть не должно", ch.calls.Load())
	}
	if result.ReportID != "" {
		t.Errorf("ReportID = %q, ожидалась пустая строка", result.ReportID)
	}
	if len(result.DataNotes) != 1 {
		t.Fatalf("DataNotes = %v, ожидалась одна пометка о пропуске", result.DataNotes)
	}
	if result.DispatchID == "" {
		t.Errorf("DispatchID пустой")
	}
}

func TestDispatcher_AllConfiguredChannelsReceive(t *testing.T) {
	chans := []*stubChannel{
		{name: "slack", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
		{name: "email", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
		{name: "telegram", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
		{name: "webhook", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
	}
	channels := make([]Channel, len(chans))
	for i, c := range chans {
		channels[i] = c
	}
	d := NewDispatcher(testPolicy(), channels, nil, testLogger, nil)

	result := d.Dispatch(context.Background(), breachedSummary())

	if !result.Triggered {
		t.Fatalf("Triggered = false")
	}
	if len(result.Outcomes) != 4 {
		t.Fatalf("Outcomes = %d, ожидалось по одному на каждый канал", len(result.Outcomes))
	}
	for _, c := range chans {
		if c.calls.Load() != 1 {
			t.Errorf("канал %s вызван %d раз", c.name, c.calls.Load())
		}
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v", result.Errors)
	}
}

func TestDispatcher_PartialFailureIsolation(t *testing.T) {
	ok := &stubChannel{name: "slack", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}}
	bad := &stubChannel{name: "telegram", configured: true, outcome: DeliveryOutcome{Attempts: 3, LastError: "chat not found"}}
	d := NewDispatcher(testPolicy(), []Channel{ok, bad}, nil, testLogger, nil)

	result := d.Dispatch(context.Background(), breachedSummary())

	if !result.ChannelOK("slack") {
		t.Errorf("отказ telegram не должен влиять на slack")
	}
	if result.ChannelOK("telegram") {
		t.Errorf("telegram должен быть неуспешным")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, ожидалась одна терминальная ошибка", result.Errors)
	}
}

func TestDispatcher_UnconfiguredChannelSkipped(t *testing.T) {
	configured := &stubChannel{name: "slack", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}}
	unconfigured := &stubChannel{name: "email", configured: false}
	d := NewDispatcher(testPolicy(), []Channel{configured, unconfigured}, nil, testLogger, nil)

	result := d.Dispatch(context.Background(), breachedSummary())

	if unconfigured.calls.Load() != 0 {
		t.Errorf("несконфигурированный канал вызван")
	}
	if len(result.Outcomes) != 1 {
		t.Errorf("Outcomes = %d, несконфигурированный канал не попадает в результаты рассылки", len(result.Outcomes))
	}
}

func TestDispatcher_SignedURLAttached(t *testing.T) {
	ch := &stubChannel{name: "slack", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}}
	signer := &stubSigner{url: "https://reports.example.com/api/test-results/secure/run-7?token=jwt"}
	d := NewDispatcher(testPolicy(), []Channel{ch}, signer, testLogger, nil)

	d.Dispatch(context.Background(), breachedSummary())

	if ch.gotMsg.SignedURL != signer.url {
		t.Errorf("SignedURL = %q, ожидалась подписанная ссылка", ch.gotMsg.SignedURL)
	}
}

func TestDispatcher_SignerFailureDoesNotBlockDelivery(t *testing.T) {
	ch := &stubChannel{name: "slack", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}}
	signer := &stubSigner{err: errors.New("secret unavailable")}
	d := NewDispatcher(testPolicy(), []Channel{ch}, signer, testLogger, nil)

	result := d.Dispatch(context.Background(), breachedSummary())

	if ch.calls.Load() != 1 {
		t.Fatalf("доставка не выполнена при ошибке подписи")
	}
	if ch.gotMsg.SignedURL != "" {
		t.Errorf("SignedURL = %q, при ошибке подписи ссылка должна быть пустой", ch.gotMsg.SignedURL)
	}
	if !result.ChannelOK("slack") {
		t.Errorf("доставка должна быть успешной")
	}
}

func TestDispatcher_ConcurrentFanOut(t *testing.T) {
	// Четыре канала по 50мс каждый: последовательная отправка заняла бы 200мс.
	delay := 50 * time.Millisecond
	channels := []Channel{
		&stubChannel{name: "a", configured: true, delay: delay, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
		&stubChannel{name: "b", configured: true, delay: delay, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
		&stubChannel{name: "c", configured: true, delay: delay, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
		&stubChannel{name: "d", configured: true, delay: delay, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
	}
	d := NewDispatcher(testPolicy(), channels, nil, testLogger, nil)

	start := time.Now()
	result := d.Dispatch(context.Background(), breachedSummary())
	elapsed := time.Since(start)

	if len(result.Outcomes) != 4 {
		t.Fatalf("Outcomes = %d", len(result.Outcomes))
	}
	if elapsed > 3*delay {
		t.Errorf("рассылка заняла %v, каналы должны отправляться конкурентно", elapsed)
	}
}

func TestDispatcher_OutcomeOrderMatchesChannelOrder(t *testing.T) {
	channels := []Channel{
		&stubChannel{name: "slack", configured: true, delay: 30 * time.Millisecond, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
		&stubChannel{name: "email", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}},
	}
	d := NewDispatcher(testPolicy(), channels, nil, testLogger, nil)

	result := d.Dispatch(context.Background(), breachedSummary())

	if result.Outcomes[0].Channel != "slack" || result.Outcomes[1].Channel != "email" {
		t.Errorf("порядок результатов %v не соответствует порядку каналов", result.Outcomes)
	}
}

func TestDispatcher_UniqueDispatchID(t *testing.T) {
	d := NewDispatcher(testPolicy(), nil, nil, testLogger, nil)

	first := d.Dispatch(context.Background(), healthySummary())
	second := d.Dispatch(context.Background(), healthySummary())

	if first.DispatchID == second.DispatchID {
		t.Errorf("DispatchID повторяется: %q", first.DispatchID)
	}
}

func TestDispatcher_DataNotesPropagated(t *testing.T) {
	d := NewDispatcher(testPolicy(), nil, nil, testLogger, nil)

	summary := &report.MetricsSummary{TotalRequests: 5, ReportID: "run-8"}
	result := d.Dispatch(context.Background(), summary)

	if len(result.DataNotes) != 3 {
		t.Errorf("DataNotes = %v, ожидались пометки о трёх отсутствующих метриках", result.DataNotes)
	}
}

func TestDispatcher_CustomMessageFactory(t *testing.T) {
	ch := &stubChannel{name: "slack", configured: true, outcome: DeliveryOutcome{Success: true, Attempts: 1}}
	d := NewDispatcher(testPolicy(), []Channel{ch}, nil, testLogger, nil)
	d.SetMessageFactory(func(summary *report.MetricsSummary, decision Decision, policy ThresholdPolicy) AlertMessage {
		return AlertMessage{Title: "custom", ReportID: summary.ReportID}
	})

	d.Dispatch(context.Background(), breachedSummary())

	if ch.gotMsg.Title != "custom" {
		t.Errorf("Title = %q, фабрика не применена", ch.gotMsg.Title)
	}
}

func TestDefaultMessageFactory(t *testing.T) {
	summary := breachedSummary()
	decision := EvaluateThresholds(summary, testPolicy())

	msg := DefaultMessageFactory(summary, decision, testPolicy())

	if msg.ReportID != "run-7" {
		t.Errorf("ReportID = %q", msg.ReportID)
	}
	if msg.Severity != SeverityCritical {
		t.Errorf("Severity = %v, три правила дают CRITICAL", msg.Severity)
	}
	if msg.Timestamp != summary.GeneratedAt {
		t.Errorf("Timestamp = %v", msg.Timestamp)
	}
	if len(msg.Metadata) == 0 {
		t.Fatalf("Metadata пустая")
	}

	// Описания сработавших порогов присутствуют в метаданных.
	var thresholdFields int
	for _, f := range msg.Metadata {
		if f.Key == "Порог" {
			thresholdFields++
		}
	}
	if thresholdFields != 3 {
		t.Errorf("описаний порогов = %d, ожидалось 3", thresholdFields)
	}
}

func TestBuildChannels(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.Slack.Enabled = true
	config.Slack.WebhookURL = "https://hooks.slack.com/x"
	config.Telegram.Enabled = true
	config.Telegram.BotToken = "t"
	config.Telegram.ChatID = "1"

	channels := BuildChannels(&config, testLogger)

	if len(channels) != 2 {
		t.Fatalf("каналов = %d, ожидалось 2 (только включённые)", len(channels))
	}
	names := map[string]bool{}
	for _, ch := range channels {
		names[ch.Name()] = true
	}
	if !names[ChannelSlack] || !names[ChannelTelegram] {
		t.Errorf("каналы = %v", names)
	}
}

func TestNewDispatcherFromConfig_InvalidConfig(t *testing.T) {
	config := DefaultConfig()
	config.Enabled = true
	config.Slack.Enabled = true
	config.Slack.WebhookURL = "file:///etc/passwd"

	if _, err := NewDispatcherFromConfig(&config, nil, testLogger, nil); !errors.Is(err, ErrSlackWebhookURLInvalid) {
		t.Errorf("err = %v, ожидалось ErrSlackWebhookURLInvalid", err)
	}
}
