// Package alerting реализует слой алертинга поверх метрик тестовых прогонов.
// Включает оценку порогов, рендеринг сообщений по каналам и конкурентную
// доставку через slack, email, telegram и webhook каналы с bounded retry.
package alerting

import (
	"context"
	"time"
)

// Severity определяет уровень критичности алерта.
type Severity int

const (
	// SeverityLow — информационный алерт.
	SeverityLow Severity = iota
	// SeverityMedium — алерт средней критичности.
	SeverityMedium
	// SeverityHigh — алерт высокой критичности.
	SeverityHigh
	// SeverityCritical — критический алерт.
	SeverityCritical
)

// Имена каналов алертинга.
const (
	// ChannelSlack — имя slack канала.
	ChannelSlack = "slack"
	// ChannelEmail — имя email канала.
	ChannelEmail = "email"
	// ChannelTelegram — имя telegram канала.
	ChannelTelegram = "telegram"
	// ChannelWebhook — имя webhook канала.
	ChannelWebhook = "webhook"
)

// String возвращает строковое представление Severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MetaField — одна пара ключ/значение в метаданных сообщения.
// Slice пар вместо map сохраняет порядок полей при рендеринге.
type MetaField struct {
	Key   string
	Value string
}

// AlertMessage представляет сообщение алерта, готовое к рендерингу по каналам.
// Строится один раз диспетчером и далее не мутируется.
type AlertMessage struct {
	// Title — заголовок алерта.
	Title string

	// Severity — уровень критичности.
	Severity Severity

	// Timestamp — время формирования алерта.
	Timestamp time.Time

	// Metadata — упорядоченные пары ключ/значение для тела сообщения.
	Metadata []MetaField

	// ReportID — идентификатор отчёта, к которому относится алерт.
	ReportID string

	// SignedURL — подписанная ссылка на полный отчёт.
	// Пустая строка если token service недоступен — доставка не блокируется.
	SignedURL string

	// Failures — список упавших проверок. Рендерер обрезает до maxRenderedFailures.
	Failures []string
}

// DeliveryOutcome — результат доставки в один канал.
type DeliveryOutcome struct {
	// Channel — имя канала.
	Channel string `json:"channel"`

	// Success — успешна ли доставка.
	Success bool `json:"success"`

	// Attempts — фактическое число попыток (1..MaxRetries).
	// 0 если канал не сконфигурирован и отправка не выполнялась.
	Attempts int `json:"attempts"`

	// LastError — текст последней ошибки при неуспехе.
	LastError string `json:"last_error,omitempty"`

	// NotConfigured — канал пропущен из-за отсутствия обязательной конфигурации.
	// Не считается ошибкой доставки.
	NotConfigured bool `json:"not_configured,omitempty"`
}

// DispatchResult — агрегированный результат одного вызова Dispatch.
// Создаётся заново на каждый вызов, никогда не переиспользуется.
type DispatchResult struct {
	// DispatchID — уникальный идентификатор вызова для корреляции логов.
	DispatchID string `json:"dispatch_id"`

	// ReportID — идентификатор отчёта.
	ReportID string `json:"report_id"`

	// Triggered — сработал ли хотя бы один порог.
	Triggered bool `json:"triggered"`

	// BreachedRules — имена сработавших правил (см. threshold.go).
	BreachedRules []string `json:"breached_rules,omitempty"`

	// DataNotes — пометки о качестве входных данных (NaN, отсутствующие поля).
	DataNotes []string `json:"data_notes,omitempty"`

	// Outcomes — по одному результату на каждый сконфигурированный канал.
	Outcomes []DeliveryOutcome `json:"outcomes,omitempty"`

	// Errors — терминальные ошибки доставки (после исчерпания retry).
	Errors []string `json:"errors,omitempty"`
}

// ChannelOK возвращает true если доставка в канал name завершилась успешно.
// Отсутствующий в результатах канал считается неуспешным.
func (r *DispatchResult) ChannelOK(name string) bool {
	for _, o := range r.Outcomes {
		if o.Channel == name {
			return o.Success
		}
	}
	return false
}

// Channel определяет интерфейс адаптера одного канала доставки.
// Реализации: SlackChannel, MailgunChannel, TelegramChannel, WebhookChannel.
//
// ВАЖНО: Send не возвращает ошибку — все сбои доставки упаковываются
// в DeliveryOutcome. Отказ одного канала никогда не блокирует остальные
// и не прерывает вызывающий pipeline.
type Channel interface {
	// Name возвращает имя канала (slack, email, telegram, webhook).
	Name() string

	// Configured сообщает, заполнена ли обязательная конфигурация канала.
	// Несконфигурированный канал — no-op: Send возвращает NotConfigured outcome
	// без сетевых вызовов.
	Configured() bool

	// Send доставляет сообщение в канал с учётом retry политики.
	// Блокируется до успеха, исчерпания попыток или отмены ctx.
	Send(ctx context.Context, msg AlertMessage) DeliveryOutcome
}
