package alerting

import "context"

// NopChannel — канал-заглушка, никогда не выполняющий сетевых вызовов.
// Используется при выключенном алертинге и в тестах.
type NopChannel struct {
	name string
}

// NewNopChannel создаёт NopChannel с указанным именем.
func NewNopChannel(name string) *NopChannel {
	return &NopChannel{name: name}
}

// Name возвращает имя канала.
func (n *NopChannel) Name() string { return n.name }

// Configured всегда возвращает true — заглушка считается готовой.
func (n *NopChannel) Configured() bool { return true }

// Send ничего не отправляет и сразу возвращает успешный результат.
func (n *NopChannel) Send(_ context.Context, _ AlertMessage) DeliveryOutcome {
	return DeliveryOutcome{Channel: n.name, Success: true, Attempts: 1}
}
