package alerting

import (
	"context"
	"time"

	"github.com/Kargones/apk-alert/internal/pkg/logging"
)

// RetryPolicy — политика повторов доставки.
// Задержка фиксированная (без jitter и экспоненты) — алертинговый cadence
// завязан на предсказуемые интервалы между попытками.
type RetryPolicy struct {
	// MaxRetries — максимальное ОБЩЕЕ число попыток (не повторов после первой).
	MaxRetries int

	// RetryDelay — фиксированная пауза между попытками.
	RetryDelay time.Duration
}

// normalized возвращает политику с подставленными значениями по умолчанию.
func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxRetries < 1 {
		p.MaxRetries = DefaultMaxRetries
	}
	if p.RetryDelay <= 0 {
		p.RetryDelay = DefaultRetryDelay
	}
	return p
}

// SleepFunc — планируемое ожидание между попытками.
// Возвращает ошибку контекста при отмене во время паузы.
// Подменяется в тестах чтобы не ждать wall-clock.
type SleepFunc func(ctx context.Context, d time.Duration) error

// sleepContext — production реализация SleepFunc через time.After.
func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// RetryExecutor выполняет операцию с bounded retry по фиксированной задержке.
// Никогда не пропускает ошибку за свою границу: итог любой серии попыток —
// DeliveryOutcome с success/attempts/lastError.
type RetryExecutor struct {
	policy RetryPolicy
	sleep  SleepFunc
	logger logging.Logger
}

// NewRetryExecutor создаёт executor с указанной политикой.
func NewRetryExecutor(policy RetryPolicy, logger logging.Logger) *RetryExecutor {
	return &RetryExecutor{
		policy: policy.normalized(),
		sleep:  sleepContext,
		logger: logger,
	}
}

// SetSleepFunc устанавливает кастомную SleepFunc (для тестирования).
func (e *RetryExecutor) SetSleepFunc(fn SleepFunc) {
	e.sleep = fn
}

// Execute выполняет op до первого успеха, но не более MaxRetries попыток.
// Между попытками выдерживается фиксированная пауза RetryDelay.
// Повторы строго последовательны — параллельных попыток к одному каналу нет.
//
// Возвращаемый outcome:
//   - Success=true, Attempts=n — успех с n-й попытки;
//   - Success=false, Attempts=MaxRetries, LastError — все попытки исчерпаны;
//   - отмена ctx во время паузы прекращает серию, LastError — последняя
//     ошибка операции (не ctx.Err(): она информативнее для диагностики).
func (e *RetryExecutor) Execute(ctx context.Context, channel string, op func(ctx context.Context) error) DeliveryOutcome {
	outcome := DeliveryOutcome{Channel: channel}

	var lastErr error
	for attempt := 1; attempt <= e.policy.MaxRetries; attempt++ {
		outcome.Attempts = attempt

		lastErr = op(ctx)
		if lastErr == nil {
			outcome.Success = true
			outcome.LastError = ""
			return outcome
		}
		outcome.LastError = lastErr.Error()

		if attempt == e.policy.MaxRetries {
			break
		}

		e.logger.Debug("повтор доставки алерта",
			"channel", channel,
			"attempt", attempt,
			"max_retries", e.policy.MaxRetries,
			"delay", e.policy.RetryDelay.String(),
			"error", lastErr.Error(),
		)

		if err := e.sleep(ctx, e.policy.RetryDelay); err != nil {
			e.logger.Debug("серия повторов прервана отменой контекста",
				"channel", channel,
				"attempt", attempt,
			)
			return outcome
		}
	}

	return outcome
}
