package alerting

import (
	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/metrics"
)

// BuildChannels создаёт адаптеры каналов по конфигурации.
// Выключенные каналы не создаются вовсе — диспетчер о них не знает.
func BuildChannels(config *Config, logger logging.Logger) []Channel {
	channels := make([]Channel, 0, 4)
	if config.Slack.Enabled {
		channels = append(channels, NewSlackChannel(config.Slack, config.Retry, logger))
	}
	if config.Email.Enabled {
		channels = append(channels, NewMailgunChannel(config.Email, config.Retry, logger))
	}
	if config.Telegram.Enabled {
		channels = append(channels, NewTelegramChannel(config.Telegram, config.Retry, logger))
	}
	if config.Webhook.Enabled {
		channels = append(channels, NewWebhookChannel(config.Webhook, config.Retry, logger))
	}
	return channels
}

// NewDispatcherFromConfig собирает Dispatcher целиком из конфигурации.
// Возвращает ошибку если конфигурация каналов или порогов невалидна.
func NewDispatcherFromConfig(config *Config, signer URLSigner, logger logging.Logger, collector metrics.Collector) (*Dispatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewDispatcher(config.Thresholds, BuildChannels(config, logger), signer, logger, collector), nil
}
