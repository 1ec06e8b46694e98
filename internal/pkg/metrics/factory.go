package metrics

import (
	"github.com/Kargones/apk-alert/internal/pkg/logging"
)

// NewCollector выбирает реализацию по конфигурации:
// NopCollector при выключенных метриках, иначе PrometheusCollector.
func NewCollector(config Config, logger logging.Logger) (Collector, error) {
	if !config.Enabled {
		return NewNopCollector(), nil
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return NewPrometheusCollector(config, logger)
}
