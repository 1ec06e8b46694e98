package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// TokenConfig содержит настройки сервиса подписанных токенов доступа.
//
// Секрет читается ТОЛЬКО из окружения (JWT_SECRET) один раз при старте
// и никогда не логируется. Отсутствие секрета не валит процесс:
// рассылка продолжается без подписанных ссылок на отчёт.
type TokenConfig struct {
	// Secret — секрет подписи HS256.
	Secret string `yaml:"-" env:"JWT_SECRET"`

	// TTL — срок действия выпускаемых токенов.
	TTL time.Duration `yaml:"ttl" env:"BR_TOKEN_TTL" env-default:"24h"`

	// Issuer — значение claim iss.
	Issuer string `yaml:"issuer" env:"BR_TOKEN_ISSUER" env-default:"apk-alert"`

	// ReportBaseURL — базовый URL для построения подписанных ссылок.
	// Пример: "https://reports.example.com".
	ReportBaseURL string `yaml:"reportBaseUrl" env:"BR_TOKEN_REPORT_BASE_URL"`
}

// Configured сообщает, задан ли секрет подписи.
func (tc *TokenConfig) Configured() bool {
	return tc != nil && tc.Secret != ""
}

// isTokenConfigPresent проверяет, задана ли конфигурация токенов в YAML.
func isTokenConfigPresent(cfg *TokenConfig) bool {
	if cfg == nil {
		return false
	}
	return cfg.Issuer != "" || cfg.ReportBaseURL != "" || cfg.TTL != 0
}

// getDefaultTokenConfig возвращает конфигурацию токенов по умолчанию.
func getDefaultTokenConfig() *TokenConfig {
	return &TokenConfig{
		TTL:    24 * time.Hour,
		Issuer: "apk-alert",
	}
}

// loadTokenConfig загружает конфигурацию токенов из AppConfig и окружения.
// Секрет берётся только из окружения.
func loadTokenConfig(l *slog.Logger, cfg *Config) (*TokenConfig, error) {
	if cfg.AppConfig != nil && isTokenConfigPresent(&cfg.AppConfig.Token) {
		tokenConfig := &cfg.AppConfig.Token
		if err := cleanenv.ReadEnv(tokenConfig); err != nil {
			l.Warn("Ошибка загрузки Token конфигурации из переменных окружения",
				slog.String("error", err.Error()),
			)
		}
		// Секрет не логируется ни при каком уровне логирования.
		l.Info("Token конфигурация загружена из AppConfig",
			slog.Bool("secret_configured", tokenConfig.Secret != ""),
			slog.String("issuer", tokenConfig.Issuer),
		)
		return tokenConfig, nil
	}

	tokenConfig := getDefaultTokenConfig()

	if err := cleanenv.ReadEnv(tokenConfig); err != nil {
		l.Warn("Ошибка загрузки Token конфигурации из переменных окружения",
			slog.String("error", err.Error()),
		)
	}

	l.Debug("Token конфигурация: используются значения по умолчанию",
		slog.Bool("secret_configured", tokenConfig.Secret != ""),
	)

	return tokenConfig, nil
}

// validateTokenConfig проверяет корректность конфигурации токенов при загрузке.
// Пустой секрет — не ошибка (подписанные ссылки просто не строятся),
// но заданный слишком короткий секрет отклоняется fail-fast.
func validateTokenConfig(tc *TokenConfig) error {
	if tc.Secret == "" {
		return nil
	}
	if len(tc.Secret) < 16 {
		return fmt.Errorf("token: секрет короче 16 байт небезопасен для HS256")
	}
	if tc.TTL <= 0 {
		return fmt.Errorf("token: ttl должен быть положительным")
	}
	return nil
}
