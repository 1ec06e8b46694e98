// Package urlutil содержит помощники для безопасного вывода URL и секретов
// в логи. Адреса каналов доставки содержат credentials прямо в адресе:
// Slack webhook — в path, Telegram bot token — в сегменте пути API,
// Pushgateway может использовать basic auth в userinfo.
package urlutil

import (
	"net/url"
	"strings"
)

// MaskURL возвращает представление rawURL, пригодное для логирования:
// остаются только схема и хост, path/query/userinfo скрываются.
// "https://hooks.slack.com/services/T0/B0/s3cr3t" → "https://hooks.slack.com/***".
func MaskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***invalid-url***"
	}
	return u.Scheme + "://" + u.Host + "/***"
}

// RedactSecret заменяет все вхождения secret в s на "[REDACTED]".
// Нужен для санитизации ошибок stdlib: *url.Error включает полный URL
// (вместе с bot token или API ключом) в текст ошибки.
// Пустой secret возвращает s без изменений.
func RedactSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[REDACTED]")
}
