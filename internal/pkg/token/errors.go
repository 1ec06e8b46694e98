package token

import "errors"

var (
	// ErrSecretRequired возвращается если секрет подписи пуст.
	ErrSecretRequired = errors.New("jwt secret is required")

	// ErrSecretTooShort возвращается если секрет короче минимально допустимого.
	ErrSecretTooShort = errors.New("jwt secret is too short")

	// ErrReportIDRequired возвращается если reportId пуст при создании токена.
	ErrReportIDRequired = errors.New("report id is required")

	// ErrSignature возвращается если подпись токена не прошла проверку
	// (подделка или другой секрет). Claims не возвращаются.
	ErrSignature = errors.New("token signature verification failed")

	// ErrExpired возвращается если подпись валидна, но срок действия истёк.
	// Отличим от ErrSignature для раздельного аудита "подделка"/"протух".
	ErrExpired = errors.New("token expired")

	// ErrMalformed возвращается если строка не является структурно валидным JWT.
	ErrMalformed = errors.New("token malformed")

	// ErrWrongType возвращается если claim type не совпадает с ожидаемым.
	ErrWrongType = errors.New("token has wrong type claim")

	// ErrWrongScope возвращается если claim scope не совпадает с ожидаемым.
	ErrWrongScope = errors.New("token has wrong scope claim")
)
