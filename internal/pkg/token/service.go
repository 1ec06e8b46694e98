// Package token реализует выпуск и проверку подписанных токенов доступа
// к отчётам. Токен — стандартный JWT (HS256) с фиксированным TTL,
// привязанный к одному reportId. Подписанная ссылка позволяет открыть
// отчёт без отдельного логина.
package token

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/Kargones/apk-alert/internal/pkg/logging"
)

// Константы claims токена доступа.
const (
	// TokenType — значение claim type для токена доступа к отчётам.
	TokenType = "test_result_access"

	// TokenScope — значение claim scope: только чтение отчётов.
	TokenScope = "read_reports"

	// DefaultTTL — срок действия токена по умолчанию.
	DefaultTTL = 24 * time.Hour

	// DefaultIssuer — значение claim iss по умолчанию.
	DefaultIssuer = "apk-alert"

	// minSecretLength — минимальная длина секрета подписи.
	// HS256 с коротким секретом брутфорсится оффлайн.
	minSecretLength = 16

	claimType     = "type"
	claimScope    = "scope"
	claimReportID = "reportId"
)

// Claims — проверенные claims токена доступа.
type Claims struct {
	// ReportID — идентификатор отчёта, к которому даётся доступ.
	ReportID string

	// UserID — идентификатор пользователя (claim sub).
	UserID string

	// IssuedAt — время выпуска токена.
	IssuedAt time.Time

	// ExpiresAt — время истечения токена.
	ExpiresAt time.Time
}

// Config содержит настройки сервиса токенов.
type Config struct {
	// Secret — секрет подписи HS256 (JWT_SECRET). Никогда не логируется.
	Secret string

	// TTL — срок действия выпускаемых токенов. По умолчанию DefaultTTL.
	TTL time.Duration

	// Issuer — значение claim iss. По умолчанию DefaultIssuer.
	Issuer string

	// ReportBaseURL — базовый URL для построения подписанных ссылок.
	// Пример: "https://reports.example.com".
	ReportBaseURL string
}

// Validate проверяет корректность конфигурации.
func (c *Config) Validate() error {
	if c.Secret == "" {
		return ErrSecretRequired
	}
	if len(c.Secret) < minSecretLength {
		return ErrSecretTooShort
	}
	return nil
}

// Service выпускает и проверяет токены доступа к отчётам.
// Секрет загружается один раз при создании, далее сервис read-only —
// безопасен для конкурентного использования без блокировок.
type Service struct {
	secret  []byte
	ttl     time.Duration
	issuer  string
	baseURL string
	logger  logging.Logger
	nowFunc func() time.Time
}

// NewService создаёт Service с указанной конфигурацией.
func NewService(config Config, logger logging.Logger) (*Service, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	issuer := config.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	return &Service{
		secret:  []byte(config.Secret),
		ttl:     ttl,
		issuer:  issuer,
		baseURL: strings.TrimRight(config.ReportBaseURL, "/"),
		logger:  logger,
		nowFunc: time.Now,
	}, nil
}

// SetNowFunc устанавливает источник времени (для тестирования).
func (s *Service) SetNowFunc(fn func() time.Time) {
	s.nowFunc = fn
}

// Create выпускает подписанный токен доступа к отчёту reportID
// для пользователя userID с фиксированным TTL.
func (s *Service) Create(reportID, userID string) (string, error) {
	if reportID == "" {
		return "", ErrReportIDRequired
	}

	now := s.nowFunc()
	builder := jwt.NewBuilder().
		Issuer(s.issuer).
		Subject(userID).
		IssuedAt(now).
		Expiration(now.Add(s.ttl)).
		Claim(claimType, TokenType).
		Claim(claimScope, TokenScope).
		Claim(claimReportID, reportID)

	tok, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("ошибка сборки токена: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}

	s.logger.Debug("выпущен токен доступа к отчёту",
		"report_id", reportID,
		"expires_at", now.Add(s.ttl).Format(time.RFC3339),
	)
	return string(signed), nil
}

// Verify проверяет токен и возвращает его claims.
//
// Порядок проверки фиксирован: сначала подпись (детект подделки),
// затем срок действия, затем claims type/scope. Ошибки различимы:
// ErrSignature, ErrExpired, ErrWrongType, ErrWrongScope, ErrMalformed.
// Проверка синхронна и не имеет побочных эффектов.
func (s *Service) Verify(tokenString string) (Claims, error) {
	// Подпись проверяется отдельно от временных claims, чтобы
	// подделанный просроченный токен отвечал ErrSignature, а не ErrExpired.
	tok, err := jwt.Parse([]byte(tokenString),
		jwt.WithKey(jwa.HS256, s.secret),
		jwt.WithValidate(false),
	)
	if err != nil {
		// Различаем структурную невалидность и невалидную подпись:
		// структурно корректный токен парсится без верификации.
		if _, perr := jwt.Parse([]byte(tokenString), jwt.WithVerify(false), jwt.WithValidate(false)); perr != nil {
			return Claims{}, ErrMalformed
		}
		return Claims{}, ErrSignature
	}

	now := s.nowFunc()
	if err := jwt.Validate(tok, jwt.WithClock(jwt.ClockFunc(func() time.Time { return now }))); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrMalformed
	}

	if typ, _ := tok.Get(claimType); typ != TokenType {
		return Claims{}, ErrWrongType
	}
	if scope, _ := tok.Get(claimScope); scope != TokenScope {
		return Claims{}, ErrWrongScope
	}

	claims := Claims{
		UserID:    tok.Subject(),
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}
	if rid, ok := tok.Get(claimReportID); ok {
		if str, ok := rid.(string); ok {
			claims.ReportID = str
		}
	}
	return claims, nil
}

// SignedReportURL строит подписанную ссылку на полный отчёт:
// <base>/api/test-results/secure/<reportId>?token=<jwt>.
func (s *Service) SignedReportURL(reportID string) (string, error) {
	tok, err := s.Create(reportID, "")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/test-results/secure/%s?token=%s",
		s.baseURL, url.PathEscape(reportID), url.QueryEscape(tok)), nil
}
