package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kargones/apk-alert/internal/pkg/apperrors"
	"github.com/Kargones/apk-alert/internal/pkg/token"
)

// errorBody формирует единый JSON ошибки API.
func errorBody(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// handleSecureReport отдаёт отчёт по подписанной ссылке.
// Порядок проверок: наличие сервиса токенов → наличие токена → подпись →
// срок действия → type/scope → соответствие reportId. Первая failed
// проверка завершает запрос; тело отчёта читается только после всех.
func (s *Server) handleSecureReport(c *gin.Context) {
	reportID := c.Param("reportId")

	if s.verifier == nil {
		c.JSON(http.StatusServiceUnavailable, errorBody(apperrors.ErrConfigLoad,
			"сервис токенов не сконфигурирован"))
		return
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, errorBody(apperrors.ErrTokenSignature,
			"токен доступа обязателен"))
		return
	}

	claims, err := s.verifier.Verify(tokenString)
	if err != nil {
		status, code, msg := classifyTokenError(err)
		s.logger.Warn("отклонён доступ к отчёту",
			"report_id", reportID,
			"code", code,
		)
		c.JSON(status, errorBody(code, msg))
		return
	}

	// Токен валиден, но выписан на другой отчёт.
	if claims.ReportID != reportID {
		s.logger.Warn("токен выписан на другой отчёт",
			"report_id", reportID,
			"token_report_id", claims.ReportID,
		)
		c.JSON(http.StatusForbidden, errorBody(apperrors.ErrTokenScope,
			"токен не даёт доступа к этому отчёту"))
		return
	}

	data, err := s.reports.Get(reportID)
	if err != nil {
		if errors.Is(err, ErrReportNotFound) {
			c.JSON(http.StatusNotFound, errorBody(apperrors.ErrReportRead, "отчёт не найден"))
			return
		}
		s.logger.Error("ошибка чтения отчёта", "report_id", reportID, "error", err)
		c.JSON(http.StatusInternalServerError, errorBody(apperrors.ErrReportRead,
			"не удалось прочитать отчёт"))
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// classifyTokenError переводит ошибку проверки токена в HTTP статус и код.
// Просроченный и подделанный токены различаются в ответе — клиент
// может запросить новую ссылку для просроченного.
func classifyTokenError(err error) (int, string, string) {
	switch {
	case errors.Is(err, token.ErrExpired):
		return http.StatusUnauthorized, apperrors.ErrTokenExpired, "срок действия токена истёк"
	case errors.Is(err, token.ErrWrongScope), errors.Is(err, token.ErrWrongType):
		return http.StatusForbidden, apperrors.ErrTokenScope, "токен не даёт доступа к отчётам"
	default:
		return http.StatusUnauthorized, apperrors.ErrTokenSignature, "токен недействителен"
	}
}
