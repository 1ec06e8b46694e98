// Package main содержит точку входа для приложения apk-alert.
// Приложение оценивает метрики тестовых прогонов по порогам, рассылает
// алерты по каналам доставки и управляет подписанными ссылками на отчёты.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Kargones/apk-alert/internal/config"
	"github.com/Kargones/apk-alert/internal/constants"
	"github.com/Kargones/apk-alert/internal/di"
	"github.com/Kargones/apk-alert/internal/entity/report"
	"github.com/Kargones/apk-alert/internal/pkg/alerting"
	"github.com/Kargones/apk-alert/internal/pkg/apperrors"
	"github.com/Kargones/apk-alert/internal/pkg/logging"
	"github.com/Kargones/apk-alert/internal/pkg/metrics"
	"github.com/Kargones/apk-alert/internal/pkg/output"
	"github.com/Kargones/apk-alert/internal/pkg/token"
	"github.com/Kargones/apk-alert/internal/pkg/tracing"
	"github.com/Kargones/apk-alert/internal/server"
)

func main() {
	os.Exit(run())
}

// run содержит основную логику приложения и возвращает exit code.
// Вынесена из main() чтобы os.Exit() вызывался ПОСЛЕ отработки всех
// defer-ов (tracerShutdown, span.End). Без этого трейсы ошибочных
// выполнений терялись, потому что os.Exit() не выполняет defer.
func run() int {
	ctx := context.Background()
	cfg, err := config.MustLoad()
	if err != nil || cfg == nil {
		fmt.Fprintf(os.Stderr, "Не удалось загрузить конфигурацию приложения: %v\n", err)
		return constants.ExitConfigError
	}
	l := cfg.Logger
	l.Debug("Информация о сборке",
		slog.String("version", constants.Version),
		slog.String("commit_hash", constants.PreCommitHash),
	)

	// Команда из аргумента имеет приоритет над BR_COMMAND.
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cfg.Command = args[0]
		args = args[1:]
	}
	// Пустая команда → help
	if cfg.Command == "" {
		cfg.Command = constants.ActHelp
	}

	// Генерируем trace_id для корреляции логов
	traceID := tracing.GenerateTraceID()
	// Добавляем trace_id в context для handlers
	ctx = tracing.WithTraceID(ctx, traceID)
	// Связываем с OTel span context — все span-ы будут использовать этот trace ID
	ctx = tracing.ContextWithOTelTraceID(ctx, traceID)

	logAdapter := di.ProvideLogger(cfg)
	metricsCollector := di.ProvideMetricsCollector(cfg, logAdapter)

	// Инициализация OpenTelemetry трейсинга
	tracerShutdown := di.ProvideTracerProvider(cfg, logAdapter)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(shutdownCtx); err != nil {
			l.Error("ошибка завершения tracing",
				slog.String("error", err.Error()),
				slog.String("trace_id", traceID),
				slog.String("command", cfg.Command),
			)
		}
	}()

	tokenService := di.ProvideTokenService(cfg, logAdapter)
	writer := di.ProvideOutputWriter(cfg)

	tracer := otel.Tracer(constants.AppName)
	ctx, span := tracer.Start(ctx, cfg.Command,
		trace.WithAttributes(
			attribute.String("command", cfg.Command),
			attribute.String("report_path", cfg.ReportPath),
			attribute.String("trace_id", traceID),
		),
	)
	defer span.End()

	start := time.Now()

	switch cfg.Command {
	case constants.ActDispatch:
		return runDispatch(ctx, cfg, logAdapter, metricsCollector, tokenService, writer, traceID, start, false)
	case constants.ActEvaluate:
		return runDispatch(ctx, cfg, logAdapter, metricsCollector, tokenService, writer, traceID, start, true)
	case constants.ActServe:
		return runServe(ctx, cfg, logAdapter, metricsCollector, tokenService)
	case constants.ActMintToken:
		return runMintToken(cfg, tokenService, writer, args, traceID, start)
	case constants.ActVerifyToken:
		return runVerifyToken(cfg, tokenService, writer, args, traceID, start)
	case constants.ActVersion:
		return runVersion(writer)
	case constants.ActHelp:
		printHelp(os.Stdout)
		return constants.ExitOK
	default:
		l.Error("Неизвестная команда",
			slog.String("command", cfg.Command),
			slog.String(constants.MsgErrProcessing, constants.MsgAppExit),
		)
		printHelp(os.Stderr)
		return constants.ExitCommandError
	}
}

// runDispatch читает отчёт прогона, оценивает пороги и рассылает алерты.
// В dry-run режиме (evaluate) рассылка не выполняется — только оценка.
// Exit code: 0 успех, 1 если хотя бы один канал не доставил,
// 6 при ошибке чтения отчёта.
func runDispatch(ctx context.Context, cfg *config.Config, logger logging.Logger,
	collector metrics.Collector, tokenService *token.Service, writer output.Writer,
	traceID string, start time.Time, dryRun bool) int {

	summary, notes, err := report.LoadSummary(cfg.ReportPath)
	if err != nil {
		writeError(writer, cfg.Command, apperrors.ErrReportRead, err, traceID, start)
		return constants.ExitReportError
	}

	var dispatchResult alerting.DispatchResult
	if dryRun {
		alertingCfg := cfg.ToAlertingConfig()
		decision := alerting.EvaluateThresholds(summary, alertingCfg.Thresholds)
		dispatchResult = alerting.DispatchResult{
			ReportID:      summary.ReportID,
			Triggered:     decision.Triggered,
			BreachedRules: decision.BreachedRules,
			DataNotes:     decision.DataNotes,
		}
	} else {
		dispatcher := di.ProvideDispatcher(cfg, tokenService, logger, collector)
		dispatchResult = dispatcher.Dispatch(ctx, summary)
	}

	// Пометки качества данных из парсинга отчёта дополняют пометки оценки.
	dispatchResult.DataNotes = append(notes, dispatchResult.DataNotes...)

	result := &output.Result{
		Status:   output.StatusSuccess,
		Command:  cfg.Command,
		Dispatch: &dispatchResult,
		Metadata: buildMetadata(traceID, start),
	}
	if err := writer.Write(os.Stdout, result); err != nil {
		logger.Error("ошибка вывода результата", "error", err)
	}

	// Ошибки push логируются внутри, не критичны
	_ = collector.Push(ctx)

	if len(dispatchResult.Errors) > 0 {
		return constants.ExitDeliveryFailed
	}
	return constants.ExitOK
}

// runServe запускает HTTP сервер защищённого доступа к отчётам.
// Останавливается по SIGINT/SIGTERM с graceful shutdown.
func runServe(ctx context.Context, cfg *config.Config, logger logging.Logger,
	collector metrics.Collector, tokenService *token.Service) int {

	var opts []server.Option
	if pc, ok := collector.(*metrics.PrometheusCollector); ok {
		opts = append(opts, server.WithRegistry(pc.GetRegistry()))
	}

	var verifier server.TokenVerifier
	if tokenService != nil {
		verifier = tokenService
	}

	srv := server.New(cfg.ServerConfig, verifier, logger, opts...)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("ошибка HTTP сервера", "error", err)
		return constants.ExitCommandError
	}
	return constants.ExitOK
}

// runMintToken выпускает подписанный токен доступа к отчёту.
// Идентификатор отчёта — первый позиционный аргумент.
func runMintToken(cfg *config.Config, tokenService *token.Service, writer output.Writer,
	args []string, traceID string, start time.Time) int {

	if tokenService == nil {
		writeError(writer, cfg.Command, apperrors.ErrTokenMint,
			fmt.Errorf("JWT_SECRET не задан"), traceID, start)
		return constants.ExitTokenError
	}
	if len(args) == 0 {
		writeError(writer, cfg.Command, apperrors.ErrTokenMint,
			fmt.Errorf("требуется идентификатор отчёта: apk-alert mint-token <reportId>"), traceID, start)
		return constants.ExitTokenError
	}
	reportID := args[0]

	signedURL, err := tokenService.SignedReportURL(reportID)
	if err != nil {
		writeError(writer, cfg.Command, apperrors.ErrTokenMint, err, traceID, start)
		return constants.ExitTokenError
	}

	result := &output.Result{
		Status:  output.StatusSuccess,
		Command: cfg.Command,
		Data: map[string]any{
			"reportId":  reportID,
			"signedUrl": signedURL,
		},
		Metadata: buildMetadata(traceID, start),
	}
	_ = writer.Write(os.Stdout, result)
	return constants.ExitOK
}

// runVerifyToken проверяет подписанный токен доступа.
// Токен — первый позиционный аргумент.
func runVerifyToken(cfg *config.Config, tokenService *token.Service, writer output.Writer,
	args []string, traceID string, start time.Time) int {

	if tokenService == nil {
		writeError(writer, cfg.Command, apperrors.ErrTokenSignature,
			fmt.Errorf("JWT_SECRET не задан"), traceID, start)
		return constants.ExitTokenError
	}
	if len(args) == 0 {
		writeError(writer, cfg.Command, apperrors.ErrTokenSignature,
			fmt.Errorf("требуется токен: apk-alert verify-token <token>"), traceID, start)
		return constants.ExitTokenError
	}

	claims, err := tokenService.Verify(args[0])
	if err != nil {
		code := apperrors.ErrTokenSignature
		switch {
		case errors.Is(err, token.ErrExpired):
			code = apperrors.ErrTokenExpired
		case errors.Is(err, token.ErrWrongScope), errors.Is(err, token.ErrWrongType):
			code = apperrors.ErrTokenScope
		}
		writeError(writer, cfg.Command, code, err, traceID, start)
		return constants.ExitTokenError
	}

	result := &output.Result{
		Status:  output.StatusSuccess,
		Command: cfg.Command,
		Data: map[string]any{
			"reportId":  claims.ReportID,
			"userId":    claims.UserID,
			"expiresAt": claims.ExpiresAt.UTC().Format(time.RFC3339),
		},
		Metadata: buildMetadata(traceID, start),
	}
	_ = writer.Write(os.Stdout, result)
	return constants.ExitOK
}

// runVersion выводит информацию о версии сборки.
func runVersion(writer output.Writer) int {
	result := &output.Result{
		Status:  output.StatusSuccess,
		Command: constants.ActVersion,
		Data: map[string]any{
			"version":    constants.Version,
			"commitHash": constants.PreCommitHash,
			"apiVersion": constants.APIVersion,
		},
	}
	_ = writer.Write(os.Stdout, result)
	return constants.ExitOK
}

// writeError выводит структурированную ошибку команды.
func writeError(writer output.Writer, command, code string, err error, traceID string, start time.Time) {
	result := &output.Result{
		Status:  output.StatusError,
		Command: command,
		Error: &output.ErrorInfo{
			Code:    code,
			Message: err.Error(),
		},
		Metadata: buildMetadata(traceID, start),
	}
	_ = writer.Write(os.Stdout, result)
}

func buildMetadata(traceID string, start time.Time) *output.Metadata {
	return &output.Metadata{
		DurationMs: time.Since(start).Milliseconds(),
		TraceID:    traceID,
		APIVersion: constants.APIVersion,
	}
}

func printHelp(w *os.File) {
	fmt.Fprintf(w, `apk-alert %s — алертинг метрик тестовых прогонов

Использование:
  apk-alert <команда> [аргументы]

Команды:
  dispatch         оценить пороги по отчёту (BR_REPORT_PATH) и разослать алерты
  evaluate         оценить пороги без рассылки (dry-run)
  serve            HTTP сервер защищённого доступа к отчётам
  mint-token <id>  выпустить подписанную ссылку на отчёт
  verify-token <t> проверить подписанный токен
  version          информация о сборке
  help             эта справка

Переменные окружения каналов: SLACK_WEBHOOK_URL, MAILGUN_API_KEY,
MAILGUN_DOMAIN, ALERT_RECIPIENT_EMAIL, TELEGRAM_BOT_TOKEN,
TELEGRAM_CHAT_ID, ALERT_WEBHOOK_URL, JWT_SECRET.
Отсутствие переменной отключает соответствующий канал.
`, constants.Version)
}
