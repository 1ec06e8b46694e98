package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// dispatchDivider — разделитель для блока рассылки в текстовом выводе.
const dispatchDivider = "══════════════════════════════════════════════════════"

// TextWriter форматирует Result в человекочитаемый текст.
type TextWriter struct{}

// NewTextWriter создаёт новый TextWriter.
func NewTextWriter() *TextWriter {
	return &TextWriter{}
}

// Write форматирует result в текст и записывает в w.
func (t *TextWriter) Write(w io.Writer, result *Result) error {
	if result == nil {
		return nil
	}

	// Базовый формат: Command: status
	if _, err := fmt.Fprintf(w, "%s: %s\n", result.Command, result.Status); err != nil {
		return err
	}

	// Ошибка
	if result.Error != nil {
		if _, err := fmt.Fprintf(w, "Error [%s]: %s\n", result.Error.Code, result.Error.Message); err != nil {
			return err
		}
	}

	// Результат рассылки
	if result.Dispatch != nil {
		if err := t.writeDispatch(w, result); err != nil {
			return err
		}
	}

	// Data — выводим как JSON если не пустое
	if result.Data != nil {
		dataJSON, err := json.MarshalIndent(result.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("не удалось сериализовать Data: %w", err)
		}
		if _, err := fmt.Fprintf(w, "Data: %s\n", dataJSON); err != nil {
			return err
		}
	}

	// Duration из Metadata
	if result.Metadata != nil && result.Metadata.DurationMs > 0 {
		if _, err := fmt.Fprintf(w, "⏱️  Время выполнения: %s\n", formatDuration(result.Metadata.DurationMs)); err != nil {
			return err
		}
	}

	return nil
}

// writeDispatch выводит блок результата рассылки алертов.
func (t *TextWriter) writeDispatch(w io.Writer, result *Result) error {
	d := result.Dispatch

	if _, err := fmt.Fprintf(w, "\n%s\n", dispatchDivider); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "📊 Рассылка %s (отчёт %s)\n", d.DispatchID, d.ReportID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n", dispatchDivider); err != nil {
		return err
	}

	if !d.Triggered {
		if _, err := fmt.Fprintf(w, "✅ Пороги не превышены, алерт не требуется\n"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "🚨 Сработавшие правила: %s\n", strings.Join(d.BreachedRules, ", ")); err != nil {
			return err
		}
		for _, o := range d.Outcomes {
			icon := "✅"
			detail := fmt.Sprintf("доставлено с %d попытки", o.Attempts)
			if !o.Success {
				icon = "❌"
				detail = fmt.Sprintf("не доставлено за %d попыток: %s", o.Attempts, o.LastError)
			}
			if _, err := fmt.Fprintf(w, "%s %s: %s\n", icon, o.Channel, detail); err != nil {
				return err
			}
		}
	}

	for _, note := range d.DataNotes {
		if _, err := fmt.Fprintf(w, "⚠️  %s\n", note); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%s\n", dispatchDivider); err != nil {
		return err
	}
	return nil
}

// formatDuration форматирует duration в человекочитаемый вид.
// Поддерживает миллисекунды, секунды и минуты.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dмс", ms)
	}
	sec := ms / 1000
	if sec < 60 {
		// Для секунд показываем десятичную часть.
		secFloat := float64(ms) / 1000
		return fmt.Sprintf("%.1fс", secFloat)
	}
	min := sec / 60
	secRem := sec % 60
	return fmt.Sprintf("%dм %dс", min, secRem)
}
