package output

import "io"

// Writer форматирует результат команды для stdout.
// Реализации: JSONWriter (машиночитаемый вывод для CI)
// и TextWriter (человекочитаемый).
type Writer interface {
	// Write сериализует result и пишет в w.
	Write(w io.Writer, result *Result) error
}
