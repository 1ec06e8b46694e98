package output

import "strings"

// Поддерживаемые форматы вывода (BR_OUTPUT_FORMAT).
const (
	FormatJSON = "json"
	FormatText = "text"
)

// NewWriter создаёт Writer по имени формата без учёта регистра.
// Неизвестный формат деградирует в текстовый вывод.
func NewWriter(format string) Writer {
	if strings.ToLower(format) == FormatJSON {
		return NewJSONWriter()
	}
	return NewTextWriter()
}
