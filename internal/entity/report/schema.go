package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// kindPrinter требуется библиотекой для форматирования ErrorKind (nil вызывает панику).
var kindPrinter = message.NewPrinter(language.English)

// summarySchemaJSON — JSON Schema отчёта runner'а.
// Схема описывает ожидаемую форму, но её нарушение НЕ прерывает обработку:
// результат валидации деградирует в data-quality notes (см. ParseSummary).
const summarySchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "totalRequests":      { "type": "integer", "minimum": 0 },
    "failCount":          { "type": "integer", "minimum": 0 },
    "successRatePercent": { "type": "number", "minimum": 0, "maximum": 100 },
    "avgResponseTimeMs":  { "type": "number", "minimum": 0 },
    "criticalAlerts":     { "type": "integer", "minimum": 0 },
    "generatedAt":        { "type": "string", "format": "date-time" },
    "reportId":           { "type": "string" },
    "failures":           { "type": "array", "items": { "type": "string" } }
  },
  "required": ["totalRequests", "failCount"]
}`

var (
	summarySchemaOnce sync.Once
	summarySchema     *jsonschema.Schema
	summarySchemaErr  error
)

// compiledSummarySchema компилирует схему один раз на процесс.
// Ошибка компиляции невозможна для константной схемы, но обрабатывается
// явно чтобы не паниковать при будущих правках схемы.
func compiledSummarySchema() (*jsonschema.Schema, error) {
	summarySchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(summarySchemaJSON))
		if err != nil {
			summarySchemaErr = fmt.Errorf("парсинг схемы отчёта: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("summary.schema.json", doc); err != nil {
			summarySchemaErr = fmt.Errorf("регистрация схемы отчёта: %w", err)
			return
		}
		summarySchema, summarySchemaErr = compiler.Compile("summary.schema.json")
	})
	return summarySchema, summarySchemaErr
}

// ValidateSummaryJSON проверяет JSON отчёта по схеме.
// Возвращает список нарушений как data-quality notes. Пустой список — отчёт валиден.
// Некорректный JSON и ошибки схемы не считаются фатальными на этом уровне.
func ValidateSummaryJSON(data []byte) []string {
	schema, err := compiledSummarySchema()
	if err != nil {
		return []string{fmt.Sprintf("схема отчёта недоступна: %v", err)}
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return []string{fmt.Sprintf("отчёт не является корректным JSON: %v", err)}
	}

	if err := schema.Validate(inst); err != nil {
		return validationNotes(err)
	}
	return nil
}

// validationNotes упаковывает ошибку валидации в компактные notes.
func validationNotes(err error) []string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{fmt.Sprintf("нарушение схемы отчёта: %v", err)}
	}

	var notes []string
	for _, cause := range flattenCauses(verr) {
		loc := "/" + strings.Join(cause.InstanceLocation, "/")
		notes = append(notes, fmt.Sprintf("нарушение схемы отчёта в %s: %s", loc, cause.ErrorKind.LocalizedString(kindPrinter)))
	}
	if len(notes) == 0 {
		notes = append(notes, fmt.Sprintf("нарушение схемы отчёта: %v", verr))
	}
	return notes
}

// flattenCauses разворачивает дерево причин в плоский список листьев.
func flattenCauses(v *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(v.Causes) == 0 {
		return []*jsonschema.ValidationError{v}
	}
	var leaves []*jsonschema.ValidationError
	for _, c := range v.Causes {
		leaves = append(leaves, flattenCauses(c)...)
	}
	return leaves
}
