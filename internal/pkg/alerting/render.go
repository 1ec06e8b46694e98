package alerting

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"
)

// maxRenderedFailures — сколько упавших проверок попадает в тело алерта.
// Остаток сворачивается в строку "... и ещё N".
const maxRenderedFailures = 3

// tokenPattern — шаблон подстановочного токена вида {{name}}.
var tokenPattern = regexp.MustCompile(`\{\{([a-zA-Z][a-zA-Z0-9_]*)\}\}`)

// Vars строит словарь подстановки из полей сообщения.
// Ключи: title, severity, timestamp, reportId, signedUrl, failures.
// Metadata добавляется по своим ключам и не перекрывает встроенные.
func Vars(msg AlertMessage) map[string]string {
	vars := map[string]string{
		"title":     msg.Title,
		"severity":  msg.Severity.String(),
		"timestamp": msg.Timestamp.Format(time.RFC3339),
		"reportId":  msg.ReportID,
		"signedUrl": msg.SignedURL,
		"failures":  renderFailures(msg.Failures),
	}
	for _, f := range msg.Metadata {
		if _, taken := vars[f.Key]; !taken {
			vars[f.Key] = f.Value
		}
	}
	return vars
}

// Substitute заменяет токены {{name}} на значения из vars.
// Рендерер тотален: неизвестный токен остаётся литеральным текстом —
// косметический баг шаблона не должен ронять доставку алерта.
func Substitute(s string, vars map[string]string) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		name := tok[2 : len(tok)-2]
		if v, ok := vars[name]; ok {
			return v
		}
		return tok
	})
}

// renderFailures сворачивает список упавших проверок до maxRenderedFailures строк.
func renderFailures(failures []string) string {
	if len(failures) == 0 {
		return ""
	}
	shown := failures
	if len(shown) > maxRenderedFailures {
		shown = shown[:maxRenderedFailures]
	}
	out := strings.Join(shown, "\n")
	if rest := len(failures) - len(shown); rest > 0 {
		out += fmt.Sprintf("\n… и ещё %d", rest)
	}
	return out
}

// markdownReplacer — переиспользуемый replacer для экранирования символов
// Markdown v1 (Telegram). Backslash экранируется ПЕРВЫМ, чтобы не удваивать
// экранирование остальных символов.
var markdownReplacer = strings.NewReplacer(
	`\`, `\\`,
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	">", "\\>",
)

// escapeMarkdown экранирует специальные символы Markdown v1 для Telegram.
// Скобки экранируются для защиты от инъекции inline ссылок [text](url).
func escapeMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}

// --- Slack ---

// slackPayload — JSON тело для Slack incoming webhook.
type slackPayload struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji"`
	Attachments []slackAttachment `json:"attachments"`
}

// slackAttachment — один attachment в slack сообщении.
type slackAttachment struct {
	Color  string       `json:"color"`
	Title  string       `json:"title"`
	Fields []slackField `json:"fields"`
	Footer string       `json:"footer"`
	TS     int64        `json:"ts"`
}

// slackField — пара заголовок/значение внутри attachment.
type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// slackColor возвращает цвет attachment для уровня критичности.
func slackColor(s Severity) string {
	switch s {
	case SeverityCritical:
		return "#b30000"
	case SeverityHigh:
		return "danger"
	case SeverityMedium:
		return "warning"
	default:
		return "#439fe0"
	}
}

// RenderSlack строит типизированный slack payload из сообщения.
// Текстовые поля проходят подстановку токенов; структура сериализуется
// через encoding/json, что гарантирует синтаксически валидный JSON
// независимо от содержимого пользовательских строк.
func RenderSlack(msg AlertMessage, username, iconEmoji string) slackPayload {
	vars := Vars(msg)

	fields := make([]slackField, 0, len(msg.Metadata)+2)
	fields = append(fields, slackField{Title: "Severity", Value: msg.Severity.String(), Short: true})
	fields = append(fields, slackField{Title: "Report", Value: msg.ReportID, Short: true})
	for _, f := range msg.Metadata {
		fields = append(fields, slackField{Title: f.Key, Value: Substitute(f.Value, vars), Short: true})
	}
	if failures := vars["failures"]; failures != "" {
		fields = append(fields, slackField{Title: "Failures", Value: failures, Short: false})
	}
	if msg.SignedURL != "" {
		fields = append(fields, slackField{Title: "Report URL", Value: msg.SignedURL, Short: false})
	}

	return slackPayload{
		Username:  username,
		IconEmoji: iconEmoji,
		Attachments: []slackAttachment{{
			Color:  slackColor(msg.Severity),
			Title:  Substitute(msg.Title, vars),
			Fields: fields,
			Footer: "apk-alert",
			TS:     msg.Timestamp.Unix(),
		}},
	}
}

// --- Email (HTML) ---

// emailBodyTemplate — HTML шаблон тела письма.
// html/template экранирует пользовательские строки, поэтому
// вывод всегда корректный HTML.
var emailBodyTemplate = template.Must(template.New("email").Parse(`<html>
<body style="font-family: sans-serif">
<h2>{{.Title}}</h2>
<table border="0" cellpadding="4">
<tr><td><b>Severity</b></td><td>{{.Severity}}</td></tr>
<tr><td><b>Report</b></td><td>{{.ReportID}}</td></tr>
<tr><td><b>Time</b></td><td>{{.Timestamp}}</td></tr>
{{range .Meta}}<tr><td><b>{{.Key}}</b></td><td>{{.Value}}</td></tr>
{{end}}</table>
{{if .Failures}}<h3>Failures</h3>
<ul>
{{range .Failures}}<li>{{.}}</li>
{{end}}</ul>
{{end}}{{if .SignedURL}}<p><a href="{{.SignedURL}}">Открыть полный отчёт</a></p>
{{end}}<hr>
<p style="color: #888">Автоматический алерт apk-alert.</p>
</body>
</html>
`))

// emailTemplateData — данные для HTML шаблона письма.
type emailTemplateData struct {
	Title     string
	Severity  string
	ReportID  string
	Timestamp string
	Meta      []MetaField
	Failures  []string
	SignedURL string
}

// RenderEmailHTML строит HTML тело письма из сообщения.
func RenderEmailHTML(msg AlertMessage) (string, error) {
	vars := Vars(msg)

	failures := msg.Failures
	if len(failures) > maxRenderedFailures {
		rest := len(failures) - maxRenderedFailures
		failures = append(failures[:maxRenderedFailures:maxRenderedFailures],
			fmt.Sprintf("… и ещё %d", rest))
	}

	meta := make([]MetaField, 0, len(msg.Metadata))
	for _, f := range msg.Metadata {
		meta = append(meta, MetaField{Key: f.Key, Value: Substitute(f.Value, vars)})
	}

	var sb strings.Builder
	err := emailBodyTemplate.Execute(&sb, emailTemplateData{
		Title:     Substitute(msg.Title, vars),
		Severity:  msg.Severity.String(),
		ReportID:  msg.ReportID,
		Timestamp: msg.Timestamp.Format(time.RFC3339),
		Meta:      meta,
		Failures:  failures,
		SignedURL: msg.SignedURL,
	})
	if err != nil {
		return "", fmt.Errorf("рендеринг email шаблона: %w", err)
	}
	return sb.String(), nil
}

// --- Telegram (Markdown) ---

// RenderTelegram строит Markdown текст сообщения для Telegram.
// Все пользовательские строки экранируются через escapeMarkdown.
func RenderTelegram(msg AlertMessage) string {
	vars := Vars(msg)
	var sb strings.Builder

	sb.WriteString("🚨 *")
	sb.WriteString(escapeMarkdown(Substitute(msg.Title, vars)))
	sb.WriteString("*\n\n")

	sb.WriteString("*Severity:* ")
	sb.WriteString(escapeMarkdown(msg.Severity.String()))
	sb.WriteString("\n")

	sb.WriteString("*Report:* `")
	sb.WriteString(escapeMarkdown(msg.ReportID))
	sb.WriteString("`\n")

	for _, f := range msg.Metadata {
		sb.WriteString("*")
		sb.WriteString(escapeMarkdown(f.Key))
		sb.WriteString(":* ")
		sb.WriteString(escapeMarkdown(Substitute(f.Value, vars)))
		sb.WriteString("\n")
	}

	if failures := vars["failures"]; failures != "" {
		sb.WriteString("\n*Failures:*\n")
		sb.WriteString(escapeMarkdown(failures))
		sb.WriteString("\n")
	}

	if msg.SignedURL != "" {
		sb.WriteString("\n[Полный отчёт](")
		sb.WriteString(msg.SignedURL)
		sb.WriteString(")\n")
	}

	sb.WriteString("\n_Time:_ ")
	sb.WriteString(escapeMarkdown(msg.Timestamp.Format(time.RFC3339)))

	return sb.String()
}
