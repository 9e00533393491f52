package sender

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// htmlPolicy strips everything not allowed in user-generated content, so a
// message body that arrives with markup cannot smuggle scripts into a mail
// client.
var htmlPolicy = bluemonday.UGCPolicy()

var bodyTemplate = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; line-height: 1.5; color: #1a1a1a;">
<h2 style="margin-bottom: 0.5em;">{{.Subject}}</h2>
<div>{{.Body}}</div>
</body>
</html>
`))

// renderHTML sanitizes the message body and wraps it in the standard email
// frame. The body is treated as trusted HTML only after sanitization.
func renderHTML(subject, body string) string {
	sanitized := htmlPolicy.Sanitize(body)

	var sb strings.Builder
	err := bodyTemplate.Execute(&sb, struct {
		Subject string
		Body    template.HTML
	}{
		Subject: subject,
		Body:    template.HTML(sanitized),
	})
	if err != nil {
		// The template is static and the data trivially serializable; an
		// execution failure means a programming error. Fall back to the
		// sanitized body rather than dropping the message.
		return sanitized
	}
	return sb.String()
}
