// Package notify sends outbound mail. Senders deliver synchronously; the
// Dispatcher wraps one so request handlers never wait on delivery.
package notify

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
)

// TemplateVerify welcomes a newly registered user. Its context carries url
// and name.
const TemplateVerify = "verify"

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Message is one templated mail.
type Message struct {
	To       string
	Subject  string
	Template string
	Context  map[string]any
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Render executes the message's template.
func Render(msg Message) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, msg.Template+".html", msg.Context); err != nil {
		return "", fmt.Errorf("notify: render %s: %w", msg.Template, err)
	}
	return buf.String(), nil
}
