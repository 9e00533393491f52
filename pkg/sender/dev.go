package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"
	"time"
)

// Dev implements Sender for local development. Instead of contacting an
// external service it spools each message to a directory as an HTML file plus
// a JSON metadata file, so delivered notifications can be inspected in a
// browser.
type Dev struct {
	dir string
	seq atomic.Uint64
}

// NewDev creates a development sender that writes messages to cfg.Dir. The
// directory is created on first send.
func NewDev(cfg DevConfig) *Dev {
	dir := cfg.Dir
	if dir == "" {
		dir = "./tmp/outbox"
	}
	return &Dev{dir: dir}
}

// devMetadata is the message envelope saved next to the HTML body.
type devMetadata struct {
	Timestamp string `json:"timestamp"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
}

// Send implements Sender. The HTML file holds the same rendered body a real
// email channel would transmit.
func (d *Dev) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("%w: failed to create directory: %v", ErrSendFailed, err)
	}

	now := time.Now()

	// Tag names the file when present, otherwise the subject does. A sequence
	// number keeps messages spooled within the same second from clobbering
	// each other.
	identifier := msg.Tag
	if identifier == "" {
		identifier = msg.Subject
	}
	baseFilename := fmt.Sprintf("%s_%04d_%s",
		now.Format("2006_01_02_150405"), d.seq.Add(1), sanitizeFilename(identifier))

	htmlPath := filepath.Join(d.dir, baseFilename+".html")
	if err := os.WriteFile(htmlPath, []byte(renderHTML(msg.Subject, msg.Body)), 0644); err != nil {
		return fmt.Errorf("%w: failed to write HTML file: %v", ErrSendFailed, err)
	}

	metadata := devMetadata{
		Timestamp: now.Format(time.RFC3339),
		To:        msg.To,
		Subject:   msg.Subject,
		Tag:       msg.Tag,
	}
	jsonData, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrSendFailed, err)
	}
	jsonPath := filepath.Join(d.dir, baseFilename+".json")
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf("%w: failed to write JSON file: %v", ErrSendFailed, err)
	}
	return nil
}

// SendBatch implements Sender by spooling each message individually.
func (d *Dev) SendBatch(ctx context.Context, msgs []Message) []error {
	errs := make([]error, len(msgs))
	for i, msg := range msgs {
		errs[i] = d.Send(ctx, msg)
	}
	return errs
}

// sanitizeRegex matches characters that are not alphanumeric, dash,
// underscore, or dot.
var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename converts a string into a safe lowercase filename,
// replacing spaces with underscores and dropping special characters.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = sanitizeRegex.ReplaceAllString(s, "")

	const maxLength = 100
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "message"
	}
	return strings.ToLower(s)
}
