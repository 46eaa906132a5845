package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileSender writes each message to a directory instead of delivering it.
// Every message produces an .html body and a .json metadata file sharing one
// base name.
type FileSender struct {
	dir  string
	from string
	now  func() time.Time
}

// NewFileSender returns a sender writing into dir. The directory is created
// on first send.
func NewFileSender(dir, defaultFrom string) (*FileSender, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("%w: outbox directory is required", ErrInvalidConfig)
	}
	return &FileSender{dir: dir, from: defaultFrom, now: time.Now}, nil
}

// Dir returns the outbox directory.
func (s *FileSender) Dir() string {
	return s.dir
}

type fileMetadata struct {
	Headers   map[string]string `json:"headers,omitempty"`
	Timestamp string            `json:"timestamp"`
	To        string            `json:"to"`
	Subject   string            `json:"subject"`
	From      string            `json:"from,omitempty"`
	ReplyTo   string            `json:"reply_to,omitempty"`
	HTMLFile  string            `json:"html_file"`
	CC        []string          `json:"cc,omitempty"`
}

// Send implements Sender.
func (s *FileSender) Send(ctx context.Context, msg *Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: failed to create outbox: %v", ErrSendFailed, err)
	}

	now := s.now()
	base := fmt.Sprintf("%s_%s_%s",
		now.Format("2006_01_02_150405"),
		sanitizeFilename(msg.To),
		uuid.NewString()[:8],
	)

	htmlFile := base + ".html"
	if err := os.WriteFile(filepath.Join(s.dir, htmlFile), []byte(msg.HTML), 0o644); err != nil {
		return fmt.Errorf("%w: failed to write HTML file: %v", ErrSendFailed, err)
	}

	from := msg.From
	if from == "" {
		from = s.from
	}

	data, err := json.MarshalIndent(fileMetadata{
		Timestamp: now.Format(time.RFC3339),
		To:        msg.To,
		CC:        msg.CC,
		Subject:   msg.Subject,
		From:      from,
		ReplyTo:   msg.ReplyTo,
		Headers:   msg.Headers,
		HTMLFile:  htmlFile,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to marshal metadata: %v", ErrSendFailed, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, base+".json"), data, 0o644); err != nil {
		return fmt.Errorf("%w: failed to write JSON file: %v", ErrSendFailed, err)
	}

	return nil
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// sanitizeFilename converts a recipient into a lowercase filename fragment.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "_")
	s = strings.ReplaceAll(s, "@", "_at_")
	s = unsafeFilenameChars.ReplaceAllString(s, "")

	const maxLength = 80
	if len(s) > maxLength {
		s = s[:maxLength]
	}
	if s == "" {
		s = "email"
	}
	return strings.ToLower(s)
}
