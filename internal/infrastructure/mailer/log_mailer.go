// Package mailer delivers outbound email. LogMailer writes messages to the
// structured log instead of an SMTP relay.
package mailer

import (
	"context"
	"strings"
	"sync"

	"github.com/lumina/storefront/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Message is a sent email, kept for inspection
type Message struct {
	To      string
	Subject string
	Body    string
}

// LogMailer logs each email and remembers the most recent ones
type LogMailer struct {
	logger *zap.Logger
	mu     sync.Mutex
	sent   []Message
	keep   int
}

// NewLogMailer creates a mailer that keeps the last 100 messages
func NewLogMailer(l *zap.Logger) *LogMailer {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogMailer{logger: l, keep: 100}
}

// Send logs the message
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	logger.WithLogger(ctx, m.logger).Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, Message{To: to, Subject: subject, Body: body})
	if len(m.sent) > m.keep {
		m.sent = m.sent[len(m.sent)-m.keep:]
	}
	return nil
}

// Sent returns a copy of the remembered messages, oldest first
func (m *LogMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
