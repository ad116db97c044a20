package sender

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender delivers order confirmation mail.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}

// LogSender writes mail to the log instead of a mailbox. Used in development
// and whenever SMTP is not configured.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendEmail(_ context.Context, to, subject, body string) (SendResult, error) {
	s.logger.Info("Email delivery skipped (log sender)",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return SendResult{
		MessageID: "log-" + time.Now().Format("20060102150405.000000000"),
		SentAt:    time.Now(),
	}, nil
}
