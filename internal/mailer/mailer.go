package mailer

import (
	"context"

	"go.uber.org/zap"
)

type Mailer interface {
	SendOTP(ctx context.Context, email string, code string) error
}

// LogMailer writes outgoing mail to the log instead of delivering it.
type LogMailer struct {
	log *zap.Logger
	// reveal prints the code itself; only for local development
	reveal bool
}

func NewLogMailer(log *zap.Logger, reveal bool) *LogMailer {
	return &LogMailer{log: log, reveal: reveal}
}

func (m *LogMailer) SendOTP(_ context.Context, email string, code string) error {
	fields := []zap.Field{zap.String("to", email), zap.String("template", "otp")}
	if m.reveal {
		fields = append(fields, zap.String("code", code))
	}
	m.log.Info("sending mail", fields...)
	return nil
}
