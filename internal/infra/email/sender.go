package email

import (
	"context"
	"log/slog"
)

// LogSenderは開発用のメール送信役。
// 実際には送らず、確認リンクをログに出すだけ（本番は別実装を注入する）
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendEmail(ctx context.Context, to string, subject string, body string) error {
	s.log.Info("email.send",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
