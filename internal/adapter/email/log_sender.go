package email

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
)

type logSender struct {
	log logger.Logger
}

// NewLogSender writes outgoing mail to the log instead of an SMTP server.
func NewLogSender(log logger.Logger) EmailSender {
	return &logSender{log: log.Named("LogMailer")}
}

func (s *logSender) Send(_ context.Context, to []string, subject, _, bodyText string) error {
	s.log.Infof("mail to %v: %s\n%s", to, subject, bodyText)
	return nil
}
