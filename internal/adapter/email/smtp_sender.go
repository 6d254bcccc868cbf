package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"gopkg.in/gomail.v2"
)

var (
	ErrIncompleteConfig = errors.New("SMTP host, port, and sender email must be configured")
	ErrNoRecipients     = errors.New("email has no recipients")
	ErrEmptyBody        = errors.New("email has neither an HTML nor a text body")
)

// EmailSender delivers one message. bodyHTML may be empty.
type EmailSender interface {
	Send(ctx context.Context, to []string, subject, bodyHTML, bodyText string) error
}

type smtpSender struct {
	cfg config.SMTPConfig
	log logger.Logger
	d   *gomail.Dialer
}

func NewSMTPSender(cfg config.SMTPConfig, log logger.Logger) (EmailSender, error) {
	if cfg.Host == "" || cfg.Port == 0 || cfg.SenderEmail == "" {
		return nil, ErrIncompleteConfig
	}
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL, d.TLSConfig = transportSecurity(cfg)
	return &smtpSender{cfg: cfg, log: log.Named("SMTPSender"), d: d}, nil
}

// transportSecurity maps the encryption setting: "ssl" is implicit TLS,
// "tls"/"starttls" upgrade a plain connection, anything else sends in clear.
func transportSecurity(cfg config.SMTPConfig) (bool, *tls.Config) {
	serverName := cfg.ServerName
	if serverName == "" {
		serverName = cfg.Host
	}
	tlsCfg := &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12}
	switch strings.ToLower(cfg.Encryption) {
	case "ssl":
		return true, tlsCfg
	case "tls", "starttls":
		return false, tlsCfg
	default:
		return false, nil
	}
}

func buildMessage(from string, to []string, subject, bodyHTML, bodyText string) (*gomail.Message, error) {
	if len(to) == 0 {
		return nil, ErrNoRecipients
	}
	if bodyHTML == "" && bodyText == "" {
		return nil, ErrEmptyBody
	}
	m := gomail.NewMessage()
	m.SetHeaders(map[string][]string{
		"From":    {from},
		"To":      to,
		"Subject": {subject},
	})
	if bodyHTML == "" {
		m.SetBody("text/plain", bodyText)
		return m, nil
	}
	m.SetBody("text/html", bodyHTML)
	if bodyText != "" {
		m.AddAlternative("text/plain", bodyText)
	}
	return m, nil
}

// Send gives up when ctx ends or WriteTimeout passes. The dial goroutine is
// left to finish on its own.
func (s *smtpSender) Send(ctx context.Context, to []string, subject, bodyHTML, bodyText string) error {
	from := s.cfg.SenderEmail
	if s.cfg.SenderName != "" {
		from = gomail.NewMessage().FormatAddress(s.cfg.SenderEmail, s.cfg.SenderName)
	}
	m, err := buildMessage(from, to, subject, bodyHTML, bodyText)
	if err != nil {
		return err
	}

	if s.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.WriteTimeout)
		defer cancel()
	}

	result := make(chan error, 1)
	go func() { result <- s.d.DialAndSend(m) }()

	select {
	case <-ctx.Done():
		s.log.Warnf("Gave up sending %q to %v: %v", subject, to, ctx.Err())
		return fmt.Errorf("smtp: send %q: %w", subject, ctx.Err())
	case err := <-result:
		if err != nil {
			s.log.Errorf("Failed to send %q to %v: %v", subject, to, err)
			return fmt.Errorf("smtp: send %q: %w", subject, err)
		}
	}
	s.log.Debugf("Sent %q to %d recipient(s)", subject, len(to))
	return nil
}
