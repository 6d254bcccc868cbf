package email

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPSender_IncompleteConfig(t *testing.T) {
	testCases := []struct {
		name string
		cfg  config.SMTPConfig
	}{
		{"Missing Host", config.SMTPConfig{Port: 587, SenderEmail: "shop@example.com"}},
		{"Missing Port", config.SMTPConfig{Host: "smtp.example.com", SenderEmail: "shop@example.com"}},
		{"Missing SenderEmail", config.SMTPConfig{Host: "smtp.example.com", Port: 587}},
		{"All Missing", config.SMTPConfig{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sender, err := NewSMTPSender(tc.cfg, logger.NewNop())
			assert.Nil(t, sender)
			assert.ErrorIs(t, err, ErrIncompleteConfig)
		})
	}
}

func TestNewSMTPSender_Encryption(t *testing.T) {
	cfg := config.SMTPConfig{Host: "smtp.example.com", Port: 465, SenderEmail: "shop@example.com", Encryption: "SSL"}
	sender, err := NewSMTPSender(cfg, logger.NewNop())
	require.NoError(t, err)

	s := sender.(*smtpSender)
	assert.True(t, s.d.SSL)
	require.NotNil(t, s.d.TLSConfig)
	assert.Equal(t, "smtp.example.com", s.d.TLSConfig.ServerName)
}

func TestTransportSecurity(t *testing.T) {
	ssl, tlsCfg := transportSecurity(config.SMTPConfig{Host: "smtp.example.com", Encryption: "STARTTLS", ServerName: "mx.example.com"})
	assert.False(t, ssl)
	require.NotNil(t, tlsCfg)
	assert.Equal(t, "mx.example.com", tlsCfg.ServerName)

	ssl, tlsCfg = transportSecurity(config.SMTPConfig{Host: "smtp.example.com", Encryption: "none"})
	assert.False(t, ssl)
	assert.Nil(t, tlsCfg)
}

func TestBuildMessage(t *testing.T) {
	_, err := buildMessage("shop@example.com", nil, "Order placed", "", "body")
	assert.ErrorIs(t, err, ErrNoRecipients)

	_, err = buildMessage("shop@example.com", []string{"buyer@example.com"}, "Order placed", "", "")
	assert.ErrorIs(t, err, ErrEmptyBody)

	m, err := buildMessage("shop@example.com", []string{"buyer@example.com"}, "Order placed", "<p>hi</p>", "hi")
	require.NoError(t, err)
	assert.Equal(t, []string{"Order placed"}, m.GetHeader("Subject"))
}

func TestSMTPSender_SendHonoursCancelledContext(t *testing.T) {
	cfg := config.SMTPConfig{Host: "127.0.0.1", Port: 1, SenderEmail: "shop@example.com"}
	sender, err := NewSMTPSender(cfg, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = sender.Send(ctx, []string{"buyer@example.com"}, "Order placed", "", "hi")
	assert.Error(t, err)
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, NewLogSender(logger.NewNop()).Send(context.Background(), []string{"a@example.com"}, "s", "", "b"))
}
