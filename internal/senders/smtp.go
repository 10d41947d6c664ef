package senders

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"net/textproto"

	"github.com/aiba-2502/denco-notify/internal/core/config"
	"github.com/aiba-2502/denco-notify/internal/types"
)

// SMTPSender delivers email channel messages over SMTP.
type SMTPSender struct {
	server   string
	port     int
	username string
	password string
	from     string
}

// NewSMTPSender creates an email sender from transport configuration.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Server == "" {
		return nil, fmt.Errorf("smtp server required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address required")
	}
	return &SMTPSender{
		server:   cfg.Server,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}, nil
}

// Channel implements ChannelSender.
func (s *SMTPSender) Channel() types.Channel { return types.ChannelEmail }

// Send delivers one message to address.
// Classification: network and 4xx server replies are transient, 5xx replies
// (bad mailbox, auth rejection) are permanent.
func (s *SMTPSender) Send(ctx context.Context, address, message string) error {
	if err := ctx.Err(); err != nil {
		return types.TransientSend(err)
	}

	addr := fmt.Sprintf("%s:%d", s.server, s.port)
	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.server)
	}

	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Notification\r\n\r\n%s\r\n", s.from, address, message))

	if err := smtp.SendMail(addr, auth, s.from, []string{address}, msg); err != nil {
		return classifySMTPError(err)
	}
	return nil
}

// classifySMTPError maps SMTP failures onto the transient/permanent taxonomy.
func classifySMTPError(err error) error {
	if protoErr, ok := err.(*textproto.Error); ok {
		if protoErr.Code >= 400 && protoErr.Code < 500 {
			return types.TransientSend(err)
		}
		return types.PermanentSend(err)
	}
	if _, ok := err.(net.Error); ok {
		return types.TransientSend(err)
	}
	return types.PermanentSend(fmt.Errorf("failed to send email: %w", err))
}
