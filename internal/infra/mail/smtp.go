package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"parish/config"
	"parish/internal/domain/service"

	"github.com/pkg/errors"
)

// SMTPSender delivers mail through a plain SMTP server, optionally upgrading
// the connection with STARTTLS. It backs both the smtp integration provider
// and the built-in fallback transport.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	useTLS   bool
	sender   string
}

// NewSMTPSender builds an SMTP transport from an integration config map.
// Recognized keys: server, port, username, password, use_tls, sender_email.
func NewSMTPSender(cfg map[string]any) (*SMTPSender, error) {
	host := stringOpt(cfg, "server")
	port := intOpt(cfg, "port")
	if host == "" || port == 0 {
		return nil, errors.New("smtp integration requires server and port")
	}

	return &SMTPSender{
		host:     host,
		port:     port,
		username: stringOpt(cfg, "username"),
		password: stringOpt(cfg, "password"),
		useTLS:   boolOpt(cfg, "use_tls"),
		sender:   stringOpt(cfg, "sender_email"),
	}, nil
}

// NewFallbackSMTPSender builds the built-in transport from the MAIL_* config.
func NewFallbackSMTPSender(cfg *config.MailConfig) *SMTPSender {
	if cfg == nil {
		return &SMTPSender{}
	}

	return &SMTPSender{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		useTLS:   cfg.SMTP.UseTLS,
		sender:   cfg.DefaultSender,
	}
}

// Name returns the transport identifier.
func (s *SMTPSender) Name() string {
	return "smtp"
}

// Send delivers the message over SMTP. net/smtp carries no context support,
// so cancellation only applies up to connection establishment.
func (s *SMTPSender) Send(ctx context.Context, msg *service.EmailMessage) error {
	if s.host == "" || s.port == 0 {
		return errors.New("smtp transport is not configured")
	}

	sender := msg.Sender
	if sender == "" {
		sender = s.sender
	}
	if sender == "" {
		return errors.New("smtp transport has no sender address")
	}

	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	client, err := smtp.Dial(addr)
	if err != nil {
		return errors.Wrap(err, "smtp dial failed")
	}
	defer client.Close()

	if s.useTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
				return errors.Wrap(err, "starttls failed")
			}
		}
	}

	if s.username != "" {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		if err := client.Auth(auth); err != nil {
			return errors.Wrap(err, "smtp auth failed")
		}
	}

	if err := client.Mail(sender); err != nil {
		return errors.Wrap(err, "smtp mail command failed")
	}
	for _, recipient := range msg.Recipients {
		if err := client.Rcpt(recipient); err != nil {
			return errors.Wrapf(err, "smtp rcpt command failed for %s", recipient)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return errors.Wrap(err, "smtp data command failed")
	}
	if _, err := writer.Write(buildMessage(sender, msg)); err != nil {
		return errors.Wrap(err, "smtp message write failed")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "smtp message close failed")
	}

	return errors.Wrap(client.Quit(), "smtp quit failed")
}

func buildMessage(sender string, msg *service.EmailMessage) []byte {
	contentType := "text/plain; charset=\"utf-8\""
	if msg.HTML {
		contentType = "text/html; charset=\"utf-8\""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", sender)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: %s\r\n", contentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return []byte(b.String())
}
