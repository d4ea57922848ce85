package mail

import (
	"context"
	"fmt"
	"io"

	"github.com/birthdayreminder/birthdayreminder/internal/config"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SmtpMailer delivers messages through an SMTP relay. Port 465 uses implicit TLS.
type SmtpMailer struct {
	sender   sender
	from     string
	fromName string
}

func NewSmtpMailer(cfg config.Smtp) *SmtpMailer {
	return &SmtpMailer{
		sender:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass),
		from:     cfg.User,
		fromName: cfg.FromName,
	}
}

func (m *SmtpMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := m.buildMessage(msg)
	if err := m.sender.DialAndSend(message); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	log.Debugf("Mail %q sent to %s", msg.Subject, msg.To)
	return nil
}

func (m *SmtpMailer) buildMessage(msg Message) *gomail.Message {
	message := gomail.NewMessage()
	message.SetAddressHeader("From", m.from, m.fromName)
	message.SetHeader("To", msg.To)
	message.SetHeader("Subject", msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		message.SetBody("text/plain", msg.TextBody)
		message.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		message.SetBody("text/html", msg.HTMLBody)
	default:
		message.SetBody("text/plain", msg.TextBody)
	}

	for _, a := range msg.Attachments {
		content := a.Content
		message.Attach(a.Filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}),
		)
	}
	return message
}
