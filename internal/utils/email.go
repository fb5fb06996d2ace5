package utils

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/wneessen/go-mail"
)

// Attachment est une pièce jointe déjà en mémoire (facture PDF...).
type Attachment struct {
	Name string
	Data []byte
}

// Sender envoie un email HTML.
type Sender interface {
	Send(ctx context.Context, to, subject, html string, attachments ...Attachment) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer relaie les emails via SMTP avec authentification LOGIN et TLS obligatoire.
type Mailer struct {
	cfg SMTPConfig
}

func NewMailer(cfg SMTPConfig) *Mailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Send(ctx context.Context, to, subject, html string, attachments ...Attachment) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("expéditeur invalide: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("destinataire invalide: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	for _, a := range attachments {
		msg.AttachReader(a.Name, bytes.NewReader(a.Data))
	}

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("client SMTP: %w", err)
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSendWithContext(ctx, msg)
}

// LogSender remplace le relais SMTP quand il n'est pas configuré.
type LogSender struct{}

func (LogSender) Send(_ context.Context, to, subject, _ string, attachments ...Attachment) error {
	log.Printf("📧 (SMTP non configuré) %s → %s, %d pièce(s) jointe(s)", subject, to, len(attachments))
	return nil
}
