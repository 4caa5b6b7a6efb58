package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/ajharbinger/profmatch-api/internal/logger"
)

// Message is an outgoing email with HTML and plain-text bodies
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends email. Implementations are built once at startup and injected.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sender is the part of *mail.Client used for delivery
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer delivers messages through an SMTP relay using STARTTLS when offered
type SMTPMailer struct {
	from   string
	client sender
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(15 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return &SMTPMailer{from: cfg.From, client: client}, nil
}

// Send delivers msg as multipart/alternative, plain text first
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("mail recipient is empty")
	}

	out, err := m.build(msg)
	if err != nil {
		return err
	}

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) build(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	out.Subject(msg.Subject)
	out.SetDate()

	switch {
	case msg.Text != "" && msg.HTML != "":
		out.SetBodyString(mail.TypeTextPlain, msg.Text)
		out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	case msg.HTML != "":
		out.SetBodyString(mail.TypeTextHTML, msg.HTML)
	default:
		out.SetBodyString(mail.TypeTextPlain, msg.Text)
	}
	return out, nil
}

// LogMailer only logs outgoing messages; used when no SMTP relay is configured
type LogMailer struct {
	log      logger.Logger
	withBody bool
}

// NewLogMailer creates a log-only mailer. The body, which may carry reset
// links, is logged only when withBody is set.
func NewLogMailer(log logger.Logger, withBody bool) *LogMailer {
	return &LogMailer{log: log, withBody: withBody}
}

// Send logs the recipient and subject
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	fields := []interface{}{"to", msg.To, "subject", msg.Subject}
	if m.withBody {
		fields = append(fields, "text", msg.Text)
	}
	m.log.Info("mail not sent, no SMTP relay configured", fields...)
	return nil
}
