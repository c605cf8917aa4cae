package mail

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pinobite/storefront/internal/types"
	gomail "github.com/wneessen/go-mail"
)

// SMTPMailer sends through an authenticated SMTP relay, upgrading to TLS
// when the server offers STARTTLS.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	timeout  time.Duration
}

func NewSMTPMailer(host string, port int, username, passwordEnv, directPassword, from string, timeout time.Duration) (*SMTPMailer, error) {
	var password string

	// First try the password from config
	if directPassword != "" {
		password = directPassword
	} else if passwordEnv != "" {
		// Fallback to environment variable
		password = os.Getenv(passwordEnv)
	}

	if host == "" {
		return nil, errors.New("smtp host is not configured")
	}
	if from == "" {
		from = username
	}
	if from == "" {
		return nil, errors.New("smtp sender address is not configured")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		timeout:  timeout,
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg types.Message) error {
	message := gomail.NewMsg()
	if err := message.From(m.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := message.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	message.Subject(msg.Subject)
	message.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		message.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}

	opts := []gomail.Option{
		gomail.WithPort(m.port),
		gomail.WithTimeout(m.timeout),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if m.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.username),
			gomail.WithPassword(m.password),
		)
	}

	client, err := gomail.NewClient(m.host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (m *SMTPMailer) Name() string {
	return fmt.Sprintf("smtp:%s:%d", m.host, m.port)
}

// Compile-time interface check
var _ types.Mailer = (*SMTPMailer)(nil)
