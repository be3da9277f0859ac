// AngelaMos | 2026
// mail.go

package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/carterperez-dev/storefront-api/internal/config"
)

type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error
}

func New(cfg config.MailConfig, appName string, logger *slog.Logger) Mailer {
	if !cfg.Enabled() {
		return NewLogMailer(logger)
	}
	return NewSMTPMailer(cfg, appName)
}

type SMTPMailer struct {
	dialer  *gomail.Dialer
	from    string
	appName string
}

func NewSMTPMailer(cfg config.MailConfig, appName string) *SMTPMailer {
	return &SMTPMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		appName: appName,
	}
}

func (m *SMTPMailer) SendVerificationCode(
	ctx context.Context,
	to, code string,
	ttl time.Duration,
) error {
	msg, err := m.verificationMessage(to, code, ttl)
	if err != nil {
		return err
	}

	// gomail has no context support; honour cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) verificationMessage(
	to, code string,
	ttl time.Duration,
) (*gomail.Message, error) {
	var body bytes.Buffer
	err := verificationTemplate.Execute(&body, verificationData{
		AppName: m.appName,
		Code:    code,
		Minutes: int(ttl.Minutes()),
	})
	if err != nil {
		return nil, fmt.Errorf("render verification email: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", m.appName+" verification code")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your verification code is %s. It expires in %d minutes.",
		code,
		int(ttl.Minutes()),
	))
	msg.AddAlternative("text/html", body.String())

	return msg, nil
}

type verificationData struct {
	AppName string
	Code    string
	Minutes int
}

var verificationTemplate = template.Must(template.New("verify").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px;">
  <div style="max-width: 560px; margin: 0 auto; background: #fff; padding: 28px; border-radius: 8px;">
    <h2 style="color: #222;">Confirm your {{.AppName}} account</h2>
    <p>Enter this code to finish signing up:</p>
    <p style="font-size: 34px; font-weight: bold; letter-spacing: 8px; text-align: center;">{{.Code}}</p>
    <p>The code expires in {{.Minutes}} minutes. If you did not create an account you can ignore this email.</p>
  </div>
</body>
</html>`))

// LogMailer writes codes to the log. It stands in for SMTP in development.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerificationCode(
	ctx context.Context,
	to, code string,
	ttl time.Duration,
) error {
	m.logger.InfoContext(ctx, "verification code issued",
		"to", to,
		"code", code,
		"expires_in", ttl,
	)
	return nil
}
