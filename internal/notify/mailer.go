// Package notify handles intrusion alerting: persisting snapshot pairs and
// dispatching the notification email.
package notify

import (
	"context"
	"fmt"
	"io"

	gomail "gopkg.in/gomail.v2"
)

// SMTPConfig holds mail delivery settings.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	To       string `mapstructure:"to"`
}

const alertBody = `
<html>
    <body>
        <h4 style="color: red;">A possible intruder was detected.</h4>
        <p>Please review the snapshot below.</p>
        <img src="cid:snapshot.jpg" alt="Snapshot">
    </body>
</html>
`

// Mailer sends intrusion alert emails with the snapshot inlined.
type Mailer struct {
	cfg  SMTPConfig
	send func(*gomail.Message) error
}

// NewMailer creates a Mailer for the given SMTP account.
func NewMailer(cfg SMTPConfig) *Mailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &Mailer{
		cfg:  cfg,
		send: func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}
}

// Send dispatches one alert email carrying the JPEG snapshot. Best-effort
// from the caller's perspective; the error is for logging only.
func (m *Mailer) Send(ctx context.Context, image []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", m.cfg.To)
	msg.SetHeader("Subject", "Intruder Detection Alert")
	msg.SetBody("text/html", alertBody)
	msg.Embed("snapshot.jpg", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(image)
		return err
	}))

	if err := m.send(msg); err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	return nil
}
