package mailer

import (
	"context"
	"fmt"

	"esim-service/internal/domain"

	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Mailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

func New(cfg Config) *Mailer {
	return &Mailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// SendEsimDelivery emails the activation details for a fulfilled order. The
// caller must only invoke this after the order is durably recorded as
// fulfilled.
func (m *Mailer) SendEsimDelivery(ctx context.Context, email string, d domain.EsimDelivery) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", fmt.Sprintf("Your eSIM for %s is ready", d.PackageName))
	msg.SetBody("text/html", deliveryBody(d))

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func deliveryBody(d domain.EsimDelivery) string {
	data := fmt.Sprintf("%g GB", d.DataAmountGB)
	if d.DataAmountGB == 0 {
		data = "Unlimited"
	}
	return fmt.Sprintf(`<h2>Your eSIM is ready</h2>
<p>Package: %s (%s, %d days)</p>
<p>Activation code: <b>%s</b></p>
<p>Scan this in your phone settings to install the eSIM:</p>
<pre>%s</pre>`,
		d.PackageName, data, d.ValidityDays, d.ActivationCode, d.QRPayload)
}
