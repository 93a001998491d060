package email

import (
	"fmt"
	"log"

	"fitcoach/backend/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer sends transactional mail. Failures are logged, not returned: a
// broken SMTP relay must never fail a signup or a payment approval.
type Mailer interface {
	SendOTP(to, name, otp string)
	SendPaymentApproved(to, name string, endDate string)
	SendPaymentRejected(to, name, reason string)
}

type smtpMailer struct {
	dialer  *gomail.Dialer
	from    string
	enabled bool
}

// NewMailer creates a Mailer from SMTP configuration. When cfg.Enabled is
// false every send is a no-op.
func NewMailer(cfg config.EmailConfig) Mailer {
	return &smtpMailer{
		dialer:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		enabled: cfg.Enabled,
	}
}

func (m *smtpMailer) send(to, subject, htmlBody string) {
	if !m.enabled {
		log.Printf("INFO: email disabled, skipping %q to %s", subject, to)
		return
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	// Fire and forget; callers must not block on the relay.
	go func() {
		if err := m.dialer.DialAndSend(msg); err != nil {
			log.Printf("ERROR: failed to send %q to %s: %v", subject, to, err)
		}
	}()
}

func (m *smtpMailer) SendOTP(to, name, otp string) {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 560px; margin: auto;">
			<h2>Verify your email</h2>
			<p>Hi %s,</p>
			<p>Your verification code is:</p>
			<p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">%s</p>
			<p>The code expires in 10 minutes. If you did not sign up, ignore this email.</p>
		</div>`, name, otp)
	m.send(to, "Your verification code", body)
}

func (m *smtpMailer) SendPaymentApproved(to, name, endDate string) {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 560px; margin: auto;">
			<h2>Payment approved</h2>
			<p>Hi %s,</p>
			<p>Your payment was approved and your premium subscription is active until <strong>%s</strong>.</p>
			<p>Enjoy your training!</p>
		</div>`, name, endDate)
	m.send(to, "Payment approved", body)
}

func (m *smtpMailer) SendPaymentRejected(to, name, reason string) {
	if reason == "" {
		reason = "The screenshot could not be verified."
	}
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 560px; margin: auto;">
			<h2>Payment rejected</h2>
			<p>Hi %s,</p>
			<p>Your payment submission was rejected: %s</p>
			<p>Please submit a new payment with a valid transfer screenshot.</p>
		</div>`, name, reason)
	m.send(to, "Payment rejected", body)
}
