package infra

import (
	"fmt"
	"net/smtp"

	"github.com/clehider/BazarMundoVictor/internal/config"

	"github.com/jordan-wright/email"
)

// Mailer wraps SMTP configuration for sending notification emails.
type Mailer struct {
	host       string
	port       int
	user       string
	password   string
	addr       string
	alertEmail string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:       cfg.SMTPHost,
		port:       cfg.SMTPPort,
		user:       cfg.SMTPUser,
		password:   cfg.SMTPPassword,
		addr:       fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		alertEmail: cfg.AlertEmail,
	}
}

// SendAlertaStock mails a low-stock warning to the configured alert address.
func (m *Mailer) SendAlertaStock(producto string, stock int) error {
	if m.alertEmail == "" {
		return nil
	}
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{m.alertEmail}
	e.Subject = fmt.Sprintf("Stock bajo: %s", producto)
	e.Text = []byte(fmt.Sprintf(
		"El producto %q bajó a %d unidades, igual o por debajo de su stock mínimo.\n"+
			"Considere reponer inventario.\n", producto, stock))

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}

// SendTicket mails a PDF receipt.
func (m *Mailer) SendTicket(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return e.Send(m.addr, auth)
}
