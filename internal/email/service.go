package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/connectday/booking-api/internal/model"
)

// Service sends booking notifications. Delivery is best-effort: the booking
// service logs failures and never surfaces them to the caller.
type Service interface {
	SendAppointmentCreated(ctx context.Context, to string, apt *model.Appointment) error
	SendAppointmentCancelled(ctx context.Context, to string, apt *model.Appointment) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg Config) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendAppointmentCreated(ctx context.Context, to string, apt *model.Appointment) error {
	subject := fmt.Sprintf("Appointment confirmed: %s at %s", apt.Date, apt.StartTime)
	body := fmt.Sprintf(
		"An appointment between %s and %s has been confirmed for %s at %s.",
		apt.PartnerName, apt.EntrepreneurName, apt.Date, apt.StartTime,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) SendAppointmentCancelled(ctx context.Context, to string, apt *model.Appointment) error {
	subject := fmt.Sprintf("Appointment cancelled: %s at %s", apt.Date, apt.StartTime)
	body := fmt.Sprintf(
		"The appointment between %s and %s on %s at %s has been cancelled.",
		apt.PartnerName, apt.EntrepreneurName, apt.Date, apt.StartTime,
	)
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

type noopService struct{}

// NewNoop returns a mailer that silently drops everything. Used when SMTP is
// not configured.
func NewNoop() Service {
	return noopService{}
}

func (noopService) SendAppointmentCreated(context.Context, string, *model.Appointment) error {
	return nil
}

func (noopService) SendAppointmentCancelled(context.Context, string, *model.Appointment) error {
	return nil
}
