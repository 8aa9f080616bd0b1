package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/td-airways/flightdesk/config"
	"github.com/td-airways/flightdesk/internal/kafka"
)

type Sender struct {
	cfg config.SMTPConfig
}

func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{cfg: cfg}
}

func (s *Sender) Send(to, subject, body string) error {
	if s.cfg.From == "" || s.cfg.Host == "" {
		return fmt.Errorf("email configuration not set")
	}

	headers := []string{
		fmt.Sprintf("From: TD Airways <%s>", s.cfg.From),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
	}
	message := strings.Join(headers, "\r\n") + "\r\n\r\n" + body

	auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(message))
}

// SendBookingEvent is used by the worker to notify customers about booking
// lifecycle transitions consumed from Kafka.
func (s *Sender) SendBookingEvent(event kafka.BookingEvent) error {
	var subject, body string
	switch event.Type {
	case "booking_confirmed":
		subject = "Booking confirmed"
		body = fmt.Sprintf("Your booking %s on flight %s (%s %s) is confirmed. Amount paid: %.2f.",
			event.BookingID, event.FlightName, event.JourneyDate, event.JourneyTime, event.BillAmount)
	case "booking_cancelled":
		subject = "Booking cancelled"
		body = fmt.Sprintf("Your booking %s has been cancelled.", event.BookingID)
	case "booking_expired":
		subject = "Booking expired"
		body = fmt.Sprintf("Your booking %s expired before payment was completed.", event.BookingID)
	default:
		subject = "Booking update"
		body = fmt.Sprintf("Your booking %s is now %s.", event.BookingID, event.Status)
	}
	return s.Send(event.Email, subject, body)
}

// PaymentCodeBody formats the payment confirmation email.
func PaymentCodeBody(amount float64, code string) string {
	return fmt.Sprintf("Your bill amount is %.2f. OTP: %s", amount, code)
}

// VerificationCodeBody formats the account verification email.
func VerificationCodeBody(code string) string {
	return fmt.Sprintf("Your verification OTP: %s", code)
}
