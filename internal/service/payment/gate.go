package payment

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/email"
	"github.com/td-airways/flightdesk/internal/repository"
)

// CodeStore keeps one-time codes scoped to a (ref, email) pair. Ref is the
// booking id for payment codes and the user id for signup verification, so
// two concurrent flows for the same email cannot cross-validate.
type CodeStore interface {
	StoreCode(ctx context.Context, ref, email, code string, ttl time.Duration) error
	ConsumeCode(ctx context.Context, ref, email string) (string, error)
}

type Mailer interface {
	Send(to, subject, body string) error
}

// Gate issues and verifies single-use numeric codes dispatched over email.
type Gate struct {
	users  repository.UserRepository
	codes  CodeStore
	mailer Mailer
	ttl    time.Duration
}

func NewGate(users repository.UserRepository, codes CodeStore, mailer Mailer, ttl time.Duration) *Gate {
	return &Gate{users: users, codes: codes, mailer: mailer, ttl: ttl}
}

// IssuePaymentCode stores a fresh code for the booking and emails it together
// with the bill amount. Dispatch failure is a hard failure: the stored code is
// useless if the customer never receives it.
func (g *Gate) IssuePaymentCode(ctx context.Context, bookingID, emailAddr string, amount float64) error {
	user, err := g.activeUser(ctx, emailAddr)
	if err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %.2f", domain.ErrInvalidAmount, amount)
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := g.codes.StoreCode(ctx, bookingID, user.Email, code, g.ttl); err != nil {
		return fmt.Errorf("%w: store code: %v", domain.ErrDependency, err)
	}
	if err := g.mailer.Send(user.Email, "Payment OTP", email.PaymentCodeBody(amount, code)); err != nil {
		return fmt.Errorf("%w: send payment OTP: %v", domain.ErrDependency, err)
	}
	return nil
}

// IssueSignupCode emails an account verification code, scoped to the user id.
func (g *Gate) IssueSignupCode(ctx context.Context, emailAddr string) error {
	user, err := g.activeUser(ctx, emailAddr)
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return err
	}
	if err := g.codes.StoreCode(ctx, user.ID, user.Email, code, g.ttl); err != nil {
		return fmt.Errorf("%w: store code: %v", domain.ErrDependency, err)
	}
	if err := g.mailer.Send(user.Email, "Verification OTP", email.VerificationCodeBody(code)); err != nil {
		return fmt.Errorf("%w: send verification OTP: %v", domain.ErrDependency, err)
	}
	return nil
}

// Verify consumes the stored code for (ref, email). A code matches at most
// once; a second attempt with the same value fails.
func (g *Gate) Verify(ctx context.Context, ref, emailAddr, code string) error {
	stored, err := g.codes.ConsumeCode(ctx, ref, emailAddr)
	if err != nil {
		return fmt.Errorf("%w: consume code: %v", domain.ErrDependency, err)
	}
	if stored == "" || stored != code {
		return domain.ErrInvalidCode
	}
	return nil
}

func (g *Gate) activeUser(ctx context.Context, emailAddr string) (*domain.User, error) {
	user, err := g.users.GetByEmail(ctx, emailAddr)
	if err != nil || !user.IsActive {
		return nil, fmt.Errorf("%w: no active account for %s", domain.ErrRecipientNotFound, emailAddr)
	}
	return user, nil
}

// generateCode returns a 6-digit code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
