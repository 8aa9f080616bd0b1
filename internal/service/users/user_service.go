package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

type UserUseCase interface {
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, error)
	SendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, email, code string) error
	SignIn(ctx context.Context, email, password string) (string, error)
	UpdateDetails(ctx context.Context, userID string, upd domain.UserUpdate) (*domain.User, string, error)
	DeleteAccount(ctx context.Context, userID, password string) error
	ResetPassword(ctx context.Context, userID, oldPassword, newPassword, confirmPassword string) error
	ForgetPassword(ctx context.Context, email, code, newPassword string) error
	RegisterAdmin(ctx context.Context, input StaffInput, key string) (*domain.User, error)
	RegisterStaff(ctx context.Context, input StaffInput) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, email string) (*domain.User, error)
}

// Gate issues and checks the signup and password-recovery codes.
type Gate interface {
	IssueSignupCode(ctx context.Context, email string) error
	Verify(ctx context.Context, ref, email, code string) error
}

type TokenIssuer interface {
	Issue(user *domain.User) (string, error)
}

type SignUpInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	PhoneNo   string `json:"phone_no"`
}

// StaffInput registers an admin or manager account. Staff accounts are
// created verified; they never go through the email challenge.
type StaffInput struct {
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	PhoneNo   string      `json:"phone_no"`
	Role      domain.Role `json:"role"`
}

type UserService struct {
	repo     repository.UserRepository
	gate     Gate
	tokens   TokenIssuer
	adminKey string
}

type UserServiceOption func(*UserService)

// WithAdminKey sets the shared secret required to bootstrap the first admin
// account through the public endpoint.
func WithAdminKey(key string) UserServiceOption {
	return func(s *UserService) {
		s.adminKey = key
	}
}

func NewUserService(repo repository.UserRepository, gate Gate, tokens TokenIssuer, opts ...UserServiceOption) *UserService {
	service := &UserService{repo: repo, gate: gate, tokens: tokens}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// SignUp creates an unverified account and dispatches a verification code.
func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	if err := s.checkEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		PhoneNo:      input.PhoneNo,
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.gate.IssueSignupCode(ctx, user.Email); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) SendVerification(ctx context.Context, email string) error {
	return s.gate.IssueSignupCode(ctx, email)
}

// VerifyEmail consumes the signup code and marks the account verified.
func (s *UserService) VerifyEmail(ctx context.Context, email, code string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.IsActive || user.IsVerified {
		return fmt.Errorf("%w: user not found or already verified", domain.ErrPrecondition)
	}

	if err := s.gate.Verify(ctx, user.ID, email, code); err != nil {
		return err
	}
	return s.repo.MarkVerified(ctx, user.ID)
}

// SignIn checks the credentials of an active, verified account and returns a
// signed token carrying the contact snapshot. Staff accounts sign in here
// too; the role rides along in the token.
func (s *UserService) SignIn(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !user.IsActive || !user.IsVerified {
		return "", fmt.Errorf("%w: account is not active and verified", domain.ErrPrecondition)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%w: password is incorrect", domain.ErrUnauthorized)
	}

	return s.tokens.Issue(user)
}

// UpdateDetails applies a typed partial profile update and re-issues the
// token, since the contact snapshot it carries may have changed.
func (s *UserService) UpdateDetails(ctx context.Context, userID string, upd domain.UserUpdate) (*domain.User, string, error) {
	if upd.Empty() {
		return nil, "", fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	user, err := s.activeVerified(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if upd.Email != nil && *upd.Email != user.Email {
		if err := s.checkEmailFree(ctx, *upd.Email); err != nil {
			return nil, "", err
		}
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, "", err
		}
		hashed := string(hash)
		upd.Password = &hashed
	}

	updated, err := s.repo.Update(ctx, userID, upd)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(updated)
	if err != nil {
		return nil, "", err
	}
	return updated, token, nil
}

// DeleteAccount deactivates the account after re-checking the password. The
// row is kept, so the email cannot be re-registered.
func (s *UserService) DeleteAccount(ctx context.Context, userID, password string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return fmt.Errorf("%w: user already deleted", domain.ErrPrecondition)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("%w: password is incorrect", domain.ErrUnauthorized)
	}
	return s.repo.Deactivate(ctx, userID)
}

// ResetPassword changes the password of a signed-in user after checking the
// current one.
func (s *UserService) ResetPassword(ctx context.Context, userID, oldPassword, newPassword, confirmPassword string) error {
	user, err := s.activeVerified(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return fmt.Errorf("%w: password is incorrect", domain.ErrUnauthorized)
	}
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrValidation)
	}
	if newPassword != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, user.ID, string(hash))
}

// ForgetPassword recovers an account with an emailed one-time code instead of
// the current password.
func (s *UserService) ForgetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.IsActive || !user.IsVerified {
		return fmt.Errorf("%w: account is not active and verified", domain.ErrPrecondition)
	}
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrValidation)
	}

	if err := s.gate.Verify(ctx, user.ID, email, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, user.ID, string(hash))
}

// RegisterAdmin bootstraps an admin account through the public endpoint,
// guarded by the shared admin key.
func (s *UserService) RegisterAdmin(ctx context.Context, input StaffInput, key string) (*domain.User, error) {
	if s.adminKey == "" || key != s.adminKey {
		return nil, fmt.Errorf("%w: admin key does not match", domain.ErrForbidden)
	}
	input.Role = domain.RoleAdmin
	return s.createStaff(ctx, input)
}

// RegisterStaff creates an admin or manager account. Role checks on the
// caller are enforced by the route middleware.
func (s *UserService) RegisterStaff(ctx context.Context, input StaffInput) (*domain.User, error) {
	if input.Role != domain.RoleAdmin && input.Role != domain.RoleManager {
		return nil, fmt.Errorf("%w: role must be admin or manager", domain.ErrValidation)
	}
	return s.createStaff(ctx, input)
}

func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("%w: no users found", domain.ErrNotFound)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.IsVerified {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	return user, nil
}

func (s *UserService) createStaff(ctx context.Context, input StaffInput) (*domain.User, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Password) == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if err := s.checkEmailFree(ctx, input.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		PhoneNo:      input.PhoneNo,
		Role:         input.Role,
		IsActive:     true,
		IsVerified:   true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) checkEmailFree(ctx context.Context, email string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if existing != nil {
		if existing.IsActive {
			return fmt.Errorf("%w: email already exists", domain.ErrValidation)
		}
		return fmt.Errorf("%w: email already exists but this account is deleted", domain.ErrValidation)
	}
	return nil
}

func (s *UserService) activeVerified(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.IsVerified {
		return nil, fmt.Errorf("%w: account is not active and verified", domain.ErrPrecondition)
	}
	return user, nil
}

var _ UserUseCase = (*UserService)(nil)
