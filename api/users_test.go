package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/td-airways/flightdesk/internal/auth"
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/service/users"
)

type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) SignUp(ctx context.Context, input users.SignUpInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) SendVerification(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockUserUseCase) VerifyEmail(ctx context.Context, email, code string) error {
	args := m.Called(ctx, email, code)
	return args.Error(0)
}

func (m *MockUserUseCase) SignIn(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

func (m *MockUserUseCase) UpdateDetails(ctx context.Context, userID string, upd domain.UserUpdate) (*domain.User, string, error) {
	args := m.Called(ctx, userID, upd)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.User), args.String(1), args.Error(2)
}

func (m *MockUserUseCase) DeleteAccount(ctx context.Context, userID, password string) error {
	args := m.Called(ctx, userID, password)
	return args.Error(0)
}

func (m *MockUserUseCase) ResetPassword(ctx context.Context, userID, oldPassword, newPassword, confirmPassword string) error {
	args := m.Called(ctx, userID, oldPassword, newPassword, confirmPassword)
	return args.Error(0)
}

func (m *MockUserUseCase) ForgetPassword(ctx context.Context, email, code, newPassword string) error {
	args := m.Called(ctx, email, code, newPassword)
	return args.Error(0)
}

func (m *MockUserUseCase) RegisterAdmin(ctx context.Context, input users.StaffInput, key string) (*domain.User, error) {
	args := m.Called(ctx, input, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) RegisterStaff(ctx context.Context, input users.StaffInput) (*domain.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserUseCase) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserUseCase) GetUser(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newUserRouter(service users.UserUseCase, claims *auth.Claims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if claims != nil {
		router.Use(func(c *gin.Context) {
			c.Set("claims", claims)
			c.Next()
		})
	}
	handler := NewUserHandler(service)
	group := router.Group("/")
	handler.Register(group)
	handler.RegisterProtected(group)
	NewAdminHandler(service).RegisterPublic(group)
	return router
}

func putJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, jsonBody(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestForgetPassword_Success(t *testing.T) {
	service := &MockUserUseCase{}
	router := newUserRouter(service, nil)

	service.On("ForgetPassword", mock.Anything, "jane@example.com", "123456", "new-pass").Return(nil)

	rec := putJSON(router, "/forget_password", gin.H{
		"user_email":         "jane@example.com",
		"otp":                "123456",
		"enter_new_password": "new-pass",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password changed successfully.", decodeBody(t, rec)["message"])
}

func TestForgetPassword_InvalidCode(t *testing.T) {
	service := &MockUserUseCase{}
	router := newUserRouter(service, nil)

	service.On("ForgetPassword", mock.Anything, "jane@example.com", "000000", "new-pass").
		Return(domain.ErrInvalidCode)

	rec := putJSON(router, "/forget_password", gin.H{
		"user_email":         "jane@example.com",
		"otp":                "000000",
		"enter_new_password": "new-pass",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateDetails_ReturnsFreshToken(t *testing.T) {
	service := &MockUserUseCase{}
	router := newUserRouter(service, testClaims())

	updated := &domain.User{ID: "user-1", PhoneNo: "0987654321"}
	service.On("UpdateDetails", mock.Anything, "user-1", mock.MatchedBy(func(upd domain.UserUpdate) bool {
		return upd.PhoneNo != nil && *upd.PhoneNo == "0987654321"
	})).Return(updated, "fresh-token", nil)

	req := httptest.NewRequest(http.MethodPatch, "/update_details", jsonBody(gin.H{"phone_no": "0987654321"}))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "User updated successfully.", body["message"])
	assert.Equal(t, "fresh-token", body["access_token"])
}

func TestDeleteAccount_RequiresPassword(t *testing.T) {
	service := &MockUserUseCase{}
	router := newUserRouter(service, testClaims())

	req := httptest.NewRequest(http.MethodDelete, "/delete_account", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAccount_Success(t *testing.T) {
	service := &MockUserUseCase{}
	router := newUserRouter(service, testClaims())

	service.On("DeleteAccount", mock.Anything, "user-1", "s3cret-pass").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/delete_account?password=s3cret-pass", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "User deleted successfully.", decodeBody(t, rec)["message"])
}

func TestResetPassword_Success(t *testing.T) {
	service := &MockUserUseCase{}
	router := newUserRouter(service, testClaims())

	service.On("ResetPassword", mock.Anything, "user-1", "old-pass", "new-pass", "new-pass").Return(nil)

	rec := putJSON(router, "/reset_password", gin.H{
		"enter_old_password":    "old-pass",
		"enter_new_password":    "new-pass",
		"re_enter_new_password": "new-pass",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset successfully.", decodeBody(t, rec)["message"])
}

func TestRegisterAdmin_WrongKeyForbidden(t *testing.T) {
	service := &MockUserUseCase{}
	router := newUserRouter(service, nil)

	service.On("RegisterAdmin", mock.Anything, mock.Anything, "wrong").Return(nil, domain.ErrForbidden)

	rec := postJSON(router, "/register_admin", gin.H{
		"first_name": "Big",
		"last_name":  "Boss",
		"email":      "boss@example.com",
		"password":   "s3cret-pass",
		"key":        "wrong",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegisterAdmin_Created(t *testing.T) {
	service := &MockUserUseCase{}
	router := newUserRouter(service, nil)

	admin := &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	service.On("RegisterAdmin", mock.Anything, mock.MatchedBy(func(in users.StaffInput) bool {
		return in.Email == "boss@example.com"
	}), "td").Return(admin, nil)

	rec := postJSON(router, "/register_admin", gin.H{
		"first_name": "Big",
		"last_name":  "Boss",
		"email":      "boss@example.com",
		"password":   "s3cret-pass",
		"key":        "td",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Admin registered successfully.", decodeBody(t, rec)["message"])
}
