package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/middleware"
	"github.com/td-airways/flightdesk/internal/service/users"
)

type UserHandler struct {
	service users.UserUseCase
}

func NewUserHandler(service users.UserUseCase) *UserHandler {
	return &UserHandler{service: service}
}

// Register wires the routes that work without a token: account creation,
// verification and password recovery.
func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.POST("/sign_up", h.signUp)
	router.POST("/generate_otp", h.generateOTP)
	router.GET("/verify_otp", h.verifyOTP)
	router.GET("/sign_in", h.signIn)
	router.POST("/forget_password_generate_otp", h.generateOTP)
	router.PUT("/forget_password", h.forgetPassword)
}

// RegisterProtected wires the profile routes. The router group is expected to
// carry the authentication middleware.
func (h *UserHandler) RegisterProtected(router *gin.RouterGroup) {
	router.PATCH("/update_details", h.updateDetails)
	router.DELETE("/delete_account", h.deleteAccount)
	router.PUT("/reset_password", h.resetPassword)
}

func (h *UserHandler) signUp(c *gin.Context) {
	var req users.SignUpInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Please proceed with verification.",
	})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *UserHandler) generateOTP(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.SendVerification(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP generated successfully."})
}

func (h *UserHandler) verifyOTP(c *gin.Context) {
	email := c.Query("email")
	otp := c.Query("otp")
	if email == "" || otp == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and otp are required"})
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), email, otp); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "OTP verified successfully."})
}

func (h *UserHandler) signIn(c *gin.Context) {
	email := c.Query("email")
	password := c.Query("password")
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, err := h.service.SignIn(c.Request.Context(), email, password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful.",
		"access_token": token,
	})
}

func (h *UserHandler) updateDetails(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
		return
	}

	var req domain.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, token, err := h.service.UpdateDetails(c.Request.Context(), claims.UserID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "User updated successfully.",
		"user":         updated,
		"access_token": token,
	})
}

func (h *UserHandler) deleteAccount(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
		return
	}

	password := c.Query("password")
	if password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	if err := h.service.DeleteAccount(c.Request.Context(), claims.UserID, password); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully."})
}

type resetPasswordRequest struct {
	OldPassword        string `json:"enter_old_password" binding:"required"`
	NewPassword        string `json:"enter_new_password" binding:"required"`
	ConfirmNewPassword string `json:"re_enter_new_password" binding:"required"`
}

func (h *UserHandler) resetPassword(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization token required"})
		return
	}

	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), claims.UserID,
		req.OldPassword, req.NewPassword, req.ConfirmNewPassword); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully."})
}

type forgetPasswordRequest struct {
	Email       string `json:"user_email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"enter_new_password" binding:"required"`
}

func (h *UserHandler) forgetPassword(c *gin.Context) {
	var req forgetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.ForgetPassword(c.Request.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully."})
}
