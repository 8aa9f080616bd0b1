package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/middleware"
	"github.com/td-airways/flightdesk/internal/service/users"
)

// AdminHandler serves staff provisioning and the user directory.
type AdminHandler struct {
	service users.UserUseCase
}

func NewAdminHandler(service users.UserUseCase) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterPublic wires the key-guarded admin bootstrap route.
func (h *AdminHandler) RegisterPublic(router *gin.RouterGroup) {
	router.POST("/register_admin", h.registerAdmin)
}

// RegisterStaff wires the staff routes. The router group is expected to carry
// the admin/manager role middleware; the user directory listing is tightened
// to admins only.
func (h *AdminHandler) RegisterStaff(router *gin.RouterGroup) {
	router.POST("/add_new_staff", h.addNewStaff)
	router.GET("/get_all_users_data", middleware.RequireRole(domain.RoleAdmin), h.getAllUsersData)
	router.GET("/get_single_user_data/:user_email", h.getSingleUserData)
}

type registerAdminRequest struct {
	users.StaffInput
	Key string `json:"key" binding:"required"`
}

func (h *AdminHandler) registerAdmin(c *gin.Context) {
	var req registerAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, err := h.service.RegisterAdmin(c.Request.Context(), req.StaffInput, req.Key)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin registered successfully.",
		"user_id": admin.ID,
	})
}

func (h *AdminHandler) addNewStaff(c *gin.Context) {
	var req users.StaffInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff, err := h.service.RegisterStaff(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Staff registered successfully.",
		"user_id": staff.ID,
	})
}

func (h *AdminHandler) getAllUsersData(c *gin.Context) {
	all, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

func (h *AdminHandler) getSingleUserData(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("user_email"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
