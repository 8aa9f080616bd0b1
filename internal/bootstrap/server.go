package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/td-airways/flightdesk/api"
	"github.com/td-airways/flightdesk/config"
	"github.com/td-airways/flightdesk/internal/auth"
	"github.com/td-airways/flightdesk/internal/domain"
	"github.com/td-airways/flightdesk/internal/middleware"
)

// Handlers groups the HTTP surface wired by Run.
type Handlers struct {
	Users    *api.UserHandler
	Admin    *api.AdminHandler
	Flights  *api.FlightHandler
	Bookings *api.BookingHandler
}

// NewRouter assembles the gin engine: public account routes, authenticated
// profile and booking routes, and role-gated staff routes.
func NewRouter(mgr *auth.Manager, h Handlers) *gin.Engine {
	router := gin.Default()

	public := router.Group("/")
	h.Users.Register(public)
	h.Admin.RegisterPublic(public)

	authed := router.Group("/", middleware.Authenticate(mgr))
	h.Users.RegisterProtected(authed)
	h.Bookings.Register(authed)

	staff := router.Group("/", middleware.Authenticate(mgr), middleware.RequireRole(domain.RoleAdmin, domain.RoleManager))
	h.Flights.Register(staff)
	h.Admin.RegisterStaff(staff)

	return router
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, mgr *auth.Manager, h Handlers) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(mgr, h),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
