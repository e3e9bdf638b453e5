package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdkarim/traveldesk/api"
	"github.com/mdkarim/traveldesk/config"
	"github.com/mdkarim/traveldesk/internal/desktop"
	"github.com/mdkarim/traveldesk/internal/service/auth"
	"github.com/mdkarim/traveldesk/internal/service/booking"
	"github.com/mdkarim/traveldesk/internal/service/inventory"
	"github.com/mdkarim/traveldesk/internal/service/reports"
	"github.com/mdkarim/traveldesk/internal/service/settings"
	"go.uber.org/zap"
)

type Services struct {
	Auth      auth.AuthUseCase
	Inventory inventory.InventoryUseCase
	Booking   booking.BookingUseCase
	Reports   reports.ReportUseCase
	Settings  settings.SettingsUseCase
	Desktop   *desktop.Registry
}

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, services Services, logger *zap.Logger) error {
	router := newRouter(services)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.ListenAndServe() }()
	logger.Info("http server started", zap.String("address", cfg.HTTP.Address))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(services Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	authHandler := api.NewAuthHandler(services.Auth, services.Desktop)

	public := router.Group("/api/v1/auth")
	authHandler.RegisterPublic(public)

	protected := router.Group("/api/v1")
	protected.Use(api.RequireAuth(services.Auth))

	authHandler.Register(protected.Group("/auth"))
	api.NewUserHandler(services.Auth).Register(protected.Group("/users"))
	api.NewTicketHandler(services.Inventory).Register(protected.Group("/tickets"))
	api.NewBookingHandler(services.Booking).Register(protected.Group("/bookings"))
	api.NewReportHandler(services.Reports).Register(protected.Group("/reports"))
	api.NewSettingsHandler(services.Settings).Register(protected.Group("/settings"))
	api.NewDesktopHandler(services.Desktop).Register(protected.Group("/desktop"))

	return router
}
