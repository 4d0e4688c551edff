package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iacastillo90/petcare-booking/internal/clock"
	domain "github.com/iacastillo90/petcare-booking/internal/domain/booking"
	"github.com/iacastillo90/petcare-booking/internal/handlers"
	"github.com/iacastillo90/petcare-booking/internal/middleware"
	usecase "github.com/iacastillo90/petcare-booking/internal/usecase/booking"
)

type Dependencies struct {
	JWTSecret   string
	CORSOrigins []string

	Lifecycle   *usecase.Lifecycle
	Permissions domain.Permissions
	Clock       clock.Clock
	Log         *zap.Logger

	// Optional.
	AuditReader handlers.AuditReader
	Health      map[string]handlers.Pinger
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.Recovery(deps.Log),
		middleware.RequestLogger(deps.Log),
		middleware.CORSMiddleware(deps.CORSOrigins),
	)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(deps.Lifecycle, deps.Clock)
	healthHandler := handlers.NewHealthHandler(deps.Health)

	// ======================================================
	// 🔓 PUBLIC
	// ======================================================
	r.GET("/health", healthHandler.Health)

	// ======================================================
	// 🔐 AUTHENTICATED
	// ======================================================
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(deps.JWTSecret))
	{
		api.POST("/bookings", bookingHandler.Create)
		api.GET("/bookings/:id", bookingHandler.Get)
		api.PATCH("/bookings/:id/status", bookingHandler.Transition)

		api.GET("/me/bookings", bookingHandler.ListMine)

		api.GET("/sitters/:id/bookings", bookingHandler.ListForSitter)
		api.GET("/sitters/:id/schedule", bookingHandler.Schedule)

		if deps.AuditReader != nil {
			auditLogsHandler := handlers.NewAuditLogsHandler(deps.AuditReader, deps.Permissions)
			api.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
