// Package router wires the HTTP routes to their handlers.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pelada/matchday/internal/auth"
	"github.com/pelada/matchday/internal/handler"
	"github.com/pelada/matchday/internal/middleware"
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Match      *handler.MatchHandler
	Admission  *handler.AdmissionHandler
	Team       *handler.TeamHandler
	Settlement *handler.SettlementHandler
}

// Setup configures the gin engine with middleware and all routes.
func Setup(mode string, jwtManager *auth.JWTManager, h Handlers) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logging())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(jwtManager))

	authed.GET("/profile", h.Match.GetProfile)
	authed.PUT("/profile", h.Match.UpdateProfile)

	authed.POST("/matches", h.Match.Create)
	authed.GET("/matches/:id", h.Match.Get)

	// Admission state machine
	authed.POST("/matches/:id/requests", h.Admission.RequestEntry)
	authed.GET("/matches/:id/requests", h.Admission.List)
	authed.POST("/matches/:id/requests/:userId/approve", h.Admission.Approve)
	authed.POST("/matches/:id/requests/:userId/decline", h.Admission.Decline)
	authed.POST("/matches/:id/requests/:userId/cancel", h.Admission.Cancel)
	authed.GET("/matches/:id/roster", h.Admission.Roster)

	// Team generator screen
	authed.POST("/matches/:id/teams/generate", h.Team.Generate)
	authed.GET("/matches/:id/teams", h.Team.Get)

	// Financial screen
	authed.PUT("/matches/:id/expense", h.Settlement.SetExpense)
	authed.GET("/matches/:id/expense", h.Settlement.GetExpense)
	authed.GET("/matches/:id/payments", h.Settlement.ListPayments)
	authed.POST("/payments/:paymentId/toggle", h.Settlement.TogglePayment)

	return r
}
