package router

import (
	"github.com/gin-gonic/gin"

	"github.com/auctionhouse/backend/internal/interfaces/http/handler"
	"github.com/auctionhouse/backend/internal/interfaces/http/middleware"
)

// Handlers bundles every HTTP handler mounted by the router
type Handlers struct {
	Auth    *handler.AuthHandler
	Auction *handler.AuctionHandler
	Payment *handler.PaymentHandler
	Admin   *handler.AdminHandler
	System  *handler.SystemHandler
}

// Router registers API routes on a gin engine
type Router struct {
	engine   *gin.Engine
	handlers Handlers
	jwtCfg   middleware.JWTMiddlewareConfig
}

// NewRouter creates a router over the given engine
func NewRouter(engine *gin.Engine, handlers Handlers, jwtCfg middleware.JWTMiddlewareConfig) *Router {
	return &Router{engine: engine, handlers: handlers, jwtCfg: jwtCfg}
}

// Setup mounts all routes. Routes fall into three tiers: public
// (optionally authenticated, since listing visibility varies by
// viewer), authenticated, and admin.
func (r *Router) Setup() {
	r.engine.GET("/health", r.handlers.System.Health)
	r.engine.GET("/ready", r.handlers.System.Ready)

	api := r.engine.Group("/api/v1")

	requireAuth := middleware.JWTAuthMiddlewareWithConfig(r.jwtCfg)
	optionalAuth := middleware.OptionalJWTAuthMiddleware(r.jwtCfg.JWTService)

	public := api.Group("")
	public.Use(optionalAuth)
	{
		public.POST("/auth/register", r.handlers.Auth.Register)
		public.POST("/auth/login", r.handlers.Auth.Login)
		public.POST("/auth/refresh", r.handlers.Auth.Refresh)

		public.GET("/auctions", r.handlers.Auction.List)
		public.GET("/auctions/:id", r.handlers.Auction.Get)
	}

	authed := api.Group("")
	authed.Use(requireAuth)
	{
		authed.POST("/auth/logout", r.handlers.Auth.Logout)
		authed.POST("/auth/logout-all", r.handlers.Auth.LogoutAll)
		authed.GET("/auth/me", r.handlers.Auth.Me)

		authed.GET("/auctions/mine", r.handlers.Auction.ListMine)
		authed.GET("/auctions/won", r.handlers.Auction.ListWon)
		authed.GET("/auctions/participated", r.handlers.Auction.ListParticipated)
		authed.POST("/auctions", r.handlers.Auction.Create)
		authed.POST("/auctions/media/uploads", r.handlers.Auction.PrepareMediaUpload)
		authed.DELETE("/auctions/:id", r.handlers.Auction.Delete)
		authed.POST("/auctions/:id/bids", r.handlers.Auction.PlaceBid)
		authed.GET("/auctions/:id/winner-payment", r.handlers.Payment.WinnerStatus)

		authed.POST("/payments", r.handlers.Payment.Submit)
		authed.GET("/payments/mine", r.handlers.Payment.ListMine)
		authed.POST("/payments/screenshots/uploads", r.handlers.Payment.PrepareScreenshotUpload)
		authed.GET("/payments/:id", r.handlers.Payment.Get)
	}

	admin := api.Group("/admin")
	admin.Use(requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/auctions/pending", r.handlers.Admin.ListPendingApproval)
		admin.POST("/auctions/:id/approve", r.handlers.Admin.ApproveAuction)
		admin.POST("/auctions/:id/reject", r.handlers.Admin.RejectAuction)
		admin.POST("/auctions/:id/stop", r.handlers.Admin.StopAuction)
		admin.POST("/auctions/:id/continue", r.handlers.Admin.ContinueAuction)
		admin.GET("/auctions/:id/payments/summary", r.handlers.Admin.AuctionPaymentSummary)

		admin.GET("/payments", r.handlers.Admin.ListPayments)
		admin.POST("/payments/:id/approve", r.handlers.Admin.ApprovePayment)
		admin.POST("/payments/:id/reject", r.handlers.Admin.RejectPayment)
	}
}
