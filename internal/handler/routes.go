package handler

import (
	"github.com/dafibh/budgetly/budgetly-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups every HTTP handler served by the API
type Handlers struct {
	Auth        *AuthHandler
	Profile     *ProfileHandler
	Transaction *TransactionHandler
	Budget      *BudgetHandler
	Dashboard   *DashboardHandler
	Time        *TimeHandler
	WebSocket   *WebSocketHandler
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	e.GET("/health", Health)
	if h.WebSocket != nil {
		e.GET("/ws", h.WebSocket.HandleWS)
	}

	// API version 1
	api := e.Group("/api/v1")

	// Server time (public)
	api.GET("/time", h.Time.GetTime)

	// Auth routes; the callback runs before the workspace exists
	auth := api.Group("/auth")
	auth.POST("/callback", h.Auth.Callback, authMiddleware.Authenticate(false))
	auth.GET("/me", h.Auth.Me, authMiddleware.Authenticate(true))
	auth.POST("/logout", h.Auth.Logout, authMiddleware.Authenticate(false))

	protected := []echo.MiddlewareFunc{authMiddleware.Authenticate(true)}
	if rateLimiter != nil {
		protected = append(protected, middleware.RateLimitMiddleware(rateLimiter))
	}

	// Profile routes (protected)
	profile := api.Group("/profile", protected...)
	profile.GET("", h.Profile.GetProfile)
	profile.PUT("", h.Profile.UpdateProfile)

	// Transaction routes (protected)
	transactions := api.Group("/transactions", protected...)
	transactions.POST("", h.Transaction.CreateTransaction)
	transactions.GET("", h.Transaction.GetTransactions)
	transactions.GET("/:id", h.Transaction.GetTransaction)
	transactions.PUT("/:id", h.Transaction.UpdateTransaction)
	transactions.DELETE("/:id", h.Transaction.DeleteTransaction)

	// Budget routes (protected)
	budgets := api.Group("/budgets", protected...)
	budgets.POST("", h.Budget.CreateBudget)
	budgets.GET("", h.Budget.ListBudgets)
	budgets.GET("/:id", h.Budget.GetBudget)
	budgets.PUT("/:id", h.Budget.UpdateBudget)
	budgets.DELETE("/:id", h.Budget.DeleteBudget)

	// Dashboard routes (protected)
	dashboard := api.Group("/dashboard", protected...)
	dashboard.GET("/summary", h.Dashboard.GetSummary)
	dashboard.GET("/trend", h.Dashboard.GetSpendingTrend)
	dashboard.GET("/calendar", h.Dashboard.GetCalendar)
}
