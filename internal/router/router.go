package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rtagency/mocktest-backend/internal/config"
	"github.com/rtagency/mocktest-backend/internal/handler"
	"github.com/rtagency/mocktest-backend/internal/middleware"
	"github.com/rtagency/mocktest-backend/internal/response"
	"github.com/rtagency/mocktest-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Portal       *handler.PortalHandler
	Payment      *handler.PaymentHandler
	Result       *handler.ResultHandler
	AdminCatalog *handler.AdminCatalogHandler
	Setting      *handler.SettingHandler
	Issue        *handler.IssueHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiters for auth routes (30/min per IP) and payment routes
	// (10/min per IP, each order is an outbound gateway call).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)
	paymentLimiter := middleware.NewRateLimiter(10, time.Minute)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	// The catalog changes rarely, so browsing routes carry a short
	// client-side cache window.
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/settings", handlers.Setting.GetPublicSettings)

		catalog := publicAPI.Group("")
		catalog.Use(middleware.CacheControl(60))
		{
			catalog.GET("/packs", handlers.Portal.ListPacks)
			catalog.GET("/packs/:pack_id", handlers.Portal.GetPack)
		}
	}

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/admin/login", handlers.Auth.AdminLogin)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireUserJWT(authService), handlers.Auth.Logout)
		auth.POST("/change-password", middleware.RequireUserJWT(authService), handlers.Auth.ChangePassword)
		auth.GET("/me", middleware.RequireUserJWT(authService), handlers.Auth.GetProfile)
		auth.GET("/admin/me", middleware.RequireAdminJWT(authService), handlers.Auth.GetAdminProfile)
	}

	// ─── 2. User Group (JWT + Single Device) ───────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(
		middleware.RequireUserJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		// Pre-test gates and the attempt lifecycle
		userAPI.POST("/tests/:test_id/countdown", handlers.Portal.CompleteCountdown)
		userAPI.POST("/tests/:test_id/instructions", handlers.Portal.VisitInstructions)
		userAPI.POST("/tests/:test_id/attempt", handlers.Portal.StartAttempt)
		userAPI.GET("/tests/:test_id/paper", handlers.Portal.GetPaper)
		userAPI.GET("/tests/:test_id/attempt/state", handlers.Portal.GetAttemptState)
		userAPI.POST("/tests/:test_id/attempt/submit", handlers.Portal.SubmitAttempt)
		userAPI.GET("/tests/:test_id/result", handlers.Result.GetLatestForTest)

		// Payments
		payments := userAPI.Group("/payments")
		payments.Use(paymentLimiter.Middleware())
		{
			payments.POST("/orders", handlers.Payment.CreateOrder)
			payments.POST("/capture", handlers.Payment.CapturePayment)
			payments.GET("/purchases", handlers.Payment.ListPurchases)
		}

		// Question issue reports (service-side cooldown per user)
		userAPI.POST("/issues", handlers.Issue.ReportIssue)

		// Results and revision
		userAPI.GET("/results", handlers.Result.ListResults)
		userAPI.GET("/results/notebook", handlers.Result.GetNotebook)
		userAPI.GET("/results/:result_id", handlers.Result.GetResult)
		userAPI.GET("/results/:result_id/review", handlers.Result.GetReview)
	}

	// ─── 3. WebSocket Group (User WS Auth) ─────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireUserWSAuth(authService))
	{
		ws.GET("/tests/:test_id/stream", handlers.WS.AttemptStream)
	}

	// ─── 4. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.GET("/dashboard", handlers.AdminCatalog.GetDashboard)

		// Pack management
		adminAPI.GET("/packs", handlers.AdminCatalog.ListPacks)
		adminAPI.POST("/packs", handlers.AdminCatalog.CreatePack)
		adminAPI.PUT("/packs/:pack_id", handlers.AdminCatalog.UpdatePack)
		adminAPI.DELETE("/packs/:pack_id", handlers.AdminCatalog.DeletePack)
		adminAPI.GET("/packs/:pack_id/tests", handlers.AdminCatalog.ListTests)

		// Test management
		adminAPI.POST("/tests", handlers.AdminCatalog.CreateTest)
		adminAPI.GET("/tests/:test_id", handlers.AdminCatalog.GetTest)
		adminAPI.PUT("/tests/:test_id", handlers.AdminCatalog.UpdateTest)
		adminAPI.DELETE("/tests/:test_id", handlers.AdminCatalog.DeleteTest)
		adminAPI.POST("/tests/:test_id/publish", handlers.AdminCatalog.PublishTest)
		adminAPI.POST("/tests/:test_id/archive", handlers.AdminCatalog.ArchiveTest)
		adminAPI.GET("/tests/:test_id/results", handlers.AdminCatalog.GetTestResults)

		// Question management
		adminAPI.GET("/tests/:test_id/questions", handlers.AdminCatalog.GetQuestions)
		adminAPI.PUT("/tests/:test_id/questions", handlers.AdminCatalog.ReplaceQuestions)

		// Issue report queue
		adminAPI.GET("/issues", handlers.Issue.ListIssues)
		adminAPI.PUT("/issues/:issue_id", handlers.Issue.ResolveIssue)

		// App Settings Routes
		settingsGroup := adminAPI.Group("/settings")
		{
			settingsGroup.GET("", handlers.Setting.GetAllSettings)
			settingsGroup.PUT("", handlers.Setting.UpdateSettings)
		}
	}

	return router
}
