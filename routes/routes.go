// routes/routes.go
package routes

import (
	"time"

	"lifeline/controllers"
	"lifeline/database"
	"lifeline/middleware"
	"lifeline/repositories"
	"lifeline/services"
	"lifeline/utils"
	"lifeline/websocket"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// Dependencies is everything the HTTP surface needs, wired in main.
type Dependencies struct {
	Redis         *redis.Client
	Hub           *websocket.Hub
	JWT           *utils.JWTService
	Tracker       *services.TrackerService
	Telemetry     *services.TelemetryService
	Countdown     *services.CountdownService
	Facilities    *services.FacilityResolver
	OTP           *services.OTPService
	AccidentRepo  *repositories.AccidentRepository
	DeviceKey     string
	RateLimit     int
	RateLimitSpan time.Duration
	StartedAt     time.Time
	Version       string
}

// SetupRoutes initializes all application routes
func SetupRoutes(deps Dependencies) *gin.Engine {
	router := gin.New()

	authController := controllers.NewAuthController(deps.JWT, deps.OTP, deps.DeviceKey)
	locationController := controllers.NewLocationController(deps.Tracker)
	deviceController := controllers.NewDeviceController(deps.Telemetry)
	facilityController := controllers.NewFacilityController(deps.Facilities, deps.Tracker)
	sosController := controllers.NewSOSController(deps.Countdown)
	accidentController := controllers.NewAccidentController(deps.AccidentRepo)
	wsController := controllers.NewWebSocketController(deps.Hub)
	authMiddleware := middleware.NewAuthMiddleware(deps.JWT)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Redis:     deps.Redis,
		Requests:  deps.RateLimit,
		Window:    deps.RateLimitSpan,
		SkipPaths: []string{"/health", "/ws"},
	})

	// Global middleware
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.LoggerMiddleware(middleware.LoggerConfig{
		SkipPaths: []string{"/health"},
	}))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	router.Use(rateLimiter.Middleware())

	// Public routes
	router.GET("/health", healthHandler(deps))
	router.POST("/auth/token", authController.Token)
	router.POST("/send-otp", authController.SendOTP)

	// Dashboard socket; token comes in as a query parameter
	router.GET("/ws", authMiddleware.RequireAuth(), wsController.HandleWS)

	// Authenticated API
	api := router.Group("/api/v1")
	api.Use(authMiddleware.RequireAuth())
	{
		api.POST("/location", locationController.IngestFix)
		api.POST("/location/failure", locationController.ReportFailure)
		api.GET("/location", locationController.Status)

		api.GET("/device", deviceController.GetDevice)
		api.GET("/pois", facilityController.GetPOIs)

		api.POST("/sos", sosController.Trigger)
		api.POST("/sos/confirm", sosController.Confirm)
		api.POST("/sos/cancel", sosController.Cancel)
		api.GET("/sos", sosController.Status)

		api.GET("/accidents", accidentController.List)
		api.GET("/accidents/:id", accidentController.Get)
	}

	return router
}

func healthHandler(deps Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		statuses := map[string]string{
			"mongodb": "healthy",
			"redis":   "healthy",
		}
		if !database.IsConnected() {
			statuses["mongodb"] = "unhealthy"
		}
		if deps.Redis != nil {
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				statuses["redis"] = "unhealthy"
			}
		}

		uptime := time.Since(deps.StartedAt).Round(time.Second).String()
		c.JSON(200, utils.HealthCheckResponse(statuses, deps.Version, uptime))
	}
}
