package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"eventmarket/internal/infra/config"
	"eventmarket/internal/infra/obs"
)

type OfferHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Accept(c *gin.Context)
	Reject(c *gin.Context)
	Cancel(c *gin.Context)
}

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	RecordPayment(c *gin.Context)
	UpdateStatus(c *gin.Context)
	Cancel(c *gin.Context)
	MarkRefunded(c *gin.Context)
	Schedule(c *gin.Context)
	RefundQuote(c *gin.Context)
}

type Handlers struct {
	Offers   OfferHTTP
	Bookings BookingHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the engine with all routes; it is separate from NewServer
// so tests can drive it through httptest.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", userIDHeader, userRolesHeader, idempotencyHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))
	router.Use(Identity())

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Offers != nil {
		offers := api.Group("/offers")
		offers.POST("", h.Offers.Create)
		offers.GET("", h.Offers.List)
		offers.GET("/:id", h.Offers.Get)
		offers.POST("/:id/accept", h.Offers.Accept)
		offers.POST("/:id/reject", h.Offers.Reject)
		offers.POST("/:id/cancel", h.Offers.Cancel)
	}
	if h.Bookings != nil {
		bookings := api.Group("/bookings")
		bookings.POST("", h.Bookings.Create)
		bookings.GET("", h.Bookings.List)
		bookings.GET("/:id", h.Bookings.Get)
		bookings.POST("/:id/payments", h.Bookings.RecordPayment)
		bookings.POST("/:id/status", h.Bookings.UpdateStatus)
		bookings.POST("/:id/cancel", h.Bookings.Cancel)
		bookings.POST("/:id/refund", h.Bookings.MarkRefunded)
		bookings.GET("/:id/schedule", h.Bookings.Schedule)
		bookings.GET("/:id/refund-quote", h.Bookings.RefundQuote)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
