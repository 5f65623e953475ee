// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"gatherly/internal/auth"
	"gatherly/internal/bookings"
	"gatherly/internal/coupons"
	"gatherly/internal/events"
	"gatherly/internal/payments"
	"gatherly/internal/shared/config"
	"gatherly/internal/shared/database"
	"gatherly/internal/tickets"
	"gatherly/pkg/cache"
	"gatherly/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config       *config.Config
	db           *database.DB
	cacheService cache.Service
	notifier     payments.Notifier

	// Shared services for cross-feature dependency injection
	eventRepo      events.Repository
	couponService  coupons.Service
	bookingRepo    bookings.Repository
	bookingService bookings.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cacheService cache.Service, notifier payments.Notifier) *Router {
	return &Router{
		config:       cfg,
		db:           db,
		cacheService: cacheService,
		notifier:     notifier,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupEventRoutes(api)
		r.setupCouponRoutes(api)
		r.setupBookingRoutes(api)
		r.setupTicketRoutes(api)
		r.setupPaymentRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "gatherly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "gatherly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config)
	authController := auth.NewController(authService)
	authRouter := auth.NewRouter(authController, r.config)

	authRouter.SetupRoutes(rg)
}

// setupEventRoutes configures event catalog routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	eventRepo := events.NewRepository(r.db.GetPostgreSQL())
	eventService := events.NewService(eventRepo, r.cacheService, r.config.Redis.CacheTTL)
	eventController := events.NewController(eventService)

	// Keep the repository around for booking and payment wiring
	r.eventRepo = eventRepo

	events.SetupEventRoutes(rg, eventController)
}

// setupCouponRoutes configures coupon administration routes
func (r *Router) setupCouponRoutes(rg *gin.RouterGroup) {
	couponRepo := coupons.NewRepository(r.db.GetPostgreSQL())
	couponService := coupons.NewService(couponRepo)
	couponController := coupons.NewController(couponService)

	r.couponService = couponService

	coupons.SetupCouponRoutes(rg, couponController)
}

// setupBookingRoutes configures booking lifecycle routes
func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	bookingRepo := bookings.NewRepository(r.db.GetPostgreSQL())
	bookingService := bookings.NewService(bookingRepo, r.eventRepo, r.couponService, logger.GetDefault())
	bookingController := bookings.NewController(bookingService)

	r.bookingRepo = bookingRepo
	r.bookingService = bookingService

	bookings.SetupBookingRoutes(rg, bookingController)
}

// setupTicketRoutes configures ticket retrieval and check-in routes
func (r *Router) setupTicketRoutes(rg *gin.RouterGroup) {
	ticketRepo := tickets.NewRepository(r.db.GetPostgreSQL())
	ticketService := tickets.NewService(ticketRepo)
	ticketController := tickets.NewController(ticketService)

	tickets.SetupTicketRoutes(rg, ticketController)
}

// setupPaymentRoutes configures payment and reconciliation routes
func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	store := payments.NewStore(r.db.GetPostgreSQL())
	gateway := payments.NewGateway(r.config.Gateway)
	paymentService := payments.NewService(store, gateway, r.bookingRepo, r.bookingService, r.notifier, logger.GetDefault())
	paymentController := payments.NewController(paymentService)

	payments.SetupPaymentRoutes(rg, paymentController)
}
