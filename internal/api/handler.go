package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"marketplace-service/internal/auth"
	"marketplace-service/internal/models"
	"marketplace-service/internal/ratelimit"
	"marketplace-service/internal/service"
	"marketplace-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the business services the handlers call.
type Services struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Vendors   *service.VendorService
	Products  *service.ProductService
	Orders    *service.OrderService
	Carts     *service.CartService
	Dashboard *service.DashboardService
}

// Handler contains HTTP handlers
type Handler struct {
	svc        Services
	tokens     *auth.TokenManager
	limiter    ratelimit.Limiter
	db         Pinger
	production bool
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler. A nil limiter disables rate limiting.
func NewHandler(svc Services, tokens *auth.TokenManager, limiter ratelimit.Limiter, db Pinger, production bool) *Handler {
	return &Handler{
		svc:        svc,
		tokens:     tokens,
		limiter:    limiter,
		db:         db,
		production: production,
		logger:     util.Named("http"),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(h.requestLogger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api", h.rateLimit())

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
	}

	users := api.Group("/users")
	{
		users.POST("", h.createUser)
		users.GET("", h.requireAuth(), h.requireRoles(models.RoleAdmin), h.listUsers)
		users.GET("/:id", h.requireAuth(), h.getUser)
		users.PUT("/:id", h.requireAuth(), h.updateUser)
		users.DELETE("/:id", h.requireAuth(), h.requireRoles(models.RoleAdmin), h.deleteUser)
	}

	vendors := api.Group("/vendors")
	{
		vendors.GET("", h.listVendors)
		vendors.GET("/:id", h.getVendor)
		vendors.POST("", h.requireAuth(), h.requireRoles(models.RoleAdmin), h.createVendor)
		vendors.PUT("/:id", h.requireAuth(), h.requireRoles(models.RoleAdmin, models.RoleVendor), h.updateVendor)
		vendors.DELETE("/:id", h.requireAuth(), h.requireRoles(models.RoleAdmin), h.deleteVendor)
	}

	products := api.Group("/products")
	{
		products.GET("", h.listProducts)
		products.POST("", h.requireAuth(), h.requireRoles(models.RoleVendor, models.RoleAdmin), h.createProduct)
	}

	orders := api.Group("/orders", h.requireAuth())
	{
		orders.POST("", h.requireRoles(models.RoleCustomer), h.createOrder)
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)
		orders.PUT("/:id/status",
			h.requireRoles(models.RoleAdmin, models.RoleVendor, models.RoleDeliveryAgent), h.updateOrderStatus)
	}

	cart := api.Group("/cart", h.requireAuth())
	{
		cart.GET("", h.getCart)
		cart.POST("", h.addToCart)
		cart.DELETE("", h.clearCart)
		cart.PUT("/:id", h.updateCartItem)
		cart.DELETE("/:id", h.removeFromCart)
	}

	wishlist := api.Group("/wishlist", h.requireAuth())
	{
		wishlist.GET("", h.getWishlist)
		wishlist.POST("", h.addToWishlist)
		wishlist.DELETE("/:id", h.removeFromWishlist)
	}

	api.GET("/dashboard/stats", h.requireAuth(), h.requireRoles(models.RoleAdmin), h.dashboardStats)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readinessCheck reports ready only while the database answers.
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}

func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		h.logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
