package gateway

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	cartapp "github.com/econext/storefront/internal/cart/app"
	catalogapp "github.com/econext/storefront/internal/catalog/app"
	checkoutapp "github.com/econext/storefront/internal/checkout/app"
	"github.com/econext/storefront/internal/commerce"
	sessionapp "github.com/econext/storefront/internal/session/app"
)

// Server is the HTTP surface the view layer talks to. It wires the
// four engine components together; all commerce traffic goes
// through the shared client.
type Server struct {
	log      *slog.Logger
	sessions *sessionapp.Store
	cart     *cartapp.Engine
	client   *commerce.Client
	catalog  *catalogapp.Service
	checkout *checkoutapp.Service
}

func New(
	log *slog.Logger,
	sessions *sessionapp.Store,
	cart *cartapp.Engine,
	client *commerce.Client,
	catalog *catalogapp.Service,
	checkout *checkoutapp.Service,
) *Server {
	return &Server{
		log:      log,
		sessions: sessions,
		cart:     cart,
		client:   client,
		catalog:  catalog,
		checkout: checkout,
	}
}

func (s *Server) Router(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLog())

	if len(allowedOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
		r.Use(cors.New(cfg))
	} else {
		r.Use(cors.Default())
	}

	r.GET("/healthz", func(c *gin.Context) { c.Status(200) })

	api := r.Group("/api")

	api.POST("/session/login", s.handleLogin)
	api.POST("/session/signup", s.handleSignup)
	api.POST("/session/logout", s.handleLogout)
	api.POST("/session/hydrate", s.handleHydrate)
	api.GET("/session", s.handleSession)
	api.GET("/session/profile", s.handleProfile)
	api.PUT("/session/profile", s.handleUpdateProfile)

	api.GET("/products", s.handleProducts)
	api.GET("/products/trending", s.handleTrending)
	api.GET("/products/:id", s.handleProductDetail)

	api.GET("/search", s.handleIntentSearch)
	api.POST("/search/visual", s.handleVisualSearch)

	api.GET("/cart", s.handleCart)
	api.POST("/cart/items", s.handleAddItem)
	api.PATCH("/cart/items/:id", s.handleSetQuantity)
	api.DELETE("/cart/items/:id", s.handleRemoveItem)
	api.DELETE("/cart", s.handleClearCart)

	api.POST("/checkout", s.handleCheckout)
	api.GET("/orders", s.handleOrders)
	api.GET("/orders/:id", s.handleOrderDetail)

	return r
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}
