package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"dermodazzle_back_end/internal/handlers"
	"dermodazzle_back_end/internal/handlers/order"
	"dermodazzle_back_end/internal/handlers/product"
	"dermodazzle_back_end/internal/handlers/user"
	"dermodazzle_back_end/internal/middleware"
)

type Handlers struct {
	Auth     *user.AuthHandler
	Cart     *user.CartHandler
	Orders   *order.Handler
	Products *product.Handler
	Reviews  *product.ReviewHandler
	Forms    *handlers.FormsHandler
}

type Options struct {
	Tokens         middleware.TokenParser
	Limiter        middleware.Counter // nil : pas de limitation
	AllowedOrigins []string
	OAuth          bool
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func RegisterRoutes(r *gin.Engine, h Handlers, opts Options) {
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	limit := func(l middleware.Limit) gin.HandlerFunc {
		if opts.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimit(opts.Limiter, l)
	}
	authed := middleware.AuthRequired(opts.Tokens)
	admin := []gin.HandlerFunc{authed, middleware.RequireAdmin}

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "API Working") })

	api := r.Group("/api")

	// Utilisateurs
	users := api.Group("/user")
	users.POST("/register", h.Auth.Register)
	users.POST("/login", limit(middleware.LoginLimit), h.Auth.Login)
	users.POST("/admin", limit(middleware.LoginLimit), h.Auth.AdminLogin)
	if opts.OAuth {
		api.GET("/auth/:provider", h.Auth.BeginOAuth)
		api.GET("/auth/:provider/callback", h.Auth.OAuthCallback)
	}

	// Catalogue
	products := api.Group("/product")
	products.GET("/list", h.Products.List)
	products.POST("/single", h.Products.Single)
	products.GET("/search", h.Products.Search)
	products.POST("/add", append(admin, h.Products.Add)...)
	products.POST("/remove", append(admin, h.Products.Remove)...)

	// Panier
	carts := api.Group("/cart", authed)
	carts.POST("/add", limit(middleware.CartLimit), h.Cart.Add)
	carts.POST("/update", limit(middleware.CartLimit), h.Cart.Update)
	carts.GET("/get", h.Cart.Get)
	carts.POST("/get", h.Cart.Get)
	carts.POST("/reset", h.Cart.Reset)
	carts.GET("/ws", h.Cart.WebSocket)

	// Commandes
	orders := api.Group("/order")
	orders.POST("/webhook/stripe", h.Orders.StripeWebhook)
	orders.POST("/place", authed, h.Orders.PlaceCOD)
	orders.POST("/stripe", authed, h.Orders.PlaceStripe)
	orders.POST("/razorpay", authed, h.Orders.PlaceRazorpay)
	orders.POST("/verifyStripe", authed, h.Orders.VerifyStripe)
	orders.POST("/verifyRazorpay", authed, h.Orders.VerifyRazorpay)
	orders.POST("/userorders", authed, h.Orders.UserOrders)
	orders.GET("/tracking-info/:orderId", authed, h.Orders.TrackingInfo)
	orders.GET("/tracking-history/:orderId", authed, h.Orders.TrackingHistory)
	orders.GET("/invoice/:orderId", authed, h.Orders.Invoice)
	orders.POST("/list", append(admin, h.Orders.List)...)
	orders.POST("/status", append(admin, h.Orders.UpdateStatus)...)
	orders.POST("/update-tracking", append(admin, h.Orders.UpdateTracking)...)

	// Avis
	reviews := api.Group("/reviews")
	reviews.GET("/:productId", h.Reviews.List)
	reviews.POST("/:productId", authed, h.Reviews.Create)
	reviews.DELETE("/:reviewId", append(admin, h.Reviews.Delete)...)

	// Formulaires
	api.POST("/subscribe", limit(middleware.SubscribeLimit), h.Forms.Subscribe)
	api.POST("/contact/submit", limit(middleware.ContactLimit), h.Forms.SubmitContact)
	api.GET("/contact", append(admin, h.Forms.ListContacts)...)
}
