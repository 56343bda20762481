package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mimos-de-madera/backoffice-service/internal/auth"
	"github.com/mimos-de-madera/backoffice-service/internal/config"
	"github.com/mimos-de-madera/backoffice-service/internal/handlers"
	"github.com/mimos-de-madera/backoffice-service/internal/metrics"
)

// Server wraps the HTTP server and its routes.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
}

// New builds the router and returns a server ready to start.
func New(h *handlers.Handlers, authManager *auth.Manager, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	registerRoutes(router, h, authManager)

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      router,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		},
		router: router,
	}
}

func registerRoutes(router *gin.Engine, h *handlers.Handlers, authManager *auth.Manager) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/live", h.Live)
	router.GET("/version", h.Version)
	router.GET("/metrics", metrics.Handler())

	router.POST("/api/auth/login", h.Login)

	api := router.Group("/api")
	api.Use(authManager.Middleware())
	{
		api.POST("/auth/register", auth.RequireAdmin(), h.Register)

		orders := api.Group("/orders")
		{
			orders.POST("", h.CreateOrder)
			orders.GET("", h.ListOrders)
			orders.GET("/search", h.SearchOrders)
			orders.GET("/:id", h.GetOrder)
			orders.PUT("/:id", h.UpdateOrder)
			orders.DELETE("/:id", h.DeleteOrder)
			orders.POST("/:id/payments", h.RecordPayment)
			orders.GET("/:id/payments", h.ListPaymentEvents)
		}

		payments := api.Group("/payments")
		{
			payments.POST("/refund", h.CreateRefund)
			payments.GET("/refund/:orderId", h.RefundStatus)
		}

		products := api.Group("/products")
		{
			products.POST("", h.CreateProduct)
			products.GET("", h.ListProducts)
			products.GET("/price-quote", h.QuotePrice)
			products.GET("/:id", h.GetProduct)
			products.PUT("/:id", h.UpdateProduct)
			products.DELETE("/:id", h.DeleteProduct)
			products.PATCH("/:id/toggle-status", h.ToggleProductStatus)
		}

		categories := api.Group("/categories")
		{
			categories.POST("", h.CreateCategory)
			categories.GET("", h.ListCategories)
			categories.PUT("/:id", h.UpdateCategory)
			categories.DELETE("/:id", h.DeleteCategory)
			categories.PATCH("/:id/toggle-status", h.ToggleCategoryStatus)
		}

		contacts := api.Group("/contacts")
		{
			contacts.GET("", h.ListContacts)
			contacts.GET("/unread-count", h.UnreadContactCount)
			contacts.GET("/:id", h.GetContact)
			contacts.PUT("/:id", h.UpdateContact)
			contacts.DELETE("/:id", h.DeleteContact)
		}

		subscriptions := api.Group("/email-subscriptions")
		{
			subscriptions.GET("", h.ListSubscriptions)
			subscriptions.GET("/count", h.CountSubscriptions)
			subscriptions.DELETE("/:id", h.DeleteSubscription)
		}

		users := api.Group("/users", auth.RequireAdmin())
		{
			users.POST("", h.CreateUser)
			users.GET("", h.ListUsers)
			users.GET("/:id", h.GetUser)
			users.PUT("/:id", h.UpdateUser)
			users.DELETE("/:id", h.DeleteUser)
			users.PATCH("/:id/toggle-admin", h.ToggleAdmin)
		}

		admin := api.Group("/admin", auth.RequireAdmin())
		{
			admin.GET("/stats", h.AdminStats)
		}
	}
}

// Start begins serving HTTP requests. It blocks until the server stops.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
