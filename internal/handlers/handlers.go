package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/config"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/service"
)

// ReadinessCheck reports whether a backing dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// Handlers holds all HTTP handlers for the dashboard API.
type Handlers struct {
	orderService   *service.OrderService
	productService *service.ProductService
	userService    *service.UserService
	contactService *service.ContactService
	statsService   *service.StatsService
	config         *config.Config
	logger         *logging.Logger
	readiness      map[string]ReadinessCheck
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	orderService *service.OrderService,
	productService *service.ProductService,
	userService *service.UserService,
	contactService *service.ContactService,
	statsService *service.StatsService,
	cfg *config.Config,
	readiness map[string]ReadinessCheck,
) *Handlers {
	return &Handlers{
		orderService:   orderService,
		productService: productService,
		userService:    userService,
		contactService: contactService,
		statsService:   statsService,
		config:         cfg,
		logger:         logging.NewLogger("handlers"),
		readiness:      readiness,
	}
}

func handleError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	return true
}
