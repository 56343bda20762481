package service

import (
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ValidateCreateOrderRequest validates an order creation request.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if req.CustomerName == "" {
		return apperrors.NewValidationError("customer_name", "customer name is required")
	}
	if err := validateEmail(req.CustomerEmail, "customer_email"); err != nil {
		return err
	}
	if req.ShippingAddress == "" {
		return apperrors.NewValidationError("shipping_address", "shipping address is required")
	}
	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items", "at least one item is required")
	}
	for _, item := range req.Items {
		if err := validateOrderItem(&item); err != nil {
			return err
		}
	}
	return nil
}

func validateOrderItem(item *models.OrderItem) error {
	if item.ProductID == "" && item.ProductName == "" {
		return apperrors.NewValidationError("items", "product reference is required for item")
	}
	if item.Quantity <= 0 {
		return apperrors.NewValidationError("items", "quantity must be positive")
	}
	if item.UnitPrice.IsNegative() {
		return apperrors.NewValidationError("items", "unit price cannot be negative")
	}
	return nil
}

// ValidateCreateProductRequest validates a product creation request.
func ValidateCreateProductRequest(req *models.CreateProductRequest) error {
	if req.Name == "" {
		return apperrors.NewValidationError("name", "product name is required")
	}
	if req.Price.IsNegative() {
		return apperrors.NewValidationError("price", "price cannot be negative")
	}
	if req.Stock < 0 {
		return apperrors.NewValidationError("stock", "stock cannot be negative")
	}
	return validateCosting(req.ProductionCost, req.ShippingCost, req.ProfitMargin)
}

// ValidateUpdateProductRequest validates a product update request.
func ValidateUpdateProductRequest(req *models.UpdateProductRequest) error {
	if req.Name != nil && *req.Name == "" {
		return apperrors.NewValidationError("name", "product name cannot be empty")
	}
	if req.Price != nil && req.Price.IsNegative() {
		return apperrors.NewValidationError("price", "price cannot be negative")
	}
	if req.Stock != nil && *req.Stock < 0 {
		return apperrors.NewValidationError("stock", "stock cannot be negative")
	}
	return validateCosting(req.ProductionCost, req.ShippingCost, req.ProfitMargin)
}

func validateCosting(production, shipping *money.Money, margin *float64) error {
	if production != nil && production.IsNegative() {
		return apperrors.NewValidationError("production_cost", "production cost cannot be negative")
	}
	if shipping != nil && shipping.IsNegative() {
		return apperrors.NewValidationError("shipping_cost", "shipping cost cannot be negative")
	}
	if margin != nil && *margin < 0 {
		return apperrors.NewValidationError("profit_margin", "profit margin cannot be negative")
	}
	return nil
}

// ValidateCategoryRequest validates a category payload.
func ValidateCategoryRequest(req *models.CategoryRequest) error {
	if req.Name == "" {
		return apperrors.NewValidationError("name", "category name is required")
	}
	return nil
}

// ValidateCreateUserRequest validates an account registration request.
func ValidateCreateUserRequest(req *models.CreateUserRequest) error {
	if len(strings.TrimSpace(req.Username)) < 3 {
		return apperrors.NewValidationError("username", "username must be at least 3 characters")
	}
	if err := validateEmail(req.Email, "email"); err != nil {
		return err
	}
	if len(req.Password) < 8 {
		return apperrors.NewValidationError("password", "password must be at least 8 characters")
	}
	return nil
}

// ValidateRefundRequest validates a refund request.
func ValidateRefundRequest(req *models.RefundRequest) error {
	if req.OrderID == "" {
		return apperrors.NewValidationError("order_id", "order ID is required")
	}
	if !req.Full && !req.Amount.IsPositive() {
		return apperrors.NewValidationError("amount", "refund amount must be positive")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return apperrors.NewValidationError("reason", "refund reason is required")
	}
	if len(req.Reason) > 500 {
		return apperrors.NewValidationError("reason", "refund reason too long (max 500 characters)")
	}
	return nil
}

func validateEmail(value, field string) error {
	if value == "" {
		return apperrors.NewValidationError(field, "email is required")
	}
	if _, err := mail.ParseAddress(value); err != nil {
		return apperrors.NewValidationError(field, "email is not valid")
	}
	return nil
}

func clampPagination(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return skip, limit
}

func intFactor(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func marginFactor(marginPercent float64) decimal.Decimal {
	return decimal.NewFromInt(1).Add(
		decimal.NewFromFloat(marginPercent).Div(decimal.NewFromInt(100)))
}
