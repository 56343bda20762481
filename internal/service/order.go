package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/config"
	"github.com/mimos-de-madera/backoffice-service/internal/events"
	"github.com/mimos-de-madera/backoffice-service/internal/ledger"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/metrics"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
	"github.com/mimos-de-madera/backoffice-service/internal/repository"
)

// OrderService handles order business logic, including the payment ledger.
type OrderService struct {
	orderRepo  repository.OrderRepository
	orderCache repository.OrderCache
	publisher  events.Publisher
	config     *config.Config
	logger     *logging.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	orderCache repository.OrderCache,
	publisher events.Publisher,
	cfg *config.Config,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		orderCache: orderCache,
		publisher:  publisher,
		config:     cfg,
		logger:     logging.NewLogger("order-service"),
	}
}

// CreateOrder creates a new order in pending state with an empty ledger.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := ValidateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	total := money.Zero
	for i, item := range req.Items {
		line := item.UnitPrice.MulFactor(intFactor(item.Quantity))
		req.Items[i].Total = line
		total = total.Add(line)
	}

	code := req.OrderCode
	if code == "" {
		code = generateOrderCode()
	}

	order := &models.Order{
		ID:              uuid.New().String(),
		OrderCode:       code,
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		Items:           req.Items,
		TotalAmount:     total,
		Status:          models.OrderStatusPending,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   ledger.StatusPending,
		PaymentAmount:   money.Zero,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order", logging.Fields{
			"order_code": order.OrderCode,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.publishEvent(ctx, func() error {
		return s.publisher.PublishOrderCreated(ctx, order)
	}, order.ID)

	s.logger.Info("Order created", logging.Fields{
		"order_id":   order.ID,
		"order_code": order.OrderCode,
		"total":      order.TotalAmount.String(),
	})
	return order, nil
}

// GetOrder retrieves an order by ID, cache first.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if s.config.Features.EnableCaching {
		if order, err := s.orderCache.Get(ctx, id); err == nil && order != nil {
			return order, nil
		}
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableCaching {
		if err := s.orderCache.Set(ctx, order); err != nil {
			s.logger.Warn("Failed to cache order", logging.Fields{
				"order_id": id,
				"error":    err.Error(),
			})
		}
	}
	return order, nil
}

// ListOrders retrieves orders with pagination.
func (s *OrderService) ListOrders(ctx context.Context, skip, limit int) ([]*models.Order, int, error) {
	skip, limit = clampPagination(skip, limit)
	return s.orderRepo.List(ctx, skip, limit)
}

// SearchOrders retrieves orders matching a query on the selected field.
func (s *OrderService) SearchOrders(ctx context.Context, query string, searchType models.SearchType, skip, limit int) ([]*models.Order, error) {
	if query == "" {
		return nil, apperrors.NewValidationError("query", "search query is required")
	}
	if searchType == "" {
		searchType = models.SearchAll
	}
	if !searchType.Valid() {
		return nil, apperrors.NewValidationError("search_type", fmt.Sprintf("unknown search type %q", searchType))
	}

	skip, limit = clampPagination(skip, limit)
	return s.orderRepo.Search(ctx, query, searchType, skip, limit)
}

// UpdateOrder applies field updates, validating any status transition.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, req *models.UpdateOrderRequest) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	previousStatus := order.Status

	if req.Status != nil && *req.Status != order.Status {
		if !models.IsValidStatusTransition(order.Status, *req.Status) {
			return nil, apperrors.NewValidationError("status", fmt.Sprintf(
				"invalid status transition from %s to %s", order.Status, *req.Status))
		}
		order.Status = *req.Status
	}
	if req.CustomerName != nil {
		order.CustomerName = *req.CustomerName
	}
	if req.CustomerEmail != nil {
		order.CustomerEmail = *req.CustomerEmail
	}
	if req.CustomerPhone != nil {
		order.CustomerPhone = *req.CustomerPhone
	}
	if req.ShippingAddress != nil {
		order.ShippingAddress = *req.ShippingAddress
	}
	if req.PaymentMethod != nil {
		order.PaymentMethod = *req.PaymentMethod
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)

	if order.Status != previousStatus {
		s.publishEvent(ctx, func() error {
			return s.publisher.PublishOrderStatusChanged(ctx, order, previousStatus)
		}, order.ID)
	}

	return order, nil
}

// DeleteOrder soft-deletes an order.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, id)
	return nil
}

// RecordPayment appends a payment event (transfer or manual) to the
// order's ledger and persists the recomputed payment position.
func (s *OrderService) RecordPayment(ctx context.Context, orderID string, req *models.RecordPaymentRequest) (*models.Order, error) {
	if req.Kind.IsRefund() {
		return nil, apperrors.NewValidationError("kind", "use the refund endpoint for refunds")
	}

	event := ledger.Event{
		ID:         uuid.New().String(),
		Kind:       req.Kind,
		Amount:     req.Amount,
		OccurredOn: req.OccurredOn,
		Reference:  req.Reference,
		Notes:      req.Notes,
	}
	return s.appendLedgerEvent(ctx, orderID, event)
}

// RecordRefund appends a refund event to the order's ledger. A full refund
// covering the whole total additionally cancels the order.
func (s *OrderService) RecordRefund(ctx context.Context, req *models.RefundRequest) (*models.Order, error) {
	if err := ValidateRefundRequest(req); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.CanRefund() {
		return nil, apperrors.NewValidationError("order_id", "order has no refundable payments")
	}

	kind := ledger.RefundPartial
	amount := req.Amount
	if req.Full {
		kind = ledger.RefundFull
		if amount.IsZero() {
			amount = order.TotalAmount
		}
	}

	event := ledger.Event{
		ID:         uuid.New().String(),
		Kind:       kind,
		Amount:     amount,
		OccurredOn: time.Now(),
		Notes:      req.Reason,
	}
	return s.appendLedgerEvent(ctx, req.OrderID, event)
}

// appendLedgerEvent folds the stored ledger, appends the event and persists
// the derived payment fields. The fold always starts from the full event
// history so no cached counter can drift.
func (s *OrderService) appendLedgerEvent(ctx context.Context, orderID string, event ledger.Event) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	history, err := s.orderRepo.ListPaymentEvents(ctx, orderID)
	if err != nil {
		return nil, err
	}

	state, err := ledger.Replay(order.TotalAmount, history)
	if err != nil {
		s.logger.Error("Stored ledger failed validation", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
		return nil, err
	}

	res, err := state.Append(event)
	if err != nil {
		return nil, err
	}

	order.PaymentStatus = res.State.Status
	order.PaymentAmount = res.State.Balance().Net
	order.PaymentNotes = res.State.DisplayNotes()
	previousStatus := order.Status
	if res.CancelsOrder {
		order.Status = models.OrderStatusCancelled
	}

	if err := s.orderRepo.AppendPaymentEvent(ctx, order, event); err != nil {
		return nil, err
	}

	metrics.PaymentEventsTotal.WithLabelValues(string(event.Kind)).Inc()
	s.invalidateCache(ctx, orderID)

	if res.State.Overpaid() {
		s.logger.Warn("Order overpaid", logging.Fields{
			"order_id": orderID,
			"total":    order.TotalAmount.String(),
			"paid":     order.PaymentAmount.String(),
		})
	}

	s.publishEvent(ctx, func() error {
		return s.publisher.PublishPaymentEvent(ctx, order, event)
	}, order.ID)

	if res.CancelsOrder && previousStatus != models.OrderStatusCancelled {
		s.publishEvent(ctx, func() error {
			return s.publisher.PublishOrderCancelled(ctx, order, event.Notes)
		}, order.ID)
	}

	s.logger.Info("Payment event recorded", logging.Fields{
		"order_id":       order.ID,
		"kind":           string(event.Kind),
		"amount":         event.Amount.String(),
		"payment_status": string(order.PaymentStatus),
	})
	return order, nil
}

// ListPaymentEvents returns an order's ledger in append order.
func (s *OrderService) ListPaymentEvents(ctx context.Context, orderID string) ([]ledger.Event, error) {
	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.orderRepo.ListPaymentEvents(ctx, orderID)
}

// RefundStatus summarises the refund position of an order from its ledger.
func (s *OrderService) RefundStatus(ctx context.Context, orderID string) (*models.RefundStatus, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	history, err := s.orderRepo.ListPaymentEvents(ctx, orderID)
	if err != nil {
		return nil, err
	}

	state, err := ledger.Replay(order.TotalAmount, history)
	if err != nil {
		return nil, err
	}
	balance := state.Balance()

	return &models.RefundStatus{
		OrderID:       orderID,
		PaymentStatus: state.Status,
		Paid:          balance.Paid,
		Refunded:      balance.Refunded,
		Net:           balance.Net,
		Events:        state.Events,
	}, nil
}

func (s *OrderService) invalidateCache(ctx context.Context, id string) {
	if !s.config.Features.EnableCaching {
		return
	}
	if err := s.orderCache.Delete(ctx, id); err != nil {
		s.logger.Warn("Failed to invalidate order cache", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
	}
}

func (s *OrderService) publishEvent(ctx context.Context, publish func() error, orderID string) {
	if !s.config.Features.EnableEvents {
		return
	}
	if err := publish(); err != nil {
		// Events are best effort; the write already succeeded.
		s.logger.Error("Failed to publish event", logging.Fields{
			"order_id": orderID,
			"error":    err.Error(),
		})
	}
}

func generateOrderCode() string {
	return fmt.Sprintf("%d-%s", time.Now().Year(), uuid.New().String()[:8])
}
