package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/config"
	"github.com/mimos-de-madera/backoffice-service/internal/events"
	"github.com/mimos-de-madera/backoffice-service/internal/ledger"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
	"github.com/mimos-de-madera/backoffice-service/internal/repository"
)

type memOrderRepo struct {
	orders map[string]*models.Order
	events map[string][]ledger.Event
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{
		orders: make(map[string]*models.Order),
		events: make(map[string][]ledger.Event),
	}
}

var _ repository.OrderRepository = (*memOrderRepo)(nil)

func (r *memOrderRepo) Create(ctx context.Context, order *models.Order) error {
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *memOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *memOrderRepo) List(ctx context.Context, skip, limit int) ([]*models.Order, int, error) {
	var out []*models.Order
	for _, o := range r.orders {
		out = append(out, o)
	}
	return out, len(out), nil
}

func (r *memOrderRepo) Update(ctx context.Context, order *models.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *order
	r.orders[order.ID] = &copied
	return nil
}

func (r *memOrderRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.orders[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *memOrderRepo) Search(ctx context.Context, query string, searchType models.SearchType, skip, limit int) ([]*models.Order, error) {
	return nil, nil
}

func (r *memOrderRepo) AppendPaymentEvent(ctx context.Context, order *models.Order, event ledger.Event) error {
	if _, ok := r.orders[order.ID]; !ok {
		return apperrors.ErrNotFound
	}
	copied := *order
	r.orders[order.ID] = &copied
	r.events[order.ID] = append(r.events[order.ID], event)
	return nil
}

func (r *memOrderRepo) ListPaymentEvents(ctx context.Context, orderID string) ([]ledger.Event, error) {
	return r.events[orderID], nil
}

func (r *memOrderRepo) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	counts := make(map[models.OrderStatus]int)
	for _, o := range r.orders {
		counts[o.Status]++
	}
	return counts, nil
}

func (r *memOrderRepo) RevenueTotals(ctx context.Context) (money.Money, money.Money, error) {
	return money.Zero, money.Zero, nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, id string) (*models.Order, error) { return nil, nil }
func (noopCache) Set(ctx context.Context, order *models.Order) error        { return nil }
func (noopCache) Delete(ctx context.Context, id string) error               { return nil }

func newTestOrderService(repo *memOrderRepo, pub *events.MockPublisher) *OrderService {
	cfg := &config.Config{}
	cfg.Features.EnableEvents = true
	return NewOrderService(repo, noopCache{}, pub, cfg)
}

func seedOrder(repo *memOrderRepo, total money.Money) *models.Order {
	order := &models.Order{
		ID:            "ord-1",
		OrderCode:     "2026-0001",
		CustomerName:  "Lucia Fernandez",
		CustomerEmail: "lucia@example.com",
		TotalAmount:   total,
		Status:        models.OrderStatusConfirmed,
		PaymentStatus: ledger.StatusPending,
		PaymentAmount: money.Zero,
	}
	repo.orders[order.ID] = order
	return order
}

func paymentReq(kind ledger.EventKind, amount money.Money) *models.RecordPaymentRequest {
	return &models.RecordPaymentRequest{
		Kind:       kind,
		Amount:     amount,
		OccurredOn: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Reference:  "BT-1001",
	}
}

func TestRecordPayment_PartialThenComplete(t *testing.T) {
	repo := newMemOrderRepo()
	pub := events.NewMockPublisher()
	svc := newTestOrderService(repo, pub)
	seedOrder(repo, money.New(100))

	order, err := svc.RecordPayment(context.Background(), "ord-1", paymentReq(ledger.TransferPartial, money.New(40)))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if order.PaymentStatus != ledger.StatusPartial {
		t.Errorf("Expected partial, got %s", order.PaymentStatus)
	}
	if order.PaymentAmount.Float() != 40 {
		t.Errorf("Expected net 40, got %s", order.PaymentAmount)
	}

	order, err = svc.RecordPayment(context.Background(), "ord-1", paymentReq(ledger.TransferPartial, money.New(60)))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if order.PaymentStatus != ledger.StatusSucceeded {
		t.Errorf("Expected succeeded, got %s", order.PaymentStatus)
	}
	if len(repo.events["ord-1"]) != 2 {
		t.Errorf("Expected 2 stored events, got %d", len(repo.events["ord-1"]))
	}
	if order.PaymentNotes == "" {
		t.Error("Expected payment notes to be rendered")
	}
}

func TestRecordPayment_RejectsRefundKind(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())
	seedOrder(repo, money.New(100))

	_, err := svc.RecordPayment(context.Background(), "ord-1", paymentReq(ledger.RefundPartial, money.New(10)))
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestRecordPayment_InvalidEventLeavesLedgerUnchanged(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())
	seedOrder(repo, money.New(100))

	req := paymentReq(ledger.TransferPartial, money.New(40))
	req.OccurredOn = time.Time{}

	_, err := svc.RecordPayment(context.Background(), "ord-1", req)
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if len(repo.events["ord-1"]) != 0 {
		t.Errorf("Expected empty ledger after rejected event, got %d events", len(repo.events["ord-1"]))
	}

	order, _ := repo.GetByID(context.Background(), "ord-1")
	if order.PaymentStatus != ledger.StatusPending {
		t.Errorf("Expected status untouched, got %s", order.PaymentStatus)
	}
}

func TestRecordPayment_Overpayment(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())
	seedOrder(repo, money.New(100))

	order, err := svc.RecordPayment(context.Background(), "ord-1", paymentReq(ledger.TransferFull, money.New(120)))
	if err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if order.PaymentStatus != ledger.StatusSucceeded {
		t.Errorf("Expected succeeded, got %s", order.PaymentStatus)
	}
	if order.PaymentAmount.Float() != 120 {
		t.Errorf("Expected unclamped net 120, got %s", order.PaymentAmount)
	}
}

func TestRecordRefund_FullRefundCancelsOrder(t *testing.T) {
	repo := newMemOrderRepo()
	pub := events.NewMockPublisher()
	svc := newTestOrderService(repo, pub)
	seedOrder(repo, money.New(100))

	if _, err := svc.RecordPayment(context.Background(), "ord-1", paymentReq(ledger.TransferFull, money.New(100))); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	order, err := svc.RecordRefund(context.Background(), &models.RefundRequest{
		OrderID: "ord-1",
		Full:    true,
		Reason:  "item damaged in transit",
	})
	if err != nil {
		t.Fatalf("RecordRefund: %v", err)
	}
	if order.PaymentStatus != ledger.StatusRefunded {
		t.Errorf("Expected refunded, got %s", order.PaymentStatus)
	}
	if order.Status != models.OrderStatusCancelled {
		t.Errorf("Expected order cancelled, got %s", order.Status)
	}

	var sawCancel bool
	for _, e := range pub.Events {
		if e.Type == events.EventTypeOrderCancelled {
			sawCancel = true
		}
	}
	if !sawCancel {
		t.Error("Expected order cancelled event to be published")
	}
}

func TestRecordRefund_PartialKeepsOrderStatus(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())
	seedOrder(repo, money.New(100))

	if _, err := svc.RecordPayment(context.Background(), "ord-1", paymentReq(ledger.TransferFull, money.New(100))); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	order, err := svc.RecordRefund(context.Background(), &models.RefundRequest{
		OrderID: "ord-1",
		Amount:  money.New(30),
		Reason:  "one item returned",
	})
	if err != nil {
		t.Fatalf("RecordRefund: %v", err)
	}
	if order.PaymentStatus != ledger.StatusPartial {
		t.Errorf("Expected partial after partial refund, got %s", order.PaymentStatus)
	}
	if order.Status != models.OrderStatusConfirmed {
		t.Errorf("Expected order status untouched, got %s", order.Status)
	}
}

func TestRecordRefund_RequiresReason(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())
	seedOrder(repo, money.New(100))

	if _, err := svc.RecordPayment(context.Background(), "ord-1", paymentReq(ledger.TransferFull, money.New(100))); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	_, err := svc.RecordRefund(context.Background(), &models.RefundRequest{
		OrderID: "ord-1",
		Amount:  money.New(30),
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestRecordRefund_ReasonTooLong(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())
	seedOrder(repo, money.New(100))

	if _, err := svc.RecordPayment(context.Background(), "ord-1", paymentReq(ledger.TransferFull, money.New(100))); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}

	_, err := svc.RecordRefund(context.Background(), &models.RefundRequest{
		OrderID: "ord-1",
		Amount:  money.New(30),
		Reason:  strings.Repeat("x", 501),
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if len(repo.events["ord-1"]) != 1 {
		t.Errorf("Expected ledger untouched, got %d events", len(repo.events["ord-1"]))
	}
}

func TestRecordRefund_RejectedWithoutPayments(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())
	seedOrder(repo, money.New(100))

	_, err := svc.RecordRefund(context.Background(), &models.RefundRequest{
		OrderID: "ord-1",
		Full:    true,
		Reason:  "customer changed mind",
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestUpdateOrder_InvalidTransition(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())
	order := seedOrder(repo, money.New(100))
	order.Status = models.OrderStatusDelivered
	repo.orders[order.ID] = order

	status := models.OrderStatusPending
	_, err := svc.UpdateOrder(context.Background(), "ord-1", &models.UpdateOrderRequest{Status: &status})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestCreateOrder_ComputesTotals(t *testing.T) {
	repo := newMemOrderRepo()
	pub := events.NewMockPublisher()
	svc := newTestOrderService(repo, pub)

	order, err := svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		CustomerName:    "Marta Ruiz",
		CustomerEmail:   "marta@example.com",
		ShippingAddress: "Calle Mayor 3, Madrid",
		Items: []models.OrderItem{
			{ProductID: "p1", ProductName: "Rocking horse", Quantity: 2, UnitPrice: money.New(31.70)},
			{ProductID: "p2", ProductName: "Stacking tower", Quantity: 1, UnitPrice: money.New(14.60)},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.TotalAmount.Float() != 78.00 {
		t.Errorf("Expected total 78.00, got %s", order.TotalAmount)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("Expected pending, got %s", order.Status)
	}
	if order.PaymentStatus != ledger.StatusPending {
		t.Errorf("Expected payment pending, got %s", order.PaymentStatus)
	}
	if len(pub.Events) != 1 || pub.Events[0].Type != events.EventTypeOrderCreated {
		t.Errorf("Expected one order created event, got %v", pub.Events)
	}
}

func TestCreateOrder_Validation(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())

	tests := []struct {
		name string
		req  models.CreateOrderRequest
	}{
		{
			name: "missing customer name",
			req: models.CreateOrderRequest{
				CustomerEmail:   "a@example.com",
				ShippingAddress: "somewhere",
				Items:           []models.OrderItem{{ProductID: "p1", Quantity: 1, UnitPrice: money.New(5)}},
			},
		},
		{
			name: "bad email",
			req: models.CreateOrderRequest{
				CustomerName:    "Ana",
				CustomerEmail:   "not-an-email",
				ShippingAddress: "somewhere",
				Items:           []models.OrderItem{{ProductID: "p1", Quantity: 1, UnitPrice: money.New(5)}},
			},
		},
		{
			name: "no items",
			req: models.CreateOrderRequest{
				CustomerName:    "Ana",
				CustomerEmail:   "ana@example.com",
				ShippingAddress: "somewhere",
			},
		},
		{
			name: "zero quantity",
			req: models.CreateOrderRequest{
				CustomerName:    "Ana",
				CustomerEmail:   "ana@example.com",
				ShippingAddress: "somewhere",
				Items:           []models.OrderItem{{ProductID: "p1", Quantity: 0, UnitPrice: money.New(5)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateOrder(context.Background(), &tt.req); !apperrors.IsValidation(err) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestRefundStatus(t *testing.T) {
	repo := newMemOrderRepo()
	svc := newTestOrderService(repo, events.NewMockPublisher())
	seedOrder(repo, money.New(100))

	if _, err := svc.RecordPayment(context.Background(), "ord-1", paymentReq(ledger.TransferFull, money.New(100))); err != nil {
		t.Fatalf("RecordPayment: %v", err)
	}
	if _, err := svc.RecordRefund(context.Background(), &models.RefundRequest{
		OrderID: "ord-1", Amount: money.New(25), Reason: "partial return",
	}); err != nil {
		t.Fatalf("RecordRefund: %v", err)
	}

	status, err := svc.RefundStatus(context.Background(), "ord-1")
	if err != nil {
		t.Fatalf("RefundStatus: %v", err)
	}
	if status.Paid.Float() != 100 {
		t.Errorf("Expected paid 100, got %s", status.Paid)
	}
	if status.Refunded.Float() != 25 {
		t.Errorf("Expected refunded 25, got %s", status.Refunded)
	}
	if status.Net.Float() != 75 {
		t.Errorf("Expected net 75, got %s", status.Net)
	}
	if len(status.Events) != 2 {
		t.Errorf("Expected 2 events, got %d", len(status.Events))
	}
}
