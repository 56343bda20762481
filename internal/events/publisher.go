package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/mimos-de-madera/backoffice-service/internal/config"
	"github.com/mimos-de-madera/backoffice-service/internal/ledger"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
)

// EventType represents the type of order event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderCancelled     EventType = "order.cancelled"
	EventTypePaymentRecorded    EventType = "order.payment_recorded"
	EventTypePaymentRefunded    EventType = "order.payment_refunded"
)

// OrderEvent represents an order-related event.
type OrderEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher publishes order events to downstream consumers.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
	PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error
	PublishPaymentEvent(ctx context.Context, order *models.Order, event ledger.Event) error
	Close() error
}

// KafkaPublisher publishes order events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logging.Logger
}

var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{writer: writer, logger: logger}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderCreated, order.ID, data))
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	payload := struct {
		Order          *models.Order      `json:"order"`
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
	}{order, previousStatus, order.Status}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderStatusChanged, order.ID, data))
}

// PublishOrderCancelled publishes an order cancellation event.
func (p *KafkaPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	payload := struct {
		Order  *models.Order `json:"order"`
		Reason string        `json:"reason"`
	}{order, reason}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeOrderCancelled, order.ID, data))
}

// PublishPaymentEvent publishes a ledger event together with the order's
// recomputed payment position.
func (p *KafkaPublisher) PublishPaymentEvent(ctx context.Context, order *models.Order, event ledger.Event) error {
	eventType := EventTypePaymentRecorded
	if event.Kind.IsRefund() {
		eventType = EventTypePaymentRefunded
	}

	payload := struct {
		Event         ledger.Event         `json:"event"`
		PaymentStatus ledger.PaymentStatus `json:"payment_status"`
		PaymentAmount string               `json:"payment_amount"`
	}{event, order.PaymentStatus, order.PaymentAmount.String()}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(eventType, order.ID, data))
}

func newEvent(eventType EventType, orderID string, data []byte) *OrderEvent {
	return &OrderEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		OrderID:   orderID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
	})
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// MockPublisher records events in memory for tests.
type MockPublisher struct {
	Events []*OrderEvent
}

var _ Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates an in-memory publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]*OrderEvent, 0)}
}

func (m *MockPublisher) record(eventType EventType, orderID string) error {
	m.Events = append(m.Events, &OrderEvent{Type: eventType, OrderID: orderID})
	return nil
}

func (m *MockPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	return m.record(EventTypeOrderCreated, order.ID)
}

func (m *MockPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	return m.record(EventTypeOrderStatusChanged, order.ID)
}

func (m *MockPublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	return m.record(EventTypeOrderCancelled, order.ID)
}

func (m *MockPublisher) PublishPaymentEvent(ctx context.Context, order *models.Order, event ledger.Event) error {
	if event.Kind.IsRefund() {
		return m.record(EventTypePaymentRefunded, order.ID)
	}
	return m.record(EventTypePaymentRecorded, order.ID)
}

func (m *MockPublisher) Close() error { return nil }
