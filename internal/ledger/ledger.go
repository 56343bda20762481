// Package ledger reconciles order payment balances from an append-only
// sequence of payment and refund events.
//
// The event list is the single source of truth: balances and the payment
// status are always folded from the full sequence, never kept as a separate
// running counter that could drift from the history.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
)

// EventKind identifies the type of a payment event.
type EventKind string

const (
	TransferFull    EventKind = "transfer_full"
	TransferPartial EventKind = "transfer_partial"
	ManualPayment   EventKind = "manual_payment"
	RefundFull      EventKind = "refund_full"
	RefundPartial   EventKind = "refund_partial"
)

// IsRefund reports whether the kind reduces the paid balance.
func (k EventKind) IsRefund() bool {
	return k == RefundFull || k == RefundPartial
}

// IsPayment reports whether the kind increases the paid balance.
func (k EventKind) IsPayment() bool {
	return k == TransferFull || k == TransferPartial || k == ManualPayment
}

// Valid reports whether the kind is one of the known event kinds.
func (k EventKind) Valid() bool {
	return k.IsRefund() || k.IsPayment()
}

// Event is a single entry in an order's payment ledger. Events are appended
// in occurrence order and never mutated or deleted.
type Event struct {
	ID         string      `json:"id"`
	Kind       EventKind   `json:"kind"`
	Amount     money.Money `json:"amount"`
	OccurredOn time.Time   `json:"occurred_on"`
	Reference  string      `json:"reference,omitempty"`
	Notes      string      `json:"notes,omitempty"`
}

// PaymentStatus is the derived payment state of an order.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusPartial   PaymentStatus = "partial"
	StatusSucceeded PaymentStatus = "succeeded"
	StatusFailed    PaymentStatus = "failed"
	StatusRefunded  PaymentStatus = "refunded"
)

// State is an order's payment position: the amount owed, the ledger, and
// the status derived from it. StatusFailed is never derived here; it can
// only be set by an external gateway update and survives until the next
// event is appended.
type State struct {
	TotalAmount money.Money   `json:"total_amount"`
	Events      []Event       `json:"events"`
	Status      PaymentStatus `json:"status"`
}

// NewState returns an empty ledger for an order total.
func NewState(total money.Money) State {
	return State{TotalAmount: total, Status: StatusPending}
}

// Balance is the folded position of a ledger.
type Balance struct {
	Paid          money.Money // sum of payment-kind amounts
	Refunded      money.Money // sum of refund-kind amounts
	Net           money.Money // Paid - Refunded
	Pending       money.Money // remaining to collect, floored at zero
	FullyRefunded bool        // a refund_full covering the whole total occurred
}

// ValidateEvent checks the invariants an event must satisfy before it may
// be appended.
func ValidateEvent(e Event) error {
	if !e.Kind.Valid() {
		return apperrors.NewValidationError("kind", fmt.Sprintf("unknown payment event kind %q", e.Kind))
	}
	if !e.Amount.IsPositive() {
		return apperrors.NewValidationError("amount", "amount must be greater than zero")
	}
	if e.Kind.IsPayment() && e.OccurredOn.IsZero() {
		return apperrors.NewValidationError("occurred_on", "payment date is required")
	}
	if e.Kind.IsRefund() && strings.TrimSpace(e.Notes) == "" {
		return apperrors.NewValidationError("notes", "refund reason is required")
	}
	return nil
}

// Balance folds the full event sequence into the current position.
func (s State) Balance() Balance {
	b := Balance{Paid: money.Zero, Refunded: money.Zero}
	for _, e := range s.Events {
		switch {
		case e.Kind.IsPayment():
			b.Paid = b.Paid.Add(e.Amount)
		case e.Kind.IsRefund():
			b.Refunded = b.Refunded.Add(e.Amount)
			if e.Kind == RefundFull && e.Amount.Equal(s.TotalAmount) {
				b.FullyRefunded = true
			}
		}
	}
	b.Net = b.Paid.Sub(b.Refunded)

	b.Pending = s.TotalAmount.Sub(b.Net)
	if b.Pending.IsNegative() {
		b.Pending = money.Zero
	}
	return b
}

// DeriveStatus computes the payment status from a folded balance.
func DeriveStatus(total money.Money, b Balance) PaymentStatus {
	switch {
	case b.FullyRefunded && !b.Net.IsPositive():
		return StatusRefunded
	case b.Net.GreaterThanOrEqual(total) && b.Net.IsPositive():
		return StatusSucceeded
	case b.Net.IsPositive():
		return StatusPartial
	default:
		return StatusPending
	}
}

// AppendResult carries the outcome of appending an event.
type AppendResult struct {
	State State
	// CancelsOrder is set when the event is a full refund covering the
	// whole order total; the order itself must move to cancelled. Partial
	// refunds leave the order status untouched.
	CancelsOrder bool
}

// Append validates the event, appends it and recomputes the status by
// folding the whole sequence. The receiver is not modified; on validation
// failure the returned error carries the field and the ledger is unchanged.
func (s State) Append(e Event) (AppendResult, error) {
	if err := ValidateEvent(e); err != nil {
		return AppendResult{}, err
	}

	next := State{TotalAmount: s.TotalAmount}
	next.Events = make([]Event, 0, len(s.Events)+1)
	next.Events = append(next.Events, s.Events...)
	next.Events = append(next.Events, e)
	next.Status = DeriveStatus(next.TotalAmount, next.Balance())

	cancels := e.Kind == RefundFull && e.Amount.Equal(s.TotalAmount)
	return AppendResult{State: next, CancelsOrder: cancels}, nil
}

// Replay rebuilds a state from scratch by appending every event in order.
// Invalid events abort the replay.
func Replay(total money.Money, events []Event) (State, error) {
	s := NewState(total)
	for i, e := range events {
		res, err := s.Append(e)
		if err != nil {
			return State{}, fmt.Errorf("event %d: %w", i, err)
		}
		s = res.State
	}
	return s, nil
}

// Overpaid reports whether the net paid amount exceeds the order total.
// Overpayment is allowed and still derives succeeded; this helper exists so
// a caller can surface it.
func (s State) Overpaid() bool {
	return s.Balance().Net.Cmp(s.TotalAmount) > 0
}

var kindLabels = map[EventKind]string{
	TransferFull:    "full transfer",
	TransferPartial: "partial transfer",
	ManualPayment:   "manual payment",
	RefundFull:      "full refund",
	RefundPartial:   "partial refund",
}

// DisplayNotes renders the ledger as the human-readable payment notes shown
// in the dashboard. The string is derived from the events and is never
// parsed back.
func (s State) DisplayNotes() string {
	if len(s.Events) == 0 {
		return ""
	}

	lines := make([]string, 0, len(s.Events))
	for _, e := range s.Events {
		var sb strings.Builder
		if !e.OccurredOn.IsZero() {
			sb.WriteString(e.OccurredOn.Format("02/01/2006"))
			sb.WriteString(" ")
		}
		sb.WriteString(kindLabels[e.Kind])
		sb.WriteString(" ")
		sb.WriteString(e.Amount.String())
		sb.WriteString(" EUR")
		if e.Reference != "" {
			sb.WriteString(" (ref: " + e.Reference + ")")
		}
		if e.Notes != "" {
			sb.WriteString(": " + e.Notes)
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
