package events

import (
	"context"
	"time"

	"streamaccts/internal/model"
)

const (
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status_changed"
	OrderFulfilled     = "order.fulfilled"
)

type OrderEvent struct {
	Type          string              `json:"type"`
	OrderID       string              `json:"order_id"`
	UserID        string              `json:"user_id"`
	Status        model.OrderStatus   `json:"status"`
	PaymentMethod model.PaymentMethod `json:"payment_method,omitempty"`
	TotalAmount   float64             `json:"total_amount"`
	EventTime     time.Time           `json:"event_time"`
}

func NewOrderEvent(eventType string, order *model.Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		TotalAmount:   order.TotalAmount,
	}
}

// Publisher announces order lifecycle changes. Delivery is best effort.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
	Close() error
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error { return nil }
func (noopPublisher) Close() error                                                { return nil }
