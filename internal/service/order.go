package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"streamaccts/internal/dto"
	"streamaccts/internal/events"
	"streamaccts/internal/model"
	"streamaccts/internal/repository"
)

type OrderService interface {
	Create(ctx context.Context, caller *model.Identity, req dto.CreateOrderRequest) (*model.Order, error)
	ListForUser(ctx context.Context, caller *model.Identity, userID string) ([]*model.Order, error)
	Get(ctx context.Context, caller *model.Identity, orderID string) (*model.Order, error)
	ListAll(ctx context.Context) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, orderID string, status string) error
	SetAdminResponse(ctx context.Context, orderID string, response string) error
	SetUserMessage(ctx context.Context, caller *model.Identity, orderID string, message string) error
}

type orderServiceImpl struct {
	orderRepo repository.OrderRepository
	publisher events.Publisher
	log       logrus.FieldLogger
}

func NewOrderService(orderRepo repository.OrderRepository, publisher events.Publisher, log logrus.FieldLogger) OrderService {
	return &orderServiceImpl{
		orderRepo: orderRepo,
		publisher: publisher,
		log:       log,
	}
}

// Create records an order whose payment the provider already confirmed, so
// it starts at paid. Stock is taken off every line, clamped at zero.
func (s *orderServiceImpl) Create(ctx context.Context, caller *model.Identity, req dto.CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, Invalid("Invalid items")
	}
	for _, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" || item.Quantity <= 0 {
			return nil, Invalid("Invalid items")
		}
	}
	if req.TotalAmount <= 0 {
		return nil, Invalid("Invalid total amount")
	}
	method := model.PaymentMethod(req.PaymentMethod)
	if !method.Valid() {
		return nil, Invalid("Invalid payment method")
	}

	now := time.Now()
	order := &model.Order{
		ID:            uuid.NewString(),
		UserID:        caller.UID,
		UserEmail:     caller.Email,
		Items:         req.Items,
		TotalAmount:   req.TotalAmount,
		Status:        model.OrderStatusPaid,
		PaymentMethod: method,
		PaymentID:     req.PaymentID,
		UserMessage:   req.UserMessage,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if order.TotalMismatch() {
		s.log.WithFields(logrus.Fields{
			"order_id":     order.ID,
			"total_amount": order.TotalAmount,
			"items_total":  order.ItemsTotal().StringFixed(2),
		}).Warn("order total does not match its items")
	}

	if err := s.orderRepo.Create(ctx, order, order.StockDecrements()); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publish(ctx, events.OrderCreated, order)
	return order, nil
}

func (s *orderServiceImpl) ListForUser(ctx context.Context, caller *model.Identity, userID string) ([]*model.Order, error) {
	if caller.UID != userID && !caller.IsAdmin {
		return nil, ErrAccessDenied
	}

	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}
	return nonNil(orders), nil
}

func (s *orderServiceImpl) Get(ctx context.Context, caller *model.Identity, orderID string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, notFoundAs(err, "Order", "find order")
	}

	if order.UserID != caller.UID && !caller.IsAdmin {
		return nil, ErrAccessDenied
	}
	return order, nil
}

func (s *orderServiceImpl) ListAll(ctx context.Context) ([]*model.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return nonNil(orders), nil
}

// UpdateStatus allows any transition, only membership in the status set is
// checked.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID string, status string) error {
	next := model.OrderStatus(status)
	if !next.Valid() {
		return Invalid("Invalid status")
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, next); err != nil {
		return notFoundAs(err, "Order", "update order status")
	}

	if order, err := s.orderRepo.FindByID(ctx, orderID); err == nil {
		s.publish(ctx, events.OrderStatusChanged, order)
	}
	return nil
}

func (s *orderServiceImpl) SetAdminResponse(ctx context.Context, orderID string, response string) error {
	if err := s.orderRepo.SetAdminResponse(ctx, orderID, response); err != nil {
		return notFoundAs(err, "Order", "set admin response")
	}
	return nil
}

// SetUserMessage is reserved to the order owner, admins included.
func (s *orderServiceImpl) SetUserMessage(ctx context.Context, caller *model.Identity, orderID string, message string) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return notFoundAs(err, "Order", "find order")
	}
	if order.UserID != caller.UID {
		return ErrAccessDenied
	}

	if err := s.orderRepo.SetUserMessage(ctx, orderID, message); err != nil {
		return notFoundAs(err, "Order", "set user message")
	}
	return nil
}

func (s *orderServiceImpl) publish(ctx context.Context, eventType string, order *model.Order) {
	if err := s.publisher.PublishOrderEvent(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("publish order event")
	}
}

func nonNil(orders []*model.Order) []*model.Order {
	if orders == nil {
		return []*model.Order{}
	}
	return orders
}
