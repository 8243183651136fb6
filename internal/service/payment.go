package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"streamaccts/internal/client"
	"streamaccts/internal/dto"
	"streamaccts/internal/model"
	"streamaccts/internal/pricing"
)

var ErrProviderNotConfigured = errors.New("payment provider not configured")

type PaymentService interface {
	CreateStripeIntent(ctx context.Context, caller *model.Identity, amount decimal.Decimal) (*dto.StripeIntentResponse, error)
	CreatePaypalOrder(ctx context.Context, caller *model.Identity, amount decimal.Decimal) (*dto.PaypalOrderResponse, error)
	CapturePaypalOrder(ctx context.Context, orderID string) (*dto.PaypalCaptureResponse, error)
	BraintreeClientToken(ctx context.Context) (string, error)
	BraintreeCheckout(ctx context.Context, caller *model.Identity, req dto.BraintreeCheckoutRequest) (*dto.BraintreeCheckoutResponse, error)
	Fees(amount decimal.Decimal) (pricing.Comparison, error)
}

type paymentServiceImpl struct {
	stripeClient    client.StripeClient
	paypalClient    client.PaypalClient
	braintreeClient client.BraintreeClient
	now             func() time.Time
	log             logrus.FieldLogger
}

// NewPaymentService takes nil for any provider that is not configured.
// PayPal then answers with demo order ids.
func NewPaymentService(
	stripeClient client.StripeClient,
	paypalClient client.PaypalClient,
	braintreeClient client.BraintreeClient,
	log logrus.FieldLogger,
) PaymentService {
	return &paymentServiceImpl{
		stripeClient:    stripeClient,
		paypalClient:    paypalClient,
		braintreeClient: braintreeClient,
		now:             time.Now,
		log:             log,
	}
}

func validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return Invalid("Invalid amount")
	}
	return nil
}

func (s *paymentServiceImpl) CreateStripeIntent(ctx context.Context, caller *model.Identity, amount decimal.Decimal) (*dto.StripeIntentResponse, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}
	if s.stripeClient == nil {
		return nil, fmt.Errorf("stripe: %w", ErrProviderNotConfigured)
	}

	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	intent, err := s.stripeClient.CreatePaymentIntent(ctx, cents, map[string]string{
		"userId": caller.UID,
	})
	if err != nil {
		return nil, err
	}

	return &dto.StripeIntentResponse{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
	}, nil
}

func (s *paymentServiceImpl) CreatePaypalOrder(ctx context.Context, caller *model.Identity, amount decimal.Decimal) (*dto.PaypalOrderResponse, error) {
	if err := validAmount(amount); err != nil {
		return nil, err
	}

	if s.paypalClient == nil {
		s.log.WithField("user_id", caller.UID).Debug("paypal not configured, returning demo order id")
		return &dto.PaypalOrderResponse{
			OrderID: fmt.Sprintf("paypal_%d", s.now().UnixMilli()),
			Demo:    true,
		}, nil
	}

	resp, err := s.paypalClient.CreateOrder(ctx, amount, caller.UID)
	if err != nil {
		return nil, err
	}

	return &dto.PaypalOrderResponse{
		OrderID:    resp.OrderID,
		ApproveURL: resp.ApproveURL,
	}, nil
}

func (s *paymentServiceImpl) CapturePaypalOrder(ctx context.Context, orderID string) (*dto.PaypalCaptureResponse, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, Invalid("orderID is required")
	}

	if s.paypalClient == nil {
		if strings.HasPrefix(orderID, "paypal_") {
			return &dto.PaypalCaptureResponse{OrderID: orderID, Status: "COMPLETED"}, nil
		}
		return nil, fmt.Errorf("paypal: %w", ErrProviderNotConfigured)
	}

	result, err := s.paypalClient.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	return &dto.PaypalCaptureResponse{
		OrderID:    result.ID,
		Status:     result.Status,
		PayerEmail: result.Payer.Email,
	}, nil
}

func (s *paymentServiceImpl) BraintreeClientToken(ctx context.Context) (string, error) {
	if s.braintreeClient == nil {
		return "", fmt.Errorf("braintree: %w", ErrProviderNotConfigured)
	}
	return s.braintreeClient.GenerateClientToken(ctx)
}

func (s *paymentServiceImpl) BraintreeCheckout(ctx context.Context, caller *model.Identity, req dto.BraintreeCheckoutRequest) (*dto.BraintreeCheckoutResponse, error) {
	if strings.TrimSpace(req.Nonce) == "" {
		return nil, Invalid("nonce is required")
	}
	if err := validAmount(req.Amount); err != nil {
		return nil, err
	}
	if s.braintreeClient == nil {
		return nil, fmt.Errorf("braintree: %w", ErrProviderNotConfigured)
	}

	txID, err := s.braintreeClient.ChargeNonce(ctx, req.Nonce, req.Amount, caller.UID)
	if err != nil {
		return nil, err
	}

	return &dto.BraintreeCheckoutResponse{
		TransactionID: txID,
		PaymentMethod: string(model.PaymentMethodPaypal),
	}, nil
}

func (s *paymentServiceImpl) Fees(amount decimal.Decimal) (pricing.Comparison, error) {
	if amount.IsNegative() {
		return pricing.Comparison{}, Invalid("Invalid amount")
	}
	return pricing.Compare(amount), nil
}
