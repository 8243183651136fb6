package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streamaccts/internal/client"
	"streamaccts/internal/dto"
	"streamaccts/internal/model"
)

type fakeStripe struct {
	cents    int64
	metadata map[string]string
}

func (f *fakeStripe) CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*client.PaymentIntent, error) {
	f.cents = amountCents
	f.metadata = metadata
	return &client.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil
}

type fakePaypal struct {
	amount decimal.Decimal
}

func (f *fakePaypal) CreateOrder(ctx context.Context, amount decimal.Decimal, referenceID string) (*client.CreateOrderResponse, error) {
	f.amount = amount
	return &client.CreateOrderResponse{OrderID: "5O190127TN364715T", ApproveURL: "https://paypal.test/approve"}, nil
}

func (f *fakePaypal) CaptureOrder(ctx context.Context, orderID string) (*model.PaypalResult, error) {
	return &model.PaypalResult{ID: orderID, Status: "COMPLETED", Payer: model.Payer{Email: "payer@example.com"}}, nil
}

func TestStripeIntentRoundsToCents(t *testing.T) {
	stripe := &fakeStripe{}
	svc := NewPaymentService(stripe, nil, nil, logrus.New())

	resp, err := svc.CreateStripeIntent(context.Background(), buyer, decimal.RequireFromString("19.995"))
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", resp.ClientSecret)
	assert.Equal(t, "pi_1", resp.PaymentIntentID)
	assert.EqualValues(t, 2000, stripe.cents)
	assert.Equal(t, "buyer", stripe.metadata["userId"])

	_, err = svc.CreateStripeIntent(context.Background(), buyer, decimal.Zero)
	assertKind(t, err, KindInvalid, "Invalid amount")
}

func TestProvidersNotConfigured(t *testing.T) {
	ctx := context.Background()
	svc := NewPaymentService(nil, nil, nil, logrus.New())

	_, err := svc.CreateStripeIntent(ctx, buyer, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, ErrProviderNotConfigured)

	_, err = svc.BraintreeClientToken(ctx)
	assert.ErrorIs(t, err, ErrProviderNotConfigured)

	_, err = svc.BraintreeCheckout(ctx, buyer, dto.BraintreeCheckoutRequest{Nonce: "fake-nonce", Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrProviderNotConfigured)

	_, err = svc.CapturePaypalOrder(ctx, "5O190127TN364715T")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestPaypalDemoMode(t *testing.T) {
	ctx := context.Background()
	svc := NewPaymentService(nil, nil, nil, logrus.New()).(*paymentServiceImpl)
	svc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	resp, err := svc.CreatePaypalOrder(ctx, buyer, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, "paypal_1700000000123", resp.OrderID)
	assert.True(t, resp.Demo)

	captured, err := svc.CapturePaypalOrder(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", captured.Status)

	_, err = svc.CreatePaypalOrder(ctx, buyer, decimal.NewFromInt(-1))
	assertKind(t, err, KindInvalid, "Invalid amount")
}

func TestPaypalConfigured(t *testing.T) {
	ctx := context.Background()
	paypal := &fakePaypal{}
	svc := NewPaymentService(nil, paypal, nil, logrus.New())

	resp, err := svc.CreatePaypalOrder(ctx, buyer, decimal.RequireFromString("31.98"))
	require.NoError(t, err)
	assert.Equal(t, "5O190127TN364715T", resp.OrderID)
	assert.Equal(t, "https://paypal.test/approve", resp.ApproveURL)
	assert.False(t, resp.Demo)
	assert.Equal(t, "31.98", paypal.amount.StringFixed(2))

	captured, err := svc.CapturePaypalOrder(ctx, resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "payer@example.com", captured.PayerEmail)

	_, err = svc.CapturePaypalOrder(ctx, "")
	assertKind(t, err, KindInvalid, "orderID is required")
}

func TestFees(t *testing.T) {
	svc := NewPaymentService(nil, nil, nil, logrus.New())

	cmp, err := svc.Fees(decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.NotEmpty(t, cmp.Methods)

	_, err = svc.Fees(decimal.NewFromInt(-5))
	assertKind(t, err, KindInvalid, "Invalid amount")
}
