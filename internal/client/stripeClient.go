package client

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	stripeapi "github.com/stripe/stripe-go/v76/client"

	"streamaccts/internal/config"
)

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

type StripeClient interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*PaymentIntent, error)
}

type stripeClientImpl struct {
	api      *stripeapi.API
	currency string
}

func NewStripeClient(cfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		api:      stripeapi.New(cfg.SecretKey, nil),
		currency: cfg.Currency,
	}
}

func (c *stripeClientImpl) CreatePaymentIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}

	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}
