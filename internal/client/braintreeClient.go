package client

import (
	"context"
	"fmt"

	"github.com/braintree-go/braintree-go"
	"github.com/shopspring/decimal"

	"streamaccts/internal/config"
)

type BraintreeClient interface {
	// GenerateClientToken returns the token the drop-in UI needs to tokenize a PayPal account
	GenerateClientToken(ctx context.Context) (string, error)

	// ChargeNonce settles a one-time payment from a frontend nonce
	ChargeNonce(ctx context.Context, nonce string, amount decimal.Decimal, orderRef string) (string, error)
}

type braintreeClientImpl struct {
	gateway *braintree.Braintree
}

func NewBraintreeClient(cfg *config.Braintree) BraintreeClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &braintreeClientImpl{
		gateway: gateway,
	}
}

func (c *braintreeClientImpl) GenerateClientToken(ctx context.Context) (string, error) {
	token, err := c.gateway.ClientToken().Generate(ctx)
	if err != nil {
		return "", fmt.Errorf("generate client token: %w", err)
	}
	return token, nil
}

func (c *braintreeClientImpl) ChargeNonce(ctx context.Context, nonce string, amount decimal.Decimal, orderRef string) (string, error) {
	// braintree.NewDecimal(unscaled, scale): 12.99 -> NewDecimal(1299, 2)
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	req := &braintree.TransactionRequest{
		Type:               "sale",
		Amount:             braintree.NewDecimal(cents, 2),
		PaymentMethodNonce: nonce,
		OrderId:            orderRef,
		Options: &braintree.TransactionOptions{
			SubmitForSettlement: true,
		},
	}

	tx, err := c.gateway.Transaction().Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transaction creation failed: %w", err)
	}

	if tx.Status == braintree.TransactionStatusProcessorDeclined {
		return "", fmt.Errorf("transaction declined by processor: %s", tx.ProcessorResponseText)
	}

	return tx.Id, nil
}
