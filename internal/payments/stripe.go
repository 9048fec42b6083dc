// Package payments wraps the Stripe API for checkout: payment intents
// created from server-computed totals in integer minor units, retrieved
// again before the order is written.
package payments

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
)

type Client struct {
	api *client.API
}

// New returns a disabled client when no secret key is configured; callers
// gate on Enabled before creating or retrieving intents.
func New(secretKey string) *Client {
	key := strings.TrimSpace(secretKey)
	if key == "" {
		return &Client{}
	}
	api := &client.API{}
	api.Init(key, nil)
	return &Client{api: api}
}

func (c *Client) Enabled() bool {
	return c != nil && c.api != nil
}

type IntentRequest struct {
	AmountCents int64
	Currency    string
	Description string
	// Metadata carries the itemized breakdown so a charge can be audited
	// against the pricing that produced it.
	Metadata map[string]string
}

// ErrDisabled is returned when no Stripe secret key is configured.
var ErrDisabled = errors.New("stripe is not configured")

func (c *Client) CreateIntent(ctx context.Context, req IntentRequest) (*stripe.PaymentIntent, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}
	params.SetIdempotencyKey(uuid.NewString())

	return c.api.PaymentIntents.New(params)
}

func (c *Client) GetIntent(ctx context.Context, id string) (*stripe.PaymentIntent, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	return c.api.PaymentIntents.Get(id, params)
}

// ToCents converts a dollar amount to Stripe's integer minor units.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// AmountsMatch compares the client's displayed total against the
// server-computed one. Anything beyond half a cent means the storefront and
// the pricing engine disagree and the charge must not go out.
func AmountsMatch(displayed, computed float64) bool {
	return math.Abs(displayed-computed) < 0.005
}
