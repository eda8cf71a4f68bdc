package payment

import "context"

// CheckoutSession is the slice of the processor's session object this core
// consumes.
type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

// PaymentIntent carries the processor-side payment status.
type PaymentIntent struct {
	ID     string
	Status string
}

// PaymentIntentStatusSucceeded is the only status that results in credits.
const PaymentIntentStatusSucceeded = "succeeded"

// CheckoutParams describes a purchase to open a checkout session for.
type CheckoutParams struct {
	PlanID        string
	Amount        int64 // smallest currency unit
	Currency      string
	Credits       int
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Gateway abstracts the payment processor. The production implementation
// talks to Stripe; tests inject fakes.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	GetPaymentIntent(ctx context.Context, id string) (*PaymentIntent, error)
}
