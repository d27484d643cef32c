package services

import (
	"context"

	"epaygate/entity"
)

// Payments is the checkout surface used by the HTTP server.
type Payments interface {
	Checkout(ctx context.Context, orderId int) (*entity.CheckoutResult, error)
	Notify(ctx context.Context, data []byte) (string, error)
	SetPaymentChoice(ctx context.Context, customerId string, choice entity.PaymentChoice) error
}

// PaymentMethod is the host payment-method contract. Process reserves the
// order in Pending state, PostProcess runs the gateway flow. Capture, Refund,
// Void and recurring payments are not supported by this gateway and return
// ErrNotSupported.
type PaymentMethod interface {
	Process(ctx context.Context, orderId int) (entity.OrderStatus, error)
	PostProcess(ctx context.Context, orderId int) (*entity.CheckoutResult, error)
	Capture(ctx context.Context, orderId int) error
	Refund(ctx context.Context, orderId int) error
	Void(ctx context.Context, orderId int) error

	// AdditionalFee returns the handling fee for the given order total,
	// either a fixed amount or a percentage per gateway settings.
	AdditionalFee(ctx context.Context, total float64) (float64, error)
	// CanRePost reports whether a placed order may re-enter the flow.
	CanRePost(order *entity.Order) bool
}
