package services

import (
	"context"

	"epaygate/entity"
)

// Database is the storage consumed by the payment flow: order records,
// persisted gateway settings, customer payment choices and currency rates.
// The flow borrows everything read-only except the single order it processes.
type Database interface {
	WriteLogMessage(data Data) error

	GetOrder(ctx context.Context, id int) (*entity.Order, error)
	UpdateOrder(ctx context.Context, order *entity.Order) error

	GetPaymentChoice(ctx context.Context, customerId string) (entity.PaymentChoice, error)
	SavePaymentChoice(ctx context.Context, customerId string, choice entity.PaymentChoice) error

	GetGatewaySettings(ctx context.Context) (*entity.GatewaySettings, error)
	SaveGatewaySettings(ctx context.Context, settings *entity.GatewaySettings) error
	DeleteGatewaySettings(ctx context.Context) error

	GetCurrencyRate(ctx context.Context, code string) (float64, error)
}

type Data interface {
	DataType() string
}
