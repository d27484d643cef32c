package services

import "context"

// Currency converts amounts from the store's primary currency. The conversion
// math itself lives behind this interface; the payment flow only requires that
// conversion happens before rounding.
type Currency interface {
	ConvertFromPrimary(ctx context.Context, amount float64, code string) (float64, error)
}
