package entity

import "time"

// PaymentRequest holds the fields of the canonical payment-request block sent
// to the gateway. The block is rendered in a fixed field order, transformed to
// the gateway code page, Base64-encoded and signed; the gateway recomputes the
// signature over the same bytes, so every field here must be deterministic.
type PaymentRequest struct {
	// Merchant (client) number assigned by the gateway
	MerchantNumber string
	// Dealer notification email
	DealerEmail string
	// Invoice number, the merchant order id
	Invoice int
	// Amount in the settlement currency, rounded to 2 decimal places
	Amount float64
	// Last calendar date the request may be paid, no time component
	ExpiryDate time.Time
	// Free-text description shown on the gateway page
	Description string
	// Text encoding tag of the payload, always "cp1251"
	Encoding string
	// Settlement currency code, always "BGN"
	Currency string
}

// SignedPackage is the (encoded payload, checksum) pair sent to the gateway.
type SignedPackage struct {
	// Base64 of the code-page-encoded payload block
	Encoded string
	// Uppercase hex HMAC digest computed over Encoded
	Checksum string
}
