package entity

// PaymentChoice is the customer's stored selection between the two gateway
// flows. An empty or unknown value never falls through to a financial flow;
// the checkout fails instead.
type PaymentChoice string

const (
	// ChoiceNone means the customer has not picked a payment type yet
	ChoiceNone PaymentChoice = ""
	// ChoiceEpay is the interactive flow on the gateway's hosted page
	ChoiceEpay PaymentChoice = "epay"
	// ChoiceEasyPay is the synchronous flow that issues an offline payment code
	ChoiceEasyPay PaymentChoice = "easypay"
)

// Valid reports whether the choice names one of the two supported flows.
func (c PaymentChoice) Valid() bool {
	return c == ChoiceEpay || c == ChoiceEasyPay
}
