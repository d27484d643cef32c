package entity

import "strings"

// DirectResponse is the parsed first line of a direct-flow gateway reply.
// Only the first newline-delimited line of the raw response carries meaning;
// the rest of the body is ignored.
type DirectResponse struct {
	Key  string `json:"key"`
	Code string `json:"code"`
}

// Success reports whether the gateway issued a payment code.
func (r DirectResponse) Success() bool {
	return strings.EqualFold(r.Key, "idn") && r.Code != ""
}

// CheckoutResult is the typed outcome of one checkout attempt. The HTTP
// handler turns RedirectURL into the actual redirect; the flow itself never
// touches the response writer.
type CheckoutResult struct {
	Flow        PaymentChoice `json:"flow"`
	RedirectURL string        `json:"redirect_url"`
	// Payment code issued by the direct flow, empty otherwise
	PaymentCode string `json:"payment_code,omitempty"`
	// Failed is set when the direct flow completed without a payment code
	Failed bool `json:"failed,omitempty"`
}
