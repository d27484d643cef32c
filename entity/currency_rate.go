package entity

// CurrencyRate is one stored conversion rate from the store's primary
// currency to the named currency.
type CurrencyRate struct {
	Code string  `json:"code" bson:"code"`
	Rate float64 `json:"rate" bson:"rate"`
}
