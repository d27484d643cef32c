package entity

// GatewaySettings is the merchant-side gateway configuration. It is loaded
// once per checkout attempt from the settings store (with a config-file
// fallback) and never mutated by the payment flow.
type GatewaySettings struct {
	MerchantNumber          string  `json:"merchant_number" bson:"merchant_number"`
	DealerEmail             string  `json:"dealer_email" bson:"dealer_email"`
	SecretKey               string  `json:"secret_key" bson:"secret_key"`
	UseSandbox              bool    `json:"use_sandbox" bson:"use_sandbox"`
	EnableEpay              bool    `json:"enable_epay" bson:"enable_epay"`
	EnableEasyPay           bool    `json:"enable_easypay" bson:"enable_easypay"`
	ExpiryDays              int     `json:"expiry_days" bson:"expiry_days"`
	AdditionalFee           float64 `json:"additional_fee" bson:"additional_fee"`
	AdditionalFeePercentage bool    `json:"additional_fee_percentage" bson:"additional_fee_percentage"`
	// Language of the customer-facing gateway page, "bg" or "en"
	Language string `json:"language" bson:"language"`
	// Base URL of the store, used to build return and cancel URLs
	StoreUrl string `json:"store_url" bson:"store_url"`
	// Description prefix for the payment, followed by the order id
	OrderDescription string `json:"order_description" bson:"order_description"`
}
