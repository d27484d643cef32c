package internal

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"epaygate/entity"
	"epaygate/services"
)

const (
	// settlement currency required by the gateway
	settlementCurrency = "BGN"
	// text encoding tag carried inside the payload
	payloadEncoding = "cp1251"
	// dd.MM.yyyy
	expiryFormat = "02.01.2006"
)

// RequestBuilder assembles the canonical payment-request block for one order
// and produces the signed package. One builder serves one checkout attempt;
// it borrows the settings read-only.
type RequestBuilder struct {
	settings *entity.GatewaySettings
	currency services.Currency
	signer   *Signer
	now      func() time.Time
}

func NewRequestBuilder(settings *entity.GatewaySettings, currency services.Currency) *RequestBuilder {
	return &RequestBuilder{
		settings: settings,
		currency: currency,
		signer:   NewSigner(settings.SecretKey),
		now:      time.Now,
	}
}

// Build creates the request value for an order. Configuration problems are
// surfaced here, before any encoding or network activity. The order total is
// converted to the settlement currency first and rounded after; the reverse
// order would accumulate double-rounding drift.
func (b *RequestBuilder) Build(ctx context.Context, order *entity.Order) (*entity.PaymentRequest, error) {
	if !b.settings.EnableEpay && !b.settings.EnableEasyPay {
		return nil, &ConfigError{Reason: "no payment flow enabled"}
	}
	if b.settings.SecretKey == "" {
		return nil, &ConfigError{Reason: "missing secret key"}
	}

	total, err := b.currency.ConvertFromPrimary(ctx, order.Total, settlementCurrency)
	if err != nil {
		return nil, fmt.Errorf("convert order total: %w", err)
	}
	amount := roundAmount(total)

	days := b.settings.ExpiryDays
	if days < 1 {
		days = 1
	}
	today := b.now()
	expiry := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location()).AddDate(0, 0, days)

	return &entity.PaymentRequest{
		MerchantNumber: b.settings.MerchantNumber,
		DealerEmail:    b.settings.DealerEmail,
		Invoice:        order.Id,
		Amount:         amount,
		ExpiryDate:     expiry,
		Description:    b.settings.OrderDescription + strconv.Itoa(order.Id),
		Encoding:       payloadEncoding,
		Currency:       settlementCurrency,
	}, nil
}

// Payload renders the multi-line key=value block in the fixed field order the
// gateway expects. The amount always carries two decimals with an invariant
// decimal point.
func (b *RequestBuilder) Payload(request *entity.PaymentRequest) string {
	fields := []string{
		"min=" + request.MerchantNumber,
		"email=" + request.DealerEmail,
		"invoice=" + strconv.Itoa(request.Invoice),
		"amount=" + strconv.FormatFloat(request.Amount, 'f', 2, 64),
		"exp_time=" + request.ExpiryDate.Format(expiryFormat),
		"descr=" + request.Description,
		"encoding=" + request.Encoding,
		"currency=" + request.Currency,
	}
	return strings.Join(fields, "\n")
}

// SignedPackage encodes and signs the request block. The checksum covers the
// Base64-encoded payload, never the raw text.
func (b *RequestBuilder) SignedPackage(request *entity.PaymentRequest) (*entity.SignedPackage, error) {
	raw, err := EncodeText(b.Payload(request))
	if err != nil {
		return nil, err
	}
	encoded := Base64Encode(raw)
	checksum, err := b.signer.Sign(encoded)
	if err != nil {
		return nil, err
	}
	return &entity.SignedPackage{Encoded: encoded, Checksum: checksum}, nil
}

// roundAmount rounds to 2 decimal places; idempotent on already-rounded values.
func roundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}
