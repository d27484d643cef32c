package internal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"epaygate/entity"
)

// fixedCurrency answers every conversion with one value.
type fixedCurrency struct {
	value float64
}

func (c fixedCurrency) ConvertFromPrimary(_ context.Context, _ float64, _ string) (float64, error) {
	return c.value, nil
}

// passthroughCurrency leaves amounts unchanged.
type passthroughCurrency struct{}

func (passthroughCurrency) ConvertFromPrimary(_ context.Context, amount float64, _ string) (float64, error) {
	return amount, nil
}

func testSettings() *entity.GatewaySettings {
	return &entity.GatewaySettings{
		MerchantNumber:   "1234567",
		DealerEmail:      "dealer@example.com",
		SecretKey:        "SECRET",
		UseSandbox:       true,
		EnableEpay:       true,
		EnableEasyPay:    true,
		ExpiryDays:       3,
		StoreUrl:         "https://shop.example.com",
		OrderDescription: "Payment for order ",
	}
}

func TestBuilderBuild(t *testing.T) {
	order := &entity.Order{Id: 42, CustomerId: "c-1", Total: 19.999, Status: entity.OrderStatusPending}

	t.Run("ConversionThenRounding", func(t *testing.T) {
		builder := NewRequestBuilder(testSettings(), fixedCurrency{value: 39.1176})
		request, err := builder.Build(context.Background(), order)
		require.NoError(t, err)
		assert.Equal(t, 39.12, request.Amount)
		assert.Equal(t, "BGN", request.Currency)
		assert.Equal(t, "cp1251", request.Encoding)
		assert.Equal(t, 42, request.Invoice)
		assert.Equal(t, "Payment for order 42", request.Description)
	})

	t.Run("ExpiryConfiguredDays", func(t *testing.T) {
		builder := NewRequestBuilder(testSettings(), passthroughCurrency{})
		builder.now = func() time.Time { return time.Date(2026, 3, 15, 13, 45, 0, 0, time.UTC) }
		request, err := builder.Build(context.Background(), order)
		require.NoError(t, err)
		assert.Equal(t, "18.03.2026", request.ExpiryDate.Format(expiryFormat))
	})

	t.Run("ExpiryMinimumOneDay", func(t *testing.T) {
		settings := testSettings()
		settings.ExpiryDays = 0
		builder := NewRequestBuilder(settings, passthroughCurrency{})
		builder.now = func() time.Time { return time.Date(2026, 3, 15, 13, 45, 0, 0, time.UTC) }
		request, err := builder.Build(context.Background(), order)
		require.NoError(t, err)
		assert.Equal(t, "16.03.2026", request.ExpiryDate.Format(expiryFormat))
	})

	t.Run("NoFlowEnabled", func(t *testing.T) {
		settings := testSettings()
		settings.EnableEpay = false
		settings.EnableEasyPay = false
		builder := NewRequestBuilder(settings, passthroughCurrency{})
		_, err := builder.Build(context.Background(), order)
		var configErr *ConfigError
		assert.True(t, errors.As(err, &configErr))
	})

	t.Run("MissingSecretKey", func(t *testing.T) {
		settings := testSettings()
		settings.SecretKey = ""
		builder := NewRequestBuilder(settings, passthroughCurrency{})
		_, err := builder.Build(context.Background(), order)
		var configErr *ConfigError
		assert.True(t, errors.As(err, &configErr))
	})
}

func TestBuilderPayload(t *testing.T) {
	builder := NewRequestBuilder(testSettings(), fixedCurrency{value: 39.1176})
	builder.now = func() time.Time { return time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC) }

	order := &entity.Order{Id: 42, CustomerId: "c-1", Total: 19.999}
	request, err := builder.Build(context.Background(), order)
	require.NoError(t, err)

	payload := builder.Payload(request)
	lines := strings.Split(payload, "\n")
	require.Len(t, lines, 8)

	// the gateway signs the block in this exact field order
	assert.Equal(t, "min=1234567", lines[0])
	assert.Equal(t, "email=dealer@example.com", lines[1])
	assert.Equal(t, "invoice=42", lines[2])
	assert.Equal(t, "amount=39.12", lines[3])
	assert.Equal(t, "exp_time=18.03.2026", lines[4])
	assert.Equal(t, "descr=Payment for order 42", lines[5])
	assert.Equal(t, "encoding=cp1251", lines[6])
	assert.Equal(t, "currency=BGN", lines[7])
}

func TestBuilderSignedPackage(t *testing.T) {
	builder := NewRequestBuilder(testSettings(), fixedCurrency{value: 39.1176})
	order := &entity.Order{Id: 42, CustomerId: "c-1", Total: 19.999}

	request, err := builder.Build(context.Background(), order)
	require.NoError(t, err)
	pkg, err := builder.SignedPackage(request)
	require.NoError(t, err)

	// encoded payload unwraps to the canonical block
	raw, err := Base64Decode(pkg.Encoded)
	require.NoError(t, err)
	text, err := DecodeText(raw)
	require.NoError(t, err)
	assert.Equal(t, builder.Payload(request), text)

	// checksum covers the encoded payload and matches an independent
	// recomputation byte-for-byte
	assert.Equal(t, independentDigest(pkg.Encoded, "SECRET"), pkg.Checksum)
}

func TestRoundAmountIdempotent(t *testing.T) {
	values := []float64{0, 0.005, 19.999, 39.1176, 100.004999, 7.77}
	for _, v := range values {
		once := roundAmount(v)
		assert.Equal(t, once, roundAmount(once))
	}
}
