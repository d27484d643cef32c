package internal

import (
	"context"
	"fmt"
	"strings"

	"epaygate/services"
)

// CurrencyRates converts amounts from the store's primary currency using
// rates from the database. When the target currency is the primary one the
// amount passes through unchanged.
type CurrencyRates struct {
	primary  string
	database services.Database
}

func NewCurrencyRates(primary string, database services.Database) *CurrencyRates {
	return &CurrencyRates{
		primary:  primary,
		database: database,
	}
}

func (c *CurrencyRates) ConvertFromPrimary(ctx context.Context, amount float64, code string) (float64, error) {
	if strings.EqualFold(code, c.primary) {
		return amount, nil
	}
	if c.database == nil {
		return 0, fmt.Errorf("no rate source for %s", code)
	}
	rate, err := c.database.GetCurrencyRate(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("currency rate %s: %w", code, err)
	}
	return amount * rate, nil
}
