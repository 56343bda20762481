// Package pricing derives product base prices from cost inputs.
//
// Prices are stored pre-tax. The consumer-facing price is always base*1.21
// and is never persisted. The base price is nudged upward in one-cent steps
// until the tax-inclusive price ends in .00 or .05, matching the checkout
// display rules of the shop.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/money"
)

// DefaultTaxRate is the Spanish standard VAT rate.
var DefaultTaxRate = decimal.NewFromFloat(0.21)

// DefaultProfitMargin is applied when a product does not specify one.
const DefaultProfitMargin = 30.0

// The cent digit after tax cycles as the base price steps by one cent, so a
// match is found within at most 20 steps for a 21% rate. The bound is
// defensive only.
const maxIterations = 100

var oneCent = money.FromCents(1)

// Quote is the result of a price derivation.
type Quote struct {
	BasePrice    money.Money `json:"base_price"`
	TaxInclusive money.Money `json:"tax_inclusive"`
	Iterations   int         `json:"-"`
}

// RoundUsingTaxes adjusts base upward until base*(1+taxRate), rounded to
// cents, ends in 0 or 5 cents.
func RoundUsingTaxes(base money.Money, taxRate decimal.Decimal) (Quote, error) {
	factor := decimal.NewFromInt(1).Add(taxRate)

	for i := 0; i <= maxIterations; i++ {
		inclusive := base.MulFactor(factor)
		if inclusive.Cents()%5 == 0 {
			return Quote{BasePrice: base, TaxInclusive: inclusive, Iterations: i}, nil
		}
		base = base.Add(oneCent)
	}

	return Quote{}, apperrors.NewComputationError(
		"round_using_taxes",
		fmt.Sprintf("no rounded price within %d cent increments for rate %s", maxIterations, taxRate),
	)
}

// TaxInclusive returns base*(1+taxRate) rounded to cents.
func TaxInclusive(base money.Money, taxRate decimal.Decimal) money.Money {
	return base.MulFactor(decimal.NewFromInt(1).Add(taxRate))
}

// RecommendedPrice computes the stored base price for a product from its
// production cost, shipping cost and profit margin percentage.
func RecommendedPrice(productionCost, shippingCost money.Money, marginPercent float64) (Quote, error) {
	if productionCost.IsNegative() {
		return Quote{}, apperrors.NewValidationError("production_cost", "must not be negative")
	}
	if shippingCost.IsNegative() {
		return Quote{}, apperrors.NewValidationError("shipping_cost", "must not be negative")
	}
	if marginPercent < 0 {
		return Quote{}, apperrors.NewValidationError("profit_margin", "must not be negative")
	}

	cost := productionCost.Add(shippingCost)
	marginFactor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(marginPercent).Div(decimal.NewFromInt(100)))
	base := cost.MulFactor(marginFactor)

	return RoundUsingTaxes(base, DefaultTaxRate)
}
