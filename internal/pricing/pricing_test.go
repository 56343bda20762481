package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mimos-de-madera/backoffice-service/internal/money"
)

// Fixtures mirror the calibration cases shipped with the storefront; the
// expected values come from running the reference rounding procedure by hand.
func TestRecommendedPrice(t *testing.T) {
	tests := []struct {
		name           string
		productionCost float64
		shippingCost   float64
		margin         float64
		wantBase       string
		wantInclusive  string
	}{
		{"production 10 shipping 10.95 margin 25", 10, 10.95, 25, "26.20", "31.70"},
		{"production 15 shipping 8 margin 30", 15, 8, 30, "29.92", "36.20"},
		{"production 20 shipping 5 margin 40", 20, 5, 40, "35.00", "42.35"},
		{"production 5 shipping 3 margin 50", 5, 3, 50, "12.07", "14.60"},
		{"cost 10 margin 25", 10, 0, 25, "12.52", "15.15"},
		{"zero cost zero margin", 0, 0, 0, "0.00", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := RecommendedPrice(
				money.New(tt.productionCost),
				money.New(tt.shippingCost),
				tt.margin,
			)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBase, quote.BasePrice.String())
			assert.Equal(t, tt.wantInclusive, quote.TaxInclusive.String())
		})
	}
}

func TestRecommendedPriceAlwaysEndsInZeroOrFive(t *testing.T) {
	for cents := int64(0); cents <= 5000; cents += 37 {
		for _, margin := range []float64{0, 12.5, 25, 30, 42, 50, 100, 333} {
			quote, err := RecommendedPrice(money.FromCents(cents), money.Zero, margin)
			require.NoError(t, err)

			last := quote.TaxInclusive.Cents() % 10
			if last != 0 && last != 5 {
				t.Fatalf("cost=%d margin=%v: tax-inclusive %s ends in %d",
					cents, margin, quote.TaxInclusive, last)
			}
		}
	}
}

func TestRecommendedPriceMonotonic(t *testing.T) {
	// Larger cost never decreases the derived price for a fixed margin.
	prev := money.Zero
	for cents := int64(0); cents <= 3000; cents += 13 {
		quote, err := RecommendedPrice(money.FromCents(cents), money.Zero, 30)
		require.NoError(t, err)
		if quote.BasePrice.Cmp(prev) < 0 {
			t.Fatalf("cost=%d: base %s below previous %s", cents, quote.BasePrice, prev)
		}
		prev = quote.BasePrice
	}

	// Larger margin never decreases the derived price for a fixed cost.
	prev = money.Zero
	for margin := 0.0; margin <= 500; margin += 7.5 {
		quote, err := RecommendedPrice(money.New(19.90), money.Zero, margin)
		require.NoError(t, err)
		if quote.BasePrice.Cmp(prev) < 0 {
			t.Fatalf("margin=%v: base %s below previous %s", margin, quote.BasePrice, prev)
		}
		prev = quote.BasePrice
	}
}

func TestRoundUsingTaxes(t *testing.T) {
	tests := []struct {
		base       string
		wantBase   string
		iterations int
	}{
		{"26.19", "26.20", 1},
		{"26.20", "26.20", 0},
		{"12.00", "12.07", 7},
		{"0.00", "0.00", 0},
		{"35.00", "35.00", 0},
	}

	for _, tt := range tests {
		base, err := money.Parse(tt.base)
		require.NoError(t, err)

		quote, err := RoundUsingTaxes(base, DefaultTaxRate)
		require.NoError(t, err)
		assert.Equal(t, tt.wantBase, quote.BasePrice.String(), "base %s", tt.base)
		assert.Equal(t, tt.iterations, quote.Iterations, "base %s", tt.base)
	}
}

func TestRecommendedPriceZeroCostDoesNotIterate(t *testing.T) {
	quote, err := RecommendedPrice(money.Zero, money.Zero, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, quote.Iterations)
	assert.True(t, quote.BasePrice.IsZero())
}

func TestRecommendedPriceRejectsNegativeInputs(t *testing.T) {
	_, err := RecommendedPrice(money.New(-1), money.Zero, 30)
	assert.Error(t, err)

	_, err = RecommendedPrice(money.Zero, money.New(-1), 30)
	assert.Error(t, err)

	_, err = RecommendedPrice(money.Zero, money.Zero, -5)
	assert.Error(t, err)
}

func TestTaxInclusive(t *testing.T) {
	base, _ := money.Parse("26.20")
	assert.Equal(t, "31.70", TaxInclusive(base, DefaultTaxRate).String())
}
