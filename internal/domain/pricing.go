package domain

import "github.com/shopspring/decimal"

var (
	ConvenienceFeeRate = decimal.RequireFromString("0.02")
	TaxRate            = decimal.RequireFromString("0.18")
)

// PricingBreakdown is derived from a selection and never stored. Values keep
// full precision; rounding is left to presentation.
type PricingBreakdown struct {
	BasePrice      decimal.Decimal
	ConvenienceFee decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
}

func ComputePricing(seats []Seat) PricingBreakdown {
	basePrice := decimal.Zero
	for _, seat := range seats {
		basePrice = basePrice.Add(seat.Price)
	}

	convenienceFee := basePrice.Mul(ConvenienceFeeRate)
	tax := basePrice.Add(convenienceFee).Mul(TaxRate)

	return PricingBreakdown{
		BasePrice:      basePrice,
		ConvenienceFee: convenienceFee,
		Tax:            tax,
		Total:          basePrice.Add(convenienceFee).Add(tax),
	}
}
