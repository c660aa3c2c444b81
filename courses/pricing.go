package courses

import "math"

const DefaultPlatformFeeRate = 0.025

// Pricing is the student-facing split of a course price.
type Pricing struct {
	BasePrice   float64 `json:"base_price"`
	FinalPrice  float64 `json:"final_price"`
	PlatformFee float64 `json:"platform_fee"`
}

// Price applies the platform fee on top of the instructor's base price. Free courses and
// non-positive amounts price at zero.
func Price(isPaid bool, basePrice, feeRate float64) Pricing {
	if !isPaid || basePrice <= 0 {
		return Pricing{}
	}
	// integer cents and basis points keep half-cent results rounding up
	baseCents := int64(math.Round(basePrice * 100))
	feeBasisPoints := int64(math.Round(feeRate * 10000))
	finalCents := (baseCents*(10000+feeBasisPoints) + 5000) / 10000

	return Pricing{
		BasePrice:   float64(baseCents) / 100,
		FinalPrice:  float64(finalCents) / 100,
		PlatformFee: float64(finalCents-baseCents) / 100,
	}
}

func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
