package courses

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name   string
		isPaid bool
		base   float64
		want   Pricing
	}{
		{name: "free course", isPaid: false, base: 40, want: Pricing{}},
		{name: "paid zero", isPaid: true, base: 0, want: Pricing{}},
		{name: "round hundred", isPaid: true, base: 100, want: Pricing{BasePrice: 100, FinalPrice: 102.5, PlatformFee: 2.5}},
		{name: "rounds up", isPaid: true, base: 19.99, want: Pricing{BasePrice: 19.99, FinalPrice: 20.49, PlatformFee: 0.5}},
		{name: "small amount", isPaid: true, base: 1, want: Pricing{BasePrice: 1, FinalPrice: 1.03, PlatformFee: 0.03}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(tt.isPaid, tt.base, DefaultPlatformFeeRate))
		})
	}
}

func TestPriceInvariant(t *testing.T) {
	for cents := 0; cents <= 50000; cents += 37 {
		base := float64(cents) / 100
		p := Price(true, base, DefaultPlatformFeeRate)
		if base == 0 {
			assert.Equal(t, Pricing{}, p)
			continue
		}
		wantFinal := float64((int64(cents)*1025+500)/1000) / 100
		assert.InDelta(t, wantFinal, p.FinalPrice, 1e-9, "base %.2f", base)
		assert.InDelta(t, p.FinalPrice-p.BasePrice, p.PlatformFee, 1e-9, "base %.2f", base)
	}
}
