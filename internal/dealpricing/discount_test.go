package dealpricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDiscountPercentage(t *testing.T) {
	assert.Equal(t, 20, ComputeDiscountPercentage(ptrF(1000), ptrF(800)))
	assert.Equal(t, 0, ComputeDiscountPercentage(nil, ptrF(800)))
	assert.Equal(t, 0, ComputeDiscountPercentage(ptrF(0), ptrF(800)))
	assert.Equal(t, 0, ComputeDiscountPercentage(ptrF(1000), nil))
	assert.Equal(t, 33, ComputeDiscountPercentage(ptrF(300), ptrF(200)))

	for _, discounted := range []float64{-500, 0, 999.99, 1000, 1500, 1e9} {
		assert.GreaterOrEqual(t, ComputeDiscountPercentage(ptrF(1000), ptrF(discounted)), 0)
	}
}

func TestResolveFinalPrice(t *testing.T) {
	tests := []struct {
		name        string
		original    float64
		explicit    *float64
		overridePct *int
		dealPct     int
		fallback    float64
		want        float64
	}{
		{"explicit wins", 1000, ptrF(750), ptrI(10), 50, 1000, 750},
		{"override beats deal", 1000, nil, ptrI(10), 50, 1000, 900},
		{"deal percentage", 1000, nil, nil, 25, 1000, 750},
		{"fallback", 1000, nil, nil, 0, 950, 950},
		{"zero explicit ignored", 1000, ptrF(0), nil, 25, 1000, 750},
		{"zero override ignored", 1000, nil, ptrI(0), 25, 1000, 750},
		{"no original skips percentages", 0, nil, ptrI(10), 25, 120, 120},
		{"rounded to cents", 99.99, nil, ptrI(15), 0, 99.99, 84.99},
		{"override capped at 100", 500, nil, ptrI(150), 0, 500, 0},
		{"explicit rounded", 0, ptrF(10.005), nil, 0, 0, 10.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFinalPrice(tt.original, tt.explicit, tt.overridePct, tt.dealPct, tt.fallback)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestResolveDiscount(t *testing.T) {
	assert.Equal(t, 15, resolveDiscount(ptrI(15), 1000, 750, 50))
	assert.Equal(t, 25, resolveDiscount(nil, 1000, 750, 50))
	assert.Equal(t, 50, resolveDiscount(nil, 0, 300, 50))
	assert.Equal(t, 0, resolveDiscount(nil, 1000, 1200, 50))
}
