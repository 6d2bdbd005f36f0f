package dealpricing

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscountPercentage returns the whole-number percentage saved going
// from original to discounted. A markup reports 0, never a negative value.
func ComputeDiscountPercentage(original, discounted *float64) int {
	if original == nil || *original <= 0 || discounted == nil {
		return 0
	}
	pct := math.Round((*original - *discounted) / *original * 100)
	if pct < 0 || math.IsNaN(pct) {
		return 0
	}
	return int(pct)
}

// ResolveFinalPrice picks the display price for a deal item. The first
// positive source wins:
//  1. explicit deal price set by an administrator
//  2. per-item percentage override applied to original
//  3. deal-wide percentage applied to original
//  4. fallback
//
// The result is rounded to two decimals.
func ResolveFinalPrice(original float64, explicit *float64, overridePct *int, dealPct int, fallback float64) float64 {
	switch {
	case explicit != nil && *explicit > 0:
		return round2(decimal.NewFromFloat(*explicit))
	case overridePct != nil && *overridePct > 0 && original > 0:
		return round2(applyPercentage(original, *overridePct))
	case dealPct > 0 && original > 0:
		return round2(applyPercentage(original, dealPct))
	default:
		return round2(decimal.NewFromFloat(fallback))
	}
}

// applyPercentage computes original * (1 - pct/100) with pct capped at 100.
func applyPercentage(original float64, pct int) decimal.Decimal {
	if pct > 100 {
		pct = 100
	}
	remaining := decimal.NewFromInt(int64(100 - pct))
	return decimal.NewFromFloat(original).Mul(remaining).Div(hundred)
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// resolveDiscount reports the percentage shown next to a deal price: an
// explicit per-item override, else the percentage implied by the two prices.
// Without an original price there is nothing to compare, and the deal-wide
// percentage is shown instead of 0.
func resolveDiscount(overridePct *int, original, final float64, dealPct int) int {
	if overridePct != nil && *overridePct > 0 {
		if *overridePct > 100 {
			return 100
		}
		return *overridePct
	}
	if original > 0 {
		return ComputeDiscountPercentage(&original, &final)
	}
	return dealPct
}
