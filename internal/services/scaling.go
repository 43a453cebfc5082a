package services

import "math"

// ScaleAmount scales a base ingredient amount from baseServings to requested,
// rounded to two decimals. Nil amounts stay nil and the base serving count
// returns the amount unchanged.
func ScaleAmount(amount *float64, baseServings, requested int) *float64 {
	if amount == nil {
		return nil
	}
	if requested <= 0 || baseServings <= 0 || requested == baseServings {
		v := *amount
		return &v
	}
	v := round2(*amount * float64(requested) / float64(baseServings))
	return &v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// successRate is round(success/total*100), nil when there are no logs
func successRate(success, total int64) *int {
	if total == 0 {
		return nil
	}
	rate := int(math.Round(float64(success) / float64(total) * 100))
	return &rate
}
