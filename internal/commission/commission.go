// Package commission computes agent commission amounts from property records.
package commission

import "agencypulse/server/internal/models"

// Commission is the rate and resulting earned amount for one property.
type Commission struct {
	Rate         float64 `json:"rate"`
	EarnedAmount float64 `json:"earned_amount"`
}

// Calculate derives the commission for a property. The base price is the sold
// price when present, otherwise the asking price. Earned amount is zero unless
// both the rate and base price are positive. Total function, never fails.
func Calculate(p *models.PropertyDetails) Commission {
	if p == nil {
		return Commission{}
	}

	var rate float64
	if p.Commission != nil {
		rate = *p.Commission
	}

	var base float64
	if p.SoldPrice != nil {
		base = *p.SoldPrice
	} else if p.Price != nil {
		base = *p.Price
	}

	if rate <= 0 || base <= 0 {
		return Commission{Rate: rate}
	}

	return Commission{
		Rate:         rate,
		EarnedAmount: base * rate / 100,
	}
}
