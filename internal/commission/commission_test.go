package commission

import (
	"testing"

	"agencypulse/server/internal/models"

	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		property *models.PropertyDetails
		expected Commission
	}{
		{
			name:     "Sold price with rate",
			property: &models.PropertyDetails{Commission: f(2.5), SoldPrice: f(800000)},
			expected: Commission{Rate: 2.5, EarnedAmount: 20000},
		},
		{
			name:     "Falls back to asking price",
			property: &models.PropertyDetails{Commission: f(2), Price: f(500000)},
			expected: Commission{Rate: 2, EarnedAmount: 10000},
		},
		{
			name:     "Sold price preferred over asking price",
			property: &models.PropertyDetails{Commission: f(1), Price: f(400000), SoldPrice: f(600000)},
			expected: Commission{Rate: 1, EarnedAmount: 6000},
		},
		{
			name:     "Missing commission earns nothing",
			property: &models.PropertyDetails{SoldPrice: f(800000)},
			expected: Commission{},
		},
		{
			name:     "Zero commission earns nothing",
			property: &models.PropertyDetails{Commission: f(0), SoldPrice: f(800000)},
			expected: Commission{},
		},
		{
			name:     "Negative commission earns nothing",
			property: &models.PropertyDetails{Commission: f(-1), SoldPrice: f(800000)},
			expected: Commission{Rate: -1},
		},
		{
			name:     "No price at all",
			property: &models.PropertyDetails{Commission: f(2.5)},
			expected: Commission{Rate: 2.5},
		},
		{
			name:     "Nil property",
			property: nil,
			expected: Commission{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Calculate(tt.property))
		})
	}
}

func TestCalculateZeroWhenRateAbsent(t *testing.T) {
	// Earned amount must be zero whenever the rate is absent or non-positive,
	// regardless of how the property is priced.
	prices := []*models.PropertyDetails{
		{SoldPrice: f(1000000)},
		{Price: f(250000)},
		{Commission: f(0), Price: f(250000), SoldPrice: f(300000)},
		{},
	}
	for _, p := range prices {
		assert.Zero(t, Calculate(p).EarnedAmount)
	}
}
