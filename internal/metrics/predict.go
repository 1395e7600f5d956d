package metrics

import "agencypulse/server/internal/models"

// PredictFn projects a suburb's chronological average-price series one period
// forward. Injected so screens and tests can swap the model.
type PredictFn func(series []float64) models.PricePrediction

// LinearPredict extrapolates from the slope between the series endpoints and
// derives a heuristic confidence band from the observed spread. No statistical
// model beyond this.
func LinearPredict(series []float64) models.PricePrediction {
	if len(series) == 0 {
		return models.PricePrediction{}
	}

	if len(series) == 1 {
		p := series[0]
		return models.PricePrediction{
			Predicted: p,
			Lower:     p * 0.9,
			Upper:     p * 1.1,
		}
	}

	first := series[0]
	last := series[len(series)-1]
	slope := (last - first) / float64(len(series)-1)
	predicted := last + slope

	minVal, maxVal := series[0], series[0]
	for _, v := range series[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	margin := (maxVal - minVal) / 2
	if margin == 0 {
		margin = predicted * 0.05
	}

	return models.PricePrediction{
		Predicted: predicted,
		Lower:     predicted - margin,
		Upper:     predicted + margin,
	}
}
