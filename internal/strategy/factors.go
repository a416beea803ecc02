package strategy

import (
	"fmt"

	"CoinScout/internal/model"
)

// Every factor carries the same weight; the composite is a plain sum.
const factorWeight = 1.0

func factor(name string, raw float64, commentary string) model.FactorScore {
	return model.FactorScore{
		Name:       name,
		RawScore:   raw,
		Weight:     factorWeight,
		Weighted:   raw * factorWeight,
		Commentary: commentary,
	}
}

// scoreFisher passes the Fisher Transform through unchanged.
func scoreFisher(ind model.IndicatorSet) model.FactorScore {
	var note string
	switch {
	case ind.Fisher > 1.5:
		note = "stretched high"
	case ind.Fisher < -1.5:
		note = "stretched low"
	default:
		note = fmt.Sprintf("fisher=%.2f", ind.Fisher)
	}
	return factor("Fisher", ind.Fisher, note)
}

func scoreSuperTrend(ind model.IndicatorSet) model.FactorScore {
	return factor("SuperTrend", ind.SuperTrend, directionNote(ind.SuperTrend, "above lower band", "below lower band"))
}

func scoreFractal(ind model.IndicatorSet) model.FactorScore {
	return factor("Williams", ind.Fractal, directionNote(ind.Fractal, "bullish fractal", "bearish fractal"))
}

func scoreSentiment(ind model.IndicatorSet) model.FactorScore {
	return factor("Sentiment", ind.Sentiment, fmt.Sprintf("%+.1f", ind.Sentiment))
}

func directionNote(v float64, up, down string) string {
	switch {
	case v > 0:
		return up
	case v < 0:
		return down
	default:
		return "n/a"
	}
}
