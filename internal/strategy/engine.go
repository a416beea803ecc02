// Package strategy turns indicator readings into composite scores, rankings
// and price suggestions.
package strategy

import (
	"sort"

	"github.com/shopspring/decimal"

	"CoinScout/internal/model"
)

const (
	// TopK is the number of ranked assets that receive a suggestion.
	TopK = 4
	// DefaultMarkup is the sell target above the entry price.
	DefaultMarkup = 0.15
)

// Evaluate computes the composite score of one asset from its indicators.
func Evaluate(symbol string, ind model.IndicatorSet) *model.AssetScore {
	factors := []model.FactorScore{
		scoreFisher(ind),
		scoreSuperTrend(ind),
		scoreFractal(ind),
		scoreSentiment(ind),
	}

	var composite float64
	for _, f := range factors {
		composite += f.Weighted
	}

	return &model.AssetScore{
		Symbol:    symbol,
		Factors:   factors,
		Composite: composite,
		LastPrice: ind.LastPrice,
		Candles:   ind.Candles,
	}
}

// Rank orders scores by composite descending, keeping input order on ties,
// and returns the full ranking plus its first k entries.
func Rank(scores []model.AssetScore, k int) (all, top []model.RankedAsset) {
	ordered := make([]model.AssetScore, len(scores))
	copy(ordered, scores)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Composite > ordered[j].Composite
	})

	all = make([]model.RankedAsset, len(ordered))
	for i, s := range ordered {
		all[i] = model.RankedAsset{
			Rank:       i + 1,
			Symbol:     s.Symbol,
			Composite:  s.Composite,
			Confidence: Confidence(s.Composite),
			LastPrice:  s.LastPrice,
			Factors:    append([]model.FactorScore(nil), s.Factors...),
		}
	}
	if k < 0 {
		k = 0
	}
	top = all[:min(k, len(all))]
	return all, top
}

// Confidence is the composite scaled by ten and truncated toward zero.
func Confidence(composite float64) int {
	return int(composite * 10)
}

// Suggest returns the entry price rounded to cents and the exit price
// at markup above it, both formatted with two decimals.
func Suggest(price, markup float64) model.Suggestion {
	p := decimal.NewFromFloat(price)
	buy := p.Round(2)
	sell := p.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(markup))).Round(2)
	return model.Suggestion{
		BuyPrice:  buy.StringFixed(2),
		SellPrice: sell.StringFixed(2),
	}
}
