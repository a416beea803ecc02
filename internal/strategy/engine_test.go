package strategy

import (
	"testing"

	"CoinScout/internal/model"
)

func TestEvaluate_SumsFourFactors(t *testing.T) {
	ind := model.IndicatorSet{Fisher: 1.25, SuperTrend: 1, Fractal: -1, Sentiment: 0.4, LastPrice: 50, Candles: 120}
	score := Evaluate("BTC", ind)
	if score == nil {
		t.Fatal("expected non-nil score")
	}
	if len(score.Factors) != 4 {
		t.Fatalf("expected 4 factors, got %d", len(score.Factors))
	}
	if got, want := score.Composite, 1.65; !approx(got, want) {
		t.Errorf("composite: expected %.2f, got %.4f", want, got)
	}
	if score.LastPrice != 50 || score.Candles != 120 || score.Symbol != "BTC" {
		t.Errorf("unexpected metadata: %+v", score)
	}
	for _, f := range score.Factors {
		if f.Weight != 1.0 {
			t.Errorf("factor %s: expected weight 1, got %.2f", f.Name, f.Weight)
		}
	}
}

func TestEvaluate_CompositeMovesWithEachComponent(t *testing.T) {
	base := model.IndicatorSet{Fisher: 0.3, SuperTrend: -1, Fractal: 1, Sentiment: -0.2}
	ref := Evaluate("X", base).Composite
	const delta = 0.6

	bumps := []func(*model.IndicatorSet){
		func(i *model.IndicatorSet) { i.Fisher += delta },
		func(i *model.IndicatorSet) { i.SuperTrend += delta },
		func(i *model.IndicatorSet) { i.Fractal += delta },
		func(i *model.IndicatorSet) { i.Sentiment += delta },
	}
	for n, bump := range bumps {
		ind := base
		bump(&ind)
		if got := Evaluate("X", ind).Composite - ref; !approx(got, delta) {
			t.Errorf("component %d: expected delta %.2f, got %.4f", n, delta, got)
		}
	}
}

func TestRank_StableOnTies(t *testing.T) {
	scores := []model.AssetScore{
		{Symbol: "STORJ", Composite: 0.5},
		{Symbol: "XRP", Composite: 1.0},
		{Symbol: "EIGEN", Composite: 0.5},
		{Symbol: "ETH", Composite: 1.0},
		{Symbol: "BTC", Composite: -2},
		{Symbol: "RUNE", Composite: 0.5},
	}
	all, top := Rank(scores, TopK)
	want := []string{"XRP", "ETH", "STORJ", "EIGEN", "RUNE", "BTC"}
	if len(all) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(all))
	}
	for i, sym := range want {
		if all[i].Symbol != sym {
			t.Errorf("position %d: expected %s, got %s", i, sym, all[i].Symbol)
		}
		if all[i].Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, all[i].Rank)
		}
	}
	if len(top) != TopK {
		t.Fatalf("expected top %d, got %d", TopK, len(top))
	}
	if top[3].Symbol != "EIGEN" {
		t.Errorf("expected EIGEN as 4th, got %s", top[3].Symbol)
	}
	if scores[0].Symbol != "STORJ" {
		t.Error("Rank must not reorder its input")
	}
}

func TestRank_FewerThanK(t *testing.T) {
	all, top := Rank([]model.AssetScore{{Symbol: "SOL", Composite: 0.1}}, TopK)
	if len(all) != 1 || len(top) != 1 {
		t.Fatalf("expected 1 entry, got all=%d top=%d", len(all), len(top))
	}
	_, top = Rank(nil, TopK)
	if len(top) != 0 {
		t.Errorf("expected empty top, got %d", len(top))
	}
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		score float64
		want  int
	}{
		{2.49, 24},
		{0.05, 0},
		{-0.35, -3},
		{-2.99, -29},
		{3.0, 30},
	}
	for _, tt := range tests {
		if got := Confidence(tt.score); got != tt.want {
			t.Errorf("Confidence(%.2f): expected %d, got %d", tt.score, tt.want, got)
		}
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		price     float64
		buy, sell string
	}{
		{100, "100.00", "115.00"},
		{0.5123, "0.51", "0.59"},
		{64123.456, "64123.46", "73741.97"},
		{1.005, "1.01", "1.16"},
		{0, "0.00", "0.00"},
	}
	for _, tt := range tests {
		s := Suggest(tt.price, DefaultMarkup)
		if s.BuyPrice != tt.buy || s.SellPrice != tt.sell {
			t.Errorf("Suggest(%v): expected %s/%s, got %s/%s", tt.price, tt.buy, tt.sell, s.BuyPrice, s.SellPrice)
		}
	}
}

// Prices are rounded as decimals, so exact halves round away from zero
// even where the binary float product sits just below the half.
func TestSuggest_DecimalHalvesRoundUp(t *testing.T) {
	tests := []struct {
		price     float64
		buy, sell string
	}{
		{10.1, "10.10", "11.62"}, // 10.1 * 1.15 = 11.615
		{0.125, "0.13", "0.14"},
		{2.675, "2.68", "3.08"},
	}
	for _, tt := range tests {
		s := Suggest(tt.price, DefaultMarkup)
		if s.BuyPrice != tt.buy || s.SellPrice != tt.sell {
			t.Errorf("Suggest(%v): expected %s/%s, got %s/%s", tt.price, tt.buy, tt.sell, s.BuyPrice, s.SellPrice)
		}
	}
}

func approx(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
