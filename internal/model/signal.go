package model

import "time"

// FactorScore represents a single component's contribution to the composite score.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// AssetScore is the scoring result for one asset in one cycle.
type AssetScore struct {
	Symbol     string
	Factors    []FactorScore
	Composite  float64
	LastPrice  float64
	Candles    int
	ComputedAt time.Time
}

// AssetResult is the outcome of scoring one universe entry: either Score or Err is set.
type AssetResult struct {
	Index  int
	Symbol string
	Score  *AssetScore
	Err    error
}

// OK reports whether the asset was scored.
func (r AssetResult) OK() bool { return r.Err == nil && r.Score != nil }

// Suggestion is the entry/exit price pair attached to a top-ranked asset.
type Suggestion struct {
	BuyPrice  string
	SellPrice string
}

// RankedAsset is one row of the cycle ranking.
type RankedAsset struct {
	Rank       int
	Symbol     string
	Composite  float64
	Confidence int
	LastPrice  float64
	Factors    []FactorScore
}

// Notification is a suggestion message produced for one top-ranked asset.
type Notification struct {
	Symbol     string
	Title      string
	Message    string
	Suggestion Suggestion
	Delivered  bool
	SentAt     time.Time
}

// SkippedAsset records why an asset is absent from a ranking.
type SkippedAsset struct {
	Symbol string
	Reason string
}

// Ranking is the output of one analysis cycle.
type Ranking struct {
	CycleID       string
	StartedAt     time.Time
	FinishedAt    time.Time
	Entries       []RankedAsset
	Top           []RankedAsset
	Skipped       []SkippedAsset
	Notifications []Notification
}

// Clone returns a deep copy so readers never share slices with the writer.
func (r *Ranking) Clone() *Ranking {
	if r == nil {
		return nil
	}
	out := *r
	out.Entries = cloneRanked(r.Entries)
	out.Top = cloneRanked(r.Top)
	out.Skipped = append([]SkippedAsset(nil), r.Skipped...)
	out.Notifications = append([]Notification(nil), r.Notifications...)
	return &out
}

func cloneRanked(in []RankedAsset) []RankedAsset {
	if in == nil {
		return nil
	}
	out := make([]RankedAsset, len(in))
	for i, ra := range in {
		out[i] = ra
		out[i].Factors = append([]FactorScore(nil), ra.Factors...)
	}
	return out
}
