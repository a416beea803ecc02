package sentiment

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// HeadlineLimit is both the fetch limit and the fixed score divisor.
const HeadlineLimit = 5

var (
	positiveWords = []string{"up", "gain", "rise", "positive", "bull"}
	negativeWords = []string{"down", "fall", "drop", "negative", "bear"}
)

// Scorer turns headlines from a HeadlineSource into a polarity score.
type Scorer struct {
	Source HeadlineSource
	log    zerolog.Logger
}

// NewScorer creates a Scorer over source.
func NewScorer(source HeadlineSource, logger zerolog.Logger) *Scorer {
	return &Scorer{
		Source: source,
		log:    logger.With().Str("component", "sentiment").Logger(),
	}
}

// Score returns the sentiment of asset. Source failures score 0.
func (s *Scorer) Score(ctx context.Context, asset string) float64 {
	headlines, err := s.Source.FetchHeadlines(ctx, asset, HeadlineLimit)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", asset).Msg("headlines unavailable, sentiment 0")
		return 0
	}
	if len(headlines) > HeadlineLimit {
		headlines = headlines[:HeadlineLimit]
	}
	score := ScoreHeadlines(headlines)
	s.log.Debug().Str("symbol", asset).Int("headlines", len(headlines)).Float64("score", score).Msg("sentiment scored")
	return score
}

// ScoreHeadlines sums +1 for every headline containing a positive keyword and
// -1 for every headline containing a negative keyword, divided by HeadlineLimit.
// Both may apply to the same headline. Keywords match as substrings.
func ScoreHeadlines(headlines []string) float64 {
	var sum int
	for _, h := range headlines {
		text := strings.ToLower(h)
		if containsAny(text, positiveWords) {
			sum++
		}
		if containsAny(text, negativeWords) {
			sum--
		}
	}
	return float64(sum) / HeadlineLimit
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
