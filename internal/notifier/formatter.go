package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"CoinScout/internal/model"
	"CoinScout/internal/state"
)

// FormatSuggestion renders the buy/sell order message for one asset.
func FormatSuggestion(symbol string, s model.Suggestion) string {
	return fmt.Sprintf("%s $%s al $%s sat emri ver", symbol, s.BuyPrice, s.SellPrice)
}

// FormatConfidence renders the confidence label of a ranked asset.
func FormatConfidence(confidence int) string {
	return fmt.Sprintf("%%%d doğruluk", confidence)
}

// FormatRanking renders the top assets of a cycle and its delivered orders.
func FormatRanking(r *model.Ranking) string {
	if r == nil {
		return "Henüz tamamlanmış analiz yok."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Analiz %s\n\n", r.FinishedAt.Format("2006-01-02 15:04"))

	if len(r.Top) == 0 {
		b.WriteString("Puanlanabilen coin yok.\n")
	}
	for _, ra := range r.Top {
		fmt.Fprintf(&b, "%d. %s  %+.3f  %s\n", ra.Rank, ra.Symbol, ra.Composite, FormatConfidence(ra.Confidence))
	}

	if len(r.Notifications) > 0 {
		b.WriteString("\n💰 Emirler:\n")
		for _, n := range r.Notifications {
			fmt.Fprintf(&b, "  %s\n", n.Message)
		}
	}
	if len(r.Skipped) > 0 {
		skipped := make([]string, len(r.Skipped))
		for i, s := range r.Skipped {
			skipped[i] = s.Symbol
		}
		fmt.Fprintf(&b, "\n⚠️ Atlanan: %s\n", strings.Join(skipped, ", "))
	}
	return b.String()
}

// FormatStatus renders the run state.
func FormatStatus(s state.Snapshot) string {
	var b strings.Builder
	if s.Running {
		b.WriteString("🟢 Çalışıyor\n")
		fmt.Fprintf(&b, "Başlangıç: %s\n", s.StartedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "Çalışma süresi: %s (%s)\n", humanElapsed(s.Elapsed), s.Elapsed.Truncate(time.Second))
	} else {
		b.WriteString("🔴 Durduruldu\n")
	}
	fmt.Fprintf(&b, "Tamamlanan analiz: %s\n", humanize.Comma(int64(s.Cycles)))
	if s.Latest != nil {
		fmt.Fprintf(&b, "Son analiz: %s\n", s.Latest.FinishedAt.Format("2006-01-02 15:04"))
	}
	if s.LastError != "" {
		fmt.Fprintf(&b, "Son hata: %s\n", s.LastError)
	}
	return b.String()
}

func humanElapsed(d time.Duration) string {
	var zero time.Time
	return strings.TrimSpace(humanize.RelTime(zero, zero.Add(d), "", ""))
}
