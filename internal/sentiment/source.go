// Package sentiment scores assets by keyword polarity of recent news headlines.
package sentiment

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"CoinScout/internal/httpclient"
	"CoinScout/internal/model"
)

// HeadlineSource returns the most recent headlines about an asset.
type HeadlineSource interface {
	FetchHeadlines(ctx context.Context, asset string, limit int) ([]string, error)
}

// DefaultCryptoCraftURL is the public CryptoCraft site.
const DefaultCryptoCraftURL = "https://www.cryptocraft.com"

// CryptoCraftSource scrapes headlines from the CryptoCraft coin pages.
type CryptoCraftSource struct {
	BaseURL  string
	Client   *httpclient.Client
	Selector string
}

// NewCryptoCraftSource creates a source reading {baseURL}/coins/{asset}.
func NewCryptoCraftSource(baseURL string, client *httpclient.Client) *CryptoCraftSource {
	if baseURL == "" {
		baseURL = DefaultCryptoCraftURL
	}
	return &CryptoCraftSource{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Client:   client,
		Selector: "h3",
	}
}

// FetchHeadlines returns the non-empty texts among the first limit headline
// nodes, in page order.
// Errors wrap model.ErrNewsFetch.
func (s *CryptoCraftSource) FetchHeadlines(ctx context.Context, asset string, limit int) ([]string, error) {
	endpoint := fmt.Sprintf("%s/coins/%s", s.BaseURL, strings.ToLower(asset))

	header := http.Header{}
	header.Set("Accept", "text/html")
	resp, err := s.Client.Get(ctx, endpoint, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", model.ErrNewsFetch, asset, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", model.ErrNewsFetch, endpoint, err)
	}

	// Only the first limit nodes count, even when some of them are empty.
	nodes := doc.Find(s.Selector)
	if limit > 0 && nodes.Length() > limit {
		nodes = nodes.Slice(0, limit)
	}
	var headlines []string
	nodes.Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			headlines = append(headlines, text)
		}
	})
	return headlines, nil
}
