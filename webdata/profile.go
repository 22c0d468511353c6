package webdata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// maxDescriptionLen bounds how much scraped text ends up in prompts.
const maxDescriptionLen = 1200

// ProfileFetcher scrapes a short company profile from a website.
type ProfileFetcher struct {
	client    *http.Client
	sanitizer *bluemonday.Policy
}

// NewProfileFetcher creates a fetcher with sane defaults.
func NewProfileFetcher() *ProfileFetcher {
	return &ProfileFetcher{
		client:    &http.Client{Timeout: 15 * time.Second},
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Fetch downloads the page and extracts a description from the meta tags and
// leading paragraphs. All extracted text is sanitized.
func (p *ProfileFetcher) Fetch(ctx context.Context, url string) (*CompanyProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	profile := &CompanyProfile{Website: url}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		profile.Description = p.clean(desc)
	}
	if profile.Description == "" {
		var parts []string
		doc.Find("p").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := p.clean(s.Text())
			if text != "" {
				parts = append(parts, text)
			}
			return len(strings.Join(parts, " ")) < maxDescriptionLen
		})
		profile.Description = truncate(strings.Join(parts, " "), maxDescriptionLen)
	}

	return profile, nil
}

func (p *ProfileFetcher) clean(s string) string {
	return strings.TrimSpace(p.sanitizer.Sanitize(s))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
