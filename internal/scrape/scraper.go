package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sibylsearch/sibyl/internal/errs"
	"github.com/sibylsearch/sibyl/internal/logger"
	"github.com/sibylsearch/sibyl/internal/search"
)

const DefaultFetchTimeout = 800 * time.Millisecond

// Elements that carry no readable content and would only pollute retrieval.
const noiseSelector = "script, style, head, footer, nav, iframe, img"

var whitespaceRE = regexp.MustCompile(`\s+`)

// Page is a source whose content was fetched and reduced to readable text.
type Page struct {
	search.Source
	Text string
}

// Scraper fetches candidate pages concurrently, each bounded by its own
// timeout. Sources that fail or time out are dropped, not retried.
type Scraper struct {
	client  *http.Client
	timeout time.Duration
}

func NewScraper(timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &Scraper{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Acquire fetches every source concurrently and returns the pages that
// yielded non-empty text, in input order. The stage completes once every
// fetch has settled; a slow source never blocks the others beyond the
// per-fetch timeout.
func (s *Scraper) Acquire(ctx context.Context, sources []search.Source) []Page {
	results := make([]*Page, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, src search.Source) {
			defer wg.Done()
			page, err := s.fetchOne(ctx, src)
			if err != nil {
				logger.Debug("[SCRAPE] skipping %s: %v", src.URL, err)
				return
			}
			results[i] = page
		}(i, src)
	}
	wg.Wait()

	pages := make([]Page, 0, len(sources))
	for _, page := range results {
		if page != nil {
			pages = append(pages, *page)
		}
	}
	return pages
}

func (s *Scraper) fetchOne(ctx context.Context, src search.Source) (*Page, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.ErrFetchTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch returned status %d", resp.StatusCode)
	}

	text, err := ExtractReadableText(resp.Body)
	if err != nil {
		return nil, &errs.ExtractionError{URL: src.URL, Err: err}
	}
	if text == "" {
		return nil, errors.New("no readable text")
	}

	return &Page{Source: src, Text: text}, nil
}

// ExtractReadableText parses markup, strips non-content elements and collapses
// all whitespace runs into single spaces.
func ExtractReadableText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find(noiseSelector).Remove()

	text := doc.Find("body").Text()
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " ")), nil
}
