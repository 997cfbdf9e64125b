package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sibylsearch/sibyl/internal/errs"
)

type BraveEngine struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewBraveEngine(config EngineConfig) (Engine, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.search.brave.com"
	}

	name := config.Name
	if name == "" {
		name = "brave"
	}

	return &BraveEngine{
		name:    name,
		apiKey:  config.APIKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (e *BraveEngine) Name() string {
	return e.name
}

func (e *BraveEngine) Type() string {
	return "brave"
}

func (e *BraveEngine) Search(ctx context.Context, query string, count int) ([]Source, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	searchURL := fmt.Sprintf("%s/res/v1/web/search?%s", e.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &errs.ProviderError{Provider: e.name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errs.ProviderError{
			Provider:   e.name,
			StatusCode: resp.StatusCode,
			Err:        errors.New("search request failed"),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.ProviderError{Provider: e.name, Err: err}
	}

	var apiResponse struct {
		Web *struct {
			Results []struct {
				Title   string `json:"title"`
				URL     string `json:"url"`
				Profile struct {
					Img string `json:"img"`
				} `json:"profile"`
			} `json:"results"`
		} `json:"web"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, &errs.ProviderError{Provider: e.name, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if apiResponse.Web == nil || apiResponse.Web.Results == nil {
		return nil, &errs.ProviderError{Provider: e.name, Err: errors.New("response missing web.results")}
	}

	sources := make([]Source, 0, len(apiResponse.Web.Results))
	for _, r := range apiResponse.Web.Results {
		sources = append(sources, Source{
			Title:   r.Title,
			URL:     r.URL,
			Favicon: r.Profile.Img,
		})
	}

	return sources, nil
}
