package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sibylsearch/sibyl/internal/errs"
)

// SerperEngine is an alternate web-search backend using the Serper API.
type SerperEngine struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSerperEngine(config EngineConfig) (Engine, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://google.serper.dev"
	}

	name := config.Name
	if name == "" {
		name = "serper"
	}

	return &SerperEngine{
		name:    name,
		apiKey:  config.APIKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (e *SerperEngine) Name() string {
	return e.name
}

func (e *SerperEngine) Type() string {
	return "serper"
}

func (e *SerperEngine) Search(ctx context.Context, query string, count int) ([]Source, error) {
	requestBody := map[string]interface{}{
		"q":   query,
		"num": count,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/search", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", e.apiKey)

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
		Organic []struct {
			Title string `json:"title"`
			Link  string `json:"link"`
		} `json:"organic"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, &errs.ProviderError{Provider: e.name, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if apiResponse.Organic == nil {
		return nil, &errs.ProviderError{Provider: e.name, Err: errors.New("response missing organic results")}
	}

	sources := make([]Source, 0, len(apiResponse.Organic))
	for _, r := range apiResponse.Organic {
		sources = append(sources, Source{
			Title:   r.Title,
			URL:     r.Link,
			Favicon: faviconFor(r.Link),
		})
	}

	return sources, nil
}

// faviconFor derives a favicon URL for engines that do not return one.
func faviconFor(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s", u.Host)
}
