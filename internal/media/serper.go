package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sibylsearch/sibyl/internal/errs"
	"github.com/sibylsearch/sibyl/internal/logger"
)

const DefaultMaxResults = 9

// Serper discovers images and videos through the Serper API. Every candidate
// is validated with a lightweight HEAD probe before inclusion: the probe must
// succeed and report an image/* content type. A failing probe discards that
// one candidate; a failing provider call fails the whole lookup.
type Serper struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
	probe      *http.Client
}

type SerperConfig struct {
	APIKey     string
	BaseURL    string
	MaxResults int
}

func NewSerper(cfg SerperConfig) *Serper {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://google.serper.dev"
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Serper{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		maxResults: maxResults,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		probe: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (s *Serper) SearchImages(ctx context.Context, query string) ([]Image, error) {
	body, err := s.post(ctx, "/images", query)
	if err != nil {
		return nil, err
	}

	var apiResponse struct {
		Images []struct {
			Title    string `json:"title"`
			ImageURL string `json:"imageUrl"`
		} `json:"images"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, &errs.ProviderError{Provider: "serper-images", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if apiResponse.Images == nil {
		return nil, &errs.ProviderError{Provider: "serper-images", Err: errors.New("response missing images")}
	}

	validated := make([]*Image, len(apiResponse.Images))
	var wg sync.WaitGroup
	for i, candidate := range apiResponse.Images {
		if candidate.ImageURL == "" {
			continue
		}
		wg.Add(1)
		go func(i int, title, url string) {
			defer wg.Done()
			if err := s.probeImage(ctx, url); err != nil {
				logger.Debug("[MEDIA] dropping image %s: %v", url, err)
				return
			}
			validated[i] = &Image{Title: title, Link: url}
		}(i, candidate.Title, candidate.ImageURL)
	}
	wg.Wait()

	images := make([]Image, 0, s.maxResults)
	for _, img := range validated {
		if img == nil {
			continue
		}
		images = append(images, *img)
		if len(images) == s.maxResults {
			break
		}
	}
	return images, nil
}

func (s *Serper) SearchVideos(ctx context.Context, query string) ([]Video, error) {
	body, err := s.post(ctx, "/videos", query)
	if err != nil {
		return nil, err
	}

	var apiResponse struct {
		Videos []struct {
			Link     string `json:"link"`
			ImageURL string `json:"imageUrl"`
		} `json:"videos"`
	}
	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, &errs.ProviderError{Provider: "serper-videos", Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	if apiResponse.Videos == nil {
		return nil, &errs.ProviderError{Provider: "serper-videos", Err: errors.New("response missing videos")}
	}

	// The probe targets the thumbnail: a video is only usable to the UI if
	// its preview image resolves.
	validated := make([]*Video, len(apiResponse.Videos))
	var wg sync.WaitGroup
	for i, candidate := range apiResponse.Videos {
		if candidate.ImageURL == "" {
			continue
		}
		wg.Add(1)
		go func(i int, link, imageURL string) {
			defer wg.Done()
			if err := s.probeImage(ctx, imageURL); err != nil {
				logger.Debug("[MEDIA] dropping video thumbnail %s: %v", imageURL, err)
				return
			}
			validated[i] = &Video{Link: link, ImageURL: imageURL}
		}(i, candidate.Link, candidate.ImageURL)
	}
	wg.Wait()

	videos := make([]Video, 0, s.maxResults)
	for _, v := range validated {
		if v == nil {
			continue
		}
		videos = append(videos, *v)
		if len(videos) == s.maxResults {
			break
		}
	}
	return videos, nil
}

func (s *Serper) post(ctx context.Context, path, query string) ([]byte, error) {
	provider := "serper" + strings.ReplaceAll(path, "/", "-")

	jsonBody, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &errs.ProviderError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &errs.ProviderError{
			Provider:   provider,
			StatusCode: resp.StatusCode,
			Err:        errors.New("media request failed"),
		}
	}

	return io.ReadAll(resp.Body)
}

// probeImage issues a header-only existence check and verifies the reported
// content type is an image.
func (s *Serper) probeImage(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.probe.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("probe reported content type %q", contentType)
	}
	return nil
}
