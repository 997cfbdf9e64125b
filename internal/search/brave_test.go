package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sibylsearch/sibyl/internal/errs"
)

const braveFixture = `{
  "web": {
    "results": [
      {"title": "Best Bagels in NYC", "url": "https://example.com/bagels", "profile": {"img": "https://example.com/favicon.ico"}},
      {"title": "Bagel Guide", "url": "https://example.org/guide", "profile": {"img": ""}}
    ]
  }
}`

func TestBraveSearchParsesResults(t *testing.T) {
	var gotToken, gotQuery, gotCount string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Subscription-Token")
		gotQuery = r.URL.Query().Get("q")
		gotCount = r.URL.Query().Get("count")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(braveFixture))
	}))
	defer srv.Close()

	engine, err := NewBraveEngine(EngineConfig{Type: "brave", APIKey: "secret", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}

	sources, err := engine.Search(context.Background(), "best bagel in NYC", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotToken != "secret" {
		t.Fatalf("expected subscription token header, got %q", gotToken)
	}
	if gotQuery != "best bagel in NYC" || gotCount != "10" {
		t.Fatalf("unexpected query params: q=%q count=%q", gotQuery, gotCount)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].Title != "Best Bagels in NYC" || sources[0].URL != "https://example.com/bagels" {
		t.Fatalf("unexpected first source: %#v", sources[0])
	}
	if sources[0].Favicon != "https://example.com/favicon.ico" {
		t.Fatalf("unexpected favicon: %q", sources[0].Favicon)
	}
}

func TestBraveSearchNonSuccessStatusIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	engine, _ := NewBraveEngine(EngineConfig{Type: "brave", BaseURL: srv.URL})
	_, err := engine.Search(context.Background(), "anything", 5)
	if err == nil {
		t.Fatalf("expected error for non-success status")
	}
	if !errs.IsProviderError(err) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
}

func TestBraveSearchMissingShapeIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"unexpected": true}`))
	}))
	defer srv.Close()

	engine, _ := NewBraveEngine(EngineConfig{Type: "brave", BaseURL: srv.URL})
	_, err := engine.Search(context.Background(), "anything", 5)
	if err == nil {
		t.Fatalf("expected error for missing web.results")
	}
	if !errs.IsProviderError(err) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
}

func TestRegistryCreatesKnownEngines(t *testing.T) {
	registry := NewRegistry()
	for _, engineType := range []string{"brave", "serper"} {
		engine, err := registry.CreateEngine(EngineConfig{Type: engineType})
		if err != nil {
			t.Fatalf("create %s: %v", engineType, err)
		}
		if engine.Type() != engineType {
			t.Fatalf("expected type %q, got %q", engineType, engine.Type())
		}
	}
	if _, err := registry.CreateEngine(EngineConfig{Type: "nope"}); err == nil {
		t.Fatalf("expected error for unknown engine type")
	}
}
