package webui

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sibylsearch/sibyl/internal/pipeline"
)

type fakeRunner struct{}

func (fakeRunner) Run(_ context.Context, query string) <-chan pipeline.Event {
	events := make(chan pipeline.Event, 3)
	events <- pipeline.Event{Type: pipeline.EventAnswerToken, Token: "echo: " + query}
	events <- pipeline.Event{Type: pipeline.EventAnswerEnd}
	events <- pipeline.Event{Type: pipeline.EventDone, Status: pipeline.StatusDone}
	close(events)
	return events
}

func TestStatusEndpoint(t *testing.T) {
	server := NewServer(fakeRunner{})
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "\"ok\":true") {
		t.Fatalf("unexpected status payload: %s", rr.Body.String())
	}
}

func TestAnswerEndpointStreamsSSE(t *testing.T) {
	server := NewServer(fakeRunner{})
	handler := server.Handler()

	payload, _ := json.Marshal(map[string]string{"query": "best bagel in NYC"})
	req := httptest.NewRequest(http.MethodPost, "/api/answer", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected SSE content type, got %q", ct)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "event: llmResponse\n") {
		t.Fatalf("missing answer token frame: %s", body)
	}
	if !strings.Contains(body, "echo: best bagel in NYC") {
		t.Fatalf("missing token payload: %s", body)
	}
	if !strings.Contains(body, "event: done\n") {
		t.Fatalf("stream must terminate with a done frame: %s", body)
	}
}

func TestAnswerEndpointRejectsBadRequests(t *testing.T) {
	server := NewServer(fakeRunner{})
	handler := server.Handler()

	req := httptest.NewRequest(http.MethodGet, "/api/answer", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}

	payload, _ := json.Marshal(map[string]string{"query": "   "})
	req = httptest.NewRequest(http.MethodPost, "/api/answer", bytes.NewReader(payload))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty query, got %d", rr.Code)
	}
}

func TestAnswerWebSocketStreamsEvents(t *testing.T) {
	server := NewServer(fakeRunner{})
	srv := httptest.NewServer(server.Handler())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/answer/ws?query=hello"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var types []pipeline.EventType
	for {
		var ev pipeline.Event
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		types = append(types, ev.Type)
		if ev.Type == pipeline.EventDone {
			break
		}
	}

	if len(types) != 3 || types[2] != pipeline.EventDone {
		t.Fatalf("unexpected event sequence: %#v", types)
	}
}
