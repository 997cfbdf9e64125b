package webui

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sibylsearch/sibyl/internal/logger"
	"github.com/sibylsearch/sibyl/internal/pipeline"
)

// AnswerRunner produces the event stream for one query.
type AnswerRunner interface {
	Run(ctx context.Context, query string) <-chan pipeline.Event
}

type Server struct {
	runner    AnswerRunner
	upgrader  websocket.Upgrader
	startedAt time.Time
}

func NewServer(runner AnswerRunner) *Server {
	return &Server{
		runner:    runner,
		upgrader:  websocket.Upgrader{},
		startedAt: time.Now().UTC(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/answer", s.handleAnswer)
	mux.HandleFunc("/api/answer/ws", s.handleAnswerWS)
	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"started_at": s.startedAt.Format(time.RFC3339),
		"uptime_sec": int(time.Since(s.startedAt).Seconds()),
	})
}

type answerRequest struct {
	Query string `json:"query"`
}

// handleAnswer streams the pipeline's events over server-sent events. Each
// event is flushed the moment the pipeline produces it; the connection closes
// after the terminal done event.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if s.runner == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "pipeline is not initialized"})
		return
	}

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// r.Context() is cancelled when the client disconnects, which stops all
	// in-flight pipeline work.
	for ev := range s.runner.Run(r.Context(), req.Query) {
		payload, err := json.Marshal(ev)
		if err != nil {
			logger.Error("[WEBUI] failed to marshal event: %v", err)
			continue
		}
		_, _ = w.Write([]byte("event: " + string(ev.Type) + "\n"))
		_, _ = w.Write([]byte("data: " + string(payload) + "\n\n"))
		flusher.Flush()
	}
}

// handleAnswerWS serves the same event feed over a websocket.
func (s *Server) handleAnswerWS(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if s.runner == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "pipeline is not initialized"})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("[WEBUI] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends application data; the read pump only detects
	// the connection closing so the pipeline gets cancelled.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for ev := range s.runner.Run(ctx, query) {
		if err := conn.WriteJSON(ev); err != nil {
			logger.Debug("[WEBUI] websocket write failed: %v", err)
			cancel()
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
