package pipeline

import (
	"github.com/sibylsearch/sibyl/internal/answer"
	"github.com/sibylsearch/sibyl/internal/media"
	"github.com/sibylsearch/sibyl/internal/search"
)

// EventType tags one variant of the outbound event stream. The values are
// the wire keys the UI consumes.
type EventType string

const (
	EventSearchResults EventType = "searchResults"
	EventImages        EventType = "images"
	EventVideos        EventType = "videos"
	EventAnswerToken   EventType = "llmResponse"
	EventAnswerEnd     EventType = "llmResponseEnd"
	EventFollowUp      EventType = "followUp"
	EventDone          EventType = "done"
)

// Status is carried by the terminal done event. Anything other than
// StatusDone tells the consumer the answer is partial or missing; no internal
// error detail crosses this interface.
type Status string

const (
	StatusDone    Status = "done"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Event is one element of the append-only stream produced for a request.
// Exactly one field besides Type is populated, matching the event's variant.
type Event struct {
	Type          EventType           `json:"type"`
	SearchResults []search.Source     `json:"searchResults,omitempty"`
	Images        []media.Image       `json:"images,omitempty"`
	Videos        []media.Video       `json:"videos,omitempty"`
	Token         string              `json:"llmResponse,omitempty"`
	FollowUp      *answer.FollowUpSet `json:"followUp,omitempty"`
	Status        Status              `json:"status,omitempty"`
}
