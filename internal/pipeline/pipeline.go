package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sibylsearch/sibyl/internal/answer"
	"github.com/sibylsearch/sibyl/internal/logger"
	"github.com/sibylsearch/sibyl/internal/media"
	"github.com/sibylsearch/sibyl/internal/retrieval"
	"github.com/sibylsearch/sibyl/internal/scrape"
	"github.com/sibylsearch/sibyl/internal/search"
)

// SourceDiscoverer finds candidate pages for a query.
type SourceDiscoverer interface {
	Search(ctx context.Context, query string, count int) ([]search.Source, error)
}

// ContentAcquirer fetches pages and reduces them to readable text.
type ContentAcquirer interface {
	Acquire(ctx context.Context, sources []search.Source) []scrape.Page
}

// ChunkRetriever selects the most relevant chunks across pages.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, pages []scrape.Page, query string) ([]retrieval.Chunk, error)
}

// AnswerGenerator streams the answer and proposes follow-up questions.
type AnswerGenerator interface {
	Stream(ctx context.Context, query string, chunks []retrieval.Chunk, onToken func(string)) error
	FollowUps(ctx context.Context, sources []search.Source, query string) (*answer.FollowUpSet, error)
}

// Deps are the collaborators of one pipeline, passed in explicitly at
// construction — there are no ambient provider singletons.
type Deps struct {
	Search    SourceDiscoverer
	Images    media.ImageProvider
	Videos    media.VideoProvider
	Scraper   ContentAcquirer
	Retriever ChunkRetriever
	Generator AnswerGenerator
}

type Options struct {
	PagesToScan int
	FollowUps   bool
}

// Pipeline orchestrates one request: source discovery and media discovery
// run jointly, content acquisition and retrieval follow sequentially, then
// the answer streams out token by token. Every stage's output is emitted the
// moment the stage settles, and the stream always terminates with exactly
// one done event, whatever failed along the way.
type Pipeline struct {
	deps Deps
	opts Options
}

func New(deps Deps, opts Options) *Pipeline {
	if opts.PagesToScan <= 0 {
		opts.PagesToScan = 10
	}
	return &Pipeline{deps: deps, opts: opts}
}

// Run starts the pipeline and returns its event stream. The stream is
// consumed exactly once; it is closed after the terminal done event. All
// in-flight work stops promptly when ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context, query string) <-chan Event {
	events := make(chan Event)
	go p.run(ctx, query, events)
	return events
}

func (p *Pipeline) run(ctx context.Context, query string, events chan<- Event) {
	defer close(events)

	id := uuid.NewString()
	logger.Info("[PIPELINE] %s started, query=%q", id, query)

	emit := func(ev Event) bool {
		select {
		case events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}

	var (
		sources      []search.Source
		discoverErr  error
		imagesFailed bool
		videosFailed bool
	)

	// Source, image and video discovery settle independently; one failing
	// never cancels the others, and each event goes out as soon as its
	// stage finishes.
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		found, err := p.deps.Search.Search(ctx, query, p.opts.PagesToScan)
		if err != nil {
			discoverErr = err
			logger.Error("[PIPELINE] %s source discovery failed: %v", id, err)
			return
		}
		sources = found
		emit(Event{Type: EventSearchResults, SearchResults: found})
	}()
	go func() {
		defer wg.Done()
		images, err := p.deps.Images.SearchImages(ctx, query)
		if err != nil {
			imagesFailed = true
			logger.Error("[PIPELINE] %s image discovery failed: %v", id, err)
			return
		}
		emit(Event{Type: EventImages, Images: images})
	}()
	go func() {
		defer wg.Done()
		videos, err := p.deps.Videos.SearchVideos(ctx, query)
		if err != nil {
			videosFailed = true
			logger.Error("[PIPELINE] %s video discovery failed: %v", id, err)
			return
		}
		emit(Event{Type: EventVideos, Videos: videos})
	}()
	wg.Wait()

	partial := imagesFailed || videosFailed

	if ctx.Err() != nil {
		logger.Info("[PIPELINE] %s cancelled", id)
		return
	}

	if discoverErr != nil {
		// Without sources there is nothing to answer from; the stream
		// still terminates deterministically.
		emit(Event{Type: EventDone, Status: StatusFailed})
		return
	}

	pages := p.deps.Scraper.Acquire(ctx, sources)
	logger.Debug("[PIPELINE] %s acquired %d/%d pages", id, len(pages), len(sources))

	chunks, err := p.deps.Retriever.Retrieve(ctx, pages, query)
	if err != nil {
		partial = true
		logger.Error("[PIPELINE] %s retrieval failed: %v", id, err)
		chunks = nil
	}

	streamErr := p.deps.Generator.Stream(ctx, query, chunks, func(token string) {
		emit(Event{Type: EventAnswerToken, Token: token})
	})
	if streamErr != nil {
		partial = true
		logger.Error("[PIPELINE] %s answer stream ended abnormally: %v", id, streamErr)
	}
	// The consumer must never be left waiting: the end marker goes out even
	// when the model stream died mid-answer.
	emit(Event{Type: EventAnswerEnd})

	if ctx.Err() != nil {
		logger.Info("[PIPELINE] %s cancelled", id)
		return
	}

	if p.opts.FollowUps {
		set, err := p.deps.Generator.FollowUps(ctx, sources, query)
		if err != nil {
			partial = true
			logger.Warn("[PIPELINE] %s follow-up generation failed: %v", id, err)
		} else {
			emit(Event{Type: EventFollowUp, FollowUp: set})
		}
	}

	status := StatusDone
	if partial {
		status = StatusPartial
	}
	emit(Event{Type: EventDone, Status: status})
	logger.Info("[PIPELINE] %s finished, status=%s", id, status)
}
