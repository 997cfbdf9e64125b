package retrieval

import (
	"context"
	"fmt"
	"sync"

	"github.com/philippgille/chromem-go"
	"github.com/sibylsearch/sibyl/internal/llm"
	"github.com/sibylsearch/sibyl/internal/logger"
	"github.com/sibylsearch/sibyl/internal/scrape"
)

// Chunk is a retrieved window of a source page, carrying citation metadata
// back to its origin. The JSON keys feed the answer prompt.
type Chunk struct {
	Text        string  `json:"text"`
	SourceTitle string  `json:"title"`
	SourceURL   string  `json:"link"`
	Similarity  float32 `json:"similarity,omitempty"`
}

// Retriever selects the most query-relevant chunks of each fetched page.
//
// Selection is per source: every page gets its own ephemeral in-memory index
// and contributes its own top-N, concatenated in page order with no global
// re-rank. That trades some global relevance for source diversity — every
// successfully fetched source gets a chance to contribute evidence.
type Retriever struct {
	embedder     llm.EmbeddingProvider
	chunkSize    int
	chunkOverlap int
	topN         int
}

func NewRetriever(embedder llm.EmbeddingProvider, chunkSize, chunkOverlap, topN int) *Retriever {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if topN <= 0 {
		topN = 4
	}
	return &Retriever{
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		topN:         topN,
	}
}

// Retrieve embeds the query once, then processes pages concurrently. A page
// whose embedding or indexing fails contributes zero chunks; one bad source
// never aborts retrieval for the others.
func (r *Retriever) Retrieve(ctx context.Context, pages []scrape.Page, query string) ([]Chunk, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	queryVecs, err := r.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVec := queryVecs[0]

	perPage := make([][]Chunk, len(pages))
	var wg sync.WaitGroup

	for i, page := range pages {
		if page.Text == "" {
			continue
		}
		wg.Add(1)
		go func(i int, page scrape.Page) {
			defer wg.Done()
			chunks, err := r.retrieveFromPage(ctx, page, queryVec)
			if err != nil {
				logger.Warn("[RETRIEVAL] skipping %s: %v", page.URL, err)
				return
			}
			perPage[i] = chunks
		}(i, page)
	}
	wg.Wait()

	var all []Chunk
	for _, chunks := range perPage {
		all = append(all, chunks...)
	}
	return all, nil
}

// retrieveFromPage builds a fresh index scoped to one page's chunks, queries
// it and discards it.
func (r *Retriever) retrieveFromPage(ctx context.Context, page scrape.Page, queryVec []float32) ([]Chunk, error) {
	texts := SplitText(page.Text, r.chunkSize, r.chunkOverlap)
	if len(texts) == 0 {
		return nil, nil
	}

	embeddings, err := r.embedder.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: %d texts, %d vectors", len(texts), len(embeddings))
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("page", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	docs := make([]chromem.Document, 0, len(texts))
	for i, text := range texts {
		docs = append(docs, chromem.Document{
			ID:        fmt.Sprintf("chunk-%d", i),
			Embedding: embeddings[i],
			Content:   text,
			Metadata: map[string]string{
				"title": page.Title,
				"link":  page.URL,
			},
		})
	}
	if err := collection.AddDocuments(ctx, docs, 1); err != nil {
		return nil, fmt.Errorf("failed to add documents: %w", err)
	}

	n := r.topN
	if n > len(docs) {
		n = len(docs)
	}

	results, err := collection.QueryEmbedding(ctx, queryVec, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	chunks := make([]Chunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, Chunk{
			Text:        res.Content,
			SourceTitle: res.Metadata["title"],
			SourceURL:   res.Metadata["link"],
			Similarity:  res.Similarity,
		})
	}
	return chunks, nil
}
