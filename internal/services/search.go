package services

import (
	"context"
	"fmt"
	"sort"

	"alfredoptarigan/cv-project/internal/models"
)

const (
	indexChunkSize    = 800
	indexChunkOverlap = 100
)

type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type SearchHit struct {
	CVID    uint    `json:"cv_id"`
	Score   float32 `json:"score"`
	Snippet string  `json:"snippet"`
}

// CVIndex keeps a semantic search index of CV content.
type CVIndex interface {
	IndexCV(ctx context.Context, cv *models.CV) error
	RemoveCV(ctx context.Context, cvID uint) error
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

type cvIndex struct {
	store         VectorStore
	embedder      Embedder
	chunker       TextChunker
	promptBuilder *PromptBuilder
}

func NewCVIndex(store VectorStore, embedder Embedder) CVIndex {
	return &cvIndex{
		store:         store,
		embedder:      embedder,
		chunker:       NewTextChunker(),
		promptBuilder: NewPromptBuilder(),
	}
}

func (ix *cvIndex) IndexCV(ctx context.Context, cv *models.CV) error {
	chunks := ix.chunker.ChunkText(ix.promptBuilder.BuildIndexDocument(cv), indexChunkSize, indexChunkOverlap)

	vectors := make([][]float32, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := ix.embedder.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d of cv %d: %w", i, cv.ID, err)
		}
		vectors = append(vectors, vector)
	}

	// drop stale chunks when the CV got shorter
	if err := ix.store.DeleteCV(ctx, cv.ID); err != nil {
		return err
	}
	return ix.store.UpsertChunks(ctx, cv.ID, chunks, vectors)
}

func (ix *cvIndex) RemoveCV(ctx context.Context, cvID uint) error {
	return ix.store.DeleteCV(ctx, cvID)
}

// Search returns at most limit CVs ranked by their best matching chunk.
func (ix *cvIndex) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 5
	}

	vector, err := ix.embedder.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, err
	}

	// several chunks can belong to the same CV
	results, err := ix.store.SearchSimilar(ctx, vector, limit*4)
	if err != nil {
		return nil, err
	}

	best := make(map[uint]SearchHit)
	for _, r := range results {
		if hit, ok := best[r.CVID]; ok && hit.Score >= r.Score {
			continue
		}
		best[r.CVID] = SearchHit{CVID: r.CVID, Score: r.Score, Snippet: r.Text}
	}

	hits := make([]SearchHit, 0, len(best))
	for _, hit := range best {
		hits = append(hits, hit)
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].CVID < hits[j].CVID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
