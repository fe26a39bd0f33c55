// Package ingest builds the persisted vector index from a PDF document tree.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hikarile/ToyoAgent/config"
	"github.com/hikarile/ToyoAgent/internal/embedding"
	"github.com/hikarile/ToyoAgent/internal/vectorstore"
)

// embedBatchSize bounds the number of chunk texts sent per embedding request.
const embedBatchSize = 64

// Ingestor walks the docs directory tree, one subdirectory per document
// category, and rebuilds the vector index from scratch. Re-running fully
// replaces the previous index.
type Ingestor struct {
	cfg      *config.Config
	embedder embedding.Embedder
	logger   *zap.Logger
}

// NewIngestor creates an ingestor writing to cfg.IndexDir.
func NewIngestor(cfg *config.Config, embedder embedding.Embedder, logger *zap.Logger) *Ingestor {
	return &Ingestor{cfg: cfg, embedder: embedder, logger: logger}
}

// Run loads every PDF under each category subdirectory of the docs dir,
// chunks and embeds the page text, and persists the resulting index. Returns
// the number of chunks indexed.
func (ing *Ingestor) Run(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(ing.cfg.DocsDir)
	if err != nil {
		return 0, fmt.Errorf("read docs dir %s: %w", ing.cfg.DocsDir, err)
	}

	chunker := NewChunker(ing.cfg.ChunkSize, ing.cfg.ChunkOverlap)
	index, err := vectorstore.New(ing.embedder.Dimensions())
	if err != nil {
		return 0, err
	}

	total := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		docType := entry.Name()
		n, err := ing.ingestCategory(ctx, index, chunker, docType)
		if err != nil {
			return 0, err
		}
		ing.logger.Info("indexed category",
			zap.String("doc_type", docType),
			zap.Int("chunks", n))
		total += n
	}

	if err := index.Save(ing.cfg.IndexDir); err != nil {
		return 0, err
	}
	ing.logger.Info("vector index persisted",
		zap.String("dir", ing.cfg.IndexDir),
		zap.Int("chunks", total))
	return total, nil
}

func (ing *Ingestor) ingestCategory(ctx context.Context, index *vectorstore.Index, chunker *Chunker, docType string) (int, error) {
	dir := filepath.Join(ing.cfg.DocsDir, docType)
	paths, err := filepath.Glob(filepath.Join(dir, "*.pdf"))
	if err != nil {
		return 0, fmt.Errorf("list PDFs in %s: %w", dir, err)
	}
	sort.Strings(paths)

	var texts []string
	var chunks []*vectorstore.Chunk
	for _, path := range paths {
		pages, err := ExtractPDFPages(path)
		if err != nil {
			return 0, err
		}
		for _, page := range pages {
			for _, text := range chunker.Split(page) {
				if strings.TrimSpace(text) == "" {
					continue
				}
				texts = append(texts, text)
				chunks = append(chunks, &vectorstore.Chunk{
					ID:      uuid.New().String(),
					Text:    text,
					Source:  path,
					DocType: docType,
				})
			}
		}
		ing.logger.Info("loaded document", zap.String("path", path), zap.Int("pages", len(pages)))
	}

	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := ing.embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return 0, err
		}
		for i, vec := range vecs {
			chunks[start+i].Vector = vec
		}
	}

	if err := index.Add(chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}
