// Package tools defines the two agent tools: document retrieval and
// natural-language SQL over the sales database.
package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	t_utils "github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/hikarile/ToyoAgent/config"
	"github.com/hikarile/ToyoAgent/internal/embedding"
	"github.com/hikarile/ToyoAgent/internal/models"
	"github.com/hikarile/ToyoAgent/internal/vectorstore"
)

// RetrieveToolName is the registered name of the document retrieval tool.
const RetrieveToolName = "retrieve"

// DocTypeContracts and DocTypeUserManuals are the two searchable document
// categories, matching the docs subdirectory names used at ingest time.
const (
	DocTypeContracts   = "contracts"
	DocTypeUserManuals = "user_manuals"
)

// NewRetrieveTool creates the vector-search tool. Each call opens the
// persisted index, searches the requested category and deduplicates the
// returned passages by exact text.
func NewRetrieveTool(cfg *config.Config, embedder embedding.Embedder, logger *zap.Logger) tool.BaseTool {
	return t_utils.NewTool(
		&schema.ToolInfo{
			Name: RetrieveToolName,
			Desc: "Retrieve relevant documents to answer the user's question. " +
				"Use this tool for questions about warranty terms, policy clauses, contract details or owner manual content. " +
				"Two document types can be searched: 'contracts' or 'user_manuals'.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"question": {
					Type:     "string",
					Desc:     "The user's question",
					Required: true,
				},
				"doc_type": {
					Type:     "string",
					Desc:     "The type of document to search",
					Enum:     []string{DocTypeContracts, DocTypeUserManuals},
					Required: true,
				},
			}),
		},
		func(ctx context.Context, input models.RetrieveInput) (*models.RetrievalResult, error) {
			if input.DocType != DocTypeContracts && input.DocType != DocTypeUserManuals {
				return nil, fmt.Errorf("unknown doc_type %q", input.DocType)
			}

			index, err := vectorstore.Load(cfg.IndexDir)
			if err != nil {
				return nil, err
			}
			query, err := embedder.Embed(ctx, input.Question)
			if err != nil {
				return nil, err
			}
			hits, err := index.Search(query, input.DocType, cfg.RetrievalTopK)
			if err != nil {
				return nil, err
			}

			logger.Info("retrieve tool invoked",
				zap.String("doc_type", input.DocType),
				zap.Int("hits", len(hits)))

			return dedupeHits(hits), nil
		},
	)
}

// dedupeHits drops passages with identical text and collapses sources to a
// unique list, preserving first-seen order.
func dedupeHits(hits []*vectorstore.Hit) *models.RetrievalResult {
	seenText := make(map[string]bool)
	seenSource := make(map[string]bool)
	var passages []string
	sources := make([]string, 0)
	for _, hit := range hits {
		if seenText[hit.Chunk.Text] {
			continue
		}
		seenText[hit.Chunk.Text] = true
		passages = append(passages, hit.Chunk.Text)
		if !seenSource[hit.Chunk.Source] {
			seenSource[hit.Chunk.Source] = true
			sources = append(sources, hit.Chunk.Source)
		}
	}
	return &models.RetrievalResult{
		Context: strings.Join(passages, "\n\n"),
		Sources: sources,
	}
}
