// Package sqlgen turns natural-language questions into validated SQL
// statements via a deterministic chat completion.
package sqlgen

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const sqlPrompt = `You are a SQL expert. Given the following database schema, write a SQL query to answer the user's question.

Follow these rules:
1. Return only SQL - no explanations, comments, or natural-language text.
2. Use only the tables and columns provided in the schema.
3. Do not invent fields, tables, or values.
4. Prefer simple, readable SQL.
5. If the question is ambiguous, choose the safest reasonable interpretation based strictly on the schema.
6. Never modify the database; generate only SELECT queries.
7. When filters involve text, use case-insensitive matching when appropriate.
8. If the user asks for something impossible with the available schema, generate the closest valid SQL query.

Schema:
%s

Question: %s

Return ONLY the SQL query. Do not include markdown formatting or explanations.`

// ChatModel is the subset of the eino chat model used for SQL generation.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// Generator produces SQL statements from questions against a given schema
// description.
type Generator struct {
	model ChatModel
}

// NewGenerator wraps a deterministic-temperature chat model.
func NewGenerator(m ChatModel) *Generator {
	return &Generator{model: m}
}

// Generate returns the statement text for the question. The model response
// is used verbatim apart from whitespace and markdown-fence stripping;
// validation happens in Validate before execution.
func (g *Generator) Generate(ctx context.Context, schemaDescription, question string) (string, error) {
	prompt := fmt.Sprintf(sqlPrompt, schemaDescription, question)
	out, err := g.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("generate SQL: %w", err)
	}
	return StripFences(out.Content), nil
}

// StripFences removes a surrounding markdown code fence, which models emit
// despite prompt instructions.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.IndexByte(s, '\n'); idx >= 0 && strings.EqualFold(strings.TrimSpace(s[:idx]), "sql") {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
