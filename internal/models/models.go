// Package models holds the record types shared across the agent, tools and CLI.
package models

// RetrieveInput is the argument payload of the retrieve tool.
type RetrieveInput struct {
	Question string `json:"question"`
	DocType  string `json:"doc_type"`
}

// RetrievalResult is the retrieve tool output: deduplicated passage text and
// the unique set of source documents the passages came from.
type RetrievalResult struct {
	Context string   `json:"context"`
	Sources []string `json:"sources"`
}

// RunSQLInput is the argument payload of the run_sql tool.
type RunSQLInput struct {
	Question string `json:"question"`
}

// SQLResult is the run_sql tool output. On failure only Error is set; the
// error is surfaced as tool output text rather than a raised failure, so the
// model can reason about it.
type SQLResult struct {
	Query   string           `json:"query,omitempty"`
	Columns []string         `json:"columns,omitempty"`
	Rows    []map[string]any `json:"sql_result,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// ToolCall records one tool invocation during an agent turn, correlated with
// its result by call ID. Answered stays false when no result message ever
// arrived for the ID.
type ToolCall struct {
	ID       string
	Name     string
	Args     map[string]any
	Result   string
	Answered bool
}

// Answer is the agent's response for one user turn.
type Answer struct {
	Text        string
	ToolDetails string
}

// ChatMessage is one turn of the in-memory display transcript.
type ChatMessage struct {
	Role    string
	Content string
	Tools   string
}
