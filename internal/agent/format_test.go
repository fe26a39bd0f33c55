package agent

import (
	"strings"
	"testing"

	"github.com/hikarile/ToyoAgent/internal/models"
	"github.com/hikarile/ToyoAgent/internal/tools"
)

func TestFormatToolDetailsRetrieval(t *testing.T) {
	calls := []*models.ToolCall{{
		ID:   "call_1",
		Name: tools.RetrieveToolName,
		Args: map[string]any{"question": "warranty length?", "doc_type": "contracts"},
		Result: `{"context": "warranty covers powertrain for 5 years",` +
			` "sources": ["warranty.pdf"]}`,
		Answered: true,
	}}

	out := FormatToolDetails(calls)
	for _, want := range []string{
		"Tool name: retrieve",
		`"question": "warranty length?"`,
		"warranty covers powertrain for 5 years",
		"Sources:",
		"warranty.pdf",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFormatToolDetailsSQLRows(t *testing.T) {
	calls := []*models.ToolCall{{
		ID:   "call_1",
		Name: tools.RunSQLToolName,
		Args: map[string]any{"question": "sales per model"},
		Result: `{"query": "SELECT model, units FROM FACT_SALES",` +
			` "columns": ["model", "units"],` +
			` "sql_result": [{"model": "Corolla", "units": 100}, {"model": "RAV4", "units": null}]}`,
		Answered: true,
	}}

	out := FormatToolDetails(calls)
	if !strings.Contains(out, "SELECT model, units FROM FACT_SALES") {
		t.Errorf("output missing query:\n%s", out)
	}
	if !strings.Contains(out, "Output:") {
		t.Errorf("output missing table header:\n%s", out)
	}
	if !strings.Contains(out, "Corolla") {
		t.Errorf("output missing row value:\n%s", out)
	}
	if !strings.Contains(out, "NULL") {
		t.Errorf("null cell not rendered as NULL:\n%s", out)
	}
}

func TestFormatToolDetailsSQLError(t *testing.T) {
	calls := []*models.ToolCall{{
		ID:       "call_1",
		Name:     tools.RunSQLToolName,
		Args:     map[string]any{"question": "drop everything"},
		Result:   `{"query": "DROP TABLE FACT_SALES", "error": "Error executing SQL: only SELECT statements are allowed"}`,
		Answered: true,
	}}

	out := FormatToolDetails(calls)
	if !strings.Contains(out, "Error executing SQL: only SELECT statements are allowed") {
		t.Errorf("error text missing:\n%s", out)
	}
	if strings.Contains(out, "Output:") {
		t.Errorf("failed call must not render a result table:\n%s", out)
	}
}

func TestFormatToolDetailsUnanswered(t *testing.T) {
	calls := []*models.ToolCall{{
		ID:   "call_1",
		Name: tools.RetrieveToolName,
		Args: map[string]any{"question": "anything"},
	}}

	out := FormatToolDetails(calls)
	if !strings.Contains(out, "(no result recorded)") {
		t.Errorf("unanswered call placeholder missing:\n%s", out)
	}
}

func TestFormatToolDetailsUnknownToolFallsBack(t *testing.T) {
	calls := []*models.ToolCall{{
		ID:       "call_1",
		Name:     "weather",
		Args:     map[string]any{"city": "Nagoya"},
		Result:   "sunny",
		Answered: true,
	}}

	out := FormatToolDetails(calls)
	if !strings.Contains(out, "sunny") {
		t.Errorf("raw result missing for unknown tool:\n%s", out)
	}
}

func TestRenderRowsEmpty(t *testing.T) {
	if got := renderRows([]string{"model"}, nil); got != "(no rows)" {
		t.Errorf("renderRows = %q", got)
	}
}
