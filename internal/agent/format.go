package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/hikarile/ToyoAgent/internal/models"
	"github.com/hikarile/ToyoAgent/internal/tools"
)

const unansweredPlaceholder = "(no result recorded)"

// FormatToolDetails renders the tool trace for display: one block per call
// with its name, arguments and result. The two known tools get structured
// rendering; anything else falls back to the raw result text.
func FormatToolDetails(calls []*models.ToolCall) string {
	blocks := make([]string, 0, len(calls))
	for _, call := range calls {
		var b strings.Builder
		fmt.Fprintf(&b, "Tool name: %s\n\n", call.Name)
		b.WriteString("Args:\n")
		b.WriteString(formatArgs(call.Args))
		b.WriteString("\n\nResult:\n")
		b.WriteString(formatResult(call))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func formatArgs(args map[string]any) string {
	data, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	return string(data)
}

func formatResult(call *models.ToolCall) string {
	if !call.Answered {
		return unansweredPlaceholder
	}
	switch call.Name {
	case tools.RetrieveToolName:
		return formatRetrieval(call.Result)
	case tools.RunSQLToolName:
		return formatSQL(call.Result)
	default:
		return call.Result
	}
}

func formatRetrieval(raw string) string {
	var result models.RetrievalResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return raw
	}
	sources, err := json.Marshal(result.Sources)
	if err != nil {
		sources = []byte("[]")
	}
	return fmt.Sprintf("%s\n\nSources:\n%s", result.Context, sources)
}

func formatSQL(raw string) string {
	var result models.SQLResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return raw
	}
	if result.Error != "" {
		return result.Error
	}
	return fmt.Sprintf("%s\n\nOutput:\n%s", result.Query, renderRows(result.Columns, result.Rows))
}

// renderRows lays the result set out as an aligned text table.
func renderRows(columns []string, rows []map[string]any) string {
	if len(rows) == 0 {
		return "(no rows)"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			v, ok := row[col]
			switch {
			case !ok || v == nil:
				cells[i] = "NULL"
			default:
				cells[i] = fmt.Sprint(v)
			}
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	_ = w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
