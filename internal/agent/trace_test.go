package agent

import (
	"context"
	"testing"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

func modelInfo() *callbacks.RunInfo {
	return &callbacks.RunInfo{Component: components.ComponentOfChatModel}
}

func TestTraceCollectorRecordsAndCorrelates(t *testing.T) {
	trace := newTraceCollector()
	ctx := context.Background()

	// turn 1: model asks for a tool call
	trace.OnEnd(ctx, modelInfo(), &model.CallbackOutput{
		Message: schema.AssistantMessage("", []schema.ToolCall{{
			ID: "call_1",
			Function: schema.FunctionCall{
				Name:      "run_sql",
				Arguments: `{"question": "sales per model"}`,
			},
		}}),
	})

	// turn 2: tool result comes back in the next model input
	trace.OnStart(ctx, modelInfo(), &model.CallbackInput{
		Messages: []*schema.Message{
			schema.SystemMessage("system"),
			schema.ToolMessage(`{"query": "SELECT 1"}`, "call_1"),
		},
	})

	calls := trace.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	call := calls[0]
	if call.Name != "run_sql" {
		t.Errorf("Name = %q", call.Name)
	}
	if call.Args["question"] != "sales per model" {
		t.Errorf("Args = %v", call.Args)
	}
	if !call.Answered || call.Result != `{"query": "SELECT 1"}` {
		t.Errorf("result not correlated: answered=%v result=%q", call.Answered, call.Result)
	}
}

func TestTraceCollectorPreservesOrder(t *testing.T) {
	trace := newTraceCollector()
	ctx := context.Background()

	trace.OnEnd(ctx, modelInfo(), &model.CallbackOutput{
		Message: schema.AssistantMessage("", []schema.ToolCall{
			{ID: "call_1", Function: schema.FunctionCall{Name: "retrieve", Arguments: `{}`}},
			{ID: "call_2", Function: schema.FunctionCall{Name: "run_sql", Arguments: `{}`}},
		}),
	})

	calls := trace.Calls()
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0].ID != "call_1" || calls[1].ID != "call_2" {
		t.Errorf("order = %q, %q", calls[0].ID, calls[1].ID)
	}
}

func TestTraceCollectorUnansweredCall(t *testing.T) {
	trace := newTraceCollector()
	trace.OnEnd(context.Background(), modelInfo(), &model.CallbackOutput{
		Message: schema.AssistantMessage("", []schema.ToolCall{
			{ID: "call_1", Function: schema.FunctionCall{Name: "retrieve", Arguments: `{}`}},
		}),
	})

	calls := trace.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].Answered {
		t.Error("call without a tool-role reply must stay unanswered")
	}
}

func TestTraceCollectorMalformedArguments(t *testing.T) {
	trace := newTraceCollector()
	trace.OnEnd(context.Background(), modelInfo(), &model.CallbackOutput{
		Message: schema.AssistantMessage("", []schema.ToolCall{
			{ID: "call_1", Function: schema.FunctionCall{Name: "retrieve", Arguments: "not json"}},
		}),
	})

	calls := trace.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].Args["raw"] != "not json" {
		t.Errorf("Args = %v, want raw fallback", calls[0].Args)
	}
}

func TestTraceCollectorIsCallbackHandler(t *testing.T) {
	// the collector is handed to compose.WithCallbacks, which takes the full
	// five-method handler interface including the stream variants
	var handler callbacks.Handler = newTraceCollector()
	if handler == nil {
		t.Fatal("traceCollector must satisfy callbacks.Handler")
	}
}

func TestTraceCollectorStreamedToolCalls(t *testing.T) {
	trace := newTraceCollector()

	// chunks of one streamed call share an index; ID and arguments arrive split
	idx := 0
	frames := []callbacks.CallbackOutput{
		&model.CallbackOutput{Message: schema.AssistantMessage("", []schema.ToolCall{{
			Index: &idx,
			ID:    "call_1",
			Function: schema.FunctionCall{
				Name:      "run_sql",
				Arguments: `{"question": "sales`,
			},
		}})},
		&model.CallbackOutput{Message: schema.AssistantMessage("", []schema.ToolCall{{
			Index: &idx,
			Function: schema.FunctionCall{
				Arguments: ` per model"}`,
			},
		}})},
	}
	trace.OnEndWithStreamOutput(context.Background(), modelInfo(),
		schema.StreamReaderFromArray(frames))

	// the stream is drained asynchronously
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(trace.Calls()) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	calls := trace.Calls()
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(calls))
	}
	if calls[0].Name != "run_sql" {
		t.Errorf("Name = %q", calls[0].Name)
	}
	if calls[0].Args["question"] != "sales per model" {
		t.Errorf("Args = %v, want reassembled arguments", calls[0].Args)
	}
}

func TestTraceCollectorStreamFromOtherComponentClosed(t *testing.T) {
	trace := newTraceCollector()
	stream := schema.StreamReaderFromArray([]callbacks.CallbackOutput{
		&model.CallbackOutput{Message: schema.AssistantMessage("ignored", nil)},
	})
	trace.OnEndWithStreamOutput(context.Background(),
		&callbacks.RunInfo{Component: components.ComponentOfTool}, stream)

	if len(trace.Calls()) != 0 {
		t.Error("non-chat-model stream must be ignored")
	}
}

func TestTraceCollectorIgnoresOtherComponents(t *testing.T) {
	trace := newTraceCollector()
	trace.OnEnd(context.Background(), &callbacks.RunInfo{Component: components.ComponentOfTool}, &model.CallbackOutput{
		Message: schema.AssistantMessage("", []schema.ToolCall{
			{ID: "call_1", Function: schema.FunctionCall{Name: "retrieve", Arguments: `{}`}},
		}),
	})
	if len(trace.Calls()) != 0 {
		t.Error("non-chat-model output must be ignored")
	}
}
