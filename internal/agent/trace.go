package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/hikarile/ToyoAgent/internal/models"
)

var _ callbacks.Handler = (*traceCollector)(nil)

// traceCollector records tool invocations during one agent turn by watching
// the chat-model boundary: tool calls appear in model outputs, their results
// come back as tool-role messages in the next model input. Correlation is by
// call ID; a call whose result never arrives stays unanswered.
type traceCollector struct {
	callbacks.HandlerBuilder

	mu    sync.Mutex
	order []string
	calls map[string]*models.ToolCall
}

func newTraceCollector() *traceCollector {
	return &traceCollector{
		calls: make(map[string]*models.ToolCall),
	}
}

// Calls returns the recorded invocations in the order they were issued.
func (t *traceCollector) Calls() []*models.ToolCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*models.ToolCall, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.calls[id])
	}
	return out
}

func (t *traceCollector) record(id, name, arguments string) {
	if id == "" {
		return
	}
	args := map[string]any{}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			args = map[string]any{"raw": arguments}
		}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.calls[id]; !ok {
		t.order = append(t.order, id)
	}
	t.calls[id] = &models.ToolCall{ID: id, Name: name, Args: args}
}

func (t *traceCollector) setResult(id, result string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	call, ok := t.calls[id]
	if !ok {
		return
	}
	call.Result = result
	call.Answered = true
}

func (t *traceCollector) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if info == nil || info.Component != components.ComponentOfChatModel {
		return ctx
	}
	in := model.ConvCallbackInput(input)
	if in == nil {
		return ctx
	}
	for _, msg := range in.Messages {
		if msg != nil && msg.Role == schema.Tool && msg.ToolCallID != "" {
			t.setResult(msg.ToolCallID, msg.Content)
		}
	}
	return ctx
}

func (t *traceCollector) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if info == nil || info.Component != components.ComponentOfChatModel {
		return ctx
	}
	out := model.ConvCallbackOutput(output)
	if out == nil || out.Message == nil {
		return ctx
	}
	for _, tc := range out.Message.ToolCalls {
		t.record(tc.ID, tc.Function.Name, tc.Function.Arguments)
	}
	return ctx
}

func (t *traceCollector) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	return ctx
}

func (t *traceCollector) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}

// OnEndWithStreamOutput drains streamed model output so tool calls issued in
// streaming mode are recorded too. Chunks are concatenated before the tool
// calls are read, since a call's ID and arguments may arrive split across
// frames.
func (t *traceCollector) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	if info == nil || info.Component != components.ComponentOfChatModel {
		output.Close()
		return ctx
	}
	go func() {
		defer output.Close()
		var chunks []*schema.Message
		for {
			frame, err := output.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return
			}
			if out := model.ConvCallbackOutput(frame); out != nil && out.Message != nil {
				chunks = append(chunks, out.Message)
			}
		}
		if len(chunks) == 0 {
			return
		}
		msg, err := schema.ConcatMessages(chunks)
		if err != nil {
			return
		}
		for _, tc := range msg.ToolCalls {
			t.record(tc.ID, tc.Function.Name, tc.Function.Arguments)
		}
	}()
	return ctx
}
