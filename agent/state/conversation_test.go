package state

import (
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

func TestBeginRequestResetsPerRequestFields(t *testing.T) {
	t.Parallel()

	conv := NewConversation([]*schema.Message{
		{Role: schema.User, Content: "earlier"},
	})
	conv.Plan = "stale plan"
	conv.Executing = true
	conv.ToolResults = []contractx.ToolResult{{Tool: "run_command"}}

	if err := conv.BeginRequest("  list files  "); err != nil {
		t.Fatalf("BeginRequest() error = %v", err)
	}

	if conv.Plan != "" || conv.Executing || conv.ToolResults != nil {
		t.Fatalf("per-request fields not reset: %+v", conv)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
	last := conv.LastMessage()
	if last.Role != schema.User || last.Content != "list files" {
		t.Fatalf("unexpected last message: %+v", last)
	}
}

func TestBeginRequestRejectsBlankText(t *testing.T) {
	t.Parallel()

	conv := NewConversation(nil)
	if err := conv.BeginRequest("   "); !errors.Is(err, ErrEmptyRequest) {
		t.Fatalf("BeginRequest() error = %v, want ErrEmptyRequest", err)
	}
}

func TestNewConversationCopiesHistory(t *testing.T) {
	t.Parallel()

	history := []*schema.Message{
		{Role: schema.User, Content: "a"},
	}
	conv := NewConversation(history)
	conv.Append(&schema.Message{Role: schema.Assistant, Content: "b"})

	if len(history) != 1 {
		t.Fatalf("caller history mutated: %d messages", len(history))
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
}

func TestClearPlanResetsExecution(t *testing.T) {
	t.Parallel()

	conv := NewConversation(nil)
	conv.Plan = "step 1"
	conv.Executing = true

	conv.ClearPlan()
	if conv.HasPlan() || conv.Executing {
		t.Fatalf("expected cleared plan, got %+v", conv)
	}
}

func TestValidateToolCallCorrelation(t *testing.T) {
	t.Parallel()

	conv := NewConversation(nil)
	conv.Append(
		&schema.Message{
			Role: schema.Assistant,
			ToolCalls: []schema.ToolCall{
				{ID: "call-1", Function: schema.FunctionCall{Name: "run_command"}},
			},
		},
		&schema.Message{Role: schema.Tool, Content: "{}", ToolCallID: "call-1"},
	)
	if err := conv.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsOrphanToolMessage(t *testing.T) {
	t.Parallel()

	conv := NewConversation(nil)
	conv.Append(&schema.Message{Role: schema.Tool, Content: "{}", ToolCallID: "missing"})
	if err := conv.Validate(); err == nil {
		t.Fatal("expected validation failure for orphan tool message")
	}
}
