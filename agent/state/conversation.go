package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

var (
	ErrNilConversation = errors.New("conversation is nil")
	ErrEmptyRequest    = errors.New("user request is empty")
)

// Conversation is the mutable state one orchestration run operates on.
// Messages are append-only for the duration of a request; insertion order is
// the sole timeline authority. The caller retains Messages across requests,
// while Plan, Executing, and ToolResults are per-request and reset by
// BeginRequest.
type Conversation struct {
	Messages    []*schema.Message
	Plan        string
	Executing   bool
	ToolResults []contractx.ToolResult
}

// NewConversation seeds a conversation with caller-retained history. The
// history slice is copied so the run owns its message list exclusively.
func NewConversation(history []*schema.Message) *Conversation {
	return &Conversation{
		Messages: append([]*schema.Message(nil), history...),
	}
}

// BeginRequest resets the per-request fields and appends the incoming user
// message.
func (c *Conversation) BeginRequest(text string) error {
	if c == nil {
		return ErrNilConversation
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyRequest
	}

	c.Plan = ""
	c.Executing = false
	c.ToolResults = nil
	c.Append(&schema.Message{
		Role:    schema.User,
		Content: trimmed,
	})
	return nil
}

func (c *Conversation) Append(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m == nil {
			continue
		}
		c.Messages = append(c.Messages, m)
	}
}

func (c *Conversation) LastMessage() *schema.Message {
	if c == nil || len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[len(c.Messages)-1]
}

func (c *Conversation) HasPlan() bool {
	return c != nil && strings.TrimSpace(c.Plan) != ""
}

// ClearPlan discards the current plan so the next planner pass regenerates
// it. Re-planning replaces the plan entirely; there is no merge.
func (c *Conversation) ClearPlan() {
	c.Plan = ""
	c.Executing = false
}

func (c *Conversation) RecordToolResult(r contractx.ToolResult) {
	c.ToolResults = append(c.ToolResults, r)
}

// Validate checks the tool-call correlation invariant: every tool-role
// message must reference a call id emitted by a prior assistant message.
func (c *Conversation) Validate() error {
	if c == nil {
		return ErrNilConversation
	}

	seen := make(map[string]struct{})
	for i, m := range c.Messages {
		if m == nil {
			return fmt.Errorf("message at index %d is nil", i)
		}
		switch m.Role {
		case schema.Assistant:
			for _, call := range m.ToolCalls {
				if call.ID != "" {
					seen[call.ID] = struct{}{}
				}
			}
		case schema.Tool:
			if m.ToolCallID == "" {
				return fmt.Errorf("tool message at index %d has no call id", i)
			}
			if _, ok := seen[m.ToolCallID]; !ok {
				return fmt.Errorf("tool message at index %d references unknown call id %q", i, m.ToolCallID)
			}
		}
	}
	return nil
}
