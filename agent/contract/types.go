package contract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// NodeKind identifies which orchestration node a model invocation serves.
type NodeKind string

const (
	NodePlanner  NodeKind = "planner"
	NodeExecutor NodeKind = "executor"
	NodeSummary  NodeKind = "summary"
)

// ToolCallRequest is a decoded tool invocation taken from an assistant
// message. Args are already parsed out of the raw JSON blob the model
// produced.
type ToolCallRequest struct {
	Name   string         `json:"name"`
	Args   map[string]any `json:"args,omitempty"`
	CallID string         `json:"call_id"`
}

// ToolResult is the structured outcome of one tool invocation. Faults inside
// a handler never escape as errors; they land in Error with Success=false.
type ToolResult struct {
	Tool             string `json:"tool"`
	Success          bool   `json:"success"`
	Output           string `json:"output"`
	Error            string `json:"error,omitempty"`
	RequiresFollowup bool   `json:"requires_followup,omitempty"`
}

// Faulted reports whether the result should push the run back to planning.
func (r ToolResult) Faulted() bool {
	return r.Error != "" || r.RequiresFollowup
}

// Verdict is the policy boundary's answer for a raw command line.
type Verdict struct {
	Protected    bool     `json:"protected"`
	Requirements []string `json:"requirements,omitempty"`
}

// ParseToolCall decodes a model-produced tool call into a typed request.
// Malformed argument JSON is a schema violation the caller maps to a failed
// ToolResult, never a crash.
func ParseToolCall(call schema.ToolCall) (ToolCallRequest, error) {
	name := strings.TrimSpace(call.Function.Name)
	if name == "" {
		return ToolCallRequest{}, fmt.Errorf("%w: tool call name is empty", ErrMalformedToolCall)
	}

	args := map[string]any{}
	rawArgs := strings.TrimSpace(call.Function.Arguments)
	if rawArgs != "" {
		if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
			return ToolCallRequest{}, fmt.Errorf("%w: invalid args for tool=%s: %v", ErrMalformedToolCall, name, err)
		}
	}

	return ToolCallRequest{
		Name:   name,
		Args:   args,
		CallID: call.ID,
	}, nil
}
