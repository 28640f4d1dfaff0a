package agentnode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	policyx "github.com/opsloop-ai/opsloop/agent/policy"
	toolx "github.com/opsloop-ai/opsloop/agent/tool"
)

// InvokeTools dispatches every tool call on the last assistant message, in
// order, and appends one tool-role message per call carrying the JSON-encoded
// result. A malformed or blocked call becomes a failed result; it never
// aborts the batch.
func InvokeTools(
	ctx context.Context,
	in *GraphState,
	tools contractx.ToolInvoker,
	guard contractx.Policy,
) (*GraphState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if tools == nil {
		return nil, fmt.Errorf("%w: tool invoker is required", contractx.ErrValidation)
	}

	last := in.Conv.LastMessage()
	if last == nil || last.Role != schema.Assistant || len(last.ToolCalls) == 0 {
		return nil, fmt.Errorf("%w: no pending tool calls", contractx.ErrValidation)
	}

	in.Batch = in.Batch[:0]
	for _, call := range last.ToolCalls {
		result := runOneCall(ctx, call, tools, guard)
		payload, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("encode tool result: %w", err)
		}

		in.Conv.Append(&schema.Message{
			Role:       schema.Tool,
			Content:    string(payload),
			ToolCallID: call.ID,
		})
		in.Conv.RecordToolResult(result)
		in.Batch = append(in.Batch, result)
	}
	return in, nil
}

func runOneCall(
	ctx context.Context,
	call schema.ToolCall,
	tools contractx.ToolInvoker,
	guard contractx.Policy,
) contractx.ToolResult {
	req, err := contractx.ParseToolCall(call)
	if err != nil {
		return contractx.ToolResult{
			Tool:    call.Function.Name,
			Success: false,
			Error:   err.Error(),
		}
	}

	if guard != nil {
		if cmd := commandText(req); cmd != "" {
			verdict := guard.Check(cmd)
			if verdict.Protected {
				log.Warn().Str("tool", req.Name).Msg("blocked protected operation")
				return contractx.ToolResult{
					Tool:    req.Name,
					Success: false,
					Output:  policyx.RefusalText,
					Error:   contractx.ErrProtectedOperation.Error(),
				}
			}
			if len(verdict.Requirements) > 0 {
				log.Debug().
					Str("tool", req.Name).
					Strs("requirements", verdict.Requirements).
					Msg("command carries requirements")
			}
		}
	}

	return tools.Invoke(ctx, req.Name, req.Args)
}

// commandText extracts the shell-facing text of a call so the policy guard
// can screen it. Python code runs in-process through its own tool and is not
// screened here.
func commandText(req contractx.ToolCallRequest) string {
	switch req.Name {
	case toolx.ToolRunCommand:
		if s, ok := req.Args["command"].(string); ok {
			return s
		}
	case toolx.ToolRunScript:
		parts := make([]string, 0, 4)
		if s, ok := req.Args["script_path"].(string); ok {
			parts = append(parts, s)
		}
		if raw, ok := req.Args["args"].([]any); ok {
			for _, item := range raw {
				if s, ok := item.(string); ok {
					parts = append(parts, s)
				}
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}
