package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// LanguageModel is the request/response boundary to the completion provider.
// One call is one network round trip; connection-level failures surface as
// ErrProviderUnavailable.
type LanguageModel interface {
	Complete(ctx context.Context, msgs []*schema.Message) (*schema.Message, error)
	CompleteWithTools(ctx context.Context, msgs []*schema.Message, tools []*schema.ToolInfo) (*schema.Message, error)
}

// PlanModel produces the opaque plan text for a user request.
type PlanModel interface {
	Plan(ctx context.Context, request string) (string, error)
}

// Models bundles the per-node model clients. Completion serves the executor;
// Summary serves the terminal report and may point at a different model.
type Models interface {
	Planner() PlanModel
	Completion() LanguageModel
	Summary() LanguageModel
}

// ToolInvoker dispatches tool calls by name. Invoke never returns an error;
// every fault is folded into the ToolResult.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args map[string]any) ToolResult
	Infos() []*schema.ToolInfo
}

// Policy is the privilege boundary consulted before dispatching a command.
type Policy interface {
	Check(command string) Verdict
}
