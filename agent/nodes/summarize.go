package agentnode

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

// Summarize appends the summary instruction as a user message and asks the
// completion model for the final reply. No tools are bound, so the model
// cannot extend the run.
func Summarize(
	ctx context.Context,
	in *GraphState,
	llm contractx.LanguageModel,
	instruction string,
) (*GraphState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: completion model is required", contractx.ErrValidation)
	}

	in.Conv.Append(&schema.Message{
		Role:    schema.User,
		Content: instruction,
	})

	out, err := llm.Complete(ctx, in.Conv.Messages)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: summary returned no message", contractx.ErrValidation)
	}

	in.Conv.Append(out)
	return in, nil
}
