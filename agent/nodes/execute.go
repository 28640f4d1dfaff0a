package agentnode

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

// Execute runs one executor model step. On first entry for the current plan
// it sends a fresh execution request built from the plan; afterwards it
// replays the whole conversation so the model sees prior tool results. The
// executor instruction is prepended per call and never stored on the
// conversation.
func Execute(
	ctx context.Context,
	in *GraphState,
	llm contractx.LanguageModel,
	infos []*schema.ToolInfo,
	instruction string,
) (*GraphState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if llm == nil {
		return nil, fmt.Errorf("%w: completion model is required", contractx.ErrValidation)
	}

	var msgs []*schema.Message
	if !in.Conv.Executing {
		request := fmt.Sprintf(
			"Execute this plan using the appropriate tools:\n\n%s\n\nFollow the plan exactly and report results clearly.",
			in.Conv.Plan,
		)
		userMsg := &schema.Message{Role: schema.User, Content: request}
		in.Conv.Append(userMsg)
		in.Conv.Executing = true
		msgs = []*schema.Message{
			schema.SystemMessage(instruction),
			userMsg,
		}
	} else {
		msgs = make([]*schema.Message, 0, len(in.Conv.Messages)+1)
		msgs = append(msgs, schema.SystemMessage(instruction))
		msgs = append(msgs, in.Conv.Messages...)
	}

	out, err := llm.CompleteWithTools(ctx, msgs, infos)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%w: executor returned no message", contractx.ErrValidation)
	}

	in.Conv.Append(out)
	return in, nil
}
