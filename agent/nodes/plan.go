package agentnode

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

// Plan asks the planner model for a step-by-step plan and records it on the
// conversation. Idempotent: when a plan already exists the node is a no-op,
// so re-entry after ClearPlan is the only way to regenerate.
func Plan(ctx context.Context, in *GraphState, planner contractx.PlanModel) (*GraphState, error) {
	if in == nil || in.Conv == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if planner == nil {
		return nil, fmt.Errorf("%w: planner model is required", contractx.ErrValidation)
	}

	if in.Conv.HasPlan() {
		return in, nil
	}

	// The latest message drives the plan: the user request on first entry,
	// the tool fault on re-entry, so a revised plan sees what failed.
	input := in.Request
	if last := in.Conv.LastMessage(); last != nil && last.Content != "" {
		input = last.Content
	}

	plan, err := planner.Plan(ctx, input)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("plan_len", len(plan)).Msg("planner produced plan")

	in.Conv.Plan = plan
	in.Conv.Executing = false
	in.Conv.Append(&schema.Message{
		Role:    schema.Assistant,
		Content: plan,
	})
	return in, nil
}
