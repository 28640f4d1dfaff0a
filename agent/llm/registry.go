package llm

import (
	"context"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	promptx "github.com/opsloop-ai/opsloop/agent/prompt"
)

type registryImpl struct {
	planner    contractx.PlanModel
	completion contractx.LanguageModel
	summary    contractx.LanguageModel
}

// NewRegistry builds the per-node models from one provider config. The
// planner gets its own compiled pipeline; the executor and summary nodes
// each get a completion client carrying their node overrides.
func NewRegistry(ctx context.Context, cfg Config, prompts promptx.Set) (contractx.Models, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	planner, err := NewPlanner(ctx, cfg.OllamaFor(contractx.NodePlanner), prompts.Planner)
	if err != nil {
		return nil, err
	}

	completion, err := NewClient(ctx, cfg.OllamaFor(contractx.NodeExecutor))
	if err != nil {
		return nil, err
	}

	summary, err := NewClient(ctx, cfg.OllamaFor(contractx.NodeSummary))
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		planner:    planner,
		completion: completion,
		summary:    summary,
	}, nil
}

func (r *registryImpl) Planner() contractx.PlanModel { return r.planner }

func (r *registryImpl) Completion() contractx.LanguageModel { return r.completion }

func (r *registryImpl) Summary() contractx.LanguageModel { return r.summary }
