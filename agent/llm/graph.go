package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	ollamax "github.com/opsloop-ai/opsloop/pkg/ollama"
)

// plannerImpl produces the opaque plan text through a compiled
// prompt -> model pipeline.
type plannerImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

func NewPlanner(ctx context.Context, cfg ollamax.Config, systemPrompt string) (contractx.PlanModel, error) {
	base, err := cfg.New(ctx)
	if err != nil {
		return nil, err
	}
	runner, err := compilePlannerGraph(ctx, base, systemPrompt)
	if err != nil {
		return nil, err
	}
	return &plannerImpl{runner: runner}, nil
}

func (p *plannerImpl) Plan(ctx context.Context, request string) (string, error) {
	if strings.TrimSpace(request) == "" {
		return "", fmt.Errorf("%w: user request is required", contractx.ErrValidation)
	}

	out, err := p.runner.Invoke(ctx, map[string]any{
		"input": request,
	})
	if err != nil {
		return "", wrapProviderErr(err)
	}
	if out == nil || strings.TrimSpace(out.Content) == "" {
		return "", fmt.Errorf("%w: planner returned an empty plan", contractx.ErrValidation)
	}
	return strings.TrimSpace(out.Content), nil
}

func compilePlannerGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add planner prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add planner model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add planner edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add planner edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add planner edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("planner.model_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile planner graph: %w", err)
	}
	return runner, nil
}
