// Package orchestrator drives the plan, execute, invoke-tools, summarize
// loop for one user turn and owns its routing rules.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	agentnode "github.com/opsloop-ai/opsloop/agent/nodes"
	promptx "github.com/opsloop-ai/opsloop/agent/prompt"
	statex "github.com/opsloop-ai/opsloop/agent/state"
	logx "github.com/opsloop-ai/opsloop/pkg/logger"
	"github.com/rs/zerolog"
)

const providerDownReply = "The language model provider is unreachable. Check that the daemon is running and try again."

type Orchestrator struct {
	models  contractx.Models
	tools   contractx.ToolInvoker
	guard   contractx.Policy
	prompts promptx.Set

	log      zerolog.Logger
	maxSteps int
}

func New(
	models contractx.Models,
	tools contractx.ToolInvoker,
	guard contractx.Policy,
	prompts promptx.Set,
) (*Orchestrator, error) {
	if models == nil {
		return nil, errors.New("model registry is required")
	}
	if tools == nil {
		return nil, errors.New("tool invoker is required")
	}
	if prompts.Executor == "" || prompts.Summary == "" {
		return nil, errors.New("executor and summary prompts are required")
	}

	return &Orchestrator{
		models:   models,
		tools:    tools,
		guard:    guard,
		prompts:  prompts,
		log:      logx.Component("orchestrator"),
		maxSteps: defaultMaxSteps,
	}, nil
}

// HandleMessage runs one full user turn over the caller-retained history and
// returns the reply plus the updated transcript. A provider outage ends the
// turn with an explanatory reply instead of an error so the interactive loop
// stays alive.
func (o *Orchestrator) HandleMessage(
	ctx context.Context,
	history []*schema.Message,
	text string,
) (string, []*schema.Message, error) {
	conv := statex.NewConversation(history)
	if err := conv.BeginRequest(text); err != nil {
		return "", history, err
	}

	st := &agentnode.GraphState{
		Request: text,
		Conv:    conv,
	}

	if err := o.run(ctx, st); err != nil {
		if errors.Is(err, contractx.ErrProviderUnavailable) {
			o.log.Error().Err(err).Msg("provider unavailable; ending turn")
			conv.Append(&schema.Message{
				Role:    schema.Assistant,
				Content: providerDownReply,
			})
			return providerDownReply, conv.Messages, nil
		}
		return "", conv.Messages, err
	}

	reply := lastAssistantContent(conv)
	if reply == "" {
		return "", conv.Messages, fmt.Errorf("%w: turn produced no reply", contractx.ErrValidation)
	}
	return reply, conv.Messages, nil
}

func (o *Orchestrator) run(ctx context.Context, st *agentnode.GraphState) error {
	phase := PhasePlanning

	for step := 0; step < o.maxSteps; step++ {
		o.log.Debug().Str("phase", string(phase)).Int("step", step).Msg("orchestrator step")

		var err error
		switch phase {
		case PhasePlanning:
			_, err = agentnode.Plan(ctx, st, o.models.Planner())
			phase = PhaseExecuting
		case PhaseExecuting:
			_, err = agentnode.Execute(ctx, st, o.models.Completion(), o.tools.Infos(), o.prompts.Executor)
			if err == nil {
				phase = afterExecute(st)
			}
		case PhaseInvokingTools:
			_, err = agentnode.InvokeTools(ctx, st, o.tools, o.guard)
			if err == nil {
				phase = afterInvokeTools(st)
			}
		case PhaseSummarizing:
			_, err = agentnode.Summarize(ctx, st, o.models.Summary(), o.prompts.Summary)
			phase = PhaseDone
		case PhaseDone:
			return nil
		default:
			return fmt.Errorf("%w: unknown phase %q", contractx.ErrValidation, phase)
		}
		if err != nil {
			return err
		}
	}
	return errTurnNotConverging(o.maxSteps)
}

func lastAssistantContent(conv *statex.Conversation) string {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		m := conv.Messages[i]
		if m != nil && m.Role == schema.Assistant && m.Content != "" {
			return m.Content
		}
	}
	return ""
}
