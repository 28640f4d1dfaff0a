package orchestrator

import (
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	agentnode "github.com/opsloop-ai/opsloop/agent/nodes"
)

// Phase names the orchestration states. One user turn always starts at
// Planning and must reach Done within maxSteps node executions.
type Phase string

const (
	PhasePlanning      Phase = "planning"
	PhaseExecuting     Phase = "executing"
	PhaseInvokingTools Phase = "invoking_tools"
	PhaseSummarizing   Phase = "summarizing"
	PhaseDone          Phase = "done"
)

// defaultMaxSteps bounds a turn. Every executor step either invokes tools or
// ends in the summary, so a well-behaved model finishes long before this.
const defaultMaxSteps = 64

// afterExecute routes on the executor's last message: tool calls mean
// dispatch, anything else means the model is finished and the turn
// summarizes.
func afterExecute(st *agentnode.GraphState) Phase {
	last := st.Conv.LastMessage()
	if last != nil && last.Role == schema.Assistant && len(last.ToolCalls) > 0 {
		return PhaseInvokingTools
	}
	return PhaseSummarizing
}

// afterInvokeTools routes on the batch outcome. Any faulted result sends the
// turn back through the planner with the plan cleared so it is rebuilt from
// the full transcript; a clean batch resumes execution.
func afterInvokeTools(st *agentnode.GraphState) Phase {
	for _, r := range st.Batch {
		if r.Faulted() {
			st.Conv.ClearPlan()
			return PhasePlanning
		}
	}
	return PhaseExecuting
}

// errTurnNotConverging reports a turn that hit the step cap.
func errTurnNotConverging(steps int) error {
	return fmt.Errorf("%w: turn did not converge after %d steps", contractx.ErrValidation, steps)
}
