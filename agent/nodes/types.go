// Package agentnode holds the node functions the orchestration loop steps
// through: plan, execute, invoke tools, summarize. Each node mutates the
// shared GraphState and returns it.
package agentnode

import (
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	statex "github.com/opsloop-ai/opsloop/agent/state"
)

// GraphState is the mutable state threaded through the node functions for
// one user turn.
type GraphState struct {
	// Request is the raw user text for this turn.
	Request string

	// Conv carries the transcript, the current plan, and tool results.
	Conv *statex.Conversation

	// Batch holds the tool results of the most recent InvokeTools pass.
	// Routing reads it to decide between re-planning and resuming execution.
	Batch []contractx.ToolResult
}
