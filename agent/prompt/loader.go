package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/planner.txt
	plannerRaw string

	//go:embed template/executor.txt
	executorRaw string

	//go:embed template/summary.txt
	summaryRaw string
)

// Set holds loaded prompt content.
type Set struct {
	Planner  string
	Executor string
	Summary  string
}

// LoadPromptSet returns a Set with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() Set {
	return Set{
		Planner:  strings.TrimSpace(plannerRaw),
		Executor: strings.TrimSpace(executorRaw),
		Summary:  strings.TrimSpace(summaryRaw),
	}
}
