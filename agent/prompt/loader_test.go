package prompt

import (
	"strings"
	"testing"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set := LoadPromptSet()
	if set.Planner == "" || set.Executor == "" || set.Summary == "" {
		t.Fatal("all prompts must be embedded and non-empty")
	}

	for _, tool := range []string{"run_command", "run_script", "execute_python"} {
		if !strings.Contains(set.Planner, tool) {
			t.Errorf("planner prompt must name tool %s", tool)
		}
		if !strings.Contains(set.Executor, tool) {
			t.Errorf("executor prompt must name tool %s", tool)
		}
	}

	if strings.HasSuffix(set.Summary, "\n") {
		t.Fatal("prompts must be trimmed")
	}
}
