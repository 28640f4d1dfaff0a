package tool

import (
	"context"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

const ToolRunCommand = "run_command"

// ShellRunner executes a command line in a subordinate shell and captures
// its output streams.
type ShellRunner struct {
	Timeout time.Duration
}

func NewShellRunner() *ShellRunner {
	return &ShellRunner{Timeout: defaultProcessTimeout}
}

func (s *ShellRunner) Definition() Definition {
	return Definition{
		Name: ToolRunCommand,
		Desc: "Execute a shell command and return its output.",
		Params: map[string]*schema.ParameterInfo{
			"command": {Type: schema.String, Desc: "The shell command to execute", Required: true},
		},
		Handler: s.run,
	}
}

func (s *ShellRunner) run(ctx context.Context, args map[string]any) contractx.ToolResult {
	command, _ := args["command"].(string)
	command = strings.TrimSpace(command)
	if command == "" {
		return contractx.ToolResult{Error: "command is empty"}
	}

	name, shellArgs := shellInvocation(command)
	outcome := runProcess(ctx, s.Timeout, nil, name, shellArgs...)
	return outcome.toResult(ToolRunCommand, false)
}
