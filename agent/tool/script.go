package tool

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

const ToolRunScript = "run_script"

// ScriptRunner executes a script file with optional arguments through a
// configurable interpreter.
type ScriptRunner struct {
	Interpreter string
	Timeout     time.Duration
}

func NewScriptRunner() *ScriptRunner {
	return &ScriptRunner{
		Interpreter: "python3",
		Timeout:     defaultProcessTimeout,
	}
}

func (s *ScriptRunner) Definition() Definition {
	return Definition{
		Name: ToolRunScript,
		Desc: "Execute a script file with optional arguments.",
		Params: map[string]*schema.ParameterInfo{
			"script_path": {Type: schema.String, Desc: "Path to the script file", Required: true},
			"args": {
				Type:     schema.Array,
				Desc:     "Optional list of arguments",
				ElemInfo: &schema.ParameterInfo{Type: schema.String},
			},
		},
		Handler: s.run,
	}
}

func (s *ScriptRunner) run(ctx context.Context, args map[string]any) contractx.ToolResult {
	path, _ := args["script_path"].(string)
	path = strings.TrimSpace(path)
	if path == "" {
		return contractx.ToolResult{Error: "script_path is empty"}
	}

	// Check existence before spawning anything.
	if _, err := os.Stat(path); err != nil {
		return contractx.ToolResult{
			Error: fmt.Sprintf("%v: %s", contractx.ErrScriptNotFound, path),
		}
	}

	cmdArgs := []string{path}
	cmdArgs = append(cmdArgs, stringList(args["args"])...)

	outcome := runProcess(ctx, s.Timeout, nil, s.Interpreter, cmdArgs...)
	return outcome.toResult(ToolRunScript, true)
}

func stringList(raw any) []string {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, fmt.Sprint(item))
	}
	return out
}
