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

const ToolExecutePython = "execute_python"

// PythonRunner materializes a code body into a temporary file, executes it
// with optional environment overrides, and removes the file on every exit
// path.
type PythonRunner struct {
	Interpreter string
	Timeout     time.Duration
	TempDir     string
}

func NewPythonRunner() *PythonRunner {
	return &PythonRunner{
		Interpreter: "python3",
		Timeout:     defaultProcessTimeout,
	}
}

func (p *PythonRunner) Definition() Definition {
	return Definition{
		Name: ToolExecutePython,
		Desc: "Execute Python code with optional imports and environment variables.",
		Params: map[string]*schema.ParameterInfo{
			"code": {Type: schema.String, Desc: "The Python code to execute", Required: true},
			"imports": {
				Type:     schema.Array,
				Desc:     "Optional list of import statements",
				ElemInfo: &schema.ParameterInfo{Type: schema.String},
			},
			"variables": {
				Type: schema.Object,
				Desc: "Environment variables to set for the execution",
			},
		},
		Handler: p.run,
	}
}

func (p *PythonRunner) run(ctx context.Context, args map[string]any) contractx.ToolResult {
	code, _ := args["code"].(string)
	if strings.TrimSpace(code) == "" {
		return contractx.ToolResult{Error: "code is empty"}
	}

	scriptPath, err := p.materialize(code, stringList(args["imports"]))
	if err != nil {
		return contractx.ToolResult{Error: err.Error()}
	}
	defer os.Remove(scriptPath)

	env := os.Environ()
	if overrides, ok := args["variables"].(map[string]any); ok {
		for k, v := range overrides {
			env = append(env, fmt.Sprintf("%s=%v", k, v))
		}
	}

	outcome := runProcess(ctx, p.Timeout, env, p.Interpreter, scriptPath)
	return outcome.toResult(ToolExecutePython, true)
}

// materialize writes imports and code into a scoped temporary file. The
// caller removes the file.
func (p *PythonRunner) materialize(code string, imports []string) (string, error) {
	f, err := os.CreateTemp(p.TempDir, "opsloop-*.py")
	if err != nil {
		return "", fmt.Errorf("create temp script: %w", err)
	}

	var body strings.Builder
	if len(imports) > 0 {
		body.WriteString(strings.Join(imports, "\n"))
		body.WriteString("\n\n")
	}
	body.WriteString(code)

	if _, err := f.WriteString(body.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp script: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp script: %w", err)
	}
	return f.Name(), nil
}
