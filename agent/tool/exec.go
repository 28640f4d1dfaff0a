package tool

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"time"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

const defaultProcessTimeout = 60 * time.Second

// Markers in stderr that indicate a missing dependency the planner should
// resolve (requires_followup).
var missingDependencyMarkers = []string{
	"ImportError",
	"ModuleNotFoundError",
}

type processOutcome struct {
	stdout   string
	stderr   string
	exitCode int
	runErr   error
}

// runProcess spawns one child process, waits for it, and captures both
// output streams as buffered text. The context bounds the process lifetime.
func runProcess(ctx context.Context, timeout time.Duration, env []string, name string, args ...string) processOutcome {
	if timeout <= 0 {
		timeout = defaultProcessTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, name, args...)
	if env != nil {
		cmd.Env = env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			// spawn failure or timeout, not a non-zero exit
			exitCode = -1
		}
	}

	return processOutcome{
		stdout:   strings.TrimSpace(stdout.String()),
		stderr:   strings.TrimSpace(stderr.String()),
		exitCode: exitCode,
		runErr:   runErr,
	}
}

// toResult maps a process outcome onto the tool result contract: success is
// exit 0, output is stdout (or stderr when stdout is empty), error carries
// stderr or the native fault text.
func (o processOutcome) toResult(tool string, followupOnMissingDep bool) contractx.ToolResult {
	output := o.stdout
	if output == "" {
		output = o.stderr
	}

	if o.runErr != nil && o.exitCode < 0 {
		return contractx.ToolResult{
			Tool:   tool,
			Output: output,
			Error:  o.runErr.Error(),
		}
	}

	result := contractx.ToolResult{
		Tool:    tool,
		Success: o.exitCode == 0,
		Output:  output,
	}
	if o.exitCode != 0 {
		result.Error = o.stderr
		if result.Error == "" && o.runErr != nil {
			result.Error = o.runErr.Error()
		}
	}
	if followupOnMissingDep && missingDependency(o.stderr) {
		result.RequiresFollowup = true
	}
	return result
}

func missingDependency(stderr string) bool {
	if stderr == "" {
		return false
	}
	for _, marker := range missingDependencyMarkers {
		if strings.Contains(stderr, marker) {
			return true
		}
	}
	return false
}

func shellInvocation(command string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C", command}
	}
	return "sh", []string{"-c", command}
}
