package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	promptx "github.com/opsloop-ai/opsloop/agent/prompt"
)

type scriptedPlanner struct {
	plans []string
	calls int
}

func (p *scriptedPlanner) Plan(_ context.Context, _ string) (string, error) {
	p.calls++
	if len(p.plans) == 0 {
		return "", errors.New("scripted planner exhausted")
	}
	plan := p.plans[0]
	if len(p.plans) > 1 {
		p.plans = p.plans[1:]
	}
	return plan, nil
}

type scriptedLLM struct {
	replies []*schema.Message
	err     error
	calls   int
}

func (m *scriptedLLM) Complete(_ context.Context, _ []*schema.Message) (*schema.Message, error) {
	return m.pop()
}

func (m *scriptedLLM) CompleteWithTools(_ context.Context, _ []*schema.Message, _ []*schema.ToolInfo) (*schema.Message, error) {
	return m.pop()
}

func (m *scriptedLLM) pop() (*schema.Message, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.replies) == 0 {
		return nil, errors.New("scripted llm exhausted")
	}
	reply := m.replies[0]
	m.replies = m.replies[1:]
	return reply, nil
}

type fakeModels struct {
	planner    contractx.PlanModel
	completion contractx.LanguageModel
	summary    contractx.LanguageModel
}

func (f fakeModels) Planner() contractx.PlanModel        { return f.planner }
func (f fakeModels) Completion() contractx.LanguageModel { return f.completion }
func (f fakeModels) Summary() contractx.LanguageModel    { return f.summary }

type stubInvoker struct {
	results []contractx.ToolResult
	calls   int
}

func (s *stubInvoker) Invoke(_ context.Context, name string, _ map[string]any) contractx.ToolResult {
	s.calls++
	if len(s.results) == 0 {
		return contractx.ToolResult{Tool: name, Success: true, Output: "ok"}
	}
	r := s.results[0]
	s.results = s.results[1:]
	r.Tool = name
	return r
}

func (s *stubInvoker) Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{{Name: "run_command"}}
}

func testPrompts() promptx.Set {
	return promptx.Set{
		Planner:  "plan it",
		Executor: "execute it",
		Summary:  "summarize it",
	}
}

func toolCallMsg(id, name, args string) *schema.Message {
	return &schema.Message{
		Role: schema.Assistant,
		ToolCalls: []schema.ToolCall{
			{ID: id, Function: schema.FunctionCall{Name: name, Arguments: args}},
		},
	}
}

func TestHandleMessageHappyPath(t *testing.T) {
	t.Parallel()

	planner := &scriptedPlanner{plans: []string{"Step 1: run ls"}}
	llm := &scriptedLLM{replies: []*schema.Message{
		toolCallMsg("c1", "run_command", `{"command":"ls"}`),
		{Role: schema.Assistant, Content: "files listed"},
		{Role: schema.Assistant, Content: "Summary: the directory holds two files."},
	}}
	tools := &stubInvoker{}

	o, err := New(fakeModels{planner, llm, llm}, tools, nil, testPrompts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reply, updated, err := o.HandleMessage(context.Background(), nil, "list files")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply, "Summary") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if planner.calls != 1 {
		t.Fatalf("planner called %d times, want 1", planner.calls)
	}
	if tools.calls != 1 {
		t.Fatalf("tools called %d times, want 1", tools.calls)
	}

	// transcript ends with the summary reply
	last := updated[len(updated)-1]
	if last.Role != schema.Assistant || last.Content != reply {
		t.Fatalf("transcript must end with the reply, got %+v", last)
	}
}

func TestHandleMessageNoToolsGoesStraightToSummary(t *testing.T) {
	t.Parallel()

	planner := &scriptedPlanner{plans: []string{"Step 1: answer directly"}}
	llm := &scriptedLLM{replies: []*schema.Message{
		{Role: schema.Assistant, Content: "no tools needed"},
		{Role: schema.Assistant, Content: "Summary: nothing to run."},
	}}
	tools := &stubInvoker{}

	o, err := New(fakeModels{planner, llm, llm}, tools, nil, testPrompts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reply, _, err := o.HandleMessage(context.Background(), nil, "what is two plus two")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != "Summary: nothing to run." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if tools.calls != 0 {
		t.Fatalf("tools must not run, got %d calls", tools.calls)
	}
}

func TestHandleMessageToolFailureTriggersReplan(t *testing.T) {
	t.Parallel()

	planner := &scriptedPlanner{plans: []string{"Step 1: first attempt", "Step 1: second attempt"}}
	llm := &scriptedLLM{replies: []*schema.Message{
		toolCallMsg("c1", "run_command", `{"command":"badcmd"}`),
		toolCallMsg("c2", "run_command", `{"command":"ls"}`),
		{Role: schema.Assistant, Content: "recovered"},
		{Role: schema.Assistant, Content: "Summary: second attempt worked."},
	}}
	tools := &stubInvoker{results: []contractx.ToolResult{
		{Success: false, Error: "command not found"},
		{Success: true, Output: "ok"},
	}}

	o, err := New(fakeModels{planner, llm, llm}, tools, nil, testPrompts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reply, _, err := o.HandleMessage(context.Background(), nil, "list files")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != "Summary: second attempt worked." {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if planner.calls != 2 {
		t.Fatalf("planner called %d times, want 2 (re-plan after failure)", planner.calls)
	}
	if tools.calls != 2 {
		t.Fatalf("tools called %d times, want 2", tools.calls)
	}
}

func TestHandleMessageSummaryRunsOnSummaryModel(t *testing.T) {
	t.Parallel()

	planner := &scriptedPlanner{plans: []string{"Step 1: answer directly"}}
	executor := &scriptedLLM{replies: []*schema.Message{
		{Role: schema.Assistant, Content: "no tools needed"},
	}}
	summary := &scriptedLLM{replies: []*schema.Message{
		{Role: schema.Assistant, Content: "Summary: from the summary model."},
	}}

	o, err := New(fakeModels{planner, executor, summary}, &stubInvoker{}, nil, testPrompts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reply, _, err := o.HandleMessage(context.Background(), nil, "what is two plus two")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if reply != "Summary: from the summary model." {
		t.Fatalf("reply must come from the summary client, got %q", reply)
	}
	if executor.calls != 1 {
		t.Fatalf("executor client called %d times, want 1", executor.calls)
	}
	if summary.calls != 1 {
		t.Fatalf("summary client called %d times, want 1", summary.calls)
	}
}

func TestHandleMessageProviderDownEndsTurnGracefully(t *testing.T) {
	t.Parallel()

	planner := &scriptedPlanner{plans: []string{"Step 1: run ls"}}
	llm := &scriptedLLM{err: fmt.Errorf("%w: dial tcp refused", contractx.ErrProviderUnavailable)}

	o, err := New(fakeModels{planner, llm, llm}, &stubInvoker{}, nil, testPrompts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reply, updated, err := o.HandleMessage(context.Background(), nil, "list files")
	if err != nil {
		t.Fatalf("provider outage must not surface as an error, got %v", err)
	}
	if !strings.Contains(reply, "unreachable") {
		t.Fatalf("reply should explain the outage, got %q", reply)
	}
	last := updated[len(updated)-1]
	if last.Role != schema.Assistant || last.Content != reply {
		t.Fatalf("outage reply must land in the transcript, got %+v", last)
	}
}

func TestHandleMessageBoundsRunawayTurns(t *testing.T) {
	t.Parallel()

	planner := &scriptedPlanner{plans: []string{"Step 1: loop forever"}}

	// model never stops asking for tools and every result faults
	llm := &loopingLLM{}
	failing := &alwaysFailInvoker{}

	o, err := New(fakeModels{planner, llm, llm}, failing, nil, testPrompts())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, _, err = o.HandleMessage(context.Background(), nil, "loop")
	if err == nil {
		t.Fatal("expected non-convergence error")
	}
	if !strings.Contains(err.Error(), "converge") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHandleMessageRejectsBlankInput(t *testing.T) {
	t.Parallel()

	o, err := New(
		fakeModels{&scriptedPlanner{plans: []string{"p"}}, &scriptedLLM{}, &scriptedLLM{}},
		&stubInvoker{},
		nil,
		testPrompts(),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, _, err := o.HandleMessage(context.Background(), nil, "   "); err == nil {
		t.Fatal("expected error for blank input")
	}
}

type loopingLLM struct {
	n int
}

func (m *loopingLLM) Complete(_ context.Context, _ []*schema.Message) (*schema.Message, error) {
	return &schema.Message{Role: schema.Assistant, Content: "summary"}, nil
}

func (m *loopingLLM) CompleteWithTools(_ context.Context, _ []*schema.Message, _ []*schema.ToolInfo) (*schema.Message, error) {
	m.n++
	return toolCallMsg(fmt.Sprintf("c%d", m.n), "run_command", `{"command":"x"}`), nil
}

type alwaysFailInvoker struct{}

func (alwaysFailInvoker) Invoke(_ context.Context, name string, _ map[string]any) contractx.ToolResult {
	return contractx.ToolResult{Tool: name, Success: false, Error: "boom"}
}

func (alwaysFailInvoker) Infos() []*schema.ToolInfo {
	return []*schema.ToolInfo{{Name: "run_command"}}
}
