package tool

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
)

func TestDefaultRegistryInfos(t *testing.T) {
	t.Parallel()

	r, err := DefaultRegistry()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	infos := r.Infos()
	if len(infos) != 3 {
		t.Fatalf("expected 3 tool infos, got %d", len(infos))
	}
	want := []string{ToolRunCommand, ToolRunScript, ToolExecutePython}
	for i, name := range want {
		if infos[i].Name != name {
			t.Fatalf("info %d: expected %s, got %s", i, name, infos[i].Name)
		}
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	out := r.Invoke(context.Background(), "no_such_tool", nil)
	if out.Success {
		t.Fatal("expected failure")
	}
	if out.Tool != "no_such_tool" {
		t.Fatalf("unexpected tool name: %s", out.Tool)
	}
	if !strings.Contains(out.Error, "no_such_tool") {
		t.Fatalf("error should name the tool, got %q", out.Error)
	}
}

func TestInvokeValidatesArguments(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	called := false
	err := r.Register(Definition{
		Name: "typed",
		Params: map[string]*schema.ParameterInfo{
			"command": {Type: schema.String, Required: true},
		},
		Handler: func(context.Context, map[string]any) contractx.ToolResult {
			called = true
			return contractx.ToolResult{Success: true}
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := r.Invoke(context.Background(), "typed", map[string]any{})
	if out.Success {
		t.Fatal("expected validation failure for missing argument")
	}
	if called {
		t.Fatal("handler must not run on validation failure")
	}

	out = r.Invoke(context.Background(), "typed", map[string]any{"command": 42})
	if out.Success {
		t.Fatal("expected validation failure for wrong type")
	}
	if called {
		t.Fatal("handler must not run on type failure")
	}
}

func TestInvokeRecoversHandlerPanic(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	err := r.Register(Definition{
		Name: "boom",
		Handler: func(context.Context, map[string]any) contractx.ToolResult {
			panic("kaboom")
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := r.Invoke(context.Background(), "boom", nil)
	if out.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(out.Error, "kaboom") {
		t.Fatalf("error should carry the panic value, got %q", out.Error)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	def := Definition{
		Name:    "dup",
		Handler: func(context.Context, map[string]any) contractx.ToolResult { return contractx.ToolResult{} },
	}
	if err := r.Register(def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := r.Register(def)
	if !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
