package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	ollamax "github.com/opsloop-ai/opsloop/pkg/ollama"
)

type modelClient struct {
	base einomodel.ToolCallingChatModel
}

// NewClient builds the completion client used by the executor and summary
// nodes.
func NewClient(ctx context.Context, cfg ollamax.Config) (contractx.LanguageModel, error) {
	base, err := cfg.New(ctx)
	if err != nil {
		return nil, err
	}
	return &modelClient{base: base}, nil
}

func (c *modelClient) Complete(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
	out, err := c.base.Generate(ctx, msgs)
	if err != nil {
		return nil, wrapProviderErr(err)
	}
	return out, nil
}

func (c *modelClient) CompleteWithTools(ctx context.Context, msgs []*schema.Message, tools []*schema.ToolInfo) (*schema.Message, error) {
	bound, err := c.base.WithTools(tools)
	if err != nil {
		return nil, fmt.Errorf("bind tools: %w", err)
	}
	out, err := bound.Generate(ctx, msgs)
	if err != nil {
		return nil, wrapProviderErr(err)
	}
	return out, nil
}

// wrapProviderErr maps connection-level failures onto ErrProviderUnavailable
// so the orchestrator can end the turn without crashing the loop. Model-level
// errors pass through untouched.
func wrapProviderErr(err error) error {
	if err == nil {
		return nil
	}
	if providerUnreachable(err) {
		return fmt.Errorf("%w: %v", contractx.ErrProviderUnavailable, err)
	}
	return err
}

func providerUnreachable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"dial tcp",
		"client.timeout",
		"unexpected eof",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
