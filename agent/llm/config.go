package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	ollamax "github.com/opsloop-ai/opsloop/pkg/ollama"
)

// Config selects the model per orchestration node. The planner tends to want
// a higher temperature than the executor; both default to the base model.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"http://localhost:11434"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" default:"ollama"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.2"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"120s"`

	PlannerModel        string  `envconfig:"PLANNER_MODEL" split_words:"true"`
	ExecutorModel       string  `envconfig:"EXECUTOR_MODEL" split_words:"true"`
	SummaryModel        string  `envconfig:"SUMMARY_MODEL" split_words:"true"`
	PlannerTemperature  float32 `envconfig:"PLANNER_TEMPERATURE" split_words:"true" default:"-1"`
	ExecutorTemperature float32 `envconfig:"EXECUTOR_TEMPERATURE" split_words:"true" default:"-1"`
	SummaryTemperature  float32 `envconfig:"SUMMARY_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// OllamaFor resolves the effective provider config for one node kind.
func (c Config) OllamaFor(node contractx.NodeKind) ollamax.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch node {
	case contractx.NodePlanner:
		if v := strings.TrimSpace(c.PlannerModel); v != "" {
			modelName = v
		}
		if c.PlannerTemperature >= 0 {
			temp = c.PlannerTemperature
		}
	case contractx.NodeExecutor:
		if v := strings.TrimSpace(c.ExecutorModel); v != "" {
			modelName = v
		}
		if c.ExecutorTemperature >= 0 {
			temp = c.ExecutorTemperature
		}
	case contractx.NodeSummary:
		if v := strings.TrimSpace(c.SummaryModel); v != "" {
			modelName = v
		}
		if c.SummaryTemperature >= 0 {
			temp = c.SummaryTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return ollamax.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
	}
}
