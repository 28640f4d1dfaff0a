package main

import (
	"context"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/opsloop-ai/opsloop/agent/agents/orchestrator"
	"github.com/opsloop-ai/opsloop/agent/chat"
	contractx "github.com/opsloop-ai/opsloop/agent/contract"
	llmx "github.com/opsloop-ai/opsloop/agent/llm"
	"github.com/opsloop-ai/opsloop/agent/policy"
	promptx "github.com/opsloop-ai/opsloop/agent/prompt"
	statex "github.com/opsloop-ai/opsloop/agent/state"
	toolx "github.com/opsloop-ai/opsloop/agent/tool"
	configx "github.com/opsloop-ai/opsloop/pkg/config"
	_ "github.com/opsloop-ai/opsloop/pkg/logger/autoload"
	ollamax "github.com/opsloop-ai/opsloop/pkg/ollama"
)

const welcomeBanner = `Welcome to the ops assistant.

I can:
- Run shell commands on this machine
- Execute script files with arguments
- Run Python snippets

Type 'exit' or 'quit' to end our conversation.`

type AppConfig struct {
	TranscriptBackend string `envconfig:"TRANSCRIPT_BACKEND" split_words:"true"`
	SessionID         string `envconfig:"SESSION_ID" split_words:"true"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("OLLAMA")

	if err := ollamax.Ping(ctx, llmCfg.OllamaFor(contractx.NodeExecutor)); err != nil {
		log.Fatal().Err(err).Msg("model provider is unreachable; refusing to start")
	}

	prompts := promptx.LoadPromptSet()

	models, err := llmx.NewRegistry(ctx, *llmCfg, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build model registry")
	}

	tools, err := toolx.DefaultRegistry()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build tool registry")
	}

	session := policy.NewSession()
	guard := policy.NewGuard(session)

	agent, err := orchestrator.New(models, tools, guard, prompts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build orchestrator")
	}

	opts := []chat.Option{
		chat.WithBanner(welcomeBanner),
		chat.WithPolicySession(session),
	}
	if store := buildStore(ctx, appCfg.TranscriptBackend); store != nil {
		opts = append(opts, chat.WithStore(store))
	}
	if id := strings.TrimSpace(appCfg.SessionID); id != "" {
		opts = append(opts, chat.WithSessionID(id))
	}

	loop, err := chat.NewLoop(os.Stdin, os.Stdout, agent, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build chat loop")
	}

	log.Info().Str("session_id", loop.SessionID()).Msg("starting interactive session")
	if err := loop.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("chat loop terminated")
	}
}

// buildStore picks the transcript backend. An empty backend means no
// persistence, which keeps the binary usable without any datastore.
func buildStore(ctx context.Context, backend string) statex.Store {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "":
		return nil
	case "redis":
		cfg := configx.MustNew[statex.UpstashRedisConfig]("TRANSCRIPT_REDIS")
		store, err := statex.NewUpstashRedisStore(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build redis transcript store")
		}
		return store
	case "postgres":
		cfg := configx.MustNew[statex.PostgresConfig]("TRANSCRIPT_POSTGRES")
		store, err := statex.NewPostgresStore(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open postgres transcript store")
		}
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare transcript schema")
		}
		return store
	default:
		log.Fatal().Str("backend", backend).Msg("unknown transcript backend")
		return nil
	}
}
