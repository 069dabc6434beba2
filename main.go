package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	analystx "github.com/datachat-dev/datachat/agent/agents/analyst"
	catalogx "github.com/datachat-dev/datachat/agent/catalog"
	dispatchx "github.com/datachat-dev/datachat/agent/dispatch"
	intentx "github.com/datachat-dev/datachat/agent/intent"
	llmx "github.com/datachat-dev/datachat/agent/llm"
	promptx "github.com/datachat-dev/datachat/agent/prompt"
	queryx "github.com/datachat-dev/datachat/agent/query"
	sessionx "github.com/datachat-dev/datachat/agent/session"
	configx "github.com/datachat-dev/datachat/pkg/config"
	_ "github.com/datachat-dev/datachat/pkg/logger/autoload"
	openrouterx "github.com/datachat-dev/datachat/pkg/openrouter"
)

type AppConfig struct {
	MongoURI      string        `envconfig:"MONGODB_URI" required:"true"`
	MongoDatabase string        `envconfig:"MONGODB_DATABASE" default:"sample_analytics"`
	MongoTimeout  time.Duration `envconfig:"MONGODB_TIMEOUT" default:"10s"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "datachat",
		Short: "Ask natural-language questions about a financial dataset",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newChatCommand(), newAskCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive question-answering session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			analyst, cleanup, err := buildAnalyst(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sessions := sessionx.NewManager()
			sess := sessions.Open()
			defer sessions.Close(sess.ID())

			fmt.Println("Welcome to datachat. Ask about accounts, customers, or transactions.")
			fmt.Println("Type 'exit' to quit.")

			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("\nYou: ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				text := strings.TrimSpace(scanner.Text())
				if text == "" {
					continue
				}
				if text == "exit" || text == "quit" {
					return nil
				}

				answer, err := analyst.Submit(ctx, sess, text)
				if err != nil {
					return err
				}
				if answer.Hint != "" {
					fmt.Printf("Closest matched intent: %s\n", answer.Hint)
				}
				fmt.Printf("Agent: %s\n", answer.Reply)
			}
		},
	}
}

func newAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			analyst, cleanup, err := buildAnalyst(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sessions := sessionx.NewManager()
			sess := sessions.Open()
			defer sessions.Close(sess.ID())

			answer, err := analyst.Submit(ctx, sess, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if answer.Hint != "" {
				fmt.Printf("Closest matched intent: %s\n", answer.Hint)
			}
			fmt.Println(answer.Reply)
			return nil
		},
	}
}

// buildAnalyst assembles the full pipeline: store, query service, catalog,
// dispatcher, and the advisory intent index. An unavailable embedding
// service degrades to "no hint"; an unreachable store is fatal.
func buildAnalyst(ctx context.Context) (*analystx.Analyst, func(), error) {
	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		return nil, nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, appCfg.MongoTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to document store: %w", err)
	}
	cleanup := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), appCfg.MongoTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("disconnect from document store")
		}
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("ping document store: %w", err)
	}

	store, err := queryx.NewMongoStore(client.Database(appCfg.MongoDatabase))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	svc, err := queryx.NewService(store)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	catalog, err := catalogx.New(svc)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	dispatcherCfg := llmCfg.Dispatcher()
	chatModel, err := dispatcherCfg.New(ctx)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	prompts := promptx.LoadPromptSet()
	dispatcher, err := dispatchx.New(chatModel, catalog, dispatchx.Config{
		SystemPrompt: prompts.Analyst,
		MaxSteps:     llmCfg.MaxSteps,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	index := buildIntentIndex(ctx, dispatcherCfg, llmCfg.EmbeddingModel)

	analyst, err := analystx.New(dispatcher, index)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return analyst, cleanup, nil
}

// buildIntentIndex returns nil on any failure; the hint path degrades
// rather than blocking startup or answers.
func buildIntentIndex(ctx context.Context, cfg openrouterx.Config, embeddingModel string) *intentx.Index {
	sdkClient := openrouterx.NewClient(cfg)
	if sdkClient == nil {
		log.Warn().Msg("no embeddings client, intent hints disabled")
		return nil
	}
	embedder, err := intentx.NewOpenAIEmbedder(sdkClient, embeddingModel)
	if err != nil {
		log.Warn().Err(err).Msg("embedder unavailable, intent hints disabled")
		return nil
	}
	corpus, err := intentx.LoadCorpus()
	if err != nil {
		log.Warn().Err(err).Msg("intent corpus unavailable, intent hints disabled")
		return nil
	}
	index, err := intentx.New(ctx, embedder, corpus)
	if err != nil {
		log.Warn().Err(err).Msg("intent index unavailable, intent hints disabled")
		return nil
	}
	return index
}
