// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/askbase"
	"github.com/poiesic/askbase/ai"
	"github.com/poiesic/askbase/core"
	"github.com/poiesic/askbase/ingest"
	"github.com/urfave/cli/v2"
)

func main() {
	// Optional .env; absence is fine
	godotenv.Load()

	app := &cli.App{
		Name:  "askbase",
		Usage: "Multi-tenant question answering over ingested documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				EnvVars:  []string{"ASKBASE_DB"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "redis",
				Usage:   "Redis URL for shared quota and session state",
				EnvVars: []string{"ASKBASE_REDIS"},
			},
			&cli.StringFlag{
				Name:    "embedding-host",
				Usage:   "Embedding service host URL",
				EnvVars: []string{"ASKBASE_EMBEDDING_HOST"},
				Value:   "http://localhost:11434/v1",
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name (empty uses deterministic local embeddings)",
				EnvVars: []string{"ASKBASE_EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "completion-model",
				Usage:   "Completion model name",
				EnvVars: []string{"ASKBASE_COMPLETION_MODEL"},
				Value:   "llama3.2",
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "API token for the AI service",
				EnvVars: []string{"ASKBASE_AI_TOKEN"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:  "tenant",
				Usage: "Manage tenant accounts",
				Subcommands: []*cli.Command{
					{
						Name:   "create",
						Usage:  "Create a tenant and print its API key",
						Action: tenantCreateCommand,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Usage: "Tenant name", Required: true},
							&cli.StringFlag{Name: "plan", Usage: "Plan tier (free, starter, pro)", Value: "free"},
						},
					},
					{
						Name:   "plan",
						Usage:  "Move a tenant to another plan",
						Action: tenantPlanCommand,
						Flags: []cli.Flag{
							&cli.Uint64Flag{Name: "tenant", Usage: "Tenant ID", Required: true},
							&cli.StringFlag{Name: "plan", Usage: "Plan tier (free, starter, pro)", Required: true},
						},
					},
					{
						Name:   "rotate-key",
						Usage:  "Issue a new API key, retiring the old one",
						Action: tenantRotateKeyCommand,
						Flags: []cli.Flag{
							&cli.Uint64Flag{Name: "tenant", Usage: "Tenant ID", Required: true},
						},
					},
					{
						Name:   "delete",
						Usage:  "Soft-delete a tenant",
						Action: tenantDeleteCommand,
						Flags: []cli.Flag{
							&cli.Uint64Flag{Name: "tenant", Usage: "Tenant ID", Required: true},
						},
					},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Ingest a document section for a tenant",
				ArgsUsage: "[text file]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "tenant", Usage: "Tenant ID", Required: true},
					&cli.StringFlag{Name: "type", Usage: "Section type (faq, policy, ...)", Value: "doc"},
					&cli.StringFlag{Name: "title", Usage: "Section title", Required: true},
					&cli.StringFlag{Name: "text", Usage: "Section text (reads the file argument when empty)"},
					&cli.Uint64Flag{Name: "replace", Usage: "Section ID to replace instead of creating"},
				},
			},
			{
				Name:      "query",
				Usage:     "Ask a question against a tenant's knowledge base",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: []cli.Flag{
					&cli.Uint64Flag{Name: "tenant", Usage: "Tenant ID", Required: true},
					&cli.StringFlag{Name: "session", Usage: "Session ID for conversation history"},
					&cli.StringFlag{Name: "type", Usage: "Restrict retrieval to one section type"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum passages to retrieve", Value: 5},
				},
			},
			{
				Name:  "sections",
				Usage: "Inspect a tenant's sections",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List the tenant's sections",
						Action: sectionsListCommand,
						Flags: []cli.Flag{
							&cli.Uint64Flag{Name: "tenant", Usage: "Tenant ID", Required: true},
						},
					},
					{
						Name:   "delete",
						Usage:  "Delete a section and its chunks",
						Action: sectionsDeleteCommand,
						Flags: []cli.Flag{
							&cli.Uint64Flag{Name: "tenant", Usage: "Tenant ID", Required: true},
							&cli.Uint64Flag{Name: "section", Usage: "Section ID", Required: true},
						},
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openService builds the service from the global flags.
func openService(c *cli.Context) (*askbase.Service, error) {
	config := ai.DefaultConfig()
	config.Host = c.String("embedding-host")
	config.Token = c.String("token")
	config.EmbeddingModel = c.String("embedding-model")
	if model := c.String("completion-model"); model != "" {
		config.CompletionModel = model
	}

	opts := []askbase.ServiceOption{askbase.WithAIConfig(config)}
	if redisURL := c.String("redis"); redisURL != "" {
		opts = append(opts, askbase.WithRedis(redisURL))
	}

	return askbase.NewService(c.String("db"), opts...)
}

func tenantCreateCommand(c *cli.Context) error {
	plan, err := core.ParsePlanTier(c.String("plan"))
	if err != nil {
		return err
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	created, rawKey, err := service.Directory().Create(c.Context, c.String("name"), plan)
	if err != nil {
		return err
	}

	fmt.Printf("tenant %d created on plan %s\n", created.Id, plan.String())
	fmt.Printf("api key (shown once): %s\n", rawKey)
	return nil
}

func tenantPlanCommand(c *cli.Context) error {
	plan, err := core.ParsePlanTier(c.String("plan"))
	if err != nil {
		return err
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	updated, err := service.Directory().UpdatePlan(c.Context, core.ID(c.Uint64("tenant")), plan)
	if err != nil {
		return err
	}

	fmt.Printf("tenant %d moved to plan %s\n", updated.Id, plan.String())
	return nil
}

func tenantRotateKeyCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	rawKey, err := service.Directory().RotateKey(c.Context, core.ID(c.Uint64("tenant")))
	if err != nil {
		return err
	}

	fmt.Printf("new api key (shown once): %s\n", rawKey)
	return nil
}

func tenantDeleteCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	tenantID := core.ID(c.Uint64("tenant"))
	if err := service.Directory().Delete(c.Context, tenantID); err != nil {
		return err
	}

	fmt.Printf("tenant %d deleted\n", tenantID)
	return nil
}

func ingestCommand(c *cli.Context) error {
	text := c.String("text")
	if text == "" {
		if c.Args().Len() != 1 {
			return fmt.Errorf("provide --text or exactly one text file argument")
		}
		data, err := os.ReadFile(c.Args().First())
		if err != nil {
			return err
		}
		text = string(data)
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	tenantID := core.ID(c.Uint64("tenant"))
	input := ingest.SectionInput{
		Type:  c.String("type"),
		Title: c.String("title"),
		Text:  text,
	}

	if replaceID := c.Uint64("replace"); replaceID != 0 {
		saved, err := service.ReplaceSection(c.Context, tenantID, core.ID(replaceID), input)
		if err != nil {
			return err
		}
		fmt.Printf("section %d replaced (%d chunks)\n", saved.Id, saved.ChunkCount)
		return nil
	}

	result, err := service.Ingest(c.Context, tenantID, []ingest.SectionInput{input})
	if err != nil {
		return err
	}

	for _, sr := range result.PerSection {
		if sr.Err != nil {
			return sr.Err
		}
		fmt.Printf("section %d ingested (%d chunks)\n", sr.SectionId, sr.Chunks)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("provide exactly one question argument")
	}

	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	result, err := service.Query(c.Context, core.ID(c.Uint64("tenant")), c.Args().First(),
		askbase.QueryOptions{
			SessionID:  c.String("session"),
			Limit:      c.Int("limit"),
			TypeFilter: c.String("type"),
		})
	if err != nil {
		return err
	}

	fmt.Println(result.Answer)
	if len(result.Passages) > 0 {
		fmt.Printf("\nsources (%s tier):\n", result.Tier)
		for i, passage := range result.Passages {
			fmt.Printf("  [%d] %s (%.2f)\n", i+1, passage.Title, passage.Score)
		}
	}
	return nil
}

func sectionsListCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	sections, err := service.Sections().ListSections(c.Context, core.ID(c.Uint64("tenant")))
	if err != nil {
		return err
	}

	if len(sections) == 0 {
		fmt.Println("no sections")
		return nil
	}
	for _, section := range sections {
		fmt.Printf("%d\t%s\t%s\t%d chunks\n", section.Id, section.Type, section.Title, section.ChunkCount)
	}
	return nil
}

func sectionsDeleteCommand(c *cli.Context) error {
	service, err := openService(c)
	if err != nil {
		return err
	}
	defer service.Close()

	tenantID := core.ID(c.Uint64("tenant"))
	sectionID := core.ID(c.Uint64("section"))
	if err := service.DeleteSection(c.Context, tenantID, sectionID); err != nil {
		return err
	}

	fmt.Printf("section %d deleted\n", sectionID)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
