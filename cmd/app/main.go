package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/lifenote/internal"
	"github.com/starford/lifenote/internal/apperr"
	"github.com/starford/lifenote/internal/controller"
	"github.com/starford/lifenote/internal/journal"
	"github.com/starford/lifenote/internal/mcpserver"
	"github.com/starford/lifenote/internal/models"
	"github.com/starford/lifenote/internal/ui"
	pkgconfig "github.com/starford/lifenote/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// interactiveLogger logs text to stderr so stdout stays free for output.
func interactiveLogger(cfg *internal.Config) *slog.Logger {
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel, false)
	slog.SetDefault(logger)
	return logger
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := interactiveLogger(cfg)

	clock, err := internal.NewClock(cfg)
	if err != nil {
		return err
	}
	repo, closeRepo, err := internal.OpenRepository(cfg, logger)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer closeRepo()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(repo, clock.Year).ServeStdio()
}

func addNote(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := interactiveLogger(cfg)

	repo, closeRepo, err := internal.OpenRepository(cfg, logger)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer closeRepo()

	draft := models.Draft{
		Content: strings.Join(cmd.Args().Slice(), " "),
		Topic:   models.Topic(cmd.String("topic")),
	}
	note, err := repo.Append(ctx, draft)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(apperr.Notice(err)))
		return err
	}

	fmt.Println(ui.Success(controller.NoticeSaved))
	fmt.Print(ui.FormatNoteCard(*note))
	return nil
}

func listYear(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := interactiveLogger(cfg)

	clock, err := internal.NewClock(cfg)
	if err != nil {
		return err
	}
	year := int(cmd.Int("year"))
	if year <= 0 {
		year = clock.Year()
	}

	repo, closeRepo, err := internal.OpenRepository(cfg, logger)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer closeRepo()

	notes, err := repo.ListForYear(ctx, year)
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Error(apperr.Notice(err)))
		return err
	}
	fmt.Print(ui.FormatYear(year, notes, false))
	return nil
}

func runJournal(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := interactiveLogger(cfg)

	clock, err := internal.NewClock(cfg)
	if err != nil {
		return err
	}
	repo, closeRepo, err := internal.OpenRepository(cfg, logger)
	if err != nil {
		return fmt.Errorf("open repository: %w", err)
	}
	defer closeRepo()

	ctrl := controller.New(ctx, repo,
		controller.WithYear(clock.Year),
		controller.WithLogger(logger),
	)
	defer ctrl.Close()

	var opts []journal.Option
	if src, ok := repo.(journal.TopicSource); ok {
		opts = append(opts, journal.WithTopicSource(src))
	}
	return journal.NewSession(ctrl, os.Stdin, os.Stdout, opts...).Run(ctx)
}

func main() {
	cmd := &cli.Command{
		Name:   "lifenote",
		Usage:  "Journal short notes by topic and look back over the year",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the note tools over MCP on stdio",
				Action: serveMCP,
			},
			{
				Name:      "add",
				Usage:     "Append a note",
				ArgsUsage: "<content>",
				Action:    addNote,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "topic",
						Aliases: []string{"t"},
						Usage:   "diary, health, dev or learning",
					},
				},
			},
			{
				Name:   "year",
				Usage:  "List a year's notes, most recent first",
				Action: listYear,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "year",
						Aliases:     []string{"y"},
						Usage:       "Calendar year",
						DefaultText: "current year",
					},
				},
			},
			{
				Name:   "journal",
				Usage:  "Write and browse notes interactively",
				Action: runJournal,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
