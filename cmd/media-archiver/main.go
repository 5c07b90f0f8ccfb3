package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alanbriolat/media-archiver"
	"github.com/alanbriolat/media-archiver/async"
	"github.com/alanbriolat/media-archiver/internal/boltdb"
	"github.com/alanbriolat/media-archiver/internal/fetch"
	"github.com/alanbriolat/media-archiver/internal/report"
	"github.com/alanbriolat/media-archiver/providers/tiktok"
)

const envPrefix = "MEDIA_ARCHIVER_"

func main() {
	// Missing .env files are fine
	_ = godotenv.Load(".env", ".env.local")

	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	config.Level.SetLevel(zap.InfoLevel)
	logger, err := config.Build()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.RedirectStdLog(logger)
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = media_archiver.WithLogger(ctx, logger)

	defaults := media_archiver.DefaultConfig()
	app := &cli.App{
		Name:      "media-archiver",
		Usage:     "download TikTok videos and photo sets",
		ArgsUsage: "[URL...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "video-dir",
				Value:   defaults.VideoDir,
				Usage:   "save videos to `DIR`",
				EnvVars: []string{envPrefix + "VIDEO_DIR"},
			},
			&cli.StringFlag{
				Name:    "image-dir",
				Value:   defaults.ImageDir,
				Usage:   "save photo set images to `DIR`",
				EnvVars: []string{envPrefix + "IMAGE_DIR"},
			},
			&cli.StringFlag{
				Name:    "backup-api",
				Value:   defaults.BackupAPIURL,
				Usage:   "backup API endpoint `URL`",
				EnvVars: []string{envPrefix + "BACKUP_API"},
			},
			&cli.StringFlag{
				Name:    "backup-api-param",
				Value:   defaults.BackupAPIParam,
				Usage:   "query parameter that carries the source URL to the backup API",
				EnvVars: []string{envPrefix + "BACKUP_API_PARAM"},
			},
			&cli.StringFlag{
				Name:    "user-agent",
				Value:   defaults.UserAgent,
				Usage:   "User-Agent header for all requests",
				EnvVars: []string{envPrefix + "USER_AGENT"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Value:   defaults.FetchTimeout,
				Usage:   "wait at most `DURATION` for each response to start (0 for no limit)",
				EnvVars: []string{envPrefix + "TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "history",
				Usage:   "record outcomes in the database at `PATH`",
				EnvVars: []string{envPrefix + "HISTORY"},
			},
			&cli.StringFlag{
				Name:  "strategy",
				Usage: "only resolve with the named strategy (markup, api)",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "don't show download progress bars",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("verbose") {
				config.Level.SetLevel(zap.DebugLevel)
			}
			return nil
		},
		Action: func(c *cli.Context) error {
			return run(c.Context, configFromFlags(c), c.Args().Slice(), !c.Bool("no-progress"))
		},
		Commands: []*cli.Command{
			{
				Name:  "history",
				Usage: "show outcomes recorded by previous sessions",
				Action: func(c *cli.Context) error {
					return history(c.String("history"), os.Stdout)
				},
			},
		},
		HideHelpCommand: true,
	}

	result := async.Run(func() error { return app.RunContext(ctx, os.Args) })

	select {
	case err = <-result:
	case <-ctx.Done():
		stop()
		err = <-result
	}
	if err != nil {
		logger.Fatal(err.Error())
	}
}

func configFromFlags(c *cli.Context) media_archiver.Config {
	config := media_archiver.DefaultConfig()
	config.VideoDir = c.String("video-dir")
	config.ImageDir = c.String("image-dir")
	config.BackupAPIURL = c.String("backup-api")
	config.BackupAPIParam = c.String("backup-api-param")
	config.UserAgent = c.String("user-agent")
	config.FetchTimeout = c.Duration("timeout")
	config.HistoryPath = c.String("history")
	config.Strategy = c.String("strategy")
	return config
}

// run processes each URL in urls, or prompts for URLs until told to stop if there are none, then prints the
// session summary. Individual failures are reported but don't make run fail.
func run(ctx context.Context, config media_archiver.Config, urls []string, showProgress bool) error {
	logger := zap.S()

	fetcher, err := fetch.New(fetch.Config{
		UserAgent: config.UserAgent,
		Timeout:   config.FetchTimeout,
	})
	if err != nil {
		return err
	}

	var archive media_archiver.Archive = media_archiver.NilArchive{}
	if config.HistoryPath != "" {
		db, err := boltdb.New(config.HistoryPath)
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer db.Close()
		archive = db
	}
	if config.BackupAPIURL == "" {
		logger.Warnf("no backup API configured (set --backup-api or %sBACKUP_API); photo sets can't be resolved", envPrefix)
	}

	progress := &progressDisplay{}
	retrieverConfig := config.RetrieverConfig()
	if showProgress {
		retrieverConfig.OnProgress = progress.forFile
	}
	processor := media_archiver.NewProcessor(
		tiktok.NewConfig(fetcher, config).NewChain(),
		media_archiver.NewRetriever(fetcher, retrieverConfig),
		media_archiver.NewSessionLedger(archive),
	).WithStrategy(config.Strategy)

	process := func(url string) {
		record := processor.ProcessURL(ctx, url)
		progress.finish()
		if err := report.Outcome(os.Stdout, record); err != nil {
			logger.Errorf("failed to report outcome: %v", err)
		}
	}

	if len(urls) > 0 {
		for _, url := range urls {
			if ctx.Err() != nil {
				break
			}
			process(url)
		}
	} else {
		prompt := newPrompter(os.Stdin, os.Stdout)
		for {
			url, err := prompt.URL(ctx)
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
					return err
				}
				break
			}
			process(url)
			again, err := prompt.Confirm(ctx, "Process another URL?")
			if err != nil || !again {
				break
			}
		}
	}

	fmt.Println()
	return report.Table(os.Stdout, processor.Ledger().Summary())
}

func history(path string, w io.Writer) error {
	if path == "" {
		return fmt.Errorf("no history database (set --history or %sHISTORY)", envPrefix)
	}
	db, err := boltdb.New(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()
	outcomes, err := db.ListOutcomes()
	if err != nil {
		return err
	}
	return report.Table(w, outcomes)
}
