package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/streetsignal/internal/catalog/importer"
	"github.com/smallbiznis/streetsignal/internal/catalog/repository"
	"github.com/smallbiznis/streetsignal/internal/config"
	"github.com/smallbiznis/streetsignal/internal/migration"
	obslogger "github.com/smallbiznis/streetsignal/internal/observability/logger"
	"github.com/smallbiznis/streetsignal/pkg/db"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type options struct {
	datasetURL string
	batchSize  int
	maxPages   int
	timeout    time.Duration
	migrate    bool
	verbose    bool
}

func (o *options) validate() error {
	if o.batchSize <= 0 || o.batchSize > 100 {
		return errors.New("batch size must be between 1 and 100")
	}
	if o.maxPages < 0 {
		return errors.New("max pages must not be negative")
	}
	return nil
}

func newCmd(opts *options) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("CATALOG_IMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:     "catalog-import",
		Short:   "Import basketball courts from the public sports facilities dataset.",
		Args:    cobra.ExactArgs(0),
		Version: releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), opts)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVar(&opts.datasetURL, "dataset-url", importer.DefaultDatasetURL, "records endpoint of the dataset (env: CATALOG_IMPORT_DATASET_URL)")
	fs.IntVarP(&opts.batchSize, "batch-size", "b", importer.DefaultBatchSize, "records fetched per page (env: CATALOG_IMPORT_BATCH_SIZE)")
	fs.IntVarP(&opts.maxPages, "max-pages", "n", 0, "stop after this many pages, 0 for all (env: CATALOG_IMPORT_MAX_PAGES)")
	fs.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "overall import deadline (env: CATALOG_IMPORT_TIMEOUT)")
	fs.BoolVar(&opts.migrate, "migrate", true, "create the courts table before importing (env: CATALOG_IMPORT_MIGRATE)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log every page (env: CATALOG_IMPORT_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("catalog-import v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}

func run(ctx context.Context, opts *options) error {
	cfg := config.Load()

	level := "info"
	if opts.verbose {
		level = "debug"
	}
	log, err := obslogger.New(nil, obslogger.Config{
		ServiceName: "catalog-import",
		Environment: cfg.Environment,
		Version:     releaseVersion,
		Level:       level,
		Format:      "console",
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	conn, err := db.New(nil, cfg, log)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if opts.migrate {
		if err := migration.Apply(conn, cfg, log); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	imp := importer.New(
		importer.NewClient(opts.datasetURL, nil),
		repository.NewSource(conn),
		log,
		importer.WithBatchSize(opts.batchSize),
		importer.WithMaxPages(opts.maxPages),
	)
	stats, err := imp.Run(ctx)
	log.Info("catalog import finished",
		zap.Int("pages", stats.Pages),
		zap.Int("fetched", stats.Fetched),
		zap.Int("imported", stats.Imported),
		zap.Int("skipped", stats.Skipped),
		zap.Error(err),
	)
	return err
}
