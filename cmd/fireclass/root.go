package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/fireclass/internal/platform"
	"github.com/aretw0/fireclass/pkg/core"
)

// app carries the settings shared by every subcommand.
type app struct {
	configPath string
	verbose    bool
	readOnly   bool

	adapter string
	path    string
	project string
	timeout time.Duration

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "fireclass",
		Short: "Inspect the documents of a fireclass store",
		Long: `fireclass reads and cleans up the collections written by fireclass
repositories, in a bolt file or a Cloud Firestore project.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.setupLogger(cmd.ErrOrStderr())
			return a.loadConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: nearest "+platform.ConfigFile+")")
	flags.StringVar(&a.adapter, "adapter", platform.AdapterBolt, "store adapter ("+strings.Join(platform.Adapters, ", ")+")")
	flags.StringVar(&a.path, "path", platform.DefaultPath, "bolt store file")
	flags.StringVar(&a.project, "project", "", "Google Cloud project for the firestore adapter")
	flags.DurationVar(&a.timeout, "timeout", 0, "how long to wait for the bolt file lock")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(
		newCollectionsCmd(a),
		newGetCmd(a),
		newQueryCmd(a),
		newDeleteCmd(a),
		newVersionCmd(),
	)
	return cmd
}

func (a *app) setupLogger(w io.Writer) {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)
}

// loadConfig fills the settings left unset on the command line from the
// config file.
func (a *app) loadConfig(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		found, err := platform.FindConfig(".")
		if errors.Is(err, platform.ErrNoConfig) {
			return nil
		}
		if err != nil {
			return err
		}
		path = found
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	a.logger.Debug("config loaded", "file", path)

	flags := cmd.Flags()
	if cfg.Adapter != "" && !flags.Changed("adapter") {
		a.adapter = cfg.Adapter
	}
	if cfg.Path != "" && !flags.Changed("path") {
		a.path = cfg.Path
		if !filepath.IsAbs(a.path) {
			a.path = filepath.Join(filepath.Dir(path), a.path)
		}
	}
	if cfg.Project != "" && !flags.Changed("project") {
		a.project = cfg.Project
	}
	if cfg.Timeout > 0 && !flags.Changed("timeout") {
		a.timeout = cfg.Timeout
	}
	return nil
}

// open connects to the configured store. Read-only commands open bolt
// files with a shared lock.
func (a *app) open(ctx context.Context, readOnly bool) (*core.Database, core.Client, error) {
	db, err := platform.Open(ctx,
		platform.WithLogger(a.logger),
		platform.WithAdapter(a.adapter),
		platform.WithPath(a.path),
		platform.WithProjectID(a.project),
		platform.WithBoltTimeout(a.timeout),
		platform.WithReadOnly(readOnly),
	)
	if err != nil {
		return nil, nil, err
	}
	c, err := db.Client()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, c, nil
}
