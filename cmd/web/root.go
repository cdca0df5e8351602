package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"finitefield.org/egypt-online-web/internal/config"
	"finitefield.org/egypt-online-web/internal/logging"
	"finitefield.org/egypt-online-web/internal/resource"
	"finitefield.org/egypt-online-web/internal/validate"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = ""

// errValidationFailed makes `web validate` exit non-zero without printing
// the report twice.
var errValidationFailed = errors.New("data validation failed")

type rootOptions struct {
	configPath   string
	addr         string
	templatesDir string
	publicDir    string
	dataURL      string
	dev          bool
}

// NewRootCmd builds the CLI. Running it without a subcommand serves the site.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "web",
		Short: "Server-rendered site about internet adoption in Egypt",
		Long: `web renders the home, growth, timeline and today pages from static JSON
data files. Each page section loads, validates and renders its own data;
a failing section shows an error card without affecting the others.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "config file (default ./"+config.DefaultConfigFile+" when present)")
	pf.StringVar(&opts.publicDir, "public", "", "public assets directory")
	pf.StringVar(&opts.dataURL, "data-url", "", "remote base URL for data files")

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "", "HTTP listen address")
	f.StringVar(&opts.templatesDir, "templates", "", "templates directory")
	f.BoolVar(&opts.dev, "dev", false, "dev mode: reload templates on change")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newValidateCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&opts.templatesDir, "templates", "", "templates directory")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "dev mode: reload templates on change")
	return cmd
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every data file and print a report",
		Long: `validate loads home, timeline, growth, isps and penetration data, checks
their shape and prints one line per resource. Warnings never fail the run;
any failed resource makes the command exit non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel, cfg.Dev)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			report := validate.New(dataLoader(cfg), logger).Run(cmd.Context())
			if err := report.Print(cmd.OutOrStdout()); err != nil {
				return err
			}
			if !report.OK() {
				return errValidationFailed
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), getVersion())
		},
	}
}

func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// resolveConfig layers flags that were set explicitly over file and env.
func resolveConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath, os.Getenv)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = opts.addr
	}
	if flags.Changed("templates") {
		cfg.TemplatesDir = opts.templatesDir
	}
	if flags.Changed("public") {
		cfg.PublicDir = opts.publicDir
	}
	if flags.Changed("data-url") {
		cfg.DataURL = opts.dataURL
	}
	if flags.Changed("dev") {
		cfg.Dev = opts.dev
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// dataLoader reads data from the remote host when configured, else from the
// public directory.
func dataLoader(cfg *config.Config) *resource.Loader {
	if cfg.DataURL != "" {
		return resource.NewHTTPLoader(cfg.DataURL)
	}
	return resource.NewFSLoader(os.DirFS(cfg.PublicDir))
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Dev)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger.Info("web starting", zap.String("addr", cfg.Addr), zap.Bool("dev", cfg.Dev), zap.String("version", getVersion()))
	return a.serve(ctx)
}
