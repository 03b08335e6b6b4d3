package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/compmath/internal/api"
	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/config"
	"github.com/san-kum/compmath/internal/logging"
	"github.com/san-kum/compmath/internal/storage"
	"github.com/san-kum/compmath/internal/tui"
	"github.com/san-kum/compmath/internal/viz"
)

var (
	configFile string
	remoteURL  string
	dataDir    string
	logLevel   string
	themeName  string

	cfg     *config.Config
	logger  *zap.Logger
	backend compute.Backend
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "compmath",
		Short:             "numerical methods lab: roots, systems, quadrature, linear solvers",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), backend, logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&remoteURL, "remote", "", "compute on a remote server at this base URL")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "run history directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", viz.CurrentTheme.Name, fmt.Sprintf("color theme %v", viz.ThemeNames()))

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal interface",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), backend, logger)
		},
	}

	rootCmd.AddCommand(
		serveCmd(),
		secantCmd(),
		newtonCmd(),
		integrateCmd(),
		propertiesCmd(),
		linearCmd(),
		scenarioCmd(),
		listCmd(),
		plotCmd(),
		exportJSONCmd(),
		exportSVGCmd(),
		presetsCmd(),
		tuiCmd,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// setup loads the config file, lets explicitly set flags override it and
// builds the logger and compute backend shared by every command.
func setup(cmd *cobra.Command, args []string) error {
	cfg = config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("data") || cfg.DataDir == "" {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("remote") {
		cfg.Backend.Mode = config.BackendRemote
		cfg.Backend.URL = remoteURL
	}

	if flags.Changed("theme") {
		viz.SetTheme(themeName)
	}

	var err error
	logger, err = logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	switch cfg.Backend.Mode {
	case config.BackendRemote:
		backend = api.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, logger)
	default:
		backend = compute.NewLocal(logger)
	}
	logger.Debug("backend ready", zap.String("backend", backend.Name()))
	return nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the compute API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			srv := api.NewServer(compute.NewLocal(logger), logger)
			return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	return cmd
}
