package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobmate/ats-ingest/internal/config"
	"jobmate/ats-ingest/internal/logging"
)

// app is the state shared by subcommands once flags are parsed.
type app struct {
	configPath string
	logJSON    bool
	logLevel   string

	cfg *config.Config
	log *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ats-ingest",
		Short:         "Ingest job offers from public ATS boards",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (yaml or toml)")
	root.PersistentFlags().BoolVar(&a.logJSON, "log-json", false, "emit JSON logs")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newScrapeCmd(a),
		newDaemonCmd(a),
		newSweepCmd(a),
		newTargetsCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-json") {
		cfg.LogJSON = a.logJSON
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	return nil
}
