package main

import (
	"github.com/limaJavier/examtabling/internal/config"
	"github.com/limaJavier/examtabling/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app holds what every subcommand needs once the root command has loaded the configuration
type app struct {
	viper  *viper.Viper
	config *config.Config
	logger *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &app{viper: config.New()}
	var cfgFile string

	cmd := &cobra.Command{
		Use:           "examtabler",
		Short:         "Exam timetabling engine",
		Long:          "examtabler assigns every course exam a time slot and a room so that courses sharing students never share a slot.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadWith(app.viper, cfgFile)
			if err != nil {
				return err
			}
			log, err := logger.NewLogger(cfg.Log)
			if err != nil {
				return err
			}
			app.config, app.logger = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./examtabling.yaml or ./config/examtabling.yaml)")
	cmd.PersistentFlags().String("log-level", "info", `log level ("debug", "info", "warn", "error")`)
	cmd.PersistentFlags().String("log-format", "json", `log format ("json", "console")`)
	cmd.PersistentFlags().String("db-dsn", "./examtabling.db", "SQLite database path")
	_ = app.viper.BindPFlag("log.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = app.viper.BindPFlag("log.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = app.viper.BindPFlag("database.dsn", cmd.PersistentFlags().Lookup("db-dsn"))

	cmd.AddCommand(newGenerateCmd(app), newImportCmd(app), newServeCmd(app))
	return cmd
}
