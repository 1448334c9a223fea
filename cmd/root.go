// Package cmd provides the entrypoint for the gh-issue-slack-relay cli.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/isometry/gh-issue-slack-relay/internal/config"
	"github.com/isometry/gh-issue-slack-relay/internal/helpers"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configFilePath string
	logger         = helpers.NewNoopLogger()
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
}

// New returns the root command for the gh-issue-slack-relay.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gh-issue-slack-relay",
		Short:        "Relay GitHub issue events to a Slack incoming webhook",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var envFileErr error
			if path := config.Global.EnvFile; path != "" {
				// Variables already present in the environment take precedence.
				if envFileErr = godotenv.Load(path); envFileErr != nil && !errors.Is(envFileErr, os.ErrNotExist) {
					return fmt.Errorf("failed to load env file %s: %w", path, envFileErr)
				}
				if err := applyEnv(cmd.Root()); err != nil {
					return fmt.Errorf("invalid environment: %w", err)
				}
			}

			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			logger = helpers.NewLogger(config.Global.Logging.Verbosity, config.Global.Logging.CallerTrace).
				With("mode", config.Global.Mode)
			switch path := config.Global.EnvFile; {
			case path == "":
			case envFileErr != nil:
				logger.Warn("env file not found", slog.String("path", path))
			default:
				logger.Debug("loaded env file", slog.String("path", path))
			}

			if err := config.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return runService(cmd, args)
			case config.ModeLambdaHTTP:
				return runLambdaHTTP(cmd, args)
			case config.ModeLambdaEvent:
				return runLambdaEvent(cmd, args)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	// Root command flags
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", "config.yaml", "path to the configuration file")

	// Configuration loading & defaults
	if err := errors.Join(
		config.LoadFromFile(configFilePath),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapCount)
	bindEnvMap(cmd, envMapDuration)
}
