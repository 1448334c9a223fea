package cmd

import (
	"log/slog"

	"github.com/isometry/gh-issue-slack-relay/internal/config"
	"github.com/isometry/gh-issue-slack-relay/internal/controllers/aws"
	"github.com/isometry/gh-issue-slack-relay/internal/relay"
	"github.com/isometry/gh-issue-slack-relay/internal/runtime"
	"github.com/isometry/gh-issue-slack-relay/internal/slack"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func setup(cmd *cobra.Command) (*runtime.Runtime, error) {
	logger.Debug("creating relay...")
	var resolver relay.URLResolver = relay.EnvResolver(config.SlackURLEnv)
	if param := config.Slack.SSMParameter; param != "" {
		logger.Debug("enabling SSM fallback for the Slack webhook URL", slog.String("parameter", param))
		awsCtl, err := aws.NewController(
			aws.WithLogger(logger.With("component", "aws-controller")),
			aws.WithContext(cmd.Context()))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller")
		}
		resolver = relay.NewSSMResolver(resolver, awsCtl, param, logger.With("component", "resolver"))
	}

	hdl := relay.New(
		relay.WithLogger(logger.With("component", "relay")),
		relay.WithURLResolver(resolver),
		relay.WithNotifier(slack.Shared(
			slack.WithTimeout(config.Slack.Timeout),
			slack.WithLogger(logger.With("component", "slack")))))

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(hdl,
		runtime.WithLambdaPayloadType(config.Lambda.PayloadType),
		runtime.WithLogger(logger.With("component", "runtime"))), nil
}
