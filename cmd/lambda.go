package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/gh-issue-slack-relay/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Run as an AWS Lambda function",
	}
	cmd.AddCommand(cmdLambdaEvent(), cmdLambdaHTTP())
	bindEnvMap(cmd, lambdaEnvMapString)
	return cmd
}

// cmdLambdaEvent is the command for running the lambda in event mode.
func cmdLambdaEvent() *cobra.Command {
	return &cobra.Command{
		Use:   "event",
		Short: "Handle direct invocations whose event is the GitHub payload",
		RunE:  runLambdaEvent,
	}
}

// cmdLambdaHTTP is the command for running the lambda-http mode.
func cmdLambdaHTTP() *cobra.Command {
	return &cobra.Command{
		Use:   "http",
		Short: "Handle API Gateway or function URL invocations",
		RunE:  runLambdaHTTP,
	}
}

func runLambdaEvent(cmd *cobra.Command, _ []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.With("mode", config.ModeLambdaEvent).Info("lambda starting...")
	lambda.StartWithOptions(rt.LambdaForEvent,
		lambda.WithContext(cmd.Context()))
	return nil
}

func runLambdaHTTP(cmd *cobra.Command, _ []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.With("mode", config.ModeLambdaHTTP, "payloadType", config.Lambda.PayloadType).Info("lambda starting...")
	lambda.StartWithOptions(rt.Lambda,
		lambda.WithContext(cmd.Context()))
	return nil
}
