package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const (
	// ModeLambdaEvent runs the relay as a directly-invoked Lambda function.
	ModeLambdaEvent = "lambda-event"
	// ModeLambdaHTTP runs the relay behind API Gateway or a Lambda function URL.
	ModeLambdaHTTP = "lambda-http"
	// ModeService runs the relay as a standalone HTTP service.
	ModeService = "service"
)

const (
	// SlackURLEnv is the environment variable holding the Slack incoming-webhook URL.
	SlackURLEnv = "SLACK_URL"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the loaded configuration values against their constraints.
func Validate() error {
	return errors.Join(
		validate.Struct(&Global),
		validate.Struct(&Slack),
		validate.Struct(&Service),
		validate.Struct(&Lambda),
	)
}
