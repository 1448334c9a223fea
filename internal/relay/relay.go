// Package relay forwards GitHub issue events to a Slack incoming webhook.
package relay

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/isometry/gh-issue-slack-relay/internal/config"
	"github.com/isometry/gh-issue-slack-relay/internal/helpers"
	"github.com/isometry/gh-issue-slack-relay/internal/payload"
	"github.com/isometry/gh-issue-slack-relay/internal/slack"
	"github.com/pkg/errors"
)

// Results reported for recoverable failures.
const (
	ResultMissingIssueURL   = "Error: No issue or html_url found in the payload."
	ResultIssueURLNotString = "Error: issue.html_url is not a string."
	ResultMissingSlackURL   = "Error: SLACK_URL environment variable is not set."
)

// ErrMalformedPayload is returned by Handle when the payload is not valid JSON text.
var ErrMalformedPayload = payload.ErrMalformed

// IssueURLPath locates the issue URL in a GitHub issues event.
var IssueURLPath = []string{"issue", "html_url"}

// Notifier delivers one notification to a webhook URL.
type Notifier interface {
	Post(ctx context.Context, url string, n slack.Notification) (*slack.Result, error)
}

// Option is a functional option used to configure a Relay.
type Option func(*Relay)

// Relay holds no per-invocation state; a single instance serves concurrent invocations.
type Relay struct {
	logger   *slog.Logger
	notifier Notifier
	resolver URLResolver
}

// New creates a Relay. Without options it logs nowhere, reads SLACK_URL from the environment
// and posts through the process-wide Slack client.
func New(opts ...Option) *Relay {
	_inst := &Relay{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.notifier == nil {
		_inst.notifier = slack.Shared()
	}
	if _inst.resolver == nil {
		_inst.resolver = EnvResolver(config.SlackURLEnv)
	}
	return _inst
}

// Handle relays one invocation payload and reports the outcome as text: the Slack response body
// on delivery, or an "Error: ..." message. Only a payload that is not valid JSON returns an error.
func (r *Relay) Handle(ctx context.Context, input []byte) (string, error) {
	logger := r.logger.With(slog.String("invocation", invocationID(ctx)))
	logger.Info("received payload", slog.String("payload", string(input)))

	doc, err := payload.Decode(input)
	if err != nil {
		logger.Error("failed to decode payload", slog.Any("error", err))
		return "", errors.Wrap(err, "failed to decode payload")
	}

	issueURL, err := payload.LookupString(doc, IssueURLPath...)
	if err != nil {
		logger.Error("invalid html_url in the GitHub webhook payload", slog.Any("error", err))
		return ResultIssueURLNotString, nil
	}
	if issueURL == nil {
		logger.Error("no issue or html_url found in the GitHub webhook payload")
		return ResultMissingIssueURL, nil
	}

	slackURL := r.resolver.Resolve(ctx)
	if slackURL == "" {
		logger.Error("SLACK_URL environment variable not set")
		return ResultMissingSlackURL, nil
	}

	result, err := r.notifier.Post(ctx, slackURL, slack.NewIssueCreated(*issueURL))
	if err != nil {
		logger.Error("error sending message to Slack", slog.Any("error", err))
		return "Error: " + err.Error(), nil
	}

	logger.Info("Slack response", slog.Int("statusCode", result.StatusCode), slog.String("body", result.Body))
	return result.Body, nil
}

func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
