package cmd

import (
	"time"

	"github.com/isometry/gh-issue-slack-relay/internal/config"
	"github.com/isometry/gh-issue-slack-relay/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'lambda-event', 'lambda-http' and 'service'",
		Short:       helpers.Ptr("m"),
	},
	&config.Global.EnvFile: {
		Name:        "env-file",
		Description: "Optional dotenv file loaded before the runtime starts",
		Short:       helpers.Ptr("e"),
	},
	&config.Slack.SSMParameter: {
		Name:        "slack-url-ssm-parameter",
		Description: "The SSM parameter holding the Slack webhook URL, used when SLACK_URL is not set",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Slack.Timeout: {
		Name:        "slack-timeout",
		Description: "The timeout for a single Slack webhook call",
	},
}
