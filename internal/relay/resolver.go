package relay

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/isometry/gh-issue-slack-relay/internal/helpers"
	"golang.org/x/sync/singleflight"
)

// URLResolver provides the destination webhook URL for one invocation. An empty result means
// the destination is not configured.
type URLResolver interface {
	Resolve(ctx context.Context) string
}

// EnvResolver reads the destination from the named environment variable on every call.
type EnvResolver string

// Resolve implements URLResolver.
func (e EnvResolver) Resolve(context.Context) string {
	return os.Getenv(string(e))
}

// SecretGetter fetches a named secret value.
type SecretGetter interface {
	GetSecret(ctx context.Context, key string, encrypted bool) (*string, error)
}

// SSMResolver prefers its primary resolver and falls back to an SSM parameter when the primary
// yields nothing. The first successful fetch is cached for the life of the process, including an
// empty value. Failures are not cached; concurrent callers share a single in-flight fetch.
type SSMResolver struct {
	primary   URLResolver
	secrets   SecretGetter
	parameter string
	logger    *slog.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	value  string
	cached bool
}

// NewSSMResolver returns an SSMResolver reading parameter through secrets.
func NewSSMResolver(primary URLResolver, secrets SecretGetter, parameter string, logger *slog.Logger) *SSMResolver {
	if logger == nil {
		logger = helpers.NewNoopLogger()
	}
	return &SSMResolver{primary: primary, secrets: secrets, parameter: parameter, logger: logger}
}

// Resolve implements URLResolver.
func (s *SSMResolver) Resolve(ctx context.Context) string {
	if v := s.primary.Resolve(ctx); v != "" {
		return v
	}

	if value, cached := s.cachedValue(); cached {
		return value
	}

	v, err, _ := s.group.Do(s.parameter, func() (any, error) {
		if value, cached := s.cachedValue(); cached {
			return value, nil
		}

		secret, err := s.secrets.GetSecret(ctx, s.parameter, true)
		if err != nil {
			return "", err
		}
		value := helpers.String(secret)
		s.mu.Lock()
		s.value, s.cached = value, true
		s.mu.Unlock()
		return value, nil
	})
	if err != nil {
		s.logger.Error("failed to resolve destination from SSM", slog.String("parameter", s.parameter), slog.Any("error", err))
		return ""
	}
	return v.(string)
}

func (s *SSMResolver) cachedValue() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, s.cached
}
