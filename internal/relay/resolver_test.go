package relay_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/isometry/gh-issue-slack-relay/internal/relay"
	"github.com/stretchr/testify/assert"
)

type fakeSecrets struct {
	value string
	err   error
	calls int
}

func (f *fakeSecrets) GetSecret(_ context.Context, _ string, _ bool) (*string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &f.value, nil
}

type staticResolver string

func (s staticResolver) Resolve(context.Context) string { return string(s) }

func TestEnvResolver(t *testing.T) {
	t.Setenv("RELAY_TEST_URL", "https://hooks.slack.com/services/T/B/X")
	assert.Equal(t, "https://hooks.slack.com/services/T/B/X", relay.EnvResolver("RELAY_TEST_URL").Resolve(context.Background()))
	assert.Empty(t, relay.EnvResolver("RELAY_TEST_URL_UNSET").Resolve(context.Background()))
}

func TestSSMResolver(t *testing.T) {
	testCases := []struct {
		Name          string
		Primary       string
		Secret        string
		SecretErr     error
		Expected      string
		ExpectedCalls int
	}{
		{
			Name:          "primary_wins",
			Primary:       "https://primary",
			Secret:        "https://ssm",
			Expected:      "https://primary",
			ExpectedCalls: 0,
		},
		{
			Name:          "ssm_fallback_is_cached",
			Secret:        "https://ssm",
			Expected:      "https://ssm",
			ExpectedCalls: 1,
		},
		{
			Name:          "empty_ssm_value_is_cached",
			Secret:        "",
			Expected:      "",
			ExpectedCalls: 1,
		},
		{
			Name:          "ssm_failure_is_not_cached",
			SecretErr:     errors.New("AccessDenied"),
			Expected:      "",
			ExpectedCalls: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			secrets := &fakeSecrets{value: tc.Secret, err: tc.SecretErr}
			r := relay.NewSSMResolver(staticResolver(tc.Primary), secrets, "/relay/slack-url", nil)

			assert.Equal(t, tc.Expected, r.Resolve(context.Background()))
			assert.Equal(t, tc.Expected, r.Resolve(context.Background()))
			assert.Equal(t, tc.ExpectedCalls, secrets.calls)
		})
	}
}

type blockingSecrets struct {
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingSecrets) GetSecret(context.Context, string, bool) (*string, error) {
	b.calls.Add(1)
	<-b.release
	v := "https://ssm"
	return &v, nil
}

func TestSSMResolverSharesFetch(t *testing.T) {
	secrets := &blockingSecrets{release: make(chan struct{})}
	r := relay.NewSSMResolver(staticResolver(""), secrets, "/relay/slack-url", nil)

	const callers = 8
	results := make(chan string, callers)
	var wg sync.WaitGroup
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.Resolve(context.Background())
		}()
	}
	close(secrets.release)
	wg.Wait()
	close(results)

	for v := range results {
		assert.Equal(t, "https://ssm", v)
	}
	assert.Equal(t, int32(1), secrets.calls.Load())
}
