package runtime_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/isometry/gh-issue-slack-relay/internal/helpers"
	"github.com/isometry/gh-issue-slack-relay/internal/relay"
	"github.com/isometry/gh-issue-slack-relay/internal/runtime"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandler struct {
	result string
	err    error
	inputs []string
}

func (f *fakeHandler) Handle(_ context.Context, input []byte) (string, error) {
	f.inputs = append(f.inputs, string(input))
	return f.result, f.err
}

func TestRuntime_LambdaForEvent(t *testing.T) {
	hdl := &fakeHandler{result: "ok"}
	rt := runtime.NewRuntime(hdl)

	result, err := rt.LambdaForEvent(context.Background(), json.RawMessage(`{"issue": {}}`))
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, []string{`{"issue": {}}`}, hdl.inputs)
}

func TestRuntime_Lambda(t *testing.T) {
	testCases := []struct {
		Name           string
		PayloadType    string
		Request        helpers.Request
		Result         string
		Err            error
		ExpectedStatus int
		ExpectedBody   string
		ExpectError    bool
	}{
		{
			Name:           "api_gateway_v2",
			PayloadType:    "api-gateway-v2",
			Request:        helpers.Request{Body: `{}`},
			Result:         relay.ResultMissingIssueURL,
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   relay.ResultMissingIssueURL,
		},
		{
			Name:           "api_gateway_v1",
			PayloadType:    "api-gateway-v1",
			Request:        helpers.Request{Body: `{}`},
			Result:         "ok",
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   "ok",
		},
		{
			Name:           "lambda_url_base64",
			PayloadType:    "lambda-url",
			Request:        helpers.Request{Body: base64.StdEncoding.EncodeToString([]byte(`{}`)), IsBase64Encoded: true},
			Result:         "ok",
			ExpectedStatus: http.StatusOK,
			ExpectedBody:   "ok",
		},
		{
			Name:           "invalid_base64",
			PayloadType:    "api-gateway-v2",
			Request:        helpers.Request{Body: "%%%", IsBase64Encoded: true},
			ExpectedStatus: http.StatusBadRequest,
		},
		{
			Name:           "malformed_payload",
			PayloadType:    "api-gateway-v2",
			Request:        helpers.Request{Body: `{`},
			Err:            errors.Wrap(relay.ErrMalformedPayload, "failed to decode payload"),
			ExpectedStatus: http.StatusBadRequest,
			ExpectedBody:   "failed to decode payload",
		},
		{
			Name:        "unsupported_payload_type",
			PayloadType: "sqs",
			Request:     helpers.Request{Body: `{}`},
			ExpectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			rt := runtime.NewRuntime(&fakeHandler{result: tc.Result, err: tc.Err},
				runtime.WithLambdaPayloadType(tc.PayloadType))

			resp, err := rt.Lambda(context.Background(), tc.Request)
			if tc.ExpectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			var status int
			var body string
			switch r := resp.(type) {
			case events.APIGatewayV2HTTPResponse:
				status, body = r.StatusCode, r.Body
			case events.APIGatewayProxyResponse:
				status, body = r.StatusCode, r.Body
			case events.LambdaFunctionURLResponse:
				status, body = r.StatusCode, r.Body
			default:
				t.Fatalf("unexpected response type %T", resp)
			}
			assert.Equal(t, tc.ExpectedStatus, status)
			assert.Contains(t, body, tc.ExpectedBody)
		})
	}
}

func TestRuntime_ServeHTTP(t *testing.T) {
	testCases := []struct {
		Name            string
		Method          string
		Result          string
		Err             error
		ExpectedStatus  int
		ExpectedMessage string
		ExpectedError   string
		ExpectedCalls   int
	}{
		{
			Name:           "method_not_allowed",
			Method:         http.MethodGet,
			ExpectedStatus: http.StatusMethodNotAllowed,
		},
		{
			Name:            "delivered",
			Method:          http.MethodPost,
			Result:          "ok",
			ExpectedStatus:  http.StatusOK,
			ExpectedMessage: "ok",
			ExpectedCalls:   1,
		},
		{
			Name:            "reported_failure_is_ok",
			Method:          http.MethodPost,
			Result:          relay.ResultMissingSlackURL,
			ExpectedStatus:  http.StatusOK,
			ExpectedMessage: relay.ResultMissingSlackURL,
			ExpectedCalls:   1,
		},
		{
			Name:           "malformed_payload",
			Method:         http.MethodPost,
			Err:            errors.Wrap(relay.ErrMalformedPayload, "failed to decode payload"),
			ExpectedStatus: http.StatusBadRequest,
			ExpectedError:  "failed to decode payload",
			ExpectedCalls:  1,
		},
		{
			Name:           "unexpected_error",
			Method:         http.MethodPost,
			Err:            errors.New("boom"),
			ExpectedStatus: http.StatusInternalServerError,
			ExpectedError:  "boom",
			ExpectedCalls:  1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			hdl := &fakeHandler{result: tc.Result, err: tc.Err}
			rt := runtime.NewRuntime(hdl)

			req := httptest.NewRequest(tc.Method, "/", strings.NewReader(`{"issue": {"html_url": "u"}}`))
			req.Header.Set("X-GitHub-Event", "issues")
			req.Header.Set("X-GitHub-Delivery", "72d3162e-cc78-11e3-81ab-4c9367dc0958")
			rr := httptest.NewRecorder()
			rt.ServeHTTP(rr, req)

			assert.Equal(t, tc.ExpectedStatus, rr.Code)
			assert.Len(t, hdl.inputs, tc.ExpectedCalls)

			var envelope struct {
				Message string `json:"message"`
				Error   string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
			assert.Equal(t, tc.ExpectedMessage, envelope.Message)
			assert.Contains(t, envelope.Error, tc.ExpectedError)
		})
	}
}

func TestRuntime_ServeHTTPWithRelay(t *testing.T) {
	slackSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer slackSrv.Close()
	t.Setenv("SLACK_URL", slackSrv.URL)

	rt := runtime.NewRuntime(relay.New())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"issue": {"html_url": "https://github.com/x/y/issues/1"}}`))
	rr := httptest.NewRecorder()
	rt.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message": "ok"}`, rr.Body.String())
}

func TestRuntime_DeliveryLogging(t *testing.T) {
	const delivery = "72d3162e-cc78-11e3-81ab-4c9367dc0958"

	testCases := []struct {
		Name   string
		Invoke func(rt *runtime.Runtime)
	}{
		{
			Name: "service",
			Invoke: func(rt *runtime.Runtime) {
				req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
				req.Header.Set("X-GitHub-Event", "issues")
				req.Header.Set("X-GitHub-Delivery", delivery)
				rt.ServeHTTP(httptest.NewRecorder(), req)
			},
		},
		{
			Name: "lambda_lowercase_headers",
			Invoke: func(rt *runtime.Runtime) {
				_, _ = rt.Lambda(context.Background(), helpers.Request{
					Body:    `{}`,
					Headers: map[string]string{"x-github-event": "issues", "x-github-delivery": delivery},
				})
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			rt := runtime.NewRuntime(&fakeHandler{result: "ok"}, runtime.WithLogger(logger))

			tc.Invoke(rt)

			line, _, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
			var entry map[string]any
			require.NoError(t, json.Unmarshal(line, &entry))
			assert.Equal(t, "issues", entry["event"])
			assert.Equal(t, delivery, entry["deliveryID"])
		})
	}
}
