// Package runtime adapts the relay to its hosting environments: direct Lambda invocation,
// HTTP-fronted Lambda and a plain net/http service.
package runtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/go-github/v84/github"
	"github.com/isometry/gh-issue-slack-relay/internal/helpers"
	"github.com/isometry/gh-issue-slack-relay/internal/models"
	"github.com/isometry/gh-issue-slack-relay/internal/relay"
)

// Handler processes one invocation payload.
type Handler interface {
	Handle(ctx context.Context, input []byte) (string, error)
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithLambdaPayloadType sets the response shape returned by Lambda.
func WithLambdaPayloadType(payloadType string) Option {
	return func(r *Runtime) {
		r.payloadType = payloadType
	}
}

// Runtime serves a Handler from Lambda or net/http and maps its outcome onto the host's response.
type Runtime struct {
	handler     Handler
	logger      *slog.Logger
	payloadType string
}

// NewRuntime creates a new runtime instance
func NewRuntime(handler Handler, opts ...Option) *Runtime {
	_inst := &Runtime{handler: handler, payloadType: "api-gateway-v2"}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	return _inst
}

// LambdaForEvent is the Lambda handler for direct invocations. The raw event is the GitHub
// payload and the relay result is the function result.
func (r *Runtime) LambdaForEvent(ctx context.Context, event json.RawMessage) (string, error) {
	r.logger.Debug("received Lambda event")
	return r.handler.Handle(ctx, event)
}

// Lambda is the Lambda handler for API Gateway and function URL invocations.
func (r *Runtime) Lambda(ctx context.Context, req helpers.Request) (any, error) {
	header := make(http.Header, len(req.Headers))
	for k, v := range req.Headers {
		header.Set(k, v)
	}
	r.logger.Info("received API Gateway request", deliveryAttrs(&http.Request{Header: header})...)

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			r.logger.Warn("failed to decode base64 request body", slog.Any("error", err))
			return r.lambdaResponse(models.Response{Body: err.Error(), StatusCode: http.StatusBadRequest})
		}
		body = decoded
	}

	resp, err := r.process(ctx, body)
	if err != nil {
		resp.Body = err.Error()
	}
	resp.Headers = map[string]string{"Content-Type": "text/plain; charset=utf-8"}
	return r.lambdaResponse(resp)
}

func (r *Runtime) lambdaResponse(resp models.Response) (any, error) {
	switch r.payloadType {
	case "api-gateway-v1":
		return events.APIGatewayProxyResponse{
			Body:       resp.Body,
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
		}, nil
	case "api-gateway-v2":
		return events.APIGatewayV2HTTPResponse{
			Body:       resp.Body,
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
		}, nil
	case "lambda-url":
		return events.LambdaFunctionURLResponse{
			Body:       resp.Body,
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported lambda payload type: %s", r.payloadType)
	}
}

// ServeHTTP is the HTTP handler for the runtime
func (r *Runtime) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodPost:
		break
	default:
		r.logger.Debug("rejecting HTTP request...", slog.Any("requestor", req.RemoteAddr), "reason", "method not allowed", slog.Any("method", req.Method))
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusMethodNotAllowed}, nil, resp)
		return
	}

	r.logger.Debug("received HTTP request...", append(deliveryAttrs(req), slog.Any("requestor", req.RemoteAddr), slog.Any("path", req.URL.Path))...)

	body, err := io.ReadAll(req.Body)
	if err != nil {
		r.logger.Error("failed to read request body", slog.Any("error", err))
		helpers.RespondHTTP(models.Response{StatusCode: http.StatusInternalServerError}, err, resp)
		return
	}

	result, err := r.process(req.Context(), body)
	helpers.RespondHTTP(result, err, resp)
}

// process runs the relay and maps its outcome onto an HTTP status. Every relay result string,
// including reported failures, is a 200; only malformed input is rejected.
func (r *Runtime) process(ctx context.Context, body []byte) (models.Response, error) {
	result, err := r.handler.Handle(ctx, body)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, relay.ErrMalformedPayload) {
			status = http.StatusBadRequest
		}
		r.logger.Warn("relay rejected request", slog.Any("error", err))
		return models.Response{StatusCode: status}, err
	}
	return models.Response{Body: result, StatusCode: http.StatusOK}, nil
}

// deliveryAttrs extracts the GitHub delivery metadata of req for logging.
func deliveryAttrs(req *http.Request) []any {
	var attrs []any
	if v := github.WebHookType(req); v != "" {
		attrs = append(attrs, slog.String("event", v))
	}
	if v := github.DeliveryID(req); v != "" {
		attrs = append(attrs, slog.String("deliveryID", v))
	}
	return attrs
}
