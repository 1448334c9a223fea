package helpers

import (
	"github.com/aws/aws-lambda-go/events"
)

// Request is the HTTP-fronted Lambda request. API Gateway v1, v2 and function URL payloads
// all decode into it for the fields the relay reads.
type Request = events.APIGatewayV2HTTPRequest
