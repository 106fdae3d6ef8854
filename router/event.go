package router

import (
	"encoding/base64"
	"strings"
)

// Event is an API Gateway proxy request.
type Event struct {
	HTTPMethod            string            `json:"httpMethod"`
	Resource              string            `json:"resource"`
	Path                  string            `json:"path"`
	PathParameters        map[string]string `json:"pathParameters"`
	QueryStringParameters map[string]string `json:"queryStringParameters"`
	Headers               map[string]string `json:"headers"`
	Body                  string            `json:"body"`
	IsBase64Encoded       bool              `json:"isBase64Encoded"`
	RequestContext        RequestContext    `json:"requestContext"`
}

type RequestContext struct {
	RequestID    string `json:"requestId,omitempty"`
	ResourcePath string `json:"resourcePath,omitempty"`
}

// ResourcePath is the matched route template, e.g. /promotions/gift_card/{id}.
func (e *Event) ResourcePath() string {
	if e.RequestContext.ResourcePath != "" {
		return e.RequestContext.ResourcePath
	}
	return e.Resource
}

// Header looks up a header case-insensitively.
func (e *Event) Header(name string) string {
	if v, ok := e.Headers[name]; ok {
		return v
	}
	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func (e *Event) bodyBytes() ([]byte, error) {
	if e.IsBase64Encoded {
		return base64.StdEncoding.DecodeString(e.Body)
	}
	return []byte(e.Body), nil
}
