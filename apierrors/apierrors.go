package apierrors

import (
	"errors"
	"net/http"

	"github.com/aws/smithy-go"
)

type Error struct {
	Code int
	Body ErrorBody
}

type ErrorBody struct {
	Type    string
	Message string
}

func (e *Error) Error() string {
	return e.Body.Type + ": " + e.Body.Message
}

func generate(code int, typ, message string) *Error {
	return &Error{
		Code: code,
		Body: ErrorBody{
			Type:    typ,
			Message: message,
		},
	}
}

func BadRequest(message string) *Error {
	return generate(http.StatusBadRequest, "BadRequest", message)
}

func InternalFailure(message string) *Error {
	return generate(http.StatusInternalServerError, "InternalFailure", message)
}

// Error codes DynamoDB uses when a request was rejected for capacity reasons.
// These are retryable by the caller, so they surface as 503.
var throttlingCodes = map[string]bool{
	"ProvisionedThroughputExceededException": true,
	"ThrottlingException":                    true,
	"RequestLimitExceeded":                   true,
}

// FromStoreError classifies a failed store call. The error code of the
// underlying API error is kept so callers can tell failures apart.
func FromStoreError(err error) *Error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return InternalFailure(err.Error())
	}

	code := apiErr.ErrorCode()
	if throttlingCodes[code] {
		return generate(http.StatusServiceUnavailable, code, apiErr.ErrorMessage())
	}
	return generate(http.StatusInternalServerError, code, apiErr.ErrorMessage())
}
