package apierrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"
)

func TestFromStoreError(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want *Error
	}{
		{
			name: "plain error",
			err:  errors.New("connection refused"),
			want: &Error{Code: http.StatusInternalServerError, Body: ErrorBody{Type: "InternalFailure", Message: "connection refused"}},
		},
		{
			name: "validation",
			err: fmt.Errorf("put item: %w", &smithy.GenericAPIError{
				Code:    "ValidationException",
				Message: "One of the required keys was not given a value",
				Fault:   smithy.FaultClient,
			}),
			want: &Error{Code: http.StatusInternalServerError, Body: ErrorBody{Type: "ValidationException", Message: "One of the required keys was not given a value"}},
		},
		{
			name: "missing table",
			err:  &types.ResourceNotFoundException{Message: aws.String("Requested resource not found")},
			want: &Error{Code: http.StatusInternalServerError, Body: ErrorBody{Type: "ResourceNotFoundException", Message: "Requested resource not found"}},
		},
		{
			name: "throttled",
			err:  &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")},
			want: &Error{Code: http.StatusServiceUnavailable, Body: ErrorBody{Type: "ProvisionedThroughputExceededException", Message: "slow down"}},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := FromStoreError(tc.err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestBadRequest(t *testing.T) {
	err := BadRequest("missing id")
	if err.Code != http.StatusBadRequest {
		t.Fatalf("wrong code %d", err.Code)
	}
	if err.Error() != "BadRequest: missing id" {
		t.Fatalf("wrong message %q", err.Error())
	}
}
