package localdb

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

func ValidationException(message string) error {
	return &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: message,
		Fault:   smithy.FaultClient,
	}
}

func ResourceNotFoundException(message string) error {
	return &types.ResourceNotFoundException{Message: aws.String(message)}
}

func ResourceInUseException(message string) error {
	return &types.ResourceInUseException{Message: aws.String(message)}
}

func InternalServerError(message string) error {
	return &types.InternalServerError{Message: aws.String(message)}
}
