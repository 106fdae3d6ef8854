package arn

import (
	"fmt"
	"strings"
)

type Generator struct {
	AwsAccountId string
	Region       string
}

func (g Generator) Generate(service string, resourceType string, resourceId string) string {
	return fmt.Sprintf("arn:aws:%s:%s:%s:%s/%s", service, g.Region, g.AwsAccountId, resourceType, resourceId)
}

// Table returns the ARN of a DynamoDB table.
func (g Generator) Table(name string) string {
	return g.Generate("dynamodb", "table", name)
}

// TableName extracts the table name from a table ARN, or returns the input
// unchanged if it is already a plain name.
func TableName(nameOrArn string) string {
	if !strings.HasPrefix(nameOrArn, "arn:") {
		return nameOrArn
	}
	parts := strings.Split(nameOrArn, ":")
	_, name, found := strings.Cut(parts[len(parts)-1], "/")
	if !found {
		return nameOrArn
	}
	return name
}
