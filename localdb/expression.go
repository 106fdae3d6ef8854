package localdb

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type assignment struct {
	attribute string
	value     types.AttributeValue
}

// parseSetExpression understands update expressions of the form
// "SET a = :x, #b = :y". Nested document paths and the REMOVE, ADD and
// DELETE clauses are not supported.
func parseSetExpression(
	expression *string,
	names map[string]string,
	values map[string]types.AttributeValue,
) ([]assignment, error) {
	expr := strings.TrimSpace(aws.ToString(expression))
	if expr == "" {
		return nil, ValidationException("UpdateExpression must be provided")
	}

	clause, rest, found := strings.Cut(expr, " ")
	if !found || !strings.EqualFold(clause, "SET") {
		return nil, ValidationException("Invalid UpdateExpression: only SET is supported: " + expr)
	}

	usedNames := make(map[string]bool)
	usedValues := make(map[string]bool)
	seen := make(map[string]bool)

	var assignments []assignment
	for _, part := range strings.Split(rest, ",") {
		path, operand, found := strings.Cut(part, "=")
		if !found {
			return nil, ValidationException("Invalid UpdateExpression: expected path = value: " + part)
		}
		path = strings.TrimSpace(path)
		operand = strings.TrimSpace(operand)

		var attribute string
		if strings.HasPrefix(path, "#") {
			name, ok := names[path]
			if !ok {
				return nil, ValidationException(
					"Invalid UpdateExpression: An expression attribute name used in the document path is not defined; attribute name: " + path)
			}
			usedNames[path] = true
			attribute = name
		} else {
			if !isPlainAttributeName(path) {
				return nil, ValidationException("Invalid UpdateExpression: unsupported document path: " + path)
			}
			attribute = path
		}

		if !strings.HasPrefix(operand, ":") {
			return nil, ValidationException("Invalid UpdateExpression: unsupported operand: " + operand)
		}
		value, ok := values[operand]
		if !ok || value == nil {
			return nil, ValidationException(
				"Invalid UpdateExpression: An expression attribute value used in expression is not defined; attribute value: " + operand)
		}
		usedValues[operand] = true

		if seen[attribute] {
			return nil, ValidationException("Invalid UpdateExpression: Two document paths overlap: " + attribute)
		}
		seen[attribute] = true

		assignments = append(assignments, assignment{attribute: attribute, value: value})
	}

	for name := range names {
		if !usedNames[name] {
			return nil, ValidationException(fmt.Sprintf(
				"Value provided in ExpressionAttributeNames unused in expressions: keys: {%s}", name))
		}
	}
	for value := range values {
		if !usedValues[value] {
			return nil, ValidationException(fmt.Sprintf(
				"Value provided in ExpressionAttributeValues unused in expressions: keys: {%s}", value))
		}
	}

	return assignments, nil
}

func isPlainAttributeName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
