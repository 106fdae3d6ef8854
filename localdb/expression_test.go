package localdb

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestParseSetExpression(t *testing.T) {
	values := map[string]types.AttributeValue{
		":x": &types.AttributeValueMemberS{Value: "x"},
		":y": &types.AttributeValueMemberN{Value: "1"},
	}
	assignments, err := parseSetExpression(
		aws.String("set plain = :x,  #n = :y"),
		map[string]string{"#n": "has space"},
		values,
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments, got %d", len(assignments))
	}
	if assignments[0].attribute != "plain" || assignments[1].attribute != "has space" {
		t.Fatalf("wrong attributes: %+v", assignments)
	}
}

func TestParseSetExpression_Invalid(t *testing.T) {
	values := map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: "v"}}

	for _, tc := range []struct {
		expr   string
		names  map[string]string
		values map[string]types.AttributeValue
	}{
		{"", nil, values},
		{"REMOVE a", nil, nil},
		{"SET a", nil, values},
		{"SET #a = :v", nil, values},
		{"SET a = :missing", nil, values},
		{"SET a.b = :v", nil, values},
		{"SET a = b", nil, values},
		{"SET a = :v", map[string]string{"#unused": "x"}, values},
		{"SET a = :v, a = :v", nil, values},
		{"SET a = :v", nil, map[string]types.AttributeValue{
			":v":      &types.AttributeValueMemberS{Value: "v"},
			":unused": &types.AttributeValueMemberS{Value: "u"},
		}},
	} {
		_, err := parseSetExpression(aws.String(tc.expr), tc.names, tc.values)
		if errorCode(err) != "ValidationException" {
			t.Fatalf("%q: expected ValidationException, got %v", tc.expr, err)
		}
	}
}
