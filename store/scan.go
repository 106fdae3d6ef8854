package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ScanAll issues Scan calls until the table reports no LastEvaluatedKey and
// returns every item it saw. Any failed page fails the whole scan and the
// items gathered so far are dropped. input is not modified.
func ScanAll(ctx context.Context, api API, input *dynamodb.ScanInput) ([]map[string]types.AttributeValue, error) {
	params := *input

	var items []map[string]types.AttributeValue
	for page := 1; ; page++ {
		output, err := api.Scan(ctx, &params)
		if err != nil {
			return nil, fmt.Errorf("scan page %d: %w", page, err)
		}
		items = append(items, output.Items...)

		if len(output.LastEvaluatedKey) == 0 {
			return items, nil
		}
		params.ExclusiveStartKey = output.LastEvaluatedKey
	}
}
