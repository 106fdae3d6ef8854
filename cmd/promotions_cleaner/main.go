package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"promotions/config"
	"promotions/store"
)

// clean deletes every record in tables and returns how many were deleted.
// A failed delete is reported to out and skipped.
func clean(ctx context.Context, api store.API, out io.Writer, tables []string) (int, error) {
	deleted := 0
	for _, table := range tables {
		items, err := store.ScanAll(ctx, api, &dynamodb.ScanInput{
			TableName:                aws.String(table),
			ProjectionExpression:     aws.String("#key"),
			ExpressionAttributeNames: map[string]string{"#key": store.KeyAttribute},
		})
		if err != nil {
			return deleted, fmt.Errorf("%s: %w", table, err)
		}

		for _, item := range items {
			key := map[string]types.AttributeValue{
				store.KeyAttribute: item[store.KeyAttribute],
			}
			id := ""
			if s, ok := key[store.KeyAttribute].(*types.AttributeValueMemberS); ok {
				id = s.Value
			}
			fmt.Fprintln(out, "Deleting", table, id)

			_, err = api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(table),
				Key:       key,
			})
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			deleted++
		}
	}
	return deleted, nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		panic(err)
	}
	client, err := store.NewClient(ctx, store.ClientOptions{
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	})
	if err != nil {
		panic(err)
	}

	deleted, err := clean(ctx, client, os.Stdout, []string{cfg.GiftCardTable, cfg.PromoCodeTable})
	if err != nil {
		panic(err)
	}
	fmt.Println("Deleted", deleted, "records")
}
