package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// KeyAttribute is the partition key of every collection table.
const KeyAttribute = "id"

// Record is a schema-less item. Only KeyAttribute has a meaning to the store.
type Record = map[string]any

type Collection struct {
	table  string
	api    API
	logger *slog.Logger
}

func NewCollection(api API, table string, logger *slog.Logger) *Collection {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{
		table:  table,
		api:    api,
		logger: logger.With("table", table),
	}
}

func (c *Collection) Table() string {
	return c.table
}

func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		KeyAttribute: &types.AttributeValueMemberS{Value: id},
	}
}

func toRecord(item map[string]types.AttributeValue) (Record, error) {
	if item == nil {
		return nil, nil
	}
	var record Record
	err := attributevalue.UnmarshalMap(item, &record)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Get returns the record stored under id, or nil if there is none.
func (c *Collection) Get(ctx context.Context, id string) (Record, error) {
	output, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.table),
		Key:       keyOf(id),
	})
	if err != nil {
		c.logger.Error("Getting record", "id", id, "err", err)
		return nil, fmt.Errorf("get %s: %w", id, err)
	}

	record, err := toRecord(output.Item)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return record, nil
}

// GetAll returns every record in the collection.
func (c *Collection) GetAll(ctx context.Context) ([]Record, error) {
	items, err := ScanAll(ctx, c.api, &dynamodb.ScanInput{
		TableName: aws.String(c.table),
	})
	if err != nil {
		c.logger.Error("Scanning records", "err", err)
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		record, err := toRecord(item)
		if err != nil {
			return nil, fmt.Errorf("decode scanned item: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Create writes record as-is, replacing any record with the same id.
func (c *Collection) Create(ctx context.Context, record Record) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	if err != nil {
		c.logger.Error("Saving record", "id", record[KeyAttribute], "err", err)
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

// UpdateField sets a single field and returns the attributes that changed.
// field is passed as an expression attribute name and is never spliced into
// the update expression.
func (c *Collection) UpdateField(ctx context.Context, id, field string, value any) (Record, error) {
	av, err := attributevalue.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode value of %s: %w", field, err)
	}

	output, err := c.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(c.table),
		Key:                       keyOf(id),
		UpdateExpression:          aws.String("SET #field = :value"),
		ExpressionAttributeNames:  map[string]string{"#field": field},
		ExpressionAttributeValues: map[string]types.AttributeValue{":value": av},
		ReturnValues:              types.ReturnValueUpdatedNew,
	})
	if err != nil {
		c.logger.Error("Updating record", "id", id, "field", field, "err", err)
		return nil, fmt.Errorf("update %s: %w", id, err)
	}

	record, err := toRecord(output.Attributes)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return record, nil
}

// Delete removes the record stored under id and returns what was there, or
// nil if there was nothing.
func (c *Collection) Delete(ctx context.Context, id string) (Record, error) {
	output, err := c.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(c.table),
		Key:          keyOf(id),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		c.logger.Error("Deleting record", "id", id, "err", err)
		return nil, fmt.Errorf("delete %s: %w", id, err)
	}

	record, err := toRecord(output.Attributes)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return record, nil
}
