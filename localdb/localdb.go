// Package localdb is an in-process table engine that speaks the subset of the
// DynamoDB API used by the promotions service. Its methods have the same
// signatures as *dynamodb.Client so either can back a store.
package localdb

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"promotions/arn"
	"promotions/atomicfile"
)

type Item = map[string]types.AttributeValue

type Table struct {
	Name                 string
	ARN                  string
	BillingMode          types.BillingMode
	AttributeDefinitions []types.AttributeDefinition
	KeySchema            []types.KeySchemaElement

	PrimaryKeyAttributeName string
	PrimaryKeyAttributeType types.ScalarAttributeType
	ItemByPrimaryKey        map[string]Item
}

func (t *Table) toAPI() *types.TableDescription {
	return &types.TableDescription{
		AttributeDefinitions: t.AttributeDefinitions,
		BillingModeSummary: &types.BillingModeSummary{
			BillingMode: t.BillingMode,
		},
		ItemCount:   aws.Int64(int64(len(t.ItemByPrimaryKey))),
		KeySchema:   t.KeySchema,
		TableArn:    aws.String(t.ARN),
		TableName:   aws.String(t.Name),
		TableStatus: types.TableStatusActive,
	}
}

// sortedKeys returns the primary keys in scan order.
func (t *Table) sortedKeys() []string {
	return slices.Sorted(maps.Keys(t.ItemByPrimaryKey))
}

type DB struct {
	logger       *slog.Logger
	arnGenerator arn.Generator
	persistDir   string
	pageSize     int

	mu           sync.Mutex
	tablesByName map[string]*Table
}

type Options struct {
	Logger       *slog.Logger
	ArnGenerator arn.Generator
	// PersistDir, if set, holds one snapshot file per table. Existing
	// snapshots are loaded by New.
	PersistDir string
	// PageSize caps the number of items a single Scan returns. Zero means
	// no cap beyond the request's Limit.
	PageSize int
}

func New(options Options) (*DB, error) {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	d := &DB{
		logger:       options.Logger,
		arnGenerator: options.ArnGenerator,
		persistDir:   options.PersistDir,
		pageSize:     options.PageSize,
		tablesByName: make(map[string]*Table),
	}

	if d.persistDir != "" {
		err := os.MkdirAll(d.persistDir, 0700)
		if err != nil {
			return nil, err
		}
		err = atomicfile.RemoveStale(d.persistDir)
		if err != nil {
			return nil, err
		}
		tables, err := loadTables(d.persistDir)
		if err != nil {
			return nil, err
		}
		for _, t := range tables {
			t.ARN = d.arnGenerator.Table(t.Name)
			d.tablesByName[t.Name] = t
			d.logger.Info("Loaded table", "table", t.Name, "items", len(t.ItemByPrimaryKey))
		}
	}

	return d, nil
}

func (d *DB) lockedGetTable(nameOrArn *string) (*Table, error) {
	name := arn.TableName(aws.ToString(nameOrArn))
	t, ok := d.tablesByName[name]
	if !ok {
		return nil, ResourceNotFoundException("Requested resource not found: Table: " + name + " not found")
	}
	return t, nil
}

// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_CreateTable.html
func (d *DB) CreateTable(
	ctx context.Context,
	input *dynamodb.CreateTableInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.CreateTableOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	name := aws.ToString(input.TableName)
	if name == "" {
		return nil, ValidationException("TableName must be provided")
	}
	if _, ok := d.tablesByName[name]; ok {
		return nil, ResourceInUseException("Table already exists: " + name)
	}

	primaryKeyAttributeName := ""
	for _, keySchemaElement := range input.KeySchema {
		switch keySchemaElement.KeyType {
		case types.KeyTypeHash:
			primaryKeyAttributeName = aws.ToString(keySchemaElement.AttributeName)
		case types.KeyTypeRange:
			return nil, ValidationException("Composite keys are not supported")
		}
	}
	if primaryKeyAttributeName == "" {
		return nil, ValidationException("KeySchema must have a HASH key")
	}

	var primaryKeyAttributeType types.ScalarAttributeType
	for _, def := range input.AttributeDefinitions {
		if aws.ToString(def.AttributeName) == primaryKeyAttributeName {
			primaryKeyAttributeType = def.AttributeType
		}
	}
	if primaryKeyAttributeType == "" {
		return nil, ValidationException(fmt.Sprintf(
			"No AttributeDefinition for key attribute %s", primaryKeyAttributeName))
	}

	billingMode := input.BillingMode
	if billingMode == "" {
		billingMode = types.BillingModeProvisioned
	}

	t := &Table{
		Name:                    name,
		ARN:                     d.arnGenerator.Table(name),
		BillingMode:             billingMode,
		AttributeDefinitions:    input.AttributeDefinitions,
		KeySchema:               input.KeySchema,
		PrimaryKeyAttributeName: primaryKeyAttributeName,
		PrimaryKeyAttributeType: primaryKeyAttributeType,
		ItemByPrimaryKey:        make(map[string]Item),
	}
	d.tablesByName[name] = t

	err := d.lockedPersist(t)
	if err != nil {
		delete(d.tablesByName, name)
		return nil, err
	}

	d.logger.Info("Created table", "table", name, "key", primaryKeyAttributeName)

	return &dynamodb.CreateTableOutput{
		TableDescription: t.toAPI(),
	}, nil
}

// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_DescribeTable.html
func (d *DB) DescribeTable(
	ctx context.Context,
	input *dynamodb.DescribeTableInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.DescribeTableOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lockedGetTable(input.TableName)
	if err != nil {
		return nil, err
	}

	return &dynamodb.DescribeTableOutput{
		Table: t.toAPI(),
	}, nil
}
