package localdb

import (
	"context"
	"fmt"
	"maps"
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func attributeType(v types.AttributeValue) types.ScalarAttributeType {
	switch v.(type) {
	case *types.AttributeValueMemberS:
		return types.ScalarAttributeTypeS
	case *types.AttributeValueMemberN:
		return types.ScalarAttributeTypeN
	case *types.AttributeValueMemberB:
		return types.ScalarAttributeTypeB
	default:
		return ""
	}
}

// primaryKeyFromItem returns the map key an item is stored under.
func (t *Table) primaryKeyFromItem(item Item) (string, error) {
	attr, ok := item[t.PrimaryKeyAttributeName]
	if !ok || attr == nil {
		return "", ValidationException(fmt.Sprintf(
			"One or more parameter values were invalid: Missing the key %s in the item", t.PrimaryKeyAttributeName))
	}
	if actual := attributeType(attr); actual != t.PrimaryKeyAttributeType {
		return "", ValidationException(fmt.Sprintf(
			"One or more parameter values were invalid: Type mismatch for key %s expected: %s actual: %s",
			t.PrimaryKeyAttributeName, t.PrimaryKeyAttributeType, actual))
	}

	var key string
	switch v := attr.(type) {
	case *types.AttributeValueMemberS:
		key = v.Value
	case *types.AttributeValueMemberN:
		key = v.Value
	case *types.AttributeValueMemberB:
		key = string(v.Value)
	}
	if key == "" {
		return "", ValidationException(
			"One or more parameter values are not valid. The AttributeValue for a key attribute cannot contain an empty value")
	}
	return key, nil
}

// primaryKeyFromKey is like primaryKeyFromItem, but also rejects keys that
// carry attributes other than the key attribute.
func (t *Table) primaryKeyFromKey(key Item) (string, error) {
	if len(key) != 1 {
		return "", ValidationException("The provided key element does not match the schema")
	}
	return t.primaryKeyFromItem(key)
}

// restoreItem undoes a write whose snapshot could not be persisted.
func (t *Table) restoreItem(key string, item Item, existed bool) {
	if existed {
		t.ItemByPrimaryKey[key] = item
	} else {
		delete(t.ItemByPrimaryKey, key)
	}
}

// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_PutItem.html
func (d *DB) PutItem(
	ctx context.Context,
	input *dynamodb.PutItemInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.PutItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lockedGetTable(input.TableName)
	if err != nil {
		return nil, err
	}

	key, err := t.primaryKeyFromItem(input.Item)
	if err != nil {
		return nil, err
	}

	output := &dynamodb.PutItemOutput{}
	switch input.ReturnValues {
	case types.ReturnValueNone, "":
	case types.ReturnValueAllOld:
		output.Attributes = maps.Clone(t.ItemByPrimaryKey[key])
	default:
		return nil, ValidationException("ReturnValues can only be ALL_OLD or NONE")
	}

	oldItem, existed := t.ItemByPrimaryKey[key]
	t.ItemByPrimaryKey[key] = maps.Clone(input.Item)

	err = d.lockedPersist(t)
	if err != nil {
		t.restoreItem(key, oldItem, existed)
		return nil, err
	}
	return output, nil
}

// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_GetItem.html
func (d *DB) GetItem(
	ctx context.Context,
	input *dynamodb.GetItemInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.GetItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lockedGetTable(input.TableName)
	if err != nil {
		return nil, err
	}

	key, err := t.primaryKeyFromKey(input.Key)
	if err != nil {
		return nil, err
	}

	// A missing item is not an error; Item is left nil.
	return &dynamodb.GetItemOutput{Item: maps.Clone(t.ItemByPrimaryKey[key])}, nil
}

// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_DeleteItem.html
func (d *DB) DeleteItem(
	ctx context.Context,
	input *dynamodb.DeleteItemInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.DeleteItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lockedGetTable(input.TableName)
	if err != nil {
		return nil, err
	}

	key, err := t.primaryKeyFromKey(input.Key)
	if err != nil {
		return nil, err
	}

	output := &dynamodb.DeleteItemOutput{}
	switch input.ReturnValues {
	case types.ReturnValueNone, "":
	case types.ReturnValueAllOld:
		output.Attributes = t.ItemByPrimaryKey[key]
	default:
		return nil, ValidationException("ReturnValues can only be ALL_OLD or NONE")
	}

	oldItem, ok := t.ItemByPrimaryKey[key]
	if !ok {
		return output, nil
	}
	delete(t.ItemByPrimaryKey, key)

	err = d.lockedPersist(t)
	if err != nil {
		t.restoreItem(key, oldItem, true)
		return nil, err
	}
	return output, nil
}

// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_UpdateItem.html
func (d *DB) UpdateItem(
	ctx context.Context,
	input *dynamodb.UpdateItemInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.UpdateItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lockedGetTable(input.TableName)
	if err != nil {
		return nil, err
	}

	key, err := t.primaryKeyFromKey(input.Key)
	if err != nil {
		return nil, err
	}

	assignments, err := parseSetExpression(input.UpdateExpression, input.ExpressionAttributeNames, input.ExpressionAttributeValues)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		if a.attribute == t.PrimaryKeyAttributeName {
			return nil, ValidationException(fmt.Sprintf(
				"One or more parameter values were invalid: Cannot update attribute %s. This attribute is part of the key", a.attribute))
		}
	}

	oldItem, existed := t.ItemByPrimaryKey[key]

	// UpdateItem on a missing key creates the item.
	newItem := maps.Clone(oldItem)
	if !existed {
		newItem = maps.Clone(input.Key)
	}
	for _, a := range assignments {
		newItem[a.attribute] = a.value
	}

	output := &dynamodb.UpdateItemOutput{}
	switch input.ReturnValues {
	case types.ReturnValueNone, "":
	case types.ReturnValueAllOld:
		output.Attributes = oldItem
	case types.ReturnValueAllNew:
		output.Attributes = maps.Clone(newItem)
	case types.ReturnValueUpdatedOld:
		output.Attributes = updatedAttributes(oldItem, assignments)
	case types.ReturnValueUpdatedNew:
		output.Attributes = updatedAttributes(newItem, assignments)
	default:
		return nil, ValidationException("Invalid ReturnValues: " + string(input.ReturnValues))
	}

	t.ItemByPrimaryKey[key] = newItem

	err = d.lockedPersist(t)
	if err != nil {
		t.restoreItem(key, oldItem, existed)
		return nil, err
	}
	return output, nil
}

func updatedAttributes(item Item, assignments []assignment) Item {
	var out Item
	for _, a := range assignments {
		v, ok := item[a.attribute]
		if !ok {
			continue
		}
		if out == nil {
			out = make(Item)
		}
		out[a.attribute] = v
	}
	return out
}

// https://docs.aws.amazon.com/amazondynamodb/latest/APIReference/API_Scan.html
func (d *DB) Scan(
	ctx context.Context,
	input *dynamodb.ScanInput,
	_ ...func(*dynamodb.Options),
) (*dynamodb.ScanOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, err := d.lockedGetTable(input.TableName)
	if err != nil {
		return nil, err
	}

	if input.FilterExpression != nil || input.ScanFilter != nil {
		return nil, ValidationException("Filtered scans are not supported")
	}

	limit := d.pageSize
	if input.Limit != nil {
		if *input.Limit <= 0 {
			return nil, ValidationException("Limit must be greater than or equal to 1")
		}
		if limit == 0 || int(*input.Limit) < limit {
			limit = int(*input.Limit)
		}
	}

	keys := t.sortedKeys()

	start := 0
	if len(input.ExclusiveStartKey) > 0 {
		startKey, err := t.primaryKeyFromKey(input.ExclusiveStartKey)
		if err != nil {
			return nil, err
		}
		start = sort.SearchStrings(keys, startKey)
		if start < len(keys) && keys[start] == startKey {
			start++
		}
	}

	end := len(keys)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	output := &dynamodb.ScanOutput{
		Items: make([]Item, 0, end-start),
	}
	for _, key := range keys[start:end] {
		output.Items = append(output.Items, maps.Clone(t.ItemByPrimaryKey[key]))
	}
	output.Count = int32(len(output.Items))
	output.ScannedCount = output.Count

	if end < len(keys) {
		last := t.ItemByPrimaryKey[keys[end-1]]
		output.LastEvaluatedKey = Item{
			t.PrimaryKeyAttributeName: last[t.PrimaryKeyAttributeName],
		}
	}

	return output, nil
}
