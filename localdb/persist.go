package localdb

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/fxamacker/cbor/v2"

	"promotions/atomicfile"
)

const snapshotExt = ".cbor"

func tablePath(dir, name string) string {
	return filepath.Join(dir, name+snapshotExt)
}

// lockedPersist rewrites the snapshot of t.
func (d *DB) lockedPersist(t *Table) error {
	if d.persistDir == "" {
		return nil
	}

	stored := storedTable{
		Name:                    t.Name,
		BillingMode:             string(t.BillingMode),
		PrimaryKeyAttributeName: t.PrimaryKeyAttributeName,
		PrimaryKeyAttributeType: string(t.PrimaryKeyAttributeType),
		Items:                   make([]storedItem, 0, len(t.ItemByPrimaryKey)),
	}
	for _, key := range t.sortedKeys() {
		item, err := toStoredItem(t.ItemByPrimaryKey[key])
		if err != nil {
			return InternalServerError(err.Error())
		}
		stored.Items = append(stored.Items, item)
	}

	data, err := cbor.Marshal(stored)
	if err != nil {
		return InternalServerError(err.Error())
	}
	err = atomicfile.Write(tablePath(d.persistDir, t.Name), data, 0600)
	if err != nil {
		d.logger.Error("Persisting table", "table", t.Name, "err", err)
		return InternalServerError("persisting table " + t.Name + ": " + err.Error())
	}
	return nil
}

func loadTables(dir string) ([]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tables []*Table
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), snapshotExt) {
			continue
		}
		t, err := loadTable(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func loadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stored storedTable
	err = cbor.Unmarshal(data, &stored)
	if err != nil {
		return nil, err
	}

	keyType := types.ScalarAttributeType(stored.PrimaryKeyAttributeType)
	t := &Table{
		Name:        stored.Name,
		BillingMode: types.BillingMode(stored.BillingMode),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(stored.PrimaryKeyAttributeName), AttributeType: keyType},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(stored.PrimaryKeyAttributeName), KeyType: types.KeyTypeHash},
		},
		PrimaryKeyAttributeName: stored.PrimaryKeyAttributeName,
		PrimaryKeyAttributeType: keyType,
		ItemByPrimaryKey:        make(map[string]Item, len(stored.Items)),
	}

	for _, s := range stored.Items {
		item, err := fromStoredItem(s)
		if err != nil {
			return nil, err
		}
		key, err := t.primaryKeyFromItem(item)
		if err != nil {
			return nil, err
		}
		t.ItemByPrimaryKey[key] = item
	}
	return t, nil
}
