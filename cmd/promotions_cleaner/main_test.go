package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"promotions/localdb"
	"promotions/store"
)

func TestClean(t *testing.T) {
	ctx := context.Background()
	db, err := localdb.New(localdb.Options{PageSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	tables := []string{"GiftCardTable", "PromoCodeTable"}
	for i, table := range tables {
		if _, err := store.CreateTable(ctx, db, table); err != nil {
			t.Fatal(err)
		}
		c := store.NewCollection(db, table, nil)
		for j := range 3 + i {
			if err := c.Create(ctx, store.Record{"id": fmt.Sprintf("r-%d", j), "n": float64(j)}); err != nil {
				t.Fatal(err)
			}
		}
	}

	var out bytes.Buffer
	deleted, err := clean(ctx, db, &out, tables)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 7 {
		t.Fatalf("expected 7 deletions, got %d\n%s", deleted, out.String())
	}

	for _, table := range tables {
		all, err := store.NewCollection(db, table, nil).GetAll(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 0 {
			t.Fatalf("%s still has %d records", table, len(all))
		}
	}
}

func TestClean_MissingTable(t *testing.T) {
	db, err := localdb.New(localdb.Options{})
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if _, err := clean(context.Background(), db, &out, []string{"Missing"}); err == nil {
		t.Fatal("expected scanning a missing table to fail")
	}
}
