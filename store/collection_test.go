package store

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/google/go-cmp/cmp"
)

func newCollection(t *testing.T) *Collection {
	t.Helper()
	return NewCollection(newLocalDB(t, 0), giftCards, nil)
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	c := newCollection(t)

	record := Record{
		"id":       "gc-1",
		"amount":   float64(25),
		"currency": "USD",
		"note":     "",
		"redeemed": false,
		"history":  []any{"issued", map[string]any{"by": "kiosk"}},
	}
	if err := c.Create(ctx, record); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, "gc-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(record, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestCreate_Overwrites(t *testing.T) {
	ctx := context.Background()
	c := newCollection(t)

	if err := c.Create(ctx, Record{"id": "gc-1", "amount": float64(25), "note": "first"}); err != nil {
		t.Fatal(err)
	}
	second := Record{"id": "gc-1", "amount": float64(50)}
	if err := c.Create(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, "gc-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(second, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestCreate_MissingID(t *testing.T) {
	c := newCollection(t)

	err := c.Create(context.Background(), Record{"amount": float64(25)})
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) || apiErr.ErrorCode() != "ValidationException" {
		t.Fatalf("expected the store's ValidationException, got %v", err)
	}
}

func TestUpdateField(t *testing.T) {
	ctx := context.Background()
	c := newCollection(t)

	if err := c.Create(ctx, Record{"id": "pc-1", "name": "SPRING", "percent": float64(10)}); err != nil {
		t.Fatal(err)
	}

	updated, err := c.UpdateField(ctx, "pc-1", "name", "X")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Record{"name": "X"}, updated); diff != "" {
		t.Fatal(diff)
	}

	got, err := c.Get(ctx, "pc-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Record{"id": "pc-1", "name": "X", "percent": float64(10)}, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestUpdateField_NameIsNotAnExpression(t *testing.T) {
	ctx := context.Background()
	c := newCollection(t)

	if err := c.Create(ctx, Record{"id": "pc-1", "name": "SPRING", "admin": false}); err != nil {
		t.Fatal(err)
	}

	field := "admin = :value, name"
	if _, err := c.UpdateField(ctx, "pc-1", field, true); err != nil {
		t.Fatal(err)
	}

	got, err := c.Get(ctx, "pc-1")
	if err != nil {
		t.Fatal(err)
	}
	want := Record{"id": "pc-1", "name": "SPRING", "admin": false, field: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatal(diff)
	}
}

func TestUpdateField_Key(t *testing.T) {
	ctx := context.Background()
	c := newCollection(t)

	if err := c.Create(ctx, Record{"id": "pc-1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.UpdateField(ctx, "pc-1", "id", "pc-2"); err == nil {
		t.Fatal("expected updating the key to fail")
	}
}

func TestDeleteThenGet(t *testing.T) {
	ctx := context.Background()
	c := newCollection(t)

	record := Record{"id": "gc-1", "amount": float64(25)}
	if err := c.Create(ctx, record); err != nil {
		t.Fatal(err)
	}

	prior, err := c.Delete(ctx, "gc-1")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(record, prior); diff != "" {
		t.Fatal(diff)
	}

	got, err := c.Get(ctx, "gc-1")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("expected no record, got %v", got)
	}

	prior, err = c.Delete(ctx, "gc-1")
	if err != nil {
		t.Fatal(err)
	}
	if prior != nil {
		t.Fatalf("expected no prior record, got %v", prior)
	}
}

func TestGetAll(t *testing.T) {
	ctx := context.Background()
	c := NewCollection(newLocalDB(t, 1), giftCards, nil)

	all, err := c.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if all == nil || len(all) != 0 {
		t.Fatalf("expected an empty, non-nil list, got %#v", all)
	}

	want := []Record{
		{"id": "a", "amount": float64(1)},
		{"id": "b", "amount": float64(2)},
		{"id": "c", "amount": float64(3)},
	}
	for _, r := range want {
		if err := c.Create(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	all, err = c.GetAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Fatal(diff)
	}
}

func TestGetAll_Failure(t *testing.T) {
	ctx := context.Background()
	api := &flakyAPI{API: newLocalDB(t, 1), failOnScan: 2}
	c := NewCollection(api, giftCards, nil)

	for _, id := range []string{"a", "b", "c"} {
		if err := c.Create(ctx, Record{"id": id}); err != nil {
			t.Fatal(err)
		}
	}

	all, err := c.GetAll(ctx)
	if !errors.Is(err, errScanFailed) {
		t.Fatalf("expected scan failure, got %v", err)
	}
	if all != nil {
		t.Fatalf("expected partial results to be dropped, got %v", all)
	}
}

func TestMissingTable(t *testing.T) {
	ctx := context.Background()
	c := NewCollection(newLocalDB(t, 0), "NoSuchTable", nil)

	if _, err := c.Get(ctx, "x"); err == nil {
		t.Fatal("expected get to fail")
	}
	if _, err := c.GetAll(ctx); err == nil {
		t.Fatal("expected get all to fail")
	}
	if err := c.Create(ctx, Record{"id": "x"}); err == nil {
		t.Fatal("expected create to fail")
	}
	if _, err := c.UpdateField(ctx, "x", "name", "y"); err == nil {
		t.Fatal("expected update to fail")
	}
	if _, err := c.Delete(ctx, "x"); err == nil {
		t.Fatal("expected delete to fail")
	}
}
