package arn

import "testing"

func TestTable(t *testing.T) {
	g := Generator{AwsAccountId: "123456789012", Region: "us-east-1"}

	got := g.Table("GiftCardTable")
	want := "arn:aws:dynamodb:us-east-1:123456789012:table/GiftCardTable"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if name := TableName(got); name != "GiftCardTable" {
		t.Fatalf("wrong table name %q", name)
	}
	if name := TableName("PromoCodeTable"); name != "PromoCodeTable" {
		t.Fatalf("wrong table name %q", name)
	}
}
