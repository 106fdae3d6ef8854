package store

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"promotions/arn"
	"promotions/localdb"
)

const giftCards = "GiftCardTable"

func newLocalDB(t *testing.T, pageSize int) *localdb.DB {
	t.Helper()

	db, err := localdb.New(localdb.Options{
		ArnGenerator: arn.Generator{AwsAccountId: "000000000000", Region: "us-east-1"},
		PageSize:     pageSize,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CreateTable(context.Background(), db, giftCards); err != nil {
		t.Fatal(err)
	}
	return db
}

// flakyAPI fails the Scan call with the given (1-based) number.
type flakyAPI struct {
	API
	failOnScan int
	scans      int
}

var errScanFailed = errors.New("scan failed")

func (f *flakyAPI) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans++
	if f.scans == f.failOnScan {
		return nil, errScanFailed
	}
	return f.API.Scan(ctx, params, optFns...)
}
