package store

import (
	"context"
	"fmt"
	"log/slog"

	"promotions/arn"
	"promotions/localdb"
)

const (
	BackendDynamoDB = "dynamodb"
	BackendLocal    = "local"
)

type BackendOptions struct {
	Logger *slog.Logger
	Client ClientOptions

	// Tables are created up front by the local backend.
	Tables []string
	// PersistDir and PageSize only apply to the local backend.
	PersistDir string
	PageSize   int
}

// NewBackend builds the table client for the named backend:
//
//	"dynamodb" - Amazon DynamoDB (or a compatible endpoint)
//	"local"    - in-process tables, optionally persisted to disk
func NewBackend(ctx context.Context, kind string, options BackendOptions) (Backend, error) {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}

	switch kind {
	case BackendDynamoDB, "":
		return NewClient(ctx, options.Client)
	case BackendLocal:
		db, err := localdb.New(localdb.Options{
			Logger: options.Logger,
			ArnGenerator: arn.Generator{
				AwsAccountId: "000000000000",
				Region:       options.Client.Region,
			},
			PersistDir: options.PersistDir,
			PageSize:   options.PageSize,
		})
		if err != nil {
			return nil, fmt.Errorf("opening local tables: %w", err)
		}
		for _, name := range options.Tables {
			_, err := CreateTable(ctx, db, name)
			if err != nil {
				return nil, err
			}
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: %s, %s)", kind, BackendDynamoDB, BackendLocal)
	}
}
