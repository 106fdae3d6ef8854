package handler

import (
	"context"
	"log/slog"
	"net/http"

	"promotions/apierrors"
	phttp "promotions/http"
	"promotions/store"
)

const (
	OperationSave   = "SAVE"
	OperationUpdate = "UPDATE"
	OperationDelete = "DELETE"

	MessageSuccess = "SUCCESS"
)

type ItemOutput struct {
	Operation string
	Message   string
	Item      store.Record
}

type UpdateOutput struct {
	Operation         string
	Message           string
	UpdatedAttributes store.Record
}

// Collection turns store calls on one collection into response envelopes.
type Collection struct {
	logger    *slog.Logger
	records   *store.Collection
	listField string
}

type Options struct {
	Logger  *slog.Logger
	Records *store.Collection
	// ListField names the array in the get-all response, e.g. "giftCards".
	ListField string
}

func New(options Options) *Collection {
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Collection{
		logger:    options.Logger.With("collection", options.ListField),
		records:   options.Records,
		listField: options.ListField,
	}
}

func (c *Collection) failure(op string, err error) phttp.Response {
	apiErr := apierrors.FromStoreError(err)
	c.logger.Error(op+" failed", "status", apiErr.Code, "type", apiErr.Body.Type, "err", err)
	return phttp.ErrorResponse(apiErr)
}

// GetByID responds with the record, or a null body if there is none.
func (c *Collection) GetByID(ctx context.Context, id string) phttp.Response {
	record, err := c.records.Get(ctx, id)
	if err != nil {
		return c.failure("GetByID", err)
	}
	return phttp.BuildResponse(http.StatusOK, record)
}

func (c *Collection) GetAll(ctx context.Context) phttp.Response {
	records, err := c.records.GetAll(ctx)
	if err != nil {
		return c.failure("GetAll", err)
	}
	return phttp.BuildResponse(http.StatusOK, map[string]any{
		c.listField: records,
	})
}

func (c *Collection) Create(ctx context.Context, record store.Record) phttp.Response {
	err := c.records.Create(ctx, record)
	if err != nil {
		return c.failure("Create", err)
	}
	return phttp.BuildResponse(http.StatusOK, ItemOutput{
		Operation: OperationSave,
		Message:   MessageSuccess,
		Item:      record,
	})
}

func (c *Collection) UpdateField(ctx context.Context, id, field string, value any) phttp.Response {
	updated, err := c.records.UpdateField(ctx, id, field, value)
	if err != nil {
		return c.failure("UpdateField", err)
	}
	return phttp.BuildResponse(http.StatusOK, UpdateOutput{
		Operation:         OperationUpdate,
		Message:           MessageSuccess,
		UpdatedAttributes: updated,
	})
}

// Delete responds with the deleted record. Deleting a missing id succeeds
// with a null Item.
func (c *Collection) Delete(ctx context.Context, id string) phttp.Response {
	prior, err := c.records.Delete(ctx, id)
	if err != nil {
		return c.failure("Delete", err)
	}
	return phttp.BuildResponse(http.StatusOK, ItemOutput{
		Operation: OperationDelete,
		Message:   MessageSuccess,
		Item:      prior,
	})
}
