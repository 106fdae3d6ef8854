package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"promotions/apierrors"
	phttp "promotions/http"
	"promotions/store"
)

const (
	GiftCardsPath    = "/promotions/gift_cards"
	GiftCardPath     = "/promotions/gift_card"
	GiftCardByIDPath = "/promotions/gift_card/{id}"

	PromoCodesPath    = "/promotions/promo_codes"
	PromoCodePath     = "/promotions/promo_code"
	PromoCodeByIDPath = "/promotions/promo_code/{id}"
)

// Operations are the calls a collection supports. *handler.Collection
// implements it.
type Operations interface {
	GetByID(ctx context.Context, id string) phttp.Response
	GetAll(ctx context.Context) phttp.Response
	Create(ctx context.Context, record store.Record) phttp.Response
	UpdateField(ctx context.Context, id, field string, value any) phttp.Response
	Delete(ctx context.Context, id string) phttp.Response
}

type route struct {
	method   string
	resource string
}

type operation func(ctx context.Context, event *Event) phttp.Response

type Router struct {
	logger   *slog.Logger
	bindings map[route]operation
}

type Options struct {
	Logger     *slog.Logger
	GiftCards  Operations
	PromoCodes Operations
}

func New(options Options) (*Router, error) {
	if options.GiftCards == nil {
		return nil, errors.New("router: gift card operations are required")
	}
	if options.PromoCodes == nil {
		return nil, errors.New("router: promo code operations are required")
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	r := &Router{
		logger:   options.Logger,
		bindings: make(map[route]operation),
	}
	r.bind(GiftCardsPath, GiftCardPath, GiftCardByIDPath, options.GiftCards)
	r.bind(PromoCodesPath, PromoCodePath, PromoCodeByIDPath, options.PromoCodes)
	return r, nil
}

func (r *Router) bind(listPath, itemPath, byIDPath string, ops Operations) {
	r.bindings[route{http.MethodGet, byIDPath}] = func(ctx context.Context, event *Event) phttp.Response {
		id := event.PathParameters["id"]
		if id == "" {
			return phttp.ErrorResponse(apierrors.BadRequest("missing path parameter id"))
		}
		return ops.GetByID(ctx, id)
	}
	r.bindings[route{http.MethodGet, listPath}] = func(ctx context.Context, event *Event) phttp.Response {
		return ops.GetAll(ctx)
	}
	r.bindings[route{http.MethodPost, itemPath}] = func(ctx context.Context, event *Event) phttp.Response {
		body, apiErr := decodeBody(event)
		if apiErr != nil {
			return phttp.ErrorResponse(apiErr)
		}
		return ops.Create(ctx, body)
	}
	r.bindings[route{http.MethodPatch, itemPath}] = func(ctx context.Context, event *Event) phttp.Response {
		update, apiErr := decodeUpdate(event)
		if apiErr != nil {
			return phttp.ErrorResponse(apiErr)
		}
		return ops.UpdateField(ctx, update.id, update.key, update.value)
	}
	r.bindings[route{http.MethodDelete, itemPath}] = func(ctx context.Context, event *Event) phttp.Response {
		id := event.QueryStringParameters["id"]
		if id == "" {
			return phttp.ErrorResponse(apierrors.BadRequest("missing query parameter id"))
		}
		return ops.Delete(ctx, id)
	}
}

// Dispatch runs the operation bound to the event's method and resource path.
// Unbound pairs get a 404 whose body is the resource path.
func (r *Router) Dispatch(ctx context.Context, event Event) phttp.Response {
	r.logger.Info("Request", "method", event.HTTPMethod, "event", event)

	resource := event.ResourcePath()
	op, ok := r.bindings[route{event.HTTPMethod, resource}]
	if !ok {
		if resource == "" {
			resource = event.Path
		}
		r.logger.Warn("No route", "method", event.HTTPMethod, "resource", resource)
		return phttp.BuildResponse(http.StatusNotFound, resource)
	}
	return op(ctx, &event)
}

func decodeBody(event *Event) (store.Record, *apierrors.Error) {
	data, err := event.bodyBytes()
	if err != nil {
		return nil, apierrors.BadRequest(fmt.Sprintf("decoding base64 body: %v", err))
	}

	var body store.Record
	err = phttp.Unmarshal(data, event.Header("Content-Type"), &body)
	if err != nil {
		return nil, apierrors.BadRequest(err.Error())
	}
	if body == nil {
		return nil, apierrors.BadRequest("request body must be an object")
	}
	return body, nil
}

type fieldUpdate struct {
	id    string
	key   string
	value any
}

func decodeUpdate(event *Event) (fieldUpdate, *apierrors.Error) {
	body, apiErr := decodeBody(event)
	if apiErr != nil {
		return fieldUpdate{}, apiErr
	}

	id, _ := body["id"].(string)
	if id == "" {
		return fieldUpdate{}, apierrors.BadRequest("id must be a non-empty string")
	}
	key, _ := body["updateKey"].(string)
	if key == "" {
		return fieldUpdate{}, apierrors.BadRequest("updateKey must be a non-empty string")
	}
	value, ok := body["updateValue"]
	if !ok {
		return fieldUpdate{}, apierrors.BadRequest("missing updateValue")
	}
	return fieldUpdate{id: id, key: key, value: value}, nil
}
