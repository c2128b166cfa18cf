package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/astgolf/proshop/internal/domain/cart"
	"github.com/astgolf/proshop/internal/domain/catalog"
	"github.com/astgolf/proshop/internal/domain/customer"
	"github.com/astgolf/proshop/internal/domain/inventory"
	"github.com/astgolf/proshop/internal/domain/order"
	"github.com/astgolf/proshop/internal/domain/pricing"
)

// envelope is the uniform response shape: {"success": true, ...data} on
// 2xx, {"success": false, "error": m} otherwise.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func respondErrorMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: msg})
}

// respondError maps domain errors onto the status taxonomy. Anything
// unrecognized is a 500: the cause is logged but not sent to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, order.ErrNotFound),
		errors.Is(err, pricing.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, inventory.ErrProductNotFound):
		respondErrorMessage(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrMissingCustomer),
		errors.Is(err, order.ErrCourierRequired),
		errors.Is(err, customer.ErrMissingEmail),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrInvalidChangeType),
		errors.Is(err, inventory.ErrNegativeQuantity),
		errors.Is(err, inventory.ErrEmptyBatch),
		errors.Is(err, inventory.ErrBatchTooLarge),
		errors.Is(err, pricing.ErrInvalidScope),
		errors.Is(err, pricing.ErrInvalidMargin):
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var iq *order.InvalidQuantityError
	if errors.As(err, &iq) {
		respondErrorMessage(w, http.StatusBadRequest, iq.Error())
		return
	}
	var it *order.InvalidTransitionError
	if errors.As(err, &it) {
		respondErrorMessage(w, http.StatusConflict, it.Error())
		return
	}

	zctx.From(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	respondErrorMessage(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON strictly decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, "invalid request body")
	}
	return nil
}
