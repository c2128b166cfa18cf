// Package inventory maintains per-product stock levels and an append-only
// movement ledger auditing every change.
package inventory

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ChangeType enumerates the supported stock adjustment operations.
type ChangeType string

const (
	// ChangeSet overwrites the quantity.
	ChangeSet ChangeType = "set"
	// ChangeAdd increases the quantity.
	ChangeAdd ChangeType = "add"
	// ChangeSubtract decreases the quantity, floored at zero.
	ChangeSubtract ChangeType = "subtract"
)

// StockStatus classifies a product's stock level against its reorder point.
type StockStatus string

const (
	StatusInStock    StockStatus = "in_stock"
	StatusLowStock   StockStatus = "low_stock"
	StatusOutOfStock StockStatus = "out_of_stock"
)

// StatusFor classifies a quantity against a reorder point: zero is out of
// stock, at or below the reorder point is low stock.
func StatusFor(quantity, reorderPoint int) StockStatus {
	switch {
	case quantity <= 0:
		return StatusOutOfStock
	case quantity <= reorderPoint:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

var (
	// ErrProductNotFound is returned per-item when an adjusted product id
	// does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidChangeType is returned for unknown adjustment types.
	ErrInvalidChangeType = errors.New("change type must be set, add, or subtract")
	// ErrNegativeQuantity is returned for negative adjustment quantities.
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	// ErrEmptyBatch is returned when no product ids are supplied.
	ErrEmptyBatch = errors.New("at least one product id required")
	// ErrBatchTooLarge is returned when a batch exceeds MaxBatchSize ids.
	ErrBatchTooLarge = errors.New("too many product ids in one batch")
)

// MaxBatchSize caps the number of products in a single adjustment call.
const MaxBatchSize = 100

// Movement is one immutable ledger row.
type Movement struct {
	ID               int64
	ProductID        int64
	ProductName      string
	SKU              string
	PreviousQuantity int
	NewQuantity      int
	ChangeAmount     int
	ChangeType       ChangeType
	Reason           string
	Actor            string
	CreatedAt        time.Time
}

// HistoryFilter narrows ledger queries.
type HistoryFilter struct {
	ProductID *int64
	Limit     int
	Offset    int
}

// Stats summarizes the stock position across the catalog.
type Stats struct {
	TotalProducts   int
	InStock         int
	LowStock        int
	OutOfStock      int
	TotalUnits      int
	ValuationAtCost decimal.Decimal
	ValuationRetail decimal.Decimal
}

// Alert is a product at or below its reorder point.
type Alert struct {
	ProductID    int64
	SKU          string
	Name         string
	Quantity     int
	ReorderPoint int
	Status       StockStatus
}

// Repository defines persistence operations for stock levels and the ledger.
type Repository interface {
	// ApplyAdjustment atomically adjusts one product's quantity and appends
	// the ledger row in the same transaction. Returns ErrProductNotFound
	// for unknown ids.
	ApplyAdjustment(ctx context.Context, productID int64, t ChangeType, quantity int, reason, actor string) (*Movement, error)
	SetReorderPoints(ctx context.Context, productIDs []int64, point int) (updated int64, err error)
	History(ctx context.Context, f HistoryFilter) ([]Movement, error)
	Stats(ctx context.Context) (*Stats, error)
	Alerts(ctx context.Context) ([]Alert, error)
}
