// Package cart holds the session-keyed shopping cart domain. Carts are
// ephemeral: keyed by a client-generated session id rather than an account,
// and cleared when an order is placed.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity is returned for non-positive quantities on add.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	// ErrItemNotFound is returned when a cart item does not exist for the
	// session.
	ErrItemNotFound = errors.New("cart item not found")
)

// Item is one stored cart row.
type Item struct {
	ID        int64
	SessionID string
	ProductID int64
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Line is a cart row joined with its product for display: current final
// price and stock, not a purchase-time snapshot.
type Line struct {
	Item
	ProductName   string
	SKU           string
	ImageURL      string
	Colour        string
	UnitPrice     decimal.Decimal
	StockQuantity int
}

// Repository defines persistence operations for session carts.
type Repository interface {
	// Add upserts a cart row; adding an existing product increments its
	// quantity.
	Add(ctx context.Context, sessionID string, productID int64, quantity int) (*Item, error)
	// SetQuantity overwrites an item's quantity; zero removes the item.
	SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int) error
	Remove(ctx context.Context, sessionID string, productID int64) error
	List(ctx context.Context, sessionID string) ([]Line, error)
	Clear(ctx context.Context, sessionID string) error
}
