// Package order implements the order pipeline: checkout from a validated
// cart, monthly order number generation, and the delivery-status state
// machine progressed by the back office.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// OrderNumberPrefix is the constant prefix of every generated order number.
const OrderNumberPrefix = "AST"

// Sentinel errors for checkout validation.
var (
	ErrEmptyCart       = errors.New("cart must not be empty")
	ErrMissingCustomer = errors.New("customer name and email are required")
	ErrNotFound        = errors.New("order not found")
)

// InvalidQuantityError indicates a cart line with a non-positive quantity.
type InvalidQuantityError struct {
	ProductName string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for %q", e.ProductName)
}

// DeliveryStatus is an order's position in the fulfillment pipeline.
type DeliveryStatus string

const (
	StatusNew            DeliveryStatus = "new"
	StatusConfirmed      DeliveryStatus = "confirmed"
	StatusDeliveryBooked DeliveryStatus = "delivery_booked"
	StatusInTransit      DeliveryStatus = "in_transit"
	StatusDelivered      DeliveryStatus = "delivered"
)

// InvalidTransitionError indicates a progression from a terminal or unknown
// status.
type InvalidTransitionError struct {
	From DeliveryStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot progress order from status %q", e.From)
}

// ErrCourierRequired is returned when booking delivery without courier
// details.
var ErrCourierRequired = errors.New("courier and tracking number are required to book delivery")

// Next returns the single valid successor status. The pipeline is strictly
// linear: no skipping, no regression, and delivered is terminal.
func (s DeliveryStatus) Next() (DeliveryStatus, error) {
	switch s {
	case StatusNew:
		return StatusConfirmed, nil
	case StatusConfirmed:
		return StatusDeliveryBooked, nil
	case StatusDeliveryBooked:
		return StatusInTransit, nil
	case StatusInTransit:
		return StatusDelivered, nil
	default:
		return "", &InvalidTransitionError{From: s}
	}
}

// FormatOrderNumber renders an order number as AST-YYYYMM-NNNN. The suffix
// is zero-padded to four digits and widens naturally past 9999 rather than
// wrapping.
func FormatOrderNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", OrderNumberPrefix, t.Format("200601"), seq)
}

// MonthKey returns the counter key for the calendar month of t, e.g. "202608".
func MonthKey(t time.Time) string {
	return t.Format("200601")
}

// Order is a persisted order header. Monetary totals are immutable after
// creation; only delivery status and shipping metadata change afterwards.
type Order struct {
	ID               int64
	OrderNumber      string
	CustomerID       int64
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	ShippingLine1    string
	ShippingLine2    string
	ShippingCity     string
	ShippingPostcode string
	PaymentMethod    string
	PaymentStatus    string
	Subtotal         decimal.Decimal
	Tax              decimal.Decimal
	Shipping         decimal.Decimal
	Total            decimal.Decimal
	ItemCount        int
	DeliveryStatus   DeliveryStatus
	Courier          string
	TrackingNumber   string
	ConfirmedAt      *time.Time
	DeliveryBookedAt *time.Time
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Line is one order line, denormalized from the product at purchase time.
// ProductID is nullable: the product may be deleted later.
type Line struct {
	ID           int64
	OrderID      int64
	ProductID    *int64
	ProductName  string
	SKU          string
	ImageURL     string
	Colour       string
	Quantity     int
	UnitPrice    decimal.Decimal
	LineSubtotal decimal.Decimal
	CreatedAt    time.Time
}

// CustomerInfo is the checkout submission's customer payload. On an email
// match the existing record's contact and address fields are overwritten
// with these values (last-write-wins).
type CustomerInfo struct {
	Type             string
	FirstName        string
	LastName         string
	CompanyName      string
	Email            string
	Phone            string
	BillingLine1     string
	BillingLine2     string
	BillingCity      string
	BillingPostcode  string
	ShippingLine1    string
	ShippingLine2    string
	ShippingCity     string
	ShippingPostcode string
}

// PlaceParams is the fully-assembled input the repository persists in one
// transaction: customer upsert, order number issue, header + lines insert,
// customer aggregate update, and cart clearing.
type PlaceParams struct {
	Customer      CustomerInfo
	Lines         []Line
	Totals        Totals
	PaymentMethod string
	// SessionID, when set, identifies the session cart to clear.
	SessionID string
}

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status     DeliveryStatus
	CustomerID *int64
	Limit      int
	Offset     int
}

// ProgressParams carries the optional courier details required when the
// next status is delivery_booked.
type ProgressParams struct {
	Courier        string
	TrackingNumber string
}

// Repository defines persistence operations for orders.
type Repository interface {
	Place(ctx context.Context, p PlaceParams) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	GetByID(ctx context.Context, id int64) (*Order, []Line, error)
	// Progress advances the order to its single valid next status,
	// stamping the transition timestamp. Booking delivery requires courier
	// details and returns ErrCourierRequired without them.
	Progress(ctx context.Context, id int64, p ProgressParams) (*Order, error)
}
