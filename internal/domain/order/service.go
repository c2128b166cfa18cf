package order

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// CheckoutRequest is the full checkout submission. Lines carry the client
// cart's denormalized product fields and unit prices.
type CheckoutRequest struct {
	Customer      CustomerInfo
	Lines         []Line
	PaymentMethod string
	SessionID     string
	// Totals, when non-nil, are trusted as supplied instead of recomputed.
	Totals *Totals
}

// CheckoutResult is the order confirmation payload.
type CheckoutResult struct {
	Order  *Order
	Lines  []Line
	Totals Totals
}

// Service encapsulates checkout and fulfillment business logic.
type Service struct {
	orders Repository
}

// NewService creates an order Service.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Checkout validates the submission, computes totals unless the caller
// supplied them, and persists the order atomically. Validation failures
// occur before any write.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}
	if strings.TrimSpace(req.Customer.Email) == "" || customerName(req.Customer) == "" {
		return nil, ErrMissingCustomer
	}
	for i := range req.Lines {
		if req.Lines[i].Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductName: req.Lines[i].ProductName}
		}
	}

	totals := CalculateTotals(req.Lines)
	if req.Totals != nil {
		totals = *req.Totals
	}

	lines := make([]Line, len(req.Lines))
	for i, l := range req.Lines {
		l.LineSubtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
		lines[i] = l
	}

	o, err := s.orders.Place(ctx, PlaceParams{
		Customer:      req.Customer,
		Lines:         lines,
		Totals:        totals,
		PaymentMethod: req.PaymentMethod,
		SessionID:     req.SessionID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "place order")
	}

	placed := make([]Line, len(lines))
	copy(placed, lines)
	for i := range placed {
		placed[i].OrderID = o.ID
	}

	return &CheckoutResult{Order: o, Lines: placed, Totals: totals}, nil
}

// List returns orders for the back office, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Order, error) {
	return s.orders.List(ctx, f)
}

// Get returns an order with its lines.
func (s *Service) Get(ctx context.Context, id int64) (*Order, []Line, error) {
	return s.orders.GetByID(ctx, id)
}

// Progress advances an order one step through the fulfillment pipeline.
func (s *Service) Progress(ctx context.Context, id int64, p ProgressParams) (*Order, error) {
	return s.orders.Progress(ctx, id, p)
}

func customerName(c CustomerInfo) string {
	if c.CompanyName != "" {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}
