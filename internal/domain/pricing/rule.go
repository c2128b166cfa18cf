// Package pricing implements margin rules: named rules scoped to a single
// SKU, style, category, or brand that override product margins. Rules are
// resolved in strict priority order rather than applied as blind overwrites,
// so the most specific matching rule always wins regardless of which rule
// was saved last.
package pricing

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/astgolf/proshop/internal/domain/catalog"
)

var (
	// ErrNotFound is returned when a requested rule does not exist.
	ErrNotFound = errors.New("margin rule not found")
	// ErrInvalidScope is returned when a rule does not have exactly one
	// scope column set.
	ErrInvalidScope = errors.New("margin rule must target exactly one of sku, style, category, or brand")
	// ErrInvalidMargin is returned for negative margin percentages.
	ErrInvalidMargin = errors.New("margin percentage must not be negative")
)

// ScopeKind identifies which product attribute a rule targets.
type ScopeKind string

const (
	ScopeSKU      ScopeKind = "sku"
	ScopeStyle    ScopeKind = "style"
	ScopeCategory ScopeKind = "category"
	ScopeBrand    ScopeKind = "brand"
)

// Priority orders scope kinds from most to least specific. Higher wins.
func (k ScopeKind) Priority() int {
	switch k {
	case ScopeSKU:
		return 4
	case ScopeStyle:
		return 3
	case ScopeCategory:
		return 2
	case ScopeBrand:
		return 1
	default:
		return 0
	}
}

// Rule is a margin override scoped to exactly one product attribute.
type Rule struct {
	ID               int64
	Name             string
	SKU              *string
	StyleNumber      *string
	CategoryID       *int64
	BrandID          *int64
	MarginPercentage decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Scope returns the rule's scope kind, or ErrInvalidScope unless exactly one
// scope column is set.
func (r *Rule) Scope() (ScopeKind, error) {
	var (
		kind ScopeKind
		n    int
	)
	if r.SKU != nil {
		kind, n = ScopeSKU, n+1
	}
	if r.StyleNumber != nil {
		kind, n = ScopeStyle, n+1
	}
	if r.CategoryID != nil {
		kind, n = ScopeCategory, n+1
	}
	if r.BrandID != nil {
		kind, n = ScopeBrand, n+1
	}
	if n != 1 {
		return "", ErrInvalidScope
	}
	return kind, nil
}

// Validate checks scope and margin constraints before persisting.
func (r *Rule) Validate() error {
	if _, err := r.Scope(); err != nil {
		return err
	}
	if r.MarginPercentage.IsNegative() {
		return ErrInvalidMargin
	}
	return nil
}

// Matches reports whether the rule's scope predicate covers the product.
func (r *Rule) Matches(p *catalog.Product) bool {
	switch {
	case r.SKU != nil:
		return p.SKU == *r.SKU
	case r.StyleNumber != nil:
		return p.StyleNumber == *r.StyleNumber
	case r.CategoryID != nil:
		return p.CategoryID != nil && *p.CategoryID == *r.CategoryID
	case r.BrandID != nil:
		return p.BrandID != nil && *p.BrandID == *r.BrandID
	default:
		return false
	}
}

// Repository defines persistence operations for margin rules.
type Repository interface {
	List(ctx context.Context) ([]Rule, error)
	GetByID(ctx context.Context, id int64) (*Rule, error)
	Create(ctx context.Context, r *Rule) error
	Update(ctx context.Context, r *Rule) error
	Delete(ctx context.Context, id int64) error
}

// ProductSource is the slice of the catalog the pricing engine needs: the
// products a rule scope covers, and the ability to persist recomputed prices.
type ProductSource interface {
	MatchingProducts(ctx context.Context, r *Rule) ([]catalog.Product, error)
	UpdatePricing(ctx context.Context, id int64, margin, calculated, final decimal.Decimal) error
}
