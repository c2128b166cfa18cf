// Package catalog holds the product catalog domain: products, brands,
// categories, and the pricing formula that derives sale prices from cost
// and margin.
package catalog

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item. Price is the base cost; CalculatedPrice
// and FinalPrice are derived via Reprice and stored denormalized, never
// edited independently.
type Product struct {
	ID                      int64
	SKU                     string
	StyleNumber             string
	Name                    string
	BrandID                 *int64
	BrandName               string
	CategoryID              *int64
	CategoryName            string
	Colour                  string
	ImageURL                string
	Price                   decimal.Decimal
	MarginPercentage        decimal.Decimal
	CalculatedPrice         decimal.Decimal
	IsSpecialOffer          bool
	OfferDiscountPercentage *decimal.Decimal
	FinalPrice              decimal.Decimal
	StockQuantity           int
	ReorderPoint            int
	Active                  bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Brand is a product manufacturer.
type Brand struct {
	ID   int64
	Name string
}

// Category is a product grouping (drivers, irons, balls, ...).
type Category struct {
	ID   int64
	Name string
}

// StyleGroup aggregates the colour/size variants sharing a style number.
type StyleGroup struct {
	StyleNumber  string
	Name         string
	BrandName    string
	VariantCount int
	MinPrice     decimal.Decimal
	MaxPrice     decimal.Decimal
	TotalStock   int
}

// ListFilter narrows product listings. Zero values mean "no filter".
type ListFilter struct {
	BrandID         *int64
	CategoryID      *int64
	StyleNumber     string
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}

// Repository defines persistence operations for the catalog.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	ListStyles(ctx context.Context) ([]StyleGroup, error)
	ListBrands(ctx context.Context) ([]Brand, error)
	ListCategories(ctx context.Context) ([]Category, error)
}
