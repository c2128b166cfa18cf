// Package customer holds the customer directory domain: records keyed by
// email, UK region derivation, and lifetime spend aggregates.
package customer

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested customer does not exist.
var ErrNotFound = errors.New("customer not found")

// ErrMissingEmail is returned when a customer record has no email address.
var ErrMissingEmail = errors.New("email is required")

// Type distinguishes individual and business customers.
type Type string

const (
	TypeIndividual Type = "individual"
	TypeBusiness   Type = "business"
)

// Address is a UK postal address.
type Address struct {
	Line1    string
	Line2    string
	City     string
	Postcode string
}

// Customer is a directory record. TotalSpent, OrderCount, and
// AverageOrderValue are maintained transactionally by the order pipeline.
type Customer struct {
	ID                 int64
	Type               Type
	FirstName          string
	LastName           string
	CompanyName        string
	Email              string
	Phone              string
	Billing            Address
	Shipping           Address
	LocationRegion     string
	TotalSpent         decimal.Decimal
	OrderCount         int
	AverageOrderValue  decimal.Decimal
	OutstandingBalance decimal.Decimal
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Name returns the display name: company name for business customers when
// set, otherwise first and last name.
func (c *Customer) Name() string {
	if c.Type == TypeBusiness && c.CompanyName != "" {
		return c.CompanyName
	}
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// DeriveRegion sets LocationRegion from the shipping postcode, falling back
// to the billing postcode.
func (c *Customer) DeriveRegion() {
	pc := c.Shipping.Postcode
	if pc == "" {
		pc = c.Billing.Postcode
	}
	c.LocationRegion = RegionForPostcode(pc)
}

// Validate checks the minimum fields a record needs.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrMissingEmail
	}
	if c.Type == "" {
		c.Type = TypeIndividual
	}
	return nil
}

// RegionStat is the per-region customer count and revenue aggregate.
type RegionStat struct {
	Region        string
	CustomerCount int
	TotalRevenue  decimal.Decimal
}

// ListFilter narrows customer listings.
type ListFilter struct {
	Search          string
	Region          string
	Type            Type
	IncludeInactive bool
	Limit           int
	Offset          int
}

// Repository defines persistence operations for the customer directory.
type Repository interface {
	List(ctx context.Context, f ListFilter) ([]Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	// Deactivate soft-deletes a customer; the row and its order history remain.
	Deactivate(ctx context.Context, id int64) error
	RegionStats(ctx context.Context) ([]RegionStat, error)
}
