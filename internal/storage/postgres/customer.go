package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astgolf/proshop/internal/domain/customer"
)

const customerColumns = `id, customer_type, first_name, last_name, company_name, email, phone,
	billing_line1, billing_line2, billing_city, billing_postcode,
	shipping_line1, shipping_line2, shipping_city, shipping_postcode,
	location_region, total_spent, order_count, average_order_value, outstanding_balance,
	active, created_at, updated_at`

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// List returns directory records matching the filter, most recently updated
// first. Inactive customers are hidden unless requested.
func (r *CustomerRepository) List(ctx context.Context, f customer.ListFilter) ([]customer.Customer, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + customerColumns + " FROM customers WHERE 1=1")

	args := make([]any, 0, 5)
	if !f.IncludeInactive {
		sb.WriteString(" AND active")
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		fmt.Fprintf(&sb, ` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR company_name ILIKE $%d OR email ILIKE $%d)`, n, n, n, n)
	}
	if f.Region != "" {
		args = append(args, f.Region)
		fmt.Fprintf(&sb, " AND location_region = $%d", len(args))
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		fmt.Fprintf(&sb, " AND customer_type = $%d", len(args))
	}
	sb.WriteString(" ORDER BY updated_at DESC")
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

// GetByID returns one customer by primary key.
func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+customerColumns+" FROM customers WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("getting customer %d: %w", id, err)
	}
	return &c, nil
}

// FindByEmail looks a customer up by email, case-insensitively.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+customerColumns+" FROM customers WHERE lower(email) = lower($1)", email)
	if err != nil {
		return nil, fmt.Errorf("finding customer by email: %w", err)
	}
	c, err := pgx.CollectExactlyOneRow(rows, scanCustomer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrNotFound
		}
		return nil, fmt.Errorf("finding customer by email: %w", err)
	}
	return &c, nil
}

const createCustomerSQL = `INSERT INTO customers
	(customer_type, first_name, last_name, company_name, email, phone,
	 billing_line1, billing_line2, billing_city, billing_postcode,
	 shipping_line1, shipping_line2, shipping_city, shipping_postcode,
	 location_region)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING id, total_spent, order_count, average_order_value, outstanding_balance,
		active, created_at, updated_at`

// Create inserts a new directory record. The region is derived from the
// postcodes before the insert.
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.DeriveRegion()

	err := r.pool.QueryRow(ctx, createCustomerSQL,
		string(c.Type), c.FirstName, c.LastName, c.CompanyName, c.Email, c.Phone,
		c.Billing.Line1, c.Billing.Line2, c.Billing.City, c.Billing.Postcode,
		c.Shipping.Line1, c.Shipping.Line2, c.Shipping.City, c.Shipping.Postcode,
		c.LocationRegion,
	).Scan(&c.ID, &c.TotalSpent, &c.OrderCount, &c.AverageOrderValue, &c.OutstandingBalance,
		&c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating customer %q: %w", c.Email, err)
	}
	return nil
}

const updateCustomerSQL = `UPDATE customers SET
	customer_type = $2, first_name = $3, last_name = $4, company_name = $5,
	email = $6, phone = $7,
	billing_line1 = $8, billing_line2 = $9, billing_city = $10, billing_postcode = $11,
	shipping_line1 = $12, shipping_line2 = $13, shipping_city = $14, shipping_postcode = $15,
	location_region = $16, outstanding_balance = $17, active = $18, updated_at = now()
	WHERE id = $1
	RETURNING updated_at`

// Update persists profile changes. Lifetime aggregates are never written
// here; the order pipeline owns them.
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.DeriveRegion()

	err := r.pool.QueryRow(ctx, updateCustomerSQL,
		c.ID, string(c.Type), c.FirstName, c.LastName, c.CompanyName,
		c.Email, c.Phone,
		c.Billing.Line1, c.Billing.Line2, c.Billing.City, c.Billing.Postcode,
		c.Shipping.Line1, c.Shipping.Line2, c.Shipping.City, c.Shipping.Postcode,
		c.LocationRegion, c.OutstandingBalance, c.Active,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return customer.ErrNotFound
		}
		return fmt.Errorf("updating customer %d: %w", c.ID, err)
	}
	return nil
}

// Deactivate soft-deletes a customer. Order history keeps pointing at the row.
func (r *CustomerRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivating customer %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrNotFound
	}
	return nil
}

const regionStatsSQL = `SELECT location_region, COUNT(*), COALESCE(SUM(total_spent), 0)
	FROM customers
	WHERE active
	GROUP BY location_region
	ORDER BY SUM(total_spent) DESC`

// RegionStats aggregates active customers and their lifetime revenue per
// region.
func (r *CustomerRepository) RegionStats(ctx context.Context) ([]customer.RegionStat, error) {
	rows, err := r.pool.Query(ctx, regionStatsSQL)
	if err != nil {
		return nil, fmt.Errorf("aggregating region stats: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (customer.RegionStat, error) {
		var s customer.RegionStat
		err := row.Scan(&s.Region, &s.CustomerCount, &s.TotalRevenue)
		return s, err
	})
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(
		&c.ID, &c.Type, &c.FirstName, &c.LastName, &c.CompanyName, &c.Email, &c.Phone,
		&c.Billing.Line1, &c.Billing.Line2, &c.Billing.City, &c.Billing.Postcode,
		&c.Shipping.Line1, &c.Shipping.Line2, &c.Shipping.City, &c.Shipping.Postcode,
		&c.LocationRegion, &c.TotalSpent, &c.OrderCount, &c.AverageOrderValue, &c.OutstandingBalance,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}
