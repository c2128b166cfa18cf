package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astgolf/proshop/internal/domain/customer"
	"github.com/astgolf/proshop/internal/domain/order"
)

const orderColumns = `id, order_number, COALESCE(customer_id, 0), customer_name, customer_email, customer_phone,
	shipping_line1, shipping_line2, shipping_city, shipping_postcode,
	payment_method, payment_status, subtotal, tax, shipping, total, item_count,
	delivery_status, courier, tracking_number,
	confirmed_at, delivery_booked_at, shipped_at, delivered_at, created_at, updated_at`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool, now: time.Now}
}

// upsertCustomerSQL matches on the unique email, overwriting the existing
// record's contact and address fields with the submitted ones.
const upsertCustomerSQL = `INSERT INTO customers
	(customer_type, first_name, last_name, company_name, email, phone,
	 billing_line1, billing_line2, billing_city, billing_postcode,
	 shipping_line1, shipping_line2, shipping_city, shipping_postcode,
	 location_region)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (email) DO UPDATE SET
		customer_type = EXCLUDED.customer_type,
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		company_name = EXCLUDED.company_name,
		phone = EXCLUDED.phone,
		billing_line1 = EXCLUDED.billing_line1,
		billing_line2 = EXCLUDED.billing_line2,
		billing_city = EXCLUDED.billing_city,
		billing_postcode = EXCLUDED.billing_postcode,
		shipping_line1 = EXCLUDED.shipping_line1,
		shipping_line2 = EXCLUDED.shipping_line2,
		shipping_city = EXCLUDED.shipping_city,
		shipping_postcode = EXCLUDED.shipping_postcode,
		location_region = EXCLUDED.location_region,
		updated_at = now()
	RETURNING id`

// nextSeqSQL issues the next order number suffix for the month. The upsert's
// UPDATE path increments under the row lock, so concurrent checkouts in the
// same month serialize on the counter row and never share a number.
const nextSeqSQL = `INSERT INTO order_counters (month, seq) VALUES ($1, 1)
	ON CONFLICT (month) DO UPDATE SET seq = order_counters.seq + 1
	RETURNING seq`

const insertOrderSQL = `INSERT INTO orders
	(order_number, customer_id, customer_name, customer_email, customer_phone,
	 shipping_line1, shipping_line2, shipping_city, shipping_postcode,
	 payment_method, subtotal, tax, shipping, total, item_count)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING id, payment_status, delivery_status, created_at, updated_at`

const insertLineSQL = `INSERT INTO order_lines
	(order_id, product_id, product_name, sku, image_url, colour, quantity, unit_price, line_subtotal)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING id, created_at`

// updateAggregatesSQL folds the new order into the customer's lifetime spend
// figures in the same transaction that created the order.
const updateAggregatesSQL = `UPDATE customers SET
	total_spent = total_spent + $2,
	order_count = order_count + 1,
	average_order_value = round((total_spent + $2) / (order_count + 1), 2),
	updated_at = now()
	WHERE id = $1`

// Place persists a checkout in one transaction: customer upsert by email,
// order number issue, header and line inserts, the customer's lifetime
// aggregates, and clearing the session cart. If any step fails nothing is
// visible.
func (r *OrderRepository) Place(ctx context.Context, p order.PlaceParams) (*order.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning checkout tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	region := customer.RegionForPostcode(p.Customer.ShippingPostcode)
	if p.Customer.ShippingPostcode == "" {
		region = customer.RegionForPostcode(p.Customer.BillingPostcode)
	}
	custType := p.Customer.Type
	if custType == "" {
		custType = string(customer.TypeIndividual)
	}

	var customerID int64
	err = tx.QueryRow(ctx, upsertCustomerSQL,
		custType, p.Customer.FirstName, p.Customer.LastName, p.Customer.CompanyName,
		p.Customer.Email, p.Customer.Phone,
		p.Customer.BillingLine1, p.Customer.BillingLine2, p.Customer.BillingCity, p.Customer.BillingPostcode,
		p.Customer.ShippingLine1, p.Customer.ShippingLine2, p.Customer.ShippingCity, p.Customer.ShippingPostcode,
		region,
	).Scan(&customerID)
	if err != nil {
		return nil, fmt.Errorf("upserting checkout customer: %w", err)
	}

	now := r.now()
	var seq int64
	if err := tx.QueryRow(ctx, nextSeqSQL, order.MonthKey(now)).Scan(&seq); err != nil {
		return nil, fmt.Errorf("issuing order number: %w", err)
	}

	name := strings.TrimSpace(p.Customer.FirstName + " " + p.Customer.LastName)
	if custType == string(customer.TypeBusiness) && p.Customer.CompanyName != "" {
		name = p.Customer.CompanyName
	}

	itemCount := 0
	for _, l := range p.Lines {
		itemCount += l.Quantity
	}

	o := order.Order{
		OrderNumber:      order.FormatOrderNumber(now, seq),
		CustomerID:       customerID,
		CustomerName:     name,
		CustomerEmail:    p.Customer.Email,
		CustomerPhone:    p.Customer.Phone,
		ShippingLine1:    p.Customer.ShippingLine1,
		ShippingLine2:    p.Customer.ShippingLine2,
		ShippingCity:     p.Customer.ShippingCity,
		ShippingPostcode: p.Customer.ShippingPostcode,
		PaymentMethod:    p.PaymentMethod,
		Subtotal:         p.Totals.Subtotal,
		Tax:              p.Totals.Tax,
		Shipping:         p.Totals.Shipping,
		Total:            p.Totals.Total,
		ItemCount:        itemCount,
	}
	err = tx.QueryRow(ctx, insertOrderSQL,
		o.OrderNumber, o.CustomerID, o.CustomerName, o.CustomerEmail, o.CustomerPhone,
		o.ShippingLine1, o.ShippingLine2, o.ShippingCity, o.ShippingPostcode,
		o.PaymentMethod, o.Subtotal, o.Tax, o.Shipping, o.Total, o.ItemCount,
	).Scan(&o.ID, &o.PaymentStatus, &o.DeliveryStatus, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting order header: %w", err)
	}

	for i := range p.Lines {
		l := &p.Lines[i]
		err = tx.QueryRow(ctx, insertLineSQL,
			o.ID, l.ProductID, l.ProductName, l.SKU, l.ImageURL, l.Colour,
			l.Quantity, l.UnitPrice, l.LineSubtotal,
		).Scan(&l.ID, &l.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("inserting order line %q: %w", l.ProductName, err)
		}
		l.OrderID = o.ID
	}

	if _, err := tx.Exec(ctx, updateAggregatesSQL, customerID, o.Total); err != nil {
		return nil, fmt.Errorf("updating customer aggregates: %w", err)
	}

	if p.SessionID != "" {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE session_id = $1`, p.SessionID); err != nil {
			return nil, fmt.Errorf("clearing session cart: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing checkout tx: %w", err)
	}
	return &o, nil
}

// List returns order headers matching the filter, newest first.
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	var sb strings.Builder
	sb.WriteString("SELECT " + orderColumns + " FROM orders WHERE 1=1")

	args := make([]any, 0, 4)
	if f.Status != "" {
		args = append(args, string(f.Status))
		fmt.Fprintf(&sb, " AND delivery_status = $%d", len(args))
	}
	if f.CustomerID != nil {
		args = append(args, *f.CustomerID)
		fmt.Fprintf(&sb, " AND customer_id = $%d", len(args))
	}
	sb.WriteString(" ORDER BY created_at DESC, id DESC")
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
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

const orderLinesSQL = `SELECT id, order_id, product_id, product_name, sku, image_url, colour,
	quantity, unit_price, line_subtotal, created_at
	FROM order_lines WHERE order_id = $1 ORDER BY id`

// GetByID returns the order header with its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, []order.Line, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting order %d: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, order.ErrNotFound
		}
		return nil, nil, fmt.Errorf("getting order %d: %w", id, err)
	}

	lineRows, err := r.pool.Query(ctx, orderLinesSQL, id)
	if err != nil {
		return nil, nil, fmt.Errorf("listing lines for order %d: %w", id, err)
	}
	lines, err := pgx.CollectRows(lineRows, func(row pgx.CollectableRow) (order.Line, error) {
		var l order.Line
		err := row.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.SKU, &l.ImageURL, &l.Colour,
			&l.Quantity, &l.UnitPrice, &l.LineSubtotal, &l.CreatedAt)
		return l, err
	})
	if err != nil {
		return nil, nil, fmt.Errorf("listing lines for order %d: %w", id, err)
	}
	return &o, lines, nil
}

// transitionColumn maps each non-initial status to the timestamp column
// stamped when the order enters it.
func transitionColumn(s order.DeliveryStatus) string {
	switch s {
	case order.StatusConfirmed:
		return "confirmed_at"
	case order.StatusDeliveryBooked:
		return "delivery_booked_at"
	case order.StatusInTransit:
		return "shipped_at"
	case order.StatusDelivered:
		return "delivered_at"
	default:
		return ""
	}
}

// Progress advances the order one step along the pipeline. The current
// status is read under FOR UPDATE so concurrent progressions of the same
// order serialize instead of double-stepping.
func (r *OrderRepository) Progress(ctx context.Context, id int64, p order.ProgressParams) (*order.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning progress tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var current order.DeliveryStatus
	err = tx.QueryRow(ctx, `SELECT delivery_status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("locking order %d: %w", id, err)
	}

	next, err := current.Next()
	if err != nil {
		return nil, err
	}
	if next == order.StatusDeliveryBooked && (p.Courier == "" || p.TrackingNumber == "") {
		return nil, order.ErrCourierRequired
	}

	var sb strings.Builder
	sb.WriteString(`UPDATE orders SET delivery_status = $2, updated_at = now()`)
	fmt.Fprintf(&sb, ", %s = now()", transitionColumn(next))
	args := []any{id, string(next)}
	if next == order.StatusDeliveryBooked {
		args = append(args, p.Courier, p.TrackingNumber)
		sb.WriteString(", courier = $3, tracking_number = $4")
	}
	sb.WriteString(" WHERE id = $1 RETURNING " + orderColumns)

	rows, err := tx.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("progressing order %d: %w", id, err)
	}
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("progressing order %d: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing progress tx: %w", err)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingLine1, &o.ShippingLine2, &o.ShippingCity, &o.ShippingPostcode,
		&o.PaymentMethod, &o.PaymentStatus, &o.Subtotal, &o.Tax, &o.Shipping, &o.Total, &o.ItemCount,
		&o.DeliveryStatus, &o.Courier, &o.TrackingNumber,
		&o.ConfirmedAt, &o.DeliveryBookedAt, &o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}
