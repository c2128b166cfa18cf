package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astgolf/proshop/internal/domain/cart"
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

const addCartItemSQL = `INSERT INTO cart_items (session_id, product_id, quantity)
	VALUES ($1, $2, $3)
	ON CONFLICT (session_id, product_id) DO UPDATE SET
		quantity = cart_items.quantity + EXCLUDED.quantity,
		updated_at = now()
	RETURNING id, quantity, created_at, updated_at`

// Add upserts a cart row, incrementing the quantity when the product is
// already in the session's cart.
func (r *CartRepository) Add(ctx context.Context, sessionID string, productID int64, quantity int) (*cart.Item, error) {
	if quantity <= 0 {
		return nil, cart.ErrInvalidQuantity
	}

	item := cart.Item{SessionID: sessionID, ProductID: productID}
	err := r.pool.QueryRow(ctx, addCartItemSQL, sessionID, productID, quantity).
		Scan(&item.ID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("adding product %d to cart: %w", productID, err)
	}
	return &item, nil
}

// SetQuantity overwrites an item's quantity; zero removes the row.
func (r *CartRepository) SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int) error {
	if quantity < 0 {
		return cart.ErrInvalidQuantity
	}
	if quantity == 0 {
		return r.Remove(ctx, sessionID, productID)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3, updated_at = now() WHERE session_id = $1 AND product_id = $2`,
		sessionID, productID, quantity)
	if err != nil {
		return fmt.Errorf("updating cart quantity for product %d: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

// Remove deletes one item from the session's cart.
func (r *CartRepository) Remove(ctx context.Context, sessionID string, productID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE session_id = $1 AND product_id = $2`,
		sessionID, productID)
	if err != nil {
		return fmt.Errorf("removing product %d from cart: %w", productID, err)
	}
	if tag.RowsAffected() == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

const listCartSQL = `SELECT c.id, c.session_id, c.product_id, c.quantity, c.created_at, c.updated_at,
	p.name, p.sku, p.image_url, p.colour, p.final_price, p.stock_quantity
	FROM cart_items c
	JOIN products p ON p.id = c.product_id
	WHERE c.session_id = $1
	ORDER BY c.created_at, c.id`

// List returns the session's cart joined with current product pricing and
// stock.
func (r *CartRepository) List(ctx context.Context, sessionID string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, listCartSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing cart for session: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Line, error) {
		var l cart.Line
		err := row.Scan(&l.ID, &l.SessionID, &l.ProductID, &l.Quantity, &l.CreatedAt, &l.UpdatedAt,
			&l.ProductName, &l.SKU, &l.ImageURL, &l.Colour, &l.UnitPrice, &l.StockQuantity)
		return l, err
	})
}

// Clear drops every item in the session's cart.
func (r *CartRepository) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("clearing cart for session: %w", err)
	}
	return nil
}
