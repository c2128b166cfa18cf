package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astgolf/proshop/internal/domain/inventory"
)

var _ inventory.Repository = (*InventoryRepository)(nil)

// InventoryRepository persists stock levels on products and the append-only
// stock_history ledger.
type InventoryRepository struct {
	pool *pgxpool.Pool
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{pool: pool}
}

// adjustSQL computes the new quantity from the current one inside the row
// lock, flooring subtractions at zero.
const adjustSQL = `UPDATE products SET
	stock_quantity = CASE $2
		WHEN 'set' THEN $3
		WHEN 'add' THEN stock_quantity + $3
		ELSE GREATEST(0, stock_quantity - $3)
	END,
	updated_at = now()
	WHERE id = $1
	RETURNING name, sku, stock_quantity`

const insertMovementSQL = `INSERT INTO stock_history
	(product_id, previous_quantity, new_quantity, change_amount, change_type, reason, actor)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, created_at`

// ApplyAdjustment updates the stock level and writes the ledger row in one
// transaction. The previous quantity is read under FOR UPDATE so the delta in
// the ledger is exact even under concurrent adjustments.
func (r *InventoryRepository) ApplyAdjustment(ctx context.Context, productID int64, t inventory.ChangeType, quantity int, reason, actor string) (*inventory.Movement, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning adjustment tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var previous int
	err = tx.QueryRow(ctx, `SELECT stock_quantity FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&previous)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, inventory.ErrProductNotFound
		}
		return nil, fmt.Errorf("locking product %d: %w", productID, err)
	}

	m := inventory.Movement{
		ProductID:        productID,
		PreviousQuantity: previous,
		ChangeType:       t,
		Reason:           reason,
		Actor:            actor,
	}
	err = tx.QueryRow(ctx, adjustSQL, productID, string(t), quantity).
		Scan(&m.ProductName, &m.SKU, &m.NewQuantity)
	if err != nil {
		return nil, fmt.Errorf("adjusting product %d: %w", productID, err)
	}
	m.ChangeAmount = m.NewQuantity - m.PreviousQuantity

	err = tx.QueryRow(ctx, insertMovementSQL,
		m.ProductID, m.PreviousQuantity, m.NewQuantity, m.ChangeAmount, string(m.ChangeType), m.Reason, m.Actor,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("recording movement for product %d: %w", productID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing adjustment tx: %w", err)
	}
	return &m, nil
}

// SetReorderPoints updates the reorder point on every listed product and
// returns the number of rows touched.
func (r *InventoryRepository) SetReorderPoints(ctx context.Context, productIDs []int64, point int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET reorder_point = $2, updated_at = now() WHERE id = ANY($1)`,
		productIDs, point)
	if err != nil {
		return 0, fmt.Errorf("setting reorder points: %w", err)
	}
	return tag.RowsAffected(), nil
}

const historySQL = `SELECT h.id, h.product_id, COALESCE(p.name, ''), COALESCE(p.sku, ''),
	h.previous_quantity, h.new_quantity, h.change_amount, h.change_type, h.reason, h.actor, h.created_at
	FROM stock_history h
	LEFT JOIN products p ON p.id = h.product_id`

// History returns ledger rows, newest first.
func (r *InventoryRepository) History(ctx context.Context, f inventory.HistoryFilter) ([]inventory.Movement, error) {
	var sb strings.Builder
	sb.WriteString(historySQL)

	args := make([]any, 0, 3)
	if f.ProductID != nil {
		args = append(args, *f.ProductID)
		fmt.Fprintf(&sb, " WHERE h.product_id = $%d", len(args))
	}
	sb.WriteString(" ORDER BY h.created_at DESC, h.id DESC")
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
		return nil, fmt.Errorf("listing stock history: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.Movement, error) {
		var m inventory.Movement
		err := row.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.SKU,
			&m.PreviousQuantity, &m.NewQuantity, &m.ChangeAmount, &m.ChangeType, &m.Reason, &m.Actor, &m.CreatedAt)
		return m, err
	})
}

const statsSQL = `SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE stock_quantity > reorder_point),
	COUNT(*) FILTER (WHERE stock_quantity > 0 AND stock_quantity <= reorder_point),
	COUNT(*) FILTER (WHERE stock_quantity <= 0),
	COALESCE(SUM(stock_quantity), 0),
	COALESCE(SUM(price * stock_quantity), 0),
	COALESCE(SUM(final_price * stock_quantity), 0)
	FROM products WHERE active`

// Stats summarizes the stock position of the active catalog.
func (r *InventoryRepository) Stats(ctx context.Context) (*inventory.Stats, error) {
	var s inventory.Stats
	err := r.pool.QueryRow(ctx, statsSQL).Scan(
		&s.TotalProducts, &s.InStock, &s.LowStock, &s.OutOfStock,
		&s.TotalUnits, &s.ValuationAtCost, &s.ValuationRetail)
	if err != nil {
		return nil, fmt.Errorf("computing stock stats: %w", err)
	}
	return &s, nil
}

const alertsSQL = `SELECT id, sku, name, stock_quantity, reorder_point
	FROM products
	WHERE active AND stock_quantity <= reorder_point
	ORDER BY stock_quantity ASC, name ASC`

// Alerts returns every active product at or below its reorder point, the
// emptiest shelves first.
func (r *InventoryRepository) Alerts(ctx context.Context) ([]inventory.Alert, error) {
	rows, err := r.pool.Query(ctx, alertsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing stock alerts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (inventory.Alert, error) {
		var a inventory.Alert
		err := row.Scan(&a.ProductID, &a.SKU, &a.Name, &a.Quantity, &a.ReorderPoint)
		a.Status = inventory.StatusFor(a.Quantity, a.ReorderPoint)
		return a, err
	})
}
