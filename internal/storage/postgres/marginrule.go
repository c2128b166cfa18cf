package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/astgolf/proshop/internal/domain/pricing"
)

const marginRuleColumns = `id, name, sku, style_number, category_id, brand_id,
	margin_percentage, created_at, updated_at`

var _ pricing.Repository = (*MarginRuleRepository)(nil)

// MarginRuleRepository implements pricing.Repository backed by PostgreSQL.
type MarginRuleRepository struct {
	pool *pgxpool.Pool
}

// NewMarginRuleRepository returns a MarginRuleRepository that uses the given
// pool.
func NewMarginRuleRepository(pool *pgxpool.Pool) *MarginRuleRepository {
	return &MarginRuleRepository{pool: pool}
}

// List returns all margin rules, newest updated first.
func (r *MarginRuleRepository) List(ctx context.Context) ([]pricing.Rule, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+marginRuleColumns+" FROM margin_rules ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing margin rules: %w", err)
	}
	return pgx.CollectRows(rows, scanMarginRule)
}

// GetByID returns a single rule.
func (r *MarginRuleRepository) GetByID(ctx context.Context, id int64) (*pricing.Rule, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+marginRuleColumns+" FROM margin_rules WHERE id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("getting margin rule %d: %w", id, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanMarginRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pricing.ErrNotFound
		}
		return nil, fmt.Errorf("getting margin rule %d: %w", id, err)
	}
	return &rule, nil
}

const createMarginRuleSQL = `INSERT INTO margin_rules
	(name, sku, style_number, category_id, brand_id, margin_percentage)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at, updated_at`

// Create persists a new rule and fills in its generated fields.
func (r *MarginRuleRepository) Create(ctx context.Context, rule *pricing.Rule) error {
	err := r.pool.QueryRow(ctx, createMarginRuleSQL,
		rule.Name, rule.SKU, rule.StyleNumber, rule.CategoryID, rule.BrandID, rule.MarginPercentage,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating margin rule %q: %w", rule.Name, err)
	}
	return nil
}

const updateMarginRuleSQL = `UPDATE margin_rules SET
	name = $2, sku = $3, style_number = $4, category_id = $5, brand_id = $6,
	margin_percentage = $7, updated_at = now()
	WHERE id = $1
	RETURNING updated_at`

// Update persists rule changes.
func (r *MarginRuleRepository) Update(ctx context.Context, rule *pricing.Rule) error {
	err := r.pool.QueryRow(ctx, updateMarginRuleSQL,
		rule.ID, rule.Name, rule.SKU, rule.StyleNumber, rule.CategoryID, rule.BrandID, rule.MarginPercentage,
	).Scan(&rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.ErrNotFound
		}
		return fmt.Errorf("updating margin rule %d: %w", rule.ID, err)
	}
	return nil
}

// Delete removes a rule. Recomputation of affected products is the pricing
// service's responsibility.
func (r *MarginRuleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM margin_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting margin rule %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return pricing.ErrNotFound
	}
	return nil
}

func scanMarginRule(row pgx.CollectableRow) (pricing.Rule, error) {
	var rule pricing.Rule
	err := row.Scan(
		&rule.ID, &rule.Name, &rule.SKU, &rule.StyleNumber, &rule.CategoryID, &rule.BrandID,
		&rule.MarginPercentage, &rule.CreatedAt, &rule.UpdatedAt,
	)
	return rule, err
}
