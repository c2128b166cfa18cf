package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/astgolf/proshop/internal/domain/catalog"
	"github.com/astgolf/proshop/internal/domain/pricing"
)

const productColumns = `p.id, p.sku, p.style_number, p.name, p.brand_id, COALESCE(b.name, ''),
	p.category_id, COALESCE(c.name, ''), p.colour, p.image_url,
	p.price, p.margin_percentage, p.calculated_price,
	p.is_special_offer, p.offer_discount_percentage, p.final_price,
	p.stock_quantity, p.reorder_point, p.active, p.created_at, p.updated_at`

const productFrom = ` FROM products p
	LEFT JOIN brands b ON b.id = p.brand_id
	LEFT JOIN categories c ON c.id = p.category_id`

var (
	_ catalog.Repository    = (*ProductRepository)(nil)
	_ pricing.ProductSource = (*ProductRepository)(nil)
)

// ProductRepository implements catalog.Repository and pricing.ProductSource
// backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns products matching the filter, ordered by SKU.
func (r *ProductRepository) List(ctx context.Context, f catalog.ListFilter) ([]catalog.Product, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT " + productColumns + productFrom + " WHERE 1=1")

	if !f.IncludeInactive {
		sb.WriteString(" AND p.active")
	}
	if f.BrandID != nil {
		args = append(args, *f.BrandID)
		fmt.Fprintf(&sb, " AND p.brand_id = $%d", len(args))
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		fmt.Fprintf(&sb, " AND p.category_id = $%d", len(args))
	}
	if f.StyleNumber != "" {
		args = append(args, f.StyleNumber)
		fmt.Fprintf(&sb, " AND p.style_number = $%d", len(args))
	}
	if f.Search != "" {
		args = append(args, f.Search)
		n := len(args)
		fmt.Fprintf(&sb, " AND (p.name ILIKE '%%' || $%d || '%%' OR p.sku ILIKE '%%' || $%d || '%%')", n, n)
	}

	sb.WriteString(" ORDER BY p.sku")
	if f.Limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", f.Offset)
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+productColumns+productFrom+" WHERE p.id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+productColumns+productFrom+" WHERE p.id = ANY($1)", ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

const updateProductSQL = `UPDATE products SET
	sku = $2, style_number = $3, name = $4, brand_id = $5, category_id = $6,
	colour = $7, image_url = $8, price = $9, margin_percentage = $10,
	calculated_price = $11, is_special_offer = $12, offer_discount_percentage = $13,
	final_price = $14, reorder_point = $15, active = $16, updated_at = now()
	WHERE id = $1`

// Update persists product edits. Derived price columns must already be
// recomputed by the caller (catalog.Product.Reprice). Stock quantity is
// deliberately not written here; it only changes through the inventory
// ledger.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	tag, err := r.pool.Exec(ctx, updateProductSQL,
		p.ID, p.SKU, p.StyleNumber, p.Name, p.BrandID, p.CategoryID,
		p.Colour, p.ImageURL, p.Price, p.MarginPercentage,
		p.CalculatedPrice, p.IsSpecialOffer, p.OfferDiscountPercentage,
		p.FinalPrice, p.ReorderPoint, p.Active,
	)
	if err != nil {
		return fmt.Errorf("updating product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

const listStylesSQL = `SELECT p.style_number, MIN(p.name), COALESCE(MIN(b.name), ''),
	COUNT(*), MIN(p.final_price), MAX(p.final_price), COALESCE(SUM(p.stock_quantity), 0)
	FROM products p
	LEFT JOIN brands b ON b.id = p.brand_id
	WHERE p.active AND p.style_number <> ''
	GROUP BY p.style_number
	ORDER BY p.style_number`

// ListStyles aggregates active products by style number.
func (r *ProductRepository) ListStyles(ctx context.Context) ([]catalog.StyleGroup, error) {
	rows, err := r.pool.Query(ctx, listStylesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing styles: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.StyleGroup, error) {
		var g catalog.StyleGroup
		err := row.Scan(&g.StyleNumber, &g.Name, &g.BrandName, &g.VariantCount, &g.MinPrice, &g.MaxPrice, &g.TotalStock)
		return g, err
	})
}

// ListBrands returns all brands ordered by name.
func (r *ProductRepository) ListBrands(ctx context.Context) ([]catalog.Brand, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM brands ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Brand, error) {
		var b catalog.Brand
		err := row.Scan(&b.ID, &b.Name)
		return b, err
	})
}

// ListCategories returns all categories ordered by name.
func (r *ProductRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

// MatchingProducts returns the products covered by a margin rule's scope.
func (r *ProductRepository) MatchingProducts(ctx context.Context, rule *pricing.Rule) ([]catalog.Product, error) {
	var (
		where string
		arg   any
	)
	switch {
	case rule.SKU != nil:
		where, arg = "p.sku = $1", *rule.SKU
	case rule.StyleNumber != nil:
		where, arg = "p.style_number = $1", *rule.StyleNumber
	case rule.CategoryID != nil:
		where, arg = "p.category_id = $1", *rule.CategoryID
	case rule.BrandID != nil:
		where, arg = "p.brand_id = $1", *rule.BrandID
	default:
		return nil, pricing.ErrInvalidScope
	}

	rows, err := r.pool.Query(ctx, "SELECT "+productColumns+productFrom+" WHERE "+where, arg)
	if err != nil {
		return nil, fmt.Errorf("matching products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

const updatePricingSQL = `UPDATE products SET
	margin_percentage = $2, calculated_price = $3, final_price = $4, updated_at = now()
	WHERE id = $1`

// UpdatePricing persists a recomputed margin and derived prices.
func (r *ProductRepository) UpdatePricing(ctx context.Context, id int64, margin, calculated, final decimal.Decimal) error {
	_, err := r.pool.Exec(ctx, updatePricingSQL, id, margin, calculated, final)
	if err != nil {
		return fmt.Errorf("updating pricing for product %d: %w", id, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.StyleNumber, &p.Name, &p.BrandID, &p.BrandName,
		&p.CategoryID, &p.CategoryName, &p.Colour, &p.ImageURL,
		&p.Price, &p.MarginPercentage, &p.CalculatedPrice,
		&p.IsSpecialOffer, &p.OfferDiscountPercentage, &p.FinalPrice,
		&p.StockQuantity, &p.ReorderPoint, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}
