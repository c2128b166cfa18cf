package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astgolf/proshop/internal/domain/catalog"
)

// --- Mock implementations ---

type mockRuleRepo struct {
	rules   []Rule
	nextID  int64
	deleted []int64
}

func (m *mockRuleRepo) List(_ context.Context) ([]Rule, error) {
	return m.rules, nil
}

func (m *mockRuleRepo) GetByID(_ context.Context, id int64) (*Rule, error) {
	for i := range m.rules {
		if m.rules[i].ID == id {
			return &m.rules[i], nil
		}
	}
	return nil, ErrNotFound
}

func (m *mockRuleRepo) Create(_ context.Context, r *Rule) error {
	m.nextID++
	r.ID = m.nextID
	m.rules = append(m.rules, *r)
	return nil
}

func (m *mockRuleRepo) Update(_ context.Context, r *Rule) error {
	for i := range m.rules {
		if m.rules[i].ID == r.ID {
			m.rules[i] = *r
			return nil
		}
	}
	return ErrNotFound
}

func (m *mockRuleRepo) Delete(_ context.Context, id int64) error {
	m.deleted = append(m.deleted, id)
	kept := m.rules[:0]
	for _, r := range m.rules {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.rules = kept
	return nil
}

type pricingUpdate struct {
	id                        int64
	margin, calculated, final decimal.Decimal
}

type mockProductSource struct {
	products []catalog.Product
	updates  []pricingUpdate
}

func (m *mockProductSource) MatchingProducts(_ context.Context, r *Rule) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range m.products {
		if r.Matches(&p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductSource) UpdatePricing(_ context.Context, id int64, margin, calculated, final decimal.Decimal) error {
	m.updates = append(m.updates, pricingUpdate{id: id, margin: margin, calculated: calculated, final: final})
	return nil
}

// --- Helpers ---

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strp(s string) *string { return &s }
func i64p(v int64) *int64   { return &v }

func testProduct(id int64, sku, style string, brandID, categoryID int64, price string) catalog.Product {
	p := catalog.Product{
		ID:               id,
		SKU:              sku,
		StyleNumber:      style,
		BrandID:          &brandID,
		CategoryID:       &categoryID,
		Price:            dec(price),
		MarginPercentage: dec("30"),
		Active:           true,
	}
	p.Reprice()
	return p
}

func skuRule(id int64, sku, margin string, updated time.Time) Rule {
	return Rule{ID: id, Name: "sku " + sku, SKU: strp(sku), MarginPercentage: dec(margin), UpdatedAt: updated}
}

func brandRule(id, brandID int64, margin string, updated time.Time) Rule {
	return Rule{ID: id, Name: "brand", BrandID: i64p(brandID), MarginPercentage: dec(margin), UpdatedAt: updated}
}

// --- Scope tests ---

func TestRuleScope_ExactlyOne(t *testing.T) {
	r := Rule{SKU: strp("SKU-1"), MarginPercentage: dec("20")}
	kind, err := r.Scope()
	require.NoError(t, err)
	assert.Equal(t, ScopeSKU, kind)
}

func TestRuleScope_NoneSet(t *testing.T) {
	r := Rule{MarginPercentage: dec("20")}
	_, err := r.Scope()
	require.ErrorIs(t, err, ErrInvalidScope)
}

func TestRuleScope_MultipleSet(t *testing.T) {
	r := Rule{SKU: strp("SKU-1"), BrandID: i64p(3), MarginPercentage: dec("20")}
	_, err := r.Scope()
	require.ErrorIs(t, err, ErrInvalidScope)
}

func TestRuleValidate_NegativeMargin(t *testing.T) {
	r := Rule{SKU: strp("SKU-1"), MarginPercentage: dec("-5")}
	require.ErrorIs(t, r.Validate(), ErrInvalidMargin)
}

// --- Resolve tests ---

func TestResolve_SpecificityBeatsRecency(t *testing.T) {
	p := testProduct(1, "SKU-1", "ST-1", 3, 7, "100")

	// Brand rule updated later than the SKU rule; SKU must still win.
	rules := []Rule{
		skuRule(1, "SKU-1", "50", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		brandRule(2, 3, "10", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)),
	}

	margin, ok := Resolve(&p, rules)
	require.True(t, ok)
	assert.True(t, margin.Equal(dec("50")), "margin = %s", margin)
}

func TestResolve_RecencyBreaksTies(t *testing.T) {
	p := testProduct(1, "SKU-1", "ST-1", 3, 7, "100")

	rules := []Rule{
		skuRule(1, "SKU-1", "40", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		skuRule(2, "SKU-1", "45", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)),
	}

	margin, ok := Resolve(&p, rules)
	require.True(t, ok)
	assert.True(t, margin.Equal(dec("45")))
}

func TestResolve_NoMatch(t *testing.T) {
	p := testProduct(1, "SKU-1", "ST-1", 3, 7, "100")

	_, ok := Resolve(&p, []Rule{skuRule(1, "OTHER", "40", time.Time{})})
	assert.False(t, ok)
}

// --- Service tests ---

func TestServiceCreate_RepricesMatchingProducts(t *testing.T) {
	products := &mockProductSource{products: []catalog.Product{
		testProduct(1, "SKU-1", "ST-1", 3, 7, "100"),
		testProduct(2, "SKU-2", "ST-1", 3, 7, "200"),
	}}
	svc := NewService(&mockRuleRepo{}, products)

	r := Rule{Name: "brand uplift", BrandID: i64p(3), MarginPercentage: dec("20")}
	require.NoError(t, svc.Create(context.Background(), &r))

	require.Len(t, products.updates, 2)
	assert.True(t, products.updates[0].margin.Equal(dec("20")))
	assert.True(t, products.updates[0].calculated.Equal(dec("120")))
	assert.True(t, products.updates[1].calculated.Equal(dec("240")))
}

func TestServiceCreate_LowerPriorityRuleDoesNotOverride(t *testing.T) {
	repo := &mockRuleRepo{nextID: 10}
	sku := skuRule(10, "SKU-1", "50", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	repo.rules = []Rule{sku}

	products := &mockProductSource{products: []catalog.Product{
		testProduct(1, "SKU-1", "ST-1", 3, 7, "100"),
	}}
	svc := NewService(repo, products)

	// Creating a brand-wide rule must leave the SKU-ruled product at the SKU
	// rule's margin, because resolution is priority-aware.
	r := Rule{Name: "brand", BrandID: i64p(3), MarginPercentage: dec("10")}
	require.NoError(t, svc.Create(context.Background(), &r))

	require.Len(t, products.updates, 1)
	assert.True(t, products.updates[0].margin.Equal(dec("50")), "margin = %s", products.updates[0].margin)
}

func TestServiceCreate_InvalidScopeRejected(t *testing.T) {
	svc := NewService(&mockRuleRepo{}, &mockProductSource{})

	err := svc.Create(context.Background(), &Rule{Name: "inert", MarginPercentage: dec("20")})
	require.ErrorIs(t, err, ErrInvalidScope)
}

func TestServiceDelete_FallsBackToLowerPriorityRule(t *testing.T) {
	repo := &mockRuleRepo{nextID: 2}
	repo.rules = []Rule{
		skuRule(1, "SKU-1", "50", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
		brandRule(2, 3, "15", time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)),
	}
	products := &mockProductSource{products: []catalog.Product{
		testProduct(1, "SKU-1", "ST-1", 3, 7, "100"),
	}}
	svc := NewService(repo, products)

	require.NoError(t, svc.Delete(context.Background(), 1))

	require.Len(t, products.updates, 1)
	assert.True(t, products.updates[0].margin.Equal(dec("15")))
}

func TestServiceDelete_NoRemainingRuleKeepsMargin(t *testing.T) {
	repo := &mockRuleRepo{nextID: 1}
	repo.rules = []Rule{
		skuRule(1, "SKU-1", "50", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)),
	}
	products := &mockProductSource{products: []catalog.Product{
		testProduct(1, "SKU-1", "ST-1", 3, 7, "100"),
	}}
	svc := NewService(repo, products)

	require.NoError(t, svc.Delete(context.Background(), 1))

	assert.Empty(t, products.updates, "no recompute expected when no rule matches")
}

func TestServicePreview_StatsAndSample(t *testing.T) {
	products := &mockProductSource{products: []catalog.Product{
		testProduct(1, "SKU-1", "ST-1", 3, 7, "100"),
		testProduct(2, "SKU-2", "ST-1", 3, 7, "200"),
	}}
	svc := NewService(&mockRuleRepo{}, products)

	pv, err := svc.Preview(context.Background(), &Rule{
		Name:             "candidate",
		BrandID:          i64p(3),
		MarginPercentage: dec("20"),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, pv.AffectedCount)
	assert.True(t, pv.MinPrice.Equal(dec("120")))
	assert.True(t, pv.MaxPrice.Equal(dec("240")))
	assert.True(t, pv.AvgPrice.Equal(dec("180")))
	require.Len(t, pv.Sample, 2)
	assert.True(t, pv.Sample[0].NewPrice.Equal(dec("120")))

	// Preview never writes.
	assert.Empty(t, products.updates)
}
