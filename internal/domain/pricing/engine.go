package pricing

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/astgolf/proshop/internal/domain/catalog"
)

// Resolve returns the effective margin for a product from the given rule
// set. The highest-priority matching rule wins (SKU > style > category >
// brand); among matching rules of the same scope, the most recently updated
// wins. The second return is false when no rule matches.
func Resolve(p *catalog.Product, rules []Rule) (decimal.Decimal, bool) {
	var (
		best     *Rule
		bestPrio int
	)
	for i := range rules {
		r := &rules[i]
		kind, err := r.Scope()
		if err != nil || !r.Matches(p) {
			continue
		}
		prio := kind.Priority()
		switch {
		case best == nil, prio > bestPrio:
			best, bestPrio = r, prio
		case prio == bestPrio && r.UpdatedAt.After(best.UpdatedAt):
			best = r
		}
	}
	if best == nil {
		return decimal.Zero, false
	}
	return best.MarginPercentage, true
}

// Preview describes the impact a candidate rule would have, without writing.
type Preview struct {
	AffectedCount int
	AvgPrice      decimal.Decimal
	MinPrice      decimal.Decimal
	MaxPrice      decimal.Decimal
	Sample        []PreviewProduct
}

// PreviewProduct is one affected product with its current and resulting
// final prices.
type PreviewProduct struct {
	ID           int64
	SKU          string
	Name         string
	CurrentPrice decimal.Decimal
	NewPrice     decimal.Decimal
}

// previewSampleSize caps the number of sample products in a preview.
const previewSampleSize = 10

// Service coordinates rule CRUD with priority-aware recomputation of the
// affected products' stored price columns.
type Service struct {
	rules    Repository
	products ProductSource
}

// NewService creates a pricing Service.
func NewService(rules Repository, products ProductSource) *Service {
	return &Service{rules: rules, products: products}
}

// List returns all margin rules.
func (s *Service) List(ctx context.Context) ([]Rule, error) {
	return s.rules.List(ctx)
}

// Get returns a single rule by id.
func (s *Service) Get(ctx context.Context, id int64) (*Rule, error) {
	return s.rules.GetByID(ctx, id)
}

// Create validates and persists a new rule, then recomputes every product
// covered by its scope.
func (s *Service) Create(ctx context.Context, r *Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.rules.Create(ctx, r); err != nil {
		return errors.Wrap(err, "create rule")
	}
	return s.reapply(ctx, r)
}

// Update validates and persists rule changes, then recomputes every product
// covered by its scope.
func (s *Service) Update(ctx context.Context, r *Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := s.rules.Update(ctx, r); err != nil {
		return errors.Wrap(err, "update rule")
	}
	return s.reapply(ctx, r)
}

// Delete removes a rule and recomputes the products it covered so any
// lower-priority matching rule takes over. Products left with no matching
// rule keep their current margin.
func (s *Service) Delete(ctx context.Context, id int64) error {
	r, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.rules.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "delete rule")
	}
	return s.reapply(ctx, r)
}

// Preview computes the impact a candidate rule would have on its scope.
func (s *Service) Preview(ctx context.Context, candidate *Rule) (*Preview, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	products, err := s.products.MatchingProducts(ctx, candidate)
	if err != nil {
		return nil, errors.Wrap(err, "matching products")
	}

	pv := &Preview{AffectedCount: len(products)}
	sum := decimal.Zero
	for i := range products {
		p := &products[i]
		_, final := catalog.Reprice(p.Price, candidate.MarginPercentage, p.IsSpecialOffer, p.OfferDiscountPercentage)

		sum = sum.Add(final)
		if i == 0 || final.LessThan(pv.MinPrice) {
			pv.MinPrice = final
		}
		if i == 0 || final.GreaterThan(pv.MaxPrice) {
			pv.MaxPrice = final
		}
		if len(pv.Sample) < previewSampleSize {
			pv.Sample = append(pv.Sample, PreviewProduct{
				ID:           p.ID,
				SKU:          p.SKU,
				Name:         p.Name,
				CurrentPrice: p.FinalPrice,
				NewPrice:     final,
			})
		}
	}
	if pv.AffectedCount > 0 {
		pv.AvgPrice = sum.Div(decimal.NewFromInt(int64(pv.AffectedCount))).Round(2)
	}
	return pv, nil
}

// reapply recomputes price columns for all products in the given rule's
// scope by resolving the full rule set per product.
func (s *Service) reapply(ctx context.Context, scope *Rule) error {
	products, err := s.products.MatchingProducts(ctx, scope)
	if err != nil {
		return errors.Wrap(err, "matching products")
	}

	all, err := s.rules.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list rules")
	}

	for i := range products {
		p := &products[i]
		margin, ok := Resolve(p, all)
		if !ok {
			continue
		}
		calculated, final := catalog.Reprice(p.Price, margin, p.IsSpecialOffer, p.OfferDiscountPercentage)
		if err := s.products.UpdatePricing(ctx, p.ID, margin, calculated, final); err != nil {
			return errors.Wrapf(err, "update pricing for product %d", p.ID)
		}
	}
	return nil
}
