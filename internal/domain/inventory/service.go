package inventory

import (
	"context"
)

// AdjustRequest is a batch stock adjustment.
type AdjustRequest struct {
	ProductIDs []int64
	Type       ChangeType
	Quantity   int
	Reason     string
	Actor      string
}

// ItemError reports a per-product failure inside a batch.
type ItemError struct {
	ProductID int64
	Err       error
}

// BatchResult carries the successful movements and per-item errors of a
// best-effort batch adjustment.
type BatchResult struct {
	Results []Movement
	Errors  []ItemError
}

// Service implements stock adjustment semantics on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates an inventory Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Adjust applies the adjustment to each product independently. A failure on
// one product never aborts the batch; callers must inspect Errors to learn
// which ids failed.
func (s *Service) Adjust(ctx context.Context, req AdjustRequest) (*BatchResult, error) {
	if err := validateAdjust(req); err != nil {
		return nil, err
	}

	out := &BatchResult{}
	for _, id := range req.ProductIDs {
		mv, err := s.repo.ApplyAdjustment(ctx, id, req.Type, req.Quantity, req.Reason, req.Actor)
		if err != nil {
			out.Errors = append(out.Errors, ItemError{ProductID: id, Err: err})
			continue
		}
		out.Results = append(out.Results, *mv)
	}
	return out, nil
}

// SetReorderPoints updates the reorder point across a batch of products.
func (s *Service) SetReorderPoints(ctx context.Context, productIDs []int64, point int) (int64, error) {
	if len(productIDs) == 0 {
		return 0, ErrEmptyBatch
	}
	if len(productIDs) > MaxBatchSize {
		return 0, ErrBatchTooLarge
	}
	if point < 0 {
		return 0, ErrNegativeQuantity
	}
	return s.repo.SetReorderPoints(ctx, productIDs, point)
}

// History returns ledger rows, newest first.
func (s *Service) History(ctx context.Context, f HistoryFilter) ([]Movement, error) {
	return s.repo.History(ctx, f)
}

// Stats returns the aggregate stock dashboard numbers.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// Alerts returns products at or below their reorder point.
func (s *Service) Alerts(ctx context.Context) ([]Alert, error) {
	return s.repo.Alerts(ctx)
}

func validateAdjust(req AdjustRequest) error {
	switch req.Type {
	case ChangeSet, ChangeAdd, ChangeSubtract:
	default:
		return ErrInvalidChangeType
	}
	if req.Quantity < 0 {
		return ErrNegativeQuantity
	}
	if len(req.ProductIDs) == 0 {
		return ErrEmptyBatch
	}
	if len(req.ProductIDs) > MaxBatchSize {
		return ErrBatchTooLarge
	}
	return nil
}
