package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/astgolf/proshop/internal/domain/pricing"
)

type marginRulePayload struct {
	Name             string          `json:"name"`
	SKU              *string         `json:"sku"`
	StyleNumber      *string         `json:"style_number"`
	CategoryID       *int64          `json:"category_id"`
	BrandID          *int64          `json:"brand_id"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
}

type marginRuleResponse struct {
	ID int64 `json:"id"`
	marginRulePayload
	Scope     string    `json:"scope"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toMarginRuleResponse(r *pricing.Rule) marginRuleResponse {
	scope, _ := r.Scope()
	return marginRuleResponse{
		ID: r.ID,
		marginRulePayload: marginRulePayload{
			Name:             r.Name,
			SKU:              r.SKU,
			StyleNumber:      r.StyleNumber,
			CategoryID:       r.CategoryID,
			BrandID:          r.BrandID,
			MarginPercentage: r.MarginPercentage,
		},
		Scope:     string(scope),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (p *marginRulePayload) toRule() pricing.Rule {
	return pricing.Rule{
		Name:             p.Name,
		SKU:              p.SKU,
		StyleNumber:      p.StyleNumber,
		CategoryID:       p.CategoryID,
		BrandID:          p.BrandID,
		MarginPercentage: p.MarginPercentage,
	}
}

func (h *Handler) adminListMarginRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.pricing.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]marginRuleResponse, len(rules))
	for i := range rules {
		out[i] = toMarginRuleResponse(&rules[i])
	}
	respondData(w, http.StatusOK, out)
}

func (h *Handler) adminGetMarginRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	rule, err := h.pricing.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toMarginRuleResponse(rule))
}

func (h *Handler) adminCreateMarginRule(w http.ResponseWriter, r *http.Request) {
	var req marginRulePayload
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rule := req.toRule()
	if err := h.pricing.Create(r.Context(), &rule); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toMarginRuleResponse(&rule))
}

func (h *Handler) adminUpdateMarginRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	var req marginRulePayload
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rule := req.toRule()
	rule.ID = id
	if err := h.pricing.Update(r.Context(), &rule); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toMarginRuleResponse(&rule))
}

func (h *Handler) adminDeleteMarginRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid rule id")
		return
	}
	if err := h.pricing.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}

type previewProductResponse struct {
	ID           int64           `json:"id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	CurrentPrice decimal.Decimal `json:"current_price"`
	NewPrice     decimal.Decimal `json:"new_price"`
}

type previewResponse struct {
	AffectedCount int                      `json:"affected_count"`
	AvgPrice      decimal.Decimal          `json:"avg_price"`
	MinPrice      decimal.Decimal          `json:"min_price"`
	MaxPrice      decimal.Decimal          `json:"max_price"`
	Sample        []previewProductResponse `json:"sample"`
}

// adminPreviewMarginRule computes the impact a candidate rule would have
// without writing anything.
func (h *Handler) adminPreviewMarginRule(w http.ResponseWriter, r *http.Request) {
	var req marginRulePayload
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rule := req.toRule()
	preview, err := h.pricing.Preview(r.Context(), &rule)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := previewResponse{
		AffectedCount: preview.AffectedCount,
		AvgPrice:      preview.AvgPrice,
		MinPrice:      preview.MinPrice,
		MaxPrice:      preview.MaxPrice,
		Sample:        make([]previewProductResponse, len(preview.Sample)),
	}
	for i, p := range preview.Sample {
		resp.Sample[i] = previewProductResponse{
			ID:           p.ID,
			SKU:          p.SKU,
			Name:         p.Name,
			CurrentPrice: p.CurrentPrice,
			NewPrice:     p.NewPrice,
		}
	}
	respondData(w, http.StatusOK, resp)
}
