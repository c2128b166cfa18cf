package httpapi

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/astgolf/proshop/internal/domain/catalog"
)

// productResponse is the storefront product shape: sale price and stock
// only, no cost or margin.
type productResponse struct {
	ID             int64            `json:"id"`
	SKU            string           `json:"sku"`
	StyleNumber    string           `json:"style_number,omitempty"`
	Name           string           `json:"name"`
	Brand          string           `json:"brand,omitempty"`
	Category       string           `json:"category,omitempty"`
	Colour         string           `json:"colour,omitempty"`
	ImageURL       string           `json:"image_url,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	IsSpecialOffer bool             `json:"is_special_offer"`
	OfferDiscount  *decimal.Decimal `json:"offer_discount_percentage,omitempty"`
	StockQuantity  int              `json:"stock_quantity"`
}

// adminProductResponse additionally exposes cost, margin, and the derived
// price columns.
type adminProductResponse struct {
	productResponse
	CostPrice        decimal.Decimal `json:"cost_price"`
	MarginPercentage decimal.Decimal `json:"margin_percentage"`
	CalculatedPrice  decimal.Decimal `json:"calculated_price"`
	FinalPrice       decimal.Decimal `json:"final_price"`
	ReorderPoint     int             `json:"reorder_point"`
	Active           bool            `json:"active"`
}

func (h *Handler) toProductResponse(p *catalog.Product) productResponse {
	return productResponse{
		ID:             p.ID,
		SKU:            p.SKU,
		StyleNumber:    p.StyleNumber,
		Name:           p.Name,
		Brand:          p.BrandName,
		Category:       p.CategoryName,
		Colour:         p.Colour,
		ImageURL:       h.imageURL(p.ImageURL),
		Price:          p.FinalPrice,
		IsSpecialOffer: p.IsSpecialOffer,
		OfferDiscount:  p.OfferDiscountPercentage,
		StockQuantity:  p.StockQuantity,
	}
}

func (h *Handler) toAdminProductResponse(p *catalog.Product) adminProductResponse {
	return adminProductResponse{
		productResponse:  h.toProductResponse(p),
		CostPrice:        p.Price,
		MarginPercentage: p.MarginPercentage,
		CalculatedPrice:  p.CalculatedPrice,
		FinalPrice:       p.FinalPrice,
		ReorderPoint:     p.ReorderPoint,
		Active:           p.Active,
	}
}

func listFilterFromQuery(r *http.Request, includeInactive bool) catalog.ListFilter {
	f := catalog.ListFilter{
		Search:          r.URL.Query().Get("search"),
		StyleNumber:     r.URL.Query().Get("style"),
		IncludeInactive: includeInactive,
		Limit:           queryInt(r, "limit"),
		Offset:          queryInt(r, "offset"),
	}
	if v := int64(queryInt(r, "brand_id")); v > 0 {
		f.BrandID = &v
	}
	if v := int64(queryInt(r, "category_id")); v > 0 {
		f.CategoryID = &v
	}
	return f
}

// listProducts serves the storefront catalog: active products only.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), listFilterFromQuery(r, false))
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = h.toProductResponse(&products[i])
	}
	respondData(w, http.StatusOK, out)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !p.Active {
		respondError(w, r, catalog.ErrNotFound)
		return
	}
	respondData(w, http.StatusOK, h.toProductResponse(p))
}

func (h *Handler) adminListProducts(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	products, err := h.products.List(r.Context(), listFilterFromQuery(r, includeInactive))
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]adminProductResponse, len(products))
	for i := range products {
		out[i] = h.toAdminProductResponse(&products[i])
	}
	respondData(w, http.StatusOK, out)
}

func (h *Handler) adminGetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.toAdminProductResponse(p))
}

// updateProductRequest carries editable product fields. Stock is absent on
// purpose: it changes only through the inventory ledger.
type updateProductRequest struct {
	SKU              string           `json:"sku"`
	StyleNumber      string           `json:"style_number"`
	Name             string           `json:"name"`
	BrandID          *int64           `json:"brand_id"`
	CategoryID       *int64           `json:"category_id"`
	Colour           string           `json:"colour"`
	ImageURL         string           `json:"image_url"`
	Price            decimal.Decimal  `json:"price"`
	MarginPercentage decimal.Decimal  `json:"margin_percentage"`
	IsSpecialOffer   bool             `json:"is_special_offer"`
	OfferDiscount    *decimal.Decimal `json:"offer_discount_percentage"`
	ReorderPoint     int              `json:"reorder_point"`
	Active           bool             `json:"active"`
}

func (h *Handler) adminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" || req.SKU == "" {
		respondErrorMessage(w, http.StatusBadRequest, "name and sku are required")
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	p.SKU = req.SKU
	p.StyleNumber = req.StyleNumber
	p.Name = req.Name
	p.BrandID = req.BrandID
	p.CategoryID = req.CategoryID
	p.Colour = req.Colour
	p.ImageURL = req.ImageURL
	p.Price = req.Price
	p.MarginPercentage = req.MarginPercentage
	p.IsSpecialOffer = req.IsSpecialOffer
	p.OfferDiscountPercentage = req.OfferDiscount
	p.ReorderPoint = req.ReorderPoint
	p.Active = req.Active
	p.Reprice()

	if err := h.products.Update(r.Context(), p); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.toAdminProductResponse(p))
}

type styleGroupResponse struct {
	StyleNumber  string          `json:"style_number"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand,omitempty"`
	VariantCount int             `json:"variant_count"`
	MinPrice     decimal.Decimal `json:"min_price"`
	MaxPrice     decimal.Decimal `json:"max_price"`
	TotalStock   int             `json:"total_stock"`
}

func (h *Handler) adminListStyles(w http.ResponseWriter, r *http.Request) {
	styles, err := h.products.ListStyles(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]styleGroupResponse, len(styles))
	for i, s := range styles {
		out[i] = styleGroupResponse{
			StyleNumber:  s.StyleNumber,
			Name:         s.Name,
			Brand:        s.BrandName,
			VariantCount: s.VariantCount,
			MinPrice:     s.MinPrice,
			MaxPrice:     s.MaxPrice,
			TotalStock:   s.TotalStock,
		}
	}
	respondData(w, http.StatusOK, out)
}

type brandResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) adminListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.products.ListBrands(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]brandResponse, len(brands))
	for i, b := range brands {
		out[i] = brandResponse{ID: b.ID, Name: b.Name}
	}
	respondData(w, http.StatusOK, out)
}
