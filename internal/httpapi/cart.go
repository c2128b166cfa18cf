package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type cartLineResponse struct {
	ProductID     int64           `json:"product_id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	ImageURL      string          `json:"image_url,omitempty"`
	Colour        string          `json:"colour,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	LineSubtotal  decimal.Decimal `json:"line_subtotal"`
	StockQuantity int             `json:"stock_quantity"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type cartResponse struct {
	Items    []cartLineResponse `json:"items"`
	Subtotal decimal.Decimal    `json:"subtotal"`
}

// sessionID extracts the cart session header; empty means the request has no
// cart to act on.
func sessionID(r *http.Request) string {
	return r.Header.Get(SessionHeader)
}

func (h *Handler) listCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		respondErrorMessage(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
		return
	}

	lines, err := h.carts.List(r.Context(), sid)
	if err != nil {
		respondError(w, r, err)
		return
	}

	subtotal := decimal.Zero
	items := make([]cartLineResponse, len(lines))
	for i, l := range lines {
		lineSubtotal := l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
		subtotal = subtotal.Add(lineSubtotal)
		items[i] = cartLineResponse{
			ProductID:     l.ProductID,
			Name:          l.ProductName,
			SKU:           l.SKU,
			ImageURL:      h.imageURL(l.ImageURL),
			Colour:        l.Colour,
			UnitPrice:     l.UnitPrice,
			Quantity:      l.Quantity,
			LineSubtotal:  lineSubtotal,
			StockQuantity: l.StockQuantity,
			UpdatedAt:     l.UpdatedAt,
		}
	}
	respondData(w, http.StatusOK, cartResponse{Items: items, Subtotal: subtotal.Round(2)})
}

type addCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		respondErrorMessage(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
		return
	}
	var req addCartRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	// The product must exist and be purchasable before it enters a cart.
	p, err := h.products.GetByID(r.Context(), req.ProductID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !p.Active {
		respondErrorMessage(w, http.StatusBadRequest, "product is not available")
		return
	}

	item, err := h.carts.Add(r.Context(), sid, req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"product_id": item.ProductID,
		"quantity":   item.Quantity,
	})
}

type setCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		respondErrorMessage(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
		return
	}
	id, ok := pathID(r, "productID")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req setCartQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.carts.SetQuantity(r.Context(), sid, id, req.Quantity); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{
		"product_id": id,
		"quantity":   req.Quantity,
	})
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		respondErrorMessage(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
		return
	}
	id, ok := pathID(r, "productID")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid product id")
		return
	}
	if err := h.carts.Remove(r.Context(), sid, id); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	if sid == "" {
		respondErrorMessage(w, http.StatusBadRequest, "missing "+SessionHeader+" header")
		return
	}
	if err := h.carts.Clear(r.Context(), sid); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}
