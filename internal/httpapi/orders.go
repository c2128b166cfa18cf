package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/astgolf/proshop/internal/domain/order"
)

type orderDetailResponse struct {
	orderResponse
	CustomerID       int64               `json:"customer_id,omitempty"`
	CustomerPhone    string              `json:"customer_phone,omitempty"`
	ShippingLine1    string              `json:"shipping_line1,omitempty"`
	ShippingLine2    string              `json:"shipping_line2,omitempty"`
	ShippingCity     string              `json:"shipping_city,omitempty"`
	ShippingPostcode string              `json:"shipping_postcode,omitempty"`
	Courier          string              `json:"courier,omitempty"`
	TrackingNumber   string              `json:"tracking_number,omitempty"`
	ConfirmedAt      *time.Time          `json:"confirmed_at,omitempty"`
	DeliveryBookedAt *time.Time          `json:"delivery_booked_at,omitempty"`
	ShippedAt        *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	Lines            []orderLineResponse `json:"lines,omitempty"`
}

type orderLineResponse struct {
	ProductID    *int64          `json:"product_id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	Colour       string          `json:"colour,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

func (h *Handler) toOrderDetail(o *order.Order, lines []order.Line) orderDetailResponse {
	resp := orderDetailResponse{
		orderResponse:    toOrderResponse(o),
		CustomerID:       o.CustomerID,
		CustomerPhone:    o.CustomerPhone,
		ShippingLine1:    o.ShippingLine1,
		ShippingLine2:    o.ShippingLine2,
		ShippingCity:     o.ShippingCity,
		ShippingPostcode: o.ShippingPostcode,
		Courier:          o.Courier,
		TrackingNumber:   o.TrackingNumber,
		ConfirmedAt:      o.ConfirmedAt,
		DeliveryBookedAt: o.DeliveryBookedAt,
		ShippedAt:        o.ShippedAt,
		DeliveredAt:      o.DeliveredAt,
	}
	for _, l := range lines {
		resp.Lines = append(resp.Lines, orderLineResponse{
			ProductID:    l.ProductID,
			Name:         l.ProductName,
			SKU:          l.SKU,
			ImageURL:     h.imageURL(l.ImageURL),
			Colour:       l.Colour,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			LineSubtotal: l.LineSubtotal,
		})
	}
	return resp
}

func (h *Handler) adminListOrders(w http.ResponseWriter, r *http.Request) {
	f := order.ListFilter{
		Status: order.DeliveryStatus(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if v := int64(queryInt(r, "customer_id")); v > 0 {
		f.CustomerID = &v
	}

	orders, err := h.orders.List(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	respondData(w, http.StatusOK, out)
}

func (h *Handler) adminGetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}
	o, lines, err := h.orders.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.toOrderDetail(o, lines))
}

type progressRequest struct {
	Courier        string `json:"courier"`
	TrackingNumber string `json:"tracking_number"`
}

// adminProgressOrder advances an order one step along the delivery pipeline.
// The body is optional except when the next step is delivery_booked, which
// needs courier details.
func (h *Handler) adminProgressOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid order id")
		return
	}
	var req progressRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			respondErrorMessage(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	o, err := h.orders.Progress(r.Context(), id, order.ProgressParams{
		Courier:        req.Courier,
		TrackingNumber: req.TrackingNumber,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, h.toOrderDetail(o, nil))
}
