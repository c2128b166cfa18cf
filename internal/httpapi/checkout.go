package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/astgolf/proshop/internal/domain/order"
)

type checkoutCustomer struct {
	Type             string `json:"type"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	CompanyName      string `json:"company_name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	BillingLine1     string `json:"billing_line1"`
	BillingLine2     string `json:"billing_line2"`
	BillingCity      string `json:"billing_city"`
	BillingPostcode  string `json:"billing_postcode"`
	ShippingLine1    string `json:"shipping_line1"`
	ShippingLine2    string `json:"shipping_line2"`
	ShippingCity     string `json:"shipping_city"`
	ShippingPostcode string `json:"shipping_postcode"`
}

type checkoutLine struct {
	ProductID *int64          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	ImageURL  string          `json:"image_url"`
	Colour    string          `json:"colour"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

type checkoutTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type checkoutRequest struct {
	Customer      checkoutCustomer `json:"customer"`
	Lines         []checkoutLine   `json:"lines"`
	PaymentMethod string           `json:"payment_method"`
	SessionID     string           `json:"session_id"`
	// Totals, when present, are trusted as supplied.
	Totals *checkoutTotals `json:"totals"`
}

type checkoutLineResponse struct {
	checkoutLine
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

type orderResponse struct {
	ID             int64          `json:"id"`
	OrderNumber    string         `json:"order_number"`
	CustomerName   string         `json:"customer_name"`
	CustomerEmail  string         `json:"customer_email"`
	PaymentMethod  string         `json:"payment_method,omitempty"`
	PaymentStatus  string         `json:"payment_status"`
	Totals         checkoutTotals `json:"totals"`
	ItemCount      int            `json:"item_count"`
	DeliveryStatus string         `json:"delivery_status"`
	CreatedAt      time.Time      `json:"created_at"`
}

type checkoutResponse struct {
	Order orderResponse          `json:"order"`
	Lines []checkoutLineResponse `json:"lines"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	lines := make([]order.Line, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = order.Line{
			ProductID:   l.ProductID,
			ProductName: l.Name,
			SKU:         l.SKU,
			ImageURL:    l.ImageURL,
			Colour:      l.Colour,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		}
	}

	domainReq := order.CheckoutRequest{
		Customer: order.CustomerInfo{
			Type:             req.Customer.Type,
			FirstName:        req.Customer.FirstName,
			LastName:         req.Customer.LastName,
			CompanyName:      req.Customer.CompanyName,
			Email:            req.Customer.Email,
			Phone:            req.Customer.Phone,
			BillingLine1:     req.Customer.BillingLine1,
			BillingLine2:     req.Customer.BillingLine2,
			BillingCity:      req.Customer.BillingCity,
			BillingPostcode:  req.Customer.BillingPostcode,
			ShippingLine1:    req.Customer.ShippingLine1,
			ShippingLine2:    req.Customer.ShippingLine2,
			ShippingCity:     req.Customer.ShippingCity,
			ShippingPostcode: req.Customer.ShippingPostcode,
		},
		Lines:         lines,
		PaymentMethod: req.PaymentMethod,
		SessionID:     req.SessionID,
	}
	if req.Totals != nil {
		domainReq.Totals = &order.Totals{
			Subtotal: req.Totals.Subtotal,
			Tax:      req.Totals.Tax,
			Shipping: req.Totals.Shipping,
			Total:    req.Totals.Total,
		}
	}

	result, err := h.orders.Checkout(r.Context(), domainReq)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respLines := make([]checkoutLineResponse, len(result.Lines))
	for i, l := range result.Lines {
		respLines[i] = checkoutLineResponse{
			checkoutLine: checkoutLine{
				ProductID: l.ProductID,
				Name:      l.ProductName,
				SKU:       l.SKU,
				ImageURL:  h.imageURL(l.ImageURL),
				Colour:    l.Colour,
				UnitPrice: l.UnitPrice,
				Quantity:  l.Quantity,
			},
			LineSubtotal: l.LineSubtotal,
		}
	}
	respondData(w, http.StatusCreated, checkoutResponse{
		Order: toOrderResponse(result.Order),
		Lines: respLines,
	})
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		CustomerName:  o.CustomerName,
		CustomerEmail: o.CustomerEmail,
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Totals: checkoutTotals{
			Subtotal: o.Subtotal,
			Tax:      o.Tax,
			Shipping: o.Shipping,
			Total:    o.Total,
		},
		ItemCount:      o.ItemCount,
		DeliveryStatus: string(o.DeliveryStatus),
		CreatedAt:      o.CreatedAt,
	}
}
