package httpapi

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/astgolf/proshop/internal/domain/customer"
)

type addressPayload struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
}

type customerPayload struct {
	Type        string         `json:"type"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	CompanyName string         `json:"company_name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Billing     addressPayload `json:"billing"`
	Shipping    addressPayload `json:"shipping"`
	Active      *bool          `json:"active"`
}

type customerResponse struct {
	ID                 int64           `json:"id"`
	Type               string          `json:"type"`
	Name               string          `json:"name"`
	FirstName          string          `json:"first_name,omitempty"`
	LastName           string          `json:"last_name,omitempty"`
	CompanyName        string          `json:"company_name,omitempty"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone,omitempty"`
	Billing            addressPayload  `json:"billing"`
	Shipping           addressPayload  `json:"shipping"`
	LocationRegion     string          `json:"location_region"`
	TotalSpent         decimal.Decimal `json:"total_spent"`
	OrderCount         int             `json:"order_count"`
	AverageOrderValue  decimal.Decimal `json:"average_order_value"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	Active             bool            `json:"active"`
	CreatedAt          time.Time       `json:"created_at"`
}

func toCustomerResponse(c *customer.Customer) customerResponse {
	return customerResponse{
		ID:          c.ID,
		Type:        string(c.Type),
		Name:        c.Name(),
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		CompanyName: c.CompanyName,
		Email:       c.Email,
		Phone:       c.Phone,
		Billing: addressPayload{
			Line1: c.Billing.Line1, Line2: c.Billing.Line2,
			City: c.Billing.City, Postcode: c.Billing.Postcode,
		},
		Shipping: addressPayload{
			Line1: c.Shipping.Line1, Line2: c.Shipping.Line2,
			City: c.Shipping.City, Postcode: c.Shipping.Postcode,
		},
		LocationRegion:     c.LocationRegion,
		TotalSpent:         c.TotalSpent,
		OrderCount:         c.OrderCount,
		AverageOrderValue:  c.AverageOrderValue,
		OutstandingBalance: c.OutstandingBalance,
		Active:             c.Active,
		CreatedAt:          c.CreatedAt,
	}
}

func (h *Handler) adminListCustomers(w http.ResponseWriter, r *http.Request) {
	f := customer.ListFilter{
		Search:          r.URL.Query().Get("search"),
		Region:          r.URL.Query().Get("region"),
		Type:            customer.Type(r.URL.Query().Get("type")),
		IncludeInactive: r.URL.Query().Get("include_inactive") == "true",
		Limit:           queryInt(r, "limit"),
		Offset:          queryInt(r, "offset"),
	}
	customers, err := h.customers.List(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]customerResponse, len(customers))
	for i := range customers {
		out[i] = toCustomerResponse(&customers[i])
	}
	respondData(w, http.StatusOK, out)
}

func (h *Handler) adminGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toCustomerResponse(c))
}

func (p *customerPayload) apply(c *customer.Customer) {
	c.Type = customer.Type(p.Type)
	c.FirstName = p.FirstName
	c.LastName = p.LastName
	c.CompanyName = p.CompanyName
	c.Email = p.Email
	c.Phone = p.Phone
	c.Billing = customer.Address{
		Line1: p.Billing.Line1, Line2: p.Billing.Line2,
		City: p.Billing.City, Postcode: p.Billing.Postcode,
	}
	c.Shipping = customer.Address{
		Line1: p.Shipping.Line1, Line2: p.Shipping.Line2,
		City: p.Shipping.City, Postcode: p.Shipping.Postcode,
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
}

func (h *Handler) adminCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerPayload
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var c customer.Customer
	req.apply(&c)
	if err := h.customers.Create(r.Context(), &c); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, toCustomerResponse(&c))
}

func (h *Handler) adminUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	var req customerPayload
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.customers.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	req.apply(c)
	if err := h.customers.Update(r.Context(), c); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) adminDeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondErrorMessage(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if err := h.customers.Deactivate(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, nil)
}

type regionStatResponse struct {
	Region        string          `json:"region"`
	CustomerCount int             `json:"customer_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

func (h *Handler) adminRegionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.customers.RegionStats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]regionStatResponse, len(stats))
	for i, s := range stats {
		out[i] = regionStatResponse{Region: s.Region, CustomerCount: s.CustomerCount, TotalRevenue: s.TotalRevenue}
	}
	respondData(w, http.StatusOK, out)
}
