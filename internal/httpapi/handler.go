// Package httpapi exposes the storefront and back-office surfaces over JSON
// HTTP. Every response uses the {"success": bool} envelope; admin routes
// require an API key.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/astgolf/proshop/internal/domain/auth"
	"github.com/astgolf/proshop/internal/domain/cart"
	"github.com/astgolf/proshop/internal/domain/catalog"
	"github.com/astgolf/proshop/internal/domain/customer"
	"github.com/astgolf/proshop/internal/domain/inventory"
	"github.com/astgolf/proshop/internal/domain/order"
	"github.com/astgolf/proshop/internal/domain/pricing"
)

// SessionHeader identifies the client's cart session.
const SessionHeader = "X-Session-ID"

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product
	// responses. When empty, image paths are returned as stored.
	ImageBaseURL string
	// APIKeyPepper is the HMAC key for hashing admin API keys.
	APIKeyPepper []byte
}

// Handler serves the HTTP API, delegating business logic to the domain
// services and repositories.
type Handler struct {
	products  catalog.Repository
	pricing   *pricing.Service
	inventory *inventory.Service
	customers customer.Repository
	orders    *order.Service
	carts     cart.Repository

	guard        apiKeyGuard
	imageBaseURL string
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg Config,
	products catalog.Repository,
	pricingSvc *pricing.Service,
	inventorySvc *inventory.Service,
	customers customer.Repository,
	orderSvc *order.Service,
	carts cart.Repository,
	apikeys auth.Repository,
) *Handler {
	return &Handler{
		products:     products,
		pricing:      pricingSvc,
		inventory:    inventorySvc,
		customers:    customers,
		orders:       orderSvc,
		carts:        carts,
		guard:        apiKeyGuard{apikeys: apikeys, pepper: cfg.APIKeyPepper},
		imageBaseURL: cfg.ImageBaseURL,
	}
}

// Routes returns the API mux. Literal segments win over wildcards, so
// /products-admin/styles is routed ahead of /products-admin/{id}.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Storefront.
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("POST /api/checkout", h.checkout)
	mux.HandleFunc("GET /api/cart", h.listCart)
	mux.HandleFunc("POST /api/cart", h.addCartItem)
	mux.HandleFunc("PUT /api/cart/{productID}", h.setCartQuantity)
	mux.HandleFunc("DELETE /api/cart/{productID}", h.removeCartItem)
	mux.HandleFunc("DELETE /api/cart", h.clearCart)

	// Back office, behind the API key guard.
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, h.guard.require(fn))
	}
	admin("GET /api/products-admin", h.adminListProducts)
	admin("GET /api/products-admin/styles", h.adminListStyles)
	admin("GET /api/products-admin/brands", h.adminListBrands)
	admin("GET /api/products-admin/{id}", h.adminGetProduct)
	admin("PUT /api/products-admin/{id}", h.adminUpdateProduct)

	admin("GET /api/customers-admin", h.adminListCustomers)
	admin("POST /api/customers-admin", h.adminCreateCustomer)
	admin("GET /api/customers-admin/regions", h.adminRegionStats)
	admin("GET /api/customers-admin/{id}", h.adminGetCustomer)
	admin("PUT /api/customers-admin/{id}", h.adminUpdateCustomer)
	admin("DELETE /api/customers-admin/{id}", h.adminDeactivateCustomer)

	admin("GET /api/orders-admin", h.adminListOrders)
	admin("GET /api/orders-admin/{id}", h.adminGetOrder)
	admin("POST /api/orders-admin/{id}/progress", h.adminProgressOrder)

	admin("GET /api/inventory-admin/stats", h.adminInventoryStats)
	admin("GET /api/inventory-admin/alerts", h.adminInventoryAlerts)
	admin("GET /api/inventory-admin/history", h.adminInventoryHistory)
	admin("GET /api/inventory-admin/export", h.adminInventoryExport)
	admin("POST /api/inventory-admin/adjust", h.adminInventoryAdjust)
	admin("PUT /api/inventory-admin/reorder-point", h.adminSetReorderPoints)

	admin("GET /api/margin-rules", h.adminListMarginRules)
	admin("POST /api/margin-rules", h.adminCreateMarginRule)
	admin("POST /api/margin-rules/preview", h.adminPreviewMarginRule)
	admin("GET /api/margin-rules/{id}", h.adminGetMarginRule)
	admin("PUT /api/margin-rules/{id}", h.adminUpdateMarginRule)
	admin("DELETE /api/margin-rules/{id}", h.adminDeleteMarginRule)

	return mux
}

// pathID parses the {id} path segment.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// queryInt parses an optional integer query parameter, returning 0 when
// absent or malformed.
func queryInt(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}

func (h *Handler) imageURL(path string) string {
	if path == "" || h.imageBaseURL == "" {
		return path
	}
	if len(path) >= 4 && path[:4] == "http" {
		return path
	}
	return h.imageBaseURL + path
}
