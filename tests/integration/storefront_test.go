//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[envelope[[]productResponse]](t, resp)
	if !body.Success {
		t.Fatalf("expected success envelope, got error %q", body.Error)
	}
	if len(body.Data) < 6 {
		t.Fatalf("expected at least 6 seeded products, got %d", len(body.Data))
	}
	for _, p := range body.Data {
		if p.SKU == "" || p.Price == "" {
			t.Errorf("product %d missing sku or price: %+v", p.ID, p)
		}
	}
}

func TestGetUnknownProduct(t *testing.T) {
	resp := doGet(t, "/api/products/999999")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeJSON[envelope[any]](t, resp)
	if body.Success {
		t.Fatal("expected success=false on 404")
	}
}

func TestCartLifecycle(t *testing.T) {
	session := map[string]string{sessionHeader: fmt.Sprintf("it-cart-%d", time.Now().UnixNano())}

	products := listProducts(t)
	productID := products[0].ID

	// Add twice: quantity accumulates.
	resp := doReq(t, http.MethodPost, "/api/cart", map[string]any{
		"product_id": productID, "quantity": 1,
	}, session)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add to cart: expected 200, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodPost, "/api/cart", map[string]any{
		"product_id": productID, "quantity": 2,
	}, session)
	resp.Body.Close()

	resp = doReq(t, http.MethodGet, "/api/cart", nil, session)
	defer resp.Body.Close()
	body := decodeJSON[envelope[cartResponse]](t, resp)
	if len(body.Data.Items) != 1 {
		t.Fatalf("expected 1 cart item, got %d", len(body.Data.Items))
	}
	if got := body.Data.Items[0].Quantity; got != 3 {
		t.Fatalf("expected accumulated quantity 3, got %d", got)
	}
}

func TestCheckoutPlacesOrderAndClearsCart(t *testing.T) {
	session := fmt.Sprintf("it-checkout-%d", time.Now().UnixNano())
	headers := map[string]string{sessionHeader: session}

	products := listProducts(t)
	p := products[0]

	resp := doReq(t, http.MethodPost, "/api/cart", map[string]any{
		"product_id": p.ID, "quantity": 2,
	}, headers)
	resp.Body.Close()

	resp = doReq(t, http.MethodPost, "/api/checkout", map[string]any{
		"customer": map[string]any{
			"first_name":        "Imogen",
			"last_name":         "Clarke",
			"email":             fmt.Sprintf("imogen+%s@example.com", session),
			"shipping_postcode": "SW1A 1AA",
		},
		"lines": []map[string]any{
			{"product_id": p.ID, "name": p.Name, "unit_price": p.Price, "quantity": 2},
		},
		"session_id": session,
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout: expected 201, got %d", resp.StatusCode)
	}

	body := decodeJSON[envelope[checkoutResponse]](t, resp)
	o := body.Data.Order
	if o.OrderNumber == "" {
		t.Fatal("expected an order number")
	}
	if o.DeliveryStatus != "new" {
		t.Fatalf("expected delivery_status new, got %q", o.DeliveryStatus)
	}
	if o.Totals.Total == "" {
		t.Fatal("expected computed totals")
	}

	// Cart is cleared inside the checkout transaction.
	resp = doReq(t, http.MethodGet, "/api/cart", nil, headers)
	defer resp.Body.Close()
	cartBody := decodeJSON[envelope[cartResponse]](t, resp)
	if len(cartBody.Data.Items) != 0 {
		t.Fatalf("expected empty cart after checkout, got %d items", len(cartBody.Data.Items))
	}
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	resp := doReq(t, http.MethodPost, "/api/checkout", map[string]any{
		"customer": map[string]any{
			"first_name": "Imogen", "last_name": "Clarke", "email": "imogen@example.com",
		},
		"lines": []map[string]any{},
	}, nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func listProducts(t *testing.T) []productResponse {
	t.Helper()

	resp := doGet(t, "/api/products")
	defer resp.Body.Close()
	body := decodeJSON[envelope[[]productResponse]](t, resp)
	if len(body.Data) == 0 {
		t.Fatal("no products available")
	}
	return body.Data
}
