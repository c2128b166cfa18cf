//go:build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestAdminRequiresAPIKey(t *testing.T) {
	resp := doGet(t, "/api/inventory-admin/stats")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodGet, "/api/inventory-admin/stats", nil,
		map[string]string{apiKeyHeader: "not-the-key"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong key, got %d", resp.StatusCode)
	}
}

func TestInventoryAdjustAndHistory(t *testing.T) {
	products := listProducts(t)
	p := products[len(products)-1]

	resp := doReq(t, http.MethodPost, "/api/inventory-admin/adjust", map[string]any{
		"product_ids": []int64{p.ID, 999999},
		"type":        "add",
		"quantity":    5,
		"reason":      "integration restock",
		"actor":       "tests",
	}, admin())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("adjust: expected 200, got %d", resp.StatusCode)
	}

	body := decodeJSON[envelope[adjustResponse]](t, resp)
	if len(body.Data.Results) != 1 {
		t.Fatalf("expected 1 successful adjustment, got %d", len(body.Data.Results))
	}
	if len(body.Data.Errors) != 1 || body.Data.Errors[0].ProductID != 999999 {
		t.Fatalf("expected per-item error for unknown product, got %+v", body.Data.Errors)
	}

	mv := body.Data.Results[0]
	if mv.ChangeAmount != mv.NewQuantity-mv.PreviousQuantity {
		t.Fatalf("change amount %d != new-previous %d", mv.ChangeAmount, mv.NewQuantity-mv.PreviousQuantity)
	}

	// The movement is visible in the ledger.
	resp = doReq(t, http.MethodGet, fmt.Sprintf("/api/inventory-admin/history?product_id=%d&limit=1", p.ID), nil, admin())
	defer resp.Body.Close()
	history := decodeJSON[envelope[[]movementResponse]](t, resp)
	if len(history.Data) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history.Data))
	}
}

func TestSubtractFloorsAtZero(t *testing.T) {
	products := listProducts(t)
	p := products[0]

	resp := doReq(t, http.MethodPost, "/api/inventory-admin/adjust", map[string]any{
		"product_ids": []int64{p.ID},
		"type":        "subtract",
		"quantity":    1_000_000,
		"reason":      "floor test",
		"actor":       "tests",
	}, admin())
	defer resp.Body.Close()

	body := decodeJSON[envelope[adjustResponse]](t, resp)
	if len(body.Data.Results) != 1 {
		t.Fatalf("expected 1 result, got %d (errors: %+v)", len(body.Data.Results), body.Data.Errors)
	}
	if got := body.Data.Results[0].NewQuantity; got != 0 {
		t.Fatalf("expected quantity floored at 0, got %d", got)
	}
}

func TestOrderProgressStateMachine(t *testing.T) {
	session := fmt.Sprintf("it-progress-%d", time.Now().UnixNano())
	products := listProducts(t)
	p := products[0]

	resp := doReq(t, http.MethodPost, "/api/checkout", map[string]any{
		"customer": map[string]any{
			"first_name": "Fraser", "last_name": "Boyd",
			"email": fmt.Sprintf("fraser+%s@example.com", session),
		},
		"lines": []map[string]any{
			{"product_id": p.ID, "name": p.Name, "unit_price": p.Price, "quantity": 1},
		},
	}, nil)
	checkout := decodeJSON[envelope[checkoutResponse]](t, resp)
	resp.Body.Close()
	orderID := checkout.Data.Order.ID

	progress := func(body map[string]any) (*http.Response, envelope[orderResponse]) {
		resp := doReq(t, http.MethodPost, fmt.Sprintf("/api/orders-admin/%d/progress", orderID), body, admin())
		out := decodeJSON[envelope[orderResponse]](t, resp)
		resp.Body.Close()
		return resp, out
	}

	// new -> confirmed.
	r, out := progress(nil)
	if r.StatusCode != http.StatusOK || out.Data.DeliveryStatus != "confirmed" {
		t.Fatalf("confirm: status %d, delivery %q", r.StatusCode, out.Data.DeliveryStatus)
	}

	// confirmed -> delivery_booked needs courier details.
	r, _ = progress(nil)
	if r.StatusCode != http.StatusBadRequest {
		t.Fatalf("booking without courier: expected 400, got %d", r.StatusCode)
	}
	r, out = progress(map[string]any{"courier": "DPD", "tracking_number": "DPD0001"})
	if r.StatusCode != http.StatusOK || out.Data.DeliveryStatus != "delivery_booked" {
		t.Fatalf("book: status %d, delivery %q", r.StatusCode, out.Data.DeliveryStatus)
	}

	// delivery_booked -> in_transit -> delivered.
	r, out = progress(nil)
	if out.Data.DeliveryStatus != "in_transit" {
		t.Fatalf("ship: delivery %q", out.Data.DeliveryStatus)
	}
	r, out = progress(nil)
	if out.Data.DeliveryStatus != "delivered" {
		t.Fatalf("deliver: delivery %q", out.Data.DeliveryStatus)
	}

	// delivered is terminal.
	r, _ = progress(nil)
	if r.StatusCode != http.StatusConflict {
		t.Fatalf("progress past delivered: expected 409, got %d", r.StatusCode)
	}
}

func TestRegionStatsAfterCheckout(t *testing.T) {
	resp := doReq(t, http.MethodGet, "/api/customers-admin/regions", nil, admin())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestInventoryExportIsXLSX(t *testing.T) {
	resp := doReq(t, http.MethodGet, "/api/inventory-admin/export", nil, admin())
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("unexpected content type %q", ct)
	}
}
