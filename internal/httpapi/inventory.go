package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/astgolf/proshop/internal/domain/catalog"
	"github.com/astgolf/proshop/internal/domain/inventory"
)

type statsResponse struct {
	TotalProducts   int             `json:"total_products"`
	InStock         int             `json:"in_stock"`
	LowStock        int             `json:"low_stock"`
	OutOfStock      int             `json:"out_of_stock"`
	TotalUnits      int             `json:"total_units"`
	ValuationAtCost decimal.Decimal `json:"valuation_at_cost"`
	ValuationRetail decimal.Decimal `json:"valuation_retail"`
}

func (h *Handler) adminInventoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.inventory.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, statsResponse{
		TotalProducts:   stats.TotalProducts,
		InStock:         stats.InStock,
		LowStock:        stats.LowStock,
		OutOfStock:      stats.OutOfStock,
		TotalUnits:      stats.TotalUnits,
		ValuationAtCost: stats.ValuationAtCost,
		ValuationRetail: stats.ValuationRetail,
	})
}

type alertResponse struct {
	ProductID    int64  `json:"product_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ReorderPoint int    `json:"reorder_point"`
	Status       string `json:"status"`
}

func (h *Handler) adminInventoryAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.inventory.Alerts(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]alertResponse, len(alerts))
	for i, a := range alerts {
		out[i] = alertResponse{
			ProductID:    a.ProductID,
			SKU:          a.SKU,
			Name:         a.Name,
			Quantity:     a.Quantity,
			ReorderPoint: a.ReorderPoint,
			Status:       string(a.Status),
		}
	}
	respondData(w, http.StatusOK, out)
}

type movementResponse struct {
	ID               int64     `json:"id"`
	ProductID        int64     `json:"product_id"`
	ProductName      string    `json:"product_name"`
	SKU              string    `json:"sku"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	ChangeAmount     int       `json:"change_amount"`
	ChangeType       string    `json:"change_type"`
	Reason           string    `json:"reason,omitempty"`
	Actor            string    `json:"actor,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toMovementResponse(m *inventory.Movement) movementResponse {
	return movementResponse{
		ID:               m.ID,
		ProductID:        m.ProductID,
		ProductName:      m.ProductName,
		SKU:              m.SKU,
		PreviousQuantity: m.PreviousQuantity,
		NewQuantity:      m.NewQuantity,
		ChangeAmount:     m.ChangeAmount,
		ChangeType:       string(m.ChangeType),
		Reason:           m.Reason,
		Actor:            m.Actor,
		CreatedAt:        m.CreatedAt,
	}
}

func (h *Handler) adminInventoryHistory(w http.ResponseWriter, r *http.Request) {
	f := inventory.HistoryFilter{
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}
	if v := int64(queryInt(r, "product_id")); v > 0 {
		f.ProductID = &v
	}

	movements, err := h.inventory.History(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]movementResponse, len(movements))
	for i := range movements {
		out[i] = toMovementResponse(&movements[i])
	}
	respondData(w, http.StatusOK, out)
}

type adjustRequest struct {
	ProductIDs []int64 `json:"product_ids"`
	Type       string  `json:"type"`
	Quantity   int     `json:"quantity"`
	Reason     string  `json:"reason"`
	Actor      string  `json:"actor"`
}

type itemErrorResponse struct {
	ProductID int64  `json:"product_id"`
	Error     string `json:"error"`
}

type adjustResponse struct {
	Results []movementResponse  `json:"results"`
	Errors  []itemErrorResponse `json:"errors"`
}

// adminInventoryAdjust applies a best-effort batch adjustment. The response
// always carries both arrays; callers must check errors for partial failure.
func (h *Handler) adminInventoryAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.inventory.Adjust(r.Context(), inventory.AdjustRequest{
		ProductIDs: req.ProductIDs,
		Type:       inventory.ChangeType(req.Type),
		Quantity:   req.Quantity,
		Reason:     req.Reason,
		Actor:      req.Actor,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := adjustResponse{
		Results: make([]movementResponse, len(result.Results)),
		Errors:  make([]itemErrorResponse, len(result.Errors)),
	}
	for i := range result.Results {
		resp.Results[i] = toMovementResponse(&result.Results[i])
	}
	for i, e := range result.Errors {
		resp.Errors[i] = itemErrorResponse{ProductID: e.ProductID, Error: e.Err.Error()}
	}
	respondData(w, http.StatusOK, resp)
}

type reorderPointRequest struct {
	ProductIDs []int64 `json:"product_ids"`
	Point      int     `json:"reorder_point"`
}

func (h *Handler) adminSetReorderPoints(w http.ResponseWriter, r *http.Request) {
	var req reorderPointRequest
	if err := decodeJSON(r, &req); err != nil {
		respondErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.inventory.SetReorderPoints(r.Context(), req.ProductIDs, req.Point)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{"updated": updated})
}

var exportHeaders = []string{
	"SKU", "Name", "Brand", "Category", "Colour",
	"Cost Price", "Final Price", "Stock", "Reorder Point", "Status",
}

// adminInventoryExport streams the full stock position as an xlsx workbook.
func (h *Handler) adminInventoryExport(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context(), catalog.ListFilter{IncludeInactive: true})
	if err != nil {
		respondError(w, r, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	const sheet = "Inventory"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	for i, head := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		_ = f.SetCellValue(sheet, cell, head)
		_ = f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for i := range products {
		p := &products[i]
		row := i + 2
		_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &[]any{
			p.SKU,
			p.Name,
			p.BrandName,
			p.CategoryName,
			p.Colour,
			p.Price.InexactFloat64(),
			p.FinalPrice.InexactFloat64(),
			p.StockQuantity,
			p.ReorderPoint,
			string(inventory.StatusFor(p.StockQuantity, p.ReorderPoint)),
		})
	}

	filename := "inventory-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(w); err != nil {
		zctx.From(r.Context()).Error("writing inventory export", zap.Error(err))
	}
}
