package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"party-on-delivery/internal/checkout"
	"party-on-delivery/pkg/response"

	"github.com/jackc/pgx/v5"
	"github.com/phpdave11/gofpdf"
)

var filenameUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func sanitizeFilename(value string) string {
	cleaned := filenameUnsafe.ReplaceAllString(strings.TrimSpace(value), "_")
	if cleaned == "" {
		return "receipt"
	}
	return cleaned
}

// AdminOrderReceiptPDF renders a printable receipt for an order, including
// group participant contributions when present.
func (h *Handler) AdminOrderReceiptPDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := readPathInt64(r, "id")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id")
		return
	}

	detail, err := h.fetchOrderDetail(ctx, `id = $1`, id)
	if err == pgx.ErrNoRows {
		response.Error(w, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
		return
	}
	if err != nil {
		h.Logger.Error("order fetch failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load order")
		return
	}

	buf, err := renderReceiptPDF(detail)
	if err != nil {
		h.Logger.Error("receipt render failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate receipt")
		return
	}

	filename := fmt.Sprintf("receipt_%s.pdf", sanitizeFilename(detail.OrderNumber))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func renderReceiptPDF(detail *orderDetail) (*bytes.Buffer, error) {
	money := func(v float64) string { return fmt.Sprintf("$%.2f", v) }

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Party On Delivery", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, "Austin, TX", "", 1, "C", false, 0, "")

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Order %s", detail.OrderNumber), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	customer := strings.TrimSpace(detail.CustomerFirstName + " " + detail.CustomerLastName)
	if customer != "" {
		pdf.CellFormat(0, 5, customer, "", 1, "C", false, 0, "")
	}
	if detail.DeliveryDate != "" {
		pdf.CellFormat(0, 5, fmt.Sprintf("Delivery: %s %s", detail.DeliveryDate, detail.DeliveryTime), "", 1, "C", false, 0, "")
	}
	var address checkout.AddressInfo
	if err := json.Unmarshal(detail.DeliveryAddress, &address); err == nil {
		if formatted := checkout.FormatAddress(address); formatted != "" {
			pdf.MultiCell(0, 4, formatted, "", "C", false)
		}
	}
	pdf.CellFormat(0, 5, fmt.Sprintf("Placed: %s", detail.CreatedAt.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Items", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, item := range detail.Items {
		label := fmt.Sprintf("%d x %s", item.Quantity, item.Title)
		if item.Variant != "" && item.Variant != "default" {
			label += " (" + item.Variant + ")"
		}
		pdf.CellFormat(130, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, money(item.Price*float64(item.Quantity)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Arial", "", 9)
	line := func(label, value string) {
		pdf.CellFormat(130, 5, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, value, "", 1, "R", false, 0, "")
	}
	line("Subtotal", money(detail.Subtotal))
	if detail.DiscountAmount > 0 {
		label := "Discount"
		if detail.DiscountCode != "" {
			label += " (" + detail.DiscountCode + ")"
		}
		line(label, "-"+money(detail.DiscountAmount))
	}
	line("Delivery", money(detail.DeliveryFee))
	line("Sales tax", money(detail.SalesTax))
	if detail.Tip > 0 {
		line("Tip", money(detail.Tip))
	}
	pdf.SetFont("Arial", "B", 11)
	line("Total", money(detail.Total))

	if detail.GroupOrderEnabled {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, "Group order", "B", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
