package infra

// pdf.go: service order document rendered with go-pdf/fpdf. Used for the
// download endpoint and as the attachment of the completion receipt e-mail.
//   - Shop header, order number, status and date
//   - Customer and vehicle block
//   - Line table (description, qty, unit price, subtotal)
//   - Bold total and observations

import (
	"bytes"
	"fmt"
	"time"

	"tireshop/internal/model"
	"tireshop/internal/money"
	"tireshop/internal/ptbr"
	"tireshop/internal/serviceorder"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// OrderDocument is the printable view of a service order.
type OrderDocument struct {
	ShopName         string
	Number           int64
	StatusLabel      string
	CreatedAt        time.Time
	CustomerName     string
	CustomerDocument string
	VehiclePlate     string
	Observations     string
	Lines            []OrderDocumentLine
	Total            decimal.Decimal
}

type OrderDocumentLine struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// OrderDocumentFromModel flattens a loaded order (customer and lines
// preloaded) into its printable view.
func OrderDocumentFromModel(m *model.ServiceOrder, shopName string) OrderDocument {
	o := m.Domain()
	doc := OrderDocument{
		ShopName:     shopName,
		Number:       o.Number,
		StatusLabel:  o.Status.Label(),
		CreatedAt:    o.CreatedAt,
		VehiclePlate: o.VehiclePlate,
		Observations: o.Observations,
		Total:        o.TotalAmount,
	}
	if m.Customer != nil {
		doc.CustomerName = m.Customer.Name
		doc.CustomerDocument = m.Customer.Document
	}
	for _, it := range o.Items {
		desc := it.Description
		if it.Kind == serviceorder.KindService {
			desc = "[Serviço] " + desc
		}
		doc.Lines = append(doc.Lines, OrderDocumentLine{
			Description: desc,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    money.Round(it.Subtotal()),
		})
	}
	return doc
}

// RenderServiceOrderPDF returns the A5 PDF bytes for doc.
func RenderServiceOrderPDF(doc OrderDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle(fmt.Sprintf("OS %d", doc.Number), true)
	pdf.AddPage()
	// core fonts are cp1252; accents need translating
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	contentW := pageW - left - right

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(doc.ShopName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Ordem de Serviço"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW/2, 6, tr(fmt.Sprintf("OS Nº %d", doc.Number)), "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 6, tr(doc.StatusLabel), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, tr(ptbr.DateTime(doc.CreatedAt)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// ── Customer ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr("Cliente: "+doc.CustomerName), "", 1, "L", false, 0, "")
	if doc.CustomerDocument != "" {
		pdf.CellFormat(contentW, 5, tr("Documento: "+doc.CustomerDocument), "", 1, "L", false, 0, "")
	}
	if doc.VehiclePlate != "" {
		pdf.CellFormat(contentW, 5, tr("Placa: "+doc.VehiclePlate), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(left, pdf.GetY(), pageW-right, pdf.GetY())
	pdf.Ln(2)

	// ── Lines ────────────────────────────────────────────────────────────────
	colDesc := contentW * 0.46
	colQty := contentW * 0.12
	colUnit := contentW * 0.21
	colSub := contentW * 0.21

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(colDesc, 6, tr("Descrição"), "B", 0, "L", false, 0, "")
	pdf.CellFormat(colQty, 6, "Qtd", "B", 0, "C", false, 0, "")
	pdf.CellFormat(colUnit, 6, tr("Unitário"), "B", 0, "R", false, 0, "")
	pdf.CellFormat(colSub, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range doc.Lines {
		desc := l.Description
		if r := []rune(desc); len(r) > 34 {
			desc = string(r[:33]) + "…"
		}
		pdf.CellFormat(colDesc, 5, tr(desc), "", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, 5, fmt.Sprintf("%d", l.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(colUnit, 5, tr(money.FormatBRL(l.UnitPrice)), "", 0, "R", false, 0, "")
		pdf.CellFormat(colSub, 5, tr(money.FormatBRL(l.Subtotal)), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(left, pdf.GetY(), pageW-right, pdf.GetY())
	pdf.Ln(2)

	// ── Total ────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colDesc+colQty+colUnit, 7, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(colSub, 7, tr(money.FormatBRL(doc.Total)), "", 1, "R", false, 0, "")

	if doc.Observations != "" {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, tr("Observações: "+doc.Observations), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
