package receipt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/lromerof/comite-agua/internal/apperr"
	"github.com/lromerof/comite-agua/internal/ledger"
	"github.com/lromerof/comite-agua/internal/tariff"
)

var monthNames = [...]string{
	"", "Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// MonthName converts a month number to its Spanish name.
func MonthName(month int) string {
	if month >= 1 && month <= 12 {
		return monthNames[month]
	}
	return fmt.Sprintf("%d", month)
}

// SettingsSource yields the committee letterhead. Satisfied by tariff.Service.
type SettingsSource interface {
	CommitteeInfo(ctx context.Context) (tariff.CommitteeInfo, error)
}

// Renderer turns a finalized payment record into a PDF receipt on disk. It is
// handed an already-committed Detail and has no path back into ledger state.
type Renderer struct {
	outDir   string
	settings SettingsSource
}

func NewRenderer(outDir string, settings SettingsSource) *Renderer {
	return &Renderer{outDir: outDir, settings: settings}
}

// Render writes the receipt PDF and returns its path.
func (r *Renderer) Render(ctx context.Context, d ledger.Detail) (string, error) {
	info, err := r.settings.CommitteeInfo(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", apperr.Storage("create receipts directory", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	title := info.Name
	if title == "" {
		title = "Comité de Agua Potable"
	}
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	if info.Address != "" {
		pdf.CellFormat(0, 5, tr(info.Address), "", 1, "C", false, 0, "")
	}
	if info.Phone != "" {
		pdf.CellFormat(0, 5, tr("Tel: "+info.Phone), "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, "RECIBO DE PAGO", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Folio: %d", d.ID), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Fecha: "+d.PaidAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Usuario #%d: %s", d.MemberNumber, d.MemberName)), "", 1, "L", false, 0, "")
	if d.MemberAddress != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 5, tr("Domicilio: "+d.MemberAddress), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	r.itemTable(pdf, tr, d)
	r.totals(pdf, tr, d)

	if d.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr("Observaciones: "+d.Notes), "", "L", false)
	}

	if info.President != "" || info.Treasurer != "" {
		pdf.Ln(14)
		pdf.SetFont("Arial", "", 9)
		if info.President != "" {
			pdf.CellFormat(95, 5, tr("Presidente: "+info.President), "", 0, "C", false, 0, "")
		}
		if info.Treasurer != "" {
			pdf.CellFormat(95, 5, tr("Tesorero: "+info.Treasurer), "", 0, "C", false, 0, "")
		}
		pdf.Ln(5)
	}

	filename := fmt.Sprintf("recibo_%d_%s.pdf", d.ID, uuid.NewString()[:8])
	path := filepath.Join(r.outDir, filename)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", apperr.Storage("write receipt pdf", err)
	}
	return path, nil
}

func (r *Renderer) itemTable(pdf *gofpdf.Fpdf, tr func(string) string, d ledger.Detail) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(60, 7, tr("Concepto"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(45, 7, tr("Período"), "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Precio", "1", 0, "R", true, 0, "")
	pdf.CellFormat(15, 7, "Cant.", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Subtotal", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range d.Items {
		period := fmt.Sprintf("%d", item.Year)
		if item.Month != nil {
			period = fmt.Sprintf("%s %d", MonthName(*item.Month), item.Year)
		}
		pdf.CellFormat(60, 7, tr(item.Concept), "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, tr(period), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, "$ "+item.Price.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(15, 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 7, "$ "+item.Subtotal().StringFixed(2), "1", 1, "R", false, 0, "")
	}
}

func (r *Renderer) totals(pdf *gofpdf.Fpdf, tr func(string) string, d ledger.Detail) {
	monthlyTotal := decimal.Zero
	otherTotal := decimal.Zero
	for _, item := range d.Items {
		if item.Month != nil {
			monthlyTotal = monthlyTotal.Add(item.Subtotal())
		} else {
			otherTotal = otherTotal.Add(item.Subtotal())
		}
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
	if monthlyTotal.IsPositive() {
		pdf.CellFormat(150, 6, tr("Subtotal servicios mensuales:"), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, "$ "+monthlyTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if otherTotal.IsPositive() {
		pdf.CellFormat(150, 6, tr("Subtotal otros conceptos:"), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, "$ "+otherTotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 8, "TOTAL PAGADO:", "", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "$ "+d.Total.StringFixed(2), "", 1, "R", false, 0, "")
}
