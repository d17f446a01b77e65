package infra

// pdf.go — Printable receipt generation using go-pdf/fpdf.
// Renders A7-size thermal-style tickets with the business header, sale
// timestamp, item table and bold total. The output file is saved to
// storagePath/ticket_{ventaID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/clehider/BazarMundoVictor/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateTicketPDF renders the receipt of a completed Venta.
// storagePath is the directory where the PDF will be written (created if
// needed). Returns the absolute path to the generated file.
func GenerateTicketPDF(venta *model.Venta, empresa *model.Empresa, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("ticket_%s.pdf", venta.ID)
	filePath := filepath.Join(storagePath, fileName)

	// A7 ≈ 74mm × 105mm — close to thermal receipt paper (custom size, "A7" is not in fpdf's named list)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 74, Ht: 105},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8 // total margins = 8mm

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, empresa.Nombre, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	if empresa.Direccion != "" {
		pdf.CellFormat(contentW, 4, empresa.Direccion, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, "Comprobante de Venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Sale info ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Venta %s", shortID(venta.ID.String())), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, venta.Fecha.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, fmt.Sprintf("Atendió: %s", venta.Usuario), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// ── Separator ────────────────────────────────────────────────────────────
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Items header ──────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // product name
	col2 := contentW * 0.16 // qty
	col3 := contentW * 0.32 // subtotal

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Subtotal", "B", 1, "R", false, 0, "")

	// ── Item rows ─────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 7)
	for _, item := range venta.Items {
		nombre := item.Nombre
		if len(nombre) > 24 {
			nombre = nombre[:24]
		}
		pdf.CellFormat(col1, 5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 5, fmt.Sprintf("%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 5, item.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(1)

	// ── Total ─────────────────────────────────────────────────────────────────
	moneda := empresa.Moneda
	if moneda == "" {
		moneda = "BOB"
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1+col2, 7, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 7, fmt.Sprintf("%s %s", moneda, venta.Total.StringFixed(2)), "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "¡Gracias por su compra!", "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}

// shortID keeps receipts readable: the first uuid block is enough to look
// a sale up.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
