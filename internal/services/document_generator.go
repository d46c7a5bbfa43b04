package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

// Fecha fija de creación para que el mismo documento produzca los mismos bytes
var pdfCreationDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// DocumentGenerator maneja la generación de archivos PDF a partir de un Document
type DocumentGenerator struct {
	logger *logrus.Logger
}

// NewDocumentGenerator crea una nueva instancia del generador
func NewDocumentGenerator(logger *logrus.Logger) *DocumentGenerator {
	return &DocumentGenerator{
		logger: logger,
	}
}

// GeneratePDF dibuja el documento sin escala en una página del tamaño del documento
func (d *DocumentGenerator) GeneratePDF(doc models.Document) ([]byte, error) {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: doc.Page.WidthMM, Ht: doc.Page.HeightMM},
	})
	pdf.SetCreationDate(pdfCreationDate)
	pdf.SetModificationDate(pdfCreationDate)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("invoice-designer", true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(1)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, region := range doc.Regions {
		d.drawRegion(pdf, tr, region)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating PDF: %w", err)
	}

	d.logger.WithFields(logrus.Fields{
		"template_id": doc.TemplateID,
		"fingerprint": doc.Fingerprint,
		"pdf_size":    buf.Len(),
	}).Debug("Invoice PDF generated")

	return buf.Bytes(), nil
}

func (d *DocumentGenerator) drawRegion(pdf *gofpdf.Fpdf, tr func(string) string, r models.Region) {
	d.drawBox(pdf, r.Box, r.Style.Background, r.Style.Border)

	switch r.Kind {
	case models.RegionKindText:
		d.drawLines(pdf, tr, r)
	case models.RegionKindTable:
		if r.Table != nil {
			d.drawTable(pdf, tr, r)
		}
	case models.RegionKindImage:
		if !d.drawImage(pdf, r) {
			placeholder := r
			placeholder.Lines = []string{"LOGO"}
			if r.ID == models.RegionQRCode {
				placeholder.Lines = []string{"QR"}
			}
			d.drawBox(pdf, r.Box, "", r.Style.Color)
			d.drawLines(pdf, tr, placeholder)
		}
	}
}

func (d *DocumentGenerator) drawBox(pdf *gofpdf.Fpdf, box models.Rect, fill, border string) {
	style := ""
	if fill != "" {
		pdf.SetFillColor(HexToRGB(fill))
		style += "F"
	}
	if border != "" {
		pdf.SetDrawColor(HexToRGB(border))
		pdf.SetLineWidth(0.3)
		style += "D"
	}
	if style != "" {
		pdf.Rect(box.X, box.Y, box.W, box.H, style)
	}
}

func (d *DocumentGenerator) drawLines(pdf *gofpdf.Fpdf, tr func(string) string, r models.Region) {
	if len(r.Lines) == 0 || r.Style.SizePt <= 0 {
		return
	}

	pdf.SetTextColor(HexToRGB(r.Style.Color))
	lineHeight := r.Style.SizePt * ptToMM * 1.35

	top := r.Box.Y
	// Una sola línea dentro de una caja dibujada se centra verticalmente
	if len(r.Lines) == 1 && (r.Style.Background != "" || r.Style.Border != "") {
		top = r.Box.Y + (r.Box.H-lineHeight)/2
	}

	for i, line := range r.Lines {
		y := top + float64(i)*lineHeight
		if y+lineHeight > r.Box.Y+r.Box.H+0.01 {
			break
		}
		bold := r.Style.Bold || (r.Emphasis && i == 0)
		pdf.SetFont(pdfFont(r.Style.Font), fontStyle(bold), r.Style.SizePt)
		pdf.SetXY(r.Box.X, y)
		pdf.CellFormat(r.Box.W, lineHeight, tr(line), "", 0, pdfAlign(r.Align), false, 0, "")
	}
}

func (d *DocumentGenerator) drawTable(pdf *gofpdf.Fpdf, tr func(string) string, r models.Region) {
	t := r.Table
	y := r.Box.Y

	if hasHeader(t) {
		header := t.HeaderStyle
		d.drawBox(pdf, models.Rect{X: r.Box.X, Y: y, W: r.Box.W, H: t.RowHeightMM}, header.Background, "")
		pdf.SetTextColor(HexToRGB(header.Color))
		pdf.SetFont(pdfFont(header.Font), fontStyle(header.Bold), header.SizePt)

		x := r.Box.X
		for _, col := range t.Columns {
			pdf.SetXY(x, y)
			pdf.CellFormat(col.WidthMM, t.RowHeightMM, tr(col.Title), "", 0, pdfAlign(col.Align), false, 0, "")
			x += col.WidthMM
		}
		if header.Border != "" {
			pdf.SetDrawColor(HexToRGB(header.Border))
			pdf.SetLineWidth(0.3)
			pdf.Line(r.Box.X, y+t.RowHeightMM, r.Box.X+r.Box.W, y+t.RowHeightMM)
		}
		y += t.RowHeightMM
	}

	pdf.SetFont(pdfFont(r.Style.Font), fontStyle(r.Style.Bold), r.Style.SizePt)
	for i, row := range t.Rows {
		if t.StripeColor != "" && i%2 == 1 {
			d.drawBox(pdf, models.Rect{X: r.Box.X, Y: y, W: r.Box.W, H: t.RowHeightMM}, t.StripeColor, "")
		}
		pdf.SetTextColor(HexToRGB(r.Style.Color))

		x := r.Box.X
		for j, cell := range row {
			if j >= len(t.Columns) {
				break
			}
			col := t.Columns[j]
			pdf.SetXY(x, y)
			pdf.CellFormat(col.WidthMM, t.RowHeightMM, tr(cell), "", 0, pdfAlign(col.Align), false, 0, "")
			x += col.WidthMM
		}
		y += t.RowHeightMM
	}
}

// drawImage dibuja imágenes embebidas (data URL). Retorna false si no se pudo dibujar.
func (d *DocumentGenerator) drawImage(pdf *gofpdf.Fpdf, r models.Region) bool {
	imageType, data, ok := decodeDataURL(r.ImageRef)
	if !ok {
		return false
	}

	name := "image-" + string(r.ID)
	opts := gofpdf.ImageOptions{ImageType: imageType}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if !pdf.Ok() || info == nil {
		d.logger.WithError(pdf.Error()).WithField("region", r.ID).Warn("Invalid embedded image, drawing placeholder")
		pdf.ClearError()
		return false
	}

	// Ajustar manteniendo la proporción dentro de la caja
	w, h := r.Box.W, r.Box.H
	if iw, ih := info.Width(), info.Height(); iw > 0 && ih > 0 {
		if iw/ih > w/h {
			h = w * ih / iw
		} else {
			w = h * iw / ih
		}
	}
	x := r.Box.X + (r.Box.W-w)/2
	y := r.Box.Y + (r.Box.H-h)/2

	pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return true
}

func decodeDataURL(ref string) (imageType string, data []byte, ok bool) {
	if !strings.HasPrefix(ref, "data:") {
		return "", nil, false
	}
	meta, payload, found := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return "", nil, false
	}

	switch strings.TrimSuffix(meta, ";base64") {
	case "image/png":
		imageType = "PNG"
	case "image/jpeg", "image/jpg":
		imageType = "JPG"
	case "image/gif":
		imageType = "GIF"
	default:
		return "", nil, false
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return imageType, data, true
}

// pdfFont asigna la familia a una de las fuentes base del PDF
func pdfFont(family string) string {
	f := strings.ToLower(family)
	switch {
	case strings.Contains(f, "courier"), strings.Contains(f, "mono"):
		return "Courier"
	case strings.Contains(f, "times"), strings.Contains(f, "georgia"), strings.Contains(f, "garamond"),
		strings.Contains(f, "serif") && !strings.Contains(f, "sans"):
		return "Times"
	default:
		return "Helvetica"
	}
}

func fontStyle(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}

func pdfAlign(a models.Alignment) string {
	switch a {
	case models.AlignCenter:
		return "CM"
	case models.AlignRight:
		return "RM"
	default:
		return "LM"
	}
}
