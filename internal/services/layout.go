package services

import (
	"math"

	"github.com/hypernova-labs/invoice-designer/internal/models"
)

// Ancho del logo en milímetros según su tamaño
var logoWidths = map[models.LogoSize]float64{
	models.LogoSizeSmall:  20,
	models.LogoSizeMedium: 30,
	models.LogoSizeLarge:  40,
}

// PageSize retorna el tamaño de la página en milímetros. Landscape
// intercambia ancho y alto; un formato desconocido usa A4.
func PageSize(format models.PageFormat, orientation models.Orientation) models.Size {
	var size models.Size
	switch format {
	case models.PageFormatLetter:
		size = models.Size{WidthMM: 215.9, HeightMM: 279.4}
	case models.PageFormatA5:
		size = models.Size{WidthMM: 148, HeightMM: 210}
	default:
		size = models.Size{WidthMM: 210, HeightMM: 297}
	}
	if orientation == models.OrientationLandscape {
		size.WidthMM, size.HeightMM = size.HeightMM, size.WidthMM
	}
	return size
}

// LogoWidth retorna el ancho del logo; un tamaño desconocido usa medium
func LogoWidth(size models.LogoSize) float64 {
	if w, ok := logoWidths[size]; ok {
		return w
	}
	return logoWidths[models.LogoSizeMedium]
}

// layoutStyle es la estrategia visual de una plantilla
type layoutStyle struct {
	band        colorSlot // banda de color detrás de la cabecera
	titleColor  colorSlot
	stripeWidth float64   // franja vertical en el borde izquierdo
	rule        colorSlot // línea bajo la cabecera
	titleScale  float64
	tableHeader colorSlot // relleno de la cabecera de la tabla
	stripeRows  bool
	totalsFill  colorSlot
}

func styleFor(t models.TemplateDescriptor) layoutStyle {
	var s layoutStyle

	switch t.Category {
	case models.CategoryMinimal:
		s = layoutStyle{titleColor: slotText, rule: slotSecondary, titleScale: 1}
	case models.CategoryProfessional:
		s = layoutStyle{titleColor: slotPrimary, rule: slotPrimary, titleScale: 1, tableHeader: slotSecondary, stripeRows: true}
	case models.CategoryCreative:
		s = layoutStyle{titleColor: slotAccent, stripeWidth: 6, titleScale: 1.1, tableHeader: slotAccent, stripeRows: true}
	case models.CategoryBold:
		s = layoutStyle{band: slotText, titleColor: slotAccent, titleScale: 1.3, tableHeader: slotText}
	default:
		s = layoutStyle{band: slotPrimary, titleColor: slotBackground, titleScale: 1, tableHeader: slotPrimary, stripeRows: true}
	}

	switch t.ID {
	case "modern-edge":
		s.totalsFill = slotAccent
	case "minimal-mono":
		s.rule = slotText
	case "professional-executive":
		s.rule = slotAccent
		s.tableHeader = slotPrimary
	case "creative-splash":
		s.stripeWidth = 10
		s.totalsFill = slotAccent
	case "bold-statement":
		s.titleScale = 1.45
	}

	return s
}

// pageGeometry contiene las posiciones verticales fijas de cada fila.
// Las filas no dependen de qué campos están visibles.
type pageGeometry struct {
	page    models.Size
	margin  float64
	content float64 // ancho útil

	logoY        float64
	logoRowH     float64
	titleY       float64
	titleH       float64
	headerBottom float64
	ruleY        float64
	partiesY     float64
	partiesH     float64
	fieldsY      float64
	slotH        float64
	itemsY       float64
	itemsLimit   float64
	footerRuleY  float64
	footerY      float64
	footerH      float64
	bottomY      float64
	bottomH      float64
}

const fieldRows = 4

func newPageGeometry(page models.Size) pageGeometry {
	g := pageGeometry{page: page, margin: 15}
	if math.Min(page.WidthMM, page.HeightMM) < 200 {
		g.margin = 10
	}
	g.content = page.WidthMM - 2*g.margin

	// Páginas bajas comprimen el espaciado vertical
	k := math.Max(0.7, math.Min(1, page.HeightMM/297))

	g.logoY = g.margin
	g.logoRowH = 20 * k
	g.titleY = g.logoY + g.logoRowH + 2*k
	g.titleH = 18 * k
	g.headerBottom = g.titleY + g.titleH + 2*k
	g.ruleY = g.headerBottom + k
	g.partiesY = g.headerBottom + 5*k
	g.partiesH = 22 * k
	g.fieldsY = g.partiesY + g.partiesH + 2*k
	g.slotH = 6 * k
	g.itemsY = g.fieldsY + fieldRows*g.slotH + 3*k

	g.bottomH = 20 * k
	g.bottomY = page.HeightMM - g.margin - g.bottomH
	g.footerH = 8 * k
	g.footerY = g.bottomY - g.footerH - 2*k
	g.footerRuleY = g.footerY - 2*k
	g.itemsLimit = g.footerRuleY - 2*k

	return g
}

// fieldSlot retorna la caja reservada para un campo opcional
func (g pageGeometry) fieldSlot(column, row int) models.Rect {
	half := g.content / 2
	return rect(g.margin+float64(column)*(half+2), g.fieldsY+float64(row)*g.slotH, half-2, g.slotH)
}

func rect(x, y, w, h float64) models.Rect {
	return models.Rect{X: round2(x), Y: round2(y), W: round2(w), H: round2(h)}
}
