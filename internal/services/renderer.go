package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/shopspring/decimal"
)

// TemplateRenderer convierte (plantilla, personalización, factura) en un Document.
// Render es puro y determinista.
type TemplateRenderer struct {
	registry *TemplateRegistry
}

// NewTemplateRenderer crea una nueva instancia del renderer
func NewTemplateRenderer(registry *TemplateRegistry) *TemplateRenderer {
	return &TemplateRenderer{registry: registry}
}

// InvoiceTitle retorna el título impreso para el tipo de factura
func InvoiceTitle(t models.InvoiceType) string {
	switch t {
	case models.InvoiceTypeTax:
		return "TAX INVOICE"
	case models.InvoiceTypeProforma:
		return "PROFORMA INVOICE"
	default:
		return "INVOICE"
	}
}

// Render genera el documento. Nunca falla: valores fuera de rango usan los valores por defecto.
func (r *TemplateRenderer) Render(templateID string, c models.Customization, data models.InvoiceData) models.Document {
	tpl := r.registry.Resolve(templateID)
	layout := sanitizeLayout(c.Layout)
	size := PageSize(layout.Format, layout.Orientation)

	b := &docBuilder{
		tpl:   tpl,
		style: styleFor(tpl),
		theme: resolveTheme(c),
		geo:   newPageGeometry(size),
		c:     c,
		data:  data,
	}
	b.sizes = newTypeScale(b.theme.SizeScale)

	doc := models.Document{
		TemplateID:   tpl.ID,
		TemplateName: tpl.Name,
		Category:     tpl.Category,
		InvoiceType:  layout.InvoiceType,
		Title:        InvoiceTitle(layout.InvoiceType),
		Page: models.PageSpec{
			Format:      layout.Format,
			Orientation: layout.Orientation,
			WidthMM:     size.WidthMM,
			HeightMM:    size.HeightMM,
		},
		Theme: b.theme,
	}
	doc.Regions = b.build(doc.Title)
	doc.Fingerprint = Fingerprint(doc)

	return doc
}

// Fingerprint calcula el SHA-256 de la codificación JSON del documento sin su huella
func Fingerprint(doc models.Document) string {
	doc.Fingerprint = ""
	data, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func sanitizeLayout(l models.LayoutSettings) models.LayoutSettings {
	defaults := models.DefaultCustomization().Layout
	if !l.InvoiceType.Valid() {
		l.InvoiceType = defaults.InvoiceType
	}
	if !l.Format.Valid() {
		l.Format = defaults.Format
	}
	if !l.Orientation.Valid() {
		l.Orientation = defaults.Orientation
	}
	return l
}

type docBuilder struct {
	tpl   models.TemplateDescriptor
	style layoutStyle
	theme models.Theme
	geo   pageGeometry
	sizes typeScale
	c     models.Customization
	data  models.InvoiceData

	regions []models.Region
}

func (b *docBuilder) add(r models.Region) {
	b.regions = append(b.regions, r)
}

func (b *docBuilder) color(slot colorSlot) string {
	return colorOf(b.theme, slot)
}

func (b *docBuilder) bodyStyle(size float64, color colorSlot) models.TextStyle {
	return models.TextStyle{Font: b.theme.BodyFont, SizePt: size, Color: b.color(color)}
}

func (b *docBuilder) build(title string) []models.Region {
	g := b.geo

	b.add(models.Region{
		ID:    models.RegionBackground,
		Kind:  models.RegionKindShape,
		Box:   rect(0, 0, g.page.WidthMM, g.page.HeightMM),
		Style: models.TextStyle{Background: b.color(slotBackground)},
	})

	if b.style.band != slotNone {
		b.add(models.Region{
			ID:    models.RegionHeaderBand,
			Kind:  models.RegionKindShape,
			Box:   rect(0, 0, g.page.WidthMM, g.headerBottom),
			Style: models.TextStyle{Background: b.color(b.style.band)},
		})
	}
	if b.style.stripeWidth > 0 {
		b.add(models.Region{
			ID:    models.RegionAccentStripe,
			Kind:  models.RegionKindShape,
			Box:   rect(0, 0, b.style.stripeWidth, g.page.HeightMM),
			Style: models.TextStyle{Background: b.color(slotAccent)},
		})
	}

	b.header(title)
	b.parties()
	b.optionalFields()
	b.items()
	b.footer()

	return b.regions
}

// onBand indica si la cabecera tiene fondo de color
func (b *docBuilder) onBand() bool {
	return b.style.band != slotNone
}

func (b *docBuilder) header(title string) {
	g := b.geo
	branding := b.c.Branding

	if branding.ShowLogo {
		w := LogoWidth(branding.LogoSize)
		h := w / 2
		if h > g.logoRowH {
			h = g.logoRowH
		}

		var x float64
		switch branding.LogoAlignment {
		case models.AlignCenter:
			x = g.margin + (g.content-w)/2
		case models.AlignRight:
			x = g.margin + g.content - w
		default:
			x = g.margin
		}

		logo := models.Region{
			ID:    models.RegionLogo,
			Box:   rect(x, g.logoY, w, h),
			Align: models.AlignCenter,
		}
		if strings.TrimSpace(branding.Logo) != "" {
			logo.Kind = models.RegionKindImage
			logo.ImageRef = strings.TrimSpace(branding.Logo)
		} else {
			fill, ink := slotPrimary, slotBackground
			if b.onBand() {
				fill, ink = slotBackground, b.style.band
			}
			logo.Kind = models.RegionKindText
			logo.Lines = []string{initials(branding.CompanyName)}
			logo.Style = models.TextStyle{
				Font:       b.theme.HeadingFont,
				SizePt:     b.sizes.subheading,
				Bold:       true,
				Color:      b.color(ink),
				Background: b.color(fill),
			}
		}
		b.add(logo)
	}

	half := g.content / 2
	b.add(models.Region{
		ID:    models.RegionTitle,
		Kind:  models.RegionKindText,
		Box:   rect(g.margin, g.titleY, half, g.titleH),
		Align: models.AlignLeft,
		Style: models.TextStyle{
			Font:   b.theme.HeadingFont,
			SizePt: round2(b.sizes.heading * b.style.titleScale),
			Bold:   true,
			Color:  b.color(b.style.titleColor),
		},
		Lines: []string{title},
	})

	ink := slotText
	if b.onBand() {
		ink = slotBackground
	}
	company := nonEmpty(branding.CompanyName, branding.CompanyAddress, branding.CompanyPhone, branding.CompanyEmail)
	b.add(models.Region{
		ID:       models.RegionCompany,
		Kind:     models.RegionKindText,
		Box:      rect(g.margin+half, g.titleY, half, g.titleH),
		Align:    models.AlignRight,
		Style:    b.bodyStyle(b.sizes.small, ink),
		Lines:    company,
		Emphasis: true,
	})

	if b.style.rule != slotNone {
		b.add(models.Region{
			ID:    models.RegionHeaderRule,
			Kind:  models.RegionKindShape,
			Box:   rect(g.margin, g.ruleY, g.content, 0.6),
			Style: models.TextStyle{Background: b.color(b.style.rule)},
		})
	}
}

func (b *docBuilder) parties() {
	g := b.geo
	half := g.content / 2

	billTo := []string{"Bill To", b.data.BillTo.Name}
	if b.data.BillTo.Company != "" {
		billTo = append(billTo, b.data.BillTo.Company)
	}
	billTo = append(billTo, b.data.BillTo.Address)

	b.add(models.Region{
		ID:       models.RegionBillTo,
		Kind:     models.RegionKindText,
		Box:      rect(g.margin, g.partiesY, half, g.partiesH),
		Align:    models.AlignLeft,
		Style:    b.bodyStyle(b.sizes.body, slotText),
		Lines:    billTo,
		Emphasis: true,
	})

	b.add(models.Region{
		ID:    models.RegionInvoiceMeta,
		Kind:  models.RegionKindText,
		Box:   rect(g.margin+half, g.partiesY, half, g.partiesH),
		Align: models.AlignRight,
		Style: b.bodyStyle(b.sizes.body, slotText),
		Lines: []string{
			"Invoice #: " + b.data.InvoiceNumber,
			"Date: " + b.data.Date,
		},
		Emphasis: true,
	})
}

// optionalField es un campo conmutado con su posición reservada
type optionalField struct {
	id      models.RegionID
	visible bool
	label   string
	value   string
	column  int
	row     int
}

func (b *docBuilder) optionalFields() {
	f := b.c.Fields
	fields := []optionalField{
		{models.RegionTaxID, f.ShowTaxID, "Tax ID", b.data.SellerTaxID, 0, 0},
		{models.RegionCustomerTaxID, f.ShowCustomerTaxID, "Customer Tax ID", b.data.BillTo.TaxID, 0, 1},
		{models.RegionPONumber, f.ShowPONumber, "PO Number", b.data.PONumber, 0, 2},
		{models.RegionProjectName, f.ShowProjectName, "Project", b.data.ProjectName, 0, 3},
		{models.RegionDueDate, f.ShowDueDate, "Due Date", b.data.DueDate, 1, 0},
		{models.RegionDeliveryDate, f.ShowDeliveryDate, "Delivery Date", b.data.DeliveryDate, 1, 1},
		{models.RegionPaymentTerms, f.ShowPaymentTerms, "Payment Terms", b.data.PaymentTerms, 1, 2},
	}

	for _, field := range fields {
		if !field.visible {
			continue
		}
		value := field.value
		if value == "" {
			value = "N/A"
		}
		align := models.AlignLeft
		if field.column == 1 {
			align = models.AlignRight
		}
		b.add(models.Region{
			ID:    field.id,
			Kind:  models.RegionKindText,
			Box:   b.geo.fieldSlot(field.column, field.row),
			Align: align,
			Style: b.bodyStyle(b.sizes.small, slotText),
			Lines: []string{field.label + ": " + value},
		})
	}
}

// tableColumns define las columnas de la tabla como fracción del ancho útil
var tableColumns = []struct {
	title string
	share float64
	align models.Alignment
}{
	{"#", 0.06, models.AlignLeft},
	{"Description", 0.42, models.AlignLeft},
	{"Qty", 0.10, models.AlignRight},
	{"Unit Price", 0.16, models.AlignRight},
	{"Tax %", 0.10, models.AlignRight},
	{"Amount", 0.16, models.AlignRight},
}

func (b *docBuilder) items() {
	g := b.geo
	rowH := round2(b.sizes.body * ptToMM * 1.9)
	totalsH := 3 * rowH

	columns := make([]models.TableColumn, len(tableColumns))
	for i, col := range tableColumns {
		columns[i] = models.TableColumn{Title: col.title, WidthMM: round2(g.content * col.share), Align: col.align}
	}

	available := g.itemsLimit - g.itemsY - rowH - 3 - totalsH
	maxRows := int(available / rowH)
	if maxRows < 1 {
		maxRows = 1
	}

	items := b.data.Items
	var overflow int
	if len(items) > maxRows {
		overflow = len(items) - (maxRows - 1)
		items = items[:maxRows-1]
	}

	rows := make([][]string, 0, len(items)+1)
	for i, item := range items {
		id := item.ID
		if id == "" {
			id = fmt.Sprint(i + 1)
		}
		rows = append(rows, []string{
			id,
			item.Description,
			decimal.NewFromFloat(item.Quantity).String(),
			b.money(item.UnitPrice),
			decimal.NewFromFloat(item.TaxRate).String() + "%",
			b.money(item.Amount),
		})
	}
	if overflow > 0 {
		rows = append(rows, []string{"", fmt.Sprintf("+ %d more items", overflow), "", "", "", ""})
	}

	header := models.TextStyle{Font: b.theme.BodyFont, SizePt: b.sizes.body, Bold: true, Color: b.color(slotText)}
	if b.style.tableHeader != slotNone {
		header.Color = b.color(slotBackground)
		header.Background = b.color(b.style.tableHeader)
	} else {
		header.Border = b.color(slotSecondary)
	}

	table := &models.Table{
		Columns:     columns,
		Rows:        rows,
		RowHeightMM: rowH,
		HeaderStyle: header,
	}
	if b.style.stripeRows {
		table.StripeColor = tint(b.color(slotSecondary), 0.9)
	}

	tableH := rowH * float64(len(rows)+1)
	b.add(models.Region{
		ID:    models.RegionItems,
		Kind:  models.RegionKindTable,
		Box:   rect(g.margin, g.itemsY, g.content, tableH),
		Style: b.bodyStyle(b.sizes.body, slotText),
		Table: table,
	})

	totalsY := g.itemsY + tableH + 3
	totalsW := g.content * 0.45
	totalsStyle := b.bodyStyle(b.sizes.body, slotText)
	if b.style.totalsFill != slotNone {
		totalsStyle.Background = tint(b.color(b.style.totalsFill), 0.8)
	}
	b.add(models.Region{
		ID:    models.RegionTotals,
		Kind:  models.RegionKindTable,
		Box:   rect(g.margin+g.content-totalsW, totalsY, totalsW, totalsH),
		Style: totalsStyle,
		Table: &models.Table{
			Columns: []models.TableColumn{
				{WidthMM: round2(totalsW * 0.55), Align: models.AlignRight},
				{WidthMM: round2(totalsW * 0.45), Align: models.AlignRight},
			},
			Rows: [][]string{
				{"Subtotal", b.money(b.data.Subtotal)},
				{"Tax", b.money(b.data.TaxTotal)},
				{"Total", b.money(b.data.GrandTotal)},
			},
			RowHeightMM: rowH,
		},
	})

	if notes := strings.TrimSpace(b.data.Notes); notes != "" {
		b.add(models.Region{
			ID:       models.RegionNotes,
			Kind:     models.RegionKindText,
			Box:      rect(g.margin, totalsY, g.content*0.5, totalsH),
			Align:    models.AlignLeft,
			Style:    b.bodyStyle(b.sizes.small, slotText),
			Lines:    []string{"Notes", notes},
			Emphasis: true,
		})
	}
}

func (b *docBuilder) footer() {
	g := b.geo
	footer := b.c.Footer

	b.add(models.Region{
		ID:    models.RegionFooterRule,
		Kind:  models.RegionKindShape,
		Box:   rect(g.margin, g.footerRuleY, g.content, 0.3),
		Style: models.TextStyle{Background: b.color(slotSecondary)},
	})

	if content := strings.TrimSpace(footer.Content); content != "" {
		b.add(models.Region{
			ID:    models.RegionFooter,
			Kind:  models.RegionKindText,
			Box:   rect(g.margin, g.footerY, g.content, g.footerH),
			Align: models.AlignCenter,
			Style: b.bodyStyle(b.sizes.small, slotSecondary),
			Lines: []string{content},
		})
	}

	if footer.ShowSignature {
		style := b.bodyStyle(b.sizes.small, slotText)
		style.Border = b.color(slotText)
		b.add(models.Region{
			ID:    models.RegionSignature,
			Kind:  models.RegionKindText,
			Box:   rect(g.margin, g.bottomY, g.content*0.35, g.bottomH),
			Align: models.AlignCenter,
			Style: style,
			Lines: []string{"Authorized Signature"},
		})
	}

	if footer.ShowStamp {
		w := g.bottomH * 1.5
		style := b.bodyStyle(b.sizes.small, slotAccent)
		style.Bold = true
		style.Border = b.color(slotAccent)
		b.add(models.Region{
			ID:    models.RegionStamp,
			Kind:  models.RegionKindText,
			Box:   rect(g.margin+(g.content-w)/2, g.bottomY, w, g.bottomH),
			Align: models.AlignCenter,
			Style: style,
			Lines: []string{"STAMP"},
		})
	}

	if footer.ShowQRCode {
		b.add(models.Region{
			ID:       models.RegionQRCode,
			Kind:     models.RegionKindImage,
			Box:      rect(g.margin+g.content-g.bottomH, g.bottomY, g.bottomH, g.bottomH),
			Align:    models.AlignCenter,
			Style:    models.TextStyle{Font: b.theme.BodyFont, SizePt: b.sizes.small, Color: b.color(slotText), Border: b.color(slotText)},
			ImageRef: "qr:" + b.data.InvoiceNumber,
		})
	}
}

// money formatea un importe con símbolo de moneda y separador de miles
func (b *docBuilder) money(v float64) string {
	return FormatMoney(b.data.Currency, v)
}

// FormatMoney formatea un importe como "$1,234.50"
func FormatMoney(currency string, v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	return sign + currency + grouped.String() + "." + frac
}

func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToUpper(r))
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "LOGO"
	}
	return string(out)
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
