package services

import (
	"math"
	"testing"

	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderDefault(t *testing.T, templateID string, c models.Customization) models.Document {
	t.Helper()
	renderer := NewTemplateRenderer(NewTemplateRegistry())
	return renderer.Render(templateID, c, NewInvoiceAdapter("$").Adapt(nil))
}

func region(t *testing.T, doc models.Document, id models.RegionID) models.Region {
	t.Helper()
	r, ok := doc.Region(id)
	require.True(t, ok, "region %s not rendered", id)
	return r
}

func TestRenderIsDeterministic(t *testing.T) {
	registry := NewTemplateRegistry()
	renderer := NewTemplateRenderer(registry)
	data := NewInvoiceAdapter("$").Adapt(nil)

	c := models.DefaultCustomization()
	c.Fields = models.FieldSettings{
		ShowTaxID: true, ShowCustomerTaxID: true, ShowPONumber: true, ShowProjectName: true,
		ShowDeliveryDate: true, ShowPaymentTerms: true, ShowDueDate: true,
	}
	c.Footer.ShowSignature = true
	c.Footer.ShowStamp = true
	c.Footer.ShowQRCode = true

	for _, tpl := range registry.All() {
		t.Run(tpl.ID, func(t *testing.T) {
			first := renderer.Render(tpl.ID, c, data)
			second := renderer.Render(tpl.ID, c, data)

			assert.Equal(t, first, second)
			assert.Len(t, first.Fingerprint, 64)
			assert.Equal(t, first.Fingerprint, Fingerprint(first))
			assert.Equal(t, tpl.Category, first.Category)
		})
	}
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	data := NewInvoiceAdapter("$").Adapt(nil)
	before := NewInvoiceAdapter("$").Adapt(nil)
	c := models.DefaultCustomization()

	NewTemplateRenderer(NewTemplateRegistry()).Render("modern-classic", c, data)

	assert.Equal(t, before, data)
	assert.Equal(t, models.DefaultCustomization(), c)
}

func TestRenderFingerprintChangesWithInput(t *testing.T) {
	c := models.DefaultCustomization()
	base := renderDefault(t, "modern-classic", c)

	c.Colors.Primary = "#000000"
	changed := renderDefault(t, "modern-classic", c)

	assert.NotEqual(t, base.Fingerprint, changed.Fingerprint)
}

func TestRenderUnknownTemplateFallsBack(t *testing.T) {
	c := models.DefaultCustomization()
	fallback := renderDefault(t, "retired-template", c)
	def := renderDefault(t, DefaultTemplateID, c)

	assert.Equal(t, DefaultTemplateID, fallback.TemplateID)
	assert.Equal(t, def, fallback)
}

func TestRenderFieldTogglesDoNotReflow(t *testing.T) {
	toggles := []struct {
		region models.RegionID
		set    func(f *models.FieldSettings, v bool)
	}{
		{models.RegionTaxID, func(f *models.FieldSettings, v bool) { f.ShowTaxID = v }},
		{models.RegionCustomerTaxID, func(f *models.FieldSettings, v bool) { f.ShowCustomerTaxID = v }},
		{models.RegionPONumber, func(f *models.FieldSettings, v bool) { f.ShowPONumber = v }},
		{models.RegionProjectName, func(f *models.FieldSettings, v bool) { f.ShowProjectName = v }},
		{models.RegionDeliveryDate, func(f *models.FieldSettings, v bool) { f.ShowDeliveryDate = v }},
		{models.RegionPaymentTerms, func(f *models.FieldSettings, v bool) { f.ShowPaymentTerms = v }},
		{models.RegionDueDate, func(f *models.FieldSettings, v bool) { f.ShowDueDate = v }},
	}

	for _, toggle := range toggles {
		t.Run(string(toggle.region), func(t *testing.T) {
			on := models.DefaultCustomization()
			toggle.set(&on.Fields, true)
			off := models.DefaultCustomization()
			toggle.set(&off.Fields, false)

			docOn := renderDefault(t, "professional-corporate", on)
			docOff := renderDefault(t, "professional-corporate", off)

			assert.True(t, docOn.HasRegion(toggle.region))
			assert.False(t, docOff.HasRegion(toggle.region))
			assert.Len(t, docOn.Regions, len(docOff.Regions)+1)

			// todas las demás regiones quedan idénticas
			for _, r := range docOff.Regions {
				assert.Equal(t, r, region(t, docOn, r.ID), "region %s moved", r.ID)
			}
		})
	}
}

func TestRenderSizeScaleBoundaries(t *testing.T) {
	for _, scale := range []float64{0.8, 1.2} {
		c := models.DefaultCustomization()
		c.Fonts.SizeScale = scale
		doc := renderDefault(t, "bold-impact", c)

		title := region(t, doc, models.RegionTitle)
		bill := region(t, doc, models.RegionBillTo)
		footer := region(t, doc, models.RegionFooter)

		assert.Equal(t, scale, doc.Theme.SizeScale)
		assert.Greater(t, title.Style.SizePt, bill.Style.SizePt)
		assert.Greater(t, bill.Style.SizePt, footer.Style.SizePt)
	}
}

func TestClampSizeScale(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.8, 0.8},
		{1, 1},
		{1.2, 1.2},
		{0.1, 0.8},
		{4, 1.2},
		{0, 0.8},
		{math.NaN(), 1},
		{math.Inf(1), 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampSizeScale(tt.in), "input %v", tt.in)
	}
}

func TestRenderPageFormat(t *testing.T) {
	c := models.DefaultCustomization()
	letter := c.Apply(models.LayoutPatch{Format: formatPtr(models.PageFormatLetter)})

	assert.Equal(t, models.PageFormatLetter, letter.Layout.Format)
	assert.Equal(t, models.OrientationPortrait, letter.Layout.Orientation)

	doc := renderDefault(t, "modern-classic", letter)
	assert.Equal(t, 215.9, doc.Page.WidthMM)
	assert.Equal(t, 279.4, doc.Page.HeightMM)

	landscape := letter
	landscape.Layout.Orientation = models.OrientationLandscape
	doc = renderDefault(t, "modern-classic", landscape)
	assert.Equal(t, 279.4, doc.Page.WidthMM)
	assert.Equal(t, 215.9, doc.Page.HeightMM)

	bg := region(t, doc, models.RegionBackground)
	assert.Equal(t, 279.4, bg.Box.W)
}

func TestPageSize(t *testing.T) {
	assert.Equal(t, models.Size{WidthMM: 210, HeightMM: 297}, PageSize(models.PageFormatA4, models.OrientationPortrait))
	assert.Equal(t, models.Size{WidthMM: 210, HeightMM: 148}, PageSize(models.PageFormatA5, models.OrientationLandscape))
	assert.Equal(t, models.Size{WidthMM: 210, HeightMM: 297}, PageSize("tabloid", "sideways"))
}

func TestRenderInvalidValuesFallBack(t *testing.T) {
	c := models.DefaultCustomization()
	c.Colors.Primary = "not-a-color"
	c.Colors.Accent = "#ABC"
	c.Layout.Format = "tabloid"
	c.Layout.InvoiceType = "receipt"
	c.Fonts.Heading = ""
	c.Branding.LogoSize = "huge"

	doc := renderDefault(t, "modern-classic", c)
	defaults := models.DefaultCustomization()

	assert.Equal(t, defaults.Colors.Primary, doc.Theme.Colors.Primary)
	assert.Equal(t, "#aabbcc", doc.Theme.Colors.Accent)
	assert.Equal(t, models.PageFormatA4, doc.Page.Format)
	assert.Equal(t, "INVOICE", doc.Title)
	assert.Equal(t, defaults.Fonts.Heading, doc.Theme.HeadingFont)
	assert.Equal(t, 30.0, region(t, doc, models.RegionLogo).Box.W)
}

func TestRenderInvoiceTitle(t *testing.T) {
	for invoiceType, want := range map[models.InvoiceType]string{
		models.InvoiceTypeStandard: "INVOICE",
		models.InvoiceTypeTax:      "TAX INVOICE",
		models.InvoiceTypeProforma: "PROFORMA INVOICE",
	} {
		c := models.DefaultCustomization()
		c.Layout.InvoiceType = invoiceType
		doc := renderDefault(t, "minimal-clean", c)

		assert.Equal(t, want, doc.Title)
		assert.Equal(t, []string{want}, region(t, doc, models.RegionTitle).Lines)
	}
}

func TestRenderLogo(t *testing.T) {
	t.Run("hidden", func(t *testing.T) {
		c := models.DefaultCustomization()
		c.Branding.ShowLogo = false
		doc := renderDefault(t, "modern-classic", c)
		assert.False(t, doc.HasRegion(models.RegionLogo))
	})

	t.Run("size and alignment", func(t *testing.T) {
		tests := []struct {
			size  models.LogoSize
			align models.Alignment
			w     float64
			x     float64
		}{
			{models.LogoSizeSmall, models.AlignLeft, 20, 15},
			{models.LogoSizeMedium, models.AlignCenter, 30, 90},
			{models.LogoSizeLarge, models.AlignRight, 40, 155},
		}
		for _, tt := range tests {
			c := models.DefaultCustomization()
			c.Branding.LogoSize = tt.size
			c.Branding.LogoAlignment = tt.align
			logo := region(t, renderDefault(t, "minimal-clean", c), models.RegionLogo)

			assert.Equal(t, tt.w, logo.Box.W)
			assert.Equal(t, tt.x, logo.Box.X)
		}
	})

	t.Run("placeholder initials", func(t *testing.T) {
		c := models.DefaultCustomization()
		c.Branding.CompanyName = "acme widgets inc"
		logo := region(t, renderDefault(t, "modern-classic", c), models.RegionLogo)
		assert.Equal(t, models.RegionKindText, logo.Kind)
		assert.Equal(t, []string{"AW"}, logo.Lines)
	})

	t.Run("image", func(t *testing.T) {
		c := models.DefaultCustomization()
		c.Branding.Logo = "https://cdn.example.com/logo.png"
		logo := region(t, renderDefault(t, "modern-classic", c), models.RegionLogo)
		assert.Equal(t, models.RegionKindImage, logo.Kind)
		assert.Equal(t, "https://cdn.example.com/logo.png", logo.ImageRef)
	})
}

func TestRenderCategoryStrategies(t *testing.T) {
	c := models.DefaultCustomization()

	modern := renderDefault(t, "modern-classic", c)
	assert.True(t, modern.HasRegion(models.RegionHeaderBand))
	assert.Equal(t, c.Colors.Primary, region(t, modern, models.RegionHeaderBand).Style.Background)

	minimal := renderDefault(t, "minimal-clean", c)
	assert.False(t, minimal.HasRegion(models.RegionHeaderBand))
	assert.True(t, minimal.HasRegion(models.RegionHeaderRule))
	assert.Empty(t, region(t, minimal, models.RegionItems).Table.StripeColor)

	creative := renderDefault(t, "creative-studio", c)
	assert.True(t, creative.HasRegion(models.RegionAccentStripe))

	bold := renderDefault(t, "bold-impact", c)
	classicTitle := region(t, modern, models.RegionTitle).Style.SizePt
	assert.Greater(t, region(t, bold, models.RegionTitle).Style.SizePt, classicTitle)
}

func TestRenderItemsAndTotals(t *testing.T) {
	doc := renderDefault(t, "modern-classic", models.DefaultCustomization())

	items := region(t, doc, models.RegionItems)
	require.NotNil(t, items.Table)
	require.Len(t, items.Table.Rows, 2)
	assert.Equal(t, []string{"1", "Web Design Services", "1", "$1,500.00", "18%", "$1,500.00"}, items.Table.Rows[0])
	assert.Equal(t, []string{"2", "Hosting (12 months)", "12", "$25.00", "18%", "$300.00"}, items.Table.Rows[1])

	totals := region(t, doc, models.RegionTotals)
	assert.Equal(t, [][]string{
		{"Subtotal", "$1,800.00"},
		{"Tax", "$324.00"},
		{"Total", "$2,124.00"},
	}, totals.Table.Rows)
}

func TestRenderItemOverflow(t *testing.T) {
	var draft models.InvoiceDraft
	for i := 0; i < 80; i++ {
		draft.Items = append(draft.Items, models.DraftItem{Description: "Line", Quantity: 1, UnitPrice: 1})
	}
	data := NewInvoiceAdapter("$").Adapt(&draft)
	doc := NewTemplateRenderer(NewTemplateRegistry()).Render("modern-classic", models.DefaultCustomization(), data)

	items := region(t, doc, models.RegionItems)
	last := items.Table.Rows[len(items.Table.Rows)-1]
	assert.Contains(t, last[1], "more items")
	assert.Less(t, items.Box.Y+items.Box.H, region(t, doc, models.RegionFooterRule).Box.Y)
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5.5, "$5.50"},
		{999.999, "$1,000.00"},
		{1234567.891, "$1,234,567.89"},
		{-2124, "-$2,124.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney("$", tt.in))
	}
}
