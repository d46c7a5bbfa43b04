package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownSection se retorna cuando el nombre de sección no existe
	ErrUnknownSection = errors.New("unknown customization section")
	// ErrInvalidPatch se retorna cuando el cuerpo del patch no es válido
	ErrInvalidPatch = errors.New("invalid customization patch")
)

// Section identifica una sección del documento de personalización
type Section string

const (
	SectionColors   Section = "colors"
	SectionFonts    Section = "fonts"
	SectionBranding Section = "branding"
	SectionLayout   Section = "layout"
	SectionFields   Section = "fields"
	SectionFooter   Section = "footer"
)

// Sections lista las secciones en orden de documento
var Sections = []Section{SectionColors, SectionFonts, SectionBranding, SectionLayout, SectionFields, SectionFooter}

// Patch es una actualización parcial de una única sección. Los campos nil
// no se modifican. La interfaz está cerrada a los tipos de este paquete.
type Patch interface {
	Section() Section
	Validate() []ErrorDetail
	apply(c *Customization)
}

// ColorsPatch actualiza la sección colors
type ColorsPatch struct {
	Primary    *string `json:"primary,omitempty"`
	Secondary  *string `json:"secondary,omitempty"`
	Accent     *string `json:"accent,omitempty"`
	Background *string `json:"background,omitempty"`
	Text       *string `json:"text,omitempty"`
}

func (p ColorsPatch) Section() Section { return SectionColors }

func (p ColorsPatch) Validate() []ErrorDetail {
	var details []ErrorDetail
	check := func(field string, v *string) {
		if v != nil && !IsHexColor(*v) {
			details = append(details, ErrorDetail{Field: "colors." + field, Issue: "Must be a hex color like #1a2b3c"})
		}
	}
	check("primary", p.Primary)
	check("secondary", p.Secondary)
	check("accent", p.Accent)
	check("background", p.Background)
	check("text", p.Text)
	return details
}

func (p ColorsPatch) apply(c *Customization) {
	setString(&c.Colors.Primary, p.Primary)
	setString(&c.Colors.Secondary, p.Secondary)
	setString(&c.Colors.Accent, p.Accent)
	setString(&c.Colors.Background, p.Background)
	setString(&c.Colors.Text, p.Text)
}

// FontsPatch actualiza la sección fonts
type FontsPatch struct {
	Heading   *string  `json:"heading,omitempty"`
	Body      *string  `json:"body,omitempty"`
	SizeScale *float64 `json:"sizeScale,omitempty"`
}

func (p FontsPatch) Section() Section { return SectionFonts }

func (p FontsPatch) Validate() []ErrorDetail {
	var details []ErrorDetail
	if p.Heading != nil && *p.Heading == "" {
		details = append(details, ErrorDetail{Field: "fonts.heading", Issue: "Must not be empty"})
	}
	if p.Body != nil && *p.Body == "" {
		details = append(details, ErrorDetail{Field: "fonts.body", Issue: "Must not be empty"})
	}
	if p.SizeScale != nil {
		v := *p.SizeScale
		if math.IsNaN(v) || v < MinSizeScale || v > MaxSizeScale {
			details = append(details, ErrorDetail{
				Field: "fonts.sizeScale",
				Issue: fmt.Sprintf("Must be between %.1f and %.1f", MinSizeScale, MaxSizeScale),
			})
		}
	}
	return details
}

func (p FontsPatch) apply(c *Customization) {
	setString(&c.Fonts.Heading, p.Heading)
	setString(&c.Fonts.Body, p.Body)
	if p.SizeScale != nil {
		c.Fonts.SizeScale = *p.SizeScale
	}
}

// BrandingPatch actualiza la sección branding
type BrandingPatch struct {
	Logo           *string    `json:"logo,omitempty"`
	LogoSize       *LogoSize  `json:"logoSize,omitempty"`
	LogoAlignment  *Alignment `json:"logoAlignment,omitempty"`
	CompanyName    *string    `json:"companyName,omitempty"`
	CompanyAddress *string    `json:"companyAddress,omitempty"`
	CompanyPhone   *string    `json:"companyPhone,omitempty"`
	CompanyEmail   *string    `json:"companyEmail,omitempty"`
	ShowLogo       *bool      `json:"showLogo,omitempty"`
}

func (p BrandingPatch) Section() Section { return SectionBranding }

func (p BrandingPatch) Validate() []ErrorDetail {
	var details []ErrorDetail
	if p.LogoSize != nil && !p.LogoSize.Valid() {
		details = append(details, ErrorDetail{Field: "branding.logoSize", Issue: "Must be 'small', 'medium' or 'large'"})
	}
	if p.LogoAlignment != nil && !p.LogoAlignment.Valid() {
		details = append(details, ErrorDetail{Field: "branding.logoAlignment", Issue: "Must be 'left', 'center' or 'right'"})
	}
	if p.CompanyName != nil && *p.CompanyName == "" {
		details = append(details, ErrorDetail{Field: "branding.companyName", Issue: "Must not be empty"})
	}
	return details
}

func (p BrandingPatch) apply(c *Customization) {
	setString(&c.Branding.Logo, p.Logo)
	if p.LogoSize != nil {
		c.Branding.LogoSize = *p.LogoSize
	}
	if p.LogoAlignment != nil {
		c.Branding.LogoAlignment = *p.LogoAlignment
	}
	setString(&c.Branding.CompanyName, p.CompanyName)
	setString(&c.Branding.CompanyAddress, p.CompanyAddress)
	setString(&c.Branding.CompanyPhone, p.CompanyPhone)
	setString(&c.Branding.CompanyEmail, p.CompanyEmail)
	setBool(&c.Branding.ShowLogo, p.ShowLogo)
}

// LayoutPatch actualiza la sección layout
type LayoutPatch struct {
	InvoiceType *InvoiceType `json:"invoiceType,omitempty"`
	Format      *PageFormat  `json:"format,omitempty"`
	Orientation *Orientation `json:"orientation,omitempty"`
}

func (p LayoutPatch) Section() Section { return SectionLayout }

func (p LayoutPatch) Validate() []ErrorDetail {
	var details []ErrorDetail
	if p.InvoiceType != nil && !p.InvoiceType.Valid() {
		details = append(details, ErrorDetail{Field: "layout.invoiceType", Issue: "Must be 'standard', 'tax' or 'proforma'"})
	}
	if p.Format != nil && !p.Format.Valid() {
		details = append(details, ErrorDetail{Field: "layout.format", Issue: "Must be 'a4', 'letter' or 'a5'"})
	}
	if p.Orientation != nil && !p.Orientation.Valid() {
		details = append(details, ErrorDetail{Field: "layout.orientation", Issue: "Must be 'portrait' or 'landscape'"})
	}
	return details
}

func (p LayoutPatch) apply(c *Customization) {
	if p.InvoiceType != nil {
		c.Layout.InvoiceType = *p.InvoiceType
	}
	if p.Format != nil {
		c.Layout.Format = *p.Format
	}
	if p.Orientation != nil {
		c.Layout.Orientation = *p.Orientation
	}
}

// FieldsPatch actualiza la sección fields
type FieldsPatch struct {
	ShowTaxID         *bool `json:"showTaxId,omitempty"`
	ShowCustomerTaxID *bool `json:"showCustomerTaxId,omitempty"`
	ShowPONumber      *bool `json:"showPoNumber,omitempty"`
	ShowProjectName   *bool `json:"showProjectName,omitempty"`
	ShowDeliveryDate  *bool `json:"showDeliveryDate,omitempty"`
	ShowPaymentTerms  *bool `json:"showPaymentTerms,omitempty"`
	ShowDueDate       *bool `json:"showDueDate,omitempty"`
}

func (p FieldsPatch) Section() Section { return SectionFields }

func (p FieldsPatch) Validate() []ErrorDetail { return nil }

func (p FieldsPatch) apply(c *Customization) {
	setBool(&c.Fields.ShowTaxID, p.ShowTaxID)
	setBool(&c.Fields.ShowCustomerTaxID, p.ShowCustomerTaxID)
	setBool(&c.Fields.ShowPONumber, p.ShowPONumber)
	setBool(&c.Fields.ShowProjectName, p.ShowProjectName)
	setBool(&c.Fields.ShowDeliveryDate, p.ShowDeliveryDate)
	setBool(&c.Fields.ShowPaymentTerms, p.ShowPaymentTerms)
	setBool(&c.Fields.ShowDueDate, p.ShowDueDate)
}

// FooterPatch actualiza la sección footer
type FooterPatch struct {
	Content       *string `json:"content,omitempty"`
	ShowSignature *bool   `json:"showSignature,omitempty"`
	ShowStamp     *bool   `json:"showStamp,omitempty"`
	ShowQRCode    *bool   `json:"showQrCode,omitempty"`
}

func (p FooterPatch) Section() Section { return SectionFooter }

func (p FooterPatch) Validate() []ErrorDetail { return nil }

func (p FooterPatch) apply(c *Customization) {
	setString(&c.Footer.Content, p.Content)
	setBool(&c.Footer.ShowSignature, p.ShowSignature)
	setBool(&c.Footer.ShowStamp, p.ShowStamp)
	setBool(&c.Footer.ShowQRCode, p.ShowQRCode)
}

// DecodePatch decodifica el cuerpo JSON de un patch para la sección indicada.
// Las claves desconocidas son rechazadas.
func DecodePatch(section string, data []byte) (Patch, error) {
	var target Patch
	switch Section(section) {
	case SectionColors:
		var p ColorsPatch
		if err := decodeStrict(data, &p); err != nil {
			return nil, err
		}
		target = p
	case SectionFonts:
		var p FontsPatch
		if err := decodeStrict(data, &p); err != nil {
			return nil, err
		}
		target = p
	case SectionBranding:
		var p BrandingPatch
		if err := decodeStrict(data, &p); err != nil {
			return nil, err
		}
		target = p
	case SectionLayout:
		var p LayoutPatch
		if err := decodeStrict(data, &p); err != nil {
			return nil, err
		}
		target = p
	case SectionFields:
		var p FieldsPatch
		if err := decodeStrict(data, &p); err != nil {
			return nil, err
		}
		target = p
	case SectionFooter:
		var p FooterPatch
		if err := decodeStrict(data, &p); err != nil {
			return nil, err
		}
		target = p
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}
	return target, nil
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	return nil
}

// Valid indica si el tamaño de logo es conocido
func (s LogoSize) Valid() bool {
	return s == LogoSizeSmall || s == LogoSizeMedium || s == LogoSizeLarge
}

// Valid indica si la alineación es conocida
func (a Alignment) Valid() bool {
	return a == AlignLeft || a == AlignCenter || a == AlignRight
}

// Valid indica si el tipo de factura es conocido
func (t InvoiceType) Valid() bool {
	return t == InvoiceTypeStandard || t == InvoiceTypeTax || t == InvoiceTypeProforma
}

// Valid indica si el formato de página es conocido
func (f PageFormat) Valid() bool {
	return f == PageFormatA4 || f == PageFormatLetter || f == PageFormatA5
}

// Valid indica si la orientación es conocida
func (o Orientation) Valid() bool {
	return o == OrientationPortrait || o == OrientationLandscape
}

// IsHexColor valida colores #rgb y #rrggbb
func IsHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// String retorna un puntero al valor; útil para construir patches
func String(v string) *string { return &v }

// Bool retorna un puntero al valor
func Bool(v bool) *bool { return &v }

// Float retorna un puntero al valor
func Float(v float64) *float64 { return &v }
