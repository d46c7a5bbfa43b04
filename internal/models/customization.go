package models

import (
	"encoding/json"
	"fmt"
)

// LogoSize representa el tamaño del logo en la cabecera
type LogoSize string

const (
	LogoSizeSmall  LogoSize = "small"
	LogoSizeMedium LogoSize = "medium"
	LogoSizeLarge  LogoSize = "large"
)

// Alignment representa la alineación horizontal de un bloque
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// InvoiceType representa el tipo de factura que se imprime en el título
type InvoiceType string

const (
	InvoiceTypeStandard InvoiceType = "standard"
	InvoiceTypeTax      InvoiceType = "tax"
	InvoiceTypeProforma InvoiceType = "proforma"
)

// PageFormat representa el formato de página
type PageFormat string

const (
	PageFormatA4     PageFormat = "a4"
	PageFormatLetter PageFormat = "letter"
	PageFormatA5     PageFormat = "a5"
)

// Orientation representa la orientación de la página
type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
)

// Límites prácticos del factor de escala tipográfica
const (
	MinSizeScale = 0.8
	MaxSizeScale = 1.2
)

// ColorSettings contiene la paleta de la plantilla (valores hex)
type ColorSettings struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// FontSettings contiene las familias tipográficas y el factor de escala
type FontSettings struct {
	Heading   string  `json:"heading"`
	Body      string  `json:"body"`
	SizeScale float64 `json:"sizeScale"`
}

// BrandingSettings contiene logo y datos de la empresa emisora
type BrandingSettings struct {
	Logo           string    `json:"logo,omitempty"`
	LogoSize       LogoSize  `json:"logoSize"`
	LogoAlignment  Alignment `json:"logoAlignment"`
	CompanyName    string    `json:"companyName"`
	CompanyAddress string    `json:"companyAddress"`
	CompanyPhone   string    `json:"companyPhone"`
	CompanyEmail   string    `json:"companyEmail"`
	ShowLogo       bool      `json:"showLogo"`
}

// LayoutSettings contiene tipo de factura, formato y orientación
type LayoutSettings struct {
	InvoiceType InvoiceType `json:"invoiceType"`
	Format      PageFormat  `json:"format"`
	Orientation Orientation `json:"orientation"`
}

// FieldSettings activa o desactiva los campos opcionales de la factura
type FieldSettings struct {
	ShowTaxID         bool `json:"showTaxId"`
	ShowCustomerTaxID bool `json:"showCustomerTaxId"`
	ShowPONumber      bool `json:"showPoNumber"`
	ShowProjectName   bool `json:"showProjectName"`
	ShowDeliveryDate  bool `json:"showDeliveryDate"`
	ShowPaymentTerms  bool `json:"showPaymentTerms"`
	ShowDueDate       bool `json:"showDueDate"`
}

// FooterSettings contiene el texto del pie y los elementos opcionales
type FooterSettings struct {
	Content       string `json:"content"`
	ShowSignature bool   `json:"showSignature"`
	ShowStamp     bool   `json:"showStamp"`
	ShowQRCode    bool   `json:"showQrCode"`
}

// Customization es el documento de personalización de la plantilla.
// Las seis secciones están siempre pobladas.
type Customization struct {
	Colors   ColorSettings    `json:"colors"`
	Fonts    FontSettings     `json:"fonts"`
	Branding BrandingSettings `json:"branding"`
	Layout   LayoutSettings   `json:"layout"`
	Fields   FieldSettings    `json:"fields"`
	Footer   FooterSettings   `json:"footer"`
}

// DefaultCustomization retorna el documento por defecto
func DefaultCustomization() Customization {
	return Customization{
		Colors: ColorSettings{
			Primary:    "#2563eb",
			Secondary:  "#64748b",
			Accent:     "#f59e0b",
			Background: "#ffffff",
			Text:       "#1f2937",
		},
		Fonts: FontSettings{
			Heading:   "Helvetica",
			Body:      "Helvetica",
			SizeScale: 1,
		},
		Branding: BrandingSettings{
			LogoSize:       LogoSizeMedium,
			LogoAlignment:  AlignLeft,
			CompanyName:    "Your Company",
			CompanyAddress: "123 Business Ave, Suite 100, City, ST 12345",
			CompanyPhone:   "+1 (555) 123-4567",
			CompanyEmail:   "billing@yourcompany.com",
			ShowLogo:       true,
		},
		Layout: LayoutSettings{
			InvoiceType: InvoiceTypeStandard,
			Format:      PageFormatA4,
			Orientation: OrientationPortrait,
		},
		Fields: FieldSettings{
			ShowTaxID:        true,
			ShowPaymentTerms: true,
			ShowDueDate:      true,
		},
		Footer: FooterSettings{
			Content: "Thank you for your business!",
		},
	}
}

// Clone retorna una copia independiente del documento
func (c Customization) Clone() Customization {
	// Todas las secciones son valores; la copia del struct no comparte memoria
	return c
}

// Apply retorna una copia del documento con el patch aplicado sobre su sección
func (c Customization) Apply(p Patch) Customization {
	out := c.Clone()
	if p != nil {
		p.apply(&out)
	}
	return out
}

// CustomizationState es el par persistido bajo la clave de configuración
type CustomizationState struct {
	TemplateID    string        `json:"templateId"`
	Customization Customization `json:"customization"`
}

// Clone retorna una copia independiente del estado
func (s CustomizationState) Clone() CustomizationState {
	return CustomizationState{
		TemplateID:    s.TemplateID,
		Customization: s.Customization.Clone(),
	}
}

// DecodeCustomizationState decodifica el estado persistido. Las secciones o
// campos ausentes conservan los valores por defecto; un JSON corrupto retorna error.
func DecodeCustomizationState(data []byte, defaultTemplateID string) (CustomizationState, error) {
	state := CustomizationState{
		TemplateID:    defaultTemplateID,
		Customization: DefaultCustomization(),
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return CustomizationState{}, fmt.Errorf("error decoding customization state: %w", err)
	}

	if state.TemplateID == "" {
		state.TemplateID = defaultTemplateID
	}

	return state, nil
}
