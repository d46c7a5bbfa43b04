package models

// RegionID identifica una zona del documento renderizado
type RegionID string

const (
	RegionBackground    RegionID = "background"
	RegionHeaderBand    RegionID = "header-band"
	RegionAccentStripe  RegionID = "accent-stripe"
	RegionHeaderRule    RegionID = "header-rule"
	RegionLogo          RegionID = "logo"
	RegionTitle         RegionID = "title"
	RegionCompany       RegionID = "company"
	RegionTaxID         RegionID = "tax-id"
	RegionInvoiceMeta   RegionID = "invoice-meta"
	RegionDueDate       RegionID = "due-date"
	RegionPONumber      RegionID = "po-number"
	RegionProjectName   RegionID = "project-name"
	RegionDeliveryDate  RegionID = "delivery-date"
	RegionPaymentTerms  RegionID = "payment-terms"
	RegionBillTo        RegionID = "bill-to"
	RegionCustomerTaxID RegionID = "customer-tax-id"
	RegionItems         RegionID = "items"
	RegionTotals        RegionID = "totals"
	RegionNotes         RegionID = "notes"
	RegionFooterRule    RegionID = "footer-rule"
	RegionFooter        RegionID = "footer"
	RegionSignature     RegionID = "signature"
	RegionStamp         RegionID = "stamp"
	RegionQRCode        RegionID = "qr-code"
)

// RegionKind indica cómo se dibuja una región
type RegionKind string

const (
	RegionKindShape RegionKind = "shape"
	RegionKindText  RegionKind = "text"
	RegionKindImage RegionKind = "image"
	RegionKindTable RegionKind = "table"
)

// Rect es una caja en milímetros, con origen en la esquina superior izquierda
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// TextStyle describe la tipografía y colores de una región
type TextStyle struct {
	Font       string  `json:"font"`
	SizePt     float64 `json:"sizePt"`
	Bold       bool    `json:"bold,omitempty"`
	Color      string  `json:"color"`
	Background string  `json:"background,omitempty"`
	Border     string  `json:"border,omitempty"`
}

// TableColumn describe una columna de la tabla de líneas
type TableColumn struct {
	Title   string    `json:"title"`
	WidthMM float64   `json:"widthMm"`
	Align   Alignment `json:"align"`
}

// Table es el contenido tabular de la región de líneas
type Table struct {
	Columns     []TableColumn `json:"columns"`
	Rows        [][]string    `json:"rows"`
	RowHeightMM float64       `json:"rowHeightMm"`
	HeaderStyle TextStyle     `json:"headerStyle"`
	StripeColor string        `json:"stripeColor,omitempty"`
}

// Region es una zona posicionada del documento
type Region struct {
	ID       RegionID   `json:"id"`
	Kind     RegionKind `json:"kind"`
	Box      Rect       `json:"box"`
	Align    Alignment  `json:"align,omitempty"`
	Style    TextStyle  `json:"style"`
	Lines    []string   `json:"lines,omitempty"`
	// Emphasis dibuja la primera línea en negrita
	Emphasis bool       `json:"emphasis,omitempty"`
	Table    *Table     `json:"table,omitempty"`
	ImageRef string     `json:"imageRef,omitempty"`
}

// PageSpec describe el tamaño físico de la página
type PageSpec struct {
	Format      PageFormat  `json:"format"`
	Orientation Orientation `json:"orientation"`
	WidthMM     float64     `json:"widthMm"`
	HeightMM    float64     `json:"heightMm"`
}

// Theme contiene los valores ya saneados que usó el renderer
type Theme struct {
	Colors      ColorSettings `json:"colors"`
	HeadingFont string        `json:"headingFont"`
	BodyFont    string        `json:"bodyFont"`
	SizeScale   float64       `json:"sizeScale"`
}

// Document es la salida visual del renderer
type Document struct {
	TemplateID   string           `json:"templateId"`
	TemplateName string           `json:"templateName"`
	Category     TemplateCategory `json:"category"`
	InvoiceType  InvoiceType      `json:"invoiceType"`
	Title        string           `json:"title"`
	Page         PageSpec         `json:"page"`
	Theme        Theme            `json:"theme"`
	Regions      []Region         `json:"regions"`
	Fingerprint  string           `json:"fingerprint"`
}

// Region retorna la región con el ID indicado
func (d *Document) Region(id RegionID) (Region, bool) {
	for _, r := range d.Regions {
		if r.ID == id {
			return r, true
		}
	}
	return Region{}, false
}

// HasRegion indica si el documento contiene la región
func (d *Document) HasRegion(id RegionID) bool {
	_, ok := d.Region(id)
	return ok
}
