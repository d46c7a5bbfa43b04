package models

// DraftCustomer representa los datos del cliente tal como se están editando
type DraftCustomer struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Address string `json:"address"`
	TaxID   string `json:"taxId,omitempty"`
}

// DraftItem representa una línea de la factura en edición
type DraftItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TaxRate     float64 `json:"taxRate"`
	Amount      float64 `json:"amount"`
}

// InvoiceDraft es la factura que el usuario está editando. Los totales son
// punteros para distinguir "no calculado" de cero.
type InvoiceDraft struct {
	InvoiceNumber string        `json:"invoiceNumber"`
	Date          string        `json:"date"`
	DueDate       string        `json:"dueDate"`
	SellerTaxID   string        `json:"sellerTaxId,omitempty"`
	PONumber      string        `json:"poNumber,omitempty"`
	ProjectName   string        `json:"projectName,omitempty"`
	DeliveryDate  string        `json:"deliveryDate,omitempty"`
	PaymentTerms  string        `json:"paymentTerms,omitempty"`
	Customer      DraftCustomer `json:"customer"`
	Items         []DraftItem   `json:"items"`
	Subtotal      *float64      `json:"subtotal,omitempty"`
	TaxTotal      *float64      `json:"taxTotal,omitempty"`
	GrandTotal    *float64      `json:"grandTotal,omitempty"`
	Notes         string        `json:"notes,omitempty"`
}

// BillTo representa el destinatario normalizado
type BillTo struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Address string `json:"address"`
	TaxID   string `json:"taxId,omitempty"`
}

// LineItem representa una línea normalizada
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TaxRate     float64 `json:"taxRate"`
	Amount      float64 `json:"amount"`
}

// InvoiceData es la entrada normalizada del renderer. El renderer nunca la modifica.
type InvoiceData struct {
	InvoiceNumber string     `json:"invoiceNumber"`
	Date          string     `json:"date"`
	DueDate       string     `json:"dueDate"`
	SellerTaxID   string     `json:"sellerTaxId"`
	PONumber      string     `json:"poNumber"`
	ProjectName   string     `json:"projectName"`
	DeliveryDate  string     `json:"deliveryDate"`
	PaymentTerms  string     `json:"paymentTerms"`
	BillTo        BillTo     `json:"billTo"`
	Items         []LineItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	TaxTotal      float64    `json:"taxTotal"`
	GrandTotal    float64    `json:"grandTotal"`
	Currency      string     `json:"currency"`
	Notes         string     `json:"notes,omitempty"`
}
