package services

import (
	"strings"

	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/shopspring/decimal"
)

// Valores de ejemplo usados cuando la factura en edición no los tiene
const (
	PlaceholderCustomerName    = "Customer Name"
	PlaceholderCustomerAddress = "123 Business Street, City, State 12345"

	sampleInvoiceNumber = "INV-0001"
	sampleDate          = "2024-01-15"
	sampleDueDate       = "2024-02-14"
	samplePONumber      = "PO-0001"
	sampleProjectName   = "Website Redesign"
	sampleDeliveryDate  = "2024-01-20"
	samplePaymentTerms  = "Net 30"
	sampleSellerTaxID   = "TAX-123456789"
)

var hundred = decimal.NewFromInt(100)

// SampleItems retorna las dos líneas de ejemplo de la vista previa
func SampleItems() []models.LineItem {
	return []models.LineItem{
		{ID: "1", Description: "Web Design Services", Quantity: 1, UnitPrice: 1500, TaxRate: 18, Amount: 1500},
		{ID: "2", Description: "Hosting (12 months)", Quantity: 12, UnitPrice: 25, TaxRate: 18, Amount: 300},
	}
}

// InvoiceAdapter convierte la factura en edición en la entrada normalizada del renderer
type InvoiceAdapter struct {
	currency string
}

// NewInvoiceAdapter crea una nueva instancia del adaptador
func NewInvoiceAdapter(currency string) *InvoiceAdapter {
	if strings.TrimSpace(currency) == "" {
		currency = "$"
	}
	return &InvoiceAdapter{currency: currency}
}

// Currency retorna el símbolo de moneda configurado
func (a *InvoiceAdapter) Currency() string {
	return a.currency
}

// Adapt normaliza un borrador. Es una función pura: no lee el reloj ni
// modifica el borrador. Un borrador nil produce la factura de ejemplo completa.
func (a *InvoiceAdapter) Adapt(draft *models.InvoiceDraft) models.InvoiceData {
	if draft == nil {
		draft = &models.InvoiceDraft{}
	}

	data := models.InvoiceData{
		InvoiceNumber: orDefault(draft.InvoiceNumber, sampleInvoiceNumber),
		Date:          orDefault(draft.Date, sampleDate),
		DueDate:       orDefault(draft.DueDate, sampleDueDate),
		SellerTaxID:   orDefault(draft.SellerTaxID, sampleSellerTaxID),
		PONumber:      orDefault(draft.PONumber, samplePONumber),
		ProjectName:   orDefault(draft.ProjectName, sampleProjectName),
		DeliveryDate:  orDefault(draft.DeliveryDate, sampleDeliveryDate),
		PaymentTerms:  orDefault(draft.PaymentTerms, samplePaymentTerms),
		BillTo: models.BillTo{
			Name:    orDefault(draft.Customer.Name, PlaceholderCustomerName),
			Company: strings.TrimSpace(draft.Customer.Company),
			Address: orDefault(draft.Customer.Address, PlaceholderCustomerAddress),
			TaxID:   strings.TrimSpace(draft.Customer.TaxID),
		},
		Currency: a.currency,
		Notes:    strings.TrimSpace(draft.Notes),
	}

	if len(draft.Items) == 0 {
		data.Items = SampleItems()
	} else {
		data.Items = make([]models.LineItem, 0, len(draft.Items))
		for _, item := range draft.Items {
			data.Items = append(data.Items, normalizeItem(item))
		}
	}

	subtotal, taxTotal := sumItems(data.Items)
	grandTotal := subtotal.Add(taxTotal)

	data.Subtotal = passOrCompute(draft.Subtotal, subtotal)
	data.TaxTotal = passOrCompute(draft.TaxTotal, taxTotal)
	data.GrandTotal = passOrCompute(draft.GrandTotal, grandTotal)

	return data
}

func normalizeItem(item models.DraftItem) models.LineItem {
	amount := item.Amount
	if amount == 0 && item.Quantity != 0 && item.UnitPrice != 0 {
		amount, _ = decimal.NewFromFloat(item.Quantity).
			Mul(decimal.NewFromFloat(item.UnitPrice)).
			Round(2).
			Float64()
	}
	return models.LineItem{
		ID:          item.ID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TaxRate:     item.TaxRate,
		Amount:      amount,
	}
}

func sumItems(items []models.LineItem) (subtotal, tax decimal.Decimal) {
	subtotal = decimal.Zero
	tax = decimal.Zero
	for _, item := range items {
		amount := decimal.NewFromFloat(item.Amount)
		subtotal = subtotal.Add(amount)
		tax = tax.Add(amount.Mul(decimal.NewFromFloat(item.TaxRate)).Div(hundred))
	}
	return subtotal.Round(2), tax.Round(2)
}

func passOrCompute(provided *float64, computed decimal.Decimal) float64 {
	if provided != nil {
		return *provided
	}
	v, _ := computed.Float64()
	return v
}

func orDefault(v, fallback string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return fallback
}
