package services

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrInvalidZoom se retorna cuando el nivel de zoom no existe
var ErrInvalidZoom = errors.New("invalid zoom level")

// Escalas de vista de cada nivel de zoom
var zoomScales = map[models.ZoomLevel]float64{
	models.Zoom50:   0.5,
	models.Zoom75:   0.75,
	models.Zoom100:  1.0,
	models.ZoomFit:  0.6,
	models.ZoomFill: 1.25,
}

// ZoomScale retorna la escala de un nivel de zoom
func ZoomScale(z models.ZoomLevel) (float64, error) {
	scale, ok := zoomScales[z]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidZoom, z)
	}
	return scale, nil
}

// PreviewViewport mantiene el documento renderizado y el estado de zoom.
// Se re-renderiza en cada cambio del CustomizationStore.
type PreviewViewport struct {
	mu sync.RWMutex

	renderer  *TemplateRenderer
	adapter   *InvoiceAdapter
	html      *HTMLRenderer
	generator *DocumentGenerator
	logger    *logrus.Logger

	zoom     models.ZoomLevel
	draft    *models.InvoiceDraft
	state    models.CustomizationState
	document models.Document

	unsubscribe func()
}

// NewPreviewViewport crea el visor, lo suscribe al store y renderiza el estado actual
func NewPreviewViewport(store *CustomizationStore, renderer *TemplateRenderer, adapter *InvoiceAdapter, html *HTMLRenderer, generator *DocumentGenerator, zoom models.ZoomLevel, logger *logrus.Logger) (*PreviewViewport, error) {
	if _, err := ZoomScale(zoom); err != nil {
		return nil, err
	}

	v := &PreviewViewport{
		renderer:  renderer,
		adapter:   adapter,
		html:      html,
		generator: generator,
		logger:    logger,
		zoom:      zoom,
	}

	// Los cambios emitidos mientras se renderiza esperan al lock y se aplican después
	v.mu.Lock()
	v.unsubscribe = store.Subscribe(v.onStateChange)
	v.state = store.Snapshot()
	v.renderLocked()
	v.mu.Unlock()

	return v, nil
}

func (v *PreviewViewport) onStateChange(state models.CustomizationState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.state = state
	v.renderLocked()
}

func (v *PreviewViewport) renderLocked() {
	data := v.adapter.Adapt(v.draft)
	v.document = v.renderer.Render(v.state.TemplateID, v.state.Customization, data)

	v.logger.WithFields(logrus.Fields{
		"template_id": v.document.TemplateID,
		"fingerprint": v.document.Fingerprint,
	}).Debug("Preview re-rendered")
}

// SetZoom cambia el nivel de zoom. Un valor inválido deja el estado sin cambios.
func (v *PreviewViewport) SetZoom(z models.ZoomLevel) error {
	if _, err := ZoomScale(z); err != nil {
		return err
	}

	v.mu.Lock()
	v.zoom = z
	v.mu.Unlock()
	return nil
}

// Zoom retorna el nivel de zoom actual
func (v *PreviewViewport) Zoom() models.ZoomLevel {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoom
}

// SetDraft reemplaza la factura en edición; nil vuelve a la factura de ejemplo
func (v *PreviewViewport) SetDraft(draft *models.InvoiceDraft) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.draft = cloneDraft(draft)
	v.renderLocked()
}

// Frame retorna el documento junto con la transformación de vista
func (v *PreviewViewport) Frame() models.PreviewFrame {
	v.mu.RLock()
	defer v.mu.RUnlock()

	scale := zoomScales[v.zoom]
	container := models.Size{WidthMM: v.document.Page.WidthMM, HeightMM: v.document.Page.HeightMM}

	return models.PreviewFrame{
		Zoom:      v.zoom,
		Scale:     scale,
		Container: container,
		Scaled: models.Size{
			WidthMM:  round2(container.WidthMM * scale),
			HeightMM: round2(container.HeightMM * scale),
		},
		Document: cloneDocument(v.document),
	}
}

// PrintDocument retorna el documento sin escala, tal como se imprime o exporta
func (v *PreviewViewport) PrintDocument() models.Document {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return cloneDocument(v.document)
}

// WritePreviewHTML escribe el documento con la escala del zoom actual
func (v *PreviewViewport) WritePreviewHTML(w io.Writer) error {
	frame := v.Frame()
	return v.html.Render(w, frame.Document, frame.Scale)
}

// ExportHTML escribe el documento sin escala
func (v *PreviewViewport) ExportHTML(w io.Writer) error {
	return v.html.Render(w, v.PrintDocument(), 1)
}

// ExportPDF genera el PDF del documento sin escala
func (v *PreviewViewport) ExportPDF() ([]byte, models.Document, error) {
	doc := v.PrintDocument()
	data, err := v.generator.GeneratePDF(doc)
	if err != nil {
		return nil, doc, err
	}
	return data, doc, nil
}

// Close cancela la suscripción al store
func (v *PreviewViewport) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

func cloneDraft(d *models.InvoiceDraft) *models.InvoiceDraft {
	if d == nil {
		return nil
	}
	out := *d
	out.Items = append([]models.DraftItem(nil), d.Items...)
	out.Subtotal = cloneFloat(d.Subtotal)
	out.TaxTotal = cloneFloat(d.TaxTotal)
	out.GrandTotal = cloneFloat(d.GrandTotal)
	return &out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	f := *v
	return &f
}

func cloneDocument(d models.Document) models.Document {
	out := d
	out.Regions = make([]models.Region, len(d.Regions))
	for i, r := range d.Regions {
		r.Lines = append([]string(nil), r.Lines...)
		if r.Table != nil {
			t := *r.Table
			t.Columns = append([]models.TableColumn(nil), t.Columns...)
			t.Rows = make([][]string, len(r.Table.Rows))
			for j, row := range r.Table.Rows {
				t.Rows[j] = append([]string(nil), row...)
			}
			r.Table = &t
		}
		out.Regions[i] = r
	}
	return out
}
