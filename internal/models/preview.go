package models

// ZoomLevel es el estado de zoom de la vista previa
type ZoomLevel string

const (
	Zoom50   ZoomLevel = "50"
	Zoom75   ZoomLevel = "75"
	Zoom100  ZoomLevel = "100"
	ZoomFit  ZoomLevel = "fit"
	ZoomFill ZoomLevel = "fill"
)

// ZoomLevels lista los estados en el orden del selector
var ZoomLevels = []ZoomLevel{Zoom50, Zoom75, Zoom100, ZoomFit, ZoomFill}

// Size es un ancho y alto en milímetros
type Size struct {
	WidthMM  float64 `json:"widthMm"`
	HeightMM float64 `json:"heightMm"`
}

// PreviewFrame es lo que muestra el visor: documento sin escalar más la transformación de vista
type PreviewFrame struct {
	Zoom      ZoomLevel `json:"zoom"`
	Scale     float64   `json:"scale"`
	Container Size      `json:"container"`
	Scaled    Size      `json:"scaled"`
	Document  Document  `json:"document"`
}

// SetZoomRequest representa la solicitud de cambio de zoom
type SetZoomRequest struct {
	Zoom ZoomLevel `json:"zoom" binding:"required"`
}

// SelectTemplateRequest representa la solicitud de cambio de plantilla
type SelectTemplateRequest struct {
	TemplateID string `json:"templateId" binding:"required"`
}

// EmailExportRequest representa la solicitud de envío por email
type EmailExportRequest struct {
	To      string `json:"to" binding:"required,email"`
	Subject string `json:"subject"`
}

// ExportArchiveResponse representa el resultado de archivar una exportación
type ExportArchiveResponse struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	Fingerprint string `json:"fingerprint"`
}
