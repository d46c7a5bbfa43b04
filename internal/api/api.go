package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/hypernova-labs/invoice-designer/internal/services"
	"github.com/sirupsen/logrus"
)

// API maneja las peticiones HTTP del diseñador de plantillas
type API struct {
	registry *services.TemplateRegistry
	store    *services.CustomizationStore
	presets  *services.PresetStore
	viewport *services.PreviewViewport
	exports  *services.ExportService
	logger   *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	registry *services.TemplateRegistry,
	store *services.CustomizationStore,
	presets *services.PresetStore,
	viewport *services.PreviewViewport,
	exports *services.ExportService,
	logger *logrus.Logger,
) *API {
	return &API{
		registry: registry,
		store:    store,
		presets:  presets,
		viewport: viewport,
		exports:  exports,
		logger:   logger,
	}
}

// RegisterRoutes registra los endpoints del diseñador en el grupo indicado
func (api *API) RegisterRoutes(rg *gin.RouterGroup) {
	// Templates
	rg.GET("/templates", api.ListTemplates)
	rg.GET("/templates/:id", api.GetTemplate)

	// Customization
	rg.GET("/customization", api.GetCustomization)
	rg.PATCH("/customization/:section", api.UpdateCustomization)
	rg.POST("/customization/reset", api.ResetCustomization)
	rg.PUT("/customization/template", api.SelectTemplate)

	// Presets
	rg.GET("/presets", api.ListPresets)
	rg.POST("/presets", api.CreatePreset)
	rg.GET("/presets/:id", api.GetPreset)
	rg.POST("/presets/:id/load", api.LoadPreset)
	rg.DELETE("/presets/:id", api.DeletePreset)

	// Preview
	rg.GET("/preview", api.GetPreview)
	rg.GET("/preview/html", api.GetPreviewHTML)
	rg.PUT("/preview/draft", api.SetDraft)
	rg.DELETE("/preview/draft", api.ClearDraft)
	rg.PUT("/preview/zoom", api.SetZoom)

	// Export
	rg.GET("/export", api.Export)
	rg.POST("/export/email", api.EmailExport)
	rg.POST("/export/archive", api.ArchiveExport)
}

// ListTemplates lista el catálogo, opcionalmente filtrado por categoría
func (api *API) ListTemplates(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		c.JSON(http.StatusOK, api.registry.All())
		return
	}

	if !models.TemplateCategory(category).Valid() {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid category", []models.ErrorDetail{
			{Field: "category", Issue: "Must be one of modern, minimal, professional, creative, bold"},
		}))
		return
	}

	c.JSON(http.StatusOK, api.registry.ByCategory(models.TemplateCategory(category)))
}

// GetTemplate obtiene una plantilla del catálogo
func (api *API) GetTemplate(c *gin.Context) {
	tpl, ok := api.registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.NewNotFoundError("Template not found"))
		return
	}

	c.JSON(http.StatusOK, tpl)
}

// GetCustomization obtiene la plantilla activa y su personalización
func (api *API) GetCustomization(c *gin.Context) {
	c.JSON(http.StatusOK, api.store.Snapshot())
}

// UpdateCustomization aplica un patch parcial sobre una sección
func (api *API) UpdateCustomization(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	patch, err := models.DecodePatch(c.Param("section"), body)
	if err != nil {
		if errors.Is(err, models.ErrUnknownSection) {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("Customization section not found"))
			return
		}
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if details := patch.Validate(); len(details) > 0 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid customization values", details))
		return
	}

	state, err := api.store.Update(c.Request.Context(), patch)
	if err != nil {
		api.logger.WithError(err).WithField("section", c.Param("section")).Error("Error updating customization")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error saving customization"))
		return
	}

	c.JSON(http.StatusOK, state)
}

// ResetCustomization vuelve a la personalización por defecto conservando la plantilla
func (api *API) ResetCustomization(c *gin.Context) {
	state, err := api.store.Reset(c.Request.Context())
	if err != nil {
		api.logger.WithError(err).Error("Error resetting customization")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error saving customization"))
		return
	}

	c.JSON(http.StatusOK, state)
}

// SelectTemplate cambia la plantilla activa
func (api *API) SelectTemplate(c *gin.Context) {
	var req models.SelectTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if _, ok := api.registry.Get(req.TemplateID); !ok {
		c.JSON(http.StatusNotFound, models.NewNotFoundError("Template not found"))
		return
	}

	state, err := api.store.SelectTemplate(c.Request.Context(), req.TemplateID)
	if err != nil {
		api.logger.WithError(err).Error("Error selecting template")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error saving customization"))
		return
	}

	c.JSON(http.StatusOK, state)
}

// ListPresets lista los presets guardados
func (api *API) ListPresets(c *gin.Context) {
	items := api.presets.List()
	c.JSON(http.StatusOK, models.PresetListResponse{
		Items: items,
		Total: len(items),
	})
}

// CreatePreset guarda la personalización activa como preset con nombre
func (api *API) CreatePreset(c *gin.Context) {
	var req models.CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	preset, err := api.presets.Save(c.Request.Context(), req.Name)
	if err != nil {
		if errors.Is(err, services.ErrPresetNameRequired) {
			c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid preset", []models.ErrorDetail{
				{Field: "name", Issue: "Must not be empty"},
			}))
			return
		}
		api.logger.WithError(err).Error("Error saving preset")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error saving preset"))
		return
	}

	c.JSON(http.StatusCreated, preset)
}

// GetPreset obtiene un preset guardado
func (api *API) GetPreset(c *gin.Context) {
	preset, ok := api.presets.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.NewNotFoundError("Preset not found"))
		return
	}

	c.JSON(http.StatusOK, preset)
}

// LoadPreset reemplaza la personalización activa con la del preset
func (api *API) LoadPreset(c *gin.Context) {
	found, err := api.presets.Load(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.logger.WithError(err).WithField("preset_id", c.Param("id")).Error("Error loading preset")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error loading preset"))
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.NewNotFoundError("Preset not found"))
		return
	}

	c.JSON(http.StatusOK, api.store.Snapshot())
}

// DeletePreset elimina un preset guardado
func (api *API) DeletePreset(c *gin.Context) {
	found, err := api.presets.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		api.logger.WithError(err).WithField("preset_id", c.Param("id")).Error("Error deleting preset")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error deleting preset"))
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, models.NewNotFoundError("Preset not found"))
		return
	}

	c.Status(http.StatusNoContent)
}

// GetPreview obtiene el documento renderizado con la transformación de zoom.
// El fingerprint del documento se usa como ETag.
func (api *API) GetPreview(c *gin.Context) {
	frame := api.viewport.Frame()
	etag := `"` + frame.Document.Fingerprint + `"`

	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}

	c.JSON(http.StatusOK, frame)
}

// GetPreviewHTML obtiene la vista previa en HTML con la escala del zoom actual
func (api *API) GetPreviewHTML(c *gin.Context) {
	var buf bytes.Buffer
	if err := api.viewport.WritePreviewHTML(&buf); err != nil {
		api.logger.WithError(err).Error("Error rendering preview HTML")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error rendering preview"))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// SetDraft reemplaza la factura en edición que alimenta la vista previa
func (api *API) SetDraft(c *gin.Context) {
	var draft models.InvoiceDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	api.viewport.SetDraft(&draft)
	c.JSON(http.StatusOK, api.viewport.Frame())
}

// ClearDraft vuelve a la factura de ejemplo
func (api *API) ClearDraft(c *gin.Context) {
	api.viewport.SetDraft(nil)
	c.JSON(http.StatusOK, api.viewport.Frame())
}

// SetZoom cambia el nivel de zoom de la vista previa
func (api *API) SetZoom(c *gin.Context) {
	var req models.SetZoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if err := api.viewport.SetZoom(req.Zoom); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid zoom level", []models.ErrorDetail{
			{Field: "zoom", Issue: "Must be one of 50, 75, 100, fit, fill"},
		}))
		return
	}

	c.JSON(http.StatusOK, api.viewport.Frame())
}

// Export descarga el documento sin escala en PDF o HTML
func (api *API) Export(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "pdf"))

	switch format {
	case "pdf":
		data, doc, err := api.viewport.ExportPDF()
		if err != nil {
			api.logger.WithError(err).Error("Error generating PDF export")
			c.JSON(http.StatusInternalServerError, models.NewInternalError("Error generating PDF"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+doc.Fingerprint[:12]+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", data)

	case "html":
		var buf bytes.Buffer
		if err := api.viewport.ExportHTML(&buf); err != nil {
			api.logger.WithError(err).Error("Error generating HTML export")
			c.JSON(http.StatusInternalServerError, models.NewInternalError("Error generating HTML"))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())

	default:
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid export format", []models.ErrorDetail{
			{Field: "format", Issue: "Must be 'pdf' or 'html'"},
		}))
	}
}

// EmailExport envía el PDF exportado por email
func (api *API) EmailExport(c *gin.Context) {
	var req models.EmailExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	id, err := api.exports.Email(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrExportUnavailable) {
			c.JSON(http.StatusServiceUnavailable, models.NewUnavailableError("Email service not configured"))
			return
		}
		api.logger.WithError(err).WithField("to", req.To).Error("Error sending export email")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error sending email"))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"emailId": id,
		"to":      req.To,
	})
}

// ArchiveExport sube el PDF exportado al bucket de exportaciones
func (api *API) ArchiveExport(c *gin.Context) {
	resp, err := api.exports.Archive(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrExportUnavailable) {
			c.JSON(http.StatusServiceUnavailable, models.NewUnavailableError("Export storage not configured"))
			return
		}
		api.logger.WithError(err).Error("Error archiving export")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error archiving export"))
		return
	}

	c.JSON(http.StatusCreated, resp)
}
