package models

import "time"

// SavedTemplate es un preset con nombre: plantilla + copia de la personalización
type SavedTemplate struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	TemplateID    string        `json:"templateId"`
	Customization Customization `json:"customization"`
	LastModified  time.Time     `json:"lastModified"`
}

// Clone retorna una copia independiente del preset
func (s SavedTemplate) Clone() SavedTemplate {
	out := s
	out.Customization = s.Customization.Clone()
	return out
}

// CreatePresetRequest representa la solicitud para guardar un preset
type CreatePresetRequest struct {
	Name string `json:"name" binding:"required"`
}

// PresetListResponse representa el listado de presets
type PresetListResponse struct {
	Items []SavedTemplate `json:"items"`
	Total int             `json:"total"`
}
