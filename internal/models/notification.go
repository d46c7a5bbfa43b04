package models

// NotificationLevel representa la severidad de una notificación
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationInfo    NotificationLevel = "info"
	NotificationError   NotificationLevel = "error"
)

// Acciones notificadas por los stores
const (
	ActionPresetSaved         = "preset.saved"
	ActionPresetLoaded        = "preset.loaded"
	ActionPresetDeleted       = "preset.deleted"
	ActionCustomizationReset  = "customization.reset"
	ActionCustomizationFailed = "customization.persist_failed"
	ActionPresetsFailed       = "presets.persist_failed"
	ActionExportArchived      = "export.archived"
	ActionExportEmailed       = "export.emailed"
)

// Notification es el mensaje que recibe el sistema de notificaciones (toasts)
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Action  string            `json:"action"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}
