package models

// TemplateCategory representa la familia visual de una plantilla
type TemplateCategory string

const (
	CategoryModern       TemplateCategory = "modern"
	CategoryMinimal      TemplateCategory = "minimal"
	CategoryProfessional TemplateCategory = "professional"
	CategoryCreative     TemplateCategory = "creative"
	CategoryBold         TemplateCategory = "bold"
)

// Valid indica si la categoría es conocida
func (c TemplateCategory) Valid() bool {
	switch c {
	case CategoryModern, CategoryMinimal, CategoryProfessional, CategoryCreative, CategoryBold:
		return true
	}
	return false
}

// TemplateDescriptor describe una plantilla del catálogo
type TemplateDescriptor struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Category     TemplateCategory `json:"category"`
	ThumbnailRef string           `json:"thumbnail"`
	Description  string           `json:"description"`
	IsPremium    bool             `json:"isPremium,omitempty"`
}
