package services

import (
	"fmt"

	"github.com/hypernova-labs/invoice-designer/internal/models"
)

// DefaultTemplateID es la plantilla usada cuando la referencia no existe
const DefaultTemplateID = "modern-classic"

var builtinTemplates = []models.TemplateDescriptor{
	{
		ID:           "modern-classic",
		Name:         "Modern Classic",
		Category:     models.CategoryModern,
		ThumbnailRef: "/thumbnails/modern-classic.png",
		Description:  "Full-width color header with a clean striped item table.",
	},
	{
		ID:           "modern-edge",
		Name:         "Modern Edge",
		Category:     models.CategoryModern,
		ThumbnailRef: "/thumbnails/modern-edge.png",
		Description:  "Color header band with accent highlights on totals.",
		IsPremium:    true,
	},
	{
		ID:           "minimal-clean",
		Name:         "Minimal Clean",
		Category:     models.CategoryMinimal,
		ThumbnailRef: "/thumbnails/minimal-clean.png",
		Description:  "Plain layout with hairline rules and generous whitespace.",
	},
	{
		ID:           "minimal-mono",
		Name:         "Minimal Mono",
		Category:     models.CategoryMinimal,
		ThumbnailRef: "/thumbnails/minimal-mono.png",
		Description:  "Monochrome variant of the minimal layout.",
	},
	{
		ID:           "professional-corporate",
		Name:         "Corporate",
		Category:     models.CategoryProfessional,
		ThumbnailRef: "/thumbnails/professional-corporate.png",
		Description:  "Structured two-column header for established businesses.",
	},
	{
		ID:           "professional-executive",
		Name:         "Executive",
		Category:     models.CategoryProfessional,
		ThumbnailRef: "/thumbnails/professional-executive.png",
		Description:  "Formal layout with accent rule and shaded table header.",
		IsPremium:    true,
	},
	{
		ID:           "creative-studio",
		Name:         "Creative Studio",
		Category:     models.CategoryCreative,
		ThumbnailRef: "/thumbnails/creative-studio.png",
		Description:  "Accent stripe along the page edge for studios and freelancers.",
	},
	{
		ID:           "creative-splash",
		Name:         "Splash",
		Category:     models.CategoryCreative,
		ThumbnailRef: "/thumbnails/creative-splash.png",
		Description:  "Playful accent colors across header and table.",
		IsPremium:    true,
	},
	{
		ID:           "bold-impact",
		Name:         "Bold Impact",
		Category:     models.CategoryBold,
		ThumbnailRef: "/thumbnails/bold-impact.png",
		Description:  "Tall dark header with an oversized title.",
	},
	{
		ID:           "bold-statement",
		Name:         "Statement",
		Category:     models.CategoryBold,
		ThumbnailRef: "/thumbnails/bold-statement.png",
		Description:  "High-contrast layout with heavy typography.",
		IsPremium:    true,
	},
}

// TemplateRegistry es el catálogo inmutable de plantillas
type TemplateRegistry struct {
	templates []models.TemplateDescriptor
	index     map[string]int
	defaultID string
}

// NewTemplateRegistry crea el registro con el catálogo incorporado
func NewTemplateRegistry() *TemplateRegistry {
	registry, err := NewTemplateRegistryFrom(builtinTemplates, DefaultTemplateID)
	if err != nil {
		panic(err)
	}
	return registry
}

// NewTemplateRegistryFrom crea un registro a partir de un catálogo arbitrario
func NewTemplateRegistryFrom(templates []models.TemplateDescriptor, defaultID string) (*TemplateRegistry, error) {
	r := &TemplateRegistry{
		templates: make([]models.TemplateDescriptor, 0, len(templates)),
		index:     make(map[string]int, len(templates)),
		defaultID: defaultID,
	}

	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template without id: %q", t.Name)
		}
		if !t.Category.Valid() {
			return nil, fmt.Errorf("template %s has invalid category %q", t.ID, t.Category)
		}
		if _, dup := r.index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id: %s", t.ID)
		}
		r.index[t.ID] = len(r.templates)
		r.templates = append(r.templates, t)
	}

	if _, ok := r.index[defaultID]; !ok {
		return nil, fmt.Errorf("default template %s is not in the catalog", defaultID)
	}

	return r, nil
}

// All retorna una copia del catálogo en orden
func (r *TemplateRegistry) All() []models.TemplateDescriptor {
	return append([]models.TemplateDescriptor(nil), r.templates...)
}

// Get obtiene una plantilla por ID
func (r *TemplateRegistry) Get(id string) (models.TemplateDescriptor, bool) {
	i, ok := r.index[id]
	if !ok {
		return models.TemplateDescriptor{}, false
	}
	return r.templates[i], true
}

// Resolve obtiene la plantilla o, si no existe, la plantilla por defecto
func (r *TemplateRegistry) Resolve(id string) models.TemplateDescriptor {
	if t, ok := r.Get(id); ok {
		return t
	}
	return r.templates[r.index[r.defaultID]]
}

// ByCategory filtra el catálogo por categoría
func (r *TemplateRegistry) ByCategory(category models.TemplateCategory) []models.TemplateDescriptor {
	out := []models.TemplateDescriptor{}
	for _, t := range r.templates {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// DefaultID retorna el ID de la plantilla por defecto
func (r *TemplateRegistry) DefaultID() string {
	return r.defaultID
}
