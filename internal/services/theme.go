package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hypernova-labs/invoice-designer/internal/models"
)

// Tamaños base en puntos antes de aplicar el factor de escala
const (
	baseHeadingPt    = 22.0
	baseSubheadingPt = 12.0
	baseBodyPt       = 9.5
	baseSmallPt      = 8.0

	ptToMM = 0.3528
)

// colorSlot identifica un color de la paleta
type colorSlot string

const (
	slotNone       colorSlot = ""
	slotPrimary    colorSlot = "primary"
	slotSecondary  colorSlot = "secondary"
	slotAccent     colorSlot = "accent"
	slotBackground colorSlot = "background"
	slotText       colorSlot = "text"
)

// typeScale contiene los tamaños ya escalados
type typeScale struct {
	heading    float64
	subheading float64
	body       float64
	small      float64
}

func newTypeScale(scale float64) typeScale {
	return typeScale{
		heading:    round2(baseHeadingPt * scale),
		subheading: round2(baseSubheadingPt * scale),
		body:       round2(baseBodyPt * scale),
		small:      round2(baseSmallPt * scale),
	}
}

// resolveTheme sanea colores, fuentes y escala de la personalización
func resolveTheme(c models.Customization) models.Theme {
	defaults := models.DefaultCustomization()

	return models.Theme{
		Colors: models.ColorSettings{
			Primary:    sanitizeColor(c.Colors.Primary, defaults.Colors.Primary),
			Secondary:  sanitizeColor(c.Colors.Secondary, defaults.Colors.Secondary),
			Accent:     sanitizeColor(c.Colors.Accent, defaults.Colors.Accent),
			Background: sanitizeColor(c.Colors.Background, defaults.Colors.Background),
			Text:       sanitizeColor(c.Colors.Text, defaults.Colors.Text),
		},
		HeadingFont: sanitizeFont(c.Fonts.Heading, defaults.Fonts.Heading),
		BodyFont:    sanitizeFont(c.Fonts.Body, defaults.Fonts.Body),
		SizeScale:   ClampSizeScale(c.Fonts.SizeScale),
	}
}

// ClampSizeScale limita el factor de escala a [0.8, 1.2]; NaN o infinito resultan en 1
func ClampSizeScale(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 1
	}
	return math.Min(models.MaxSizeScale, math.Max(models.MinSizeScale, v))
}

// sanitizeColor normaliza a #rrggbb en minúsculas o usa el color por defecto
func sanitizeColor(v, fallback string) string {
	v = strings.TrimSpace(v)
	if !models.IsHexColor(v) {
		return fallback
	}
	v = strings.ToLower(v)
	if len(v) == 4 {
		return fmt.Sprintf("#%c%c%c%c%c%c", v[1], v[1], v[2], v[2], v[3], v[3])
	}
	return v
}

func sanitizeFont(v, fallback string) string {
	if v = strings.TrimSpace(v); v == "" {
		return fallback
	}
	return v
}

func colorOf(theme models.Theme, slot colorSlot) string {
	switch slot {
	case slotPrimary:
		return theme.Colors.Primary
	case slotSecondary:
		return theme.Colors.Secondary
	case slotAccent:
		return theme.Colors.Accent
	case slotBackground:
		return theme.Colors.Background
	case slotText:
		return theme.Colors.Text
	}
	return ""
}

// HexToRGB convierte #rrggbb (o #rgb) en sus componentes
func HexToRGB(hex string) (r, g, b int) {
	hex = sanitizeColor(hex, "#000000")
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

// tint mezcla el color con blanco; amount=1 es blanco puro
func tint(hex string, amount float64) string {
	r, g, b := HexToRGB(hex)
	mix := func(c int) int {
		return int(math.Round(float64(c) + (255-float64(c))*amount))
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(r), mix(g), mix(b))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
