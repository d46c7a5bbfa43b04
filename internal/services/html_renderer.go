package services

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/hypernova-labs/invoice-designer/internal/models"
)

const documentLayout = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Doc.Title}} - {{.Doc.TemplateName}}</title>
<style>
body { margin: 0; background: #e5e7eb; }
.viewport { overflow: hidden; }
.page { position: relative; overflow: hidden; box-sizing: border-box; }
.region { position: absolute; box-sizing: border-box; overflow: hidden; line-height: 1.35; }
.region table { width: 100%; border-collapse: collapse; font-size: inherit; }
.region th, .region td { padding: 0 1mm; white-space: nowrap; overflow: hidden; }
.emphasis > div:first-child { font-weight: bold; }
.placeholder { display: flex; align-items: center; justify-content: center; width: 100%; height: 100%; }
</style>
</head>
<body>
<div class="viewport" style="width: {{mm .ScaledW}}; height: {{mm .ScaledH}};">
<div class="page" data-template="{{.Doc.TemplateID}}" data-fingerprint="{{.Doc.Fingerprint}}" style="width: {{mm .Doc.Page.WidthMM}}; height: {{mm .Doc.Page.HeightMM}}; transform: scale({{num .Scale}}); transform-origin: 0 0;">
{{range .Doc.Regions}}{{template "region" .}}
{{end}}</div>
</div>
</body>
</html>
{{define "region"}}<div class="region region-{{.ID}}{{if .Emphasis}} emphasis{{end}}" style="left: {{mm .Box.X}}; top: {{mm .Box.Y}}; width: {{mm .Box.W}}; height: {{mm .Box.H}};{{with .Style.Background}} background: {{.}};{{end}}{{with .Style.Border}} border: 0.3mm solid {{.}};{{end}}{{with .Style.Font}} font-family: {{.}};{{end}}{{if .Style.SizePt}} font-size: {{pt .Style.SizePt}};{{end}}{{with .Style.Color}} color: {{.}};{{end}}{{if .Style.Bold}} font-weight: bold;{{end}}{{with .Align}} text-align: {{.}};{{end}}">
{{- if .Table}}{{template "table" .Table}}
{{- else if eq .Kind "image"}}{{with imageSrc .ImageRef}}<img src="{{.}}" alt="" style="max-width: 100%; max-height: 100%;">{{else}}<div class="placeholder">{{if eq .ID "qr-code"}}QR{{else}}LOGO{{end}}</div>{{end}}
{{- else}}{{range .Lines}}<div>{{.}}</div>{{end}}{{end -}}
</div>{{end}}
{{define "table"}}<table>
{{- if hasHeader .}}<thead><tr>{{range .Columns}}<th style="width: {{mm .WidthMM}}; text-align: {{.Align}};{{with $.HeaderStyle.Background}} background: {{.}};{{end}}{{with $.HeaderStyle.Color}} color: {{.}};{{end}}{{with $.HeaderStyle.Border}} border-bottom: 0.3mm solid {{.}};{{end}}">{{.Title}}</th>{{end}}</tr></thead>{{end -}}
<tbody>{{range $i, $row := .Rows}}<tr style="height: {{mm $.RowHeightMM}};{{if and $.StripeColor (odd $i)}} background: {{$.StripeColor}};{{end}}">{{range $j, $cell := $row}}<td style="text-align: {{columnAlign $.Columns $j}};">{{$cell}}</td>{{end}}</tr>{{end}}</tbody></table>{{end}}`

// HTMLRenderer codifica un Document como HTML con regiones en posición absoluta
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer crea una nueva instancia del renderer HTML
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.New("document").Funcs(template.FuncMap{
		"mm":          func(v float64) string { return formatNumber(v) + "mm" },
		"pt":          func(v float64) string { return formatNumber(v) + "pt" },
		"num":         formatNumber,
		"odd":         func(i int) bool { return i%2 == 1 },
		"imageSrc":    imageSrc,
		"hasHeader":   hasHeader,
		"columnAlign": columnAlign,
	}).Parse(documentLayout)
	if err != nil {
		return nil, fmt.Errorf("error parsing document template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type htmlPage struct {
	Doc     models.Document
	Scale   float64
	ScaledW float64
	ScaledH float64
}

// Render escribe el documento aplicando la escala de vista. Para exportar se usa escala 1.
func (h *HTMLRenderer) Render(w io.Writer, doc models.Document, scale float64) error {
	if scale <= 0 {
		scale = 1
	}
	page := htmlPage{
		Doc:     doc,
		Scale:   scale,
		ScaledW: round2(doc.Page.WidthMM * scale),
		ScaledH: round2(doc.Page.HeightMM * scale),
	}
	if err := h.tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("error rendering document html: %w", err)
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(round2(v), 'f', -1, 64)
}

// imageSrc solo acepta imágenes embebidas o URLs http(s); el resto se dibuja como placeholder
func imageSrc(ref string) template.URL {
	switch {
	case strings.HasPrefix(ref, "data:image/"),
		strings.HasPrefix(ref, "https://"),
		strings.HasPrefix(ref, "http://"):
		return template.URL(ref)
	}
	return ""
}

func hasHeader(t *models.Table) bool {
	for _, c := range t.Columns {
		if c.Title != "" {
			return true
		}
	}
	return false
}

func columnAlign(columns []models.TableColumn, i int) models.Alignment {
	if i < len(columns) && columns[i].Align != "" {
		return columns[i].Align
	}
	return models.AlignLeft
}
