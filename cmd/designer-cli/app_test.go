package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// run ejecuta la CLI contra un file store en dir y retorna la salida estándar
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORAGE_TYPE", "file")
	t.Setenv("STORAGE_KEY_PREFIX", "")
	t.Setenv("DESIGNER_DEFAULT_ZOOM", "75")
	t.Setenv("DESIGNER_CURRENCY", "$")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var out bytes.Buffer
	app := newApp(logger)
	app.Writer = &out
	app.ErrWriter = io.Discard
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"designer-cli", "--storage-path", dir}, args...))
	return out.String(), err
}

func TestTemplatesCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "templates")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 10)

	out, err = run(t, dir, "templates", "--category", "minimal")
	require.NoError(t, err)
	assert.Contains(t, out, "minimal-clean")
	assert.NotContains(t, out, "bold-impact")

	_, err = run(t, dir, "templates", "--category", "retro")
	assert.Error(t, err)
}

func TestSetPersistsAcrossRuns(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "set", "colors", `{"primary":"#112233"}`)
	require.NoError(t, err)
	_, err = run(t, dir, "select", "creative-studio")
	require.NoError(t, err)

	out, err := run(t, dir, "show")
	require.NoError(t, err)

	var state models.CustomizationState
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, "creative-studio", state.TemplateID)
	assert.Equal(t, "#112233", state.Customization.Colors.Primary)

	_, err = run(t, dir, "set", "colors", `{"primary":"blue"}`)
	assert.Error(t, err)
	_, err = run(t, dir, "set", "margins", `{}`)
	assert.Error(t, err)
	_, err = run(t, dir, "select", "retro-wave")
	assert.Error(t, err)

	out, err = run(t, dir, "reset")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, "creative-studio", state.TemplateID)
	assert.Equal(t, models.DefaultCustomization(), state.Customization)
}

func TestPresetCommands(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "set", "footer", `{"content":"Paid with thanks"}`)
	require.NoError(t, err)

	out, err := run(t, dir, "presets", "save", "Thanks", "footer")
	require.NoError(t, err)
	var preset models.SavedTemplate
	require.NoError(t, json.Unmarshal([]byte(out), &preset))
	assert.Equal(t, "Thanks footer", preset.Name)

	_, err = run(t, dir, "reset")
	require.NoError(t, err)

	out, err = run(t, dir, "presets", "list")
	require.NoError(t, err)
	assert.Contains(t, out, preset.ID)

	out, err = run(t, dir, "presets", "load", preset.ID)
	require.NoError(t, err)
	var state models.CustomizationState
	require.NoError(t, json.Unmarshal([]byte(out), &state))
	assert.Equal(t, "Paid with thanks", state.Customization.Footer.Content)

	_, err = run(t, dir, "presets", "delete", preset.ID)
	require.NoError(t, err)
	_, err = run(t, dir, "presets", "delete", preset.ID)
	assert.Error(t, err)
	_, err = run(t, dir, "presets", "save")
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "render", "--format", "html", "--zoom", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "scale(0.5)")

	draftPath := filepath.Join(dir, "draft.json")
	require.NoError(t, os.WriteFile(draftPath, []byte(`{"invoiceNumber":"INV-7777"}`), 0o644))

	out, err = run(t, dir, "render", "--format", "json", "--draft", draftPath)
	require.NoError(t, err)
	var frame models.PreviewFrame
	require.NoError(t, json.Unmarshal([]byte(out), &frame))
	meta, ok := frame.Document.Region(models.RegionInvoiceMeta)
	require.True(t, ok)
	assert.Contains(t, meta.Lines[0], "INV-7777")

	pdfPath := filepath.Join(dir, "invoice.pdf")
	_, err = run(t, dir, "render", "--format", "pdf", "--out", pdfPath)
	require.NoError(t, err)
	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	_, err = run(t, dir, "render", "--format", "docx")
	assert.Error(t, err)
	_, err = run(t, dir, "render", "--zoom", "33")
	assert.Error(t, err)
}
