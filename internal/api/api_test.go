package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/invoice-designer/internal/database"
	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/hypernova-labs/invoice-designer/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	keys []string
}

func (f *fakeUploader) UploadFile(_ context.Context, key string, _ []byte, _ string) (string, error) {
	f.keys = append(f.keys, key)
	return "https://storage.example.com/" + key, nil
}

type testServer struct {
	router   *gin.Engine
	store    *services.CustomizationStore
	viewport *services.PreviewViewport
	uploader *fakeUploader
}

func newTestServer(t *testing.T, withUploader bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	ctx := context.Background()
	storage := database.NewMemoryStore()
	registry := services.NewTemplateRegistry()

	store := services.NewCustomizationStore(storage, registry, nil, "", logger)
	store.Initialize(ctx)

	presets := services.NewPresetStore(storage, store, nil, "", logger)
	presets.Initialize(ctx)

	html, err := services.NewHTMLRenderer()
	require.NoError(t, err)

	viewport, err := services.NewPreviewViewport(store, services.NewTemplateRenderer(registry),
		services.NewInvoiceAdapter("$"), html, services.NewDocumentGenerator(logger), models.Zoom75, logger)
	require.NoError(t, err)
	t.Cleanup(viewport.Close)

	srv := &testServer{store: store, viewport: viewport}

	var uploader services.ObjectUploader
	if withUploader {
		srv.uploader = &fakeUploader{}
		uploader = srv.uploader
	}
	exports := services.NewExportService(viewport, uploader, nil, nil, logger)

	router := gin.New()
	NewAPI(registry, store, presets, viewport, exports, logger).RegisterRoutes(router.Group("/v1"))
	srv.router = router

	return srv
}

func (s *testServer) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestListTemplates(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodGet, "/v1/templates", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]models.TemplateDescriptor](t, w)
	assert.Len(t, all, 10)

	w = srv.do(http.MethodGet, "/v1/templates?category=bold", "")
	require.Equal(t, http.StatusOK, w.Code)
	bold := decode[[]models.TemplateDescriptor](t, w)
	require.Len(t, bold, 2)
	for _, tpl := range bold {
		assert.Equal(t, models.CategoryBold, tpl.Category)
	}

	w = srv.do(http.MethodGet, "/v1/templates?category=retro", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTemplate(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodGet, "/v1/templates/minimal-clean", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "minimal-clean", decode[models.TemplateDescriptor](t, w).ID)

	w = srv.do(http.MethodGet, "/v1/templates/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(models.ErrorCodeNotFound), decode[models.ErrorResponse](t, w).Error.Code)
}

func TestUpdateCustomization(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodPatch, "/v1/customization/colors", `{"primary":"#ff0000"}`)
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[models.CustomizationState](t, w)
	assert.Equal(t, "#ff0000", state.Customization.Colors.Primary)
	assert.Equal(t, models.DefaultCustomization().Colors.Secondary, state.Customization.Colors.Secondary)
	assert.Equal(t, "#ff0000", srv.store.Snapshot().Customization.Colors.Primary)

	// la vista previa se re-renderiza con el nuevo color
	frame := srv.viewport.Frame()
	assert.Equal(t, "#ff0000", frame.Document.Theme.Colors.Primary)
}

func TestUpdateCustomizationErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
	}{
		{name: "unknown section", path: "/v1/customization/margins", body: `{}`, wantCode: http.StatusNotFound},
		{name: "unknown key", path: "/v1/customization/colors", body: `{"primry":"#ff0000"}`, wantCode: http.StatusBadRequest},
		{name: "malformed json", path: "/v1/customization/fonts", body: `{"sizeScale":`, wantCode: http.StatusBadRequest},
		{name: "invalid value", path: "/v1/customization/colors", body: `{"primary":"red"}`, wantCode: http.StatusBadRequest},
		{name: "scale out of range", path: "/v1/customization/fonts", body: `{"sizeScale":2}`, wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, false)
			before := srv.store.Snapshot()

			w := srv.do(http.MethodPatch, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, before, srv.store.Snapshot())
		})
	}
}

func TestResetAndSelectTemplate(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodPut, "/v1/customization/template", `{"templateId":"bold-impact"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bold-impact", decode[models.CustomizationState](t, w).TemplateID)

	srv.do(http.MethodPatch, "/v1/customization/footer", `{"content":"Gracias"}`)

	w = srv.do(http.MethodPost, "/v1/customization/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	state := decode[models.CustomizationState](t, w)
	assert.Equal(t, "bold-impact", state.TemplateID)
	assert.Equal(t, models.DefaultCustomization(), state.Customization)

	w = srv.do(http.MethodPut, "/v1/customization/template", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(http.MethodPut, "/v1/customization/template", `{"templateId":"retro-wave"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "bold-impact", srv.store.Snapshot().TemplateID)
}

func TestPresetLifecycle(t *testing.T) {
	srv := newTestServer(t, false)

	srv.do(http.MethodPatch, "/v1/customization/colors", `{"accent":"#00ff00"}`)

	w := srv.do(http.MethodPost, "/v1/presets", `{"name":"  Green  "}`)
	require.Equal(t, http.StatusCreated, w.Code)
	preset := decode[models.SavedTemplate](t, w)
	assert.Equal(t, "Green", preset.Name)
	assert.NotEmpty(t, preset.ID)

	w = srv.do(http.MethodPost, "/v1/presets", `{"name":"Plain"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	plain := decode[models.SavedTemplate](t, w)

	w = srv.do(http.MethodGet, "/v1/presets", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[models.PresetListResponse](t, w)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Items, 2)
	assert.Equal(t, plain.ID, list.Items[0].ID)
	assert.Equal(t, preset.ID, list.Items[1].ID)

	w = srv.do(http.MethodGet, "/v1/presets/"+preset.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)

	// cambiar el estado activo y volver al preset
	srv.do(http.MethodPost, "/v1/customization/reset", "")
	w = srv.do(http.MethodPost, "/v1/presets/"+preset.ID+"/load", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "#00ff00", decode[models.CustomizationState](t, w).Customization.Colors.Accent)

	w = srv.do(http.MethodDelete, "/v1/presets/"+preset.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	path := "/v1/presets/" + preset.ID
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodDelete, path, "").Code)
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodPost, path+"/load", "").Code)
}

func TestCreatePresetRequiresName(t *testing.T) {
	srv := newTestServer(t, false)

	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodPost, "/v1/presets", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodPost, "/v1/presets", `{"name":"   "}`).Code)
}

func TestPreviewETag(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodGet, "/v1/preview", "")
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	frame := decode[models.PreviewFrame](t, w)
	assert.Equal(t, `"`+frame.Document.Fingerprint+`"`, etag)
	assert.Equal(t, models.Zoom75, frame.Zoom)

	w = srv.do(http.MethodGet, "/v1/preview", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)

	// un cambio de personalización invalida el ETag
	srv.do(http.MethodPatch, "/v1/customization/layout", `{"invoiceType":"tax"}`)
	w = srv.do(http.MethodGet, "/v1/preview", "", "If-None-Match", etag)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, etag, w.Header().Get("ETag"))
}

func TestPreviewZoom(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodPut, "/v1/preview/zoom", `{"zoom":"fill"}`)
	require.Equal(t, http.StatusOK, w.Code)
	frame := decode[models.PreviewFrame](t, w)
	assert.Equal(t, 1.25, frame.Scale)
	assert.Equal(t, models.Size{WidthMM: 262.5, HeightMM: 371.25}, frame.Scaled)

	w = srv.do(http.MethodPut, "/v1/preview/zoom", `{"zoom":"200"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, models.ZoomFill, srv.viewport.Zoom())

	w = srv.do(http.MethodGet, "/v1/preview/html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "scale(1.25)")
}

func TestPreviewDraft(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodPut, "/v1/preview/draft", `{"invoiceNumber":"INV-9000","customer":{"name":"Ada"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	frame := decode[models.PreviewFrame](t, w)
	meta, ok := frame.Document.Region(models.RegionInvoiceMeta)
	require.True(t, ok)
	assert.Contains(t, strings.Join(meta.Lines, "\n"), "INV-9000")

	w = srv.do(http.MethodDelete, "/v1/preview/draft", "")
	require.Equal(t, http.StatusOK, w.Code)
	frame = decode[models.PreviewFrame](t, w)
	meta, ok = frame.Document.Region(models.RegionInvoiceMeta)
	require.True(t, ok)
	assert.Contains(t, strings.Join(meta.Lines, "\n"), "INV-0001")
}

func TestExport(t *testing.T) {
	srv := newTestServer(t, false)
	require.NoError(t, srv.viewport.SetZoom(models.Zoom50))

	w := srv.do(http.MethodGet, "/v1/export?format=pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))

	w = srv.do(http.MethodGet, "/v1/export?format=html", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "scale(1)")

	w = srv.do(http.MethodGet, "/v1/export?format=docx", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportDestinations(t *testing.T) {
	srv := newTestServer(t, false)

	w := srv.do(http.MethodPost, "/v1/export/archive", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, string(models.ErrorCodeUnavailable), decode[models.ErrorResponse](t, w).Error.Code)

	w = srv.do(http.MethodPost, "/v1/export/email", `{"to":"ada@example.com"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = srv.do(http.MethodPost, "/v1/export/email", `{"to":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	srv = newTestServer(t, true)
	w = srv.do(http.MethodPost, "/v1/export/archive", "")
	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[models.ExportArchiveResponse](t, w)
	assert.Equal(t, services.ExportKey(srv.viewport.PrintDocument()), resp.Key)
	assert.Equal(t, []string{resp.Key}, srv.uploader.keys)
}
