package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"localfonts/pkg/media"
	"localfonts/pkg/models"
)

var testSecret = []byte("test-secret")

type mockCatalog struct {
	fonts    []models.Font
	variants map[string][]models.Variant

	createFontErr    error
	deleteFontErr    error
	listFontsErr     error
	listVariantsErr  error
	createVariantErr error
	deleteVariantErr error
	assignErr        error

	failedFiles  []int64
	deletedFonts []string
	assigns      map[int64]string
	nextID       int64
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		variants: map[string][]models.Variant{},
		assigns:  map[int64]string{},
		nextID:   1,
	}
}

func (m *mockCatalog) CreateFont(name string) (*models.Font, error) {
	if m.createFontErr != nil {
		return nil, m.createFontErr
	}
	font := models.Font{ID: m.nextID, Name: name}
	m.nextID++
	m.fonts = append(m.fonts, font)
	return &font, nil
}

func (m *mockCatalog) DeleteFont(name string) ([]int64, error) {
	if m.deleteFontErr != nil {
		return nil, m.deleteFontErr
	}
	m.deletedFonts = append(m.deletedFonts, name)
	kept := m.fonts[:0]
	for _, font := range m.fonts {
		if font.Name != name {
			kept = append(kept, font)
		}
	}
	m.fonts = kept
	return m.failedFiles, nil
}

func (m *mockCatalog) ListFonts() ([]models.Font, error) {
	if m.listFontsErr != nil {
		return nil, m.listFontsErr
	}
	return m.fonts, nil
}

func (m *mockCatalog) ListVariants(fontName string) ([]models.Variant, error) {
	if m.listVariantsErr != nil {
		return nil, m.listVariantsErr
	}
	return m.variants[fontName], nil
}

func (m *mockCatalog) CreateVariant(data models.Variant) (*models.Variant, error) {
	if m.createVariantErr != nil {
		return nil, m.createVariantErr
	}
	data.ID = m.nextID
	m.nextID++
	m.variants[data.FontName] = append(m.variants[data.FontName], data)
	return &data, nil
}

func (m *mockCatalog) DeleteVariant(id int64) (string, []int64, error) {
	if m.deleteVariantErr != nil {
		return "", nil, m.deleteVariantErr
	}
	for fontName, variants := range m.variants {
		for i, variant := range variants {
			if variant.ID == id {
				m.variants[fontName] = append(variants[:i], variants[i+1:]...)
				return fontName, m.failedFiles, nil
			}
		}
	}
	return "", nil, m.deleteVariantErr
}

func (m *mockCatalog) AssignVariant(id int64, assignTo string) error {
	if m.assignErr != nil {
		return m.assignErr
	}
	m.assigns[id] = assignTo
	return nil
}

type mockBackup struct {
	payload    *models.BackupPayload
	report     *models.RestoreReport
	exportErr  error
	restoreErr error
	restored   *models.BackupPayload
}

func (m *mockBackup) Export() (*models.BackupPayload, error) {
	return m.payload, m.exportErr
}

func (m *mockBackup) Restore(payload *models.BackupPayload) (*models.RestoreReport, error) {
	m.restored = payload
	return m.report, m.restoreErr
}

type mockUploader struct {
	stored   *media.StoredFile
	err      error
	filename string
}

func (m *mockUploader) Save(r io.Reader, filename string) (*media.StoredFile, error) {
	_, _ = io.Copy(io.Discard, r)
	m.filename = filename
	if m.err != nil {
		return nil, m.err
	}
	return m.stored, nil
}

type mockStylesheet struct {
	css string
	err error
}

func (m *mockStylesheet) Compiled() (string, error) {
	return m.css, m.err
}

type testServer struct {
	server     *FontServer
	catalog    *mockCatalog
	backup     *mockBackup
	uploader   *mockUploader
	stylesheet *mockStylesheet
}

func newTestServer(uploadsDir string) *testServer {
	ts := &testServer{
		catalog:    newMockCatalog(),
		backup:     &mockBackup{},
		uploader:   &mockUploader{},
		stylesheet: &mockStylesheet{},
	}
	ts.server = NewFontServer(ts.catalog, ts.backup, ts.uploader, ts.stylesheet, testSecret, uploadsDir, "test-v1.0.0")
	ts.server.setupRoutes()
	return ts
}

// jsonContext builds an echo context carrying a JSON body, the way the
// router would hand it to a handler.
func (ts *testServer) jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return ts.server.echo.NewContext(req, rec), rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *errorBody      `json:"error"`
}

func decodeEnvelope(rec *httptest.ResponseRecorder) (envelope, error) {
	var env envelope
	err := json.Unmarshal(rec.Body.Bytes(), &env)
	return env, err
}
