package backup

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"localfonts/pkg/media"
	"localfonts/pkg/models"
)

type fakeCatalog struct {
	fonts    map[string]models.Font
	variants map[string]models.Variant
	nextID   int64
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		fonts:    map[string]models.Font{},
		variants: map[string]models.Variant{},
		nextID:   1,
	}
}

func variantKey(fontName, variant string) string {
	return fontName + "/" + variant
}

func (c *fakeCatalog) ListFonts() ([]models.Font, error) {
	fonts := []models.Font{}
	for _, font := range c.fonts {
		fonts = append(fonts, font)
	}
	return fonts, nil
}

func (c *fakeCatalog) ListAllVariants() ([]models.Variant, error) {
	variants := []models.Variant{}
	for _, variant := range c.variants {
		variants = append(variants, variant)
	}
	return variants, nil
}

func (c *fakeCatalog) FontExists(name string) (bool, error) {
	_, ok := c.fonts[name]
	return ok, nil
}

func (c *fakeCatalog) VariantExists(fontName, variant string) (bool, error) {
	if fontName == "" || variant == "" {
		return true, nil
	}
	_, ok := c.variants[variantKey(fontName, variant)]
	return ok, nil
}

func (c *fakeCatalog) InsertFont(font models.Font) (*models.Font, error) {
	if _, ok := c.fonts[font.Name]; ok {
		return nil, fmt.Errorf("duplicate font")
	}
	font.ID = c.nextID
	c.nextID++
	c.fonts[font.Name] = font
	return &font, nil
}

func (c *fakeCatalog) CreateVariant(data models.Variant) (*models.Variant, error) {
	if _, ok := c.fonts[data.FontName]; !ok {
		return nil, fmt.Errorf("font not found")
	}
	key := variantKey(data.FontName, data.Variant)
	if _, ok := c.variants[key]; ok {
		return nil, fmt.Errorf("duplicate variant")
	}
	data.ID = c.nextID
	c.nextID++
	c.variants[key] = data
	return &data, nil
}

func (c *fakeCatalog) SyncVariantCount(fontName string) (int64, error) {
	var total int64
	for key := range c.variants {
		if strings.HasPrefix(key, fontName+"/") {
			total++
		}
	}
	font := c.fonts[fontName]
	font.Amount = total
	c.fonts[fontName] = font
	return total, nil
}

type fakeMedia struct {
	saved  []string
	files  map[int64]string
	nextID int64
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{files: map[int64]string{}, nextID: 100}
}

func (m *fakeMedia) Save(r io.Reader, filename string) (*media.StoredFile, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	m.saved = append(m.saved, filename)
	id := m.nextID
	m.nextID++
	url := "http://localhost/uploads/" + filename
	m.files[id] = url
	return &media.StoredFile{ID: id, Name: filename, URL: url, Size: int64(len(body))}, nil
}

func (m *fakeMedia) ResolveURL(id int64) (string, error) {
	url, ok := m.files[id]
	if !ok {
		return "", media.ErrFileNotFound
	}
	return url, nil
}

type EngineTestSuite struct {
	suite.Suite
	catalog *fakeCatalog
	media   *fakeMedia
	engine  *Engine
	remote  *httptest.Server
}

func (s *EngineTestSuite) SetupTest() {
	s.catalog = newFakeCatalog()
	s.media = newFakeMedia()
	s.engine = NewEngine(s.catalog, s.media)

	s.remote = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.woff2" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "font/woff2")
		_, _ = w.Write([]byte("wOF2fontbytes"))
	}))
	s.T().Cleanup(s.remote.Close)
}

func (s *EngineTestSuite) TestExport() {
	_, err := s.catalog.InsertFont(models.Font{Name: "Roboto"})
	s.Require().NoError(err)
	_, err = s.catalog.CreateVariant(models.Variant{
		FontName: "Roboto", Variant: "400",
		FileURL: "http://localhost/uploads/roboto-400.woff2", FileID: 1,
	})
	s.Require().NoError(err)

	payload, err := s.engine.Export()
	s.Require().NoError(err)
	s.Len(payload.Fonts, 1)
	s.Len(payload.Variants, 1)
}

func (s *EngineTestSuite) TestRestoreDownloadsRemoteFiles() {
	payload := &models.BackupPayload{
		Fonts: []models.Font{{Name: "Roboto", FontData: `{"category":"sans-serif"}`}},
		Variants: []models.Variant{{
			FontName: "Roboto", Variant: "400",
			FileURL: s.remote.URL + "/roboto-400.woff2", FileID: 77,
			AssignTo: "body",
		}},
	}

	report, err := s.engine.Restore(payload)
	s.Require().NoError(err)
	s.Equal(1, report.FontsRestored)
	s.Equal(1, report.VariantsRestored)
	s.Equal([]string{"roboto-400.woff2"}, s.media.saved)

	restored := s.catalog.variants[variantKey("Roboto", "400")]
	s.Equal("http://localhost/uploads/roboto-400.woff2", restored.FileURL)
	s.NotEqual(int64(77), restored.FileID)
	s.Equal("body", restored.AssignTo)
}

func (s *EngineTestSuite) TestRestoreSkipsExistingFontWholesale() {
	_, err := s.catalog.InsertFont(models.Font{Name: "Roboto"})
	s.Require().NoError(err)

	payload := &models.BackupPayload{
		Fonts: []models.Font{{Name: "Roboto"}},
		Variants: []models.Variant{{
			FontName: "Roboto", Variant: "400",
			FileURL: s.remote.URL + "/roboto-400.woff2", FileID: 1,
		}},
	}

	report, err := s.engine.Restore(payload)
	s.Require().NoError(err)
	s.Equal(0, report.FontsRestored)
	s.Equal(1, report.FontsSkipped)
	s.Equal(1, report.VariantsSkipped)
	s.Empty(s.media.saved)
}

func (s *EngineTestSuite) TestRestoreSkipsExistingVariant() {
	_, err := s.catalog.InsertFont(models.Font{Name: "Lato"})
	s.Require().NoError(err)

	payload := &models.BackupPayload{
		Fonts: []models.Font{{Name: "Roboto"}},
		Variants: []models.Variant{
			{FontName: "Roboto", Variant: "400", FileURL: s.remote.URL + "/a.woff2", FileID: 1},
			{FontName: "Roboto", Variant: "400", FileURL: s.remote.URL + "/a.woff2", FileID: 1},
		},
	}

	report, err := s.engine.Restore(payload)
	s.Require().NoError(err)
	s.Equal(1, report.VariantsRestored)
	s.Equal(1, report.VariantsSkipped)
}

func (s *EngineTestSuite) TestRestoreRejectsBadExtensionBeforeDownload() {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	s.T().Cleanup(server.Close)

	payload := &models.BackupPayload{
		Fonts: []models.Font{{Name: "Roboto"}},
		Variants: []models.Variant{{
			FontName: "Roboto", Variant: "400",
			FileURL: server.URL + "/payload.exe", FileID: 1,
		}},
	}

	report, err := s.engine.Restore(payload)
	s.Require().NoError(err)
	s.Equal(1, report.VariantsSkipped)
	s.Zero(requests)
}

func (s *EngineTestSuite) TestRestoreReusesLocalFiles() {
	stored, err := s.media.Save(strings.NewReader("wOF2local"), "roboto-400.woff2")
	s.Require().NoError(err)

	payload := &models.BackupPayload{
		Fonts: []models.Font{{Name: "Roboto"}},
		Variants: []models.Variant{{
			FontName: "Roboto", Variant: "400",
			FileURL: stored.URL, FileID: stored.ID,
		}},
	}

	savedBefore := len(s.media.saved)

	report, err := s.engine.Restore(payload)
	s.Require().NoError(err)
	s.Equal(1, report.VariantsRestored)
	s.Len(s.media.saved, savedBefore)

	restored := s.catalog.variants[variantKey("Roboto", "400")]
	s.Equal(stored.ID, restored.FileID)
	s.Equal(stored.URL, restored.FileURL)
}

func (s *EngineTestSuite) TestRestoreSkipsFailedDownloads() {
	payload := &models.BackupPayload{
		Fonts: []models.Font{{Name: "Roboto"}},
		Variants: []models.Variant{{
			FontName: "Roboto", Variant: "400",
			FileURL: s.remote.URL + "/missing.woff2", FileID: 1,
		}},
	}

	report, err := s.engine.Restore(payload)
	s.Require().NoError(err)
	s.Equal(1, report.FontsRestored)
	s.Equal(1, report.VariantsSkipped)
}

func (s *EngineTestSuite) TestRestoreEmptyPayload() {
	_, err := s.engine.Restore(nil)
	s.Require().Error(err)

	_, err = s.engine.Restore(&models.BackupPayload{})
	s.Require().Error(err)
}

func (s *EngineTestSuite) TestRestoreIgnoresVariantsOfUnlistedFonts() {
	_, err := s.catalog.InsertFont(models.Font{Name: "Lato"})
	s.Require().NoError(err)

	payload := &models.BackupPayload{
		Fonts: []models.Font{{Name: "Roboto"}},
		Variants: []models.Variant{
			{FontName: "Roboto", Variant: "400", FileURL: s.remote.URL + "/roboto-400.woff2", FileID: 1},
			{FontName: "Lato", Variant: "700", FileURL: s.remote.URL + "/lato-700.woff2", FileID: 2},
		},
	}

	report, err := s.engine.Restore(payload)
	s.Require().NoError(err)
	s.Equal(1, report.VariantsRestored)
	s.Equal(1, report.VariantsSkipped)

	// The pre-existing font stays untouched even though the payload
	// carried a variant for it.
	_, exists := s.catalog.variants[variantKey("Lato", "700")]
	s.False(exists)
	s.Equal([]string{"roboto-400.woff2"}, s.media.saved)
}

func (s *EngineTestSuite) TestRestoreReusesLocalLegacyExtension() {
	stored, err := s.media.Save(strings.NewReader("legacy eot bytes"), "roboto-400.eot")
	s.Require().NoError(err)

	payload := &models.BackupPayload{
		Fonts: []models.Font{{Name: "Roboto"}},
		Variants: []models.Variant{{
			FontName: "Roboto", Variant: "400",
			FileURL: stored.URL, FileID: stored.ID,
		}},
	}

	savedBefore := len(s.media.saved)

	report, err := s.engine.Restore(payload)
	s.Require().NoError(err)
	s.Equal(1, report.VariantsRestored)
	s.Len(s.media.saved, savedBefore)

	restored := s.catalog.variants[variantKey("Roboto", "400")]
	s.Equal(stored.ID, restored.FileID)
	s.Equal(stored.URL, restored.FileURL)
}

func (s *EngineTestSuite) TestRestoreResyncsAmounts() {
	payload := &models.BackupPayload{
		Fonts: []models.Font{
			{Name: "Roboto", Amount: 5},
			{Name: "Lato", Amount: 3},
		},
		Variants: []models.Variant{
			{FontName: "Roboto", Variant: "400", FileURL: s.remote.URL + "/roboto-400.woff2", FileID: 1},
			{FontName: "Lato", Variant: "700", FileURL: s.remote.URL + "/payload.exe", FileID: 2},
		},
	}

	report, err := s.engine.Restore(payload)
	s.Require().NoError(err)
	s.Equal(2, report.FontsRestored)
	s.Equal(1, report.VariantsRestored)
	s.Equal(1, report.VariantsSkipped)

	// Whatever the payload claimed, every created font ends on its live
	// variant count.
	s.Equal(int64(1), s.catalog.fonts["Roboto"].Amount)
	s.Equal(int64(0), s.catalog.fonts["Lato"].Amount)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

