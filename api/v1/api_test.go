package v1

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/filacost/database"
	"github.com/filacost/lib/license"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	router := gin.New()
	pricing := NewPricingController()
	router.GET("/api/settings/pricing.json", pricing.SettingsJSON)
	router.POST("/api/calculate_preview", pricing.CalculatePreview)
	RegisterRoutes(router.Group("/api/v1"))
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Remaining float64         `json:"remaining"`
	Required  float64         `json:"required"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func createFilament(t *testing.T, router *gin.Engine, meters float64) uint {
	t.Helper()
	body, _ := json.Marshal(gin.H{"name": "Esun", "color": "Black", "material": "PETG", "initialAmount": meters})
	w := doJSON(router, http.MethodPost, "/api/v1/filaments", string(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var f struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &f))
	return f.ID
}

func TestFilamentEndpoints(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(router, http.MethodPost, "/api/v1/filaments", `{"color":"Black"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/filaments", `{"name":"x","color":"y","material":"NYLON"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := createFilament(t, router, 100)

	w = doJSON(router, http.MethodGet, "/api/v1/filaments", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, 100.0, list[0]["remainingAmount"])
	assert.Equal(t, 100.0, list[0]["usagePercentage"])

	w = doJSON(router, http.MethodGet, "/api/v1/filaments/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/filaments/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/filaments/1",
		`{"name":"Esun","color":"Blue","material":"PETG","initialAmount":100,"costPerKg":1500000,"revision":7}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/filaments/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, id)
}

func TestProjectEndpoints(t *testing.T) {
	router := setupRouter(t)
	id := createFilament(t, router, 10)

	w := doJSON(router, http.MethodPost, "/api/v1/filaments/1/projects",
		`{"modelName":"Helmet","filamentUsedMm":20000,"printHours":5,"printMinutes":0,"sizeX":200,"sizeY":200,"sizeZ":200}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	env := decode(t, w)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, 10.0, env.Remaining)
	assert.Equal(t, 20.0, env.Required)

	w = doJSON(router, http.MethodPost, "/api/v1/filaments/1/projects",
		`{"modelName":"Ring","filamentUsedMm":4000,"printHours":1,"printMinutes":75}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/filaments/1/projects",
		`{"modelName":"Ring","filamentUsedMm":4000,"printHours":1,"printMinutes":15}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var project map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &project))
	assert.Equal(t, 1.0, project["code"])
	assert.Equal(t, 1.25, project["printTimeHours"])
	assert.Equal(t, 4.0, project["filamentUsedMeters"])

	w = doJSON(router, http.MethodDelete, "/api/v1/filaments/1", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(router, http.MethodGet, "/api/v1/projects?view=list&sort=-profit&filament=1&filament=x", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.Equal(t, 25.0, page["pageSize"])
	assert.Equal(t, "-profit", page["sort"])
	assert.Equal(t, 1.0, page["totalCount"])

	w = doJSON(router, http.MethodDelete, "/api/v1/projects/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var deleted struct {
		FilamentID uint `json:"filamentId"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &deleted))
	assert.Equal(t, id, deleted.FilamentID)
}

func TestSaleEndpoints(t *testing.T) {
	router := setupRouter(t)
	createFilament(t, router, 330)
	w := doJSON(router, http.MethodPost, "/api/v1/filaments/1/projects", `{"modelName":"Owl","filamentUsedMm":2000}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(router, http.MethodPost, "/api/v1/sales", `{"projectCode":42,"quantity":1,"unitPrice":1000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/sales", `{"projectCode":1,"quantity":0,"unitPrice":1000}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/api/v1/sales", `{"projectCode":1,"quantity":2,"unitPrice":1000,"packagingCost":500,"customerName":"Ana"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sale map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &sale))
	assert.Equal(t, 2500.0, sale["totalPrice"])

	w = doJSON(router, http.MethodGet, "/api/v1/sales?period=today", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &history))
	assert.Equal(t, "today", history["period"])
	assert.Equal(t, []interface{}{"Ana"}, history["customers"])

	w = doJSON(router, http.MethodGet, "/api/v1/sales/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, "PK", w.Body.String()[:2])

	w = doJSON(router, http.MethodGet, "/api/v1/reports?period=week", "")
	require.Equal(t, http.StatusOK, w.Code)
	var report map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &report))
	assert.Equal(t, 1.0, report["totalSales"])

	w = doJSON(router, http.MethodGet, "/api/v1/dashboard", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodDelete, "/api/v1/sales/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodDelete, "/api/v1/sales/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPricingEndpoints(t *testing.T) {
	router := setupRouter(t)

	for _, body := range []string{"not json", "null", "[1]", `{"a":1}{}`} {
		w := doJSON(router, http.MethodPost, "/api/calculate_preview", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.JSONEq(t, `{"error":"invalid input"}`, w.Body.String())
	}

	w := doJSON(router, http.MethodPost, "/api/calculate_preview", `{"print_time_hours":"1","packaging_cost":"580"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var preview map[string]float64
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &preview))
	assert.Equal(t, 13000.0, preview["total_cost"])
	assert.Equal(t, 18000.0, preview["selling_price"])
	assert.Equal(t, 3.0, preview["g_per_m"])

	w = doJSON(router, http.MethodPut, "/api/v1/settings/pricing", `{"profit_percent":"60"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPut, "/api/v1/settings/pricing", `{"profit_percent":"60","confirm_apply":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/settings/pricing.json", "")
	require.Equal(t, http.StatusOK, w.Code)
	var settings map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &settings))
	assert.Equal(t, 60.0, settings["profit_percent"])
	assert.Equal(t, 3500.0, settings["power_price_per_kwh"])
}

func newLicenseController(t *testing.T) *LicenseController {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	verifier, err := license.NewRS256Verifier(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil)
	require.NoError(t, err)

	dir := t.TempDir()
	store, err := license.OpenStateStore(filepath.Join(dir, "lic_state.sqlite3"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	c := NewLicenseController(license.NewGate(filepath.Join(dir, "license.lic"), verifier, store))
	c.fingerprint = func() string { return "abc123" }
	return c
}

func upload(router *gin.Engine, content []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, _ := mw.CreateFormFile("file", "license.lic")
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/license/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLicenseEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	newLicenseController(t).RegisterRoutes(router.Group(""))

	w := doJSON(router, http.MethodGet, "/license/fingerprint", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc123", w.Body.String())

	w = doJSON(router, http.MethodGet, "/license", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		License      license.Status `json:"license"`
		Fingerprint  string         `json:"fingerprint"`
		LicensePath  string         `json:"licensePath"`
		AutoRedirect bool           `json:"autoRedirect"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &page))
	assert.False(t, page.License.Valid)
	assert.Equal(t, license.StateNoLicense, page.License.State)
	assert.Equal(t, "abc123", page.Fingerprint)
	assert.False(t, page.AutoRedirect)
	assert.True(t, strings.HasSuffix(page.LicensePath, "license.lic"))

	req := httptest.NewRequest(http.MethodPost, "/license/upload", strings.NewReader(""))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No file uploaded.", decode(t, w).Message)

	w = upload(router, []byte{0xff, 0xfe, 0x00})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Uploaded file is not valid UTF-8 text.", decode(t, w).Message)

	w = upload(router, []byte("not.a.token"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Message, "Invalid license")
}
