package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/equipstat/equipstat/internal/appcontext"
	"github.com/equipstat/equipstat/internal/entity"
	"github.com/equipstat/equipstat/internal/ingest"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const validCSV = "Equipment Name,Type,Flowrate,Pressure,Temperature\n" +
	"Pump A,Pump,10,20,30\n" +
	"Valve B,Valve,20,30,40\n" +
	"Pump C,Pump,30,40,50\n"

func newTestService(t *testing.T) (*APIService, *appcontext.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.User{}, &entity.Dataset{}, &entity.Equipment{}))

	ctx := &appcontext.Context{
		DB:     db,
		Logger: zap.NewNop(),
	}
	return NewHTTPService(ctx), ctx
}

func doJSON(t *testing.T, service *APIService, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	service.Engine().ServeHTTP(rr, req)
	return rr
}

func registerUser(t *testing.T, service *APIService, username string) string {
	t.Helper()
	rr := doJSON(t, service, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": username,
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func uploadCSV(t *testing.T, service *APIService, token, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	service.Engine().ServeHTTP(rr, req)
	return rr
}

func TestRegisterAndLogin(t *testing.T) {
	service, _ := newTestService(t)

	token := registerUser(t, service, "alice")
	require.NotEmpty(t, token)

	// Duplicate registration fails.
	rr := doJSON(t, service, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice",
		"password": "other",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "already exists")

	// Login with the right password succeeds.
	rr = doJSON(t, service, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "alice",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	// The issued token is usable on a protected endpoint.
	rr = doJSON(t, service, http.MethodGet, "/api/v1/history", resp.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLogin_BadCredentials(t *testing.T) {
	service, _ := newTestService(t)
	registerUser(t, service, "bob")

	rr := doJSON(t, service, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "bob",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, service, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "nobody",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegister_MissingFields(t *testing.T) {
	service, _ := newTestService(t)

	rr := doJSON(t, service, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "carol",
	})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	service, _ := newTestService(t)

	for _, path := range []string{"/api/v1/history", "/api/v1/summary/1", "/api/v1/data/1", "/api/v1/pdf/1"} {
		rr := doJSON(t, service, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	rr := doJSON(t, service, http.MethodGet, "/api/v1/history", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUpload_CreatesDataset(t *testing.T) {
	service, ctx := newTestService(t)
	token := registerUser(t, service, "alice")

	rr := uploadCSV(t, service, token, "plant.csv", validCSV)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		DatasetID   uint   `json:"dataset_id"`
		DatasetName string `json:"dataset_name"`
		Count       int    `json:"equipment_count"`
		Equipment   []struct {
			ID   uint   `json:"id"`
			Name string `json:"equipment_name"`
		} `json:"equipment"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "plant.csv", resp.DatasetName)
	require.Equal(t, 3, resp.Count)
	require.Len(t, resp.Equipment, 3)

	var count int64
	require.NoError(t, ctx.DB.Model(&entity.Equipment{}).Count(&count).Error)
	require.EqualValues(t, 3, count)
}

func TestUpload_MissingColumnsCreatesNothing(t *testing.T) {
	service, ctx := newTestService(t)
	token := registerUser(t, service, "alice")

	rr := uploadCSV(t, service, token, "bad.csv", "Equipment Name,Type\nPump A,Pump\n")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "Flowrate")
	require.Contains(t, rr.Body.String(), "Pressure")
	require.Contains(t, rr.Body.String(), "Temperature")

	var datasets int64
	require.NoError(t, ctx.DB.Model(&entity.Dataset{}).Count(&datasets).Error)
	require.EqualValues(t, 0, datasets)
}

func TestUpload_RejectsNonCSV(t *testing.T) {
	service, _ := newTestService(t)
	token := registerUser(t, service, "alice")

	rr := uploadCSV(t, service, token, "data.json", validCSV)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHistory_ReturnsNewestFiveAfterRetention(t *testing.T) {
	service, _ := newTestService(t)
	token := registerUser(t, service, "alice")

	for i := 1; i <= 6; i++ {
		rr := uploadCSV(t, service, token, fmt.Sprintf("upload-%d.csv", i), validCSV)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doJSON(t, service, http.MethodGet, "/api/v1/history", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		History []struct {
			Name           string `json:"name"`
			EquipmentCount int    `json:"equipment_count"`
		} `json:"history"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.History, ingest.MaxDatasets)

	// Newest first; the first upload has been evicted.
	require.Equal(t, "upload-6.csv", resp.History[0].Name)
	for _, entry := range resp.History {
		require.NotEqual(t, "upload-1.csv", entry.Name)
		require.Equal(t, 3, entry.EquipmentCount)
	}
}

func TestSummary_EndToEnd(t *testing.T) {
	service, _ := newTestService(t)
	token := registerUser(t, service, "alice")

	rr := uploadCSV(t, service, token, "plant.csv", "Equipment Name,Type,Flowrate,Pressure,Temperature\nA,Pump,10,20,30\nB,Valve,20,30,40\n")
	require.Equal(t, http.StatusCreated, rr.Code)

	var uploaded struct {
		DatasetID uint `json:"dataset_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &uploaded))

	rr = doJSON(t, service, http.MethodGet, fmt.Sprintf("/api/v1/summary/%d", uploaded.DatasetID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Summary struct {
			TotalCount int `json:"total_count"`
			Averages   struct {
				Flowrate    float64 `json:"flowrate"`
				Pressure    float64 `json:"pressure"`
				Temperature float64 `json:"temperature"`
			} `json:"averages"`
			TypeDistribution map[string]int `json:"type_distribution"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Summary.TotalCount)
	require.Equal(t, 15.0, resp.Summary.Averages.Flowrate)
	require.Equal(t, 25.0, resp.Summary.Averages.Pressure)
	require.Equal(t, 35.0, resp.Summary.Averages.Temperature)
	require.Equal(t, map[string]int{"Pump": 1, "Valve": 1}, resp.Summary.TypeDistribution)
}

func TestSummary_NotFound(t *testing.T) {
	service, _ := newTestService(t)
	token := registerUser(t, service, "alice")

	rr := doJSON(t, service, http.MethodGet, "/api/v1/summary/999", token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestData_ReturnsAllRows(t *testing.T) {
	service, _ := newTestService(t)
	token := registerUser(t, service, "alice")

	rr := uploadCSV(t, service, token, "plant.csv", validCSV)
	require.Equal(t, http.StatusCreated, rr.Code)

	var uploaded struct {
		DatasetID uint `json:"dataset_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &uploaded))

	rr = doJSON(t, service, http.MethodGet, fmt.Sprintf("/api/v1/data/%d", uploaded.DatasetID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Data []struct {
			Name string `json:"equipment_name"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	require.Equal(t, "Pump A", resp.Data[0].Name)
}

func TestData_UnknownDataset(t *testing.T) {
	service, _ := newTestService(t)
	token := registerUser(t, service, "alice")

	rr := doJSON(t, service, http.MethodGet, "/api/v1/data/999", token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestData_StoreFailureIsNotA404(t *testing.T) {
	service, ctx := newTestService(t)
	token := registerUser(t, service, "alice")

	require.NoError(t, ctx.DB.Migrator().DropTable(&entity.Dataset{}))

	rr := doJSON(t, service, http.MethodGet, "/api/v1/data/1", token, nil)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestPDF_EndToEnd(t *testing.T) {
	service, _ := newTestService(t)
	token := registerUser(t, service, "alice")

	rr := uploadCSV(t, service, token, "plant.csv", validCSV)
	require.Equal(t, http.StatusCreated, rr.Code)

	var uploaded struct {
		DatasetID uint `json:"dataset_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &uploaded))

	rr = doJSON(t, service, http.MethodGet, fmt.Sprintf("/api/v1/pdf/%d", uploaded.DatasetID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), fmt.Sprintf("equipment_report_%d.pdf", uploaded.DatasetID))
	require.Equal(t, "%PDF", rr.Body.String()[:4])
}

func TestPDF_NotFound(t *testing.T) {
	service, _ := newTestService(t)
	token := registerUser(t, service, "alice")

	rr := doJSON(t, service, http.MethodGet, "/api/v1/pdf/999", token, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
