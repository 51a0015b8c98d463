package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// APIClient is a thin HTTP client for the equipstat server.
type APIClient struct {
	http   *http.Client
	server string
	token  string
}

func NewAPIClient(server, token string) (*APIClient, error) {
	normalized, err := normalizeServerURL(server)
	if err != nil {
		return nil, err
	}
	return &APIClient{
		http:   &http.Client{Timeout: 30 * time.Second},
		server: normalized,
		token:  token,
	}, nil
}

// normalizeServerURL ensures the server address has a scheme and no path.
func normalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q", server)
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host), nil
}

type AuthResult struct {
	Token    string `json:"token"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type UploadResult struct {
	DatasetID   uint        `json:"dataset_id"`
	DatasetName string      `json:"dataset_name"`
	UploadedAt  time.Time   `json:"uploaded_at"`
	Count       int         `json:"equipment_count"`
	Equipment   []Equipment `json:"equipment"`
}

type Equipment struct {
	ID          uint    `json:"id"`
	Name        string  `json:"equipment_name"`
	Type        string  `json:"equipment_type"`
	Flowrate    float64 `json:"flowrate"`
	Pressure    float64 `json:"pressure"`
	Temperature float64 `json:"temperature"`
}

type HistoryEntry struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	UploadedAt     time.Time `json:"uploaded_at"`
	EquipmentCount int       `json:"equipment_count"`
}

type Summary struct {
	DatasetID   uint      `json:"dataset_id"`
	DatasetName string    `json:"dataset_name"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Summary     struct {
		TotalCount int `json:"total_count"`
		Averages   struct {
			Flowrate    float64 `json:"flowrate"`
			Pressure    float64 `json:"pressure"`
			Temperature float64 `json:"temperature"`
		} `json:"averages"`
		TypeDistribution map[string]int `json:"type_distribution"`
	} `json:"summary"`
}

func (c *APIClient) Register(username, password, email string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"username": username, "password": password, "email": email}
	if err := c.postJSON("/api/v1/auth/register", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Login(username, password string) (*AuthResult, error) {
	var result AuthResult
	body := map[string]string{"username": username, "password": password}
	if err := c.postJSON("/api/v1/auth/login", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Upload(path string) (*UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.server+"/api/v1/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) History() ([]HistoryEntry, error) {
	var result struct {
		History []HistoryEntry `json:"history"`
	}
	if err := c.getJSON("/api/v1/history", &result); err != nil {
		return nil, err
	}
	return result.History, nil
}

func (c *APIClient) Summary(datasetID uint) (*Summary, error) {
	var result Summary
	if err := c.getJSON(fmt.Sprintf("/api/v1/summary/%d", datasetID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *APIClient) Data(datasetID uint) ([]Equipment, error) {
	var result struct {
		Data []Equipment `json:"data"`
	}
	if err := c.getJSON(fmt.Sprintf("/api/v1/data/%d", datasetID), &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// PDF downloads the report for a dataset and returns the raw bytes.
func (c *APIClient) PDF(datasetID uint) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/api/v1/pdf/%d", c.server, datasetID), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *APIClient) postJSON(path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.server+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *APIClient) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.server+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *APIClient) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeAPIError(resp *http.Response) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("server returned %d", resp.StatusCode)
}
