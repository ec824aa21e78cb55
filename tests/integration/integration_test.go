//go:build integration

// Package integration exercises the running service over HTTP, black-box:
// the compose stack (postgres + minio + api) is started by TestMain and no
// internal packages are imported.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go/modules/compose"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	baseURL    string
	httpClient *http.Client
)

// Response types mirror the API contract.

type resource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type resourcePage struct {
	Items      []resource `json:"items"`
	Total      int        `json:"total"`
	TotalPages int        `json:"total_pages"`
}

type productResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	CategoryID  string `json:"category_id"`
	Category    string `json:"category"`
	ImageURL    string `json:"image_url"`
}

type productPage struct {
	Items      []productResponse `json:"items"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func TestMain(m *testing.M) {
	os.Exit(testMain(m))
}

func testMain(m *testing.M) int {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dc, err := tc.NewDockerCompose("docker-compose.test.yml")
	if err != nil {
		log.Fatalf("compose init: %v", err)
	}

	err = dc.
		WaitForService("api", wait.ForHTTP("/readyz").WithPort("8080/tcp")).
		Up(ctx, tc.Wait(true))
	if err != nil {
		log.Fatalf("compose up: %v", err)
	}

	apiContainer, err := dc.ServiceContainer(ctx, "api")
	if err != nil {
		log.Fatalf("api container: %v", err)
	}

	host, err := apiContainer.Host(ctx)
	if err != nil {
		log.Fatalf("host: %v", err)
	}

	mappedPort, err := apiContainer.MappedPort(ctx, "8080/tcp")
	if err != nil {
		log.Fatalf("mapped port: %v", err)
	}

	baseURL = fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
	httpClient = &http.Client{Timeout: 10 * time.Second}
	log.Printf("API available at %s", baseURL)

	result := m.Run()

	if err := dc.Down(context.Background(), tc.RemoveOrphans(true)); err != nil {
		log.Printf("compose down: %v", err)
	}

	return result
}

// HTTP helpers.

func doRequest(t *testing.T, method, path string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, baseURL+path, body)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func doGet(t *testing.T, path string) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodGet, path, nil, "")
}

func doDelete(t *testing.T, path string) *http.Response {
	t.Helper()
	return doRequest(t, http.MethodDelete, path, nil, "")
}

func doJSON(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return doRequest(t, method, path, bytes.NewReader(data), "application/json")
}

// doForm sends a multipart product form. A non-nil fileContent adds an
// image_file part named fileName.
func doForm(t *testing.T, method, path string, fields map[string]string, fileName string, fileContent []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if fileContent != nil {
		fw, err := mw.CreateFormFile("image_file", fileName)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := fw.Write(fileContent); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	return doRequest(t, method, path, &buf, mw.FormDataContentType())
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createCategory(t *testing.T, name string) resource {
	t.Helper()

	resp := doJSON(t, http.MethodPost, "/api/categories", map[string]string{"name": name})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create category %q: status %d", name, resp.StatusCode)
	}
	return decodeJSON[resource](t, resp)
}
