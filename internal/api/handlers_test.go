// handlers_test.go - Tests for file handlers
package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/framemend/backend/internal/models"
	"github.com/framemend/backend/internal/repair"
	"github.com/framemend/backend/internal/session"
	"github.com/framemend/backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

func newTestHandler(t *testing.T, store *testutil.MockStorage) *Handler {
	t.Helper()
	mgr := session.NewManagerWithTempDir(t.TempDir(), repair.DefaultOptions())
	return NewHandler(store, mgr, nil, "", 0)
}

func TestHandler_HandleUploadModel(t *testing.T) {
	tests := []struct {
		name       string
		request    uploadModelRequest
		wantStatus int
		wantErr    bool
		errCode    string
	}{
		{
			name: "valid model upload",
			request: uploadModelRequest{
				Name: "tower.json",
				Data: base64.StdEncoding.EncodeToString([]byte(`[{},{},"",{},{}]`)),
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "empty name",
			request: uploadModelRequest{
				Name: "",
				Data: base64.StdEncoding.EncodeToString([]byte("{}")),
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name: "empty data",
			request: uploadModelRequest{
				Name: "tower.json",
				Data: "",
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name: "invalid base64",
			request: uploadModelRequest{
				Name: "tower.json",
				Data: "not-valid-base64!!!",
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStorage()
			handler := newTestHandler(t, store)

			e := echo.New()
			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/api/files/upload", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler.HandleUploadModel(c)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %T", err)
				}
				if apiErr.Status != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected error code %s, got %s", tt.errCode, apiErr.Code)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}

			var response models.FileInfo
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if response.Name != tt.request.Name {
				t.Errorf("expected name %q, got %q", tt.request.Name, response.Name)
			}
			if response.Status != "uploaded" {
				t.Errorf("expected status uploaded, got %q", response.Status)
			}
		})
	}
}

func TestHandler_HandleGetFile(t *testing.T) {
	store := testutil.NewMockStorage()
	store.AddFile("model-1", "tower.json", []byte("{}"))
	handler := newTestHandler(t, store)

	e := echo.New()

	t.Run("existing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("model-1")

		if err := handler.HandleGetFile(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var info models.FileInfo
		if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if info.ID != "model-1" {
			t.Errorf("expected id model-1, got %q", info.ID)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("no-such-id")

		err := handler.HandleGetFile(c)
		apiErr, ok := err.(*APIError)
		if !ok {
			t.Fatalf("expected APIError, got %T", err)
		}
		if apiErr.Status != http.StatusNotFound {
			t.Errorf("expected 404, got %d", apiErr.Status)
		}
	})
}

func TestHandler_HandleDeleteFile(t *testing.T) {
	store := testutil.NewMockStorage()
	store.AddFile("model-1", "tower.json", []byte("{}"))
	handler := newTestHandler(t, store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("model-1")

	if err := handler.HandleDeleteFile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if store.GetFileCount() != 0 {
		t.Errorf("expected 0 files after delete, got %d", store.GetFileCount())
	}

	// Deleting again is a 404
	rec2 := httptest.NewRecorder()
	c2 := e.NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec2)
	c2.SetParamNames("id")
	c2.SetParamValues("model-1")

	err := handler.HandleDeleteFile(c2)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404 APIError, got %v", err)
	}
}

func TestHandler_HandleRenameFile(t *testing.T) {
	store := testutil.NewMockStorage()
	store.AddFile("model-1", "tower.json", []byte("{}"))
	handler := newTestHandler(t, store)

	e := echo.New()
	body := bytes.NewReader([]byte(`{"name":"tower_v2.json"}`))
	req := httptest.NewRequest(http.MethodPut, "/", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("model-1")

	if err := handler.HandleRenameFile(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var info models.FileInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if info.Name != "tower_v2.json" {
		t.Errorf("expected renamed file, got %q", info.Name)
	}

	t.Run("empty name rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/", bytes.NewReader([]byte(`{"name":""}`)))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("model-1")

		err := handler.HandleRenameFile(c)
		apiErr, ok := err.(*APIError)
		if !ok || apiErr.Code != "VALIDATION_ERROR" {
			t.Errorf("expected VALIDATION_ERROR, got %v", err)
		}
	})
}

func TestHandler_HandleGetRecentFiles(t *testing.T) {
	store := testutil.NewMockStorage()
	store.AddFile("model-1", "a.json", []byte("{}"))
	store.AddFile("model-2", "b.json", []byte("{}"))
	handler := newTestHandler(t, store)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/files/recent", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.HandleGetRecentFiles(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var files []*models.FileInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 files, got %d", len(files))
	}
}
