// handlers_repair_test.go - End to end tests for the repair endpoints
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/framemend/backend/internal/models"
	"github.com/framemend/backend/internal/repair"
	"github.com/framemend/backend/internal/session"
	"github.com/framemend/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

const crossingModelJSON = `{
	"nodes": {
		"1": {"id": 1, "x": 0, "y": 0, "z": 0},
		"2": {"id": 2, "x": 10, "y": 10, "z": 0},
		"3": {"id": 3, "x": 0, "y": 10, "z": 0},
		"4": {"id": 4, "x": 10, "y": 0, "z": 0}
	},
	"lines": {
		"1": {"id": 1, "Ni": 1, "Nj": 2},
		"2": {"id": 2, "Ni": 3, "Nj": 4}
	},
	"members": {},
	"cross_sections": {}
}`

// repairTestEnv wires a real session manager over disk-backed mock storage.
type repairTestEnv struct {
	handler *Handler
	store   *testutil.MockStorageWithTempDir
	mgr     *session.Manager
	echo    *echo.Echo
}

func newRepairTestEnv(t *testing.T) *repairTestEnv {
	t.Helper()
	tempDir := t.TempDir()
	store := testutil.NewMockStorageWithTempDir(tempDir)
	mgr := session.NewManagerWithTempDir(t.TempDir(), repair.DefaultOptions())
	repaired := session.NewPersistentRepairedStoreWithDir(t.TempDir())
	return &repairTestEnv{
		handler: NewHandler(store, mgr, repaired, "HEA200", 1),
		store:   store,
		mgr:     mgr,
		echo:    echo.New(),
	}
}

// startRepair uploads the fixture, starts a session and waits for completion.
func (env *repairTestEnv) startRepair(t *testing.T) *models.RepairSession {
	t.Helper()
	env.store.AddFile("model-1", "tower.json", []byte(crossingModelJSON))

	body := bytes.NewReader([]byte(`{"fileId":"model-1"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/repair", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := env.echo.NewContext(req, rec)

	if err := env.handler.HandleStartRepair(c); err != nil {
		t.Fatalf("failed to start repair: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	var sess models.RepairSession
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("failed to parse session: %v", err)
	}

	for i := 0; i < 50; i++ {
		s, ok := env.mgr.GetSession(sess.ID)
		if !ok {
			t.Fatalf("session disappeared")
		}
		if s.Status == models.SessionStatusComplete {
			return s
		}
		if s.Status == models.SessionStatusError {
			t.Fatalf("repair failed: %v", s.Error)
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("repair did not complete in time")
	return nil
}

func (env *repairTestEnv) sessionContext(method, path, sessionID string, rec *httptest.ResponseRecorder) echo.Context {
	req := httptest.NewRequest(method, path, nil)
	c := env.echo.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(sessionID)
	return c
}

func TestHandler_RepairFlow(t *testing.T) {
	env := newRepairTestEnv(t)
	sess := env.startRepair(t)

	t.Run("status", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := env.sessionContext(http.MethodGet, "/", sess.ID, rec)

		if err := env.handler.HandleRepairStatus(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var got models.RepairSession
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("failed to parse status: %v", err)
		}
		if got.Status != models.SessionStatusComplete {
			t.Errorf("expected complete, got %s", got.Status)
		}
		if got.SplitMothers != 2 || got.SyntheticNodes != 1 {
			t.Errorf("expected 2 split mothers and 1 synthetic node, got %d/%d",
				got.SplitMothers, got.SyntheticNodes)
		}

		// Terminal status propagates to the file record
		info, err := env.store.Get("model-1")
		if err != nil {
			t.Fatalf("file lookup failed: %v", err)
		}
		if info.Status != "repaired" {
			t.Errorf("expected file status repaired, got %q", info.Status)
		}
	})

	t.Run("repaired model", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := env.sessionContext(http.MethodGet, "/", sess.ID, rec)

		if err := env.handler.HandleRepairedModel(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var model models.StructuralModel
		if err := json.Unmarshal(rec.Body.Bytes(), &model); err != nil {
			t.Fatalf("failed to parse model: %v", err)
		}
		if len(model.Nodes) != 5 {
			t.Errorf("expected 5 nodes, got %d", len(model.Nodes))
		}
		if len(model.Lines) != 4 {
			t.Errorf("expected 4 lines, got %d", len(model.Lines))
		}
	})

	t.Run("lineage", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := env.sessionContext(http.MethodGet, "/", sess.ID, rec)

		if err := env.handler.HandleLineage(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var resp struct {
			MotherToChildren map[string][]int `json:"motherToChildren"`
			ChildToMother    map[string]int   `json:"childToMother"`
			SyntheticNodes   []int            `json:"syntheticNodes"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse lineage: %v", err)
		}
		if len(resp.MotherToChildren) != 2 {
			t.Errorf("expected lineage for 2 mothers, got %d", len(resp.MotherToChildren))
		}
		if len(resp.SyntheticNodes) != 1 {
			t.Errorf("expected 1 synthetic node, got %d", len(resp.SyntheticNodes))
		}
	})

	t.Run("msgpack model", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := env.sessionContext(http.MethodGet, "/", sess.ID, rec)

		if err := env.handler.HandleRepairedModelMsgpack(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/msgpack" {
			t.Errorf("expected msgpack content type, got %q", ct)
		}

		var payload map[string]interface{}
		if err := msgpack.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode msgpack: %v", err)
		}
		for _, key := range []string{"model", "motherToChildren", "childToMother", "syntheticNodes"} {
			if _, ok := payload[key]; !ok {
				t.Errorf("missing %q in msgpack payload", key)
			}
		}
	})

	t.Run("export and reload", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := env.sessionContext(http.MethodPost, "/", sess.ID, rec)

		if err := env.handler.HandleExportRepaired(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cd := rec.Header().Get(echo.HeaderContentDisposition); cd == "" {
			t.Error("expected attachment disposition")
		}

		// The export is now served against the original file id
		rec2 := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		c2 := env.echo.NewContext(req, rec2)
		c2.SetParamNames("id")
		c2.SetParamValues("model-1")

		if err := env.handler.HandleGetRepairedExport(c2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(rec.Body.Bytes(), rec2.Body.Bytes()) {
			t.Error("stored export differs from the returned one")
		}
	})
}

func TestHandler_HandleStartRepairValidation(t *testing.T) {
	env := newRepairTestEnv(t)

	tests := []struct {
		name    string
		body    string
		errCode string
	}{
		{"missing fileId", `{}`, "VALIDATION_ERROR"},
		{"unknown file", `{"fileId":"ghost"}`, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/repair", bytes.NewReader([]byte(tt.body)))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := env.echo.NewContext(req, rec)

			err := env.handler.HandleStartRepair(c)
			apiErr, ok := err.(*APIError)
			if !ok {
				t.Fatalf("expected APIError, got %T", err)
			}
			if apiErr.Code != tt.errCode {
				t.Errorf("expected %s, got %s", tt.errCode, apiErr.Code)
			}
		})
	}
}

func TestHandler_HandleRepairStatusUnknownSession(t *testing.T) {
	env := newRepairTestEnv(t)

	rec := httptest.NewRecorder()
	c := env.sessionContext(http.MethodGet, "/", "no-such-session", rec)

	err := env.handler.HandleRepairStatus(c)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404 APIError, got %v", err)
	}
}
