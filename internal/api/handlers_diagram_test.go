// handlers_diagram_test.go - Tests for the plan diagram endpoint
package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHandler_HandlePlanDiagram(t *testing.T) {
	env := newRepairTestEnv(t)
	sess := env.startRepair(t)

	rec := httptest.NewRecorder()
	c := env.sessionContext(http.MethodGet, "/", sess.ID, rec)

	if err := env.handler.HandlePlanDiagram(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}

	body := rec.Body.Bytes()
	if len(body) < 8 || body[0] != 0x89 || string(body[1:4]) != "PNG" {
		t.Error("response is not a PNG image")
	}
}

func TestHandler_HandlePlanDiagramUnknownSession(t *testing.T) {
	env := newRepairTestEnv(t)

	rec := httptest.NewRecorder()
	c := env.sessionContext(http.MethodGet, "/", "no-such-session", rec)

	err := env.handler.HandlePlanDiagram(c)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Status != http.StatusNotFound {
		t.Errorf("expected 404 APIError, got %v", err)
	}
}
