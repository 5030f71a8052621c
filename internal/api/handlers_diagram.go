// handlers_diagram.go - Plan view rendering handlers
package api

import (
	"bytes"
	"net/http"

	"github.com/framemend/backend/internal/diagram"
	"github.com/labstack/echo/v4"
)

// HandlePlanDiagram renders the repaired model as a plan-view PNG with the
// inserted nodes highlighted.
func (h *Handler) HandlePlanDiagram(c echo.Context) error {
	id := c.Param("sessionId")
	result, ok := h.session.GetResult(id)
	if !ok {
		return NewNotFoundError("session result", id)
	}
	h.session.TouchSession(id)

	var buf bytes.Buffer
	err := diagram.WritePlanPNG(&buf, diagram.PlanData{
		Model:          result.Model,
		SyntheticNodes: result.SyntheticNodes,
	})
	if err != nil {
		return NewInternalError("failed to render plan view", err)
	}

	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}
