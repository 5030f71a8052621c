// handlers_solver.go - Solver exchange handlers
package api

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/framemend/backend/internal/solver"
	"github.com/labstack/echo/v4"
)

// HandleSolverInputs writes the solver input document for a repaired session.
// The optional "section" query parameter overrides the configured default
// section name.
func (h *Handler) HandleSolverInputs(c echo.Context) error {
	id := c.Param("sessionId")
	result, ok := h.session.GetResult(id)
	if !ok {
		return NewNotFoundError("session result", id)
	}
	h.session.TouchSession(id)

	sectionName := c.QueryParam("section")
	if sectionName == "" {
		sectionName = h.sectionName
	}

	var buf bytes.Buffer
	if err := solver.WriteInputs(&buf, result.Model, sectionName); err != nil {
		return NewInternalError("failed to write solver inputs", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="solver_inputs.json"`)
	return c.Blob(http.StatusOK, "application/json", buf.Bytes())
}

// HandleSolverOutputs accepts a solver output document and attaches the
// per-member displacements to the session.
func (h *Handler) HandleSolverOutputs(c echo.Context) error {
	id := c.Param("sessionId")

	outputs, err := solver.ParseOutputs(c.Request().Body)
	if err != nil {
		return NewBadRequestError("invalid solver output document", err)
	}

	loadCase := h.loadCase
	if lc, err := strconv.Atoi(c.QueryParam("loadCase")); err == nil && lc > 0 {
		loadCase = lc
	}

	if err := h.session.AttachSolverOutputs(id, outputs, loadCase); err != nil {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":     "attached",
		"iterations": len(outputs.Iterations),
		"loadCase":   loadCase,
	})
}

// HandleGoverning returns the worst-case displacement per mother member.
func (h *Handler) HandleGoverning(c echo.Context) error {
	id := c.Param("sessionId")

	governing, err := h.session.Governing(c.Request().Context(), id)
	if err != nil {
		return NewNotFoundError("solver results", id)
	}
	h.session.TouchSession(id)

	return c.JSON(http.StatusOK, governing)
}
