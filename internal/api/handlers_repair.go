// handlers_repair.go - Repair session handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/framemend/backend/internal/models"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// HandleStartRepair starts a repair session for an uploaded model file.
func (h *Handler) HandleStartRepair(c echo.Context) error {
	var req struct {
		FileID string `json:"fileId"`
	}
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.FileID == "" {
		return NewValidationError("fileId")
	}

	info, err := h.store.Get(req.FileID)
	if err != nil {
		return NewNotFoundError("file", req.FileID)
	}

	path, err := h.store.GetFilePath(info.ID)
	if err != nil {
		return NewInternalError("failed to get file path", err)
	}

	sess, err := h.session.StartSession(info.ID, path)
	if err != nil {
		return NewInternalError("failed to start session", err)
	}

	h.store.SetStatus(info.ID, "repairing")

	return c.JSON(http.StatusAccepted, sess)
}

// HandleRepairStatus returns the status of a repair session.
func (h *Handler) HandleRepairStatus(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.session.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	// Touch session to prevent cleanup while being viewed
	h.session.TouchSession(id)

	// Propagate the terminal status to the file record
	switch sess.Status {
	case models.SessionStatusComplete:
		h.store.SetStatus(sess.FileID, "repaired")
	case models.SessionStatusError:
		h.store.SetStatus(sess.FileID, "error")
	}

	return c.JSON(http.StatusOK, sess)
}

// HandleRepairProgressStream streams repair progress via SSE for real-time updates.
func (h *Handler) HandleRepairProgressStream(c echo.Context) error {
	id := c.Param("sessionId")

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	sess, ok := h.session.GetSession(id)
	if !ok {
		data, _ := json.Marshal(map[string]string{"error": "session not found"})
		fmt.Fprintf(c.Response(), "data: %s\n\n", data)
		c.Response().Flush()
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	lastProgress := -1.0
	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-ticker.C:
			sess, ok = h.session.GetSession(id)
			if !ok {
				data, _ := json.Marshal(map[string]string{"error": "session not found"})
				fmt.Fprintf(c.Response(), "data: %s\n\n", data)
				c.Response().Flush()
				return nil
			}

			// Only send update if progress changed
			if sess.Progress != lastProgress {
				lastProgress = sess.Progress

				data, err := json.Marshal(map[string]interface{}{
					"status":         sess.Status,
					"progress":       sess.Progress,
					"nodeCount":      sess.NodeCount,
					"lineCount":      sess.LineCount,
					"splitMothers":   sess.SplitMothers,
					"syntheticNodes": sess.SyntheticNodes,
					"parserName":     sess.ParserName,
					"error":          sess.Error,
				})
				if err != nil {
					continue
				}

				fmt.Fprintf(c.Response(), "data: %s\n\n", data)
				c.Response().Flush()
			}

			if sess.Status == models.SessionStatusComplete || sess.Status == models.SessionStatusError {
				return nil
			}
		}
	}
}

// HandleRepairedModel returns the full repaired model as JSON.
func (h *Handler) HandleRepairedModel(c echo.Context) error {
	id := c.Param("sessionId")
	result, ok := h.session.GetResult(id)
	if !ok {
		return NewNotFoundError("session result", id)
	}
	h.session.TouchSession(id)
	return c.JSON(http.StatusOK, result.Model)
}

// HandleRepairedModelMsgpack returns the repaired model plus lineage in
// MessagePack format for clients that prefer the compact encoding.
func (h *Handler) HandleRepairedModelMsgpack(c echo.Context) error {
	id := c.Param("sessionId")
	result, ok := h.session.GetResult(id)
	if !ok {
		return NewNotFoundError("session result", id)
	}
	h.session.TouchSession(id)

	data, err := msgpack.Marshal(map[string]interface{}{
		"model":            result.Model,
		"motherToChildren": result.Lineage.MotherToChildren,
		"childToMother":    result.Lineage.ChildToMother,
		"syntheticNodes":   result.SyntheticNodes,
		"splitMothers":     result.SplitMothers,
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleLineage returns the mother and child maps for a repair session.
func (h *Handler) HandleLineage(c echo.Context) error {
	id := c.Param("sessionId")
	result, ok := h.session.GetResult(id)
	if !ok {
		return NewNotFoundError("session result", id)
	}
	h.session.TouchSession(id)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"motherToChildren": result.Lineage.MotherToChildren,
		"childToMother":    result.Lineage.ChildToMother,
		"syntheticNodes":   result.SyntheticNodes,
		"splitMothers":     result.SplitMothers,
	})
}

// HandleExportRepaired stores the repaired model for the session's file and
// returns the document. Reloading the same file later serves this export.
func (h *Handler) HandleExportRepaired(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.session.GetSession(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	result, ok := h.session.GetResult(id)
	if !ok {
		return NewNotFoundError("session result", id)
	}

	data, err := json.Marshal(result.Model)
	if err != nil {
		return NewInternalError("failed to encode repaired model", err)
	}

	if h.repaired != nil {
		if err := h.repaired.Save(sess.FileID, data); err != nil {
			return NewInternalError("failed to store repaired export", err)
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="repaired_model.json"`)
	return c.Blob(http.StatusOK, "application/json", data)
}

// HandleGetRepairedExport serves a previously stored repaired export by file ID.
func (h *Handler) HandleGetRepairedExport(c echo.Context) error {
	id := c.Param("id")
	if h.repaired == nil {
		return NewNotFoundError("repaired export", id)
	}

	data, err := h.repaired.Read(id)
	if err != nil {
		return NewInternalError("failed to read repaired export", err)
	}
	if data == nil {
		return NewNotFoundError("repaired export", id)
	}

	return c.Blob(http.StatusOK, "application/json", data)
}
