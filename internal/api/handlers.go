package api

import (
	"encoding/base64"
	"net/http"

	"github.com/framemend/backend/internal/session"
	"github.com/framemend/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Handler handles API requests.
type Handler struct {
	store       storage.Store
	session     *session.Manager
	repaired    *session.PersistentRepairedStore
	sectionName string
	loadCase    int
}

// NewHandler creates a new API handler.
func NewHandler(store storage.Store, sessionMgr *session.Manager, repaired *session.PersistentRepairedStore, sectionName string, loadCase int) *Handler {
	if sectionName == "" {
		sectionName = "HEA200"
	}
	if loadCase <= 0 {
		loadCase = 1
	}
	return &Handler{
		store:       store,
		session:     sessionMgr,
		repaired:    repaired,
		sectionName: sectionName,
		loadCase:    loadCase,
	}
}

// HandleUploadModel accepts a model export as base64 JSON and saves it to storage.
func (h *Handler) HandleUploadModel(c echo.Context) error {
	var req uploadModelRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	info, err := h.store.SaveBytes(req.Name, decoded)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleUploadModelBinary accepts a raw model export upload (multipart/form-data).
func (h *Handler) HandleUploadModelBinary(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	info, err := h.store.Save(file.Filename, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleGetRecentFiles returns a list of recently uploaded model files.
func (h *Handler) HandleGetRecentFiles(c echo.Context) error {
	files, err := h.store.List(20)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file.
func (h *Handler) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	info, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// HandleDeleteFile deletes a file and its stored repaired export.
func (h *Handler) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}

	if h.repaired != nil {
		h.repaired.Delete(id)
	}

	return c.NoContent(http.StatusNoContent)
}

// HandleRenameFile updates the name of a file.
func (h *Handler) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req renameFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if req.Name == "" {
		return NewValidationError("name")
	}

	info, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, info)
}

// Request types

type uploadModelRequest struct {
	Name string `json:"name"`
	Data string `json:"data"` // Base64-encoded content
}

func (r *uploadModelRequest) validate() error {
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	return nil
}

type renameFileRequest struct {
	Name string `json:"name"`
}
