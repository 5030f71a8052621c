// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// FileHandler handles model file operations
type FileHandler interface {
	HandleUploadModel(c echo.Context) error
	HandleUploadModelBinary(c echo.Context) error
	HandleGetRecentFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
}

// RepairHandler handles repair session operations
type RepairHandler interface {
	HandleStartRepair(c echo.Context) error
	HandleRepairStatus(c echo.Context) error
	HandleRepairProgressStream(c echo.Context) error
	HandleRepairedModel(c echo.Context) error
	HandleRepairedModelMsgpack(c echo.Context) error
	HandleLineage(c echo.Context) error
	HandleExportRepaired(c echo.Context) error
	HandleGetRepairedExport(c echo.Context) error
	HandlePlanDiagram(c echo.Context) error
}

// SolverHandler handles solver exchange operations
type SolverHandler interface {
	HandleSolverInputs(c echo.Context) error
	HandleSolverOutputs(c echo.Context) error
	HandleGoverning(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Compile-time checks that Handler satisfies the route interfaces.
var (
	_ FileHandler   = (*Handler)(nil)
	_ RepairHandler = (*Handler)(nil)
	_ SolverHandler = (*Handler)(nil)
)
