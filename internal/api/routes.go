// routes.go - Route registration helpers
package api

import (
	"github.com/framemend/backend/internal/session"
	"github.com/framemend/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store       storage.Store
	SessionMgr  *session.Manager
	Repaired    *session.PersistentRepairedStore
	SectionName string
	LoadCase    int
	Version     string
}

// Handlers holds all handler instances
type Handlers struct {
	API    *Handler
	Health HealthHandler
	WS     *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	h := NewHandler(deps.Store, deps.SessionMgr, deps.Repaired, deps.SectionName, deps.LoadCase)
	return &Handlers{
		API:    h,
		Health: NewHealthHandler(deps.Version),
		WS:     NewWebSocketHandler(h),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// Model file routes
	fileGroup := e.Group("/api/files")
	fileGroup.POST("/upload", handlers.API.HandleUploadModel)
	fileGroup.POST("/upload/binary", handlers.API.HandleUploadModelBinary)
	fileGroup.GET("/recent", handlers.API.HandleGetRecentFiles)
	fileGroup.GET("/:id", handlers.API.HandleGetFile)
	fileGroup.GET("/:id/repaired", handlers.API.HandleGetRepairedExport)
	fileGroup.DELETE("/:id", handlers.API.HandleDeleteFile)
	fileGroup.PUT("/:id", handlers.API.HandleRenameFile)

	// Repair session routes
	repairGroup := e.Group("/api/repair")
	repairGroup.POST("", handlers.API.HandleStartRepair)
	repairGroup.GET("/:sessionId/status", handlers.API.HandleRepairStatus)
	repairGroup.GET("/:sessionId/progress", handlers.API.HandleRepairProgressStream)
	repairGroup.GET("/:sessionId/model", handlers.API.HandleRepairedModel)
	repairGroup.GET("/:sessionId/model/msgpack", handlers.API.HandleRepairedModelMsgpack)
	repairGroup.GET("/:sessionId/lineage", handlers.API.HandleLineage)
	repairGroup.POST("/:sessionId/export", handlers.API.HandleExportRepaired)
	repairGroup.GET("/:sessionId/plan.png", handlers.API.HandlePlanDiagram)

	// Solver exchange routes
	solverGroup := e.Group("/api/solver")
	solverGroup.GET("/:sessionId/inputs", handlers.API.HandleSolverInputs)
	solverGroup.POST("/:sessionId/outputs", handlers.API.HandleSolverOutputs)
	solverGroup.GET("/:sessionId/governing", handlers.API.HandleGoverning)
}

// RegisterWebSocketRoutes registers WebSocket routes
func RegisterWebSocketRoutes(e *echo.Echo, handlers *Handlers) {
	e.GET("/api/ws/repair", handlers.WS.HandleWebSocket)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
