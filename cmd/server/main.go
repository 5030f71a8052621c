package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/framemend/backend/internal/api"
	"github.com/framemend/backend/internal/config"
	"github.com/framemend/backend/internal/parser"
	"github.com/framemend/backend/internal/repair"
	"github.com/framemend/backend/internal/session"
	"github.com/framemend/backend/internal/storage"
	"github.com/framemend/backend/internal/web"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "FrameMendServer.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Material rules for the CAD export parser
	if cfg.Repair.MaterialRulesFile != "" {
		rules, err := parser.ParseMaterialRules(cfg.Repair.MaterialRulesFile)
		if err != nil {
			fmt.Printf("Warning: failed to load material rules: %v\n", err)
		} else {
			parser.GetGlobalRegistry().ApplyMaterialRules(rules)
			fmt.Printf("Material rules loaded from %s\n", cfg.Repair.MaterialRulesFile)
		}
	}

	// Check if running in embedded mode (frontend built into binary)
	embeddedMode := web.HasFrontendBuild()

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Repaired export cache
	repairedStore := session.NewPersistentRepairedStoreWithDir(cfg.Storage.RepairedDirectory)

	// Initialize repair session manager
	tol, elevTol := cfg.RepairOptions()
	sessionMgr := session.NewManagerWithTempDir(cfg.Storage.TempDirectory, repair.Options{
		Tol:          tol,
		ElevationTol: elevTol,
	})

	// Background cleanup: expired sessions and orphaned repaired exports
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Repair.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Repair.SessionTimeoutMinutes) * time.Minute)

			files, err := fileStore.List(1 << 30)
			if err != nil {
				continue
			}
			ids := make([]string, 0, len(files))
			for _, f := range files {
				ids = append(ids, f.ID)
			}
			repairedStore.CleanupOrphaned(ids)
		}
	}()

	// Initialize handlers
	handlers := api.NewHandlers(&api.Dependencies{
		Store:       fileStore,
		SessionMgr:  sessionMgr,
		Repaired:    repairedStore,
		SectionName: cfg.Solver.DefaultSectionName,
		LoadCase:    cfg.Solver.DefaultLoadCase,
		Version:     Version,
	})

	e := echo.New()
	e.HideBanner = true
	api.SetupMiddleware(e)

	// Request logging
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/status") ||
				strings.HasSuffix(path, "/progress") ||
				path == "/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.Contains(path, "/progress") ||
				strings.Contains(path, "/upload") ||
				strings.Contains(path, "/ws/") ||
				c.Request().Header.Get("Accept") == "text/event-stream"
		},
		ErrorMessage: "Request timeout",
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		if embeddedMode {
			origins := strings.Split(cfg.Server.AllowOrigins, ",")
			for i := range origins {
				origins[i] = strings.TrimSpace(origins[i])
			}
			if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
				origins = []string{"*"}
			}
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: origins,
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			}))
		} else {
			// Development mode - only allow localhost
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: []string{
					"http://localhost:5173", "http://127.0.0.1:5173",
					"http://localhost:3000", "http://127.0.0.1:3000",
				},
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			}))
		}
	}

	api.RegisterRoutes(e, handlers)
	api.RegisterWebSocketRoutes(e, handlers)

	// Register embedded frontend if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded frontend from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	mode := "Development"
	if embeddedMode {
		mode = "Embedded Frontend"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           FrameMend Repair Server                         ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("║  Tolerance: %-46g║\n", tol)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	e.Logger.Fatal(e.StartServer(s))
}
