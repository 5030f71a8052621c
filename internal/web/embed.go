// Package web serves the embedded frontend build for single-binary deployment.
package web

import (
	"embed"
	"io"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed dist
var staticFiles embed.FS

// FileSystem returns the embedded filesystem rooted at the frontend build.
func FileSystem() (fs.FS, error) {
	return fs.Sub(staticFiles, "dist")
}

// HasFrontendBuild reports whether a real frontend build is embedded. The
// placeholder page that ships with the repository does not count.
func HasFrontendBuild() bool {
	entries, err := staticFiles.ReadDir("dist")
	if err != nil {
		return false
	}
	// A real build carries hashed asset files next to index.html
	return len(entries) > 1
}

// RegisterStaticRoutes serves the embedded frontend for all non-API paths.
// Unknown paths fall back to index.html so client-side routing works.
// Register the API routes before calling this.
func RegisterStaticRoutes(e *echo.Echo) error {
	staticFS, err := FileSystem()
	if err != nil {
		return err
	}

	fileServer := http.FileServer(http.FS(staticFS))

	e.GET("/*", func(c echo.Context) error {
		name := strings.TrimPrefix(c.Request().URL.Path, "/")
		if name == "" {
			name = "index.html"
		}

		file, err := staticFS.Open(name)
		if err != nil {
			return serveIndex(c, staticFS)
		}
		stat, statErr := file.Stat()
		file.Close()
		if statErr != nil || stat.IsDir() {
			return serveIndex(c, staticFS)
		}

		fileServer.ServeHTTP(c.Response(), c.Request())
		return nil
	})

	return nil
}

func serveIndex(c echo.Context, staticFS fs.FS) error {
	file, err := staticFS.Open("index.html")
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "index.html not found")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read index.html")
	}
	return c.HTMLBlob(http.StatusOK, content)
}
