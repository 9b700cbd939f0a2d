// Package web serves the static directory, the published photo and the
// embedded companion page.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/photo-cycler/backend/internal/storage"
)

// StaticPrefix is the URL prefix of the static directory.
const StaticPrefix = "/static"

//go:embed ui/*
var uiFiles embed.FS

// GetFileSystem returns the embedded companion page with the ui folder as root.
func GetFileSystem() (fs.FS, error) {
	return fs.Sub(uiFiles, "ui")
}

// RegisterStaticRoutes registers the static routes with Echo. The published
// photo is served from the publisher's record at StaticPrefix/currentName;
// other paths come from staticDir, falling back to the embedded page.
func RegisterStaticRoutes(e *echo.Echo, staticDir, currentName string, publisher storage.Publisher) error {
	uiFS, err := GetFileSystem()
	if err != nil {
		return err
	}

	e.GET(StaticPrefix+"/"+currentName, currentPhotoHandler(publisher))
	e.GET(StaticPrefix, func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, StaticPrefix+"/index.html")
	})
	e.GET(StaticPrefix+"/*", staticFileHandler(staticDir, uiFS))

	return nil
}

func currentPhotoHandler(publisher storage.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		pub, ok := publisher.Current()
		if !ok {
			return echo.NewHTTPError(http.StatusNotFound, "no photo published yet")
		}

		header := c.Response().Header()
		header.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		header.Set("Pragma", "no-cache")
		header.Set("Expires", "0")

		return c.File(pub.Source)
	}
}

func staticFileHandler(staticDir string, uiFS fs.FS) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Clean the path
		name := strings.TrimPrefix(path.Clean("/"+c.Param("*")), "/")
		if name == "" {
			name = "index.html"
		}

		// Files on disk win over the embedded page
		onDisk := filepath.Join(staticDir, filepath.FromSlash(name))
		if info, err := os.Stat(onDisk); err == nil && !info.IsDir() {
			return c.File(onDisk)
		}

		if info, err := fs.Stat(uiFS, name); err == nil && !info.IsDir() {
			return c.FileFS(name, uiFS)
		}

		return echo.ErrNotFound
	}
}
