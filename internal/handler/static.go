package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SPAHandler serves a single-page app: real files as-is, everything else
// falls back to index.html so client-side routing works on reload.
type SPAHandler struct {
	staticDir  string
	pathPrefix string
	indexFile  string
}

func NewSPAHandler(staticDir, pathPrefix string) *SPAHandler {
	return &SPAHandler{
		staticDir:  staticDir,
		pathPrefix: pathPrefix,
		indexFile:  "index.html",
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, h.pathPrefix)
	if path == "" {
		path = "/"
	}

	// API routes never fall through to the SPA
	if strings.HasPrefix(path, "/api/") || path == "/api" || strings.HasPrefix(path, "api/") {
		http.NotFound(w, r)
		return
	}

	filePath := filepath.Join(h.staticDir, filepath.Clean("/"+path))

	info, err := os.Stat(filePath)
	if err == nil && !info.IsDir() {
		http.ServeFile(w, r, filePath)
		return
	}

	indexPath := filepath.Join(h.staticDir, h.indexFile)
	if _, err := os.Stat(indexPath); err != nil {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, indexPath)
}

func StaticFileServer(staticDir, pathPrefix string) http.Handler {
	return NewSPAHandler(staticDir, pathPrefix)
}
