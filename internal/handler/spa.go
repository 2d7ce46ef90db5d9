package handler

import (
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SPAHandler serves the browser client: files under the static directory
// as-is, and index.html rendered as a template for every other GET so
// client-side routes survive a reload.
type SPAHandler struct {
	staticDir string
	files     http.Handler
	index     *template.Template
	data      SPAData
	logger    *slog.Logger
}

// SPAData is passed to index.html.
type SPAData struct {
	Title     string
	LoginPath string
	RPCPath   string
}

// NewSPAHandler parses {staticDir}/index.html once at startup.
func NewSPAHandler(staticDir string, data SPAData, logger *slog.Logger) (*SPAHandler, error) {
	index, err := template.ParseFiles(filepath.Join(staticDir, "index.html"))
	if err != nil {
		return nil, err
	}
	return &SPAHandler{
		staticDir: staticDir,
		files:     http.FileServer(http.Dir(staticDir)),
		index:     index,
		data:      data,
		logger:    logger,
	}, nil
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)

	if clean != "/" && clean != "/index.html" && h.exists(clean) {
		h.files.ServeHTTP(w, r)
		return
	}

	// a missing asset is a 404, not the app shell
	if path.Ext(clean) != "" && clean != "/index.html" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if err := h.index.Execute(w, h.data); err != nil {
		h.logger.Error("failed to render index", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *SPAHandler) exists(urlPath string) bool {
	info, err := os.Stat(filepath.Join(h.staticDir, filepath.FromSlash(strings.TrimPrefix(urlPath, "/"))))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Warn("stat static file", slog.String("path", urlPath), slog.String("error", err.Error()))
		}
		return false
	}
	return !info.IsDir()
}
