package web

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"

	appLog "tripboard/internal/log"
)

const indexFile = "index.html"

// staticHandler serves the client bundle from staticDir. Paths that name an
// existing file are served directly; everything else gets index.html so the
// client router can resolve it. /api paths never fall back.
func (s *Server) staticHandler() http.Handler {
	files := http.FileServer(http.Dir(s.staticDir))
	index := filepath.Join(s.staticDir, indexFile)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isAPIPath(r.URL.Path) {
			writeError(w, http.StatusNotFound, "unknown endpoint "+r.URL.Path)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		clean := path.Clean("/" + r.URL.Path)
		if clean != "/" && clean != "/"+indexFile {
			fi, err := os.Stat(filepath.Join(s.staticDir, filepath.FromSlash(clean)))
			if err == nil && !fi.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}

		s.serveIndex(w, r, index)
	})
}

// serveIndex writes the bundle entry file. A missing build is reported as 500
// with the path that was expected.
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request, index string) {
	f, err := os.Open(index)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			appLog.Error("client bundle not found", err, "static_dir", s.staticDir)
			http.Error(w, fmt.Sprintf(
				"client bundle not found: %s is missing (build the client or set TRIPBOARD_STATIC_DIR)", index,
			), http.StatusInternalServerError)
			return
		}
		appLog.Error("failed to open index", err, "path", index)
		http.Error(w, "failed to open index", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		http.Error(w, "invalid index file: "+index, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, indexFile, fi.ModTime(), f)
}
