package handlers

import (
	"net/http"
	"os"
	"path"
)

// APINotFound answers unmatched /api requests with JSON listing the routes
// that do exist.
func APINotFound(routes []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":           "API endpoint not found",
			"path":            r.URL.Path,
			"method":          r.Method,
			"availableRoutes": routes,
		})
	}
}

// Static serves files from dir without directory listings; directories are
// served only when they hold an index.html.
func Static(dir string) http.Handler {
	return http.FileServer(noListing{http.Dir(dir)})
}

type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if st.IsDir() {
		idx, err := n.fs.Open(path.Join(name, "index.html"))
		if err != nil {
			f.Close()
			return nil, os.ErrNotExist
		}
		idx.Close()
	}
	return f, nil
}
