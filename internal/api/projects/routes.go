package projects

import (
	"log"      // For logging messages
	"net/http" // For HTTP request and response handling

	"github.com/gorilla/mux"
)

// RegisterProjectRoutes registers all project-related HTTP routes with the
// provided router. The edit routes go through the given auth middleware;
// the bundle/project lifecycle routes and the read routes stay open.
func RegisterProjectRoutes(r *mux.Router, handler *ProjectHandler, auth func(http.Handler) http.Handler) {
	logged := func(fn http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			log.Printf("[Project] %s %s", req.Method, req.URL.Path)
			fn(w, req)
		}
	}
	edit := func(fn http.HandlerFunc) http.Handler {
		return auth(logged(fn))
	}

	// Bundle and project lifecycle.
	r.HandleFunc("/api/v1/projects/open-bundle", logged(handler.OpenBundle)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/projects/create", logged(handler.CreateProject)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/projects/get", logged(handler.GetProject)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/projects/snapshot", logged(handler.SnapshotProject)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/projects/load", logged(handler.LoadProject)).Methods(http.MethodPost)

	// Timeline geometry and export decisions.
	r.HandleFunc("/api/v1/projects/render-infos", logged(handler.RenderInfos)).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/projects/export-plan", logged(handler.ExportPlan)).Methods(http.MethodGet)

	// Edit operations. Every route maps onto one edit-model operation and
	// refuses atomically on invariant violations.
	r.Handle("/api/v1/projects/edit/split", edit(handler.SplitClip)).Methods(http.MethodPost)
	r.Handle("/api/v1/projects/edit/remove-clip", edit(handler.RemoveClip)).Methods(http.MethodPost)
	r.Handle("/api/v1/projects/edit/update-slice", edit(handler.UpdateSlice)).Methods(http.MethodPost)
	r.Handle("/api/v1/projects/edit/reorder", edit(handler.ReorderSlice)).Methods(http.MethodPost)
	r.Handle("/api/v1/projects/edit/split-layout", edit(handler.SplitLayout)).Methods(http.MethodPost)
	r.Handle("/api/v1/projects/edit/update-layout", edit(handler.UpdateLayout)).Methods(http.MethodPost)
	r.Handle("/api/v1/projects/edit/remove-layout", edit(handler.RemoveLayout)).Methods(http.MethodPost)
	r.Handle("/api/v1/projects/edit/add-marker", edit(handler.AddMarker)).Methods(http.MethodPost)
	r.Handle("/api/v1/projects/edit/remove-marker", edit(handler.RemoveMarker)).Methods(http.MethodPost)
}
