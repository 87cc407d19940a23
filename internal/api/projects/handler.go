package projects

import (
	"encoding/json" // For encoding and decoding JSON
	"errors"
	"io"
	"log"      // For logging information
	"net/http" // For HTTP request and response handling

	"github.com/Vasu1712/reelcut-backend/internal/edit"
	"github.com/Vasu1712/reelcut-backend/internal/export"
	"github.com/Vasu1712/reelcut-backend/internal/models"
	"github.com/Vasu1712/reelcut-backend/internal/storage/memory"
	"github.com/Vasu1712/reelcut-backend/internal/storage/valkey"
	"github.com/Vasu1712/reelcut-backend/internal/timeline"
	"github.com/Vasu1712/reelcut-backend/internal/ws"
)

// ProjectHandler holds the dependencies for handling project-related HTTP
// requests.
type ProjectHandler struct {
	Store   *edit.Store          // The authoritative project snapshot store
	Bundles *memory.BundleStore  // Loaded recording bundles
	Persist *valkey.ProjectStore // Optional autosave sink; nil disables persistence
	Hub     *ws.Hub              // WebSocket hub for project-changed broadcasts
}

// WireAutosave subscribes the persistence sink and the hub to the edit
// store's change signal. Call once at startup.
func (h *ProjectHandler) WireAutosave() {
	h.Store.Subscribe(func(old, new *models.Project) {
		if h.Hub != nil {
			payload, err := json.Marshal(map[string]interface{}{
				"type":      "projectChanged",
				"projectId": new.ID,
			})
			if err == nil {
				h.Hub.Broadcast <- ws.BroadcastMessage{SessionID: "project:" + new.ID, Data: payload}
			}
		}
		if h.Persist != nil {
			id := new.ID
			h.Persist.ScheduleSave(id, func() ([]byte, error) {
				return h.Store.SnapshotProject(id)
			})
		}
	})
}

// writeError maps the engine's failure kinds to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, edit.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, edit.ErrInvariantViolation):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, edit.ErrOutOfRange):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, edit.ErrBundleInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// OpenBundle handles the HTTP POST request to load a recording bundle into
// memory. It expects a JSON payload with a "path" field and returns the
// bundle handle plus its media metadata.
func (h *ProjectHandler) OpenBundle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
	}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		log.Printf("Error decoding request body for OpenBundle: %v", err)
		return
	}

	if req.Path == "" {
		http.Error(w, "Bundle path cannot be empty", http.StatusBadRequest)
		return
	}

	lb, err := h.Bundles.Open(req.Path)
	if err != nil {
		writeError(w, err)
		log.Printf("Failed to open bundle at %s: %v", req.Path, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"bundleId": lb.ID,
		"video":    lb.Bundle.Video,
		"camera":   lb.Bundle.Camera,
		"moves":    len(lb.Bundle.MouseMoves),
		"clicks":   len(lb.Bundle.MouseClicks),
	})
}

// CreateProject handles the HTTP POST request to seed a project from a
// loaded bundle. It expects "bundleId" and "name" fields.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BundleID string `json:"bundleId"`
		Name     string `json:"name"`
	}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		log.Printf("Error decoding request body for CreateProject: %v", err)
		return
	}

	if req.BundleID == "" || req.Name == "" {
		http.Error(w, "Bundle ID and project name cannot be empty", http.StatusBadRequest)
		return
	}

	lb := h.Bundles.Get(req.BundleID)
	if lb == nil {
		http.Error(w, "Bundle not found", http.StatusNotFound)
		return
	}

	p := edit.CreateFromRecording(req.Name, lb.Bundle)
	h.Store.Put(p)

	respondJSON(w, http.StatusCreated, p)
	log.Printf("[Project] Created project: ID=%s, Name=%s from bundle %s", p.ID, p.Name, req.BundleID)
}

// GetProject returns the current snapshot of a project.
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		http.Error(w, "Project ID is required as a query parameter", http.StatusBadRequest)
		return
	}

	p := h.Store.Get(projectID)
	if p == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

// SnapshotProject returns the opaque serialized snapshot of a project.
func (h *ProjectHandler) SnapshotProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	if projectID == "" {
		http.Error(w, "Project ID is required as a query parameter", http.StatusBadRequest)
		return
	}

	data, err := h.Store.SnapshotProject(projectID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// LoadProject registers a project from bytes produced by SnapshotProject.
func (h *ProjectHandler) LoadProject(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	p, err := h.Store.LoadProject(data)
	if err != nil {
		writeError(w, err)
		log.Printf("Failed to load project: %v", err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"projectId": p.ID})
	log.Printf("[Project] Loaded project: ID=%s, Name=%s", p.ID, p.Name)
}

// editRequest is the envelope shared by all edit endpoints.
type editRequest struct {
	ProjectID string `json:"projectId"`
	SceneID   string `json:"sceneId"`
}

func (h *ProjectHandler) decodeEdit(w http.ResponseWriter, r *http.Request, req interface{}, projectID, sceneID *string) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		log.Printf("Error decoding edit request for %s: %v", r.URL.Path, err)
		return false
	}
	if *projectID == "" || *sceneID == "" {
		http.Error(w, "Project ID and Scene ID cannot be empty", http.StatusBadRequest)
		return false
	}
	return true
}

// SplitClip cuts the clip covering an output time on both tracks.
func (h *ProjectHandler) SplitClip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		editRequest
		TOutMS int64 `json:"tOutMs"`
	}
	if !h.decodeEdit(w, r, &req, &req.ProjectID, &req.SceneID) {
		return
	}

	next, err := h.Store.ApplyToScene(req.ProjectID, req.SceneID, func(sc *models.Scene) error {
		return edit.SplitAllTracksAt(sc, req.TOutMS)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
	log.Printf("[Project] Split clips of scene %s at %dms", req.SceneID, req.TOutMS)
}

// RemoveClip removes a clip from both tracks by the ID of either slice.
func (h *ProjectHandler) RemoveClip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		editRequest
		SliceID string `json:"sliceId"`
	}
	if !h.decodeEdit(w, r, &req, &req.ProjectID, &req.SceneID) {
		return
	}

	next, err := h.Store.ApplyToScene(req.ProjectID, req.SceneID, func(sc *models.Scene) error {
		return edit.RemoveClip(sc, req.SliceID)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
	log.Printf("[Project] Removed clip %s from scene %s", req.SliceID, req.SceneID)
}

// UpdateSlice applies a per-track trim patch to one slice.
func (h *ProjectHandler) UpdateSlice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		editRequest
		Track   models.Track    `json:"track"`
		SliceID string          `json:"sliceId"`
		Patch   edit.SlicePatch `json:"patch"`
	}
	if !h.decodeEdit(w, r, &req, &req.ProjectID, &req.SceneID) {
		return
	}

	next, err := h.Store.ApplyToScene(req.ProjectID, req.SceneID, func(sc *models.Scene) error {
		return edit.UpdateSlice(sc, req.Track, req.SliceID, req.Patch)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
}

// ReorderSlice moves a slice positionally within one track.
func (h *ProjectHandler) ReorderSlice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		editRequest
		Track models.Track `json:"track"`
		From  int          `json:"from"`
		To    int          `json:"to"`
	}
	if !h.decodeEdit(w, r, &req, &req.ProjectID, &req.SceneID) {
		return
	}

	next, err := h.Store.ApplyToScene(req.ProjectID, req.SceneID, func(sc *models.Scene) error {
		return edit.Reorder(sc, req.Track, req.From, req.To)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
}

// SplitLayout cuts the layout covering an output time.
func (h *ProjectHandler) SplitLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		editRequest
		TOutMS int64 `json:"tOutMs"`
	}
	if !h.decodeEdit(w, r, &req, &req.ProjectID, &req.SceneID) {
		return
	}

	next, err := h.Store.ApplyToScene(req.ProjectID, req.SceneID, func(sc *models.Scene) error {
		return edit.SplitLayoutAt(sc, req.TOutMS)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
}

// UpdateLayout patches a layout's type, camera placement or boundaries.
func (h *ProjectHandler) UpdateLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		editRequest
		LayoutID string           `json:"layoutId"`
		Patch    edit.LayoutPatch `json:"patch"`
	}
	if !h.decodeEdit(w, r, &req, &req.ProjectID, &req.SceneID) {
		return
	}

	next, err := h.Store.ApplyToScene(req.ProjectID, req.SceneID, func(sc *models.Scene) error {
		return edit.UpdateLayout(sc, req.LayoutID, req.Patch)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
}

// RemoveLayout deletes a layout, extending a neighbour over the gap.
func (h *ProjectHandler) RemoveLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		editRequest
		LayoutID string `json:"layoutId"`
	}
	if !h.decodeEdit(w, r, &req, &req.ProjectID, &req.SceneID) {
		return
	}

	next, err := h.Store.ApplyToScene(req.ProjectID, req.SceneID, func(sc *models.Scene) error {
		return edit.RemoveLayout(sc, req.LayoutID)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, next)
}

// AddMarker drops a marker on the project timeline.
func (h *ProjectHandler) AddMarker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"projectId"`
		TimeMS    int64  `json:"timeMs"`
		Label     string `json:"label"`
		Color     string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" {
		http.Error(w, "Project ID cannot be empty", http.StatusBadRequest)
		return
	}

	var markerID string
	_, err := h.Store.Apply(req.ProjectID, func(p *models.Project) error {
		markerID = edit.AddMarker(p, req.TimeMS, req.Label, req.Color)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"markerId": markerID})
}

// RemoveMarker deletes a marker.
func (h *ProjectHandler) RemoveMarker(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID string `json:"projectId"`
		MarkerID  string `json:"markerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProjectID == "" || req.MarkerID == "" {
		http.Error(w, "Project ID and Marker ID cannot be empty", http.StatusBadRequest)
		return
	}

	_, err := h.Store.Apply(req.ProjectID, func(p *models.Project) error {
		return edit.RemoveMarker(p, req.MarkerID)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"removed": req.MarkerID})
}

// RenderInfos returns the output placement of every clip of one track, the
// only geometry a timeline UI needs.
func (h *ProjectHandler) RenderInfos(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	sceneID := r.URL.Query().Get("scene_id")
	track := models.Track(r.URL.Query().Get("track"))
	if track == "" {
		track = models.TrackScreen
	}
	if projectID == "" || sceneID == "" {
		http.Error(w, "Project ID and Scene ID are required as query parameters", http.StatusBadRequest)
		return
	}

	p := h.Store.Get(projectID)
	if p == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	for i := range p.Scenes {
		if p.Scenes[i].ID != sceneID {
			continue
		}
		slices := p.Scenes[i].ScreenSlices
		if track == models.TrackCamera {
			slices = p.Scenes[i].CameraSlices
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"infos":         timeline.RenderInfos(slices),
			"totalOutputMs": timeline.TotalOutputDuration(slices),
		})
		return
	}
	http.Error(w, "Scene not found", http.StatusNotFound)
}

// ExportPlan enumerates the edit decision lists the exporter consumes. The
// plan is computed against the snapshot current at request time.
func (h *ProjectHandler) ExportPlan(w http.ResponseWriter, r *http.Request) {
	projectID := r.URL.Query().Get("project_id")
	bundleID := r.URL.Query().Get("bundle_id")
	if projectID == "" || bundleID == "" {
		http.Error(w, "Project ID and Bundle ID are required as query parameters", http.StatusBadRequest)
		return
	}

	p := h.Store.Get(projectID)
	if p == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	lb := h.Bundles.Get(bundleID)
	if lb == nil {
		http.Error(w, "Bundle not found", http.StatusNotFound)
		return
	}

	plan, err := export.BuildPlan(r.Context(), p, lb.Bundle)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
	log.Printf("[Project] Enumerated export plan for project %s (%d screen segments)", projectID, len(plan.Screen.Segments))
}
