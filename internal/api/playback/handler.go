package playback

import (
	"encoding/json" // For encoding and decoding JSON
	"log"           // For logging information
	"net/http"      // For HTTP request and response handling
	"sync"

	"github.com/Vasu1712/reelcut-backend/internal/edit"
	"github.com/Vasu1712/reelcut-backend/internal/models"
	"github.com/Vasu1712/reelcut-backend/internal/playback"
	"github.com/Vasu1712/reelcut-backend/internal/storage/memory"
	"github.com/Vasu1712/reelcut-backend/internal/ws"
	"github.com/gorilla/websocket" // WebSocket library
)

// PlaybackHandler holds the dependencies for handling playback-related HTTP
// requests and the per-session resolvers.
type PlaybackHandler struct {
	Store   *edit.Store         // Project snapshots the resolvers read
	Bundles *memory.BundleStore // Loaded recording bundles
	Hub     *ws.Hub             // WebSocket hub frames are broadcast through

	mu       sync.RWMutex        // Guards the sessions map
	sessions map[string]*Session // sessionID -> running session
}

// NewPlaybackHandler creates and returns a new instance of PlaybackHandler.
func NewPlaybackHandler(store *edit.Store, bundles *memory.BundleStore, hub *ws.Hub) *PlaybackHandler {
	return &PlaybackHandler{
		Store:    store,
		Bundles:  bundles,
		Hub:      hub,
		sessions: make(map[string]*Session),
	}
}

func (h *PlaybackHandler) session(id string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.sessions[id]
}

// CreateSession handles the HTTP POST request to start a playback session
// over a project and a loaded bundle. It expects "projectId", "bundleId" and
// an optional viewport size.
func (h *PlaybackHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProjectID      string  `json:"projectId"`
		BundleID       string  `json:"bundleId"`
		ViewportWidth  float64 `json:"viewportWidth"`
		ViewportHeight float64 `json:"viewportHeight"`
	}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		log.Printf("Error decoding request body for CreateSession: %v", err)
		return
	}

	if req.ProjectID == "" || req.BundleID == "" {
		http.Error(w, "Project ID and Bundle ID cannot be empty", http.StatusBadRequest)
		return
	}

	p := h.Store.Get(req.ProjectID)
	if p == nil {
		http.Error(w, "Project not found", http.StatusNotFound)
		return
	}
	lb := h.Bundles.Get(req.BundleID)
	if lb == nil {
		http.Error(w, "Bundle not found", http.StatusNotFound)
		return
	}

	vp := playback.Viewport{Width: req.ViewportWidth, Height: req.ViewportHeight}
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = playback.Viewport{Width: 1600, Height: 900}
	}

	// The resolver re-reads the published snapshot every tick, so edits
	// made while the session runs take effect immediately.
	projectID := req.ProjectID
	store := h.Store
	sceneSource := func() *models.Scene {
		cur := store.Get(projectID)
		if cur == nil || cur.ActiveScene < 0 || cur.ActiveScene >= len(cur.Scenes) {
			return nil
		}
		return &cur.Scenes[cur.ActiveScene]
	}

	s := newSession(req.ProjectID, lb, sceneSource, p.Config.Cursor.Smoothing.Spring, vp, h.Hub)
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"sessionId": s.ID})
	log.Printf("[Playback] Created session %s for project %s", s.ID, req.ProjectID)
}

// CloseSession stops a playback session.
func (h *PlaybackHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		http.Error(w, "Session ID cannot be empty", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	s := h.sessions[req.SessionID]
	delete(h.sessions, req.SessionID)
	h.mu.Unlock()

	if s == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	s.Close()
	w.WriteHeader(http.StatusOK)
}

// control decodes the shared command envelope and looks up the session.
func (h *PlaybackHandler) control(w http.ResponseWriter, r *http.Request, req interface{}, sessionID *string) *Session {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return nil
	}
	if *sessionID == "" {
		http.Error(w, "Session ID cannot be empty", http.StatusBadRequest)
		return nil
	}
	s := h.session(*sessionID)
	if s == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return nil
	}
	return s
}

func respondFrame(w http.ResponseWriter, fs playback.FrameState) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(fs)
}

// Play starts playback on a session.
func (h *PlaybackHandler) Play(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	s := h.control(w, r, &req, &req.SessionID)
	if s == nil {
		return
	}
	var fs playback.FrameState
	s.do(func(res *playback.Resolver) {
		res.Play()
		fs = res.Frame()
	})
	respondFrame(w, fs)
}

// Pause pauses playback on a session.
func (h *PlaybackHandler) Pause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	s := h.control(w, r, &req, &req.SessionID)
	if s == nil {
		return
	}
	var fs playback.FrameState
	s.do(func(res *playback.Resolver) {
		res.Pause()
		fs = res.Frame()
	})
	respondFrame(w, fs)
}

// Seek jumps a session to an output time and returns the resolved frame.
func (h *PlaybackHandler) Seek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		TOutMS    int64  `json:"tOutMs"`
	}
	s := h.control(w, r, &req, &req.SessionID)
	if s == nil {
		return
	}
	var fs playback.FrameState
	s.do(func(res *playback.Resolver) {
		res.Seek(req.TOutMS)
		fs = res.Frame()
	})
	respondFrame(w, fs)
}

// Step moves a session one output frame forward or backward.
func (h *PlaybackHandler) Step(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Direction int    `json:"direction"`
	}
	s := h.control(w, r, &req, &req.SessionID)
	if s == nil {
		return
	}
	if req.Direction >= 0 {
		req.Direction = 1
	} else {
		req.Direction = -1
	}
	var fs playback.FrameState
	s.do(func(res *playback.Resolver) {
		res.StepFrame(req.Direction)
		fs = res.Frame()
	})
	respondFrame(w, fs)
}

// Frame returns the last resolved frame of a session without advancing it.
func (h *PlaybackHandler) Frame(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "Session ID is required as a query parameter", http.StatusBadRequest)
		return
	}
	s := h.session(sessionID)
	if s == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	var fs playback.FrameState
	s.do(func(res *playback.Resolver) {
		fs = res.Frame()
	})
	respondFrame(w, fs)
}

// WebSocket handler for playback frame streaming.
var frameUpgrader = websocket.Upgrader{}

// ServeWS subscribes a client to a session's frame broadcast.
func (h *PlaybackHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	userID := r.URL.Query().Get("user_id")

	if sessionID == "" || userID == "" {
		http.Error(w, "Session ID and User ID are required for WebSocket connection", http.StatusBadRequest)
		return
	}
	if h.session(sessionID) == nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	conn, err := frameUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade WebSocket for session %s: %v", sessionID, err)
		return
	}
	log.Printf("WebSocket connection upgraded for SessionID: %s, UserID: %s", sessionID, userID)

	client := &ws.Client{
		UserID:    userID,
		SessionID: sessionID,
		Send:      make(chan []byte, 256),
		Conn:      conn,
	}
	h.Hub.Register <- client

	// Read pump: reads messages from the WebSocket connection to keep it
	// alive and detect disconnections.
	go func() {
		defer func() {
			h.Hub.Unregister <- client
			conn.Close()
			log.Printf("Read pump closed for client %s in session %s", userID, sessionID)
		}()
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket read error for client %s in session %s: %v", userID, sessionID, err)
				}
				break
			}
		}
	}()

	// Write pump: writes frames from the hub to the WebSocket connection.
	go func() {
		defer func() {
			conn.Close()
			log.Printf("Write pump closed for client %s in session %s", userID, sessionID)
		}()
		for message := range client.Send {
			err := conn.WriteMessage(websocket.TextMessage, message)
			if err != nil {
				log.Printf("WebSocket write error for client %s in session %s: %v", userID, sessionID, err)
				return // Break from loop if write fails
			}
		}
	}()
}
