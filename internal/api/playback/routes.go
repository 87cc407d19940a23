package playback

import (
	"log"      // For logging messages
	"net/http" // For HTTP request and response handling

	"github.com/gorilla/mux"
)

// RegisterPlaybackRoutes registers all playback-related HTTP routes with the
// provided router.
func RegisterPlaybackRoutes(r *mux.Router, handler *PlaybackHandler) {
	logged := func(fn http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, req *http.Request) {
			log.Printf("[Playback] %s %s", req.Method, req.URL.Path)
			fn(w, req)
		}
	}

	r.HandleFunc("/api/v1/playback/session", logged(handler.CreateSession)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/playback/close", logged(handler.CloseSession)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/playback/play", logged(handler.Play)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/playback/pause", logged(handler.Pause)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/playback/seek", logged(handler.Seek)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/playback/step", logged(handler.Step)).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/playback/frame", logged(handler.Frame)).Methods(http.MethodGet)

	// WebSocket route for frame streaming.
	r.HandleFunc("/ws/playback", func(w http.ResponseWriter, req *http.Request) {
		log.Printf("[Playback] WebSocket %s", req.URL.String())
		handler.ServeWS(w, req)
	})
}
