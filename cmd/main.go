package main

import (
	"log"
	"net/http"

	playbackapi "github.com/Vasu1712/reelcut-backend/internal/api/playback"
	"github.com/Vasu1712/reelcut-backend/internal/api/projects"
	"github.com/Vasu1712/reelcut-backend/internal/config"
	"github.com/Vasu1712/reelcut-backend/internal/edit"
	"github.com/Vasu1712/reelcut-backend/internal/middleware"
	"github.com/Vasu1712/reelcut-backend/internal/storage/memory"
	"github.com/Vasu1712/reelcut-backend/internal/storage/valkey"
	"github.com/Vasu1712/reelcut-backend/internal/ws"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	store := edit.NewStore()
	bundles := memory.NewBundleStore()
	hub := ws.NewHub()
	go hub.Run()

	var persist *valkey.ProjectStore
	if cfg.ValkeyAddr != "" {
		var err error
		persist, err = valkey.NewProjectStore(cfg.ValkeyAddr, cfg.AutosaveDebounce)
		if err != nil {
			log.Fatalf("Failed to connect to Valkey at %s: %v", cfg.ValkeyAddr, err)
		}
		defer persist.Close()
	} else {
		log.Println("VALKEY_ADDR not set, project autosave disabled")
	}

	projectHandler := &projects.ProjectHandler{Store: store, Bundles: bundles, Persist: persist, Hub: hub}
	projectHandler.WireAutosave()
	playbackHandler := playbackapi.NewPlaybackHandler(store, bundles, hub)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/auth/token", middleware.TokenHandler(cfg.AccessKeyHash, cfg.JWTSecret)).Methods(http.MethodPost)
	projects.RegisterProjectRoutes(router, projectHandler, middleware.RequireAuth(cfg.JWTSecret))
	playbackapi.RegisterPlaybackRoutes(router, playbackHandler)

	handler := middleware.CORS(cfg.AllowedOrigin)(router)

	log.Printf("Server started at :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handler))
}
