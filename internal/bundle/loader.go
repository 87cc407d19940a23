// Package bundle reads a recording bundle directory into memory. A bundle
// is produced by the capture subsystem and is read-only here:
//
//	<bundle>/recording/recording.json    media metadata
//	<bundle>/recording/mouse_moves.json  sorted cursor samples
//	<bundle>/recording/mouse_clicks.json sorted button events
//	<bundle>/recording/cursors.json      cursor images and hotspots
package bundle

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Vasu1712/reelcut-backend/internal/edit"
	"github.com/Vasu1712/reelcut-backend/internal/events"
	"github.com/Vasu1712/reelcut-backend/internal/models"
)

// recordingMeta mirrors recording.json.
type recordingMeta struct {
	Video       *models.MediaInfo `json:"video"`
	Camera      *models.MediaInfo `json:"camera,omitempty"`
	MicAudio    *models.MediaInfo `json:"micAudio,omitempty"`
	SystemAudio *models.MediaInfo `json:"systemAudio,omitempty"`
}

// Load reads and validates a bundle directory, returning the bundle and the
// event index built from its input streams. Any validation failure leaves
// nothing loaded.
func Load(path string) (*models.RecordingBundle, *events.Index, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s is not a bundle directory", edit.ErrBundleInvalid, path)
	}
	rec := filepath.Join(path, "recording")

	var meta recordingMeta
	if err := readJSON(filepath.Join(rec, "recording.json"), &meta); err != nil {
		return nil, nil, err
	}
	if meta.Video == nil || meta.Video.DurationMS <= 0 {
		return nil, nil, fmt.Errorf("%w: recording has no video track", edit.ErrBundleInvalid)
	}

	b := &models.RecordingBundle{
		Path:        path,
		Video:       *meta.Video,
		Camera:      meta.Camera,
		MicAudio:    meta.MicAudio,
		SystemAudio: meta.SystemAudio,
	}

	// Event streams are optional files but mandatory fields: a bundle with
	// no mouse data still plays, it just renders no cursor.
	if err := readJSONOptional(filepath.Join(rec, "mouse_moves.json"), &b.MouseMoves); err != nil {
		return nil, nil, err
	}
	if err := readJSONOptional(filepath.Join(rec, "mouse_clicks.json"), &b.MouseClicks); err != nil {
		return nil, nil, err
	}
	if err := readJSONOptional(filepath.Join(rec, "cursors.json"), &b.Cursors); err != nil {
		return nil, nil, err
	}

	ix, err := events.Build(b.MouseMoves, b.MouseClicks)
	if err != nil {
		return nil, nil, err
	}

	log.Printf("[Bundle] Loaded %s: video %dms, %d moves, %d clicks, %d cursors",
		path, b.Video.DurationMS, len(b.MouseMoves), len(b.MouseClicks), len(b.Cursors))
	return b, ix, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: missing %s", edit.ErrBundleInvalid, filepath.Base(path))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", edit.ErrBundleInvalid, filepath.Base(path), err)
	}
	return nil
}

func readJSONOptional(path string, v interface{}) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return readJSON(path, v)
}
