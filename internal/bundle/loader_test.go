package bundle

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Vasu1712/reelcut-backend/internal/edit"
	"github.com/Vasu1712/reelcut-backend/internal/models"
)

func writeBundle(t *testing.T, meta map[string]interface{}, moves []models.MouseMove, clicks []models.MouseClick) string {
	t.Helper()
	dir := t.TempDir()
	rec := filepath.Join(dir, "recording")
	if err := os.MkdirAll(rec, 0o755); err != nil {
		t.Fatal(err)
	}
	writeJSON(t, filepath.Join(rec, "recording.json"), meta)
	if moves != nil {
		writeJSON(t, filepath.Join(rec, "mouse_moves.json"), moves)
	}
	if clicks != nil {
		writeJSON(t, filepath.Join(rec, "mouse_clicks.json"), clicks)
	}
	return dir
}

func writeJSON(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func validMeta() map[string]interface{} {
	return map[string]interface{}{
		"video": map[string]interface{}{
			"path": "recording/screen.mp4", "width": 1920, "height": 1080, "fps": 60, "durationMs": 30000,
		},
		"micAudio": map[string]interface{}{"path": "recording/mic.ogg", "durationMs": 29700},
	}
}

func TestLoadValidBundle(t *testing.T) {
	moves := []models.MouseMove{
		{ProcessTimeMS: 0, X: 1, Y: 2, CursorID: "arrow"},
		{ProcessTimeMS: 50, X: 3, Y: 4, CursorID: "arrow"},
	}
	clicks := []models.MouseClick{{ProcessTimeMS: 25, X: 1, Y: 2, Button: "left", Down: true}}
	dir := writeBundle(t, validMeta(), moves, clicks)

	b, ix, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if b.Video.DurationMS != 30000 || b.Video.FPS != 60 {
		t.Errorf("video metadata = %+v", b.Video)
	}
	if b.MicAudio == nil || b.AudioOffsetMS(b.MicAudio) != 300 {
		t.Errorf("mic offset = %d, want 300", b.AudioOffsetMS(b.MicAudio))
	}
	if len(b.MouseMoves) != 2 || len(b.MouseClicks) != 1 {
		t.Errorf("events not loaded: %d moves, %d clicks", len(b.MouseMoves), len(b.MouseClicks))
	}
	if got := ix.SampleAt(10); got == nil || got.X != 1 {
		t.Errorf("index not built over the streams: %+v", got)
	}
}

func TestLoadMissingEventsStillPlays(t *testing.T) {
	dir := writeBundle(t, validMeta(), nil, nil)
	b, ix, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.MouseMoves) != 0 {
		t.Errorf("unexpected moves: %d", len(b.MouseMoves))
	}
	if got := ix.SampleAt(100); got != nil {
		t.Errorf("empty index returned a sample: %+v", got)
	}
}

func TestLoadFailures(t *testing.T) {
	t.Run("not a directory", func(t *testing.T) {
		if _, _, err := Load(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, edit.ErrBundleInvalid) {
			t.Errorf("err = %v, want invalid bundle", err)
		}
	})
	t.Run("missing recording.json", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "recording"), 0o755); err != nil {
			t.Fatal(err)
		}
		if _, _, err := Load(dir); !errors.Is(err, edit.ErrBundleInvalid) {
			t.Errorf("err = %v, want invalid bundle", err)
		}
	})
	t.Run("no video track", func(t *testing.T) {
		dir := writeBundle(t, map[string]interface{}{"micAudio": map[string]interface{}{"durationMs": 100}}, nil, nil)
		if _, _, err := Load(dir); !errors.Is(err, edit.ErrBundleInvalid) {
			t.Errorf("err = %v, want invalid bundle", err)
		}
	})
	t.Run("unsorted moves", func(t *testing.T) {
		moves := []models.MouseMove{
			{ProcessTimeMS: 100, X: 1, Y: 1},
			{ProcessTimeMS: 50, X: 2, Y: 2},
		}
		dir := writeBundle(t, validMeta(), moves, nil)
		if _, _, err := Load(dir); !errors.Is(err, edit.ErrBundleInvalid) {
			t.Errorf("err = %v, want invalid bundle", err)
		}
	})
	t.Run("corrupt json", func(t *testing.T) {
		dir := writeBundle(t, validMeta(), nil, nil)
		if err := os.WriteFile(filepath.Join(dir, "recording", "mouse_moves.json"), []byte("{"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, _, err := Load(dir); !errors.Is(err, edit.ErrBundleInvalid) {
			t.Errorf("err = %v, want invalid bundle", err)
		}
	})
}
