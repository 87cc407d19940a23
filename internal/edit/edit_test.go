package edit

import (
	"errors"
	"testing"

	"github.com/Vasu1712/reelcut-backend/internal/models"
	"github.com/Vasu1712/reelcut-backend/internal/timeline"
)

func testBundle(durationMS int64) *models.RecordingBundle {
	return &models.RecordingBundle{
		Video:  models.MediaInfo{Path: "recording/screen.mp4", Width: 1920, Height: 1080, FPS: 60, DurationMS: durationMS},
		Camera: &models.MediaInfo{Path: "recording/camera.mp4", Width: 1280, Height: 720, FPS: 30, DurationMS: durationMS},
	}
}

func newStoreWithProject(t *testing.T, durationMS int64) (*Store, *models.Project) {
	t.Helper()
	store := NewStore()
	p := CreateFromRecording("Test", testBundle(durationMS))
	store.Put(p)
	return store, p
}

func TestCreateFromRecordingDefaults(t *testing.T) {
	p := CreateFromRecording("Demo", testBundle(10000))
	if len(p.Scenes) != 1 {
		t.Fatalf("got %d scenes, want 1", len(p.Scenes))
	}
	sc := p.Scenes[0]
	if len(sc.ScreenSlices) != 1 || len(sc.CameraSlices) != 1 {
		t.Fatalf("tracks not seeded: %d screen, %d camera", len(sc.ScreenSlices), len(sc.CameraSlices))
	}
	if sc.ScreenSlices[0].SourceStartMS != 0 || sc.ScreenSlices[0].SourceEndMS != 10000 {
		t.Errorf("screen slice = [%d, %d), want [0, 10000)", sc.ScreenSlices[0].SourceStartMS, sc.ScreenSlices[0].SourceEndMS)
	}
	if len(sc.Layouts) != 1 || sc.Layouts[0].Type != models.LayoutScreenWithCamera {
		t.Errorf("default layout missing or wrong type: %+v", sc.Layouts)
	}
	if sc.Layouts[0].StartTimeMS != 0 || sc.Layouts[0].EndTimeMS != 10000 {
		t.Errorf("default layout = [%d, %d), want [0, 10000)", sc.Layouts[0].StartTimeMS, sc.Layouts[0].EndTimeMS)
	}
	if err := validateScene(&sc); err != nil {
		t.Errorf("fresh scene fails validation: %v", err)
	}
}

// Splitting then removing the first clip shortens the timeline and remaps
// output zero onto the second clip's source start.
func TestSplitAndRemove(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	sceneID := p.Scenes[0].ID

	next, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return SplitAllTracksAt(sc, 4000)
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	sc := next.Scenes[0]
	if len(sc.ScreenSlices) != 2 || len(sc.CameraSlices) != 2 {
		t.Fatalf("after split: %d screen, %d camera slices", len(sc.ScreenSlices), len(sc.CameraSlices))
	}
	if sc.ScreenSlices[0].SourceEndMS != 4000 || sc.ScreenSlices[1].SourceStartMS != 4000 {
		t.Errorf("screen cut at %d/%d, want 4000", sc.ScreenSlices[0].SourceEndMS, sc.ScreenSlices[1].SourceStartMS)
	}
	oldID := p.Scenes[0].ScreenSlices[0].ID
	for _, s := range sc.ScreenSlices {
		if s.ID == oldID {
			t.Errorf("split reused slice ID %s", oldID)
		}
	}
	if total := timeline.TotalOutputDuration(sc.ScreenSlices); total != 10000 {
		t.Errorf("split changed total output to %d", total)
	}
	// The two sides of the cut land on different slices.
	li, _ := timeline.OutputToSource(sc.ScreenSlices, 3999)
	ri, _ := timeline.OutputToSource(sc.ScreenSlices, 4001)
	if li == ri {
		t.Errorf("both sides of the cut map to slice %d", li)
	}

	next, err = store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return RemoveClip(sc, sc.ScreenSlices[0].ID)
	})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	sc = next.Scenes[0]
	if len(sc.ScreenSlices) != 1 || len(sc.CameraSlices) != 1 {
		t.Fatalf("after remove: %d screen, %d camera slices", len(sc.ScreenSlices), len(sc.CameraSlices))
	}
	if sc.ScreenSlices[0].SourceStartMS != 4000 || sc.ScreenSlices[0].SourceEndMS != 10000 {
		t.Errorf("remaining slice = [%d, %d), want [4000, 10000)", sc.ScreenSlices[0].SourceStartMS, sc.ScreenSlices[0].SourceEndMS)
	}
	if total := timeline.TotalOutputDuration(sc.ScreenSlices); total != 6000 {
		t.Errorf("total after remove = %d, want 6000", total)
	}
	if _, src := timeline.OutputToSource(sc.ScreenSlices, 0); src != 4000 {
		t.Errorf("output 0 maps to source %d, want 4000", src)
	}
	// The layout list shrank with the timeline.
	if end := sc.Layouts[len(sc.Layouts)-1].EndTimeMS; end != 6000 {
		t.Errorf("layouts end at %d, want 6000", end)
	}
}

func TestSplitRefusals(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	sceneID := p.Scenes[0].ID
	tests := []struct {
		name string
		tOut int64
		want error
	}{
		{"too close to start", 50, ErrInvariantViolation},
		{"inside slice floor", 99, ErrInvariantViolation},
		{"near end below floor", 9950, ErrInvariantViolation},
		{"at zero", 0, ErrOutOfRange},
		{"at total", 10000, ErrOutOfRange},
		{"past total", 20000, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
				return SplitAllTracksAt(sc, tt.tOut)
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("split at %d: err = %v, want %v", tt.tOut, err, tt.want)
			}
		})
	}
	// A refused edit leaves the published snapshot untouched.
	if got := store.Get(p.ID); got != p {
		t.Errorf("refused edits replaced the snapshot")
	}
}

func TestSplitBelowFloor(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	sceneID := p.Scenes[0].ID
	_, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return SplitAllTracksAt(sc, 9950)
	})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("split leaving a 50ms slice: err = %v, want invariant violation", err)
	}
}

func TestRemoveLastClipRefused(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	sceneID := p.Scenes[0].ID
	_, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return RemoveClip(sc, sc.ScreenSlices[0].ID)
	})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("removing the only clip: err = %v, want invariant violation", err)
	}
}

// Speeding up a slice halves the timeline and doubles the source step.
func TestUpdateSliceTimeScale(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	sceneID := p.Scenes[0].ID
	scale := 2.0
	next, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return UpdateSlice(sc, models.TrackScreen, sc.ScreenSlices[0].ID, SlicePatch{TimeScale: &scale})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	sc := next.Scenes[0]
	if total := timeline.TotalOutputDuration(sc.ScreenSlices); total != 5000 {
		t.Errorf("total = %d, want 5000", total)
	}
	if _, src := timeline.OutputToSource(sc.ScreenSlices, 2500); src != 5000 {
		t.Errorf("output 2500 maps to source %d, want 5000", src)
	}
	// The camera track is untouched: trims are per-track.
	if sc.CameraSlices[0].TimeScale != 1 {
		t.Errorf("camera time scale changed to %v", sc.CameraSlices[0].TimeScale)
	}
}

func TestUpdateSliceRefusals(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	sceneID := p.Scenes[0].ID
	badStart := int64(-5)
	badScale := -1.0
	shortEnd := int64(50)
	tests := []struct {
		name  string
		patch SlicePatch
		want  error
	}{
		{"negative start", SlicePatch{SourceStartMS: &badStart}, ErrInvariantViolation},
		{"negative scale", SlicePatch{TimeScale: &badScale}, ErrInvariantViolation},
		{"below slice floor", SlicePatch{SourceEndMS: &shortEnd}, ErrInvariantViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
				return UpdateSlice(sc, models.TrackScreen, sc.ScreenSlices[0].ID, tt.patch)
			})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
	_, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return UpdateSlice(sc, models.TrackScreen, "missing", SlicePatch{})
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown slice: err = %v, want not found", err)
	}
}

// Track linking survives any sequence of split and remove operations.
func TestLinkedTracksStayLinked(t *testing.T) {
	store, p := newStoreWithProject(t, 60000)
	sceneID := p.Scenes[0].ID
	splits := []int64{10000, 20000, 30000, 45000}
	for _, at := range splits {
		if _, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
			return SplitAllTracksAt(sc, at)
		}); err != nil {
			t.Fatalf("split at %d: %v", at, err)
		}
	}
	next, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return RemoveClip(sc, sc.CameraSlices[2].ID)
	})
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	sc := next.Scenes[0]
	if len(sc.ScreenSlices) != len(sc.CameraSlices) {
		t.Fatalf("tracks diverged: %d vs %d", len(sc.ScreenSlices), len(sc.CameraSlices))
	}
	screenInfos := timeline.RenderInfos(sc.ScreenSlices)
	cameraInfos := timeline.RenderInfos(sc.CameraSlices)
	for i := range screenInfos {
		if screenInfos[i].OutputDurationMS != cameraInfos[i].OutputDurationMS {
			t.Errorf("clip %d output duration: screen %d, camera %d", i, screenInfos[i].OutputDurationMS, cameraInfos[i].OutputDurationMS)
		}
	}
}

func TestReorder(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	sceneID := p.Scenes[0].ID
	if _, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return SplitAllTracksAt(sc, 4000)
	}); err != nil {
		t.Fatalf("split: %v", err)
	}
	cur := store.Get(p.ID).Scenes[0]
	firstID := cur.ScreenSlices[0].ID
	next, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		if err := Reorder(sc, models.TrackScreen, 0, 1); err != nil {
			return err
		}
		return Reorder(sc, models.TrackCamera, 0, 1)
	})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if got := next.Scenes[0].ScreenSlices[1].ID; got != firstID {
		t.Errorf("slice %s did not move to position 1", firstID)
	}
	_, err = store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return Reorder(sc, models.TrackScreen, 0, 5)
	})
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("reorder past end: err = %v, want out of range", err)
	}
}

func TestLayoutOps(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	sceneID := p.Scenes[0].ID

	next, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return SplitLayoutAt(sc, 4000)
	})
	if err != nil {
		t.Fatalf("split layout: %v", err)
	}
	sc := next.Scenes[0]
	if len(sc.Layouts) != 2 {
		t.Fatalf("after split: %d layouts", len(sc.Layouts))
	}
	if sc.Layouts[0].EndTimeMS != 4000 || sc.Layouts[1].StartTimeMS != 4000 {
		t.Errorf("layout boundary not at 4000: %+v", sc.Layouts)
	}

	screenOnly := models.LayoutScreenOnly
	next, err = store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return UpdateLayout(sc, sc.Layouts[0].ID, LayoutPatch{Type: &screenOnly})
	})
	if err != nil {
		t.Fatalf("update layout: %v", err)
	}
	if next.Scenes[0].Layouts[0].Type != models.LayoutScreenOnly {
		t.Errorf("layout type not updated")
	}

	// Dragging the boundary moves both neighbours.
	newStart := int64(6000)
	next, err = store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return UpdateLayout(sc, sc.Layouts[1].ID, LayoutPatch{StartTimeMS: &newStart})
	})
	if err != nil {
		t.Fatalf("move boundary: %v", err)
	}
	sc = next.Scenes[0]
	if sc.Layouts[0].EndTimeMS != 6000 || sc.Layouts[1].StartTimeMS != 6000 {
		t.Errorf("boundary move left a gap: %+v", sc.Layouts)
	}

	// Shrinking a layout below the floor is refused.
	tiny := int64(9950)
	_, err = store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return UpdateLayout(sc, sc.Layouts[1].ID, LayoutPatch{StartTimeMS: &tiny})
	})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("shrink below floor: err = %v, want invariant violation", err)
	}

	// Removing a layout extends its left neighbour.
	next, err = store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return RemoveLayout(sc, sc.Layouts[1].ID)
	})
	if err != nil {
		t.Fatalf("remove layout: %v", err)
	}
	sc = next.Scenes[0]
	if len(sc.Layouts) != 1 || sc.Layouts[0].StartTimeMS != 0 || sc.Layouts[0].EndTimeMS != 10000 {
		t.Errorf("coverage broken after remove: %+v", sc.Layouts)
	}
	_, err = store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return RemoveLayout(sc, sc.Layouts[0].ID)
	})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("removing the last layout: err = %v, want invariant violation", err)
	}
}

func TestSplitLayoutBelowFloorRefused(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	sceneID := p.Scenes[0].ID
	_, err := store.ApplyToScene(p.ID, sceneID, func(sc *models.Scene) error {
		return SplitLayoutAt(sc, 50)
	})
	if !errors.Is(err, ErrInvariantViolation) {
		t.Errorf("layout split at 50: err = %v, want invariant violation", err)
	}
}

func TestMarkers(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	var markerID string
	next, err := store.Apply(p.ID, func(p *models.Project) error {
		markerID = AddMarker(p, 1234, "intro", "#ff0000")
		return nil
	})
	if err != nil {
		t.Fatalf("add marker: %v", err)
	}
	if len(next.Markers) != 1 || next.Markers[0].Label != "intro" {
		t.Fatalf("marker not stored: %+v", next.Markers)
	}
	next, err = store.Apply(p.ID, func(p *models.Project) error {
		return RemoveMarker(p, markerID)
	})
	if err != nil {
		t.Fatalf("remove marker: %v", err)
	}
	if len(next.Markers) != 0 {
		t.Errorf("marker not removed: %+v", next.Markers)
	}
}

func TestSubscribersSeeOldAndNew(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	var gotOld, gotNew *models.Project
	store.Subscribe(func(old, new *models.Project) {
		gotOld, gotNew = old, new
	})
	next, err := store.ApplyToScene(p.ID, p.Scenes[0].ID, func(sc *models.Scene) error {
		return SplitAllTracksAt(sc, 5000)
	})
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if gotOld != p || gotNew != next {
		t.Errorf("subscriber saw (%p, %p), want (%p, %p)", gotOld, gotNew, p, next)
	}
	// Old snapshot is untouched by the edit.
	if len(p.Scenes[0].ScreenSlices) != 1 {
		t.Errorf("edit mutated the old snapshot")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store, p := newStoreWithProject(t, 10000)
	data, err := store.SnapshotProject(p.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	other := NewStore()
	loaded, err := other.LoadProject(data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != p.ID || len(loaded.Scenes) != 1 {
		t.Errorf("round trip lost data: %+v", loaded)
	}
	if loaded.Scenes[0].ScreenSlices[0].ID != p.Scenes[0].ScreenSlices[0].ID {
		t.Errorf("slice IDs changed across the round trip")
	}
}

func TestLoadProjectRejectsGarbage(t *testing.T) {
	store := NewStore()
	if _, err := store.LoadProject([]byte("not json")); !errors.Is(err, ErrBundleInvalid) {
		t.Errorf("garbage load: err = %v, want invalid bundle", err)
	}
	if _, err := store.LoadProject([]byte("{}")); !errors.Is(err, ErrBundleInvalid) {
		t.Errorf("empty project load: err = %v, want invalid bundle", err)
	}
}
