package edit

import (
	"fmt"
	"math"

	"github.com/Vasu1712/reelcut-backend/internal/models"
	"github.com/Vasu1712/reelcut-backend/internal/timeline"
	"github.com/google/uuid"
)

// SlicePatch is a partial update for a single slice. Nil fields are left
// untouched. Trims are per-track: applying a patch never re-links the two
// tracks.
type SlicePatch struct {
	SourceStartMS          *int64   `json:"sourceStartMs,omitempty"`
	SourceEndMS            *int64   `json:"sourceEndMs,omitempty"`
	TimeScale              *float64 `json:"timeScale,omitempty"`
	Volume                 *float64 `json:"volume,omitempty"`
	HideCursor             *bool    `json:"hideCursor,omitempty"`
	DisableCursorSmoothing *bool    `json:"disableCursorSmoothing,omitempty"`
}

// LayoutPatch is a partial update for a single layout. Moving a boundary
// drags the adjacent layout's edge with it so coverage stays contiguous.
type LayoutPatch struct {
	StartTimeMS    *int64             `json:"startTimeMs,omitempty"`
	EndTimeMS      *int64             `json:"endTimeMs,omitempty"`
	Type           *models.LayoutType `json:"type,omitempty"`
	CameraSize     *float64           `json:"cameraSize,omitempty"`
	CameraPosition *models.Point      `json:"cameraPosition,omitempty"`
}

// CreateEmptyProject initialises a project with default configuration and no
// scenes.
func CreateEmptyProject(name string) *models.Project {
	return models.NewProject(name)
}

// CreateFromRecording seeds a project from a loaded bundle: one recording
// scene with a single full-duration slice on each track and one
// screen-with-camera layout covering the whole output.
func CreateFromRecording(name string, bundle *models.RecordingBundle) *models.Project {
	p := models.NewProject(name)
	dur := bundle.Video.DurationMS
	p.Config.RecordingRange = models.RecordingRange{StartMS: 0, EndMS: dur}
	full := func() models.Slice {
		return models.Slice{
			ID:            uuid.NewString(),
			SourceStartMS: 0,
			SourceEndMS:   dur,
			TimeScale:     1,
			Volume:        1,
		}
	}
	p.Scenes = []models.Scene{{
		ID:           uuid.NewString(),
		Name:         "Recording",
		Type:         models.SceneRecording,
		ScreenSlices: []models.Slice{full()},
		CameraSlices: []models.Slice{full()},
		Layouts: []models.Layout{{
			ID:             uuid.NewString(),
			StartTimeMS:    0,
			EndTimeMS:      dur,
			Type:           models.LayoutScreenWithCamera,
			CameraSize:     p.Config.Camera.Size,
			CameraPosition: models.Point{X: 0.85, Y: 0.85},
		}},
	}}
	return p
}

// trackSlices returns the addressed track of a scene, or nil for an unknown
// track name.
func trackSlices(sc *models.Scene, track models.Track) *[]models.Slice {
	switch track {
	case models.TrackScreen:
		return &sc.ScreenSlices
	case models.TrackCamera:
		return &sc.CameraSlices
	}
	return nil
}

func findSlice(slices []models.Slice, id string) int {
	for i, s := range slices {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func findLayout(layouts []models.Layout, id string) int {
	for i, l := range layouts {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// splitSourceAt computes the source time at which slice i of the given track
// must be cut for an output-time split at tOut, and refuses when either half
// would fall below the slice floor.
func splitSourceAt(slices []models.Slice, i int, tOut int64) (int64, error) {
	infos := timeline.RenderInfos(slices)
	s := slices[i]
	src := int64(math.RoundToEven(float64(s.SourceStartMS) + float64(tOut-infos[i].OutputStartMS)*s.TimeScale))
	if src < s.SourceStartMS+models.MinSliceMS || src > s.SourceEndMS-models.MinSliceMS {
		return 0, fmt.Errorf("%w: split at %dms leaves a slice below %dms", ErrInvariantViolation, tOut, models.MinSliceMS)
	}
	return src, nil
}

// SplitAllTracksAt cuts the clip covering output time tOut on both tracks.
// The clip index is located on the screen track; each track is cut at its
// own source time for that index. Both resulting slices get fresh IDs.
// Applied to both tracks or to neither.
func SplitAllTracksAt(sc *models.Scene, tOut int64) error {
	total := timeline.TotalOutputDuration(sc.ScreenSlices)
	if tOut <= 0 || tOut >= total {
		return fmt.Errorf("%w: split time %dms outside (0, %dms)", ErrOutOfRange, tOut, total)
	}
	i, _ := timeline.OutputToSource(sc.ScreenSlices, tOut)
	if i < 0 || i >= len(sc.CameraSlices) {
		return fmt.Errorf("%w: no clip covers %dms on both tracks", ErrNotFound, tOut)
	}

	screenSrc, err := splitSourceAt(sc.ScreenSlices, i, tOut)
	if err != nil {
		return err
	}
	cameraSrc, err := splitSourceAt(sc.CameraSlices, i, tOut)
	if err != nil {
		return err
	}

	sc.ScreenSlices = splitSlice(sc.ScreenSlices, i, screenSrc)
	sc.CameraSlices = splitSlice(sc.CameraSlices, i, cameraSrc)
	return nil
}

func splitSlice(slices []models.Slice, i int, src int64) []models.Slice {
	s := slices[i]
	left, right := s, s
	left.ID = uuid.NewString()
	left.SourceEndMS = src
	right.ID = uuid.NewString()
	right.SourceStartMS = src
	out := make([]models.Slice, 0, len(slices)+1)
	out = append(out, slices[:i]...)
	out = append(out, left, right)
	out = append(out, slices[i+1:]...)
	return out
}

// RemoveClip removes the clip at the positional index of the identified
// slice from BOTH tracks. The ID may belong to either track. Refused if a
// track would be left empty.
func RemoveClip(sc *models.Scene, sliceID string) error {
	i := findSlice(sc.ScreenSlices, sliceID)
	if i < 0 {
		i = findSlice(sc.CameraSlices, sliceID)
	}
	if i < 0 {
		return fmt.Errorf("%w: slice %s", ErrNotFound, sliceID)
	}
	if len(sc.ScreenSlices) <= 1 || len(sc.CameraSlices) <= 1 {
		return fmt.Errorf("%w: removing the last clip would empty a track", ErrInvariantViolation)
	}
	sc.ScreenSlices = append(sc.ScreenSlices[:i], sc.ScreenSlices[i+1:]...)
	sc.CameraSlices = append(sc.CameraSlices[:i], sc.CameraSlices[i+1:]...)
	return nil
}

// UpdateSlice applies a trim patch to one slice on one track.
func UpdateSlice(sc *models.Scene, track models.Track, sliceID string, patch SlicePatch) error {
	slices := trackSlices(sc, track)
	if slices == nil {
		return fmt.Errorf("%w: unknown track %q", ErrNotFound, track)
	}
	i := findSlice(*slices, sliceID)
	if i < 0 {
		return fmt.Errorf("%w: slice %s on track %s", ErrNotFound, sliceID, track)
	}
	s := (*slices)[i]
	if patch.SourceStartMS != nil {
		s.SourceStartMS = *patch.SourceStartMS
	}
	if patch.SourceEndMS != nil {
		s.SourceEndMS = *patch.SourceEndMS
	}
	if patch.TimeScale != nil {
		s.TimeScale = *patch.TimeScale
	}
	if patch.Volume != nil {
		s.Volume = *patch.Volume
	}
	if patch.HideCursor != nil {
		s.HideCursor = *patch.HideCursor
	}
	if patch.DisableCursorSmoothing != nil {
		s.DisableCursorSmoothing = *patch.DisableCursorSmoothing
	}
	if err := validateSlice(s); err != nil {
		return err
	}
	(*slices)[i] = s
	return nil
}

// Reorder moves a slice positionally within one track.
func Reorder(sc *models.Scene, track models.Track, from, to int) error {
	slices := trackSlices(sc, track)
	if slices == nil {
		return fmt.Errorf("%w: unknown track %q", ErrNotFound, track)
	}
	n := len(*slices)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: reorder %d -> %d with %d slices", ErrOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	s := (*slices)[from]
	rest := append((*slices)[:from:from], (*slices)[from+1:]...)
	out := make([]models.Slice, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, s)
	out = append(out, rest[to:]...)
	*slices = out
	return nil
}

// SplitLayoutAt cuts the layout covering tOut into two layouts sharing its
// settings. Refused if either half would fall below the layout floor.
func SplitLayoutAt(sc *models.Scene, tOut int64) error {
	i := timeline.FindLayoutAt(sc.Layouts, tOut)
	if i < 0 {
		return fmt.Errorf("%w: no layout covers %dms", ErrNotFound, tOut)
	}
	l := sc.Layouts[i]
	if tOut-l.StartTimeMS < models.MinLayoutMS || l.EndTimeMS-tOut < models.MinLayoutMS {
		return fmt.Errorf("%w: layout split at %dms leaves an interval below %dms", ErrInvariantViolation, tOut, models.MinLayoutMS)
	}
	left, right := l, l
	left.EndTimeMS = tOut
	right.ID = uuid.NewString()
	right.StartTimeMS = tOut
	out := make([]models.Layout, 0, len(sc.Layouts)+1)
	out = append(out, sc.Layouts[:i]...)
	out = append(out, left, right)
	out = append(out, sc.Layouts[i+1:]...)
	sc.Layouts = out
	return nil
}

// UpdateLayout patches one layout. Boundary moves drag the adjacent layout's
// edge so the list stays contiguous; the move is refused if any layout would
// fall below the layout floor or leave the covered range.
func UpdateLayout(sc *models.Scene, layoutID string, patch LayoutPatch) error {
	i := findLayout(sc.Layouts, layoutID)
	if i < 0 {
		return fmt.Errorf("%w: layout %s", ErrNotFound, layoutID)
	}
	layouts := append([]models.Layout(nil), sc.Layouts...)
	l := &layouts[i]
	if patch.StartTimeMS != nil {
		if i == 0 {
			return fmt.Errorf("%w: the first layout must start at 0", ErrInvariantViolation)
		}
		l.StartTimeMS = *patch.StartTimeMS
		layouts[i-1].EndTimeMS = *patch.StartTimeMS
	}
	if patch.EndTimeMS != nil {
		if i == len(layouts)-1 {
			return fmt.Errorf("%w: the last layout must end at the output duration", ErrInvariantViolation)
		}
		l.EndTimeMS = *patch.EndTimeMS
		layouts[i+1].StartTimeMS = *patch.EndTimeMS
	}
	if patch.Type != nil {
		l.Type = *patch.Type
	}
	if patch.CameraSize != nil {
		l.CameraSize = *patch.CameraSize
	}
	if patch.CameraPosition != nil {
		l.CameraPosition = *patch.CameraPosition
	}
	for _, cand := range layouts {
		if cand.DurationMS() < models.MinLayoutMS {
			return fmt.Errorf("%w: layout %s would shrink below %dms", ErrInvariantViolation, cand.ID, models.MinLayoutMS)
		}
	}
	sc.Layouts = layouts
	return nil
}

// RemoveLayout deletes a layout and extends its left neighbour over the gap
// (the right neighbour when the first layout is removed). Refused when only
// one layout remains.
func RemoveLayout(sc *models.Scene, layoutID string) error {
	i := findLayout(sc.Layouts, layoutID)
	if i < 0 {
		return fmt.Errorf("%w: layout %s", ErrNotFound, layoutID)
	}
	if len(sc.Layouts) <= 1 {
		return fmt.Errorf("%w: a scene keeps at least one layout", ErrInvariantViolation)
	}
	l := sc.Layouts[i]
	layouts := append([]models.Layout(nil), sc.Layouts...)
	layouts = append(layouts[:i], layouts[i+1:]...)
	if i == 0 {
		layouts[0].StartTimeMS = l.StartTimeMS
	} else {
		layouts[i-1].EndTimeMS = l.EndTimeMS
	}
	sc.Layouts = layouts
	return nil
}

// repairLayouts re-fits the layout list to a changed output duration: the
// last layout stretches or clips to the new total, and trailing layouts that
// start less than MinLayoutMS before it (or past it) fold into their
// predecessor.
func repairLayouts(sc *models.Scene) {
	total := timeline.TotalOutputDuration(sc.ScreenSlices)
	if total == 0 {
		sc.Layouts = nil
		return
	}
	if len(sc.Layouts) == 0 {
		sc.Layouts = []models.Layout{{
			ID:             uuid.NewString(),
			StartTimeMS:    0,
			EndTimeMS:      total,
			Type:           models.LayoutScreenWithCamera,
			CameraSize:     0.35,
			CameraPosition: models.Point{X: 0.85, Y: 0.85},
		}}
		return
	}
	layouts := append([]models.Layout(nil), sc.Layouts...)
	for len(layouts) > 1 && layouts[len(layouts)-1].StartTimeMS >= total-models.MinLayoutMS {
		layouts = layouts[:len(layouts)-1]
	}
	layouts[0].StartTimeMS = 0
	layouts[len(layouts)-1].EndTimeMS = total
	sc.Layouts = layouts
}

// AddMarker appends a marker at the given output time and returns its ID.
func AddMarker(p *models.Project, timeMS int64, label, color string) string {
	m := models.Marker{ID: uuid.NewString(), TimeMS: timeMS, Label: label, Color: color}
	p.Markers = append(p.Markers, m)
	return m.ID
}

// RemoveMarker deletes a marker by ID.
func RemoveMarker(p *models.Project, markerID string) error {
	for i, m := range p.Markers {
		if m.ID == markerID {
			p.Markers = append(p.Markers[:i], p.Markers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: marker %s", ErrNotFound, markerID)
}

func validateSlice(s models.Slice) error {
	if s.SourceStartMS < 0 {
		return fmt.Errorf("%w: slice %s starts before 0", ErrInvariantViolation, s.ID)
	}
	if s.SourceDurationMS() < models.MinSliceMS {
		return fmt.Errorf("%w: slice %s shorter than %dms", ErrInvariantViolation, s.ID, models.MinSliceMS)
	}
	if s.TimeScale <= 0 {
		return fmt.Errorf("%w: slice %s has non-positive time scale", ErrInvariantViolation, s.ID)
	}
	return nil
}

// validateScene checks every structural invariant of a scene: slice floors,
// linked track lengths and contiguous layout coverage of the output range.
func validateScene(sc *models.Scene) error {
	if len(sc.ScreenSlices) != len(sc.CameraSlices) {
		return fmt.Errorf("%w: %d screen slices vs %d camera slices", ErrInvariantViolation, len(sc.ScreenSlices), len(sc.CameraSlices))
	}
	for _, track := range [][]models.Slice{sc.ScreenSlices, sc.CameraSlices} {
		for _, s := range track {
			if err := validateSlice(s); err != nil {
				return err
			}
		}
	}
	total := timeline.TotalOutputDuration(sc.ScreenSlices)
	if len(sc.Layouts) == 0 {
		if total == 0 {
			return nil
		}
		return fmt.Errorf("%w: no layout covers the output range", ErrInvariantViolation)
	}
	if sc.Layouts[0].StartTimeMS != 0 {
		return fmt.Errorf("%w: layouts start at %dms, want 0", ErrInvariantViolation, sc.Layouts[0].StartTimeMS)
	}
	for i, l := range sc.Layouts {
		if l.DurationMS() < models.MinLayoutMS {
			return fmt.Errorf("%w: layout %s shorter than %dms", ErrInvariantViolation, l.ID, models.MinLayoutMS)
		}
		if i > 0 && l.StartTimeMS != sc.Layouts[i-1].EndTimeMS {
			return fmt.Errorf("%w: gap or overlap between layouts %s and %s", ErrInvariantViolation, sc.Layouts[i-1].ID, l.ID)
		}
	}
	if end := sc.Layouts[len(sc.Layouts)-1].EndTimeMS; end != total {
		return fmt.Errorf("%w: layouts end at %dms, output lasts %dms", ErrInvariantViolation, end, total)
	}
	return nil
}
