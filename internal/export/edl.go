// Package export turns a project snapshot into the concatenation plan an
// exporter consumes: per-track edit decision lists plus audio offsets. The
// encoding itself happens outside the engine.
package export

import (
	"context"
	"fmt"

	"github.com/Vasu1712/reelcut-backend/internal/edit"
	"github.com/Vasu1712/reelcut-backend/internal/models"
	"github.com/Vasu1712/reelcut-backend/internal/timeline"
)

// Segment is one EDL entry: a source interval played at a time scale. The
// exporter concatenates segments in order, applying each time scale
// independently.
type Segment struct {
	SourceStartMS int64   `json:"sourceStartMs"`
	SourceEndMS   int64   `json:"sourceEndMs"`
	TimeScale     float64 `json:"timeScale"`
}

// SourceDurationMS returns the segment's length in the source media.
func (s Segment) SourceDurationMS() int64 {
	return s.SourceEndMS - s.SourceStartMS
}

// TrackEdits is the full edit decision list for one track.
type TrackEdits struct {
	Segments []Segment `json:"segments"`
}

// fullSourceToleranceMS absorbs the sub-frame gap between a recording's
// nominal duration and the last slice boundary.
const fullSourceToleranceMS = 100

// IsFullSource reports whether the list is a single real-time segment
// covering the whole source, in which case the exporter can skip the cut
// pass entirely.
func (t TrackEdits) IsFullSource(sourceDurationMS int64) bool {
	if len(t.Segments) != 1 {
		return false
	}
	seg := t.Segments[0]
	return seg.SourceStartMS == 0 &&
		seg.SourceEndMS >= sourceDurationMS-fullSourceToleranceMS &&
		seg.TimeScale > 0.99 && seg.TimeScale < 1.01
}

// TotalOutputDurationMS returns the output duration of the whole list.
func (t TrackEdits) TotalOutputDurationMS() int64 {
	slices := make([]models.Slice, len(t.Segments))
	for i, seg := range t.Segments {
		slices[i] = models.Slice{SourceStartMS: seg.SourceStartMS, SourceEndMS: seg.SourceEndMS, TimeScale: seg.TimeScale}
	}
	return timeline.TotalOutputDuration(slices)
}

// TrackEditsFor enumerates the EDL of one track of a scene. Screen and
// camera lists are computed independently: their linking is structural, so
// after per-track trims the intervals may differ.
func TrackEditsFor(sc *models.Scene, track models.Track) (TrackEdits, error) {
	var slices []models.Slice
	switch track {
	case models.TrackScreen:
		slices = sc.ScreenSlices
	case models.TrackCamera:
		slices = sc.CameraSlices
	default:
		return TrackEdits{}, fmt.Errorf("%w: unknown track %q", edit.ErrNotFound, track)
	}
	out := TrackEdits{Segments: make([]Segment, len(slices))}
	for i, s := range slices {
		out.Segments[i] = Segment{
			SourceStartMS: s.SourceStartMS,
			SourceEndMS:   s.SourceEndMS,
			TimeScale:     s.TimeScale,
		}
	}
	return out, nil
}

// AudioOffsets is the per-track late-start compensation the exporter applies
// when cutting audio.
type AudioOffsets struct {
	MicOffsetMS    int64 `json:"micOffsetMs"`
	SystemOffsetMS int64 `json:"systemOffsetMs"`
}

// Plan is the complete edit decision handed to the exporter for one scene.
type Plan struct {
	Screen       TrackEdits   `json:"screen"`
	Camera       TrackEdits   `json:"camera"`
	Audio        AudioOffsets `json:"audio"`
	OutputDurMS  int64        `json:"outputDurationMs"`
	SourceDurMS  int64        `json:"sourceDurationMs"`
	FPS          int          `json:"fps"`
	SliceVolumes []float64    `json:"sliceVolumes"`
}

// BuildPlan enumerates the EDL for both tracks of the active scene of a
// snapshot. It takes a snapshot value, so it is safe to run on a background
// worker while edits continue; ctx cancels between tracks.
func BuildPlan(ctx context.Context, p *models.Project, bundle *models.RecordingBundle) (*Plan, error) {
	if p.ActiveScene < 0 || p.ActiveScene >= len(p.Scenes) {
		return nil, fmt.Errorf("%w: active scene %d", edit.ErrNotFound, p.ActiveScene)
	}
	sc := &p.Scenes[p.ActiveScene]

	screen, err := TrackEditsFor(sc, models.TrackScreen)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", edit.ErrCancelled, err)
	}
	camera, err := TrackEditsFor(sc, models.TrackCamera)
	if err != nil {
		return nil, err
	}

	volumes := make([]float64, len(sc.ScreenSlices))
	for i, s := range sc.ScreenSlices {
		volumes[i] = s.Volume
	}
	return &Plan{
		Screen: screen,
		Camera: camera,
		Audio: AudioOffsets{
			MicOffsetMS:    bundle.AudioOffsetMS(bundle.MicAudio),
			SystemOffsetMS: bundle.AudioOffsetMS(bundle.SystemAudio),
		},
		OutputDurMS:  timeline.TotalOutputDuration(sc.ScreenSlices),
		SourceDurMS:  bundle.Video.DurationMS,
		FPS:          bundle.Video.FPS,
		SliceVolumes: volumes,
	}, nil
}
