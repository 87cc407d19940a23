// Package playback holds the run loop of the engine: a resolver that, driven
// by a media-time source, maps source time to output time, picks the active
// layout, drives the cursor spring and publishes one immutable FrameState
// per tick.
package playback

import (
	"math"
	"time"

	"github.com/Vasu1712/reelcut-backend/internal/events"
	"github.com/Vasu1712/reelcut-backend/internal/models"
	"github.com/Vasu1712/reelcut-backend/internal/smoother"
	"github.com/Vasu1712/reelcut-backend/internal/timeline"
)

const (
	// ClickFadeMS is how long a click stays in FrameState.RecentClicks.
	ClickFadeMS = 500

	// DriftToleranceMS is how far an audio track may drift from its target
	// before the media collaborator re-syncs it.
	DriftToleranceMS = 20
)

// FrameState is the immutable snapshot published on every tick: everything a
// renderer, cursor overlay or exporter frame enumerator needs for one output
// frame.
type FrameState struct {
	TOutMS       int64              `json:"tOutMs"`
	SliceIndex   int                `json:"sliceIndex"`
	SourceTimeMS int64              `json:"sourceTimeMs"`
	Layout       LayoutRenderInfo   `json:"layout"`
	Cursor       *smoother.Point    `json:"cursor,omitempty"`
	RecentClicks []events.AgedClick `json:"recentClicks,omitempty"`
	Playing      bool               `json:"playing"`
	EndOfStream  bool               `json:"endOfStream,omitempty"`
	// Audio follower targets, already compensated for late capture start.
	MicTargetMS    *int64 `json:"micTargetMs,omitempty"`
	SystemTargetMS *int64 `json:"systemTargetMs,omitempty"`
	// Warning carries a non-fatal tick problem; playback continues.
	Warning string `json:"warning,omitempty"`
}

// SceneSource returns the current immutable scene snapshot. The resolver
// calls it once per tick, so edits published between ticks take effect on
// the next tick.
type SceneSource func() *models.Scene

// Resolver owns the playback state of one session. It is confined to a
// single goroutine: all methods must be called from the session's loop.
type Resolver struct {
	clock    MediaClock
	index    *events.Index
	bundle   *models.RecordingBundle
	scene    SceneSource
	spring   *smoother.Spring
	viewport Viewport
	publish  func(FrameState)

	sliceIndex int
	playing    bool
	lastWall   time.Time
	tOutF      float64 // real-valued output position, kept for frame stepping
	last       FrameState
}

// NewResolver wires a resolver for one loaded bundle and scene source.
// publish may be nil when the caller polls Frame() instead.
func NewResolver(bundle *models.RecordingBundle, index *events.Index, scene SceneSource, clock MediaClock, spring models.SpringConfig, vp Viewport, publish func(FrameState)) *Resolver {
	return &Resolver{
		clock:    clock,
		index:    index,
		bundle:   bundle,
		scene:    scene,
		spring:   smoother.New(spring),
		viewport: vp,
		publish:  publish,
	}
}

// Frame returns the last published FrameState.
func (r *Resolver) Frame() FrameState {
	return r.last
}

// Playing reports whether the resolver is advancing.
func (r *Resolver) Playing() bool {
	return r.playing
}

// Play starts playback. The spring snaps to the raw cursor sample at the
// current source time so smoothing never carries state across a pause.
func (r *Resolver) Play() {
	if r.playing {
		return
	}
	sc := r.scene()
	if sc == nil || len(sc.ScreenSlices) == 0 {
		return
	}
	src := r.clock.CurrentTime()
	r.resetSpringAt(src)
	r.clock.SetRate(r.activeSlice(sc).TimeScale)
	r.clock.Play()
	r.playing = true
	r.lastWall = time.Now()
}

// Pause stops playback and publishes the frozen frame.
func (r *Resolver) Pause() {
	if !r.playing {
		return
	}
	r.playing = false
	r.clock.Pause()
	sc := r.scene()
	if sc != nil && len(sc.ScreenSlices) > 0 {
		src := r.clock.CurrentTime()
		r.tOutF = timeline.SourceToOutputF(sc.ScreenSlices, r.sliceIndex, src)
		r.emit(r.resolve(sc, src, r.tOutF, 0))
	}
}

// Seek jumps to an output time. The target is clamped into the edited
// range, the media clock is commanded to the mapped source time, the spring
// resets, and a FrameState with no tick advance is published.
func (r *Resolver) Seek(tOutMS int64) {
	r.seekF(float64(tOutMS))
}

func (r *Resolver) seekF(tOut float64) {
	sc := r.scene()
	if sc == nil || len(sc.ScreenSlices) == 0 {
		return
	}
	slices := sc.ScreenSlices
	if total := float64(timeline.TotalOutputDuration(slices)); tOut > total {
		tOut = total
	}
	if tOut < 0 {
		tOut = 0
	}
	i, src := timeline.OutputToSourceF(slices, tOut)
	r.sliceIndex = i
	r.tOutF = tOut
	r.clock.Seek(src)
	r.clock.SetRate(slices[i].TimeScale)
	r.resetSpringAt(src)
	r.lastWall = time.Now()
	r.emit(r.resolve(sc, src, tOut, 0))
}

// StepFrame seeks one output frame forward or backward, using the
// recording's frame rate. Stepping pauses playback.
func (r *Resolver) StepFrame(dir int) {
	if r.playing {
		r.playing = false
		r.clock.Pause()
	}
	fps := r.clock.Metadata().FPS
	if fps <= 0 {
		fps = 60
	}
	delta := 1000.0 / float64(fps)
	if dir < 0 {
		delta = -delta
	}
	r.seekF(r.tOutF + delta)
}

// Tick advances playback by one animation step. It never fails: a tick that
// cannot resolve re-publishes the last FrameState with a warning set.
func (r *Resolver) Tick(now time.Time) FrameState {
	sc := r.scene()
	if sc == nil || len(sc.ScreenSlices) == 0 {
		fs := r.last
		fs.Warning = "no scene to resolve"
		r.emit(fs)
		return fs
	}
	slices := sc.ScreenSlices
	if r.sliceIndex >= len(slices) {
		r.sliceIndex = len(slices) - 1
	}
	src := r.clock.CurrentTime()

	// Slice boundary: the next slice may be anywhere in the source, so the
	// media clock seeks and the spring resets.
	if r.playing && src >= slices[r.sliceIndex].SourceEndMS {
		if r.sliceIndex+1 < len(slices) {
			r.sliceIndex++
			next := slices[r.sliceIndex]
			r.clock.Seek(next.SourceStartMS)
			r.clock.SetRate(next.TimeScale)
			src = next.SourceStartMS
			r.resetSpringAt(src)
			r.lastWall = now
			r.tOutF = timeline.SourceToOutputF(slices, r.sliceIndex, src)
			fs := r.resolve(sc, src, r.tOutF, 0)
			r.emit(fs)
			return fs
		}
		// Past the final slice: emit end-of-stream and stop.
		r.playing = false
		r.clock.Pause()
		src = slices[r.sliceIndex].SourceEndMS
		r.clock.Seek(src)
		r.tOutF = timeline.SourceToOutputF(slices, r.sliceIndex, src)
		fs := r.resolve(sc, src, r.tOutF, 0)
		fs.EndOfStream = true
		r.emit(fs)
		return fs
	}

	var dt float64
	if r.playing {
		dt = now.Sub(r.lastWall).Seconds()
	}
	r.lastWall = now
	r.tOutF = timeline.SourceToOutputF(slices, r.sliceIndex, src)
	fs := r.resolve(sc, src, r.tOutF, dt)
	r.emit(fs)
	return fs
}

func (r *Resolver) activeSlice(sc *models.Scene) models.Slice {
	i := r.sliceIndex
	if i >= len(sc.ScreenSlices) {
		i = len(sc.ScreenSlices) - 1
	}
	return sc.ScreenSlices[i]
}

func (r *Resolver) resetSpringAt(src int64) {
	if sample := r.index.InterpolatedAt(src); sample != nil {
		r.spring.Reset(sample.X, sample.Y)
	} else {
		r.spring.Reset(0, 0)
	}
}

// resolve computes one FrameState at the given source and output time.
// Every stage sees the same source time; wallDT is zero for paused
// resolution (seeks, pause) and the wall-clock delta while playing.
func (r *Resolver) resolve(sc *models.Scene, src int64, tOutF float64, wallDT float64) FrameState {
	s := r.activeSlice(sc)
	tOut := int64(math.RoundToEven(tOutF))

	fs := FrameState{
		TOutMS:       tOut,
		SliceIndex:   r.sliceIndex,
		SourceTimeMS: src,
		Playing:      r.playing,
	}

	if li := timeline.FindLayoutAt(sc.Layouts, tOut); li >= 0 {
		fs.Layout = ResolveLayout(sc.Layouts[li], r.viewport, r.cameraAspect())
	} else {
		fs.Layout = r.last.Layout
		fs.Warning = "no layout covers the current frame"
	}

	if cursorVisible(s, fs.Layout.Type) {
		if sample := r.index.InterpolatedAt(src); sample != nil {
			if s.DisableCursorSmoothing {
				fs.Cursor = &smoother.Point{X: sample.X, Y: sample.Y, RawX: sample.X, RawY: sample.Y, CursorID: sample.CursorID}
			} else {
				// A cursor-image change must not smooth across the swap:
				// the new cursor would slide in from the old one's spot.
				if cur := r.spring.CursorID(); cur != "" && cur != sample.CursorID {
					r.spring.Reset(sample.X, sample.Y)
				}
				p := r.spring.Step(*sample, wallDT)
				fs.Cursor = &p
			}
		}
	}

	fs.RecentClicks = r.index.RecentClicks(src, ClickFadeMS)

	if r.bundle.MicAudio != nil {
		t := audioTarget(src, r.bundle.AudioOffsetMS(r.bundle.MicAudio))
		fs.MicTargetMS = &t
	}
	if r.bundle.SystemAudio != nil {
		t := audioTarget(src, r.bundle.AudioOffsetMS(r.bundle.SystemAudio))
		fs.SystemTargetMS = &t
	}
	return fs
}

func (r *Resolver) cameraAspect() float64 {
	if c := r.bundle.Camera; c != nil && c.Height > 0 {
		return float64(c.Width) / float64(c.Height)
	}
	return 16.0 / 9.0
}

func (r *Resolver) emit(fs FrameState) {
	r.last = fs
	if r.publish != nil {
		r.publish(fs)
	}
}

func cursorVisible(s models.Slice, lt models.LayoutType) bool {
	return !s.HideCursor && lt != models.LayoutCameraOnly
}

// audioTarget maps a video source time onto an audio track that started
// offsetMS late during recording.
func audioTarget(src, offsetMS int64) int64 {
	t := src - offsetMS
	if t < 0 {
		return 0
	}
	return t
}

// DriftExceeded reports whether an audio track's actual position is far
// enough from its target that the collaborator should re-sync.
func DriftExceeded(actualMS, targetMS int64) bool {
	return math.Abs(float64(actualMS-targetMS)) > DriftToleranceMS
}
