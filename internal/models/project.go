package models

import (
	"time"

	"github.com/google/uuid" // Import uuid to generate unique IDs
)

// Timing floors for editable entities, in milliseconds.
const (
	MinSliceMS  = 100 // A slice may never shrink below this source duration
	MinLayoutMS = 100 // A layout interval may never shrink below this output duration
)

// SceneType describes what a scene contains.
type SceneType string

const (
	SceneRecording  SceneType = "recording"
	SceneTitle      SceneType = "title"
	SceneTransition SceneType = "transition"
)

// LayoutType describes how the screen and camera are composed on screen.
type LayoutType string

const (
	LayoutScreenOnly       LayoutType = "screen-only"
	LayoutCameraOnly       LayoutType = "camera-only"
	LayoutScreenWithCamera LayoutType = "screen-with-camera"
	LayoutSideBySide       LayoutType = "side-by-side"
)

// Track selects one of the two linked media tracks of a scene.
type Track string

const (
	TrackScreen Track = "screen"
	TrackCamera Track = "camera"
)

// Point is a 2D coordinate. Used both for normalized positions (0..1) and
// gradient anchors.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Slice selects the half-open interval [SourceStartMS, SourceEndMS) of a
// recording, played back at TimeScale (1 = real-time, 2 = double speed).
type Slice struct {
	ID                     string  `json:"id"`                     // Stable opaque ID (UUID), never reused
	SourceStartMS          int64   `json:"sourceStartMs"`          // Inclusive start in source time
	SourceEndMS            int64   `json:"sourceEndMs"`            // Exclusive end in source time
	TimeScale              float64 `json:"timeScale"`              // Playback speed, > 0
	Volume                 float64 `json:"volume"`                 // Per-slice audio volume
	HideCursor             bool    `json:"hideCursor"`             // Suppress cursor overlay inside this slice
	DisableCursorSmoothing bool    `json:"disableCursorSmoothing"` // Pass raw samples through inside this slice
}

// SourceDurationMS returns the selected source duration in milliseconds.
func (s Slice) SourceDurationMS() int64 {
	return s.SourceEndMS - s.SourceStartMS
}

// Layout is an interval [StartTimeMS, EndTimeMS) on the OUTPUT timeline with
// a composition type and camera placement.
type Layout struct {
	ID             string     `json:"id"`
	StartTimeMS    int64      `json:"startTimeMs"`
	EndTimeMS      int64      `json:"endTimeMs"`
	Type           LayoutType `json:"type"`
	CameraSize     float64    `json:"cameraSize"`     // Fraction of container width, (0, 1]
	CameraPosition Point      `json:"cameraPosition"` // Normalized centre, [0,1] per axis
}

// DurationMS returns the layout's output duration in milliseconds.
func (l Layout) DurationMS() int64 {
	return l.EndTimeMS - l.StartTimeMS
}

// ZoomType describes how a zoom range picks its target.
type ZoomType string

const (
	ZoomFollowCursor ZoomType = "follow-cursor"
	ZoomFollowClicks ZoomType = "follow-clicks"
	ZoomManual       ZoomType = "manual"
)

// ZoomRange is stored and carried through snapshots; its playback effect is
// resolved by the renderer, not by this engine.
type ZoomRange struct {
	ID          string   `json:"id"`
	StartTimeMS int64    `json:"startTimeMs"`
	EndTimeMS   int64    `json:"endTimeMs"`
	Zoom        float64  `json:"zoom"`
	Type        ZoomType `json:"type"`
	TargetPoint *Point   `json:"targetPoint,omitempty"`
	SnapToEdges float64  `json:"snapToEdges"`
	Instant     bool     `json:"instant"`
}

// Marker is a user-defined annotation on the output timeline.
type Marker struct {
	ID     string `json:"id"`
	TimeMS int64  `json:"timeMs"`
	Label  string `json:"label"`
	Color  string `json:"color,omitempty"`
}

// Scene is an ordered group of linked slices and layouts forming one
// continuous output segment. screenSlices and cameraSlices always have the
// same length; the i-th slice of each represents the same clip.
type Scene struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Type         SceneType   `json:"type"`
	SessionIndex int         `json:"sessionIndex"` // Recording session this scene plays from
	ScreenSlices []Slice     `json:"screenSlices"`
	CameraSlices []Slice     `json:"cameraSlices"`
	ZoomRanges   []ZoomRange `json:"zoomRanges"`
	Layouts      []Layout    `json:"layouts"`
}

// GradientStop is one color stop of a gradient background.
type GradientStop struct {
	Color string  `json:"color"`
	At    float64 `json:"at"`
}

// GradientConfig describes a linear gradient between two normalized points.
type GradientConfig struct {
	Start Point          `json:"start"`
	End   Point          `json:"end"`
	Stops []GradientStop `json:"stops"`
}

// Background is the canvas behind the composed video. Exactly one of the
// optional fields is set, selected by Type.
type Background struct {
	Type     string          `json:"type"` // "solid", "gradient" or "image"
	Color    string          `json:"color,omitempty"`
	Gradient *GradientConfig `json:"gradient,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
}

// ShadowConfig controls the drop shadow under the screen rectangle.
type ShadowConfig struct {
	Intensity float64 `json:"intensity"`
	Angle     float64 `json:"angle"`
	Distance  float64 `json:"distance"`
	Blur      float64 `json:"blur"`
}

// SpringConfig holds the cursor spring parameters.
type SpringConfig struct {
	Stiffness float64 `json:"stiffness"`
	Damping   float64 `json:"damping"`
	Mass      float64 `json:"mass"`
}

// CursorSmoothingConfig toggles and tunes cursor smoothing.
type CursorSmoothingConfig struct {
	Enabled bool         `json:"enabled"`
	Spring  SpringConfig `json:"spring"`
}

// CursorConfig controls cursor rendering. Size semantics belong to the
// renderer; the engine stores and reports it.
type CursorConfig struct {
	Size        float64               `json:"size"`
	Smoothing   CursorSmoothingConfig `json:"smoothing"`
	HideAfterMS *int64                `json:"hideAfterMs,omitempty"`
}

// CameraConfig controls the webcam overlay defaults.
type CameraConfig struct {
	Enabled   bool    `json:"enabled"`
	Position  string  `json:"position"` // "top-left", "top-right", "bottom-left", "bottom-right" or "custom"
	Size      float64 `json:"size"`
	Roundness float64 `json:"roundness"`
	Mirror    bool    `json:"mirror"`
}

// AudioConfig holds the project-wide audio mix.
type AudioConfig struct {
	SystemVolume      float64 `json:"systemVolume"`
	MicrophoneVolume  float64 `json:"microphoneVolume"`
	EnhanceMicrophone bool    `json:"enhanceMicrophone"`
}

// Padding is the spacing around the composed screen, in pixels.
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// AspectRatio is the output aspect ratio as an integer pair.
type AspectRatio struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// RecordingRange is the retained portion of the raw capture, in source ms.
type RecordingRange struct {
	StartMS int64 `json:"startMs"`
	EndMS   int64 `json:"endMs"`
}

// ProjectConfig aggregates all per-project rendering and mixing settings.
type ProjectConfig struct {
	Background        Background     `json:"background"`
	Padding           Padding        `json:"padding"`
	Shadow            ShadowConfig   `json:"shadow"`
	Cursor            CursorConfig   `json:"cursor"`
	Camera            CameraConfig   `json:"camera"`
	Audio             AudioConfig    `json:"audio"`
	RecordingRange    RecordingRange `json:"recordingRange"`
	OutputAspectRatio AspectRatio    `json:"outputAspectRatio"`
}

// DefaultProjectConfig returns the configuration every new project starts
// with.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Background: Background{
			Type: "gradient",
			Gradient: &GradientConfig{
				Start: Point{X: 0, Y: 0},
				End:   Point{X: 1, Y: 1},
				Stops: []GradientStop{
					{Color: "#3F37C9", At: 0},
					{Color: "#8C87DF", At: 1},
				},
			},
		},
		Padding: Padding{},
		Shadow:  ShadowConfig{Intensity: 0.75, Angle: 90, Distance: 25, Blur: 20},
		Cursor: CursorConfig{
			Size: 1.5,
			Smoothing: CursorSmoothingConfig{
				Enabled: true,
				Spring:  SpringConfig{Stiffness: 470, Damping: 70, Mass: 3},
			},
		},
		Camera: CameraConfig{
			Enabled:   true,
			Position:  "bottom-right",
			Size:      0.35,
			Roundness: 0.25,
		},
		Audio:             AudioConfig{SystemVolume: 1, MicrophoneVolume: 1, EnhanceMicrophone: true},
		OutputAspectRatio: AspectRatio{X: 16, Y: 9},
	}
}

// Project is the top-level aggregate: identity, config, scenes and markers.
// ActiveScene indexes into Scenes; exactly one scene is active at a time.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	CreatedAt   time.Time     `json:"createdAt"`
	Config      ProjectConfig `json:"config"`
	Scenes      []Scene       `json:"scenes"`
	Markers     []Marker      `json:"markers"`
	ActiveScene int           `json:"activeScene"`
}

// NewProject creates an empty project with default configuration.
func NewProject(name string) *Project {
	return &Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Config:    DefaultProjectConfig(),
	}
}

// Clone returns a deep copy of the project. Snapshots handed to readers are
// never mutated, so edits copy before touching anything.
func (p *Project) Clone() *Project {
	c := *p
	c.Scenes = make([]Scene, len(p.Scenes))
	for i, sc := range p.Scenes {
		c.Scenes[i] = cloneScene(sc)
	}
	c.Markers = append([]Marker(nil), p.Markers...)
	if p.Config.Background.Gradient != nil {
		g := *p.Config.Background.Gradient
		g.Stops = append([]GradientStop(nil), p.Config.Background.Gradient.Stops...)
		c.Config.Background.Gradient = &g
	}
	if p.Config.Cursor.HideAfterMS != nil {
		v := *p.Config.Cursor.HideAfterMS
		c.Config.Cursor.HideAfterMS = &v
	}
	return &c
}

func cloneScene(sc Scene) Scene {
	out := sc
	out.ScreenSlices = append([]Slice(nil), sc.ScreenSlices...)
	out.CameraSlices = append([]Slice(nil), sc.CameraSlices...)
	out.Layouts = append([]Layout(nil), sc.Layouts...)
	out.ZoomRanges = make([]ZoomRange, len(sc.ZoomRanges))
	for i, z := range sc.ZoomRanges {
		out.ZoomRanges[i] = z
		if z.TargetPoint != nil {
			tp := *z.TargetPoint
			out.ZoomRanges[i].TargetPoint = &tp
		}
	}
	return out
}
