package playback

import "github.com/Vasu1712/reelcut-backend/internal/models"

// cameraEdgePadding keeps a picture-in-picture camera off the viewport edge.
const cameraEdgePadding = 16

// sideBySideGap is the inner gap between the two halves of a side-by-side
// layout, in pixels.
const sideBySideGap = 8

// Rect is a pixel rectangle in viewport space.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// LayoutRenderInfo is the resolved composition for one frame: which layout
// is active and where the screen and camera land in the viewport. A nil rect
// means that source is not visible.
type LayoutRenderInfo struct {
	LayoutID string            `json:"layoutId"`
	Type     models.LayoutType `json:"type"`
	Screen   *Rect             `json:"screen,omitempty"`
	Camera   *Rect             `json:"camera,omitempty"`
}

// Viewport is the output surface the rects are computed against.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ResolveLayout turns a layout plus the viewport and the camera's native
// aspect ratio into concrete screen and camera rectangles.
func ResolveLayout(l models.Layout, vp Viewport, cameraAspect float64) LayoutRenderInfo {
	info := LayoutRenderInfo{LayoutID: l.ID, Type: l.Type}
	full := &Rect{X: 0, Y: 0, W: vp.Width, H: vp.Height}
	switch l.Type {
	case models.LayoutScreenOnly:
		info.Screen = full
	case models.LayoutCameraOnly:
		info.Camera = full
	case models.LayoutSideBySide:
		half := (vp.Width - sideBySideGap) / 2
		info.Screen = &Rect{X: 0, Y: 0, W: half, H: vp.Height}
		info.Camera = &Rect{X: half + sideBySideGap, Y: 0, W: half, H: vp.Height}
	case models.LayoutScreenWithCamera:
		info.Screen = full
		info.Camera = pipCameraRect(l, vp, cameraAspect)
	}
	return info
}

// pipCameraRect places the picture-in-picture camera: width is a fraction of
// the viewport, height follows the camera's native aspect ratio, and the
// centre point is clamped so the whole rect stays inside the padded
// viewport.
func pipCameraRect(l models.Layout, vp Viewport, cameraAspect float64) *Rect {
	if cameraAspect <= 0 {
		cameraAspect = 16.0 / 9.0
	}
	w := l.CameraSize * vp.Width
	h := w / cameraAspect
	cx := l.CameraPosition.X * vp.Width
	cy := l.CameraPosition.Y * vp.Height
	cx = clamp(cx, cameraEdgePadding+w/2, vp.Width-cameraEdgePadding-w/2)
	cy = clamp(cy, cameraEdgePadding+h/2, vp.Height-cameraEdgePadding-h/2)
	return &Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}
}

func clamp(v, lo, hi float64) float64 {
	if lo > hi {
		// Camera larger than the padded viewport; centre it.
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
