// Package smoother implements the cursor spring: a near-critically damped
// spring per axis that chases the raw cursor samples in continuous time, so
// the smoothed path is independent of frame rate and seek history.
package smoother

import "github.com/Vasu1712/reelcut-backend/internal/models"

// maxStepSeconds caps a single integration step. A hidden tab or a stalled
// tick otherwise arrives as one huge dt and catapults the cursor.
const maxStepSeconds = 0.1

// Point is a smoothed cursor output: the spring position plus the raw sample
// it was chasing and the cursor image in effect.
type Point struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	RawX     float64 `json:"rawX"`
	RawY     float64 `json:"rawY"`
	CursorID string  `json:"cursorId"`
}

// Spring integrates a damped spring towards a moving target with
// semi-implicit Euler steps.
type Spring struct {
	cfg      models.SpringConfig
	x, y     float64
	vx, vy   float64
	cursorID string
}

// New returns a spring at rest at the origin with the given parameters.
func New(cfg models.SpringConfig) *Spring {
	return &Spring{cfg: cfg}
}

// Reset snaps the spring to (x, y) with zero velocity. Called on seeks, on
// playback start, on cursor-image changes and when playback crosses a slice
// boundary.
func (s *Spring) Reset(x, y float64) {
	s.x, s.y = x, y
	s.vx, s.vy = 0, 0
}

// CursorID returns the cursor image id of the last step.
func (s *Spring) CursorID() string {
	return s.cursorID
}

// Step advances the spring towards the raw target by dt seconds and returns
// the new output. dt is clamped to [0, maxStepSeconds]; dt = 0 leaves
// position and velocity unchanged and only refreshes the raw target and
// cursor id.
func (s *Spring) Step(target models.MouseMove, dt float64) Point {
	if dt < 0 {
		dt = 0
	}
	if dt > maxStepSeconds {
		dt = maxStepSeconds
	}
	s.cursorID = target.CursorID
	if dt > 0 {
		k, c, m := s.cfg.Stiffness, s.cfg.Damping, s.cfg.Mass
		ax := (k*(target.X-s.x) - c*s.vx) / m
		ay := (k*(target.Y-s.y) - c*s.vy) / m
		s.vx += ax * dt
		s.vy += ay * dt
		s.x += s.vx * dt
		s.y += s.vy * dt
	}
	return Point{X: s.x, Y: s.y, RawX: target.X, RawY: target.Y, CursorID: target.CursorID}
}
