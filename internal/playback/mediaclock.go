package playback

import "time"

// Metadata describes the media a clock plays.
type Metadata struct {
	FPS        int   `json:"fps"`
	Width      int   `json:"width"`
	Height     int   `json:"height"`
	DurationMS int64 `json:"durationMs"`
}

// MediaClock is the playback engine the resolver steers. Seeks are
// fire-and-forget: the resolver issues each seek once and reads the
// position back through CurrentTime on later ticks; it does not re-issue a
// seek that has not completed.
type MediaClock interface {
	Seek(sourceMS int64)
	Play()
	Pause()
	SetRate(rate float64)
	CurrentTime() int64
	Metadata() Metadata
}

// SimulatedClock is the in-process MediaClock: source time advances with
// wall time at the configured rate while playing. It stands in for a real
// decoder when the engine runs headless.
type SimulatedClock struct {
	meta    Metadata
	rate    float64
	playing bool
	baseSrc float64   // source position when play/seek/rate last changed
	baseAt  time.Time // wall time of that change
	now     func() time.Time
}

// NewSimulatedClock returns a paused clock at source time 0.
func NewSimulatedClock(meta Metadata) *SimulatedClock {
	return &SimulatedClock{meta: meta, rate: 1, now: time.Now}
}

func (c *SimulatedClock) position() float64 {
	if !c.playing {
		return c.baseSrc
	}
	elapsed := c.now().Sub(c.baseAt).Seconds() * 1000
	return c.baseSrc + elapsed*c.rate
}

func (c *SimulatedClock) rebase(src float64) {
	c.baseSrc = src
	c.baseAt = c.now()
}

// Seek jumps to the given source time.
func (c *SimulatedClock) Seek(sourceMS int64) {
	c.rebase(float64(sourceMS))
}

// Play starts advancing source time.
func (c *SimulatedClock) Play() {
	if c.playing {
		return
	}
	c.rebase(c.baseSrc)
	c.playing = true
}

// Pause freezes source time.
func (c *SimulatedClock) Pause() {
	if !c.playing {
		return
	}
	c.rebase(c.position())
	c.playing = false
}

// SetRate changes the playback rate (the active slice's time scale).
func (c *SimulatedClock) SetRate(rate float64) {
	c.rebase(c.position())
	c.rate = rate
}

// CurrentTime returns the current source time in milliseconds.
func (c *SimulatedClock) CurrentTime() int64 {
	return int64(c.position())
}

// Metadata returns the media description the clock was built with.
func (c *SimulatedClock) Metadata() Metadata {
	return c.meta
}
