// Package events holds immutable, time-sorted indices over the input-event
// streams of a recording. An index is built once per loaded bundle and then
// only queried; all queries take times on the recording's SOURCE timeline.
package events

import (
	"fmt"
	"sort"

	"github.com/Vasu1712/reelcut-backend/internal/edit"
	"github.com/Vasu1712/reelcut-backend/internal/models"
)

// Index wraps the sorted mouse-move and mouse-click streams of one
// recording session.
type Index struct {
	moves  []models.MouseMove
	clicks []models.MouseClick
}

// AgedClick is a click annotated with its age relative to a query time.
type AgedClick struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Button string  `json:"button"`
	AgeMS  int64   `json:"ageMs"`
}

// Build validates that both streams are non-decreasing in process time and
// returns the index. The slices are referenced, not copied; the caller hands
// over ownership.
func Build(moves []models.MouseMove, clicks []models.MouseClick) (*Index, error) {
	for i := 1; i < len(moves); i++ {
		if moves[i].ProcessTimeMS < moves[i-1].ProcessTimeMS {
			return nil, fmt.Errorf("%w: mouse moves unsorted at index %d", edit.ErrBundleInvalid, i)
		}
	}
	for i := 1; i < len(clicks); i++ {
		if clicks[i].ProcessTimeMS < clicks[i-1].ProcessTimeMS {
			return nil, fmt.Errorf("%w: mouse clicks unsorted at index %d", edit.ErrBundleInvalid, i)
		}
	}
	return &Index{moves: moves, clicks: clicks}, nil
}

// SampleAt returns the latest move sample at or before t, or nil if t is
// before the first sample.
func (ix *Index) SampleAt(t int64) *models.MouseMove {
	i := ix.sampleIndexAt(t)
	if i < 0 {
		return nil
	}
	return &ix.moves[i]
}

// sampleIndexAt binary-searches the greatest index with processTime <= t.
func (ix *Index) sampleIndexAt(t int64) int {
	// sort.Search finds the first index with processTime > t; the sample
	// before it is the one we want.
	i := sort.Search(len(ix.moves), func(i int) bool {
		return ix.moves[i].ProcessTimeMS > t
	})
	return i - 1
}

// InterpolatedAt returns the cursor position at t, linearly interpolated
// between the surrounding samples. The cursor id is never interpolated: it
// is the left sample's value. Before the first sample it returns nil; after
// the last it returns the last sample verbatim.
func (ix *Index) InterpolatedAt(t int64) *models.MouseMove {
	i := ix.sampleIndexAt(t)
	if i < 0 {
		return nil
	}
	a := ix.moves[i]
	if i+1 >= len(ix.moves) {
		return &a
	}
	b := ix.moves[i+1]
	span := b.ProcessTimeMS - a.ProcessTimeMS
	if span <= 0 {
		return &a
	}
	f := float64(t-a.ProcessTimeMS) / float64(span)
	out := a
	out.X = a.X + (b.X-a.X)*f
	out.Y = a.Y + (b.Y-a.Y)*f
	return &out
}

// ClicksInRange returns every click with t0 <= processTime <= t1, in order.
func (ix *Index) ClicksInRange(t0, t1 int64) []models.MouseClick {
	lo := sort.Search(len(ix.clicks), func(i int) bool {
		return ix.clicks[i].ProcessTimeMS >= t0
	})
	hi := sort.Search(len(ix.clicks), func(i int) bool {
		return ix.clicks[i].ProcessTimeMS > t1
	})
	if lo >= hi {
		return nil
	}
	return ix.clicks[lo:hi]
}

// RecentClicks returns the down-phase clicks inside [tNow-window, tNow],
// each annotated with its age at tNow.
func (ix *Index) RecentClicks(tNow, windowMS int64) []AgedClick {
	var out []AgedClick
	for _, c := range ix.ClicksInRange(tNow-windowMS, tNow) {
		if !c.Down {
			continue
		}
		out = append(out, AgedClick{
			X:      c.X,
			Y:      c.Y,
			Button: c.Button,
			AgeMS:  tNow - c.ProcessTimeMS,
		})
	}
	return out
}
