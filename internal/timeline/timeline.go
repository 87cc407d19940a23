// Package timeline maps between the output time axis of an edited video and
// the source time axis of its recording. All functions are pure; positions
// are integer milliseconds at the boundaries and float64 internally.
package timeline

import (
	"math"

	"github.com/Vasu1712/reelcut-backend/internal/models"
)

// SliceOutputDuration returns the output duration of a single slice in
// milliseconds as a real number. Rounding happens only at final result
// boundaries.
func SliceOutputDuration(s models.Slice) float64 {
	return float64(s.SourceEndMS-s.SourceStartMS) / s.TimeScale
}

// TotalOutputDuration returns the total output duration of a slice sequence,
// rounded half-to-even to integer milliseconds.
func TotalOutputDuration(slices []models.Slice) int64 {
	var total float64
	for _, s := range slices {
		total += SliceOutputDuration(s)
	}
	return int64(math.RoundToEven(total))
}

// OutputToSource locates the slice covering output time tOutMS and returns
// its index and the corresponding source time in milliseconds.
//
// tOutMS is clamped to [0, total] first. Past the end it returns the last
// slice and its source end; on an empty sequence it returns (-1, 0).
func OutputToSource(slices []models.Slice, tOutMS int64) (int, int64) {
	return OutputToSourceF(slices, float64(tOutMS))
}

// OutputToSourceF is OutputToSource for a real-valued output time. Frame
// stepping works in fractional milliseconds (1000/fps) and rounds only the
// final source position, so repeated steps do not accumulate error.
func OutputToSourceF(slices []models.Slice, tOut float64) (int, int64) {
	if len(slices) == 0 {
		return -1, 0
	}
	if tOut < 0 {
		tOut = 0
	}
	var acc float64
	for i, s := range slices {
		d := SliceOutputDuration(s)
		if tOut < acc+d {
			src := float64(s.SourceStartMS) + (tOut-acc)*s.TimeScale
			return i, int64(math.RoundToEven(src))
		}
		acc += d
	}
	last := len(slices) - 1
	return last, slices[last].SourceEndMS
}

// SourceToOutput is the inverse of OutputToSource for a single slice: it
// maps a source time within slices[i] back to output time. The source time
// is clamped into the slice's interval.
func SourceToOutput(slices []models.Slice, i int, sourceMS int64) int64 {
	return int64(math.RoundToEven(SourceToOutputF(slices, i, sourceMS)))
}

// SourceToOutputF is SourceToOutput without the final rounding, for callers
// that keep a real-valued output position across ticks.
func SourceToOutputF(slices []models.Slice, i int, sourceMS int64) float64 {
	if i < 0 || i >= len(slices) {
		return 0
	}
	s := slices[i]
	src := sourceMS
	if src < s.SourceStartMS {
		src = s.SourceStartMS
	}
	if src > s.SourceEndMS {
		src = s.SourceEndMS
	}
	var acc float64
	for j := 0; j < i; j++ {
		acc += SliceOutputDuration(slices[j])
	}
	return acc + float64(src-s.SourceStartMS)/s.TimeScale
}

// RenderInfo places one slice on the output timeline.
type RenderInfo struct {
	Index            int    `json:"index"`
	SliceID          string `json:"sliceId"`
	OutputStartMS    int64  `json:"outputStartMs"`
	OutputEndMS      int64  `json:"outputEndMs"`
	OutputDurationMS int64  `json:"outputDurationMs"`
}

// RenderInfos returns the output placement of every slice in one pass.
// Boundaries are computed from the running real-valued sum so adjacent
// entries always share an edge and the last entry ends at the total.
func RenderInfos(slices []models.Slice) []RenderInfo {
	infos := make([]RenderInfo, len(slices))
	var acc float64
	for i, s := range slices {
		start := int64(math.RoundToEven(acc))
		acc += SliceOutputDuration(s)
		end := int64(math.RoundToEven(acc))
		infos[i] = RenderInfo{
			Index:            i,
			SliceID:          s.ID,
			OutputStartMS:    start,
			OutputEndMS:      end,
			OutputDurationMS: end - start,
		}
	}
	return infos
}

// FindLayoutAt returns the layout covering output time tOutMS, or -1 if the
// list does not cover it. Intervals are half-open; the final layout also
// covers its own end so the last output frame resolves.
func FindLayoutAt(layouts []models.Layout, tOutMS int64) int {
	for i, l := range layouts {
		if tOutMS >= l.StartTimeMS && tOutMS < l.EndTimeMS {
			return i
		}
	}
	if n := len(layouts); n > 0 && tOutMS == layouts[n-1].EndTimeMS {
		return n - 1
	}
	return -1
}
