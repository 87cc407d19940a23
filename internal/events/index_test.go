package events

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/Vasu1712/reelcut-backend/internal/edit"
	"github.com/Vasu1712/reelcut-backend/internal/models"
)

func move(t int64, x, y float64, cid string) models.MouseMove {
	return models.MouseMove{ProcessTimeMS: t, X: x, Y: y, CursorID: cid}
}

func click(t int64, x, y float64, down bool) models.MouseClick {
	return models.MouseClick{ProcessTimeMS: t, X: x, Y: y, Button: "left", Down: down}
}

func TestBuildRejectsUnsorted(t *testing.T) {
	_, err := Build([]models.MouseMove{move(100, 0, 0, "a"), move(50, 0, 0, "a")}, nil)
	if !errors.Is(err, edit.ErrBundleInvalid) {
		t.Errorf("unsorted moves: err = %v, want invalid bundle", err)
	}
	_, err = Build(nil, []models.MouseClick{click(100, 0, 0, true), click(50, 0, 0, true)})
	if !errors.Is(err, edit.ErrBundleInvalid) {
		t.Errorf("unsorted clicks: err = %v, want invalid bundle", err)
	}
}

func TestSampleAt(t *testing.T) {
	ix, err := Build([]models.MouseMove{
		move(100, 1, 1, "a"),
		move(200, 2, 2, "a"),
		move(200, 3, 3, "a"), // equal timestamps are allowed
		move(400, 4, 4, "b"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		t     int64
		wantX float64
		none  bool
	}{
		{99, 0, true},
		{100, 1, false},
		{150, 1, false},
		{200, 3, false}, // latest of the equal-time pair
		{399, 3, false},
		{400, 4, false},
		{9999, 4, false},
	}
	for _, tt := range tests {
		got := ix.SampleAt(tt.t)
		if tt.none {
			if got != nil {
				t.Errorf("SampleAt(%d) = %+v, want nil", tt.t, got)
			}
			continue
		}
		if got == nil || got.X != tt.wantX {
			t.Errorf("SampleAt(%d) = %+v, want X=%v", tt.t, got, tt.wantX)
		}
	}
}

// Binary search agrees with a linear scan for arbitrary sorted streams.
func TestSampleAtMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var moves []models.MouseMove
	ts := int64(0)
	for i := 0; i < 500; i++ {
		ts += rng.Int63n(20) // 0 steps keep duplicates in play
		moves = append(moves, move(ts, float64(i), float64(i), "a"))
	}
	ix, err := Build(moves, nil)
	if err != nil {
		t.Fatal(err)
	}
	for q := int64(-10); q < ts+10; q += 3 {
		var want *models.MouseMove
		for i := range moves {
			if moves[i].ProcessTimeMS <= q {
				want = &moves[i]
			}
		}
		got := ix.SampleAt(q)
		if (got == nil) != (want == nil) {
			t.Fatalf("t=%d: got %+v, want %+v", q, got, want)
		}
		if got != nil && got.X != want.X {
			t.Fatalf("t=%d: got X=%v, want X=%v", q, got.X, want.X)
		}
	}
}

func TestInterpolatedAt(t *testing.T) {
	ix, err := Build([]models.MouseMove{
		move(0, 0, 0, "a"),
		move(100, 1000, 0, "a"),
		move(101, 1000, 0, "b"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	got := ix.InterpolatedAt(50)
	if got == nil || got.X != 500 || got.Y != 0 {
		t.Errorf("InterpolatedAt(50) = %+v, want X=500", got)
	}
	if got.CursorID != "a" {
		t.Errorf("cursor id interpolated: got %q", got.CursorID)
	}
	// The cursor id flips only once the left sample flips.
	if got := ix.InterpolatedAt(100); got.CursorID != "a" {
		t.Errorf("InterpolatedAt(100) cursor id = %q, want a", got.CursorID)
	}
	if got := ix.InterpolatedAt(101); got.CursorID != "b" {
		t.Errorf("InterpolatedAt(101) cursor id = %q, want b", got.CursorID)
	}
	// Past the last sample: verbatim.
	if got := ix.InterpolatedAt(5000); got.X != 1000 || got.CursorID != "b" {
		t.Errorf("InterpolatedAt(5000) = %+v, want last sample", got)
	}
	// Before the first sample: nothing.
	if got := ix.InterpolatedAt(-1); got != nil {
		t.Errorf("InterpolatedAt(-1) = %+v, want nil", got)
	}
}

func TestClicksInRange(t *testing.T) {
	ix, err := Build(nil, []models.MouseClick{
		click(100, 1, 1, true),
		click(150, 1, 1, false),
		click(300, 2, 2, true),
		click(500, 3, 3, true),
	})
	if err != nil {
		t.Fatal(err)
	}
	got := ix.ClicksInRange(100, 300)
	if len(got) != 3 {
		t.Fatalf("ClicksInRange(100, 300) returned %d clicks", len(got))
	}
	if got[0].ProcessTimeMS != 100 || got[2].ProcessTimeMS != 300 {
		t.Errorf("range is inclusive on both ends: %+v", got)
	}
	if got := ix.ClicksInRange(600, 700); got != nil {
		t.Errorf("empty range returned %+v", got)
	}
}

func TestRecentClicks(t *testing.T) {
	ix, err := Build(nil, []models.MouseClick{
		click(100, 1, 1, true),
		click(150, 1, 1, false), // release, never reported
		click(300, 2, 2, true),
		click(450, 3, 3, true),
	})
	if err != nil {
		t.Fatal(err)
	}
	got := ix.RecentClicks(500, 500)
	if len(got) != 3 {
		t.Fatalf("RecentClicks returned %d clicks, want 3", len(got))
	}
	wantAges := []int64{400, 200, 50}
	for i, c := range got {
		if c.AgeMS != wantAges[i] {
			t.Errorf("click %d age = %d, want %d", i, c.AgeMS, wantAges[i])
		}
	}
	// Only clicks inside the window.
	got = ix.RecentClicks(500, 100)
	if len(got) != 1 || got[0].AgeMS != 50 {
		t.Errorf("RecentClicks(500, 100) = %+v", got)
	}
}
