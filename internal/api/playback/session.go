package playback

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Vasu1712/reelcut-backend/internal/models"
	"github.com/Vasu1712/reelcut-backend/internal/playback"
	"github.com/Vasu1712/reelcut-backend/internal/storage/memory"
	"github.com/Vasu1712/reelcut-backend/internal/ws"
	"github.com/google/uuid"
)

// tickInterval is the animation step of a headless playback session.
const tickInterval = 16 * time.Millisecond

// Session owns one resolver and the goroutine that drives it. The resolver
// is single-threaded: every command is a closure executed on the session
// loop, so playback state never needs a lock.
type Session struct {
	ID        string
	ProjectID string

	resolver *playback.Resolver
	commands chan func()
	done     chan struct{}
	closed   sync.Once
}

// newSession builds the resolver for a project/bundle pair and starts its
// loop. Frames are broadcast to the hub under the session ID.
func newSession(projectID string, lb *memory.LoadedBundle, sceneSource playback.SceneSource, spring models.SpringConfig, vp playback.Viewport, hub *ws.Hub) *Session {
	id := uuid.NewString()
	clock := playback.NewSimulatedClock(playback.Metadata{
		FPS:        lb.Bundle.Video.FPS,
		Width:      lb.Bundle.Video.Width,
		Height:     lb.Bundle.Video.Height,
		DurationMS: lb.Bundle.Video.DurationMS,
	})

	publish := func(fs playback.FrameState) {
		data, err := json.Marshal(map[string]interface{}{
			"type":  "frameState",
			"frame": fs,
		})
		if err != nil {
			return
		}
		hub.Broadcast <- ws.BroadcastMessage{SessionID: id, Data: data}
		if fs.EndOfStream {
			if eos, err := json.Marshal(map[string]string{"type": "endOfStream"}); err == nil {
				hub.Broadcast <- ws.BroadcastMessage{SessionID: id, Data: eos}
			}
		}
	}

	s := &Session{
		ID:        id,
		ProjectID: projectID,
		resolver:  playback.NewResolver(lb.Bundle, lb.Index, sceneSource, clock, spring, vp, publish),
		commands:  make(chan func(), 16),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// run is the session loop: commands and ticks interleave on one goroutine.
func (s *Session) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case cmd := <-s.commands:
			cmd()
		case now := <-ticker.C:
			if s.resolver.Playing() {
				s.resolver.Tick(now)
			}
		case <-s.done:
			return
		}
	}
}

// do runs fn on the session loop and waits for it to finish.
func (s *Session) do(fn func(r *playback.Resolver)) {
	ack := make(chan struct{})
	select {
	case s.commands <- func() {
		fn(s.resolver)
		close(ack)
	}:
		<-ack
	case <-s.done:
	}
}

// Close stops the session loop.
func (s *Session) Close() {
	s.closed.Do(func() {
		close(s.done)
		log.Printf("[Playback] Closed session %s", s.ID)
	})
}
