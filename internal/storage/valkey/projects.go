package valkey

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ProjectStore persists serialized project snapshots in Valkey. It is the
// autosave sink: the edit store's change signal schedules a debounced write,
// so bursts of edits collapse into one SET.
type ProjectStore struct {
	client   valkey.Client
	debounce time.Duration

	mu     sync.Mutex             // Guards the pending timers map
	timers map[string]*time.Timer // projectID -> pending debounced save
}

// NewProjectStore connects to Valkey and returns the store.
func NewProjectStore(addr string, debounce time.Duration) (*ProjectStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{addr}})
	if err != nil {
		return nil, err
	}
	log.Printf("[Valkey] Connected to %s", addr)
	return &ProjectStore{
		client:   client,
		debounce: debounce,
		timers:   make(map[string]*time.Timer),
	}, nil
}

func key(projectID string) string {
	return "project:" + projectID
}

// Save writes a snapshot immediately.
func (s *ProjectStore) Save(ctx context.Context, projectID string, data []byte) error {
	cmd := s.client.B().Set().Key(key(projectID)).Value(valkey.BinaryString(data)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return err
	}
	log.Printf("[Valkey] Saved project %s (%d bytes)", projectID, len(data))
	return nil
}

// Load reads a snapshot back, returning valkey.Nil inside the error when the
// project was never saved.
func (s *ProjectStore) Load(ctx context.Context, projectID string) ([]byte, error) {
	return s.client.Do(ctx, s.client.B().Get().Key(key(projectID)).Build()).AsBytes()
}

// ScheduleSave coalesces save requests: the fetch callback runs once the
// debounce window closes, reading the snapshot current at that moment.
// A newer request for the same project restarts the window.
func (s *ProjectStore) ScheduleSave(projectID string, fetch func() ([]byte, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[projectID]; ok {
		t.Stop()
	}
	s.timers[projectID] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.timers, projectID)
		s.mu.Unlock()

		data, err := fetch()
		if err != nil {
			log.Printf("[Valkey] Skipping autosave of %s: %v", projectID, err)
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Save(ctx, projectID, data); err != nil {
			log.Printf("[Valkey] Autosave of %s failed: %v", projectID, err)
		}
	})
}

// Close flushes nothing and drops the connection; pending debounced saves
// that have not fired yet are abandoned.
func (s *ProjectStore) Close() {
	s.mu.Lock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.client.Close()
}
