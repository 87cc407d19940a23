package memory

import (
	"log"  // For logging messages
	"sync" // For RWMutex to handle concurrent access

	"github.com/Vasu1712/reelcut-backend/internal/bundle"
	"github.com/Vasu1712/reelcut-backend/internal/events"
	"github.com/Vasu1712/reelcut-backend/internal/models"
	"github.com/google/uuid" // Import uuid to generate unique IDs
)

// LoadedBundle pairs a recording bundle with the event index built over its
// input streams. Both are immutable after load.
type LoadedBundle struct {
	ID     string
	Bundle *models.RecordingBundle
	Index  *events.Index
}

// BundleStore manages the recording bundles loaded into memory.
type BundleStore struct {
	mu      sync.RWMutex             // Read-write mutex for concurrent access to the bundles map
	bundles map[string]*LoadedBundle // Map to store loaded bundles by their handle ID
}

// NewBundleStore creates and returns a new instance of BundleStore.
func NewBundleStore() *BundleStore {
	return &BundleStore{
		bundles: make(map[string]*LoadedBundle),
	}
}

// Open loads a bundle directory, builds its event index and registers the
// result under a fresh handle ID. The index build is pure CPU, so callers
// may run Open on a background goroutine.
func (s *BundleStore) Open(path string) (*LoadedBundle, error) {
	b, ix, err := bundle.Load(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lb := &LoadedBundle{
		ID:     uuid.NewString(),
		Bundle: b,
		Index:  ix,
	}
	s.bundles[lb.ID] = lb

	log.Printf("[Bundle] Registered bundle: ID=%s, Path=%s", lb.ID, path)
	return lb, nil
}

// Get retrieves a loaded bundle by its handle ID.
func (s *BundleStore) Get(bundleID string) *LoadedBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.bundles[bundleID]
}

// Close drops a bundle from memory.
func (s *BundleStore) Close(bundleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.bundles, bundleID)
	log.Printf("[Bundle] Closed bundle: ID=%s", bundleID)
}
