package edit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/Vasu1712/reelcut-backend/internal/models"
)

// Subscriber receives the previous and the newly published project snapshot
// after every successful mutation. Both values are immutable; subscribers
// must not modify them.
type Subscriber func(old, new *models.Project)

// Store is the single writer of project state. It holds the current
// immutable snapshot per project; readers get the published pointer and stay
// consistent even while an edit is in flight.
type Store struct {
	mu       sync.RWMutex               // Guards the snapshot map and subscriber list
	projects map[string]*models.Project // projectID -> current immutable snapshot
	subs     []Subscriber               // Notified after every successful edit
}

// NewStore creates and returns a new instance of Store.
func NewStore() *Store {
	return &Store{
		projects: make(map[string]*models.Project),
	}
}

// Put registers a project snapshot (a freshly created or loaded project) and
// returns its ID.
func (s *Store) Put(p *models.Project) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.ID] = p
	log.Printf("[Project] Registered project: ID=%s, Name=%s, Scenes=%d", p.ID, p.Name, len(p.Scenes))
	return p.ID
}

// Get returns the current snapshot of a project, or nil if unknown. The
// returned value must be treated as read-only.
func (s *Store) Get(projectID string) *models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projects[projectID]
}

// Subscribe adds a change listener. Listeners run synchronously on the
// editing goroutine, in registration order.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Apply runs an edit against a deep copy of the current snapshot. If the
// operation and the invariant check both succeed, the copy becomes the new
// published snapshot and subscribers are notified with (old, new); otherwise
// the old snapshot stays published and the error is returned. Edits are
// never partially applied.
func (s *Store) Apply(projectID string, op func(p *models.Project) error) (*models.Project, error) {
	s.mu.Lock()
	old, ok := s.projects[projectID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	next := old.Clone()
	if err := op(next); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	for i := range next.Scenes {
		repairLayouts(&next.Scenes[i])
		if err := validateScene(&next.Scenes[i]); err != nil {
			s.mu.Unlock()
			return nil, err
		}
	}
	s.projects[projectID] = next
	subs := append([]Subscriber(nil), s.subs...)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(old, next)
	}
	return next, nil
}

// ApplyToScene is Apply scoped to one scene of the project, addressed by
// scene ID.
func (s *Store) ApplyToScene(projectID, sceneID string, op func(sc *models.Scene) error) (*models.Project, error) {
	return s.Apply(projectID, func(p *models.Project) error {
		for i := range p.Scenes {
			if p.Scenes[i].ID == sceneID {
				return op(&p.Scenes[i])
			}
		}
		return fmt.Errorf("%w: scene %s", ErrNotFound, sceneID)
	})
}

// SnapshotProject serializes the current snapshot of a project. The bytes
// are the persistence collaborator's to store; the tree layout is the data
// model itself.
func (s *Store) SnapshotProject(projectID string) ([]byte, error) {
	p := s.Get(projectID)
	if p == nil {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, projectID)
	}
	return json.Marshal(p)
}

// LoadProject deserializes project bytes produced by SnapshotProject,
// validates every scene and registers the result.
func (s *Store) LoadProject(data []byte) (*models.Project, error) {
	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBundleInvalid, err)
	}
	if p.ID == "" {
		return nil, fmt.Errorf("%w: project has no ID", ErrBundleInvalid)
	}
	for i := range p.Scenes {
		if err := validateScene(&p.Scenes[i]); err != nil {
			return nil, err
		}
	}
	s.Put(&p)
	return &p, nil
}
