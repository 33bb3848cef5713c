// Package session holds the explicit, observable authentication state of one
// client connection. The access guard is re-run against it whenever it changes.
package session

import (
	"sync"

	"github.com/sevakendra/portal-api/internal/core/domain"
)

// Snapshot is an immutable view of the state.
type Snapshot struct {
	Loading   bool
	Principal *domain.Principal
	// Role is empty when it could not be determined.
	Role domain.Role
}

// GuardInput converts s into the input of domain.Authorize.
func (s Snapshot) GuardInput() domain.SessionState {
	return domain.SessionState{
		Loading:       s.Loading,
		Authenticated: s.Principal != nil,
		Role:          s.Role,
	}
}

// State is safe for concurrent use. Subscribers run synchronously on the
// goroutine that changed the state, outside the internal lock.
type State struct {
	mu     sync.Mutex
	snap   Snapshot
	subs   map[int]func(Snapshot)
	nextID int
}

// New returns a state that is still loading.
func New() *State {
	return &State{
		snap: Snapshot{Loading: true},
		subs: make(map[int]func(Snapshot)),
	}
}

func (s *State) Current() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Set records a resolved session. A nil principal means signed out.
func (s *State) Set(principal *domain.Principal, role domain.Role) {
	if principal == nil {
		role = ""
	}
	s.update(Snapshot{Principal: principal, Role: role})
}

// Reset puts the state back into loading, e.g. while a change is re-checked.
func (s *State) Reset() {
	s.update(Snapshot{Loading: true})
}

// Subscribe registers fn for every subsequent change and returns a function
// that removes it.
func (s *State) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Decide runs the access guard for a citizen (requireProvider=false) or
// provider view against the current state.
func (s *State) Decide(requireProvider bool) domain.Decision {
	return domain.Authorize(s.Current().GuardInput(), requireProvider)
}

func (s *State) update(next Snapshot) {
	s.mu.Lock()
	s.snap = next
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(next)
	}
}
