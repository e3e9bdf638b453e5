package desktop

import "sync"

// Registry hands out one Manager per login session, created lazily on
// first use and dropped on logout. Desktop state is in-memory only; it
// does not survive a restart.
type Registry struct {
	mu             sync.Mutex
	viewportWidth  int
	viewportHeight int
	managers       map[string]*Manager
}

func NewRegistry(viewportWidth, viewportHeight int) *Registry {
	return &Registry{
		viewportWidth:  viewportWidth,
		viewportHeight: viewportHeight,
		managers:       make(map[string]*Manager),
	}
}

func (r *Registry) Get(sessionToken string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.managers[sessionToken]
	if !ok {
		m = NewManager(r.viewportWidth, r.viewportHeight)
		r.managers[sessionToken] = m
	}
	return m
}

func (r *Registry) Drop(sessionToken string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.managers, sessionToken)
}
