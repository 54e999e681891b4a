package playback

import (
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Listener receives every published AppState on the goroutine that produced it.
type Listener func(AppState)

// Registry keeps listeners in registration order.
type Registry struct {
	mu        sync.RWMutex
	order     []uuid.UUID
	listeners map[uuid.UUID]Listener
}

func NewRegistry() *Registry {
	return &Registry{listeners: make(map[uuid.UUID]Listener)}
}

// Add registers fn and returns its subscription id.
func (r *Registry) Add(fn Listener) uuid.UUID {
	id := uuid.New()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, id)
	r.listeners[id] = fn
	return id
}

// Remove reports whether id was registered.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listeners[id]; !ok {
		return false
	}
	delete(r.listeners, id)
	r.order = lo.Without(r.order, id)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Notify calls every listener in order. The lock is not held while listeners run.
func (r *Registry) Notify(state AppState) {
	r.mu.RLock()
	listeners := lo.FilterMap(r.order, func(id uuid.UUID, _ int) (Listener, bool) {
		fn, ok := r.listeners[id]
		return fn, ok
	})
	r.mu.RUnlock()

	for _, fn := range listeners {
		fn(state)
	}
}
