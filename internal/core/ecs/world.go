package ecs

// World is the top-level ECS container. It owns the entity pool, the component
// registry, and a deferred destruction queue flushed at the commit phase of each tick.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
// A second request for the same entity within a tick is a no-op and returns false,
// as does a request for a handle that is no longer alive.
func (w *World) MarkForDestruction(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	if _, dup := w.queued[id]; dup {
		return false
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
	return true
}

// Pending reports whether id is queued for destruction this tick.
func (w *World) Pending(id EntityID) bool {
	_, ok := w.queued[id]
	return ok
}

// FlushDestroyQueue destroys all queued entities, clears their components and
// returns the removed IDs in request order.
func (w *World) FlushDestroyQueue() []EntityID {
	if len(w.destroyQueue) == 0 {
		return nil
	}
	removed := make([]EntityID, 0, len(w.destroyQueue))
	for _, id := range w.destroyQueue {
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		delete(w.queued, id)
		removed = append(removed, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return removed
}
