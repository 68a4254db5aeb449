package ecs

// Each2 iterates over entities that have both component A and B, in ascending
// ID order. It walks the smaller store and probes the larger one.
func Each2[A, B any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for _, id := range sa.IDs() {
			if b, ok := sb.data[id]; ok {
				fn(id, sa.data[id], b)
			}
		}
		return
	}
	for _, id := range sb.IDs() {
		if a, ok := sa.data[id]; ok {
			fn(id, a, sb.data[id])
		}
	}
}

// Each3 iterates over entities that have components A, B, and C, in ascending
// ID order.
func Each3[A, B, C any](sa *PtrComponentStore[A], sb *PtrComponentStore[B], sc *PtrComponentStore[C], fn func(EntityID, *A, *B, *C)) {
	// Walk the smallest store
	var ids []EntityID
	switch {
	case sa.Len() <= sb.Len() && sa.Len() <= sc.Len():
		ids = sa.IDs()
	case sb.Len() <= sc.Len():
		ids = sb.IDs()
	default:
		ids = sc.IDs()
	}

	for _, id := range ids {
		a, ok := sa.data[id]
		if !ok {
			continue
		}
		b, ok := sb.data[id]
		if !ok {
			continue
		}
		c, ok := sc.data[id]
		if !ok {
			continue
		}
		fn(id, a, b, c)
	}
}
