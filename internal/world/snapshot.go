package world

import (
	"github.com/barrage/server/internal/core/ecs"
)

// EntityView is the wire form of one live entity.
type EntityView struct {
	ID       uint64  `msgpack:"id"`
	X        float32 `msgpack:"x"`
	Y        float32 `msgpack:"y"`
	Rotation float32 `msgpack:"rot"`
	HalfW    float32 `msgpack:"hw,omitempty"`
	HalfH    float32 `msgpack:"hh,omitempty"`
	Tags     uint32  `msgpack:"tags,omitempty"`
	Health   *int32  `msgpack:"hp,omitempty"`
}

// RemovedView is the wire form of one removal.
type RemovedView struct {
	ID     uint64 `msgpack:"id"`
	Reason string `msgpack:"reason"`
}

// Snapshot is the full arena state after a commit.
type Snapshot struct {
	Run      string           `msgpack:"run"`
	Tick     int64            `msgpack:"tick"`
	Checksum uint64           `msgpack:"sum"`
	Entities []EntityView     `msgpack:"entities"`
	Removed  []RemovedView    `msgpack:"removed,omitempty"`
	Counters map[string]int64 `msgpack:"counters,omitempty"`
	TagNames []string         `msgpack:"tag_names,omitempty"`
}

// Snapshot captures the current arena in ascending ID order, including
// whatever the last commit removed.
func (s *State) Snapshot(run string) *Snapshot {
	ids := s.Transforms.IDs()
	snap := &Snapshot{
		Run:      run,
		Tick:     s.tick,
		Checksum: s.Checksum(),
		Entities: make([]EntityView, 0, len(ids)),
	}
	if s.tags != nil {
		snap.TagNames = s.tags.names
	}
	for _, id := range ids {
		snap.Entities = append(snap.Entities, s.view(id))
	}
	for _, r := range s.last.Removed {
		snap.Removed = append(snap.Removed, RemovedView{ID: uint64(r.ID), Reason: r.Reason.String()})
	}
	return snap
}

func (s *State) view(id ecs.EntityID) EntityView {
	t, _ := s.Transforms.Get(id)
	v := EntityView{
		ID:       uint64(id),
		X:        t.Position.X(),
		Y:        t.Position.Y(),
		Rotation: t.Rotation,
	}
	if c, ok := s.Colliders.Get(id); ok {
		v.HalfW = c.HalfExtents.X()
		v.HalfH = c.HalfExtents.Y()
	}
	if tg, ok := s.Tags.Get(id); ok {
		v.Tags = uint32(tg.Mask)
	}
	if h, ok := s.Healths.Get(id); ok {
		hp := h.Current
		v.Health = &hp
	}
	return v
}
