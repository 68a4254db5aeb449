package world

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Checksum hashes every live entity's observable state in ascending ID
// order. Two runs fed the same inputs and timesteps produce the same value
// at the same tick.
func (s *State) Checksum() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		_, _ = d.Write(buf[:4])
	}
	putF := func(f float32) { put32(math.Float32bits(f)) }

	binary.LittleEndian.PutUint64(buf[:], uint64(s.tick))
	_, _ = d.Write(buf[:])

	for _, id := range s.Transforms.IDs() {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		_, _ = d.Write(buf[:])

		t, _ := s.Transforms.Get(id)
		putF(t.Position.X())
		putF(t.Position.Y())
		putF(t.Rotation)

		if k, ok := s.Kinematics.Get(id); ok {
			putF(k.LinearSpeed)
			putF(k.LinearAccel)
			putF(k.AngularSpeed)
			putF(k.AngularAccel)
		}
		if p, ok := s.Programs.Get(id); ok {
			put32(uint32(p.Cursor))
			putF(p.Remaining)
		}
		if h, ok := s.Healths.Get(id); ok {
			put32(uint32(h.Current))
		}
	}
	return d.Sum64()
}
