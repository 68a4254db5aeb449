package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barrage/server/internal/world"
)

func TestFrameKeepsCountersAndRemovals(t *testing.T) {
	in := &world.Snapshot{
		Run:      "run",
		Tick:     42,
		Checksum: 0xdeadbeef,
		Removed:  []world.RemovedView{{ID: 9, Reason: "hit"}},
		Counters: map[string]int64{"hits": 2},
	}
	data, err := EncodeFrame(in)
	require.NoError(t, err)
	out, err := DecodeFrame(data)
	require.NoError(t, err)
	assert.Equal(t, in.Removed, out.Removed)
	assert.Equal(t, in.Counters, out.Counters)
	assert.Equal(t, in.Checksum, out.Checksum)

	_, err = DecodeFrame([]byte{0xa1, 'x'})
	assert.Error(t, err)
}
