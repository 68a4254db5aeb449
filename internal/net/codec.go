package net

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/barrage/server/internal/world"
)

// EncodeFrame packs a snapshot into one binary websocket message.
func EncodeFrame(snap *world.Snapshot) ([]byte, error) {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return data, nil
}

// DecodeFrame is the inverse of EncodeFrame.
func DecodeFrame(data []byte) (*world.Snapshot, error) {
	var snap world.Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return &snap, nil
}
