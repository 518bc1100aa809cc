package world

import "sync/atomic"

// ID ranges:
//
//	0x00000000 - 0x0FFFFFFF: reserved (0 = invalid)
//	0x10000000 - 0x1FFFFFFF: players
//	0x20000000 - 0x2FFFFFFF: NPCs
const (
	playerIDBase uint32 = 0x10000000
	npcIDBase    uint32 = 0x20000000
)

// ObjectIDGenerator hands out unique unit object IDs.
type ObjectIDGenerator struct {
	nextPlayerID atomic.Uint32
	nextNpcID    atomic.Uint32
}

// NewObjectIDGenerator creates a new ID generator.
func NewObjectIDGenerator() *ObjectIDGenerator {
	gen := &ObjectIDGenerator{}
	gen.nextPlayerID.Store(playerIDBase)
	gen.nextNpcID.Store(npcIDBase)
	return gen
}

// NextPlayerID returns the next player object ID.
func (g *ObjectIDGenerator) NextPlayerID() uint32 {
	return g.nextPlayerID.Add(1)
}

// NextNpcID returns the next NPC object ID.
func (g *ObjectIDGenerator) NextNpcID() uint32 {
	return g.nextNpcID.Add(1)
}

// IsPlayerID reports whether id was issued from the player range.
func IsPlayerID(id uint32) bool {
	return id > playerIDBase && id < npcIDBase
}
