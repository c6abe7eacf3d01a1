package world

import "math"

// Position is a point in a named world. The simulation only ever compares
// positions within the same world.
type Position struct {
	X float64
	Y float64
	Z float64
}

func (p Position) DistanceTo(o Position) float64 {
	dx := p.X - o.X
	dy := p.Y - o.Y
	dz := p.Z - o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PlayerSession is a currently-connected player as seen by the scheduler.
type PlayerSession struct {
	PlayerID string
	World    string
	Pos      Position
}

// SessionProvider exposes the set of online player sessions. The host game
// server implements this; tests use MemoryHost.
type SessionProvider interface {
	OnlineSessions() []PlayerSession
}

// EntityState is the live-world view of a backing entity.
type EntityState struct {
	ID    string
	World string
	Pos   Position
}

// EntityResolver resolves a worker or visitor record's entity handle to its
// live state. A false return means the entity is currently absent, which the
// scheduler treats as "temporarily unreachable", not an error.
type EntityResolver interface {
	Lookup(entityID string) (EntityState, bool)
}

// Presenter is the fire-and-forget callback surface into the presentation
// layer. Implementations must be cheap; callers swallow and log failures
// without affecting core state.
type Presenter interface {
	SpawnWorker(entityID, name, profession string) error
	SpawnVisitor(entityID, name, visitorType, worldName string, pos Position) error
	RemoveEntity(entityID string) error
	UpdateLabel(entityID, label string) error
	PlayEffect(worldName string, pos Position, effect string) error
}

// ItemSink is a destination for extracted warehouse items, typically a
// player inventory. CanAccept must be side-effect free.
type ItemSink interface {
	CanAccept(itemType string, amount int64) bool
	Accept(itemType string, amount int64) error
}

// NopPresenter is used when no presentation layer is attached.
type NopPresenter struct{}

func (NopPresenter) SpawnWorker(entityID, name, profession string) error { return nil }
func (NopPresenter) SpawnVisitor(entityID, name, visitorType, worldName string, pos Position) error {
	return nil
}
func (NopPresenter) RemoveEntity(entityID string) error              { return nil }
func (NopPresenter) UpdateLabel(entityID, label string) error        { return nil }
func (NopPresenter) PlayEffect(worldName string, pos Position, effect string) error {
	return nil
}
