package world

import "sync"

// MemoryHost is an in-memory SessionProvider and EntityResolver. It backs
// tests and headless runs where no real game server is attached.
type MemoryHost struct {
	mu       sync.RWMutex
	sessions map[string]PlayerSession
	entities map[string]EntityState
}

func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		sessions: make(map[string]PlayerSession),
		entities: make(map[string]EntityState),
	}
}

func (h *MemoryHost) SetSession(session PlayerSession) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[session.PlayerID] = session
}

func (h *MemoryHost) RemoveSession(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, playerID)
}

func (h *MemoryHost) SetEntity(entity EntityState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entities[entity.ID] = entity
}

func (h *MemoryHost) RemoveEntity(entityID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.entities, entityID)
}

func (h *MemoryHost) OnlineSessions() []PlayerSession {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sessions := make([]PlayerSession, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

func (h *MemoryHost) Lookup(entityID string) (EntityState, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entity, ok := h.entities[entityID]
	return entity, ok
}
