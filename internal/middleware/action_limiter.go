package middleware

import (
	"sync"
	"time"
)

// ActionLimiter throttles player-initiated actions (recruiting, upgrades,
// deal accepts) in memory. Hosts consult it before forwarding a command to
// the simulation so a spamming client cannot hammer the database.
type ActionLimiter struct {
	playerLimits map[string]*windowCount
	mu           sync.RWMutex

	maxActions int
	window     time.Duration

	stop chan struct{}
	once sync.Once
}

type windowCount struct {
	actions   int
	resetTime time.Time
}

func NewActionLimiter(maxActions int, window time.Duration) *ActionLimiter {
	l := &ActionLimiter{
		playerLimits: make(map[string]*windowCount),
		maxActions:   maxActions,
		window:       window,
		stop:         make(chan struct{}),
	}

	go l.cleanup()

	return l
}

// Allow records one action for the player and reports whether it fits the
// current window.
func (l *ActionLimiter) Allow(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	limit, exists := l.playerLimits[playerID]
	if !exists || now.After(limit.resetTime) {
		l.playerLimits[playerID] = &windowCount{
			actions:   1,
			resetTime: now.Add(l.window),
		}
		return true
	}

	if limit.actions >= l.maxActions {
		return false
	}

	limit.actions++
	return true
}

// Remaining returns how many actions the player has left in the window.
func (l *ActionLimiter) Remaining(playerID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	limit, exists := l.playerLimits[playerID]
	if !exists || time.Now().After(limit.resetTime) {
		return l.maxActions
	}

	remaining := l.maxActions - limit.actions
	if remaining < 0 {
		return 0
	}
	return remaining
}

// cleanup removes expired entries
func (l *ActionLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for playerID, limit := range l.playerLimits {
				if now.After(limit.resetTime) {
					delete(l.playerLimits, playerID)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// Reset clears all limits (useful for testing)
func (l *ActionLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.playerLimits = make(map[string]*windowCount)
}

// Close stops the background cleanup.
func (l *ActionLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}
