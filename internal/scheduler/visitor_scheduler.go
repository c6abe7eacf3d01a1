package scheduler

import (
	"math/rand"
	"sync"
	"time"

	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/internal/repositories"
	"github.com/villageworks/villagecraft/internal/services"
	"github.com/villageworks/villagecraft/internal/world"
	"github.com/villageworks/villagecraft/pkg/errors"
	"github.com/villageworks/villagecraft/pkg/logger"
)

// FestivalWindow reports whether festival visitors may appear right now.
// The default follows the real-world weekend; hosts can inject their own
// calendar.
type FestivalWindow func(now time.Time) bool

func weekendWindow(now time.Time) bool {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	default:
		return false
	}
}

// VisitorScheduler periodically rolls visitor spawns for prosperous
// villages and sweeps out expired visitors on an independent cadence.
type VisitorScheduler struct {
	villages  *repositories.VillageRepository
	villagers *repositories.VillagerRepository
	visitors  *services.VisitorService
	sessions  world.SessionProvider
	resolver  world.EntityResolver
	executor  *world.Executor
	cfg       *config.GameConfig

	festival  FestivalWindow
	now       func() time.Time
	randFloat func() float64
	randIntn  func(n int) int

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewVisitorScheduler(
	villages *repositories.VillageRepository,
	villagers *repositories.VillagerRepository,
	visitors *services.VisitorService,
	sessions world.SessionProvider,
	resolver world.EntityResolver,
	executor *world.Executor,
	cfg *config.GameConfig,
) *VisitorScheduler {
	return &VisitorScheduler{
		villages:  villages,
		villagers: villagers,
		visitors:  visitors,
		sessions:  sessions,
		resolver:  resolver,
		executor:  executor,
		cfg:       cfg,
		festival:  weekendWindow,
		now:       time.Now,
		randFloat: rand.Float64,
		randIntn:  rand.Intn,
		stop:      make(chan struct{}),
	}
}

func (s *VisitorScheduler) SetClock(now func() time.Time) {
	s.now = now
}

func (s *VisitorScheduler) SetRand(randFloat func() float64, randIntn func(n int) int) {
	s.randFloat = randFloat
	s.randIntn = randIntn
}

func (s *VisitorScheduler) SetFestivalWindow(window FestivalWindow) {
	s.festival = window
}

func (s *VisitorScheduler) Start() {
	if !s.cfg.Visitors.Enabled {
		logger.Info("visitor scheduler disabled by configuration")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		spawnTicker := time.NewTicker(s.cfg.VisitorCheckInterval())
		cleanupTicker := time.NewTicker(s.cfg.VisitorCleanupInterval())
		defer spawnTicker.Stop()
		defer cleanupTicker.Stop()
		for {
			select {
			case <-spawnTicker.C:
				s.dispatchSpawn()
			case <-cleanupTicker.C:
				s.dispatchCleanup()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *VisitorScheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// Both passes touch live-world state, so the ticker goroutine posts them to
// the world executor instead of running them in place.
func (s *VisitorScheduler) dispatchSpawn() {
	if err := s.executor.Do(s.RunSpawnPass); err != nil {
		logger.Warn("visitor spawn pass not executed", "error", err)
	}
}

func (s *VisitorScheduler) dispatchCleanup() {
	if err := s.executor.Do(s.RunCleanup); err != nil {
		logger.Warn("visitor cleanup not executed", "error", err)
	}
}

// RunSpawnPass rolls a visitor spawn for every eligible village. It must run
// on the world executor.
func (s *VisitorScheduler) RunSpawnPass() {
	villages, err := s.villages.GetAll()
	if err != nil {
		logger.Error("visitor pass: failed to list villages", "error", err)
		return
	}

	online := make(map[string]world.PlayerSession)
	for _, session := range s.sessions.OnlineSessions() {
		online[session.PlayerID] = session
	}

	for i := range villages {
		village := &villages[i]
		owner, ok := online[village.OwnerID]
		if !ok {
			continue
		}
		if err := s.trySpawn(village, owner); err != nil && errors.Code(err) != errors.ErrCodeAlreadyExists {
			logger.Warn("visitor pass: spawn failed", "village", village.ID, "error", err)
		}
	}
}

func (s *VisitorScheduler) trySpawn(village *models.Village, owner world.PlayerSession) error {
	if village.Prosperity < s.cfg.Visitors.ProsperityThreshold {
		return nil
	}
	active, err := s.visitors.HasActive(village.ID)
	if err != nil {
		return err
	}
	if active {
		return nil
	}
	if s.randFloat() >= s.cfg.Visitors.SpawnProbability {
		return nil
	}

	visitorType, ok := s.pickType()
	if !ok {
		return nil
	}
	worldName, pos, ok := s.spawnLocation(village, owner)
	if !ok {
		return nil
	}
	_, err = s.visitors.Spawn(village, visitorType, worldName, pos)
	return err
}

// pickType chooses uniformly among the enabled visitor types, excluding
// festivals outside their window.
func (s *VisitorScheduler) pickType() (string, bool) {
	candidates := make([]string, 0, len(s.cfg.Visitors.Types))
	for _, name := range []string{models.VisitorTypeMerchant, models.VisitorTypeTraveler, models.VisitorTypeFestival} {
		typeCfg, ok := s.cfg.Visitors.Types[name]
		if !ok || !typeCfg.Enabled {
			continue
		}
		if name == models.VisitorTypeFestival && !s.festival(s.now()) {
			continue
		}
		candidates = append(candidates, name)
	}
	if len(candidates) == 0 {
		return "", false
	}
	return candidates[s.randIntn(len(candidates))], true
}

// spawnLocation anchors the visitor near the owner, falling back to one of
// the village's live workers. With neither present this cycle is skipped.
func (s *VisitorScheduler) spawnLocation(village *models.Village, owner world.PlayerSession) (string, world.Position, bool) {
	if owner.World != "" {
		return owner.World, s.jitter(owner.Pos), true
	}
	workers, err := s.villagers.GetByVillage(village.ID)
	if err != nil {
		logger.Warn("visitor pass: failed to list workers", "village", village.ID, "error", err)
		return "", world.Position{}, false
	}
	for i := range workers {
		if state, present := s.resolver.Lookup(workers[i].EntityID); present {
			return state.World, s.jitter(state.Pos), true
		}
	}
	return "", world.Position{}, false
}

// jitter offsets the anchor a few blocks so the visitor doesn't spawn on
// top of it.
func (s *VisitorScheduler) jitter(pos world.Position) world.Position {
	return world.Position{
		X: pos.X + float64(s.randIntn(7)-3),
		Y: pos.Y,
		Z: pos.Z + float64(s.randIntn(7)-3),
	}
}

// RunCleanup expires stale visitors. It must run on the world executor:
// removing a visitor's presentation entity mutates live-world state.
func (s *VisitorScheduler) RunCleanup() {
	expired, err := s.visitors.ExpireVisitors()
	if err != nil {
		logger.Error("visitor cleanup failed", "error", err)
		return
	}
	if expired > 0 {
		logger.Info("expired visitors removed", "count", expired)
	}
}
