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
	"github.com/villageworks/villagecraft/pkg/logger"
)

// Prosperity granted to the village for each successful production cycle.
const productionProsperity = 1

// WorkScheduler drives periodic production for every worker. A cheap poll
// tick checks per-worker due times; a worker whose owner is offline keeps
// its timer untouched, so nothing accrues while nobody plays.
type WorkScheduler struct {
	villages  *repositories.VillageRepository
	villagers *services.VillagerService
	villageSv *services.VillageService
	warehouse *services.WarehouseService
	chains    *services.ChainService
	upgrades  *repositories.UpgradeRepository
	sessions  world.SessionProvider
	resolver  world.EntityResolver
	executor  *world.Executor
	cfg       *config.GameConfig

	// due holds each worker's next production time. Workers enter the map
	// lazily the first time they are seen, one interval out.
	due map[uint]time.Time

	now       func() time.Time
	randFloat func() float64
	randIntn  func(n int) int

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func NewWorkScheduler(
	villages *repositories.VillageRepository,
	villagers *services.VillagerService,
	villageSv *services.VillageService,
	warehouse *services.WarehouseService,
	chains *services.ChainService,
	upgrades *repositories.UpgradeRepository,
	sessions world.SessionProvider,
	resolver world.EntityResolver,
	executor *world.Executor,
	cfg *config.GameConfig,
) *WorkScheduler {
	return &WorkScheduler{
		villages:  villages,
		villagers: villagers,
		villageSv: villageSv,
		warehouse: warehouse,
		chains:    chains,
		upgrades:  upgrades,
		sessions:  sessions,
		resolver:  resolver,
		executor:  executor,
		cfg:       cfg,
		due:       make(map[uint]time.Time),
		now:       time.Now,
		randFloat: rand.Float64,
		randIntn:  rand.Intn,
		stop:      make(chan struct{}),
	}
}

// SetClock overrides the time source for tests.
func (s *WorkScheduler) SetClock(now func() time.Time) {
	s.now = now
}

// SetRand overrides the random sources for tests.
func (s *WorkScheduler) SetRand(randFloat func() float64, randIntn func(n int) int) {
	s.randFloat = randFloat
	s.randIntn = randIntn
}

func (s *WorkScheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.WorkPollInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.executor.Do(s.RunPass); err != nil {
					logger.Warn("work pass not executed", "error", err)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *WorkScheduler) Stop() {
	s.once.Do(func() { close(s.stop) })
	s.wg.Wait()
}

// RunPass executes one production sweep over every village. It must run on
// the world executor, where sessions and entities are safe to read.
func (s *WorkScheduler) RunPass() {
	villages, err := s.villages.GetAll()
	if err != nil {
		logger.Error("work pass: failed to list villages", "error", err)
		return
	}

	online := make(map[string]world.PlayerSession)
	for _, session := range s.sessions.OnlineSessions() {
		online[session.PlayerID] = session
	}

	now := s.now()
	for i := range villages {
		village := &villages[i]
		owner, ok := online[village.OwnerID]
		if !ok {
			// Timers freeze while the owner is away.
			continue
		}
		s.passVillage(village, owner, now)
	}

	s.pruneDeparted()
}

// pruneDeparted drops due-map entries whose worker no longer exists, so
// removed or retired workers do not leave timers behind. Offline villages
// keep theirs: their workers are still real, just frozen.
func (s *WorkScheduler) pruneDeparted() {
	if len(s.due) == 0 {
		return
	}
	ids, err := s.villagers.AllIDs()
	if err != nil {
		logger.Warn("work pass: failed to list worker ids", "error", err)
		return
	}
	alive := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		alive[id] = struct{}{}
	}
	for id := range s.due {
		if _, ok := alive[id]; !ok {
			delete(s.due, id)
		}
	}
}

func (s *WorkScheduler) passVillage(village *models.Village, owner world.PlayerSession, now time.Time) {
	workers, err := s.villagers.ByVillage(village.ID)
	if err != nil {
		logger.Error("work pass: failed to list workers", "village", village.ID, "error", err)
		return
	}
	for i := range workers {
		s.passWorker(village, &workers[i], owner, now)
	}
}

// passWorker handles one worker's cycle. A panic here is contained so one
// bad worker cannot starve the rest of the pass.
func (s *WorkScheduler) passWorker(village *models.Village, worker *models.Villager, owner world.PlayerSession, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("work pass: panic handling worker", "villager", worker.ID, "panic", r)
		}
	}()

	next, seen := s.due[worker.ID]
	if !seen {
		s.due[worker.ID] = now.Add(s.cfg.WorkInterval(worker.Profession))
		return
	}
	if now.Before(next) {
		return
	}
	// Re-arm unconditionally: a failed roll or an out-of-range owner costs
	// the cycle, it does not bank it.
	s.due[worker.ID] = now.Add(s.cfg.WorkInterval(worker.Profession))

	if !s.workerInRange(worker, owner) {
		return
	}
	s.produce(village, worker)
}

func (s *WorkScheduler) workerInRange(worker *models.Villager, owner world.PlayerSession) bool {
	state, present := s.resolver.Lookup(worker.EntityID)
	if !present {
		return false
	}
	if state.World != owner.World {
		return false
	}
	workRange := s.cfg.WorkRange(worker.Profession) + s.rangeBonus(worker)
	return state.Pos.DistanceTo(owner.Pos) <= workRange
}

func (s *WorkScheduler) rangeBonus(worker *models.Villager) float64 {
	profCfg, ok := s.cfg.Profession(worker.Profession)
	if !ok {
		return 0
	}
	skills, err := s.upgrades.VillagerSkills(worker.ID)
	if err != nil {
		logger.Warn("work pass: failed to load skills", "villager", worker.ID, "error", err)
		return 0
	}
	var bonus float64
	for skillID, level := range skills {
		skill, ok := profCfg.Skills[skillID]
		if !ok || skill.Effect != config.SkillEffectRangeBonus {
			continue
		}
		bonus += skill.PerLevel * float64(level)
	}
	return bonus
}

func (s *WorkScheduler) outputBonus(worker *models.Villager, profCfg config.ProfessionConfig) int64 {
	skills, err := s.upgrades.VillagerSkills(worker.ID)
	if err != nil {
		logger.Warn("work pass: failed to load skills", "villager", worker.ID, "error", err)
		return 0
	}
	var bonus float64
	for skillID, level := range skills {
		skill, ok := profCfg.Skills[skillID]
		if !ok || skill.Effect != config.SkillEffectOutputBonus {
			continue
		}
		bonus += skill.PerLevel * float64(level)
	}
	return int64(bonus)
}

func (s *WorkScheduler) produce(village *models.Village, worker *models.Villager) {
	profCfg, ok := s.cfg.Profession(worker.Profession)
	if !ok || len(profCfg.WorkItems) == 0 {
		return
	}
	if s.randFloat() >= profCfg.Probability {
		return
	}

	amount := profCfg.BaseAmount + int64(worker.Level-1) + s.outputBonus(worker, profCfg)
	if amount <= 0 {
		return
	}
	itemType := profCfg.WorkItems[s.randIntn(len(profCfg.WorkItems))]

	output := s.chains.Transform(village.ID, worker.Profession, []services.ItemStack{
		{Type: itemType, Amount: amount},
	})
	for _, stack := range output {
		stored, err := s.warehouse.Deposit(village, stack.Type, stack.Amount)
		if err != nil {
			logger.Error("work pass: deposit failed",
				"village", village.ID, "item", stack.Type, "error", err)
			continue
		}
		if stored < stack.Amount {
			logger.Debug("work pass: warehouse full, overflow discarded",
				"village", village.ID, "item", stack.Type, "discarded", stack.Amount-stored)
		}
	}

	if err := s.villagers.GrantExperience(worker, s.cfg.Villager.WorkExperience); err != nil {
		logger.Warn("work pass: failed to grant worker experience", "villager", worker.ID, "error", err)
	}
	if err := s.villageSv.AddExperience(village.ID, s.cfg.Villager.WorkExperience); err != nil {
		logger.Warn("work pass: failed to grant village experience", "village", village.ID, "error", err)
	}
	if err := s.villageSv.AddProsperity(village.ID, productionProsperity); err != nil {
		logger.Warn("work pass: failed to grant prosperity", "village", village.ID, "error", err)
	}
}

// Forget drops a worker's timer immediately; RunPass also prunes timers for
// workers that no longer exist.
func (s *WorkScheduler) Forget(villagerID uint) {
	delete(s.due, villagerID)
}
