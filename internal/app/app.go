package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/villageworks/villagecraft/internal/config"
	"github.com/villageworks/villagecraft/internal/economy"
	"github.com/villageworks/villagecraft/internal/middleware"
	"github.com/villageworks/villagecraft/internal/repositories"
	"github.com/villageworks/villagecraft/internal/scheduler"
	"github.com/villageworks/villagecraft/internal/services"
	"github.com/villageworks/villagecraft/internal/world"
	"github.com/villageworks/villagecraft/pkg/logger"
)

// Hooks are the integration points a host game server provides. Any of them
// may be nil; sensible no-op defaults are substituted.
type Hooks struct {
	Sessions  world.SessionProvider
	Resolver  world.EntityResolver
	Presenter world.Presenter

	// Currency and Points default to the built-in wallet. Items has no
	// built-in implementation; leaving it nil makes item costs follow the
	// configured missing-backend policy.
	Currency economy.CurrencyBackend
	Points   economy.PointsBackend
	Items    economy.ItemBackend
}

// App assembles repositories, services and schedulers into one running
// simulation.
type App struct {
	Villages  *services.VillageService
	Villagers *services.VillagerService
	Warehouse *services.WarehouseService
	Chains    *services.ChainService
	Visitors  *services.VisitorService
	Wallets   *repositories.WalletRepository
	Gateway   *economy.Gateway

	// ActionLimits throttles player-initiated commands; hosts check it
	// before forwarding a command into the services.
	ActionLimits *middleware.ActionLimiter

	Work         *scheduler.WorkScheduler
	VisitorSched *scheduler.VisitorScheduler
	Executor     *world.Executor
}

func New(db *gorm.DB, game *config.GameConfig, hooks Hooks) *App {
	if hooks.Presenter == nil {
		hooks.Presenter = world.NopPresenter{}
	}
	if hooks.Sessions == nil || hooks.Resolver == nil {
		host := world.NewMemoryHost()
		if hooks.Sessions == nil {
			hooks.Sessions = host
		}
		if hooks.Resolver == nil {
			hooks.Resolver = host
		}
	}

	villageRepo := repositories.NewVillageRepository(db)
	villagerRepo := repositories.NewVillagerRepository(db)
	warehouseRepo := repositories.NewWarehouseRepository(db)
	upgradeRepo := repositories.NewUpgradeRepository(db)
	activityRepo := repositories.NewChainActivityRepository(db)
	visitorRepo := repositories.NewVisitorRepository(db)
	walletRepo := repositories.NewWalletRepository(db)

	if hooks.Currency == nil {
		hooks.Currency = economy.NewWalletCurrencyBackend(walletRepo)
	}
	if hooks.Points == nil {
		hooks.Points = economy.NewWalletPointsBackend(walletRepo)
	}
	gateway := economy.NewGateway(hooks.Currency, hooks.Points, hooks.Items, game.Payment.SkipMissingBackends)

	warehouse := services.NewWarehouseService(warehouseRepo, upgradeRepo, game)
	chains := services.NewChainService(game, villagerRepo, activityRepo)
	villages := services.NewVillageService(villageRepo, villagerRepo, upgradeRepo, gateway, game)
	villagers := services.NewVillagerService(villagerRepo, villages, upgradeRepo, gateway, hooks.Presenter, game)
	visitors := services.NewVisitorService(visitorRepo, villages, warehouse, gateway, hooks.Presenter, game)

	executor := world.NewExecutor()
	work := scheduler.NewWorkScheduler(
		villageRepo, villagers, villages, warehouse, chains, upgradeRepo,
		hooks.Sessions, hooks.Resolver, executor, game,
	)
	visitorSched := scheduler.NewVisitorScheduler(
		villageRepo, villagerRepo, visitors,
		hooks.Sessions, hooks.Resolver, executor, game,
	)

	return &App{
		Villages:     villages,
		Villagers:    villagers,
		Warehouse:    warehouse,
		Chains:       chains,
		Visitors:     visitors,
		Wallets:      walletRepo,
		Gateway:      gateway,
		ActionLimits: middleware.NewActionLimiter(20, time.Minute),
		Work:         work,
		VisitorSched: visitorSched,
		Executor:     executor,
	}
}

// Start brings up the world executor and both schedulers.
func (a *App) Start() {
	a.Executor.Start()
	a.Work.Start()
	a.VisitorSched.Start()
	logger.Info("simulation started")
}

// Stop halts the schedulers first so no new passes are posted, then drains
// the executor.
func (a *App) Stop() {
	a.Work.Stop()
	a.VisitorSched.Stop()
	a.Executor.Stop()
	a.ActionLimits.Close()
	logger.Info("simulation stopped")
}
