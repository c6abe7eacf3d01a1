package economy

import (
	"fmt"

	"github.com/villageworks/villagecraft/pkg/errors"
	"github.com/villageworks/villagecraft/pkg/logger"
)

// CurrencyBackend is the currency capability. A nil backend means the
// integration is not installed.
type CurrencyBackend interface {
	HasBalance(playerID string, amount int64) (bool, error)
	Withdraw(playerID string, amount int64, reason string) error
	Deposit(playerID string, amount int64, reason string) error
}

// PointsBackend is the point-balance capability.
type PointsBackend interface {
	HasPoints(playerID string, amount int64) (bool, error)
	TakePoints(playerID string, amount int64, reason string) error
	GivePoints(playerID string, amount int64, reason string) error
}

// ItemBackend is the tagged-inventory-item capability, typically bridging to
// the player's live inventory.
type ItemBackend interface {
	HasTaggedItem(playerID, item string, amount int64) (bool, error)
	RemoveTaggedItem(playerID, item string, amount int64) error
}

// Gateway checks affordability and performs multi-entry debits across the
// registered backends. Backends are selected once at startup; absent ones
// are nil and handled per the configured policy.
type Gateway struct {
	currency CurrencyBackend
	points   PointsBackend
	items    ItemBackend

	// skipMissing treats entries whose backend is absent as trivially
	// satisfied instead of unconditionally failing. Off by default.
	skipMissing bool
}

func NewGateway(currency CurrencyBackend, points PointsBackend, items ItemBackend, skipMissing bool) *Gateway {
	return &Gateway{
		currency:    currency,
		points:      points,
		items:       items,
		skipMissing: skipMissing,
	}
}

// CanAfford reports whether every entry is individually affordable. It is a
// pure read and mutates nothing.
func (g *Gateway) CanAfford(playerID string, costs []CostEntry) (bool, error) {
	for _, cost := range costs {
		ok, err := g.canAffordEntry(playerID, cost)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (g *Gateway) canAffordEntry(playerID string, cost CostEntry) (bool, error) {
	switch cost.Kind {
	case CostCurrency:
		if g.currency == nil {
			return g.missingBackend(string(cost.Kind))
		}
		return g.currency.HasBalance(playerID, cost.Amount)
	case CostPoints:
		if g.points == nil {
			return g.missingBackend(string(cost.Kind))
		}
		return g.points.HasPoints(playerID, cost.Amount)
	case CostItem:
		if g.items == nil {
			return g.missingBackend(string(cost.Kind))
		}
		return g.items.HasTaggedItem(playerID, cost.Item, cost.Amount)
	default:
		return false, errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("unknown cost kind %q", cost.Kind))
	}
}

func (g *Gateway) missingBackend(kind string) (bool, error) {
	if g.skipMissing {
		logger.Debug("payment backend absent, skipping entry per policy", "kind", kind)
		return true, nil
	}
	return false, nil
}

// Deduct re-verifies affordability and then applies every entry's debit in
// sequence. If a debit fails despite the pre-check the operation reports
// failure; already-applied debits cannot be rolled back across heterogeneous
// backends, which is a documented narrow-window limitation.
func (g *Gateway) Deduct(playerID string, costs []CostEntry, reason string) error {
	ok, err := g.CanAfford(playerID, costs)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodeInsufficientFunds, "cannot afford costs")
	}

	for i, cost := range costs {
		if err := g.deductEntry(playerID, cost, reason); err != nil {
			logger.Error("debit failed after affordability pre-check",
				"player", playerID, "entry", i, "kind", cost.Kind, "error", err)
			return errors.Wrap(err, errors.ErrCodeInsufficientFunds,
				fmt.Sprintf("debit failed at entry %d", i))
		}
	}
	return nil
}

func (g *Gateway) deductEntry(playerID string, cost CostEntry, reason string) error {
	switch cost.Kind {
	case CostCurrency:
		if g.currency == nil {
			return g.missingBackendDebit(string(cost.Kind))
		}
		return g.currency.Withdraw(playerID, cost.Amount, reason)
	case CostPoints:
		if g.points == nil {
			return g.missingBackendDebit(string(cost.Kind))
		}
		return g.points.TakePoints(playerID, cost.Amount, reason)
	case CostItem:
		if g.items == nil {
			return g.missingBackendDebit(string(cost.Kind))
		}
		return g.items.RemoveTaggedItem(playerID, cost.Item, cost.Amount)
	default:
		return errors.New(errors.ErrCodeValidationFailed, fmt.Sprintf("unknown cost kind %q", cost.Kind))
	}
}

func (g *Gateway) missingBackendDebit(kind string) error {
	if g.skipMissing {
		return nil
	}
	return errors.New(errors.ErrCodeBackendUnavailable, fmt.Sprintf("%s backend not installed", kind))
}
