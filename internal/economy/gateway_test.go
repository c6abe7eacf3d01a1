package economy

import (
	"testing"

	"github.com/villageworks/villagecraft/pkg/errors"
)

type fakeCurrency struct {
	balance   int64
	withdrawn int64
}

func (f *fakeCurrency) HasBalance(playerID string, amount int64) (bool, error) {
	return f.balance >= amount, nil
}

func (f *fakeCurrency) Withdraw(playerID string, amount int64, reason string) error {
	if f.balance < amount {
		return errors.New(errors.ErrCodeInsufficientFunds, "insufficient balance")
	}
	f.balance -= amount
	f.withdrawn += amount
	return nil
}

func (f *fakeCurrency) Deposit(playerID string, amount int64, reason string) error {
	f.balance += amount
	return nil
}

type fakePoints struct {
	points int64
	taken  int64
}

func (f *fakePoints) HasPoints(playerID string, amount int64) (bool, error) {
	return f.points >= amount, nil
}

func (f *fakePoints) TakePoints(playerID string, amount int64, reason string) error {
	if f.points < amount {
		return errors.New(errors.ErrCodeInsufficientFunds, "insufficient points")
	}
	f.points -= amount
	f.taken += amount
	return nil
}

func (f *fakePoints) GivePoints(playerID string, amount int64, reason string) error {
	f.points += amount
	return nil
}

func TestGateway_CanAfford(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		points  int64
		costs   []CostEntry
		want    bool
	}{
		{
			name:    "affordable mixed costs",
			balance: 100,
			points:  20,
			costs: []CostEntry{
				{Kind: CostCurrency, Amount: 50},
				{Kind: CostPoints, Amount: 10},
			},
			want: true,
		},
		{
			name:    "currency short",
			balance: 40,
			points:  20,
			costs:   []CostEntry{{Kind: CostCurrency, Amount: 50}},
			want:    false,
		},
		{
			name:    "points short",
			balance: 100,
			points:  5,
			costs: []CostEntry{
				{Kind: CostCurrency, Amount: 50},
				{Kind: CostPoints, Amount: 10},
			},
			want: false,
		},
		{
			name:    "empty costs are free",
			balance: 0,
			costs:   nil,
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := NewGateway(&fakeCurrency{balance: tt.balance}, &fakePoints{points: tt.points}, nil, false)
			got, err := gw.CanAfford("player", tt.costs)
			if err != nil {
				t.Fatalf("CanAfford() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CanAfford() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGateway_Deduct(t *testing.T) {
	currency := &fakeCurrency{balance: 100}
	points := &fakePoints{points: 20}
	gw := NewGateway(currency, points, nil, false)

	costs := []CostEntry{
		{Kind: CostCurrency, Amount: 60},
		{Kind: CostPoints, Amount: 15},
	}
	if err := gw.Deduct("player", costs, "recruit"); err != nil {
		t.Fatalf("Deduct() error = %v", err)
	}

	if currency.balance != 40 {
		t.Errorf("currency balance = %d, want 40", currency.balance)
	}
	if points.points != 5 {
		t.Errorf("points = %d, want 5", points.points)
	}
}

func TestGateway_Deduct_InsufficientAppliesNothing(t *testing.T) {
	currency := &fakeCurrency{balance: 100}
	points := &fakePoints{points: 5}
	gw := NewGateway(currency, points, nil, false)

	costs := []CostEntry{
		{Kind: CostCurrency, Amount: 60},
		{Kind: CostPoints, Amount: 15}, // unaffordable
	}
	err := gw.Deduct("player", costs, "recruit")
	if errors.Code(err) != errors.ErrCodeInsufficientFunds {
		t.Fatalf("Deduct() error = %v, want INSUFFICIENT_FUNDS", err)
	}

	// The pre-check rejects the whole list before any debit runs.
	if currency.withdrawn != 0 {
		t.Errorf("currency withdrawn = %d, want 0", currency.withdrawn)
	}
	if points.taken != 0 {
		t.Errorf("points taken = %d, want 0", points.taken)
	}
}

func TestGateway_MissingBackend_FailsClosed(t *testing.T) {
	gw := NewGateway(&fakeCurrency{balance: 100}, nil, nil, false)

	costs := []CostEntry{{Kind: CostPoints, Amount: 10}}
	ok, err := gw.CanAfford("player", costs)
	if err != nil {
		t.Fatalf("CanAfford() error = %v", err)
	}
	if ok {
		t.Error("CanAfford() = true with absent points backend, want false")
	}

	if err := gw.Deduct("player", costs, "recruit"); err == nil {
		t.Error("Deduct() expected error with absent points backend")
	}
}

func TestGateway_MissingBackend_SkipPolicy(t *testing.T) {
	currency := &fakeCurrency{balance: 100}
	gw := NewGateway(currency, nil, nil, true)

	costs := []CostEntry{
		{Kind: CostCurrency, Amount: 50},
		{Kind: CostPoints, Amount: 10}, // no backend, skipped per policy
	}
	if err := gw.Deduct("player", costs, "recruit"); err != nil {
		t.Fatalf("Deduct() error = %v", err)
	}
	if currency.balance != 50 {
		t.Errorf("currency balance = %d, want 50", currency.balance)
	}
}
