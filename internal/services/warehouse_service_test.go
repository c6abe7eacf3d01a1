package services

import (
	"testing"

	"github.com/villageworks/villagecraft/internal/models"
	"github.com/villageworks/villagecraft/internal/repositories"
	"github.com/villageworks/villagecraft/pkg/errors"
)

func newWarehouseFixture(t *testing.T) (*WarehouseService, *repositories.UpgradeRepository, *models.Village) {
	t.Helper()
	db := newTestDB(t)
	warehouseRepo := repositories.NewWarehouseRepository(db)
	upgradeRepo := repositories.NewUpgradeRepository(db)
	svc := NewWarehouseService(warehouseRepo, upgradeRepo, testGameConfig())

	village := &models.Village{OwnerID: "owner-1", Name: "Riverholm", Level: 1}
	if err := db.Create(village).Error; err != nil {
		t.Fatal(err)
	}
	return svc, upgradeRepo, village
}

func TestWarehouseService_AddAndRemove(t *testing.T) {
	svc, _, village := newWarehouseFixture(t)

	if err := svc.Add(village.ID, "WHEAT", 10); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.Add(village.ID, "WHEAT", 5); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := svc.Remove(village.ID, "WHEAT", 7); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	total, err := svc.CurrentTotal(village.ID)
	if err != nil {
		t.Fatal(err)
	}
	if total != 8 {
		t.Errorf("CurrentTotal() = %d, want 8", total)
	}
}

func TestWarehouseService_RemoveInsufficient(t *testing.T) {
	svc, _, village := newWarehouseFixture(t)

	if err := svc.Add(village.ID, "WHEAT", 5); err != nil {
		t.Fatal(err)
	}

	err := svc.Remove(village.ID, "WHEAT", 6)
	if errors.Code(err) != errors.ErrCodeInsufficientItems {
		t.Fatalf("Remove() error = %v, want INSUFFICIENT_ITEMS", err)
	}

	// The failed removal must not have changed the stored amount.
	total, err := svc.CurrentTotal(village.ID)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Errorf("CurrentTotal() = %d, want 5", total)
	}
}

func TestWarehouseService_RemoveAbsentKey(t *testing.T) {
	svc, _, village := newWarehouseFixture(t)

	err := svc.Remove(village.ID, "DIAMOND", 1)
	if errors.Code(err) != errors.ErrCodeInsufficientItems {
		t.Errorf("Remove() error = %v, want INSUFFICIENT_ITEMS", err)
	}
}

func TestWarehouseService_RejectsNonPositiveAmounts(t *testing.T) {
	svc, _, village := newWarehouseFixture(t)

	if err := svc.Add(village.ID, "WHEAT", 0); errors.Code(err) != errors.ErrCodeValidationFailed {
		t.Errorf("Add(0) error = %v, want VALIDATION_FAILED", err)
	}
	if err := svc.Remove(village.ID, "WHEAT", -3); errors.Code(err) != errors.ErrCodeValidationFailed {
		t.Errorf("Remove(-3) error = %v, want VALIDATION_FAILED", err)
	}
}

func TestWarehouseService_Capacity(t *testing.T) {
	svc, upgrades, village := newWarehouseFixture(t)

	// Level 1, no upgrades: base capacity.
	capacity, err := svc.Capacity(village)
	if err != nil {
		t.Fatal(err)
	}
	if capacity != 50 {
		t.Errorf("Capacity() = %d, want 50", capacity)
	}

	// Level 3 adds two per-level steps; two expansion levels add 100.
	village.Level = 3
	for i := 0; i < 2; i++ {
		if err := upgrades.ApplyVillageUpgrade(village.ID, "warehouse_expansion"); err != nil {
			t.Fatal(err)
		}
	}
	capacity, err = svc.Capacity(village)
	if err != nil {
		t.Fatal(err)
	}
	if capacity != 50+2*25+2*50 {
		t.Errorf("Capacity() = %d, want %d", capacity, 50+2*25+2*50)
	}
}

func TestWarehouseService_DepositClampsToCapacity(t *testing.T) {
	svc, _, village := newWarehouseFixture(t)

	// Capacity is 50; fill to 45, then deposit 10 and expect 5 stored.
	if err := svc.Add(village.ID, "WHEAT", 45); err != nil {
		t.Fatal(err)
	}

	stored, err := svc.Deposit(village, "WHEAT", 10)
	if err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	if stored != 5 {
		t.Errorf("Deposit() stored = %d, want 5", stored)
	}

	// A full warehouse stores nothing and reports no error.
	stored, err = svc.Deposit(village, "WHEAT", 10)
	if err != nil {
		t.Fatalf("Deposit() error = %v", err)
	}
	if stored != 0 {
		t.Errorf("Deposit() stored = %d, want 0", stored)
	}

	total, err := svc.CurrentTotal(village.ID)
	if err != nil {
		t.Fatal(err)
	}
	if total != 50 {
		t.Errorf("CurrentTotal() = %d, want 50", total)
	}
}

func TestWarehouseService_Extract(t *testing.T) {
	svc, _, village := newWarehouseFixture(t)

	if err := svc.Add(village.ID, "WHEAT", 10); err != nil {
		t.Fatal(err)
	}

	sink := newMemSink(100)
	if err := svc.Extract(sink, village.ID, "WHEAT", 6); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if sink.held["WHEAT"] != 6 {
		t.Errorf("sink holds %d WHEAT, want 6", sink.held["WHEAT"])
	}
	total, _ := svc.CurrentTotal(village.ID)
	if total != 4 {
		t.Errorf("CurrentTotal() = %d, want 4", total)
	}
}

func TestWarehouseService_ExtractRejectedLeavesLedger(t *testing.T) {
	svc, _, village := newWarehouseFixture(t)

	if err := svc.Add(village.ID, "WHEAT", 10); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		sink     *memSink
		amount   int64
		wantCode string
	}{
		{
			name:     "destination full",
			sink:     newMemSink(2),
			amount:   6,
			wantCode: errors.ErrCodeCapacityReached,
		},
		{
			name:     "not enough stored",
			sink:     newMemSink(100),
			amount:   11,
			wantCode: errors.ErrCodeInsufficientItems,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Extract(tt.sink, village.ID, "WHEAT", tt.amount)
			if errors.Code(err) != tt.wantCode {
				t.Fatalf("Extract() error = %v, want %s", err, tt.wantCode)
			}
			if tt.sink.total() != 0 {
				t.Errorf("sink received items on failed extract")
			}
			total, _ := svc.CurrentTotal(village.ID)
			if total != 10 {
				t.Errorf("CurrentTotal() = %d, want 10 untouched", total)
			}
		})
	}
}
