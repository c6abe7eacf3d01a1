package economy

import "testing"

func TestCostEntry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cost    CostEntry
		wantErr bool
	}{
		{
			name:    "valid currency",
			cost:    CostEntry{Kind: CostCurrency, Amount: 50},
			wantErr: false,
		},
		{
			name:    "valid points",
			cost:    CostEntry{Kind: CostPoints, Amount: 10},
			wantErr: false,
		},
		{
			name:    "valid item",
			cost:    CostEntry{Kind: CostItem, Amount: 1, Item: "WHEAT_TOKEN"},
			wantErr: false,
		},
		{
			name:    "negative currency",
			cost:    CostEntry{Kind: CostCurrency, Amount: -1},
			wantErr: true,
		},
		{
			name:    "item without identifier",
			cost:    CostEntry{Kind: CostItem, Amount: 1},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			cost:    CostEntry{Kind: "gems", Amount: 5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cost.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCosts_ReportsIndex(t *testing.T) {
	costs := []CostEntry{
		{Kind: CostCurrency, Amount: 50},
		{Kind: CostItem, Amount: 1}, // missing item identifier
	}

	if err := ValidateCosts(costs); err == nil {
		t.Error("ValidateCosts() expected error for invalid second entry")
	}
}

func TestDescribe(t *testing.T) {
	costs := []CostEntry{
		{Kind: CostCurrency, Amount: 50},
		{Kind: CostPoints, Amount: 10},
		{Kind: CostItem, Amount: 2, Item: "WHEAT_TOKEN"},
		{Kind: "gems", Amount: 3},
	}

	lines := Describe(costs)
	want := []string{"50 coins", "10 points", "2 x WHEAT_TOKEN", "3 x gems (unknown)"}
	if len(lines) != len(want) {
		t.Fatalf("Describe() returned %d lines, want %d", len(lines), len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Describe()[%d] = %q, want %q", i, lines[i], want[i])
		}
	}
}
