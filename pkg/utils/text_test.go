package utils

import "testing"

func TestNormalizeItemKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"WHEAT", "WHEAT"},
		{"iron ore", "IRON_ORE"},
		{"IRON-ORE", "IRON_ORE"},
		{"  bread  ", "BREAD"},
		{"copper  -  ore", "COPPER_ORE"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeItemKey(tt.input); got != tt.want {
			t.Errorf("NormalizeItemKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestGenerateEntityToken(t *testing.T) {
	token := GenerateEntityToken(12)
	if len(token) != 12 {
		t.Fatalf("token length = %d, want 12", len(token))
	}
	if token == GenerateEntityToken(12) {
		t.Error("two generated tokens are identical")
	}
}
