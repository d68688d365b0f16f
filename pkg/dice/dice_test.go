package dice

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		count    int
		sides    int
		modifier int
		wantErr  bool
	}{
		{name: "simple", notation: "1d20", count: 1, sides: 20},
		{name: "multiple dice", notation: "3d6", count: 3, sides: 6},
		{name: "positive modifier", notation: "2d6+3", count: 2, sides: 6, modifier: 3},
		{name: "negative modifier", notation: "2d6-1", count: 2, sides: 6, modifier: -1},
		{name: "empty", notation: "", wantErr: true},
		{name: "missing count", notation: "d20", wantErr: true},
		{name: "zero dice", notation: "0d6", wantErr: true},
		{name: "one-sided die", notation: "2d1", wantErr: true},
		{name: "garbage", notation: "banana", wantErr: true},
		{name: "bare modifier", notation: "2d6+", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, sides, modifier, err := Parse(tt.notation)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got none", tt.notation)
				}
				var invErr *InvalidNotationError
				if !errors.As(err, &invErr) {
					t.Errorf("expected InvalidNotationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.notation, err)
			}
			if count != tt.count || sides != tt.sides || modifier != tt.modifier {
				t.Errorf("Parse(%q) = (%d, %d, %d), want (%d, %d, %d)",
					tt.notation, count, sides, modifier, tt.count, tt.sides, tt.modifier)
			}
		})
	}
}

func TestRollNotationWith(t *testing.T) {
	// A die that always lands on its maximum
	maxDie := func(sides int) int { return sides }

	roll, err := RollNotationWith("3d6+2", maxDie)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(roll.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(roll.Results))
	}
	for _, r := range roll.Results {
		if r != 6 {
			t.Errorf("expected 6, got %d", r)
		}
	}
	if roll.Total != 20 {
		t.Errorf("expected total 20, got %d", roll.Total)
	}
	if roll.Modifier != 2 {
		t.Errorf("expected modifier 2, got %d", roll.Modifier)
	}
}

func TestRollNotationBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		roll, err := RollNotation("2d6")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sum := 0
		for _, r := range roll.Results {
			if r < 1 || r > 6 {
				t.Fatalf("result %d out of [1, 6]", r)
			}
			sum += r
		}
		if roll.Total != sum {
			t.Errorf("total %d does not match sum %d", roll.Total, sum)
		}
	}
}

func TestRollNotationInvalid(t *testing.T) {
	if _, err := RollNotation("nope"); err == nil {
		t.Fatal("expected error for invalid notation")
	}
}
