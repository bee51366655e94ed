package services

import (
	"errors"
	"testing"

	"github.com/k3vmcd/tirelinc/models"
)

func buildMap(n int) models.PositionMap {
	positions := make(models.PositionMap, n)
	for pos := 1; pos <= n; pos++ {
		positions[pos] = sensorID(byte(pos))
	}
	return positions
}

func TestApplyRotationBijection(t *testing.T) {
	for n, catalog := range models.RotationPatterns {
		for pattern := range catalog {
			positions := buildMap(n)
			rotated, err := ApplyRotation(positions, pattern, n)
			if err != nil {
				t.Fatalf("ApplyRotation(%d, %q) error = %v", n, pattern, err)
			}

			if len(rotated) != n {
				t.Errorf("%d/%q: map size = %d, want %d", n, pattern, len(rotated), n)
			}

			// Same sensor set, no identifier created or lost
			seen := make(map[models.SensorID]int)
			for pos := 1; pos <= n; pos++ {
				id, ok := rotated[pos]
				if !ok {
					t.Errorf("%d/%q: position %d unmapped", n, pattern, pos)
					continue
				}
				seen[id]++
			}
			for pos := 1; pos <= n; pos++ {
				if count := seen[positions[pos]]; count != 1 {
					t.Errorf("%d/%q: sensor %v appears %d times, want 1", n, pattern, positions[pos], count)
				}
			}
		}
	}
}

func TestApplyRotationXPatternTwiceIsIdentity(t *testing.T) {
	for _, n := range []int{4, 6} {
		positions := buildMap(n)

		once, err := ApplyRotation(positions, "X Pattern", n)
		if err != nil {
			t.Fatalf("ApplyRotation(n=%d) error = %v", n, err)
		}
		twice, err := ApplyRotation(once, "X Pattern", n)
		if err != nil {
			t.Fatalf("ApplyRotation(n=%d) second error = %v", n, err)
		}

		for pos := 1; pos <= n; pos++ {
			if twice[pos] != positions[pos] {
				t.Errorf("n=%d position %d = %v after double X, want %v", n, pos, twice[pos], positions[pos])
			}
		}
	}

	// The 2-tire catalog's only pattern is likewise self-inverse
	positions := buildMap(2)
	once, err := ApplyRotation(positions, "Side to Side", 2)
	if err != nil {
		t.Fatalf("ApplyRotation(n=2) error = %v", err)
	}
	twice, err := ApplyRotation(once, "Side to Side", 2)
	if err != nil {
		t.Fatalf("ApplyRotation(n=2) second error = %v", err)
	}
	for pos := 1; pos <= 2; pos++ {
		if twice[pos] != positions[pos] {
			t.Errorf("n=2 position %d = %v after double swap, want %v", pos, twice[pos], positions[pos])
		}
	}
}

func TestApplyRotationFourTireXPattern(t *testing.T) {
	a, b, c, d := sensorID('A'), sensorID('B'), sensorID('C'), sensorID('D')
	positions := models.PositionMap{1: a, 2: b, 3: c, 4: d}

	rotated, err := ApplyRotation(positions, "X Pattern", 4)
	if err != nil {
		t.Fatalf("ApplyRotation() error = %v", err)
	}

	want := models.PositionMap{1: d, 2: c, 3: b, 4: a}
	for pos := 1; pos <= 4; pos++ {
		if rotated[pos] != want[pos] {
			t.Errorf("position %d = %v, want %v", pos, rotated[pos], want[pos])
		}
	}
}

func TestApplyRotationUnknownPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		n       int
	}{
		{"no such pattern", "Diagonal Shuffle", 4},
		{"empty name", "", 4},
		{"four tire pattern on six tires", "Front to Rear", 6},
		{"six tire vocabulary on two tires", "Forward Cross", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positions := buildMap(tt.n)
			rotated, err := ApplyRotation(positions, tt.pattern, tt.n)
			if !errors.Is(err, models.ErrUnknownPattern) {
				t.Errorf("ApplyRotation() err = %v, want ErrUnknownPattern", err)
			}
			// Map must come back untouched on failure
			for pos := 1; pos <= tt.n; pos++ {
				if rotated[pos] != positions[pos] {
					t.Errorf("position %d changed on failed rotation", pos)
				}
			}
		})
	}
}

func TestApplyRotationInvalidTireCount(t *testing.T) {
	positions := buildMap(4)
	_, err := ApplyRotation(positions, "X Pattern", 5)
	if !errors.Is(err, models.ErrInvalidTireCount) {
		t.Errorf("ApplyRotation(n=5) err = %v, want ErrInvalidTireCount", err)
	}
}

func TestApplyRotationIncompleteMap(t *testing.T) {
	positions := models.PositionMap{1: sensorID(1), 2: sensorID(2)}
	_, err := ApplyRotation(positions, "X Pattern", 4)
	if err == nil {
		t.Errorf("ApplyRotation() on incomplete map succeeded, want error")
	}
}
