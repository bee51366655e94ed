package models

import "fmt"

// PositionMap maps ordinal tire positions 1..N to the sensor reporting for
// that position. It is built once per discovery session by the assigner and
// only ever permuted afterwards by the rotation engine; the map stays a
// bijection over the same sensor set throughout.
type PositionMap map[int]SensorID

// Clone returns an independent copy.
func (m PositionMap) Clone() PositionMap {
	out := make(PositionMap, len(m))
	for pos, id := range m {
		out[pos] = id
	}
	return out
}

// RotationPatterns is the static rotation catalog, keyed by tire count and
// pattern name. Each table is the permutation sigma: the sensor at position p
// after rotation is the sensor that was at position sigma[p-1] before.
// Catalogs are distinct per tire count; a 4-tire pattern name is meaningless
// for 6 tires. Forward and Rearward Cross are full cycles, not pairwise
// swaps; these tables are the authoritative definition.
var RotationPatterns = map[int]map[string][]int{
	2: {
		"Side to Side": {2, 1},
	},
	4: {
		"X Pattern":      {4, 3, 2, 1},
		"Front to Rear":  {3, 4, 1, 2},
		"Forward Cross":  {4, 3, 1, 2},
		"Rearward Cross": {3, 4, 2, 1},
	},
	6: {
		"X Pattern":      {6, 5, 4, 3, 2, 1},
		"Forward Cross":  {4, 3, 6, 5, 1, 2},
		"Rearward Cross": {5, 6, 2, 1, 4, 3},
	},
}

// PatternNames lists the catalog entries for a tire count, for surfacing in
// the host's pattern selector.
func PatternNames(tireCount int) []string {
	catalog, ok := RotationPatterns[tireCount]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}

// DefaultPositionNames provides human-readable names per position, used when
// publishing readings for the host to render as entities.
var DefaultPositionNames = map[int]map[int]string{
	2: {
		1: "Left Tire",
		2: "Right Tire",
	},
	4: {
		1: "Front Left",
		2: "Front Right",
		3: "Rear Left",
		4: "Rear Right",
	},
	6: {
		1: "Front Left",
		2: "Front Right",
		3: "Middle Left",
		4: "Middle Right",
		5: "Rear Left",
		6: "Rear Right",
	},
}

// PositionName returns the display name for a position, falling back to a
// generic label for layouts without one.
func PositionName(tireCount, position int) string {
	if names, ok := DefaultPositionNames[tireCount]; ok {
		if name, ok := names[position]; ok {
			return name
		}
	}
	return fmt.Sprintf("Tire %d", position)
}
