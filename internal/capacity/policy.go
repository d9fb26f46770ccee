package capacity

// byteCapacity is the largest payload, in bytes, accepted at each level.
var byteCapacity = map[Level]int{
	H: 1270,
	Q: 1660,
	M: 2330,
	L: 2950,
}

// weakeningOrder lists levels from most to least redundancy. Capacity grows
// along this order.
var weakeningOrder = []Level{H, Q, M, L}

// Levels returns the levels in weakening order, H first.
func Levels() []Level {
	out := make([]Level, len(weakeningOrder))
	copy(out, weakeningOrder)
	return out
}

// CapacityOf returns the byte capacity of level. Unknown levels get M's capacity.
func CapacityOf(level Level) int {
	if c, ok := byteCapacity[level]; ok {
		return c
	}
	return byteCapacity[M]
}

// Fits reports whether a payload of length bytes fits level.
func Fits(level Level, length int) bool {
	return length <= CapacityOf(level)
}

// FitLevel returns the level a payload of length bytes should be rendered at.
// The requested level is kept when the payload fits it. Otherwise the levels
// after it in weakening order are tried and the first one that fits is
// returned. If none fits, a *CapacityExceededError is returned; the payload
// is never truncated to force a fit.
func FitLevel(requested Level, length int) (Level, error) {
	if !requested.Valid() {
		requested = M
	}
	if Fits(requested, length) {
		return requested, nil
	}

	start := indexOf(requested)
	for _, candidate := range weakeningOrder[start+1:] {
		if Fits(candidate, length) {
			return candidate, nil
		}
	}

	return requested, &CapacityExceededError{
		Requested: requested,
		Length:    length,
		Capacity:  CapacityOf(requested),
	}
}

func indexOf(level Level) int {
	for i, l := range weakeningOrder {
		if l == level {
			return i
		}
	}
	return indexOf(M)
}
