package policy

// RangeCompareMode is the bitmask callers pass to Policy.RangeCompare
// (spec §4.3). EXACT's bits subsume SUB and SUPER, so callers — and
// RangeCompare itself — must test EXACT before SUB/SUPER.
type RangeCompareMode uint

const (
	RangeSub RangeCompareMode = 1 << iota
	RangeSuper
	RangeIntersect
	RangeExact = RangeSub | RangeSuper
)

// Range is an MLS interval [Low, High]; single-level ranges have
// Low == High.
type Range struct {
	Low  Level
	High Level
}

// NewSingleLevelRange builds a Range whose Low and High are the same level.
func NewSingleLevelRange(l Level) Range {
	return Range{Low: l, High: l}
}

// Contains reports range.contains(level) iff low <= level <= high in the
// dominance lattice (spec §4.3).
func (m *mlsStore) Contains(r Range, l Level) bool {
	lowCmp := m.CompareLevels(r.Low, l)
	highCmp := m.CompareLevels(r.High, l)
	lowOK := lowCmp == Equal || lowCmp == DominatedBy
	highOK := highCmp == Equal || highCmp == Dominates
	return lowOK && highOK
}

// ContainsRange reports range.contains_range(sub) iff range contains both
// sub's low and high endpoints (spec §4.3).
func (m *mlsStore) ContainsRange(r, sub Range) bool {
	return m.Contains(r, sub.Low) && m.Contains(r, sub.High)
}

// RangeCompare implements spec §4.3's four-mode range comparison. EXACT
// is tested first because its bits subsume SUB and SUPER.
func (m *mlsStore) RangeCompare(a, b Range, mode RangeCompareMode) bool {
	var sub, super bool
	if mode&RangeSub != 0 || mode&RangeIntersect != 0 {
		sub = m.ContainsRange(a, b)
	}
	if mode&RangeSuper != 0 || mode&RangeIntersect != 0 {
		super = m.ContainsRange(b, a)
	}
	if mode&RangeExact == RangeExact {
		return sub && super
	}
	if mode&RangeSub != 0 {
		return sub
	}
	if mode&RangeSuper != 0 {
		return super
	}
	if mode&RangeIntersect != 0 {
		return sub || super
	}
	return false
}

// EnumerateLevels produces the ordered finite list of levels between
// r.Low and r.High: iterate sensitivities in order, and for each
// sensitivity between low.sens and high.sens inclusive, emit a level whose
// categories are the intersection of high's categories with that
// sensitivity's legal category set (spec §4.3).
func (m *mlsStore) EnumerateLevels(r Range) []Level {
	lowOrder := m.sensByID[r.Low.Sens].Order
	highOrder := m.sensByID[r.High.Sens].Order

	var out []Level
	for _, sens := range m.SensByOrder() {
		if sens.Order < lowOrder || sens.Order > highOrder {
			continue
		}
		legal := m.legalCategoriesFor(sens.ID)
		cats := make(map[CategoryID]struct{})
		for c := range r.High.Cats {
			if _, ok := legal[c]; ok {
				cats[c] = struct{}{}
			}
		}
		out = append(out, Level{Sens: sens.ID, Cats: cats})
	}
	return out
}

// RangeString renders a range in canonical low-high (or bare low when
// low == high) form.
func (m *mlsStore) RangeString(r Range) string {
	if m.CompareLevels(r.Low, r.High) == Equal {
		return m.LevelString(r.Low)
	}
	return m.LevelString(r.Low) + "-" + m.LevelString(r.High)
}
