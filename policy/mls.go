package policy

import (
	"fmt"
	"sort"
	"strings"
)

// Dominance is the result of comparing two MLS levels (spec §4.3).
type Dominance int

const (
	Incomparable Dominance = iota
	Equal
	Dominates
	DominatedBy
)

// Sensitivity is one rung of the total order of sensitivities. The order
// field, not declaration position, defines the order (spec §3).
type Sensitivity struct {
	ID      SensID
	Name    string
	Order   int
	Aliases []string
}

// Category is an unordered MLS category.
type Category struct {
	ID      CategoryID
	Name    string
	Aliases []string
}

// Level is a sensitivity paired with a set of categories.
type Level struct {
	Sens SensID
	Cats map[CategoryID]struct{}
}

// NewLevel builds a Level from a sensitivity id and category ids.
func NewLevel(sens SensID, cats ...CategoryID) Level {
	set := make(map[CategoryID]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return Level{Sens: sens, Cats: set}
}

type mlsStore struct {
	sensByID    []Sensitivity
	sensByName  map[string]SensID
	catByID     []Category
	catByName   map[string]CategoryID
	legalCats   map[SensID]map[CategoryID]struct{} // categories a sensitivity level may legally carry
	mlsEnabled  bool
}

func newMLSStore() *mlsStore {
	return &mlsStore{
		sensByName: make(map[string]SensID),
		catByName:  make(map[string]CategoryID),
		legalCats:  make(map[SensID]map[CategoryID]struct{}),
	}
}

func (s *mlsStore) addSens(name string, order int, aliases ...string) SensID {
	if id, ok := s.sensByName[name]; ok {
		return id
	}
	id := SensID(len(s.sensByID))
	s.sensByID = append(s.sensByID, Sensitivity{ID: id, Name: name, Order: order, Aliases: aliases})
	s.sensByName[name] = id
	for _, a := range aliases {
		s.sensByName[a] = id
	}
	return id
}

func (s *mlsStore) addCat(name string, aliases ...string) CategoryID {
	if id, ok := s.catByName[name]; ok {
		return id
	}
	id := CategoryID(len(s.catByID))
	s.catByID = append(s.catByID, Category{ID: id, Name: name, Aliases: aliases})
	s.catByName[name] = id
	for _, a := range aliases {
		s.catByName[a] = id
	}
	return id
}

func (s *mlsStore) allowCategory(sens SensID, cat CategoryID) {
	if s.legalCats[sens] == nil {
		s.legalCats[sens] = make(map[CategoryID]struct{})
	}
	s.legalCats[sens][cat] = struct{}{}
}

func (s *mlsStore) LookupSens(name string) (SensID, bool) {
	id, ok := s.sensByName[name]
	return id, ok
}

func (s *mlsStore) LookupCat(name string) (CategoryID, bool) {
	id, ok := s.catByName[name]
	return id, ok
}

func (s *mlsStore) SensByOrder() []Sensitivity {
	out := make([]Sensitivity, len(s.sensByID))
	copy(out, s.sensByID)
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (s *mlsStore) GetSens(id SensID) Sensitivity { return s.sensByID[id] }
func (s *mlsStore) GetCat(id CategoryID) Category  { return s.catByID[id] }

// legalCategoriesFor returns the set of category ids a given sensitivity
// may legally carry, used by Range.EnumerateLevels (spec §4.3).
func (s *mlsStore) legalCategoriesFor(sens SensID) map[CategoryID]struct{} {
	return s.legalCats[sens]
}

// CompareLevels implements spec §4.3's compare(a, b):
//
//	equal        iff sensitivities equal and category sets equal
//	dominates    iff sens(a) >= sens(b) and cats(a) ⊇ cats(b) and not equal
//	dominated-by symmetrically
//	else         incomparable
func (s *mlsStore) CompareLevels(a, b Level) Dominance {
	sa, sb := s.sensByID[a.Sens].Order, s.sensByID[b.Sens].Order
	aSupersetB := isSuperset(a.Cats, b.Cats)
	bSupersetA := isSuperset(b.Cats, a.Cats)

	if sa == sb && aSupersetB && bSupersetA {
		return Equal
	}
	if sa >= sb && aSupersetB {
		return Dominates
	}
	if sb >= sa && bSupersetA {
		return DominatedBy
	}
	return Incomparable
}

func isSuperset(a, b map[CategoryID]struct{}) bool {
	for c := range b {
		if _, ok := a[c]; !ok {
			return false
		}
	}
	return true
}

// LevelString renders a level in the canonical s<N>[:c<i>[,c<j>...]] form,
// collapsing contiguous runs with "." the way the teacher's
// formatCategories does for SecurityLevel.String.
func (s *mlsStore) LevelString(l Level) string {
	sens := s.sensByID[l.Sens]
	if len(l.Cats) == 0 {
		return sens.Name
	}
	ids := make([]int, 0, len(l.Cats))
	for c := range l.Cats {
		ids = append(ids, int(c))
	}
	sort.Ints(ids)

	var parts []string
	i := 0
	for i < len(ids) {
		j := i
		for j+1 < len(ids) && ids[j+1] == ids[j]+1 {
			j++
		}
		if j > i+1 {
			parts = append(parts, fmt.Sprintf("%s.%s", s.catByID[ids[i]].Name, s.catByID[ids[j]].Name))
		} else {
			for k := i; k <= j; k++ {
				parts = append(parts, s.catByID[ids[k]].Name)
			}
		}
		i = j + 1
	}
	return sens.Name + ":" + strings.Join(parts, ",")
}
