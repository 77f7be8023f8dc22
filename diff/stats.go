package diff

// Stats is the fixed-shape per-kind tally spec §4.6 calls get_stats:
// "(#added, #removed, #modified, #added_type, #removed_type)".
type Stats struct {
	Added       int
	Removed     int
	Modified    int
	AddedType   int
	RemovedType int
}

// Total sums the five counters, the unit spec §6 uses for the nonzero
// exit-code signal ("exit 1 if the run found any difference").
func (s Stats) Total() int {
	return s.Added + s.Removed + s.Modified + s.AddedType + s.RemovedType
}

// GetStats tallies r's deltas for one kind.
func (r *Report) GetStats(kind Kind) Stats {
	var s Stats
	for _, d := range r.Deltas {
		if d.Kind != kind {
			continue
		}
		switch d.Form {
		case FormAdded:
			s.Added++
		case FormRemoved:
			s.Removed++
		case FormModified:
			s.Modified++
		case FormAddedType:
			s.AddedType++
		case FormRemovedType:
			s.RemovedType++
		}
	}
	return s
}

// TotalDifferences sums Stats.Total() across every kind present in the
// report (spec §4.6: "Total differences for a run = sum over all
// requested kinds of the five counters").
func (r *Report) TotalDifferences() int {
	total := 0
	for _, k := range AllKinds() {
		total += r.GetStats(k).Total()
	}
	return total
}

// IsEmpty reports whether the report carries no deltas at all — used to
// verify diff(P,P) == ∅ (spec §8).
func (r *Report) IsEmpty() bool {
	return len(r.Deltas) == 0
}
