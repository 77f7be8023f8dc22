package policy

// RangeTransition is a range_transition rule: on a transition from Source
// to Target (for the object classes in Classes — historically just
// "process", generalized here since later policy versions allow any
// class), the resulting context's range is TargetRange.
type RangeTransition struct {
	ID          RuleID
	Source      TypeSet
	Target      TypeSet
	Classes     ClassSet
	TargetRange Range
}
