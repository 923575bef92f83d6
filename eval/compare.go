package eval

// CompareMode is the comparison mode comparison predicates accept (§3):
// equal to, less than, or greater than a comparand.
type CompareMode int

const (
	CompareEQ CompareMode = iota
	CompareLT
	CompareGT
)

func (m CompareMode) String() string {
	switch m {
	case CompareLT:
		return "<"
	case CompareGT:
		return ">"
	default:
		return "="
	}
}

// compare applies mode to (value, target), the shared comparand evaluation
// every size/time/links/inum/uid/gid predicate uses (§4.2). There is no
// depth comparison predicate: the -depth node (NewDepthTest) is a constant
// true test and does not call compare.
func compare(mode CompareMode, value, target int64) bool {
	switch mode {
	case CompareLT:
		return value < target
	case CompareGT:
		return value > target
	default:
		return value == target
	}
}
