package eval

import (
	"time"

	"github.com/awesome-archive/bfs/traverse"
)

// TimeField selects which stat timestamp a time predicate compares.
type TimeField int

const (
	FieldAtime TimeField = iota
	FieldMtime
	FieldCtime
)

func fieldTime(buf *traverse.Stat, field TimeField) time.Time {
	switch field {
	case FieldAtime:
		return buf.Atime
	case FieldCtime:
		return buf.Ctime
	default:
		return buf.Mtime
	}
}

// Time units §4.2 names for the truncated-difference family: minutes
// divide the second difference by 60, days by 86400; the bare *time
// predicates (-atime, -mtime, -ctime) use days, the *min family minutes.
const (
	UnitSeconds = 1
	UnitMinutes = 60
	UnitDays    = 86400
)

// timeDiffSeconds computes the full-seconds difference between ref and t
// per §4.2 and §8: truncating toward negative infinity at the second
// boundary rather than toward zero. When t's nanosecond component exceeds
// ref's, one additional second is subtracted.
func timeDiffSeconds(ref, t time.Time) int64 {
	diff := ref.Unix() - t.Unix()
	if t.Nanosecond() > ref.Nanosecond() {
		diff--
	}
	return diff
}

// NewTimeTest returns a node for the -atime/-amin/-mtime/-mmin/-ctime/-cmin
// family: true iff (diff in seconds between Config.Now and the selected
// stat field) / unit compares to n per mode.
func NewTimeTest(name string, field TimeField, unit int64, mode CompareMode, n int64) *Node {
	return leaf(name, func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		diff := timeDiffSeconds(s.Config.Now, fieldTime(buf, field))
		return compare(mode, diff/unit, n)
	})
}

// NewNewerTest returns a node for the -newer/-anewer/-cnewer family (there
// is no birth-time TimeField, so -Bnewer is not supported): unlike the truncated-difference family this is a strict,
// full-precision > comparison of the selected stat field against a
// reference timestamp (itself drawn from another file's stat, by the
// caller that constructs this node).
func NewNewerTest(name string, field TimeField, ref time.Time) *Node {
	return leaf(name, func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		return fieldTime(buf, field).After(ref)
	})
}

// NewUsedTest returns the -used node: true iff (atime - ctime) in whole
// days compares to n per mode (eval.c's eval_used).
func NewUsedTest(mode CompareMode, n int64) *Node {
	return leaf("-used", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		diff := timeDiffSeconds(buf.Atime, buf.Ctime)
		return compare(mode, diff/UnitDays, n)
	})
}
