package eval

import (
	"os"
	"strings"
	"syscall"

	"github.com/awesome-archive/bfs/traverse"
)

// NewTrueTest and NewFalseTest are the -true/-false constant tests
// (eval.c's eval_true/eval_false); both are AlwaysTrue/AlwaysFalse by
// construction.
func NewTrueTest() *Node {
	n := leaf("-true", func(*Node, *State) bool { return true })
	n.AlwaysTrue = true
	return n
}

func NewFalseTest() *Node {
	n := leaf("-false", func(*Node, *State) bool { return false })
	n.AlwaysFalse = true
	return n
}

// NewDepthTest returns the -depth node: always true. It has no effect of
// its own when evaluated; post-order visiting is selected through
// Config.Flags (traverse.FlagDepth), not by this node.
func NewDepthTest() *Node {
	n := leaf("-depth", func(*Node, *State) bool { return true })
	n.AlwaysTrue = true
	return n
}

// NewEmptyTest returns the -empty node (§4.2): for regular files, true iff
// size is zero; for directories, true iff a directory read surfaces no
// entries. The FS collaborator's directory iterator is required to filter
// "."/".." itself, per §9's open question resolution.
func NewEmptyTest() *Node {
	return leaf("-empty", func(_ *Node, s *State) bool {
		switch s.Visit.Type {
		case traverse.TypeRegular:
			buf, ok := s.stat()
			if !ok {
				return false
			}
			return buf.Size == 0
		case traverse.TypeDir:
			has, err := s.Config.FS.HasDirEntries(s.Visit.AtFD, s.Visit.AtPath)
			if err != nil {
				reportError(s, err)
				return false
			}
			return !has
		default:
			return false
		}
	})
}

// NewFstypeTest returns the -fstype node, delegating to the MountTable
// collaborator (§6).
func NewFstypeTest(want string) *Node {
	return leaf("-fstype", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		return s.Config.Mounts.FSType(buf.Dev) == want
	})
}

// isHiddenName reports whether name (a basename) starts with a dot, the
// dotfile test eval.c's eval_hidden/eval_nohidden share.
func isHiddenName(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// NewHiddenTest returns the -hidden node: true iff the basename is a
// dotfile.
func NewHiddenTest() *Node {
	return leaf("-hidden", func(_ *Node, s *State) bool {
		return isHiddenName(s.Visit.Name())
	})
}

// NewNohiddenTest returns the -nohidden node. Per §4.2, -nohidden is not
// simply "not -hidden": it prunes hidden directories (so their contents
// are never visited at all) and fails the test for hidden files, a
// distinction the driver surfaces through the returned action rather than
// the Boolean result alone -- so this constructor also needs to set the
// visit action, which ordinary predicates never do.
func NewNohiddenTest() *Node {
	return leaf("-nohidden", func(_ *Node, s *State) bool {
		if !isHiddenName(s.Visit.Name()) {
			return true
		}
		if s.Visit.Type == traverse.TypeDir {
			s.Action = traverse.Prune
		}
		return false
	})
}

// NewInumTest, NewLinksTest, NewUidTest, NewGidTest are the integer
// comparison predicates over stat fields (§4.2's comparison family).
func NewInumTest(mode CompareMode, n int64) *Node {
	return leaf("-inum", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		return compare(mode, int64(buf.Ino), n)
	})
}

func NewLinksTest(mode CompareMode, n int64) *Node {
	return leaf("-links", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		return compare(mode, int64(buf.Nlink), n)
	})
}

func NewUidTest(mode CompareMode, n int64) *Node {
	return leaf("-uid", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		return compare(mode, int64(buf.Uid), n)
	})
}

func NewGidTest(mode CompareMode, n int64) *Node {
	return leaf("-gid", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		return compare(mode, int64(buf.Gid), n)
	})
}

// NewNouserTest and NewNogroupTest return true iff the owning uid/gid has
// no entry in the Users collaborator.
func NewNouserTest() *Node {
	return leaf("-nouser", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		_, found := s.Config.Users.LookupUser(buf.Uid)
		return !found
	})
}

func NewNogroupTest() *Node {
	return leaf("-nogroup", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		_, found := s.Config.Users.LookupGroup(buf.Gid)
		return !found
	})
}

// NewSamefileTest returns the -samefile node: true iff the visit's
// identity matches the reference path's, stat'd once at construction time
// (following symlinks, matching find(1)'s historical behavior). A
// construction-time stat failure is a fatal configuration error, not a
// per-visit race.
func NewSamefileTest(referencePath string) (*Node, error) {
	info, err := os.Stat(referencePath)
	if err != nil {
		return nil, ErrSamefileTarget.New(referencePath, err.Error())
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil, ErrSamefileTarget.New(referencePath, "stat_t unavailable on this platform")
	}
	dev, ino := uint64(st.Dev), st.Ino

	return leaf("-samefile", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		return buf.Dev == dev && buf.Ino == ino
	}), nil
}

// ModePolicy selects how -perm compares the stat mode against the operand
// masks (§4.2).
type ModePolicy int

const (
	ModeExact ModePolicy = iota
	ModeAll
	ModeAny
)

// NewModeTest returns the -perm node. Directories are compared against
// dirMode, everything else against fileMode -- the two are expected to
// already be resolved bit patterns (symbolic "X" expansion, which differs
// by file type, is performed by the excluded command-line layer before
// constructing this node).
func NewModeTest(policy ModePolicy, fileMode, dirMode uint32) *Node {
	return leaf("-perm", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		target := fileMode
		if s.Visit.Type == traverse.TypeDir {
			target = dirMode
		}
		actual := buf.Mode & 07777
		switch policy {
		case ModeAll:
			return actual&target == target
		case ModeAny:
			if target == 0 {
				return true
			}
			return actual&target != 0
		default:
			return actual == target
		}
	})
}
