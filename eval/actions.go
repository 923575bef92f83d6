package eval

import "github.com/awesome-archive/bfs/traverse"

// NewDeleteTest returns the -delete action node (§4.2): refuses to act on
// the literal path ".", and unlinks with the remove-dir flag iff the
// nofollow type is directory (never based on the following type, so a
// symlink to a directory is unlinked as a symlink, not recursed into).
func NewDeleteTest() *Node {
	n := leaf("-delete", func(_ *Node, s *State) bool {
		if s.Visit.Path == "." {
			return false
		}
		nofollowBuf, err := s.Visit.Stat(traverse.StatNoFollow)
		if err != nil {
			reportError(s, err)
			return false
		}
		isDir := traverse.TypeFromMode(nofollowBuf.Mode) == traverse.TypeDir
		if err := s.Config.FS.Unlinkat(s.Visit.AtFD, s.Visit.AtPath, isDir); err != nil {
			reportError(s, err)
			return false
		}
		return true
	})
	return n
}

// NewPruneAction returns the -prune action: always true, sets the per-visit
// action to PRUNE.
func NewPruneAction() *Node {
	n := leaf("-prune", func(_ *Node, s *State) bool {
		s.Action = traverse.Prune
		return true
	})
	n.AlwaysTrue = true
	return n
}

// NewQuitAction returns the -quit action: always true, raises the quit
// flag and requests STOP. §5: after STOP, pending exec batches are still
// flushed once by the caller driving the traversal.
func NewQuitAction() *Node {
	n := leaf("-quit", func(_ *Node, s *State) bool {
		s.Quit = true
		s.Action = traverse.Stop
		return true
	})
	n.AlwaysTrue = true
	n.NeverReturns = true
	return n
}

// NewExitAction returns the -exit N action: like -quit, but also pins the
// shared exit status to code.
func NewExitAction(code int) *Node {
	n := leaf("-exit", func(_ *Node, s *State) bool {
		s.Config.ExitStatus.Exit(code)
		s.Quit = true
		s.Action = traverse.Stop
		return true
	})
	n.AlwaysTrue = true
	n.NeverReturns = true
	return n
}
