package eval

import "github.com/awesome-archive/bfs/traverse"

// identity names a file by (device, inode), the key §3's file identity set
// and §8's -samefile/-unique properties both use.
type identity struct {
	dev uint64
	ino uint64
}

// UniqueSet records every (device, inode) pair already seen during one
// traversal, backing -unique (§4.4). It's built fresh per traversal and
// discarded at the end; a plain map suffices in Go where eval.c reaches for
// a trie keyed by a serialized identity.
type UniqueSet struct {
	seen map[identity]struct{}
}

// NewUniqueSet returns an empty identity set.
func NewUniqueSet() *UniqueSet {
	return &UniqueSet{seen: make(map[identity]struct{})}
}

// Insert records id, reporting true if this is the first time it's been
// seen (the caller should proceed) or false if it's a repeat (the caller
// should prune without evaluating the expression tree).
func (u *UniqueSet) Insert(dev, ino uint64) bool {
	id := identity{dev, ino}
	if _, ok := u.seen[id]; ok {
		return false
	}
	u.seen[id] = struct{}{}
	return true
}

// applyUnique implements §4.4's pre-order gate: stat failure records the
// error and tells the driver not to evaluate; a repeat identity prunes
// silently; a first occurrence lets the driver proceed.
func applyUnique(s *State, set *UniqueSet) (evaluate bool, action traverse.Action) {
	buf, ok := s.stat()
	if !ok {
		return false, traverse.Continue
	}
	if set.Insert(buf.Dev, buf.Ino) {
		return true, traverse.Continue
	}
	return false, traverse.Prune
}
