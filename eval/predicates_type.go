package eval

import "github.com/awesome-archive/bfs/traverse"

// TypeMask is a bitset of traverse.Type values, the operand -type/-xtype
// accept (§3's "operand payload... a device+inode pair" family, here the
// type-bitset member of it).
type TypeMask uint32

func typeBit(t traverse.Type) TypeMask { return 1 << TypeMask(t) }

// NewTypeMask builds a mask from the given types.
func NewTypeMask(types ...traverse.Type) TypeMask {
	var m TypeMask
	for _, t := range types {
		m |= typeBit(t)
	}
	return m
}

func (m TypeMask) has(t traverse.Type) bool { return m&typeBit(t) != 0 }

// NewTypeTest returns the -type node: true iff the visit's observed type
// (already resolved per the configured follow policy) is in mask.
func NewTypeTest(mask TypeMask) *Node {
	return leaf("-type", func(_ *Node, s *State) bool {
		return mask.has(s.Visit.Type)
	})
}

// NewXtypeTest returns the -xtype node: like -type, but with the
// follow/nofollow policy inverted before deciding the type (§4.2) --
// -xtype asks "what would this be if I had (not) followed the link."
func NewXtypeTest(mask TypeMask) *Node {
	return leaf("-xtype", func(_ *Node, s *State) bool {
		flags := traverse.StatFollow
		if s.Visit.StatFlags&traverse.StatFollow != 0 {
			flags = traverse.StatNoFollow
		}
		buf, err := s.Visit.Stat(flags)
		if err != nil {
			reportError(s, err)
			return false
		}
		return mask.has(traverse.TypeFromMode(buf.Mode))
	})
}
