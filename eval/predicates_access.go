package eval

// Access modes, matching POSIX access(2)'s R_OK/W_OK/X_OK bit values so
// they can be passed straight through to sysutil.FS.AccessAt without eval
// needing to import golang.org/x/sys itself.
const (
	AccessRead    = 0x4
	AccessWrite   = 0x2
	AccessExecute = 0x1
)

// NewAccessTest returns the -readable/-writable/-executable/-access node:
// delegates to the FS collaborator's access-at check (§4.2, §6), a
// ternary {true, false, error} result routed through the race policy on
// error.
func NewAccessTest(name string, mode uint32) *Node {
	return leaf(name, func(_ *Node, s *State) bool {
		ok, err := s.Config.FS.AccessAt(s.Visit.AtFD, s.Visit.AtPath, mode)
		if err != nil {
			reportError(s, err)
			return false
		}
		return ok
	})
}

// NewACLTest returns the -acl node.
func NewACLTest() *Node {
	return leaf("-acl", func(_ *Node, s *State) bool {
		ok, err := s.Config.FS.HasACL(s.Visit.AtFD, s.Visit.AtPath)
		if err != nil {
			reportError(s, err)
			return false
		}
		return ok
	})
}

// NewCapableTest returns the -capable node (eval.c's eval_capable).
func NewCapableTest() *Node {
	return leaf("-capable", func(_ *Node, s *State) bool {
		ok, err := s.Config.FS.HasCapability(s.Visit.AtFD, s.Visit.AtPath)
		if err != nil {
			reportError(s, err)
			return false
		}
		return ok
	})
}

// NewXattrTest returns the -xattr node: true iff the file carries any
// extended attribute.
func NewXattrTest() *Node {
	return leaf("-xattr", func(_ *Node, s *State) bool {
		ok, err := s.Config.FS.HasXattr(s.Visit.AtFD, s.Visit.AtPath)
		if err != nil {
			reportError(s, err)
			return false
		}
		return ok
	})
}
