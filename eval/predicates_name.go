package eval

import (
	"path/filepath"
	"strings"

	"github.com/coregx/coregex"

	"github.com/awesome-archive/bfs/traverse"
)

// NewNameTest returns the -name/-iname node: fnmatch against the visit's
// basename, stripping trailing slashes from a root path's basename first
// per §4.2 ("the name predicate strips trailing slashes from the root
// path's basename before matching"). path/filepath.Match is the stdlib
// fallback here: no fnmatch-equivalent glob library appears anywhere in
// the retrieved pack, so this is one of the documented stdlib exceptions
// (see DESIGN.md).
func NewNameTest(pattern string, fold bool) (*Node, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, ErrBadPattern.New(pattern, err.Error())
	}
	matchPattern := pattern
	if fold {
		matchPattern = strings.ToLower(pattern)
	}
	name := "-name"
	if fold {
		name = "-iname"
	}
	return leaf(name, func(_ *Node, s *State) bool {
		candidate := strings.TrimRight(s.Visit.Name(), "/")
		if fold {
			candidate = strings.ToLower(candidate)
		}
		ok, _ := filepath.Match(matchPattern, candidate)
		return ok
	}), nil
}

// NewPathTest returns the -path/-ipath node: fnmatch against the full
// visit path.
func NewPathTest(pattern string, fold bool) (*Node, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, ErrBadPattern.New(pattern, err.Error())
	}
	matchPattern := pattern
	if fold {
		matchPattern = strings.ToLower(pattern)
	}
	name := "-path"
	if fold {
		name = "-ipath"
	}
	return leaf(name, func(_ *Node, s *State) bool {
		candidate := s.Visit.Path
		if fold {
			candidate = strings.ToLower(candidate)
		}
		ok, _ := filepath.Match(matchPattern, candidate)
		return ok
	}), nil
}

// NewLnameTest returns the -lname/-ilname node: fnmatch against the
// symlink's target, read via the FS collaborator. Non-symlinks never
// match.
func NewLnameTest(pattern string, fold bool) (*Node, error) {
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, ErrBadPattern.New(pattern, err.Error())
	}
	matchPattern := pattern
	if fold {
		matchPattern = strings.ToLower(pattern)
	}
	name := "-lname"
	if fold {
		name = "-ilname"
	}
	return leaf(name, func(_ *Node, s *State) bool {
		if s.Visit.Type != traverse.TypeSymlink {
			return false
		}
		target, err := s.Config.FS.ReadlinkAt(s.Visit.AtFD, s.Visit.AtPath)
		if err != nil {
			reportError(s, err)
			return false
		}
		if fold {
			target = strings.ToLower(target)
		}
		ok, _ := filepath.Match(matchPattern, target)
		return ok
	}), nil
}

// NewRegexTest returns the -regex/-iregex node. §4.2 requires a
// full-string-anchored match: coregex.Regex.FindStringIndex gives the
// first match's [start, end) span, which is accepted only when it covers
// the entire candidate string -- the "accept a match only if it spans
// offsets 0..len" rule for engines without a dedicated anchored-match API.
func NewRegexTest(pattern string, fold bool, matchPath bool) (*Node, error) {
	compiled := pattern
	if fold {
		compiled = "(?i)" + pattern
	}
	re, err := coregex.Compile(compiled)
	if err != nil {
		return nil, ErrBadRegex.New(pattern, err.Error())
	}
	name := "-regex"
	if fold {
		name = "-iregex"
	}
	return leaf(name, func(_ *Node, s *State) bool {
		candidate := s.Visit.Name()
		if matchPath {
			candidate = s.Visit.Path
		}
		idx := re.FindStringIndex(candidate)
		return idx != nil && idx[0] == 0 && idx[1] == len(candidate)
	}), nil
}
