package eval

import "github.com/awesome-archive/bfs/traverse"

// State is the stack-local, per-visit evaluation state (§3): everything a
// predicate or combinator needs to run, threaded explicitly rather than
// reached for as ambient/global state, per §9's "no ambient state" note.
type State struct {
	Visit  *traverse.Visit
	Config *Config

	// Action accumulates the value returned to the traversal engine;
	// predicates that need to influence it (prune, quit, exit) set it
	// directly, combinators never touch it.
	Action traverse.Action

	// Quit is raised by -quit/-exit and observed by every combinator to
	// unwind without further side effects (§4.3, §5).
	Quit bool
}

// stat fetches the visit's cached stat buffer honoring the visit's
// stat-flags, routing any error through the race-aware reporter (§4.2).
// Every predicate that needs file metadata goes through this helper rather
// than reading the Visit's caches directly.
func (s *State) stat() (*traverse.Stat, bool) {
	buf, err := s.Visit.Stat(s.Visit.StatFlags)
	if s.Config.Debug.Has(DebugStat) {
		s.Config.Log.WithFields(debugStatFields(s.Visit, err)).Debug("stat")
	}
	if err != nil {
		reportError(s, err)
		return nil, false
	}
	return buf, true
}
