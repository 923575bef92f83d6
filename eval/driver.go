package eval

import (
	"strings"

	"github.com/awesome-archive/bfs/traverse"
)

// Driver is the per-visit entry point (§4.5) wrapping the expression tree:
// it applies depth filters, the visit-order filter, the unique filter,
// xargs-safety, the race policy, and debug tracing around exactly one call
// into the tree root.
type Driver struct {
	Config *Config
	Root   *Node
	Unique *UniqueSet
}

// NewDriver returns a Driver ready to be used as a traverse.Callback (via
// its Visit method). A UniqueSet is allocated automatically when
// cfg.Unique is set.
func NewDriver(cfg *Config, root *Node) *Driver {
	d := &Driver{Config: cfg, Root: root}
	if cfg.Unique {
		d.Unique = NewUniqueSet()
	}
	return d
}

// xargsUnsafe matches the whitespace/quoting characters §4.5 step 3 names:
// space, tab, newline, single quote, double quote, backslash.
const xargsUnsafe = " \t\n'\"\\"

// Visit implements the eight steps of §4.5 for one traversal visit. It has
// the shape of a traverse.Callback and is meant to be passed directly to a
// traverse.Engine.
func (d *Driver) Visit(v *traverse.Visit) traverse.Action {
	s := &State{Visit: v, Config: d.Config, Action: traverse.Continue}

	// Step 1: a traversal-reported error prunes immediately, subject to
	// the race policy.
	if v.Type == traverse.TypeError {
		if !shouldIgnoreRace(d.Config, v.Depth, v.Err) {
			d.Config.ExitStatus.Fail()
			writeColoredError(d.Config, v.Path, v.Err)
		}
		return traverse.Prune
	}

	// Step 2: -unique's pre-order gate.
	if d.Config.Unique && v.Phase == traverse.Pre {
		ok, act := applyUnique(s, d.Unique)
		if !ok {
			s.Action = act
			return d.finish(s)
		}
	}

	// Step 3: xargs-safety.
	if d.Config.XargsSafe && strings.ContainsAny(v.Path, xargsUnsafe) {
		d.Config.ExitStatus.Fail()
		writeColoredError(d.Config, v.Path, errXargsUnsafe)
		return traverse.Prune
	}

	// Step 4: maxdepth gate. A negative maxdepth is treated the same as
	// having already reached it -- bfs itself never configures a
	// negative maxdepth in practice (it defaults to unbounded), so this
	// branch exists defensively rather than as a real operating mode.
	if d.Config.MaxDepth < 0 || v.Depth >= d.Config.MaxDepth {
		s.Action = traverse.Prune
	}

	// Step 5: expected visit phase.
	expected := traverse.Pre
	if d.expectsPost(v) {
		expected = traverse.Post
	}

	// Step 6: evaluate iff the actual phase matches and depth is in range.
	if v.Phase == expected && d.Config.MinDepth <= v.Depth && v.Depth <= d.Config.MaxDepth {
		Evaluate(d.Root, s)
	}

	return d.finish(s)
}

// expectsPost implements §4.5 step 5 and §9's iterative-deepening note:
// under -depth, directories are expected post-order; under iterative
// deepening, non-directories must also be treated as post-visits, or they
// would otherwise be evaluated once per depth pass.
func (d *Driver) expectsPost(v *traverse.Visit) bool {
	if !d.Config.Flags.Has(traverse.FlagDepth) {
		return false
	}
	if d.Config.Strategy != traverse.IDS && v.Type != traverse.TypeDir {
		return false
	}
	return v.Depth < d.Config.MaxDepth
}

// finish performs steps 7-8: optional debug tracing, then returns the
// accumulated action.
func (d *Driver) finish(s *State) traverse.Action {
	if d.Config.Debug.Has(DebugSearch) {
		d.Config.Log.WithFields(dumpVisit(s.Visit, s.Action)).Debug("search")
	}
	return s.Action
}
