package eval

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/awesome-archive/bfs/traverse"
)

func newDriverTestConfig() *Config {
	cfg := DefaultConfig()
	cfg.MinDepth = 0
	cfg.MaxDepth = 100
	return cfg
}

func visitAt(path string, depth int, typ traverse.Type, phase traverse.Phase) *traverse.Visit {
	return &traverse.Visit{
		Path:       path,
		Depth:      depth,
		Type:       typ,
		Phase:      phase,
		NameOffset: len(path) - 1,
	}
}

func TestDriverInvokesRootAtMostOnce(t *testing.T) {
	cfg := newDriverTestConfig()
	count := leaf("counter", func(*Node, *State) bool { return true })
	d := NewDriver(cfg, count)

	d.Visit(visitAt("/t/a", 1, traverse.TypeRegular, traverse.Pre))

	require.Equal(t, uint64(1), count.Evaluations, "driver must invoke the tree root at most once per visit")
}

func TestDriverPrunesTraversalReportedError(t *testing.T) {
	cfg := newDriverTestConfig()
	root := NewTrueTest()
	d := NewDriver(cfg, root)

	v := &traverse.Visit{Path: "/t/gone", Depth: 1, Type: traverse.TypeError, Err: errXargsUnsafe}
	act := d.Visit(v)

	require.Equal(t, traverse.Prune, act)
	require.Equal(t, uint64(0), root.Evaluations, "an error visit must never reach the expression tree")
	require.Equal(t, 1, cfg.ExitStatus.Code())
}

func TestDriverIgnoresRaceAtNonzeroDepth(t *testing.T) {
	cfg := newDriverTestConfig()
	cfg.IgnoreRaces = true
	root := NewTrueTest()
	d := NewDriver(cfg, root)

	v := &traverse.Visit{Path: "/t/gone", Depth: 1, Type: traverse.TypeError, Err: os.ErrNotExist}
	d.Visit(v)

	require.Equal(t, 0, cfg.ExitStatus.Code(), "a suppressed race must not mutate exit status")
}

func TestDriverNeverSuppressesRootError(t *testing.T) {
	cfg := newDriverTestConfig()
	cfg.IgnoreRaces = true
	root := NewTrueTest()
	d := NewDriver(cfg, root)

	v := &traverse.Visit{Path: "/t", Depth: 0, Type: traverse.TypeError, Err: os.ErrNotExist}
	d.Visit(v)

	require.Equal(t, 1, cfg.ExitStatus.Code(), "the root path must never be treated as a race, per spec's deliberate asymmetry")
}

func TestDriverMaxDepthPrunes(t *testing.T) {
	cfg := newDriverTestConfig()
	cfg.MaxDepth = 2
	root := NewTrueTest()
	d := NewDriver(cfg, root)

	act := d.Visit(visitAt("/t/a/b/c", 3, traverse.TypeRegular, traverse.Pre))
	require.Equal(t, traverse.Prune, act)
}

func TestDriverMinDepthSkipsEvaluation(t *testing.T) {
	cfg := newDriverTestConfig()
	cfg.MinDepth = 2
	root := leaf("counter", func(*Node, *State) bool { return true })
	d := NewDriver(cfg, root)

	d.Visit(visitAt("/t/a", 1, traverse.TypeRegular, traverse.Pre))
	require.Equal(t, uint64(0), root.Evaluations, "below mindepth the root must not be evaluated")

	d.Visit(visitAt("/t/a/b", 2, traverse.TypeRegular, traverse.Pre))
	require.Equal(t, uint64(1), root.Evaluations)
}

func TestDriverXargsUnsafeRejectsPath(t *testing.T) {
	cfg := newDriverTestConfig()
	cfg.XargsSafe = true
	root := NewTrueTest()
	d := NewDriver(cfg, root)

	act := d.Visit(visitAt("/t/has space", 1, traverse.TypeRegular, traverse.Pre))
	require.Equal(t, traverse.Prune, act)
	require.Equal(t, 1, cfg.ExitStatus.Code())
	require.Equal(t, uint64(0), root.Evaluations)
}

func TestDriverUniquePrunesRepeatIdentity(t *testing.T) {
	cfg := newDriverTestConfig()
	cfg.Unique = true
	root := leaf("counter", func(*Node, *State) bool { return true })
	d := NewDriver(cfg, root)

	first := visitAt("/t/a", 1, traverse.TypeRegular, traverse.Pre)
	first.StatCache = traverse.StatCache{Buf: &traverse.Stat{Dev: 1, Ino: 42}}

	second := visitAt("/t/b", 1, traverse.TypeRegular, traverse.Pre)
	second.StatCache = traverse.StatCache{Buf: &traverse.Stat{Dev: 1, Ino: 42}}

	d.Visit(first)
	act := d.Visit(second)

	require.Equal(t, traverse.Prune, act)
	require.Equal(t, uint64(1), root.Evaluations, "a repeat identity must be pruned before reaching the tree")
}

func TestDriverVisitPhaseGatingUnderDepth(t *testing.T) {
	cfg := newDriverTestConfig()
	cfg.Flags = traverse.FlagDepth
	root := leaf("counter", func(*Node, *State) bool { return true })
	d := NewDriver(cfg, root)

	// A directory's pre-order visit must not evaluate when -depth is set...
	d.Visit(visitAt("/t/a", 1, traverse.TypeDir, traverse.Pre))
	require.Equal(t, uint64(0), root.Evaluations)

	// ...but its post-order visit must.
	d.Visit(visitAt("/t/a", 1, traverse.TypeDir, traverse.Post))
	require.Equal(t, uint64(1), root.Evaluations)
}
