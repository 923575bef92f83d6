// Package eval is the evaluation core: the expression tree, its predicate
// and combinator implementations, the per-visit driver, the identity set
// backing -unique, the exec batch manager, and the FD budget estimator.
// Nothing in this package touches a raw file descriptor or dirent directly
// -- all of that is supplied through the traverse and sysutil contracts, so
// the core stays exactly what spec called out as "the hard part": the
// Boolean algebra and bookkeeping around side-effectful tests.
package eval

import (
	"time"
)

// EvalFunc is the capability every node is polymorphic over: "evaluate
// against a visit, given the shared evaluation state." Modeling dispatch as
// a captured closure rather than a kind tag plus payload struct keeps each
// predicate constructor (NewNameTest, NewSizeTest, ...) free to close over whatever
// operand shape it needs, instead of every Node carrying fields only one
// variant uses.
type EvalFunc func(n *Node, s *State) bool

// Node is the expression tree's one structural type (§3's "Expression
// node"): a dispatch slot plus the classification bits and counters that
// are intrinsic to every node regardless of what it computes. Left/Right
// are only populated by combinators; leaf predicates and actions leave both
// nil.
type Node struct {
	// Name identifies the node for debug tracing (e.g. "-name", "-and");
	// it carries no semantic weight.
	Name string

	Eval EvalFunc

	Left, Right *Node

	// Static classification bits (§3): must hold for the lifetime of the
	// node, set once at construction.
	AlwaysTrue    bool
	AlwaysFalse   bool
	NeverReturns  bool
	PersistentFDs int
	EphemeralFDs  int

	// Per-node counters, updated only by the driver (never by Eval
	// itself) per §3's invariant.
	Evaluations uint64
	Successes   uint64
	Elapsed     time.Duration

	// execBatch is non-nil only on nodes constructed by NewExec; it lets
	// FinishExecs find every batch in the tree without a separate
	// registry (§4.6's "exec batch ownership lives at the exec node
	// itself", §9).
	execBatch *ExecBatch
}

// evaluate wraps one call to n.Eval with the driver-side bookkeeping §4.1
// describes: sample a clock, dispatch, update counters, and sanity-check
// the always_true/always_false/never_returns contract. Go's time.Now()
// already carries a monotonic reading when the OS provides one, so unlike
// eval.c there is no separate realtime fallback path to implement; absent a
// monotonic clock there is nothing left to degrade to.
func evaluate(n *Node, s *State) bool {
	start := time.Now()
	result := n.Eval(n, s)
	n.Elapsed += time.Since(start)

	n.Evaluations++
	if result {
		n.Successes++
	}

	if n.AlwaysTrue && !result && !s.Quit {
		panicInvariant(n, "always_true node returned false without quitting")
	}
	if n.AlwaysFalse && result {
		panicInvariant(n, "always_false node returned true")
	}
	if n.NeverReturns && !s.Quit {
		panicInvariant(n, "never_returns node returned without setting quit")
	}

	return result
}

// panicInvariant reports a broken node contract by panicking: tripping one
// of these checks is a bug in a predicate constructor, not a runtime
// condition a caller can recover from productively, so it is surfaced
// immediately rather than left to corrupt counters or silently misreport a
// result.
func panicInvariant(n *Node, msg string) {
	panic("eval: " + n.Name + ": " + msg)
}

// Evaluate runs a node against a visit, performing the same accounting
// evaluate does. It's the entry point combinators use to drive their
// children and the one the driver uses for the tree root.
func Evaluate(n *Node, s *State) bool {
	return evaluate(n, s)
}

// leaf constructs a Node with no children, for predicates and actions.
func leaf(name string, fn EvalFunc) *Node {
	return &Node{Name: name, Eval: fn}
}
