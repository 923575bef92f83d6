package eval

import (
	"testing"

	"github.com/awesome-archive/bfs/traverse"
)

func newTestState() *State {
	return &State{
		Visit:  &traverse.Visit{Path: "/t/a"},
		Config: DefaultConfig(),
	}
}

// countingLeaf returns a node recording how many times it was evaluated,
// always returning result.
func countingLeaf(name string, result bool) *Node {
	return leaf(name, func(*Node, *State) bool { return result })
}

func TestAndShortCircuits(t *testing.T) {
	left := countingLeaf("left", false)
	right := countingLeaf("right", true)
	n := NewAnd(left, right)

	s := newTestState()
	if Evaluate(n, s) {
		t.Fatal("and(false, true) should be false")
	}
	if right.Evaluations != 0 {
		t.Fatalf("right child evaluated %d times, want 0 (short-circuit)", right.Evaluations)
	}
}

func TestAndEvaluatesRightWhenLeftTrue(t *testing.T) {
	left := countingLeaf("left", true)
	right := countingLeaf("right", false)
	n := NewAnd(left, right)

	s := newTestState()
	if Evaluate(n, s) {
		t.Fatal("and(true, false) should be false")
	}
	if right.Evaluations != 1 {
		t.Fatalf("right child evaluated %d times, want 1", right.Evaluations)
	}
}

func TestOrShortCircuits(t *testing.T) {
	left := countingLeaf("left", true)
	right := countingLeaf("right", false)
	n := NewOr(left, right)

	s := newTestState()
	if !Evaluate(n, s) {
		t.Fatal("or(true, false) should be true")
	}
	if right.Evaluations != 0 {
		t.Fatalf("right child evaluated %d times, want 0 (short-circuit)", right.Evaluations)
	}
}

func TestAndRespectsQuit(t *testing.T) {
	left := leaf("left", func(_ *Node, s *State) bool {
		s.Quit = true
		return true
	})
	right := countingLeaf("right", true)
	n := NewAnd(left, right)

	s := newTestState()
	if Evaluate(n, s) {
		t.Fatal("and should return false once quit is set")
	}
	if right.Evaluations != 0 {
		t.Fatalf("right child evaluated %d times after quit, want 0", right.Evaluations)
	}
}

func TestCommaRunsBothUnlessQuit(t *testing.T) {
	left := countingLeaf("left", true)
	right := countingLeaf("right", false)
	n := NewComma(left, right)

	s := newTestState()
	if Evaluate(n, s) {
		t.Fatal("comma should return right's result")
	}
	if left.Evaluations != 1 || right.Evaluations != 1 {
		t.Fatalf("comma should evaluate both children: left=%d right=%d", left.Evaluations, right.Evaluations)
	}
}

func TestCommaSkipsRightOnQuit(t *testing.T) {
	left := leaf("left", func(_ *Node, s *State) bool {
		s.Quit = true
		return true
	})
	right := countingLeaf("right", true)
	n := NewComma(left, right)

	s := newTestState()
	if Evaluate(n, s) {
		t.Fatal("comma should return false when left raised quit")
	}
	if right.Evaluations != 0 {
		t.Fatalf("right child evaluated %d times after quit, want 0", right.Evaluations)
	}
}

func TestNotNegates(t *testing.T) {
	n := NewNot(countingLeaf("inner", true))
	s := newTestState()
	if Evaluate(n, s) {
		t.Fatal("not(true) should be false")
	}
}

func TestSuccessesNeverExceedEvaluations(t *testing.T) {
	n := countingLeaf("leaf", true)
	s := newTestState()
	for i := 0; i < 5; i++ {
		Evaluate(n, s)
	}
	if n.Successes > n.Evaluations {
		t.Fatalf("successes %d exceeds evaluations %d", n.Successes, n.Evaluations)
	}
}
