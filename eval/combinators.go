package eval

// Boolean combinators (§4.3). Each propagates the quit flag set by -quit/
// -exit: once any child raises it, enclosing combinators stop evaluating
// further children and unwind without additional side effects (§5).

// NewNot returns a node that evaluates its right child and negates it.
func NewNot(right *Node) *Node {
	n := leaf("-not", evalNot)
	n.Right = right
	n.AlwaysTrue = right.AlwaysFalse
	n.AlwaysFalse = right.AlwaysTrue
	return n
}

func evalNot(n *Node, s *State) bool {
	return !Evaluate(n.Right, s)
}

// NewAnd returns a node implementing left-to-right short-circuit and: the
// right child is evaluated iff the left succeeded and quit was not raised.
func NewAnd(left, right *Node) *Node {
	n := leaf("-and", evalAnd)
	n.Left, n.Right = left, right
	n.AlwaysFalse = left.AlwaysFalse || right.AlwaysFalse
	n.AlwaysTrue = left.AlwaysTrue && right.AlwaysTrue
	return n
}

func evalAnd(n *Node, s *State) bool {
	if !Evaluate(n.Left, s) {
		return false
	}
	if s.Quit {
		return false
	}
	return Evaluate(n.Right, s)
}

// NewOr returns a node implementing left-to-right short-circuit or.
func NewOr(left, right *Node) *Node {
	n := leaf("-or", evalOr)
	n.Left, n.Right = left, right
	n.AlwaysTrue = left.AlwaysTrue || right.AlwaysTrue
	n.AlwaysFalse = left.AlwaysFalse && right.AlwaysFalse
	return n
}

func evalOr(n *Node, s *State) bool {
	if Evaluate(n.Left, s) {
		return true
	}
	if s.Quit {
		return false
	}
	return Evaluate(n.Right, s)
}

// NewComma returns a node implementing the comma operator: both children
// run (left's result is discarded) unless quit is raised by the left, in
// which case the right is skipped and the node returns false.
func NewComma(left, right *Node) *Node {
	n := leaf(",", evalComma)
	n.Left, n.Right = left, right
	n.AlwaysTrue = right.AlwaysTrue
	n.AlwaysFalse = right.AlwaysFalse
	return n
}

func evalComma(n *Node, s *State) bool {
	Evaluate(n.Left, s)
	if s.Quit {
		return false
	}
	return Evaluate(n.Right, s)
}
