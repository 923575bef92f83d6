package eval

import "github.com/awesome-archive/bfs/sysutil"

// stdioFDs accounts for stdin/stdout/stderr, already open before the
// traversal begins.
const stdioFDs = 3

// minFDBudget is the floor the traversal engine needs to make progress at
// all: one descriptor for the directory it's reading, one for the child it
// just opened.
const minFDBudget = 2

// EstimateFDBudget computes the working open-directory budget for the
// traversal engine (§4.8): start from the process's current soft
// RLIMIT_NOFILE, subtract the stdio descriptors and the expression's
// declared persistent_fds, subtract descriptors already open (sampled via
// /proc/self/fd), subtract the expression's ephemeral_fds, and floor at 2.
func EstimateFDBudget(root *Node) int {
	budget := sysutil.EstimateFDBudget()

	persistent, ephemeral := 0, 0
	if root != nil {
		persistent, ephemeral = sumFDs(root)
	}

	available := int(budget.SoftLimit) - stdioFDs - persistent
	available -= int(budget.OpenNow)
	available -= ephemeral

	if available < minFDBudget {
		return minFDBudget
	}
	return available
}

// sumFDs walks the expression tree summing each node's declared
// persistent_fds and ephemeral_fds counts.
func sumFDs(n *Node) (persistent, ephemeral int) {
	if n == nil {
		return 0, 0
	}
	persistent, ephemeral = n.PersistentFDs, n.EphemeralFDs
	lp, le := sumFDs(n.Left)
	rp, re := sumFDs(n.Right)
	return persistent + lp + rp, ephemeral + le + re
}
