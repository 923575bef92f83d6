// Command bfind demonstrates the evaluation core wired to a concrete
// traversal engine end to end. Command-line parsing is explicitly out of
// scope (spec.md §1): this wiring runs one fixed expression, equivalent to
//
//	find . -name '*.go' -print
//
// against the paths given on argv, to prove the traverse.Walker ->
// eval.Driver -> eval.Node pipeline links and runs.
package main

import (
	"fmt"
	"os"

	"github.com/awesome-archive/bfs/eval"
	"github.com/awesome-archive/bfs/traverse"
)

func main() {
	roots := os.Args[1:]
	if len(roots) == 0 {
		roots = []string{"."}
	}

	cfg := eval.DefaultConfig()
	cfg.Flags = traverse.FlagStat | traverse.FlagDetectCycles

	name, err := eval.NewNameTest("*.go", false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bfind:", err)
		os.Exit(1)
	}
	root := eval.NewAnd(name, eval.NewPrintAction())

	budget := eval.EstimateFDBudget(root)
	cfg.Log.WithFields(map[string]interface{}{"fd_budget": budget}).Debug("startup")

	driver := eval.NewDriver(cfg, root)
	walker := &traverse.Walker{Flags: cfg.Flags, Strategy: cfg.Strategy}

	if err := walker.Run(roots, driver.Visit); err != nil {
		fmt.Fprintln(os.Stderr, "bfind:", err)
		cfg.ExitStatus.Fail()
	}

	eval.FinishExecs(cfg, root)

	if cfg.Debug.Has(eval.DebugRates) {
		dumpRates(cfg, root)
	}

	os.Exit(cfg.ExitStatus.Code())
}

// dumpRates emits the per-node evaluations/successes/elapsed counters the
// RATES debug channel names in spec.md §6, via a structural walk of the
// expression tree.
func dumpRates(cfg *eval.Config, n *eval.Node) {
	if n == nil {
		return
	}
	cfg.Log.WithFields(map[string]interface{}{
		"node":        n.Name,
		"evaluations": n.Evaluations,
		"successes":   n.Successes,
		"elapsed":     n.Elapsed.String(),
	}).Debug("rates")
	dumpRates(cfg, n.Left)
	dumpRates(cfg, n.Right)
}
