package eval

import (
	"os/exec"
)

// ArgvBuilder assembles the argv for one exec invocation from a command
// template (containing the "{}" placeholder) and the batch of paths
// collected so far. Full argv templating is named in spec.md §1 as an
// out-of-scope external collaborator; this is the minimal stand-in needed
// to exercise -exec end to end, not the full substitution engine.
type ArgvBuilder interface {
	Build(template []string, paths []string) []string
}

type simpleArgvBuilder struct{}

// NewArgvBuilder returns the default ArgvBuilder: every "{}" token in the
// template is replaced by all of the batch's paths, one argument per path.
// The position of "{}" within the template is not checked.
func NewArgvBuilder() ArgvBuilder { return simpleArgvBuilder{} }

func (simpleArgvBuilder) Build(template []string, paths []string) []string {
	argv := make([]string, 0, len(template)+len(paths))
	for _, tok := range template {
		if tok == "{}" {
			argv = append(argv, paths...)
			continue
		}
		argv = append(argv, tok)
	}
	return argv
}

// Runner launches one assembled argv. The default runs it as a real
// subprocess; tests substitute a recording stub.
type Runner interface {
	Run(argv []string) error
}

type execRunner struct{}

// NewRunner returns the default Runner, backed by os/exec.
func NewRunner() Runner { return execRunner{} }

func (execRunner) Run(argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	return cmd.Run()
}

// defaultBatchArgs and defaultBatchBytes mirror the thresholds bfs derives
// from ARG_MAX: a conservative fixed cap rather than querying the platform
// limit, since that query lives on the excluded command-line layer.
const (
	defaultBatchArgs  = 4096
	defaultBatchBytes = 128 * 1024
)

// ExecBatch holds the argv accumulation state for one -exec node (§4.6).
// The non-batched form (-exec cmd {} \;) flushes after every path; the
// batched form (-exec cmd {} +) accumulates until a size/byte threshold is
// crossed, and is flushed once more at traversal end if any paths remain
// (an empty batch runs nothing).
type ExecBatch struct {
	Template  []string
	Batched   bool
	MaxArgs   int
	MaxBytes  int
	builder   ArgvBuilder
	runner    Runner
	paths     []string
	bytes     int
	flushedOK bool
}

// NewExecBatch returns a batch for the given command template.
func NewExecBatch(template []string, batched bool, builder ArgvBuilder, runner Runner) *ExecBatch {
	if builder == nil {
		builder = NewArgvBuilder()
	}
	if runner == nil {
		runner = NewRunner()
	}
	return &ExecBatch{
		Template: template,
		Batched:  batched,
		MaxArgs:  defaultBatchArgs,
		MaxBytes: defaultBatchBytes,
		builder:  builder,
		runner:   runner,
	}
}

// Append adds path to the batch, flushing immediately for the non-batched
// form or once the accumulated size/byte thresholds are crossed for the
// batched form. Returns whether the (possibly triggered) flush succeeded;
// pure accumulation without a flush always returns true.
func (b *ExecBatch) Append(path string) bool {
	b.paths = append(b.paths, path)
	b.bytes += len(path) + 1

	if !b.Batched {
		return b.flush()
	}
	if len(b.paths) >= b.MaxArgs || b.bytes >= b.MaxBytes {
		return b.flush()
	}
	return true
}

// Finish flushes any remaining accumulated paths; called exactly once per
// batch at traversal end via the finish walk.
func (b *ExecBatch) Finish() bool {
	if len(b.paths) == 0 {
		return true
	}
	return b.flush()
}

func (b *ExecBatch) flush() bool {
	argv := b.builder.Build(b.Template, b.paths)
	b.paths = b.paths[:0]
	b.bytes = 0
	err := b.runner.Run(argv)
	b.flushedOK = err == nil
	return err == nil
}

// NewExec returns a node implementing the -exec/-ok family: each evaluation
// appends the visit's path to the batch and succeeds iff the batch (for the
// non-batched form, immediately; for the batched form, only when a flush
// was actually triggered) ran without error. The batched form's node
// carries the ExecBatch itself so FinishExecs can find and flush it.
func NewExec(batch *ExecBatch) *Node {
	n := leaf(execName(batch), func(n *Node, s *State) bool {
		return batch.Append(s.Visit.Path)
	})
	n.PersistentFDs = 0
	n.EphemeralFDs = 1
	n.execBatch = batch
	return n
}

func execName(b *ExecBatch) string {
	if b.Batched {
		return "-exec...+"
	}
	return "-exec"
}

// FinishExecs performs the recursive finish walk §4.6 and §5 describe:
// every exec-batch node in the tree is flushed exactly once, in tree order.
// A flush error marks the shared exit status failed but does not stop the
// walk from reaching the remaining batches.
func FinishExecs(cfg *Config, root *Node) {
	if root == nil {
		return
	}
	if root.execBatch != nil {
		if !root.execBatch.Finish() {
			cfg.ExitStatus.Fail()
		}
	}
	FinishExecs(cfg, root.Left)
	FinishExecs(cfg, root.Right)
}
