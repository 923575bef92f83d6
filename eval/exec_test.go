package eval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// recordingRunner is a Runner stub recording every argv it was asked to run.
type recordingRunner struct {
	calls [][]string
	fail  bool
}

func (r *recordingRunner) Run(argv []string) error {
	r.calls = append(r.calls, append([]string(nil), argv...))
	if r.fail {
		return errors.New("boom")
	}
	return nil
}

func TestExecBatchNonBatchedFlushesEveryAppend(t *testing.T) {
	runner := &recordingRunner{}
	batch := NewExecBatch([]string{"cmd", "{}"}, false, NewArgvBuilder(), runner)

	require.True(t, batch.Append("/t/a"))
	require.True(t, batch.Append("/t/b"))
	require.Len(t, runner.calls, 2, "non-batched -exec must flush on every visit")
	require.Equal(t, []string{"cmd", "/t/a"}, runner.calls[0])
	require.Equal(t, []string{"cmd", "/t/b"}, runner.calls[1])
}

func TestExecBatchAccumulatesUntilThreshold(t *testing.T) {
	runner := &recordingRunner{}
	batch := NewExecBatch([]string{"cmd", "{}"}, true, NewArgvBuilder(), runner)
	batch.MaxArgs = 2

	require.True(t, batch.Append("/t/a"))
	require.Empty(t, runner.calls, "batched -exec must not flush before the threshold")

	require.True(t, batch.Append("/t/b"))
	require.Len(t, runner.calls, 1, "batched -exec must flush once the threshold is crossed")
	require.Equal(t, []string{"cmd", "/t/a", "/t/b"}, runner.calls[0])
}

func TestExecBatchFinishFlushesRemainder(t *testing.T) {
	runner := &recordingRunner{}
	batch := NewExecBatch([]string{"cmd", "{}"}, true, NewArgvBuilder(), runner)
	batch.MaxArgs = 100

	batch.Append("/t/a")
	require.Empty(t, runner.calls)

	ok := batch.Finish()
	require.True(t, ok)
	require.Len(t, runner.calls, 1, "Finish must flush whatever remains at traversal end")
}

func TestExecBatchFinishOnEmptyBatchIsNoop(t *testing.T) {
	runner := &recordingRunner{}
	batch := NewExecBatch([]string{"cmd", "{}"}, true, NewArgvBuilder(), runner)

	ok := batch.Finish()
	require.True(t, ok)
	require.Empty(t, runner.calls)
}

func TestFinishExecsFlushesEveryBatchAndRecordsFailure(t *testing.T) {
	cfg := DefaultConfig()

	okRunner := &recordingRunner{}
	failRunner := &recordingRunner{fail: true}

	okBatch := NewExecBatch([]string{"cmd", "{}"}, true, NewArgvBuilder(), okRunner)
	failBatch := NewExecBatch([]string{"bad", "{}"}, true, NewArgvBuilder(), failRunner)

	okBatch.Append("/t/a")
	failBatch.Append("/t/b")

	okNode := NewExec(okBatch)
	failNode := NewExec(failBatch)
	root := NewComma(okNode, failNode)

	FinishExecs(cfg, root)

	require.Len(t, okRunner.calls, 1)
	require.Len(t, failRunner.calls, 1)
	require.Equal(t, 1, cfg.ExitStatus.Code(), "a flush failure in one batch must mark the exit status")
}

func TestFinishExecsVisitsBothSiblingsDespiteFailure(t *testing.T) {
	cfg := DefaultConfig()

	failRunner := &recordingRunner{fail: true}
	okRunner := &recordingRunner{}

	failBatch := NewExecBatch([]string{"bad", "{}"}, true, NewArgvBuilder(), failRunner)
	okBatch := NewExecBatch([]string{"cmd", "{}"}, true, NewArgvBuilder(), okRunner)

	failBatch.Append("/t/a")
	okBatch.Append("/t/b")

	root := NewComma(NewExec(failBatch), NewExec(okBatch))

	FinishExecs(cfg, root)

	require.Len(t, okRunner.calls, 1, "a failing sibling batch must not stop the remaining batches from flushing")
}
