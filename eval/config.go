package eval

import (
	"io"
	"math"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/awesome-archive/bfs/sysutil"
	"github.com/awesome-archive/bfs/traverse"
)

// DebugFlag selects which debug channels the driver emits (§6).
type DebugFlag uint8

const (
	DebugSearch DebugFlag = 1 << iota
	DebugStat
	DebugRates
)

func (d DebugFlag) Has(bit DebugFlag) bool { return d&bit != 0 }

// ExitStatus is the shared, mutable exit-status cell every error path and
// -exit writes to (§3, §7). It is a distinct type rather than a bare *int so
// that "begins at success" and "is it still clean" read as intent, not
// pointer arithmetic.
type ExitStatus struct {
	code int
	set  bool
}

// Fail records that some error occurred without pinning a specific process
// exit code; Exit pins one explicitly (used by -exit N).
func (e *ExitStatus) Fail() {
	if !e.set {
		e.code = 1
	}
}

func (e *ExitStatus) Exit(code int) {
	e.code = code
	e.set = true
}

func (e *ExitStatus) Code() int { return e.code }

// Config is the shared, read-only (during evaluation) configuration block
// described in §3, following coregex/meta.Config's shape: one flat,
// doc-commented struct plus a DefaultConfig constructor, rather than a
// builder or functional options.
type Config struct {
	// Traversal flags and strategy, threaded straight through to the
	// traversal engine; the evaluator reads them only to gate its own
	// visit-phase logic (§4.5 step 5).
	Flags    traverse.Flags
	Strategy traverse.Strategy

	MinDepth int
	MaxDepth int

	IgnoreRaces bool
	Unique      bool
	XargsSafe   bool

	Debug DebugFlag

	// ExitStatus is the shared mutable cell every error path and -exit
	// writes to; begins at success.
	ExitStatus *ExitStatus

	Users  sysutil.Users
	Mounts sysutil.MountTable
	FS     sysutil.FS

	// Out/ErrOut back -print/-ls/-fprint and the colored error stream
	// respectively.
	Out    io.Writer
	ErrOut io.Writer
	NoColor bool

	// Now is the reference time -ls's time-field formatting and the
	// *time family predicates compare against; captured once at program
	// start so a long traversal sees a stable "now".
	Now time.Time

	Log *logrus.Logger
}

// DefaultConfig returns a Config wired to the standard collaborators:
// os/user-backed Users, /proc/mounts-backed MountTable, unix-syscall FS,
// stdout/stderr streams, and a logrus.Logger writing text-formatted records
// to stderr, matching bfs's own diagnostic stream. The logger keeps
// logrus's default Info level, so the Debug-level SEARCH/STAT/RATES records
// are not written unless the caller lowers Log.Level.
func DefaultConfig() *Config {
	log := logrus.New()
	log.Out = os.Stderr

	return &Config{
		Flags:       0,
		Strategy:    traverse.DFS,
		MinDepth:    0,
		MaxDepth:    math.MaxInt32,
		IgnoreRaces: false,
		Unique:      false,
		XargsSafe:   false,
		Debug:       0,
		ExitStatus:  &ExitStatus{},
		Users:       sysutil.NewOSUsers(),
		Mounts:      sysutil.NewMountTable(),
		FS:          sysutil.NewFS(),
		Out:         os.Stdout,
		ErrOut:      os.Stderr,
		Now:         time.Now(),
		Log:         log,
	}
}
