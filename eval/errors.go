package eval

import (
	"errors"

	sderrors "gopkg.in/src-d/go-errors.v1"
)

// errXargsUnsafe is the diagnostic emitted by the driver's xargs-safety
// gate (§4.5 step 3); it is not a typed kind since it carries no operand.
var errXargsUnsafe = errors.New("path contains characters unsafe for xargs")

// Fatal configuration-shaped errors: the ones that must stop construction of
// the expression tree before any traversal begins, as distinct from the
// per-visit syscall errors that flow through the exit-status cell instead
// of being returned (§4.2, §7). Named as typed kinds in the same style
// dolthub-go-mysql-server's auth package declares its sentinel errors, so
// callers can distinguish them with errors.Is instead of string matching.
var (
	// ErrBadRegex is returned when a -regex/-iregex pattern fails to compile.
	ErrBadRegex = sderrors.NewKind("invalid regex %q: %s")

	// ErrBadPattern is returned when a -name/-path/-lname glob is malformed.
	ErrBadPattern = sderrors.NewKind("invalid pattern %q: %s")

	// ErrSamefileTarget is returned when -samefile's reference path cannot
	// be stat'd at tree-construction time.
	ErrSamefileTarget = sderrors.NewKind("cannot stat %q for -samefile: %s")

	// ErrBadMode is returned when a -perm symbolic or octal mode string
	// fails to parse.
	ErrBadMode = sderrors.NewKind("invalid mode %q: %s")

	// ErrNoSuchUser and ErrNoSuchGroup are returned when -user/-group name
	// to be used as name and operator mode cannot be resolved at
	// construction time.
	ErrNoSuchUser  = sderrors.NewKind("unknown user %q")
	ErrNoSuchGroup = sderrors.NewKind("unknown group %q")
)
