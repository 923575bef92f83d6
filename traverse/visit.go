// Package traverse defines the traversal engine contract consumed by the
// evaluator in package eval, and provides one concrete implementation of it.
//
// The contract is deliberately narrow: a visit record describing one file
// at one phase of the walk, and an Action the evaluator returns to tell the
// engine whether to keep going, skip a subtree, or stop entirely. Everything
// about how files are discovered -- directory reads, symlink resolution,
// mount-point detection, cycle detection -- lives on this side of the
// boundary so that eval never touches a raw fd or dirent.
package traverse

import "time"

// Type is the observed type of a file system entry, decided without
// following a trailing symlink unless the walker's follow policy says so.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeBlock
	TypeChar
	TypeDir
	TypeDoor
	TypeFifo
	TypeSymlink
	TypePort
	TypeRegular
	TypeSocket
	TypeWhiteout
	TypeError
)

func (t Type) String() string {
	switch t {
	case TypeBlock:
		return "block"
	case TypeChar:
		return "char"
	case TypeDir:
		return "directory"
	case TypeDoor:
		return "door"
	case TypeFifo:
		return "fifo"
	case TypeSymlink:
		return "symlink"
	case TypePort:
		return "port"
	case TypeRegular:
		return "regular"
	case TypeSocket:
		return "socket"
	case TypeWhiteout:
		return "whiteout"
	case TypeError:
		return "error"
	default:
		return "unknown"
	}
}

// Phase is the point in the walk at which a file is presented to the
// callback: before its children are visited, or after.
type Phase uint8

const (
	Pre Phase = iota
	Post
)

func (p Phase) String() string {
	if p == Post {
		return "post"
	}
	return "pre"
}

// Action is returned by the callback to steer the walk.
type Action int

const (
	Continue Action = iota
	Prune
	Stop
)

func (a Action) String() string {
	switch a {
	case Prune:
		return "prune"
	case Stop:
		return "stop"
	default:
		return "continue"
	}
}

// StatFlag selects which of the two cached stat buffers a predicate wants,
// and is also the flag a walker was asked to stat with for this visit.
type StatFlag uint8

const (
	StatFollow StatFlag = 1 << iota
	StatNoFollow
	StatTryFollow
)

// Stat is the subset of POSIX stat(2) fields the evaluator's predicates
// need. It is engine-independent so that eval never imports golang.org/x/sys.
type Stat struct {
	Dev, Rdev   uint64
	Ino         uint64
	Nlink       uint64
	Mode        uint32 // full st_mode, including the type bits
	Uid, Gid    uint32
	Size        int64
	Blocks      int64
	BlockSize   int64
	Atime       time.Time
	Mtime       time.Time
	Ctime       time.Time
}

// StatCache is one of the two lazily-populated stat results a Visit carries:
// a populated buffer, or the error that stat-ing it produced.
type StatCache struct {
	Buf *Stat
	Err error
}

// Visit is the per-callback record described in the evaluation core's data
// model. AtFD/AtPath are only valid for the duration of the callback that
// receives them; the two stat caches are valid until the callback returns.
type Visit struct {
	Path       string
	Root       string
	Depth      int
	AtFD       int
	AtPath     string
	NameOffset int
	Type       Type
	Phase      Phase
	Err        error

	StatCache  StatCache
	LStatCache StatCache
	StatFlags  StatFlag
}

// Stat returns the cached stat result honoring flags: NoFollow selects the
// lstat-style cache, anything else selects the follow cache.
func (v *Visit) Stat(flags StatFlag) (*Stat, error) {
	if flags&StatNoFollow != 0 {
		return v.LStatCache.Buf, v.LStatCache.Err
	}
	return v.StatCache.Buf, v.StatCache.Err
}

// Name returns the basename of Path, i.e. the portion at NameOffset.
func (v *Visit) Name() string {
	if v.NameOffset < 0 || v.NameOffset > len(v.Path) {
		return v.Path
	}
	return v.Path[v.NameOffset:]
}

// Callback is invoked once per Visit; its return value steers the walk.
type Callback func(*Visit) Action

// Strategy selects the order in which the engine discovers files.
type Strategy int

const (
	BFS Strategy = iota
	DFS
	IDS // iterative deepening
)

func (s Strategy) String() string {
	switch s {
	case DFS:
		return "dfs"
	case IDS:
		return "ids"
	default:
		return "bfs"
	}
}

// Flags mirror the traversal engine's configuration knobs named in the
// evaluation core's shared configuration.
type Flags uint16

const (
	FlagStat Flags = 1 << iota
	FlagRecover
	FlagDepth
	FlagComfollow
	FlagLogical
	FlagDetectCycles
	FlagMount
	FlagXdev
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Engine is the traversal engine contract consumed by the evaluator: given
// root paths and a callback, it streams Visit records until every root is
// exhausted, the callback returns Stop, or a fatal internal error occurs.
type Engine interface {
	Run(roots []string, cb Callback) error
}
