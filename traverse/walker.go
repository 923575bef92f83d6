package traverse

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"
)

// identity names a file for the cycle-detection and mount-crossing checks,
// the same (device, inode) pairing the evaluation core uses for -unique.
type identity struct {
	dev uint64
	ino uint64
}

// frame is one open directory pending descent. Each subdirectory is
// descended recursively (descendOne calls descendDFS for it), so nesting
// depth is bounded by the Go call stack.
type frame struct {
	dirFD   int
	dirPath string
	depth   int
	closeFD bool
}

// Walker is a single-threaded, fd-relative implementation of Engine. Unlike
// the concurrent reference walker it is modeled on, Walker invokes its
// callback strictly sequentially: the evaluation core it feeds is not
// reentrant.
type Walker struct {
	Flags     Flags
	Strategy  Strategy
	MaxOpenFD int // budget hint; 0 means unbounded

	seen    map[identity]struct{}
	rootDev map[identity]struct{}
}

// Run implements Engine.
func (w *Walker) Run(roots []string, cb Callback) error {
	if w.seen == nil && w.Flags.Has(FlagDetectCycles) {
		w.seen = make(map[identity]struct{})
	}
	if w.rootDev == nil && (w.Flags.Has(FlagMount) || w.Flags.Has(FlagXdev)) {
		w.rootDev = make(map[identity]struct{})
	}

	switch w.Strategy {
	case IDS:
		return w.runIDS(roots, cb)
	case BFS:
		return w.runBFS(roots, cb)
	default:
		return w.runDFS(roots, cb)
	}
}

func (w *Walker) visitRoot(root string, cb Callback) (Action, *frame, error) {
	st, err := os.Lstat(root)
	v := &Visit{
		Path:       root,
		Root:       root,
		Depth:      0,
		AtFD:       unix.AT_FDCWD,
		AtPath:     root,
		NameOffset: rootNameOffset(root),
		StatFlags:  StatNoFollow,
	}
	if err != nil {
		v.Type = TypeError
		v.Err = err
		return cb(v), nil, nil
	}

	fillStat(v, st, w.follows(0))

	if v.Type == TypeDir {
		fd, oerr := unix.Open(root, unix.O_RDONLY|unix.O_CLOEXEC|dirOpenFlag(), 0)
		if oerr != nil {
			v.Type = TypeError
			v.Err = oerr
			return cb(v), nil, nil
		}
		if w.rootDev != nil {
			w.rootDev[identity{v.StatCache.Buf.Dev, 0}] = struct{}{}
		}
		act := cb(v)
		return act, &frame{dirFD: fd, dirPath: root, depth: 0, closeFD: true}, nil
	}

	return cb(v), nil, nil
}

// rootNameOffset mimics bfs's handling of trailing slashes on root paths:
// -name strips them, so the name offset must point past any that exist.
func rootNameOffset(root string) int {
	trimmed := strings.TrimRight(root, "/")
	if trimmed == "" {
		return 0
	}
	idx := strings.LastIndexByte(trimmed, '/')
	return idx + 1
}

func (w *Walker) follows(depth int) bool {
	if w.Flags.Has(FlagLogical) {
		return true
	}
	if w.Flags.Has(FlagComfollow) && depth == 0 {
		return true
	}
	return false
}

// runDFS walks depth-first using an explicit directory stack.
func (w *Walker) runDFS(roots []string, cb Callback) error {
	for _, root := range roots {
		act, fr, err := w.visitRoot(root, cb)
		if err != nil {
			return err
		}
		if act == Stop {
			return nil
		}
		if fr == nil || act == Prune {
			if fr != nil {
				unix.Close(fr.dirFD)
			}
			continue
		}
		stop, err := w.descendOne(fr, cb)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
	return nil
}

func (w *Walker) descendDFS(root *frame, cb Callback) (bool, error) {
	stack := []*frame{root}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := readDirAt(fr.dirFD)
		if fr.closeFD {
			defer unix.Close(fr.dirFD)
		}
		if err != nil {
			v := &Visit{Path: fr.dirPath, Root: fr.dirPath, Depth: fr.depth, Type: TypeError, Err: err}
			if cb(v) == Stop {
				return true, nil
			}
			continue
		}

		var subdirs []*frame
		for _, name := range entries {
			childPath := joinPath(fr.dirPath, name)
			v := &Visit{
				Path:       childPath,
				Root:       fr.dirPath,
				Depth:      fr.depth + 1,
				AtFD:       fr.dirFD,
				AtPath:     name,
				NameOffset: len(childPath) - len(name),
				StatFlags:  StatNoFollow,
			}

			st, lerr := fstatat(fr.dirFD, name, false)
			if lerr != nil {
				v.Type = TypeError
				v.Err = lerr
				if cb(v) == Stop {
					return true, nil
				}
				continue
			}
			fillStat(v, st, w.follows(fr.depth+1))

			if w.cyclic(v) {
				continue
			}
			if !w.sameDevice(v) {
				continue
			}

			act := cb(v)
			if act == Stop {
				return true, nil
			}
			if v.Type == TypeDir && act != Prune {
				fd, operr := unix.Openat(fr.dirFD, name, unix.O_RDONLY|unix.O_CLOEXEC|dirOpenFlag(), 0)
				if operr != nil {
					ev := &Visit{Path: childPath, Root: fr.dirPath, Depth: fr.depth + 1, Type: TypeError, Err: operr}
					if cb(ev) == Stop {
						return true, nil
					}
					continue
				}
				subdirs = append(subdirs, &frame{dirFD: fd, dirPath: childPath, depth: fr.depth + 1, closeFD: true})
			} else if v.Type == TypeDir && act == Prune {
				// Pruned: don't descend, nothing more to do for this entry.
				_ = act
			}

			if w.Flags.Has(FlagDepth) && v.Type == TypeDir {
				// post-order visit happens after descent; descendOne emits it
				// once this directory's children are drained.
			}
		}

		// Descend subdirs depth-first in name order; descendOne emits each
		// one's post-order visit for -depth mode after its children drain.
		for _, sub := range subdirs {
			stop, err := w.descendOne(sub, cb)
			if err != nil {
				return false, err
			}
			if stop {
				return true, nil
			}
		}
	}
	return false, nil
}

// descendOne processes a single subdirectory frame fully (its entries, and
// recursively their subdirectories), emitting the post-order visit for the
// directory itself afterward when -depth mode is active.
func (w *Walker) descendOne(fr *frame, cb Callback) (bool, error) {
	stop, err := w.descendDFS(fr, cb)
	if err != nil || stop {
		return stop, err
	}
	if w.Flags.Has(FlagDepth) {
		v := &Visit{
			Path:       fr.dirPath,
			Root:       fr.dirPath,
			Depth:      fr.depth,
			AtFD:       unix.AT_FDCWD,
			AtPath:     fr.dirPath,
			NameOffset: rootNameOffset(fr.dirPath),
			Type:       TypeDir,
			Phase:      Post,
			StatFlags:  StatNoFollow,
		}
		if st, err := os.Lstat(fr.dirPath); err == nil {
			fillStat(v, st, false)
			v.Phase = Post
		}
		if cb(v) == Stop {
			return true, nil
		}
	}
	return false, nil
}

// runBFS walks level by level.
func (w *Walker) runBFS(roots []string, cb Callback) error {
	var queue []*frame
	for _, root := range roots {
		act, fr, err := w.visitRoot(root, cb)
		if err != nil {
			return err
		}
		if act == Stop {
			return nil
		}
		if fr != nil && act != Prune {
			queue = append(queue, fr)
		} else if fr != nil {
			unix.Close(fr.dirFD)
		}
	}

	for len(queue) > 0 {
		fr := queue[0]
		queue = queue[1:]

		entries, err := readDirAt(fr.dirFD)
		if fr.closeFD {
			unix.Close(fr.dirFD)
		}
		if err != nil {
			v := &Visit{Path: fr.dirPath, Root: fr.dirPath, Depth: fr.depth, Type: TypeError, Err: err}
			if cb(v) == Stop {
				return nil
			}
			continue
		}

		for _, name := range entries {
			childPath := joinPath(fr.dirPath, name)
			v := &Visit{
				Path:       childPath,
				Root:       fr.dirPath,
				Depth:      fr.depth + 1,
				AtFD:       fr.dirFD,
				AtPath:     name,
				NameOffset: len(childPath) - len(name),
				StatFlags:  StatNoFollow,
			}
			st, lerr := fstatat(fr.dirFD, name, false)
			if lerr != nil {
				v.Type = TypeError
				v.Err = lerr
				if cb(v) == Stop {
					return nil
				}
				continue
			}
			fillStat(v, st, w.follows(fr.depth+1))
			if w.cyclic(v) || !w.sameDevice(v) {
				continue
			}

			act := cb(v)
			if act == Stop {
				return nil
			}
			if v.Type == TypeDir && act != Prune {
				fd, operr := unix.Openat(fr.dirFD, name, unix.O_RDONLY|unix.O_CLOEXEC|dirOpenFlag(), 0)
				if operr == nil {
					queue = append(queue, &frame{dirFD: fd, dirPath: childPath, depth: fr.depth + 1, closeFD: true})
				}
			}
		}
	}
	return nil
}

// runIDS performs repeated bounded depth-first passes with a growing depth
// cap, the shape iterative deepening takes; unlike bfs's production
// implementation this re-walks from the root each pass rather than resuming
// from a frontier, a simplification documented in DESIGN.md.
func (w *Walker) runIDS(roots []string, cb Callback) error {
	limit := 1
	for {
		done := true
		stopped := false
		capped := limit
		wrapped := func(v *Visit) Action {
			if v.Depth > capped {
				done = false
				return Prune
			}
			act := cb(v)
			if act == Stop {
				stopped = true
			}
			return act
		}
		if err := w.runDFS(roots, wrapped); err != nil {
			return err
		}
		if stopped || done {
			return nil
		}
		limit *= 2
		if limit > 1<<20 {
			return fmt.Errorf("traverse: iterative deepening exceeded depth limit")
		}
	}
}

func (w *Walker) cyclic(v *Visit) bool {
	if w.seen == nil || v.StatCache.Buf == nil {
		return false
	}
	id := identity{v.StatCache.Buf.Dev, v.StatCache.Buf.Ino}
	if _, ok := w.seen[id]; ok {
		return true
	}
	w.seen[id] = struct{}{}
	return false
}

func (w *Walker) sameDevice(v *Visit) bool {
	if w.rootDev == nil || v.StatCache.Buf == nil {
		return true
	}
	if v.Type != TypeDir {
		return true
	}
	_, ok := w.rootDev[identity{v.StatCache.Buf.Dev, 0}]
	return ok || len(w.rootDev) == 0
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func readDirAt(dirFD int) ([]string, error) {
	f := os.NewFile(uintptr(dupFD(dirFD)), "dirfd")
	if f == nil {
		return nil, fmt.Errorf("traverse: invalid directory fd")
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if n == "." || n == ".." {
			continue
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

func dupFD(fd int) int {
	nfd, err := unix.Dup(fd)
	if err != nil {
		return fd
	}
	return nfd
}

func fstatat(dirFD int, name string, follow bool) (*unix.Stat_t, error) {
	var st unix.Stat_t
	flags := unix.AT_SYMLINK_NOFOLLOW
	if follow {
		flags = 0
	}
	if err := unix.Fstatat(dirFD, name, &st, flags); err != nil {
		return nil, err
	}
	return &st, nil
}

func fillStat(v *Visit, st any, followed bool) {
	switch s := st.(type) {
	case os.FileInfo:
		sys, ok := s.Sys().(*unix.Stat_t)
		if !ok {
			v.Type = typeFromMode(uint32(s.Mode()))
			return
		}
		fillFromUnix(v, sys, followed)
	case *unix.Stat_t:
		fillFromUnix(v, s, followed)
	}
}

func fillFromUnix(v *Visit, st *unix.Stat_t, followed bool) {
	stat := &Stat{
		Dev:       uint64(st.Dev),
		Rdev:      uint64(st.Rdev),
		Ino:       st.Ino,
		Nlink:     uint64(st.Nlink),
		Mode:      st.Mode,
		Uid:       st.Uid,
		Gid:       st.Gid,
		Size:      st.Size,
		Blocks:    st.Blocks,
		BlockSize: int64(st.Blksize),
		Atime:     timespecToTime(st.Atim),
		Mtime:     timespecToTime(st.Mtim),
		Ctime:     timespecToTime(st.Ctim),
	}
	if followed {
		v.StatCache = StatCache{Buf: stat}
		v.LStatCache = StatCache{Buf: stat}
	} else {
		v.LStatCache = StatCache{Buf: stat}
	}
	v.Type = typeFromMode(st.Mode)
}

// TypeFromMode decodes a raw st_mode's type bits into a Type, the same
// mapping Walker applies internally when filling a Visit's Type field. It
// is exported so callers (the evaluator's -type/-xtype predicates) can
// re-derive a file's type from either of its two cached stat buffers
// without reaching into an unexported helper.
func TypeFromMode(mode uint32) Type {
	return typeFromMode(mode)
}

func typeFromMode(mode uint32) Type {
	switch mode & unix.S_IFMT {
	case unix.S_IFBLK:
		return TypeBlock
	case unix.S_IFCHR:
		return TypeChar
	case unix.S_IFDIR:
		return TypeDir
	case unix.S_IFIFO:
		return TypeFifo
	case unix.S_IFLNK:
		return TypeSymlink
	case unix.S_IFREG:
		return TypeRegular
	case unix.S_IFSOCK:
		return TypeSocket
	default:
		return TypeUnknown
	}
}

func dirOpenFlag() int {
	return unix.O_DIRECTORY
}
