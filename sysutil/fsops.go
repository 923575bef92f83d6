package sysutil

import (
	"io"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// FS wraps the path/fd-relative syscalls the predicate library needs beyond
// what a Visit's cached stat buffers already carry: access checks, symlink
// targets, ACL/xattr/capability probes. All of it is fd-relative so the
// evaluator can probe a file by (dirFD, name) without re-resolving a path
// that may have changed underneath the walk (the same TOCTOU discipline
// bftw's *at() calls exist for).
type FS interface {
	// AccessAt reports whether the access check itself succeeded (ok) and
	// whether a genuine error occurred establishing that (err); a denial
	// via EACCES is ok=false, err=nil -- a real answer, not a failure.
	AccessAt(dirFD int, name string, mode uint32) (ok bool, err error)
	ReadlinkAt(dirFD int, name string) (string, error)
	HasACL(dirFD int, name string) (bool, error)
	HasCapability(dirFD int, name string) (bool, error)
	HasXattr(dirFD int, name string) (bool, error)
	Unlinkat(dirFD int, name string, isDir bool) error

	// HasDirEntries opens the directory at (dirFD, name) and reports
	// whether it contains anything besides "." and "..", backing -empty's
	// directory case (§4.2). The directory iterator used here is required
	// to filter those two entries itself.
	HasDirEntries(dirFD int, name string) (bool, error)
}

type unixFS struct{}

// NewFS returns an FS backed by golang.org/x/sys/unix.
func NewFS() FS { return unixFS{} }

func (unixFS) AccessAt(dirFD int, name string, mode uint32) (bool, error) {
	err := unix.Faccessat(dirFD, name, mode, unix.AT_EACCESS)
	if err == nil {
		return true, nil
	}
	if err == unix.EACCES || err == unix.EROFS {
		return false, nil
	}
	return false, err
}

func (unixFS) ReadlinkAt(dirFD int, name string) (string, error) {
	buf := make([]byte, 4096)
	n, err := unix.Readlinkat(dirFD, name, buf)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}

// HasACL approximates POSIX.1e ACL presence by checking for the
// system.posix_acl_access xattr: there is no portable ACL syscall in
// x/sys/unix, so this is a documented simplification (see DESIGN.md).
func (u unixFS) HasACL(dirFD int, name string) (bool, error) {
	return u.hasXattrNamed(dirFD, name, "system.posix_acl_access")
}

// HasCapability checks for the security.capability xattr Linux uses to
// store file capabilities, per eval.c's eval_capable.
func (u unixFS) HasCapability(dirFD int, name string) (bool, error) {
	return u.hasXattrNamed(dirFD, name, "security.capability")
}

func (unixFS) hasXattrNamed(dirFD int, name, xattr string) (bool, error) {
	path := fdRelPath(dirFD, name)
	if path == "" {
		return false, nil
	}
	_, err := unix.Lgetxattr(path, xattr, nil)
	if err == nil {
		return true, nil
	}
	if err == unix.ENODATA || err == unix.ENOTSUP || err == unix.ENOSYS {
		return false, nil
	}
	return false, err
}

// HasXattr reports whether the file carries any extended attribute at all.
func (unixFS) HasXattr(dirFD int, name string) (bool, error) {
	path := fdRelPath(dirFD, name)
	if path == "" {
		return false, nil
	}
	buf := make([]byte, 256)
	n, err := unix.Llistxattr(path, buf)
	if err == nil {
		return n > 0, nil
	}
	if err == unix.ENOTSUP || err == unix.ENOSYS {
		return false, nil
	}
	return false, err
}

func (unixFS) Unlinkat(dirFD int, name string, isDir bool) error {
	flags := 0
	if isDir {
		flags = unix.AT_REMOVEDIR
	}
	return unix.Unlinkat(dirFD, name, flags)
}

func (unixFS) HasDirEntries(dirFD int, name string) (bool, error) {
	fd, err := unix.Openat(dirFD, name, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_DIRECTORY, 0)
	if err != nil {
		return false, err
	}
	f := os.NewFile(uintptr(fd), name)
	defer f.Close()

	names, err := f.Readdirnames(3)
	if err != nil && err != io.EOF {
		return false, err
	}
	for _, n := range names {
		if n != "." && n != ".." {
			return true, nil
		}
	}
	return false, nil
}

// fdRelPath resolves a dirFD to an absolute path via /proc/self/fd, since
// some xattr syscalls x/sys/unix exposes are path-only, not *at() variants.
func fdRelPath(dirFD int, name string) string {
	if dirFD == unix.AT_FDCWD {
		return name
	}
	link, err := os.Readlink("/proc/self/fd/" + strconv.Itoa(dirFD))
	if err != nil {
		return ""
	}
	return link + "/" + name
}

// FDBudget reports the process's current open-file headroom, the same
// inputs eval.c's infer_fdlimit samples: the soft RLIMIT_NOFILE and the
// count of descriptors already open.
type FDBudget struct {
	SoftLimit uint64
	OpenNow   uint64
}

// Available returns the number of additional descriptors the process can
// open before hitting its soft limit, floored at zero.
func (b FDBudget) Available() uint64 {
	if b.OpenNow >= b.SoftLimit {
		return 0
	}
	return b.SoftLimit - b.OpenNow
}

// EstimateFDBudget samples RLIMIT_NOFILE and enumerates /proc/self/fd,
// mirroring eval.c's infer_fdlimit: eval.EstimateFDBudget uses this to
// derive the traversal engine's open-directory budget.
func EstimateFDBudget() FDBudget {
	var rlim unix.Rlimit
	soft := uint64(256)
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlim); err == nil {
		soft = rlim.Cur
	}

	open := uint64(0)
	if entries, err := os.ReadDir("/proc/self/fd"); err == nil {
		open = uint64(len(entries))
	}

	return FDBudget{SoftLimit: soft, OpenNow: open}
}
