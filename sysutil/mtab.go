package sysutil

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// MountTable answers -fstype by mapping a file's device number to the
// filesystem type of the mount that contains it.
type MountTable interface {
	FSType(dev uint64) string
}

type mount struct {
	dev uint64
	typ string
}

// procMounts parses /proc/mounts once, lazily, the same "read it once up
// front" idiom eval.c's FD budget estimator uses for /proc/self/fd. Lookups
// never fail: an unresolvable device yields "".
type procMounts struct {
	once   sync.Once
	mounts []mount
}

// NewMountTable returns a MountTable backed by /proc/mounts.
func NewMountTable() MountTable {
	return &procMounts{}
}

func (p *procMounts) load() {
	p.once.Do(func() {
		f, err := os.Open("/proc/mounts")
		if err != nil {
			return
		}
		defer f.Close()

		sc := bufio.NewScanner(f)
		for sc.Scan() {
			fields := strings.Fields(sc.Text())
			if len(fields) < 3 {
				continue
			}
			target, fstype := fields[1], fields[2]
			var st unix.Stat_t
			if err := unix.Stat(target, &st); err != nil {
				continue
			}
			p.mounts = append(p.mounts, mount{dev: uint64(st.Dev), typ: fstype})
		}
	})
}

func (p *procMounts) FSType(dev uint64) string {
	p.load()
	for _, m := range p.mounts {
		if m.dev == dev {
			return m.typ
		}
	}
	return ""
}

// staticMountTable is a fixed device->fstype map, useful for tests that
// can't rely on /proc/mounts reflecting the fixture tree's actual device.
type staticMountTable map[uint64]string

func NewStaticMountTable(m map[uint64]string) MountTable {
	return staticMountTable(m)
}

func (s staticMountTable) FSType(dev uint64) string {
	return s[dev]
}

// FormatDev renders a dev_t the way debug dumps in eval.c print it, major:minor.
func FormatDev(dev uint64) string {
	major := (dev >> 8) & 0xfff
	minor := dev & 0xff
	return strconv.FormatUint(major, 10) + ":" + strconv.FormatUint(minor, 10)
}
