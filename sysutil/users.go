// Package sysutil provides the small external-service collaborators the
// evaluation core depends on through interfaces: user/group name resolution,
// mount-table lookup, and the predicate-side syscalls (access, readlink,
// ACL, xattr, capability checks) that don't belong on the traversal engine's
// Visit record because they're keyed by path/fd, not by walk state.
package sysutil

import (
	"os/user"
	"strconv"
	"sync"
)

// Users resolves uid/gid to names and reports whether an id has no entry at
// all, the "-nouser"/"-nogroup" case.
type Users interface {
	LookupUser(uid uint32) (name string, ok bool)
	LookupGroup(gid uint32) (name string, ok bool)
}

// osUsers is the one ambient-stack piece grounded on the standard library
// rather than a pack dependency: no third-party user/group directory
// library appears anywhere in the retrieved examples. Results are cached
// since bfs trees commonly re-stat the same handful of owners thousands of
// times.
type osUsers struct {
	mu      sync.Mutex
	users   map[uint32]string
	missing map[uint32]bool
	groups  map[uint32]string
	gmissing map[uint32]bool
}

// NewOSUsers returns a Users backed by os/user, the platform's NSS-aware
// (or /etc/passwd-backed) resolver.
func NewOSUsers() Users {
	return &osUsers{
		users:    make(map[uint32]string),
		missing:  make(map[uint32]bool),
		groups:   make(map[uint32]string),
		gmissing: make(map[uint32]bool),
	}
}

func (u *osUsers) LookupUser(uid uint32) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if name, ok := u.users[uid]; ok {
		return name, true
	}
	if u.missing[uid] {
		return "", false
	}

	usr, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		u.missing[uid] = true
		return "", false
	}
	u.users[uid] = usr.Username
	return usr.Username, true
}

func (u *osUsers) LookupGroup(gid uint32) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if name, ok := u.groups[gid]; ok {
		return name, true
	}
	if u.gmissing[gid] {
		return "", false
	}

	grp, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		u.gmissing[gid] = true
		return "", false
	}
	u.groups[gid] = grp.Name
	return grp.Name, true
}
