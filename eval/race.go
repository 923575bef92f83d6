package eval

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/awesome-archive/bfs/traverse"
)

// isNonexistence reports whether err is ENOENT, ENOTDIR, or the platform
// equivalent -- the class of error §4.7 names as eligible for race
// suppression. eval deliberately never imports golang.org/x/sys, so ENOENT
// is recognized through the stdlib fs.ErrNotExist sentinel (which
// golang.org/x/sys/unix.Errno satisfies) and ENOTDIR through its message,
// the same "not a directory" text every libc strerror(3) produces for it.
func isNonexistence(err error) bool {
	if errors.Is(err, os.ErrNotExist) {
		return true
	}
	return strings.Contains(err.Error(), "not a directory")
}

// shouldIgnoreRace implements §4.7: a nonexistence error is suppressed
// silently only when ignore_races is configured AND depth > 0. The root can
// never be considered a race -- §9 calls this out as a deliberate asymmetry
// that must not be generalized away.
func shouldIgnoreRace(cfg *Config, depth int, err error) bool {
	return cfg.IgnoreRaces && depth > 0 && isNonexistence(err)
}

// reportError applies the race policy to err observed at the current
// visit's depth and path. When not suppressed, it formats "<path>:
// <message>" to the colored error stream and marks the exit status failed.
func reportError(s *State, err error) {
	if shouldIgnoreRace(s.Config, s.Visit.Depth, err) {
		return
	}
	s.Config.ExitStatus.Fail()
	writeColoredError(s.Config, s.Visit.Path, err)
}

// writeColoredError formats a path-prefixed diagnostic, coloring the path
// the way -print/-ls color paths, and disabling color automatically on
// non-tty output via color.NoColor.
func writeColoredError(cfg *Config, path string, err error) {
	if cfg.ErrOut == nil {
		return
	}
	c := color.New(color.FgRed)
	if cfg.NoColor {
		c.DisableColor()
	}
	c.Fprintf(cfg.ErrOut, "%s", path)
	fmt.Fprintf(cfg.ErrOut, ": %s\n", err.Error())
}

// debugStatFields builds the logrus field set the STAT debug channel
// emits, mirroring dolthub-go-mysql-server/auth's AuditLog shape:
// a flat logrus.Fields built per call site rather than a bespoke struct.
func debugStatFields(v *traverse.Visit, err error) map[string]interface{} {
	fields := map[string]interface{}{
		"path":  v.Path,
		"depth": v.Depth,
		"type":  v.Type.String(),
	}
	if err != nil {
		fields["err"] = err.Error()
	}
	return fields
}

// dumpVisit builds the SEARCH-channel record for one visit (§6's "structured
// record per visit").
func dumpVisit(v *traverse.Visit, action traverse.Action) map[string]interface{} {
	return map[string]interface{}{
		"path":   v.Path,
		"depth":  v.Depth,
		"type":   v.Type.String(),
		"phase":  v.Phase.String(),
		"action": action.String(),
	}
}
