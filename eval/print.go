package eval

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/awesome-archive/bfs/traverse"
)

// colorPath writes path to w in the configured path color, honoring
// Config.NoColor -- the same color.New/DisableColor pattern the race
// reporter uses for its diagnostics.
func colorPath(cfg *Config, w io.Writer, path string) {
	c := color.New(color.FgCyan)
	if cfg.NoColor {
		c.DisableColor()
	}
	c.Fprint(w, path)
}

// NewPrintAction returns the -print action: writes the colored path
// followed by a newline to Config.Out.
func NewPrintAction() *Node {
	n := leaf("-print", func(_ *Node, s *State) bool {
		colorPath(s.Config, s.Config.Out, s.Visit.Path)
		fmt.Fprint(s.Config.Out, "\n")
		return true
	})
	n.AlwaysTrue = true
	return n
}

// NewPrint0Action returns the -print0 action: path followed by a NUL byte,
// uncolored (NUL-delimited output is meant for machine consumption).
func NewPrint0Action() *Node {
	n := leaf("-print0", func(_ *Node, s *State) bool {
		fmt.Fprint(s.Config.Out, s.Visit.Path, "\x00")
		return true
	})
	n.AlwaysTrue = true
	return n
}

// printxEscapes is the fixed set of characters -printx backslash-escapes
// (§4.2): space, tab, newline, backslash, dollar, single quote, double
// quote, backtick.
const printxEscapes = " \t\n\\$'\"`"

// NewPrintxAction returns the -printx action.
func NewPrintxAction() *Node {
	n := leaf("-printx", func(_ *Node, s *State) bool {
		var b strings.Builder
		for _, r := range s.Visit.Path {
			if strings.ContainsRune(printxEscapes, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
		fmt.Fprint(s.Config.Out, b.String(), "\n")
		return true
	})
	n.AlwaysTrue = true
	return n
}

// modeTypeChar is the leading character of an -ls mode string.
func modeTypeChar(t traverse.Type) byte {
	switch t {
	case traverse.TypeDir:
		return 'd'
	case traverse.TypeChar:
		return 'c'
	case traverse.TypeBlock:
		return 'b'
	case traverse.TypeFifo:
		return 'p'
	case traverse.TypeSymlink:
		return 'l'
	case traverse.TypeSocket:
		return 's'
	case traverse.TypeDoor:
		return 'D'
	case traverse.TypeWhiteout:
		return 'w'
	case traverse.TypeRegular:
		return '-'
	default:
		return '?'
	}
}

// formatModeString renders the 10-character mode string -ls prints:
// type char plus rwx for owner/group/other, with setuid/setgid/sticky
// folded into the executable position the way ls(1) does.
func formatModeString(t traverse.Type, mode uint32) string {
	var b strings.Builder
	b.WriteByte(modeTypeChar(t))

	triad := func(r, w, x rune, bit uint32, setBit uint32, setChar, setCharNoExec rune) {
		if mode&(bit<<2) != 0 {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
		if mode&(bit<<1) != 0 {
			b.WriteRune(w)
		} else {
			b.WriteByte('-')
		}
		switch {
		case mode&setBit != 0 && mode&bit != 0:
			b.WriteRune(setChar)
		case mode&setBit != 0:
			b.WriteRune(setCharNoExec)
		case mode&bit != 0:
			b.WriteRune(x)
		default:
			b.WriteByte('-')
		}
	}

	triad('r', 'w', 'x', 0100, 04000, 's', 'S')
	triad('r', 'w', 'x', 0010, 02000, 's', 'S')
	triad('r', 'w', 'x', 0001, 01000, 't', 'T')

	return b.String()
}

// lsTimeFormat picks -ls's two time layouts (§4.2): a recent-file layout
// with hours:minutes for an mtime after now minus six 30-day months and
// before now plus one day, or an older-file layout with the year otherwise.
func lsTimeFormat(now, mtime time.Time) string {
	recentStart := now.Add(-6 * 30 * 24 * time.Hour)
	recentEnd := now.Add(24 * time.Hour)
	if mtime.After(recentStart) && mtime.Before(recentEnd) {
		return mtime.Format("Jan _2 15:04")
	}
	return mtime.Format("Jan _2  2006")
}

// ownerField renders a uid as its resolved name, or the decimal id if
// unresolvable -- "owner name or uid" per §4.2.
func ownerField(users func(uint32) (string, bool), id uint32) string {
	if name, ok := users(id); ok {
		return name
	}
	return strconv.FormatUint(uint64(id), 10)
}

// NewLsAction returns the -ls/-fls action: formats the fixed-width field
// sequence §4.2 specifies, in exact order.
func NewLsAction() *Node {
	n := leaf("-ls", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}

		blocks1K := ceilDiv(buf.Blocks*UnitBlock, UnitKiB)
		modeStr := formatModeString(s.Visit.Type, buf.Mode&07777)
		aclMarker := byte(' ')
		if hasACL, _ := s.Config.FS.HasACL(s.Visit.AtFD, s.Visit.AtPath); hasACL {
			aclMarker = '+'
		}

		owner := ownerField(s.Config.Users.LookupUser, buf.Uid)
		group := ownerField(s.Config.Users.LookupGroup, buf.Gid)

		var sizeField string
		if s.Visit.Type == traverse.TypeBlock || s.Visit.Type == traverse.TypeChar {
			major := (buf.Rdev >> 8) & 0xfff
			minor := buf.Rdev & 0xff
			sizeField = fmt.Sprintf("%3d, %3d", major, minor)
		} else {
			sizeField = fmt.Sprintf("%d", buf.Size)
		}

		timeField := lsTimeFormat(s.Config.Now, buf.Mtime)

		fmt.Fprintf(s.Config.Out, "%9d %6d %s%c %2d %-8s %-8s %s %s ",
			buf.Ino, blocks1K, modeStr, aclMarker, buf.Nlink, owner, group, sizeField, timeField)
		colorPath(s.Config, s.Config.Out, s.Visit.Path)

		if s.Visit.Type == traverse.TypeSymlink {
			if target, err := s.Config.FS.ReadlinkAt(s.Visit.AtFD, s.Visit.AtPath); err == nil {
				fmt.Fprintf(s.Config.Out, " -> %s", target)
			}
		}
		fmt.Fprint(s.Config.Out, "\n")
		return true
	})
	n.AlwaysTrue = true
	return n
}

// PrintfFormatter renders a -printf template against one visit. Full
// printf-style templating is named in spec.md §1 as an out-of-scope
// external collaborator; this interface and its default implementation
// below are a minimal stand-in covering %p (path), %f (basename), %d
// (depth) and %% only, not the full directive set, so -printf can still be
// exercised end to end.
type PrintfFormatter interface {
	Format(template string, v *traverse.Visit) string
}

type simplePrintfFormatter struct{}

// NewPrintfFormatter returns the default PrintfFormatter.
func NewPrintfFormatter() PrintfFormatter { return simplePrintfFormatter{} }

func (simplePrintfFormatter) Format(template string, v *traverse.Visit) string {
	replacer := strings.NewReplacer(
		"%p", v.Path,
		"%f", v.Name(),
		"%d", strconv.Itoa(v.Depth),
		"%%", "%",
	)
	return replacer.Replace(template)
}

// NewPrintfAction returns the -printf action, delegating to formatter.
func NewPrintfAction(template string, formatter PrintfFormatter) *Node {
	if formatter == nil {
		formatter = NewPrintfFormatter()
	}
	n := leaf("-printf", func(_ *Node, s *State) bool {
		fmt.Fprint(s.Config.Out, formatter.Format(template, s.Visit))
		return true
	})
	n.AlwaysTrue = true
	return n
}
