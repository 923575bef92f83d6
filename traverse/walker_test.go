package traverse_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/awesome-archive/bfs/traverse"
)

// buildTestTree lays out root/a/b, root/a/b/c (file), root/d (empty dir),
// the same small fixture shape spec.md's scenario 3 and 4 describe.
func buildTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "d"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "a", "b", "c"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

type visited struct {
	path  string
	depth int
	typ   traverse.Type
	phase traverse.Phase
}

func collect(t *testing.T, w *traverse.Walker, roots []string) []visited {
	t.Helper()
	var out []visited
	err := w.Run(roots, func(v *traverse.Visit) traverse.Action {
		out = append(out, visited{v.Path, v.Depth, v.Type, v.Phase})
		return traverse.Continue
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out
}

func TestWalkerDFSVisitsEveryEntry(t *testing.T) {
	root := buildTestTree(t)
	w := &traverse.Walker{Strategy: traverse.DFS}

	got := collect(t, w, []string{root})

	want := map[string]bool{
		root:                               false,
		filepath.Join(root, "a"):           false,
		filepath.Join(root, "a", "b"):      false,
		filepath.Join(root, "a", "b", "c"): false,
		filepath.Join(root, "d"):           false,
	}
	for _, v := range got {
		if _, ok := want[v.path]; !ok {
			t.Fatalf("unexpected path visited: %s", v.path)
		}
		want[v.path] = true
	}
	for path, seen := range want {
		if !seen {
			t.Errorf("expected path %s to be visited", path)
		}
	}
}

func TestWalkerPreOrderVisitsParentBeforeChild(t *testing.T) {
	root := buildTestTree(t)
	w := &traverse.Walker{Strategy: traverse.DFS}

	got := collect(t, w, []string{root})

	index := make(map[string]int)
	for i, v := range got {
		index[v.path] = i
	}

	if index[filepath.Join(root, "a")] >= index[filepath.Join(root, "a", "b")] {
		t.Error("pre-order: parent must be visited before its child")
	}
	if index[filepath.Join(root, "a", "b")] >= index[filepath.Join(root, "a", "b", "c")] {
		t.Error("pre-order: directory must be visited before its contents")
	}
}

func TestWalkerDepthModeVisitsChildBeforeParent(t *testing.T) {
	root := buildTestTree(t)
	w := &traverse.Walker{Strategy: traverse.DFS, Flags: traverse.FlagDepth}

	got := collect(t, w, []string{root})

	var bIndex, bPostIndex = -1, -1
	for i, v := range got {
		if v.path == filepath.Join(root, "a", "b") {
			if v.phase == traverse.Pre {
				bIndex = i
			} else {
				bPostIndex = i
			}
		}
	}
	if bIndex == -1 || bPostIndex == -1 {
		t.Fatalf("expected both a pre and post visit for a/b, got pre=%d post=%d", bIndex, bPostIndex)
	}

	var cIndex = -1
	for i, v := range got {
		if v.path == filepath.Join(root, "a", "b", "c") {
			cIndex = i
		}
	}
	if cIndex == -1 {
		t.Fatal("expected a/b/c to be visited")
	}
	if cIndex >= bPostIndex {
		t.Error("-depth: a file's post-order parent directory must be emitted after its children")
	}
}

func TestWalkerStopHaltsTraversal(t *testing.T) {
	root := buildTestTree(t)
	w := &traverse.Walker{Strategy: traverse.DFS}

	var count int
	err := w.Run([]string{root}, func(v *traverse.Visit) traverse.Action {
		count++
		return traverse.Stop
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if count != 1 {
		t.Errorf("Stop on the first visit should halt traversal immediately, got %d visits", count)
	}
}

func TestWalkerPruneSkipsSubtree(t *testing.T) {
	root := buildTestTree(t)
	w := &traverse.Walker{Strategy: traverse.DFS}

	aPath := filepath.Join(root, "a")
	var sawInsideA bool
	err := w.Run([]string{root}, func(v *traverse.Visit) traverse.Action {
		if v.Path == aPath {
			return traverse.Prune
		}
		if v.Depth > 0 && filepath.Dir(v.Path) != root && v.Path != aPath {
			sawInsideA = true
		}
		return traverse.Continue
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sawInsideA {
		t.Error("-prune: no descendant of a pruned directory should be visited")
	}
}
