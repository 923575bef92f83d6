package eval

import (
	"testing"
	"time"
)

func TestCeilDivRoundsUp(t *testing.T) {
	cases := []struct {
		size, unit, want int64
	}{
		{0, UnitKiB, 0},
		{1, UnitKiB, 1},
		{1024, UnitKiB, 1},
		{1025, UnitKiB, 2},
		{512, UnitBlock, 1},
		{513, UnitBlock, 2},
	}
	for _, c := range cases {
		if got := ceilDiv(c.size, c.unit); got != c.want {
			t.Errorf("ceilDiv(%d, %d) = %d, want %d", c.size, c.unit, got, c.want)
		}
	}
}

func TestTimeDiffTruncatesTowardNegativeInfinity(t *testing.T) {
	ref := time.Date(2026, 1, 1, 0, 0, 0, 500, time.UTC)
	t2 := time.Date(2026, 1, 1, 0, 0, 0, 900, time.UTC)

	// R.sec == T.sec, T.nsec > R.nsec: diff must be -1, not 0.
	if diff := timeDiffSeconds(ref, t2); diff != -1 {
		t.Fatalf("timeDiffSeconds = %d, want -1", diff)
	}
}

func TestTimeDiffWhenStatNsecLower(t *testing.T) {
	ref := time.Date(2026, 1, 1, 0, 0, 1, 100, time.UTC)
	t2 := time.Date(2026, 1, 1, 0, 0, 0, 50, time.UTC)
	if diff := timeDiffSeconds(ref, t2); diff != 1 {
		t.Fatalf("timeDiffSeconds = %d, want 1", diff)
	}
}

func TestCompareModes(t *testing.T) {
	if !compare(CompareEQ, 5, 5) || compare(CompareEQ, 5, 6) {
		t.Fatal("CompareEQ broken")
	}
	if !compare(CompareLT, 4, 5) || compare(CompareLT, 5, 5) {
		t.Fatal("CompareLT broken")
	}
	if !compare(CompareGT, 6, 5) || compare(CompareGT, 5, 5) {
		t.Fatal("CompareGT broken")
	}
}
