package eval

// Size units §4.2 enumerates: bytes, 2-byte words, 512-byte blocks, and the
// binary-prefixed scales up to pebibytes.
const (
	UnitBytes = 1
	UnitWords = 2
	UnitBlock = 512
	UnitKiB   = 1024
	UnitMiB   = UnitKiB * 1024
	UnitGiB   = UnitMiB * 1024
	UnitTiB   = UnitGiB * 1024
	UnitPiB   = UnitTiB * 1024
)

// ceilDiv rounds size up to the nearest multiple of unit before dividing,
// the "round UP to the configured unit scale" rule §4.2 and §8 both state.
func ceilDiv(size, unit int64) int64 {
	if unit <= 1 {
		return size
	}
	return (size + unit - 1) / unit
}

// NewSizeTest returns the -size node: true iff ceil(size/unit) compares to
// n per mode.
func NewSizeTest(unit int64, mode CompareMode, n int64) *Node {
	return leaf("-size", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		return compare(mode, ceilDiv(buf.Size, unit), n)
	})
}

// NewSparseTest returns the -sparse node: true when the file's allocated
// blocks are fewer than its logical size would require (eval.c's
// eval_sparse), i.e. it has holes.
func NewSparseTest() *Node {
	return leaf("-sparse", func(_ *Node, s *State) bool {
		buf, ok := s.stat()
		if !ok {
			return false
		}
		blockSize := buf.BlockSize
		if blockSize <= 0 {
			blockSize = UnitBlock
		}
		expected := ceilDiv(buf.Size, blockSize)
		actual := ceilDiv(buf.Blocks*UnitBlock, blockSize)
		return actual < expected
	})
}
