package celestia

import "time"

// minRowRoots is the row count of the data availability header of an empty square.
const minRowRoots = 2

// Header is the subset of an extended header the indexer stores.
type Header struct {
	Height   uint64
	Hash     []byte
	Time     time.Time
	RowRoots int
}

// MayContainBlobs reports whether the square is larger than the empty one.
// Blobs are only requested for such heights.
func (h Header) MayContainBlobs() bool {
	return h.RowRoots > minRowRoots
}

// Blob is a blob returned by the node.
type Blob struct {
	Namespace  []byte
	Commitment []byte
	Data       []byte
}
