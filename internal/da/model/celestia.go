// Package model defines records persisted by the DA indexer.
package model

// CelestiaBlock is the processed marker for a Celestia height.
// Its presence means every blob of the height is stored.
type CelestiaBlock struct {
	Height     uint64
	Hash       []byte
	BlobsCount uint32
	// Timestamp is unix seconds; zero for the genesis placeholder.
	Timestamp int64
}

// CelestiaBlob is one blob included at a Celestia height.
type CelestiaBlob struct {
	Height     uint64
	Index      uint32
	Namespace  []byte
	Commitment []byte
	Data       []byte
}

// GenesisPlaceholder returns the zero-count record seeded for height 0.
func GenesisPlaceholder() CelestiaBlock {
	return CelestiaBlock{Height: 0, Hash: []byte{}, BlobsCount: 0, Timestamp: 0}
}
