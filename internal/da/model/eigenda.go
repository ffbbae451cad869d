package model

// EigenDABatch is the processed marker for a confirmed EigenDA batch.
// It is written after all blobs of the batch.
type EigenDABatch struct {
	BatchHeaderHash []byte
	BatchID         uint32
	BlobsCount      uint32
	L1TxHash        []byte
	L1Block         uint64
}

// EigenDABlob is one blob of an EigenDA batch.
// L1TxHash and L1Block record the confirmation the blob was discovered through.
type EigenDABlob struct {
	BatchHeaderHash []byte
	Index           uint32
	Data            []byte
	L1TxHash        []byte
	L1Block         uint64
}
