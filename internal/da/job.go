// Package da defines the job model and scheduling contract shared by data-availability backends.
package da

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da/model"
)

// Job is one addressable unit of fetch-and-persist work.
// The set of implementations is closed: CelestiaJob and EigenDAJob.
type Job interface {
	// Layer names the DA source the job belongs to.
	Layer() model.Layer
	// Position is the chain height (Celestia) or L1 block number (EigenDA) the job originates from.
	Position() uint64
	String() string

	isJob()
}

// CelestiaJob addresses a single Celestia block height.
type CelestiaJob struct {
	Height uint64
}

// Layer implements Job.
func (CelestiaJob) Layer() model.Layer { return model.Celestia }

// Position implements Job.
func (j CelestiaJob) Position() uint64 { return j.Height }

func (j CelestiaJob) String() string { return fmt.Sprintf("celestia:%d", j.Height) }

func (CelestiaJob) isJob() {}

// EigenDAJob addresses one confirmed EigenDA batch.
type EigenDAJob struct {
	BatchID         uint32
	BatchHeaderHash common.Hash
	TxHash          common.Hash
	BlockNumber     uint64
}

// Layer implements Job.
func (EigenDAJob) Layer() model.Layer { return model.EigenDA }

// Position implements Job.
func (j EigenDAJob) Position() uint64 { return j.BlockNumber }

func (j EigenDAJob) String() string {
	return fmt.Sprintf("eigenda:%d:%s", j.BatchID, j.BatchHeaderHash.Hex())
}

func (EigenDAJob) isJob() {}

// CelestiaJobs converts heights into jobs preserving order.
func CelestiaJobs(heights []uint64) []Job {
	if len(heights) == 0 {
		return nil
	}
	jobs := make([]Job, 0, len(heights))
	for _, h := range heights {
		jobs = append(jobs, CelestiaJob{Height: h})
	}
	return jobs
}
