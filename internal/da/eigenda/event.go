package eigenda

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/goodnatureofminers/blockinsight7000-da-indexer/internal/da"
)

const serviceManagerABI = `[{
	"anonymous": false,
	"inputs": [
		{"indexed": true, "internalType": "bytes32", "name": "batchHeaderHash", "type": "bytes32"},
		{"indexed": false, "internalType": "uint32", "name": "batchId", "type": "uint32"}
	],
	"name": "BatchConfirmed",
	"type": "event"
}]`

var batchConfirmed = mustEvent(serviceManagerABI, "BatchConfirmed")

func mustEvent(definition, name string) abi.Event {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("parse service manager abi: %v", err))
	}
	event, ok := parsed.Events[name]
	if !ok {
		panic(fmt.Sprintf("event %s missing from service manager abi", name))
	}
	return event
}

// BatchConfirmedTopic is the topic of BatchConfirmed(bytes32 indexed batchHeaderHash, uint32 batchId).
func BatchConfirmedTopic() common.Hash {
	return batchConfirmed.ID
}

func parseBatchConfirmed(log types.Log) (da.EigenDAJob, error) {
	if len(log.Topics) != 2 || log.Topics[0] != batchConfirmed.ID {
		return da.EigenDAJob{}, fmt.Errorf("log %s/%d is not a BatchConfirmed event", log.TxHash.Hex(), log.Index)
	}

	values, err := batchConfirmed.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return da.EigenDAJob{}, fmt.Errorf("unpack BatchConfirmed %s/%d: %w", log.TxHash.Hex(), log.Index, err)
	}
	if len(values) != 1 {
		return da.EigenDAJob{}, fmt.Errorf("unpack BatchConfirmed %s/%d: got %d values", log.TxHash.Hex(), log.Index, len(values))
	}
	batchID, ok := values[0].(uint32)
	if !ok {
		return da.EigenDAJob{}, fmt.Errorf("unpack BatchConfirmed %s/%d: batchId is %T", log.TxHash.Hex(), log.Index, values[0])
	}

	return da.EigenDAJob{
		BatchID:         batchID,
		BatchHeaderHash: log.Topics[1],
		TxHash:          log.TxHash,
		BlockNumber:     log.BlockNumber,
	}, nil
}
