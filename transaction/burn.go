package transaction

import (
	"fmt"
	"strconv"
)

// NewAccountSetBurn builds the bulk burn: an AccountSet whose fee is the burnt amount and whose
// OperationLimit names the sidechain that may import it.
func NewAccountSetBurn(account string, sequence uint32, feeDrops uint64, operationLimit uint32) Tx {
	return Tx{
		"TransactionType": TypeAccountSet,
		"Account":         account,
		"Sequence":        sequence,
		"Fee":             strconv.FormatUint(feeDrops, 10),
		"OperationLimit":  operationLimit,
	}
}

// NewSignerListSetBurn builds a SignerListSet burn. Sequence is left to autofill.
func NewSignerListSetBurn(account string, entries []any, quorum uint32, feeDrops uint64, operationLimit uint32) (Tx, error) {
	if quorum == 0 {
		return nil, fmt.Errorf("signer quorum must be positive")
	}
	if quorum > uint32(len(entries)) {
		return nil, fmt.Errorf("signer quorum %d exceeds total weight of %d entries", quorum, len(entries))
	}
	return Tx{
		"TransactionType": TypeSignerListSet,
		"Account":         account,
		"SignerEntries":   entries,
		"SignerQuorum":    quorum,
		"Fee":             strconv.FormatUint(feeDrops, 10),
		"OperationLimit":  operationLimit,
	}, nil
}

// BurnBatch builds size AccountSet burns with sequences start, start+1, ..., start+size-1.
func BurnBatch(account string, start uint32, size int, feeDrops uint64, operationLimit uint32) []Tx {
	txs := make([]Tx, 0, size)
	for i := 0; i < size; i++ {
		txs = append(txs, NewAccountSetBurn(account, start+uint32(i), feeDrops, operationLimit))
	}
	return txs
}
