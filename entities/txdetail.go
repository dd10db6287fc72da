package entities

// SubmitRes is the preliminary result of submitting a signed blob.
type SubmitRes struct {
	RPCBaseRes
	EngineResult        string         `json:"engine_result"`
	EngineResultCode    int            `json:"engine_result_code"`
	EngineResultMessage string         `json:"engine_result_message"`
	Accepted            bool           `json:"accepted"`
	Applied             bool           `json:"applied"`
	Broadcast           bool           `json:"broadcast"`
	Queued              bool           `json:"queued"`
	TxBlob              string         `json:"tx_blob"`
	TxJSON              map[string]any `json:"tx_json"`
}

// Hash of the submitted transaction as echoed by the server.
func (r *SubmitRes) Hash() string {
	h, _ := r.TxJSON["hash"].(string)
	return h
}

type TxMeta struct {
	TransactionIndex  uint32 `json:"TransactionIndex"`
	TransactionResult string `json:"TransactionResult"`
}

// TxDetailRes is the result of the tx command.
type TxDetailRes struct {
	RPCBaseRes
	Hash        string  `json:"hash"`
	LedgerIndex uint32  `json:"ledger_index,omitempty"`
	Sequence    uint32  `json:"Sequence"`
	Meta        *TxMeta `json:"meta,omitempty"`
}

// TransactionResult is the final engine result, empty until the tx is in a ledger.
func (r *TxDetailRes) TransactionResult() string {
	if r.Meta == nil {
		return ""
	}
	return r.Meta.TransactionResult
}
