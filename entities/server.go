package entities

type ValidatedLedger struct {
	Seq        uint32  `json:"seq"`
	BaseFeeXRP float64 `json:"base_fee_xrp"`
}

type ServerInfo struct {
	BuildVersion    string           `json:"build_version"`
	NetworkID       uint32           `json:"network_id,omitempty"`
	LoadFactor      float64          `json:"load_factor"`
	ServerState     string           `json:"server_state"`
	ValidatedLedger *ValidatedLedger `json:"validated_ledger,omitempty"`
}

type ServerInfoRes struct {
	RPCBaseRes
	Info ServerInfo `json:"info"`
}

type LedgerRes struct {
	RPCBaseRes
	LedgerIndex uint32 `json:"ledger_index"`
	LedgerHash  string `json:"ledger_hash"`
}
