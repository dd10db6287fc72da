package entities

type AccountData struct {
	Account    string `json:"Account"`
	Balance    string `json:"Balance"`
	Sequence   uint32 `json:"Sequence"`
	OwnerCount uint32 `json:"OwnerCount"`
	Flags      uint32 `json:"Flags"`
}

type AccountInfoRes struct {
	RPCBaseRes
	AccountData        AccountData `json:"account_data"`
	LedgerIndex        uint32      `json:"ledger_index,omitempty"`
	LedgerCurrentIndex uint32      `json:"ledger_current_index,omitempty"`
}
