package transaction

// NewImportMint builds the sidechain mint carrying a hex encoded XPOP blob. Imports are free.
func NewImportMint(account string, blobHex string, sequence uint32, networkID uint32) Tx {
	return Tx{
		"TransactionType": TypeImport,
		"Account":         account,
		"Blob":            blobHex,
		"Sequence":        sequence,
		"NetworkID":       networkID,
		"Fee":             "0",
	}
}
