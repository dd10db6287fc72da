package workers

import "time"

const (
	RunKindBatch      = "batch"
	RunKindSignerList = "signerlist"

	RunStatusBurning     = "burning"
	RunStatusCorrelating = "correlating"
	RunStatusMinting     = "minting"
	RunStatusCompleted   = "completed"
	RunStatusFailed      = "failed"

	successResult = "tesSUCCESS"

	// SignerWeight is the weight every generated signer gets.
	SignerWeight = 1

	// leveldb keys
	RunKeyPrefix = "B2M-Run-"
	LastRunKey   = "B2M-LastRun"

	DefaultXPOPDelay = 10 * time.Second

	// number of hex characters of a proof blob echoed in logs
	BlobPreviewLength = 50
)
