package workers

import (
	"context"
	"fmt"

	"github.com/wojake/B2M-testnet/keypairs"
	"github.com/wojake/B2M-testnet/transaction"
)

// SignerListSender burns through a SignerListSet that attaches freshly generated signers,
// then mints that single burn on the sidechain.
type SignerListSender struct {
	WorkerAbs
	Bridge       *Bridge
	SignerCount  int
	QuorumRatio  float64
	BurnFeeDrops uint64
}

func (s *SignerListSender) Init(id int, name string, freq int, network string, bridge *Bridge, signerCount int, quorumRatio float64, burnFeeDrops uint64) error {
	if err := s.WorkerAbs.Init(id, name, freq, network); err != nil {
		return err
	}
	if signerCount < 1 || signerCount > transaction.MaxSignerEntries {
		return fmt.Errorf("signer count must be within 1..%d, got %d", transaction.MaxSignerEntries, signerCount)
	}
	if quorumRatio <= 0 || quorumRatio > 1 {
		return fmt.Errorf("quorum ratio must be within (0, 1], got %v", quorumRatio)
	}
	s.Bridge = bridge
	s.SignerCount = signerCount
	s.QuorumRatio = quorumRatio
	s.BurnFeeDrops = burnFeeDrops
	return nil
}

func (s *SignerListSender) Execute(ctx context.Context) error {
	s.Logger.Info("SignerListSender worker is executing...")
	br := s.Bridge
	run := NewRunRecord(RunKindSignerList, br.Wallet.ClassicAddress)

	err := s.run(ctx, run)
	s.Metrics.RecordRun(s.Name, err == nil)
	if err != nil {
		s.ExportErrorLog(fmt.Sprintf("Run %s failed - with err: %v", run.ID, err))
		return br.fail(run, err, s.Logger)
	}
	s.ExportInfoLog(fmt.Sprintf("Run %s completed: signer list burn %s minted", run.ID, run.Burns[0].Hash))
	return nil
}

func (s *SignerListSender) run(ctx context.Context, run *RunRecord) error {
	br := s.Bridge

	burnHash, err := s.burn(ctx, run)
	if err != nil {
		return err
	}

	run.Status = RunStatusCorrelating
	s.saveRun(run)
	blobs, err := br.awaitBlobs(ctx, []string{burnHash}, s.Logger, s.Metrics)
	if err != nil {
		return err
	}
	blob := blobs[0]
	preview := blob
	if len(preview) > BlobPreviewLength {
		preview = preview[:BlobPreviewLength]
	}
	s.Logger.Infof("XPOP BLOB (HEX): %s... %d chars left", preview, len(blob)-len(preview))

	if err := br.connect(ctx, br.Hooks, s.Logger); err != nil {
		return err
	}
	defer br.disconnect(br.Hooks, s.Logger)

	seq, err := br.sidechainSequence(ctx, s.Logger)
	if err != nil {
		return err
	}

	run.Status = RunStatusMinting
	s.saveRun(run)
	mints, err := br.buildMints(ctx, blobs, seq)
	if err != nil {
		return err
	}
	mint := mints[0]
	res, err := br.Hooks.SubmitAndWait(ctx, mint)
	if err != nil {
		return fmt.Errorf("could not submit mint tx %s: %w", mint.Hash, err)
	}
	s.Logger.Infof("Mint Tx result: %s", res.TransactionResult())
	s.Metrics.RecordMint(res.TransactionResult())
	run.Mints = append(run.Mints, &MintRecord{
		BurnHash: burnHash,
		Sequence: mint.Tx.Sequence(),
		Hash:     mint.Hash,
		Result:   res.TransactionResult(),
	})

	if _, err := br.logBalance(ctx, s.Logger); err != nil {
		return err
	}
	run.Status = RunStatusCompleted
	s.saveRun(run)
	return nil
}

// burn submits the SignerListSet and waits for it to be validated.
// Only a tesSUCCESS burn moves on to minting.
func (s *SignerListSender) burn(ctx context.Context, run *RunRecord) (string, error) {
	br := s.Bridge
	if err := br.connect(ctx, br.Source, s.Logger); err != nil {
		return "", err
	}
	defer br.disconnect(br.Source, s.Logger)

	signers, err := generateSigners(s.SignerCount)
	if err != nil {
		return "", err
	}
	entries, err := transaction.SignerEntries(signers, SignerWeight)
	if err != nil {
		return "", err
	}
	quorum := transaction.Quorum(len(signers), s.QuorumRatio)
	run.Signers = signers
	s.Logger.Infof("Signer list of %d accounts, quorum %d", len(signers), quorum)

	template, err := transaction.NewSignerListSetBurn(br.Wallet.ClassicAddress, entries, quorum, s.BurnFeeDrops, br.HooksNetworkID)
	if err != nil {
		return "", err
	}
	burnTx, err := br.Source.Autofill(ctx, template)
	if err != nil {
		return "", fmt.Errorf("could not autofill burn tx: %w", err)
	}
	signedBurn, err := br.Wallet.Sign(burnTx)
	if err != nil {
		return "", err
	}

	res, err := br.Source.SubmitAndWait(ctx, signedBurn)
	if err != nil {
		return "", fmt.Errorf("could not submit burn tx %s: %w", signedBurn.Hash, err)
	}
	result := res.TransactionResult()
	s.Logger.Infof("Burn Tx result: %s", result)
	s.Logger.Infof("Burn Tx hash: %s", signedBurn.Hash)
	s.Metrics.RecordBurn(transaction.TypeSignerListSet, result)

	run.Burns = append(run.Burns, &BurnRecord{
		TxType:   transaction.TypeSignerListSet,
		Sequence: signedBurn.Tx.Sequence(),
		Hash:     signedBurn.Hash,
		Result:   result,
	})
	s.saveRun(run)

	if result != successResult {
		return "", fmt.Errorf("burn tx %s was not successful: %s", signedBurn.Hash, result)
	}
	return signedBurn.Hash, nil
}

func (s *SignerListSender) saveRun(run *RunRecord) {
	if err := s.Bridge.Checkpoint.Save(run); err != nil {
		s.ExportErrorLog(fmt.Sprintf("Could not save run %s to db - with err: %v", run.ID, err))
	}
}

// generateSigners creates throwaway accounts. Their seeds are discarded.
func generateSigners(n int) ([]string, error) {
	addresses := make([]string, 0, n)
	for i := 0; i < n; i++ {
		w, err := keypairs.Generate()
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, w.ClassicAddress)
	}
	return addresses, nil
}
