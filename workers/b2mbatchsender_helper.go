package workers

import (
	"context"
	"fmt"

	"github.com/wojake/B2M-testnet/transaction"
)

// burnPhase signs BatchSize burns starting at the validated source sequence and submits
// them in ascending order without waiting for validation. It returns the burn hashes in
// submission order.
func (b *B2MBatchSender) burnPhase(ctx context.Context, run *RunRecord) ([]string, error) {
	br := b.Bridge
	if err := br.connect(ctx, br.Source, b.Logger); err != nil {
		return nil, err
	}
	defer br.disconnect(br.Source, b.Logger)

	account, err := br.Source.AccountInfo(ctx, br.Wallet.ClassicAddress, "validated")
	if err != nil {
		return nil, fmt.Errorf("could not get source account info: %w", err)
	}

	signedBurns, err := b.signBurns(ctx, account.Sequence)
	if err != nil {
		return nil, err
	}

	hashes := make([]string, 0, len(signedBurns))
	for _, burn := range signedBurns {
		res, err := br.Source.Submit(ctx, burn.TxBlob)
		if err != nil {
			return nil, fmt.Errorf("could not submit burn tx %s: %w", burn.Hash, err)
		}
		run.Burns = append(run.Burns, &BurnRecord{
			TxType:   transaction.TypeAccountSet,
			Sequence: burn.Tx.Sequence(),
			Hash:     burn.Hash,
			Result:   res.EngineResult,
		})
		hashes = append(hashes, burn.Hash)
		b.Metrics.RecordBurn(transaction.TypeAccountSet, res.EngineResult)
	}
	b.saveRun(run)

	for _, burn := range run.Burns {
		b.Logger.Infof("Burn Tx result: %s", burn.Result)
	}
	return hashes, nil
}

func (b *B2MBatchSender) signBurns(ctx context.Context, startSeq uint32) ([]*transaction.Signed, error) {
	br := b.Bridge
	templates := transaction.BurnBatch(br.Wallet.ClassicAddress, startSeq, b.BatchSize, b.BurnFeeDrops, br.HooksNetworkID)
	signed := make([]*transaction.Signed, 0, len(templates))
	for _, template := range templates {
		burnTx, err := br.Source.Autofill(ctx, template)
		if err != nil {
			return nil, fmt.Errorf("could not autofill burn tx: %w", err)
		}
		signedBurn, err := br.Wallet.Sign(burnTx)
		if err != nil {
			return nil, err
		}
		signed = append(signed, signedBurn)
	}
	return signed, nil
}
