package workers

import (
	"context"
	"fmt"
)

// B2MBatchSender burns BatchSize AccountSet transactions on the source ledger
// and mints every one of them on the sidechain.
type B2MBatchSender struct {
	WorkerAbs
	Bridge       *Bridge
	BatchSize    int
	BurnFeeDrops uint64
}

func (b *B2MBatchSender) Init(id int, name string, freq int, network string, bridge *Bridge, batchSize int, burnFeeDrops uint64) error {
	if err := b.WorkerAbs.Init(id, name, freq, network); err != nil {
		return err
	}
	if batchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", batchSize)
	}
	b.Bridge = bridge
	b.BatchSize = batchSize
	b.BurnFeeDrops = burnFeeDrops
	return nil
}

func (b *B2MBatchSender) Execute(ctx context.Context) error {
	b.Logger.Info("B2MBatchSender worker is executing...")
	br := b.Bridge
	run := NewRunRecord(RunKindBatch, br.Wallet.ClassicAddress)

	err := b.run(ctx, run)
	b.Metrics.RecordRun(b.Name, err == nil)
	if err != nil {
		b.ExportErrorLog(fmt.Sprintf("Run %s failed - with err: %v", run.ID, err))
		return br.fail(run, err, b.Logger)
	}
	b.ExportInfoLog(fmt.Sprintf("Run %s completed: %d burns, %d mints", run.ID, len(run.Burns), len(run.Mints)))
	return nil
}

func (b *B2MBatchSender) run(ctx context.Context, run *RunRecord) error {
	br := b.Bridge
	b.Logger.Infof("Address: %s", br.Wallet.ClassicAddress)

	burnHashes, err := b.burnPhase(ctx, run)
	if err != nil {
		return err
	}

	if err := br.connect(ctx, br.Hooks, b.Logger); err != nil {
		return err
	}
	defer br.disconnect(br.Hooks, b.Logger)

	seq, err := br.sidechainSequence(ctx, b.Logger)
	if err != nil {
		return err
	}

	run.Status = RunStatusCorrelating
	b.saveRun(run)
	blobs, err := br.awaitBlobs(ctx, burnHashes, b.Logger, b.Metrics)
	if err != nil {
		return err
	}

	run.Status = RunStatusMinting
	b.saveRun(run)
	mints, err := br.buildMints(ctx, blobs, seq)
	if err != nil {
		return err
	}
	if err := br.submitMints(ctx, run, burnHashes, mints, b.Logger, b.Metrics); err != nil {
		return err
	}

	if _, err := br.logBalance(ctx, b.Logger); err != nil {
		return err
	}
	run.Status = RunStatusCompleted
	b.saveRun(run)
	return nil
}

func (b *B2MBatchSender) saveRun(run *RunRecord) {
	if err := b.Bridge.Checkpoint.Save(run); err != nil {
		b.ExportErrorLog(fmt.Sprintf("Could not save run %s to db - with err: %v", run.ID, err))
	}
}
