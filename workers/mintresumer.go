package workers

import (
	"context"
	"errors"
	"fmt"
)

// MintResumer mints the burns of a stored run that never got a mint submitted,
// for example after a missing proof blob aborted the run.
type MintResumer struct {
	WorkerAbs
	Bridge *Bridge
	RunID  string // empty resumes the last run
}

func (m *MintResumer) Init(id int, name string, freq int, network string, bridge *Bridge, runID string) error {
	if err := m.WorkerAbs.Init(id, name, freq, network); err != nil {
		return err
	}
	if bridge.Checkpoint == nil {
		return errors.New("resuming needs a run checkpoint store")
	}
	m.Bridge = bridge
	m.RunID = runID
	return nil
}

func (m *MintResumer) loadRun() (*RunRecord, error) {
	if m.RunID == "" {
		return m.Bridge.Checkpoint.LoadLast()
	}
	return m.Bridge.Checkpoint.Load(m.RunID)
}

func (m *MintResumer) Execute(ctx context.Context) error {
	m.Logger.Info("MintResumer worker is executing...")
	br := m.Bridge

	run, err := m.loadRun()
	if err != nil {
		m.ExportErrorLog(fmt.Sprintf("Could not load run from db - with err: %v", err))
		return err
	}
	if run.Account != br.Wallet.ClassicAddress {
		return fmt.Errorf("run %s belongs to %s, wallet is %s", run.ID, run.Account, br.Wallet.ClassicAddress)
	}

	for _, burn := range run.RejectedBurns() {
		m.Logger.Warnf("Skipping burn %s (sequence %d): rejected with %s", burn.Hash, burn.Sequence, burn.Result)
	}
	pending := run.PendingBurns()
	if len(pending) == 0 {
		m.Logger.Infof("Run %s has no burns left to mint", run.ID)
		return nil
	}
	m.Logger.Infof("Resuming run %s: %d of %d burns have no mint", run.ID, len(pending), len(run.Burns))

	err = m.resume(ctx, run, pending)
	m.Metrics.RecordRun(m.Name, err == nil)
	if err != nil {
		m.ExportErrorLog(fmt.Sprintf("Resuming run %s failed - with err: %v", run.ID, err))
		return br.fail(run, err, m.Logger)
	}
	m.ExportInfoLog(fmt.Sprintf("Run %s resumed: %d mints submitted", run.ID, len(pending)))
	return nil
}

func (m *MintResumer) resume(ctx context.Context, run *RunRecord, pending []*BurnRecord) error {
	br := m.Bridge
	hashes := make([]string, 0, len(pending))
	for _, burn := range pending {
		hashes = append(hashes, burn.Hash)
	}

	if err := br.connect(ctx, br.Hooks, m.Logger); err != nil {
		return err
	}
	defer br.disconnect(br.Hooks, m.Logger)

	seq, err := br.sidechainSequence(ctx, m.Logger)
	if err != nil {
		return err
	}

	run.Status = RunStatusCorrelating
	run.Error = ""
	if err := br.Checkpoint.Save(run); err != nil {
		return err
	}
	// proof blobs of an earlier run are already on disk
	policy := br.XPOPPolicy
	blobs := make([]string, 0, len(hashes))
	for _, hash := range hashes {
		m.Logger.Infof("Burn Tx hash: %s", hash)
		blob, err := br.XPOP.Await(ctx, hash, policy)
		if err != nil {
			return err
		}
		blobs = append(blobs, blob)
	}

	run.Status = RunStatusMinting
	if err := br.Checkpoint.Save(run); err != nil {
		return err
	}
	mints, err := br.buildMints(ctx, blobs, seq)
	if err != nil {
		return err
	}
	if err := br.submitMints(ctx, run, hashes, mints, m.Logger, m.Metrics); err != nil {
		return err
	}
	if _, err := br.logBalance(ctx, m.Logger); err != nil {
		return err
	}
	run.Status = RunStatusCompleted
	return br.Checkpoint.Save(run)
}
