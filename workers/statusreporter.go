package workers

import (
	"context"
	"errors"
	"fmt"
)

// StatusReporter prints the last stored run and the current sidechain balance.
type StatusReporter struct {
	WorkerAbs
	Bridge *Bridge
}

func (s *StatusReporter) Init(id int, name string, freq int, network string, bridge *Bridge) error {
	if err := s.WorkerAbs.Init(id, name, freq, network); err != nil {
		return err
	}
	s.Bridge = bridge
	return nil
}

func (s *StatusReporter) Execute(ctx context.Context) error {
	br := s.Bridge

	ids, err := br.Checkpoint.RunIDs()
	if err != nil {
		return fmt.Errorf("could not list runs: %w", err)
	}
	s.Logger.Infof("%d runs stored", len(ids))

	run, err := br.Checkpoint.LoadLast()
	switch {
	case errors.Is(err, ErrRunNotFound):
		s.Logger.Info("No run recorded yet")
	case err != nil:
		return err
	default:
		s.reportRun(run)
	}

	if err := br.connect(ctx, br.Hooks, s.Logger); err != nil {
		return err
	}
	defer br.disconnect(br.Hooks, s.Logger)
	_, err = br.logBalance(ctx, s.Logger)
	return err
}

func (s *StatusReporter) reportRun(run *RunRecord) {
	s.Logger.Infof("Last run %s (%s) for %s: %s, updated %s",
		run.ID, run.Kind, run.Account, run.Status, run.UpdatedAt.Format("2006-01-02 15:04:05"))
	if run.Error != "" {
		s.Logger.Warnf("Last run error: %s", run.Error)
	}

	results := map[string]int{}
	for _, b := range run.Burns {
		results[b.Result]++
	}
	for result, count := range results {
		s.Logger.Infof("Burns with %s: %d", result, count)
	}
	s.Logger.Infof("Mints submitted: %d, burns without mint: %d", len(run.Mints), len(run.PendingBurns()))
	if rejected := run.RejectedBurns(); len(rejected) > 0 {
		s.Logger.Warnf("Burns rejected by the source ledger: %d", len(rejected))
	}
}
