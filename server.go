package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wojake/B2M-testnet/keypairs"
	"github.com/wojake/B2M-testnet/ledger"
	"github.com/wojake/B2M-testnet/metrics"
	"github.com/wojake/B2M-testnet/utils"
	"github.com/wojake/B2M-testnet/workers"
	"github.com/wojake/B2M-testnet/xpop"
)

const (
	BatchSenderID = iota + 1
	SignerListSenderID
	MintResumerID
	StatusReporterID
)

type Server struct {
	quit          chan os.Signal
	finish        chan error
	workers       []workers.Worker
	checkpoint    *workers.Checkpoint
	metricsServer *metrics.Server
}

func NewServer(cfg config, workerIDs []int, runID string) (*Server, error) {
	wallet, err := keypairs.FromSeed(cfg.WalletSeed)
	if err != nil {
		return nil, fmt.Errorf("invalid WALLET_SEED: %w", err)
	}
	logrus.Infof("Address: %s", wallet.ClassicAddress)

	checkpoint, err := workers.OpenCheckpoint(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	bridge := &workers.Bridge{
		Wallet: wallet,
		Source: ledger.NewClient(cfg.SourceURL,
			ledger.WithTimeout(cfg.RequestTimeout),
			ledger.WithLogger(logrus.WithField("ledger", "source"))),
		Hooks: ledger.NewClient(cfg.HooksURL,
			ledger.WithTimeout(cfg.RequestTimeout),
			ledger.WithLogger(logrus.WithField("ledger", "hooks"))),
		HooksNetworkID: cfg.HooksNetworkID,
		XPOP:           xpop.NewStore(cfg.XPOPDir, cfg.XPOPSuffix),
		XPOPDelay:      cfg.XPOPDelay,
		XPOPPolicy:     xpop.Policy{Retries: cfg.XPOPRetries, Interval: cfg.XPOPRetryInterval},
		Checkpoint:     checkpoint,
	}
	notifier := utils.NewNotifier(cfg.AlertWebhookURL, cfg.InfoWebhookURL)
	network := cfg.network()

	listWorkers := []workers.Worker{}
	if contain(workerIDs, BatchSenderID) {
		batchSender := &workers.B2MBatchSender{}
		err = batchSender.Init(BatchSenderID, "B2M Batch Sender", cfg.Frequency, network, bridge, cfg.BatchSize, cfg.BatchBurnFeeDrops)
		if err != nil {
			checkpoint.Close()
			return nil, fmt.Errorf("can't init B2M Batch Sender: %w", err)
		}
		batchSender.Notifier = notifier
		listWorkers = append(listWorkers, batchSender)
	}
	if contain(workerIDs, SignerListSenderID) {
		signerListSender := &workers.SignerListSender{}
		err = signerListSender.Init(SignerListSenderID, "Signer List Sender", cfg.Frequency, network, bridge,
			cfg.SignerCount, cfg.SignerQuorumRatio, cfg.SignerListBurnFeeDrops)
		if err != nil {
			checkpoint.Close()
			return nil, fmt.Errorf("can't init Signer List Sender: %w", err)
		}
		signerListSender.Notifier = notifier
		listWorkers = append(listWorkers, signerListSender)
	}
	if contain(workerIDs, MintResumerID) {
		mintResumer := &workers.MintResumer{}
		err = mintResumer.Init(MintResumerID, "Mint Resumer", 0, network, bridge, runID)
		if err != nil {
			checkpoint.Close()
			return nil, fmt.Errorf("can't init Mint Resumer: %w", err)
		}
		mintResumer.Notifier = notifier
		listWorkers = append(listWorkers, mintResumer)
	}
	if contain(workerIDs, StatusReporterID) {
		statusReporter := &workers.StatusReporter{}
		err = statusReporter.Init(StatusReporterID, "Status Reporter", cfg.Frequency, network, bridge)
		if err != nil {
			checkpoint.Close()
			return nil, fmt.Errorf("can't init Status Reporter: %w", err)
		}
		statusReporter.Notifier = notifier
		listWorkers = append(listWorkers, statusReporter)
	}

	s := &Server{
		quit:       make(chan os.Signal, 1),
		finish:     make(chan error, len(listWorkers)),
		workers:    listWorkers,
		checkpoint: checkpoint,
	}
	if cfg.MetricsPort != "" {
		metrics.RegisterMetrics(logrus.StandardLogger())
		s.metricsServer = metrics.StartMetricsServer(cfg.MetricsPort, logrus.StandardLogger())
	}
	return s, nil
}

func (s *Server) NotifyQuitSignal(cancel context.CancelFunc) {
	sig, ok := <-s.quit
	if !ok {
		return
	}
	logrus.Infof("Caught sig: %+v", sig)
	cancel()
	// notify all workers about quit signal
	for _, a := range s.workers {
		select {
		case a.GetQuitChan() <- true:
		default:
		}
	}
}

// Run executes the workers and blocks until all of them finish.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		signal.Stop(s.quit)
		close(s.quit)
	}()
	go s.NotifyQuitSignal(cancel)

	for _, a := range s.workers {
		go executeWorker(ctx, s.finish, a)
	}
	var errs []error
	for range s.workers {
		if err := <-s.finish; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) Close() {
	if s.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.metricsServer.Stop(ctx)
	}
	if err := s.checkpoint.Close(); err != nil {
		logrus.Errorf("Could not close leveldb storage - with err: %v", err)
	}
}

// executeWorker runs worker once, then every GetFrequency seconds while the frequency is positive.
// The first failed run ends the loop.
func executeWorker(ctx context.Context, finish chan error, worker workers.Worker) {
	err := worker.Execute(ctx) // execute as soon as starting up
	if err != nil || worker.GetFrequency() <= 0 {
		finish <- err
		return
	}
	for {
		select {
		case <-worker.GetQuitChan():
			logrus.Infof("Finishing task for %s ...", worker.GetName())
			finish <- nil
			return
		case <-ctx.Done():
			finish <- nil
			return
		case <-time.After(time.Duration(worker.GetFrequency()) * time.Second):
			if err := worker.Execute(ctx); err != nil {
				finish <- err
				return
			}
		}
	}
}

func contain(ids []int, id int) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}
