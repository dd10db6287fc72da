package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wojake/B2M-testnet/entities"
	"github.com/wojake/B2M-testnet/keypairs"
	"github.com/wojake/B2M-testnet/ledger"
	"github.com/wojake/B2M-testnet/metrics"
	"github.com/wojake/B2M-testnet/transaction"
	"github.com/wojake/B2M-testnet/utils"
	"github.com/wojake/B2M-testnet/xpop"
)

// LedgerClient is the part of *ledger.Client the workers drive.
type LedgerClient interface {
	Connect(ctx context.Context) error
	Disconnect() error
	URL() string
	AccountInfo(ctx context.Context, address string, ledgerIndex string) (*entities.AccountData, error)
	Autofill(ctx context.Context, tx transaction.Tx) (transaction.Tx, error)
	Submit(ctx context.Context, txBlob string) (*entities.SubmitRes, error)
	SubmitAndWait(ctx context.Context, signed *transaction.Signed) (*entities.TxDetailRes, error)
}

// Bridge holds what every burn-to-mint worker shares: the account, both ledgers,
// the proof blob directory and the run checkpoint.
type Bridge struct {
	Wallet         *keypairs.Wallet
	Source         LedgerClient
	Hooks          LedgerClient
	HooksNetworkID uint32
	XPOP           *xpop.Store
	XPOPDelay      time.Duration
	XPOPPolicy     xpop.Policy
	Checkpoint     *Checkpoint
}

func (br *Bridge) connect(ctx context.Context, client LedgerClient, logger *logrus.Entry) error {
	if err := client.Connect(ctx); err != nil {
		return err
	}
	logger.Infof("Connected to %s", client.URL())
	return nil
}

func (br *Bridge) disconnect(client LedgerClient, logger *logrus.Entry) {
	if err := client.Disconnect(); err != nil {
		logger.Warnf("Could not disconnect from %s - with err: %v", client.URL(), err)
		return
	}
	logger.Infof("Disconnected from %s", client.URL())
}

// sidechainSequence queries the account sequence on the sidechain once.
// An account the sidechain does not know yet starts at zero.
func (br *Bridge) sidechainSequence(ctx context.Context, logger *logrus.Entry) (uint32, error) {
	account, err := br.Hooks.AccountInfo(ctx, br.Wallet.ClassicAddress, "")
	if errors.Is(err, ledger.ErrAccountNotFound) {
		logger.Warnf("Account %s is not funded on HooksV3, funding...", br.Wallet.ClassicAddress)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not get HooksV3 account info: %w", err)
	}
	return account.Sequence, nil
}

// awaitBlobs waits the fixed delay once, then reads the proof blob of every hash in order.
// The first missing blob aborts.
func (br *Bridge) awaitBlobs(ctx context.Context, hashes []string, logger *logrus.Entry, m *metrics.B2MMetrics) ([]string, error) {
	start := time.Now()
	if err := sleepContext(ctx, br.XPOPDelay); err != nil {
		return nil, err
	}
	blobs := make([]string, 0, len(hashes))
	for _, hash := range hashes {
		logger.Infof("Burn Tx hash: %s", hash)
		blob, err := br.XPOP.Await(ctx, hash, br.XPOPPolicy)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob)
	}
	m.RecordXPOPWait(time.Since(start))
	return blobs, nil
}

// buildMints signs one Import per blob with sequences start, start+1, ...
func (br *Bridge) buildMints(ctx context.Context, blobs []string, start uint32) ([]*transaction.Signed, error) {
	signed := make([]*transaction.Signed, 0, len(blobs))
	seq := start
	for _, blob := range blobs {
		mintTx, err := br.Hooks.Autofill(ctx, transaction.NewImportMint(br.Wallet.ClassicAddress, blob, seq, br.HooksNetworkID))
		if err != nil {
			return nil, fmt.Errorf("could not autofill mint tx: %w", err)
		}
		signedMint, err := br.Wallet.Sign(mintTx)
		if err != nil {
			return nil, err
		}
		signed = append(signed, signedMint)
		seq++
	}
	return signed, nil
}

// submitMints submits signed mints in order without waiting, checkpointing after each one.
// burnHashes[i] is the burn that mints[i] redeems.
func (br *Bridge) submitMints(ctx context.Context, run *RunRecord, burnHashes []string, mints []*transaction.Signed, logger *logrus.Entry, m *metrics.B2MMetrics) error {
	for i, mint := range mints {
		res, err := br.Hooks.Submit(ctx, mint.TxBlob)
		if err != nil {
			return fmt.Errorf("could not submit mint tx %s: %w", mint.Hash, err)
		}
		logger.Infof("Mint Tx result : %s", res.EngineResult)
		m.RecordMint(res.EngineResult)
		run.Mints = append(run.Mints, &MintRecord{
			BurnHash: burnHashes[i],
			Sequence: mint.Tx.Sequence(),
			Hash:     mint.Hash,
			Result:   res.EngineResult,
		})
		if err := br.Checkpoint.Save(run); err != nil {
			logger.Errorf("Could not save run %s to db - with err: %v", run.ID, err)
		}
	}
	return nil
}

// logBalance reads back the sidechain balance of the account.
func (br *Bridge) logBalance(ctx context.Context, logger *logrus.Entry) (string, error) {
	account, err := br.Hooks.AccountInfo(ctx, br.Wallet.ClassicAddress, "")
	if errors.Is(err, ledger.ErrAccountNotFound) {
		logger.Warnf("Account %s is not funded on HooksV3", br.Wallet.ClassicAddress)
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("could not get HooksV3 account info: %w", err)
	}
	balance, err := utils.DropsToXRP(account.Balance)
	if err != nil {
		return "", err
	}
	logger.Infof("HooksV3 Account Balance: %s XRP", balance)
	return balance, nil
}

func (br *Bridge) fail(run *RunRecord, err error, logger *logrus.Entry) error {
	run.Status = RunStatusFailed
	run.Error = err.Error()
	if saveErr := br.Checkpoint.Save(run); saveErr != nil {
		logger.Errorf("Could not save run %s to db - with err: %v", run.ID, saveErr)
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
