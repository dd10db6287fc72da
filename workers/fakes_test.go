package workers

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/wojake/B2M-testnet/codec"
	"github.com/wojake/B2M-testnet/entities"
	"github.com/wojake/B2M-testnet/keypairs"
	"github.com/wojake/B2M-testnet/ledger"
	"github.com/wojake/B2M-testnet/transaction"
	"github.com/wojake/B2M-testnet/xpop"
)

const genesisSeed = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"

// fakeLedger stands in for a rippled server. When xpopDir is set it also plays the
// proof node and writes a blob for every submitted transaction.
type fakeLedger struct {
	mux sync.Mutex

	url          string
	connected    bool
	connectErr   error
	funded       bool
	sequence     uint32
	balance      string
	accountErr   error
	engineResult string
	finalResult  string
	xpopDir      string
	skipBlobFor  map[int]bool // submission index without a proof blob
	lastLedger   uint32
	onAutofill   func(tx transaction.Tx)

	accountInfoCalls int
	submittedHashes  []string
	autofilled       []transaction.Tx
}

func newFakeLedger(url string) *fakeLedger {
	return &fakeLedger{
		url:          url,
		funded:       true,
		balance:      "1000000000",
		engineResult: "tesSUCCESS",
		finalResult:  "tesSUCCESS",
		skipBlobFor:  map[int]bool{},
		lastLedger:   1000,
	}
}

func (f *fakeLedger) Connect(ctx context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeLedger) Disconnect() error {
	f.connected = false
	return nil
}

func (f *fakeLedger) URL() string {
	return f.url
}

func (f *fakeLedger) AccountInfo(ctx context.Context, address string, ledgerIndex string) (*entities.AccountData, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	f.accountInfoCalls++
	if !f.connected {
		return nil, ledger.ErrNotConnected
	}
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	if !f.funded {
		return nil, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, address)
	}
	return &entities.AccountData{Account: address, Balance: f.balance, Sequence: f.sequence}, nil
}

func (f *fakeLedger) Autofill(ctx context.Context, tx transaction.Tx) (transaction.Tx, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	out := tx.Clone()
	if !out.Has("Sequence") {
		out["Sequence"] = f.sequence
	}
	if !out.Has("Fee") {
		out["Fee"] = "12"
	}
	if !out.Has("LastLedgerSequence") {
		out["LastLedgerSequence"] = f.lastLedger
	}
	f.autofilled = append(f.autofilled, out)
	if f.onAutofill != nil {
		f.onAutofill(out)
	}
	return out, nil
}

func (f *fakeLedger) submit(txBlob string) (string, error) {
	if !f.connected {
		return "", ledger.ErrNotConnected
	}
	raw, err := hex.DecodeString(txBlob)
	if err != nil {
		return "", err
	}
	hash := codec.TransactionID(raw)
	index := len(f.submittedHashes)
	f.submittedHashes = append(f.submittedHashes, hash)
	if f.xpopDir != "" && !f.skipBlobFor[index] {
		if err := os.WriteFile(filepath.Join(f.xpopDir, hash), []byte("xpop:"+hash), 0o644); err != nil {
			return "", err
		}
	}
	return hash, nil
}

func (f *fakeLedger) Submit(ctx context.Context, txBlob string) (*entities.SubmitRes, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	hash, err := f.submit(txBlob)
	if err != nil {
		return nil, err
	}
	return &entities.SubmitRes{
		EngineResult: f.engineResult,
		TxBlob:       txBlob,
		TxJSON:       map[string]any{"hash": hash},
	}, nil
}

func (f *fakeLedger) SubmitAndWait(ctx context.Context, signed *transaction.Signed) (*entities.TxDetailRes, error) {
	f.mux.Lock()
	defer f.mux.Unlock()
	hash, err := f.submit(signed.TxBlob)
	if err != nil {
		return nil, err
	}
	res := &entities.TxDetailRes{Hash: hash, Meta: &entities.TxMeta{TransactionResult: f.finalResult}}
	res.Validated = true
	return res, nil
}

type testEnv struct {
	bridge  *Bridge
	source  *fakeLedger
	hooks   *fakeLedger
	xpopDir string
	logs    *test.Hook
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	wallet, err := keypairs.FromSeed(genesisSeed)
	require.NoError(t, err)

	checkpoint, err := OpenCheckpoint(filepath.Join(t.TempDir(), "db"))
	require.NoError(t, err)
	t.Cleanup(func() { checkpoint.Close() })

	xpopDir := t.TempDir()
	source := newFakeLedger("wss://source.test")
	source.xpopDir = xpopDir
	hooks := newFakeLedger("wss://hooks.test")

	return &testEnv{
		bridge: &Bridge{
			Wallet:         wallet,
			Source:         source,
			Hooks:          hooks,
			HooksNetworkID: 21338,
			XPOP:           xpop.NewStore(xpopDir, ""),
			Checkpoint:     checkpoint,
		},
		source:  source,
		hooks:   hooks,
		xpopDir: xpopDir,
	}
}

// attachLogs captures the entries a worker logs.
func (e *testEnv) attachLogs(w *WorkerAbs) *test.Hook {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	w.Logger = logrus.NewEntry(logger).WithField("worker", w.Name)
	e.logs = hook
	return hook
}

func messages(hook *test.Hook, level logrus.Level) []string {
	out := []string{}
	for _, entry := range hook.AllEntries() {
		if entry.Level == level {
			out = append(out, entry.Message)
		}
	}
	return out
}
