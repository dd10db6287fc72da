package workers

import (
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wojake/B2M-testnet/transaction"
	"github.com/wojake/B2M-testnet/xpop"
)

func newBatchSender(t *testing.T, env *testEnv, size int) *B2MBatchSender {
	t.Helper()
	b := &B2MBatchSender{}
	require.NoError(t, b.Init(1, "B2M Batch Sender", 0, "1->21338", env.bridge, size, 1000000))
	env.attachLogs(&b.WorkerAbs)
	return b
}

func TestB2MBatchSender_Execute(t *testing.T) {
	env := newTestEnv(t)
	env.source.sequence = 5
	env.hooks.sequence = 7
	b := newBatchSender(t, env, 100)

	require.NoError(t, b.Execute(context.Background()))

	run, err := env.bridge.Checkpoint.LoadLast()
	require.NoError(t, err)
	assert.Equal(t, RunKindBatch, run.Kind)
	assert.Equal(t, RunStatusCompleted, run.Status)

	// burns carry sequences 5..104 and were submitted in that order
	require.Len(t, run.Burns, 100)
	require.Len(t, env.source.submittedHashes, 100)
	for i, burn := range run.Burns {
		assert.Equal(t, uint32(5+i), burn.Sequence)
		assert.Equal(t, env.source.submittedHashes[i], burn.Hash)
		assert.Equal(t, "tesSUCCESS", burn.Result)
	}
	for _, burnTx := range env.source.autofilled {
		assert.Equal(t, transaction.TypeAccountSet, burnTx.Type())
		assert.Equal(t, "1000000", burnTx["Fee"])
		assert.Equal(t, uint32(21338), burnTx["OperationLimit"])
		assert.False(t, burnTx.Has("NetworkID"))
	}

	// one mint per burn, same order, sequences 7..106
	require.Len(t, run.Mints, 100)
	require.Len(t, env.hooks.submittedHashes, 100)
	for i, mint := range run.Mints {
		assert.Equal(t, run.Burns[i].Hash, mint.BurnHash)
		assert.Equal(t, uint32(7+i), mint.Sequence)
		assert.Equal(t, env.hooks.submittedHashes[i], mint.Hash)

		mintTx := env.hooks.autofilled[i]
		assert.Equal(t, transaction.TypeImport, mintTx.Type())
		assert.Equal(t, hex.EncodeToString([]byte("xpop:"+mint.BurnHash)), mintTx["Blob"])
		assert.Equal(t, "0", mintTx["Fee"])
		assert.Equal(t, uint32(21338), mintTx["NetworkID"])
	}
	assert.Empty(t, run.PendingBurns())

	infos := messages(env.logs, logrus.InfoLevel)
	assert.Contains(t, infos, "Burn Tx result: tesSUCCESS")
	assert.Contains(t, infos, "Mint Tx result : tesSUCCESS")
	assert.Contains(t, infos, "HooksV3 Account Balance: 1000 XRP")
	assert.False(t, env.source.connected)
	assert.False(t, env.hooks.connected)
}

func TestB2MBatchSender_UnfundedSidechainAccount(t *testing.T) {
	env := newTestEnv(t)
	env.source.sequence = 40
	env.hooks.funded = false
	b := newBatchSender(t, env, 3)

	require.NoError(t, b.Execute(context.Background()))

	run, err := env.bridge.Checkpoint.LoadLast()
	require.NoError(t, err)
	require.Len(t, run.Mints, 3)
	for i, mint := range run.Mints {
		assert.Equal(t, uint32(i), mint.Sequence)
	}
	assert.Contains(t, messages(env.logs, logrus.WarnLevel),
		"Account "+env.bridge.Wallet.ClassicAddress+" is not funded on HooksV3, funding...")
}

func TestB2MBatchSender_MissingBlobIsFatal(t *testing.T) {
	env := newTestEnv(t)
	env.source.sequence = 5
	env.source.skipBlobFor[3] = true
	b := newBatchSender(t, env, 5)

	err := b.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, xpop.ErrBlobMissing)
	assert.Empty(t, env.hooks.submittedHashes, "no mint is submitted once a blob is missing")

	run, err := env.bridge.Checkpoint.LoadLast()
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Contains(t, run.Error, "proof blob not found")
	assert.Len(t, run.PendingBurns(), 5)
}

func TestB2MBatchSender_SidechainQueryFailureIsFatal(t *testing.T) {
	env := newTestEnv(t)
	env.hooks.accountErr = errors.New("connection reset by peer")
	b := newBatchSender(t, env, 2)

	err := b.Execute(context.Background())
	assert.ErrorContains(t, err, "connection reset by peer")
	assert.Empty(t, env.hooks.submittedHashes)
}

func TestB2MBatchSender_RejectedBurnsDoNotStopTheRun(t *testing.T) {
	env := newTestEnv(t)
	env.source.engineResult = "terPRE_SEQ"
	env.hooks.engineResult = "tefPAST_SEQ"
	b := newBatchSender(t, env, 4)

	require.NoError(t, b.Execute(context.Background()))

	run, err := env.bridge.Checkpoint.LoadLast()
	require.NoError(t, err)
	for _, burn := range run.Burns {
		assert.Equal(t, "terPRE_SEQ", burn.Result)
	}
	require.Len(t, run.Mints, 4)
	assert.Equal(t, "tefPAST_SEQ", run.Mints[0].Result)
}

func TestB2MBatchSender_SourceConnectFailure(t *testing.T) {
	env := newTestEnv(t)
	env.source.connectErr = errors.New("dial tcp: no route to host")
	b := newBatchSender(t, env, 2)

	err := b.Execute(context.Background())
	assert.ErrorContains(t, err, "no route to host")
	assert.Empty(t, env.source.submittedHashes)
}

func TestB2MBatchSender_Init(t *testing.T) {
	env := newTestEnv(t)
	b := &B2MBatchSender{}
	assert.Error(t, b.Init(1, "B2M Batch Sender", 0, "1->21338", env.bridge, 0, 1000000))
}

func TestMintResumer_MintsPendingBurns(t *testing.T) {
	env := newTestEnv(t)
	env.source.sequence = 5
	env.source.skipBlobFor[2] = true
	env.hooks.sequence = 11
	b := newBatchSender(t, env, 4)
	require.ErrorIs(t, b.Execute(context.Background()), xpop.ErrBlobMissing)

	// the proof node catches up
	missing := env.source.submittedHashes[2]
	require.NoError(t, os.WriteFile(filepath.Join(env.xpopDir, missing), []byte("xpop:"+missing), 0o644))

	m := &MintResumer{}
	require.NoError(t, m.Init(3, "Mint Resumer", 0, "1->21338", env.bridge, ""))
	env.attachLogs(&m.WorkerAbs)
	require.NoError(t, m.Execute(context.Background()))

	run, err := env.bridge.Checkpoint.LoadLast()
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, run.Status)
	assert.Empty(t, run.Error)
	require.Len(t, run.Mints, 4)
	for i, mint := range run.Mints {
		assert.Equal(t, run.Burns[i].Hash, mint.BurnHash)
		assert.Equal(t, uint32(11+i), mint.Sequence)
	}

	// nothing left to do
	require.NoError(t, m.Execute(context.Background()))
	assert.Len(t, env.hooks.submittedHashes, 4)
}

func TestMintResumer_SkipsRejectedBurns(t *testing.T) {
	env := newTestEnv(t)
	env.hooks.sequence = 4

	run := NewRunRecord(RunKindBatch, env.bridge.Wallet.ClassicAddress)
	run.Status = RunStatusFailed
	run.Burns = append(run.Burns,
		&BurnRecord{TxType: transaction.TypeAccountSet, Sequence: 5, Hash: "AAAA", Result: "tefPAST_SEQ"},
		&BurnRecord{TxType: transaction.TypeAccountSet, Sequence: 6, Hash: "BBBB", Result: "tesSUCCESS"},
		&BurnRecord{TxType: transaction.TypeAccountSet, Sequence: 7, Hash: "CCCC", Result: "temBAD_FEE"},
	)
	require.NoError(t, env.bridge.Checkpoint.Save(run))
	// only the applied burn has a proof
	require.NoError(t, os.WriteFile(filepath.Join(env.xpopDir, "BBBB"), []byte("xpop:BBBB"), 0o644))

	var statusWhileMinting []string
	env.hooks.onAutofill = func(transaction.Tx) {
		stored, err := env.bridge.Checkpoint.LoadLast()
		require.NoError(t, err)
		statusWhileMinting = append(statusWhileMinting, stored.Status)
	}

	m := &MintResumer{}
	require.NoError(t, m.Init(3, "Mint Resumer", 0, "1->21338", env.bridge, ""))
	hook := env.attachLogs(&m.WorkerAbs)
	require.NoError(t, m.Execute(context.Background()))

	stored, err := env.bridge.Checkpoint.LoadLast()
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, stored.Status)
	require.Len(t, stored.Mints, 1)
	assert.Equal(t, "BBBB", stored.Mints[0].BurnHash)
	assert.Equal(t, uint32(4), stored.Mints[0].Sequence)
	assert.Equal(t, hex.EncodeToString([]byte("xpop:BBBB")), env.hooks.autofilled[0]["Blob"])
	assert.Equal(t, []string{RunStatusMinting}, statusWhileMinting)

	warnings := messages(hook, logrus.WarnLevel)
	assert.Contains(t, warnings, "Skipping burn AAAA (sequence 5): rejected with tefPAST_SEQ")
	assert.Contains(t, warnings, "Skipping burn CCCC (sequence 7): rejected with temBAD_FEE")

	// a second resume finds nothing to mint
	require.NoError(t, m.Execute(context.Background()))
	assert.Len(t, env.hooks.submittedHashes, 1)
}

func TestMintResumer_RequiresCheckpoint(t *testing.T) {
	env := newTestEnv(t)
	env.bridge.Checkpoint = nil
	m := &MintResumer{}
	assert.Error(t, m.Init(3, "Mint Resumer", 0, "1->21338", env.bridge, ""))
}

func TestMintResumer_UnknownRun(t *testing.T) {
	env := newTestEnv(t)
	m := &MintResumer{}
	require.NoError(t, m.Init(3, "Mint Resumer", 0, "1->21338", env.bridge, "42"))
	env.attachLogs(&m.WorkerAbs)
	assert.ErrorIs(t, m.Execute(context.Background()), ErrRunNotFound)
}
