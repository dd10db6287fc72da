package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("WALLET_SEED", "snoPBrXtMeMyMHUVTgbuqAfg1SUTb")
	t.Setenv("XPOP_DIR", "/home/b2m/xpop")

	cfg, err := newConfig()
	require.NoError(t, err)
	assert.Equal(t, "wss://s.altnet.rippletest.net:51233", cfg.SourceURL)
	assert.Equal(t, uint32(1), cfg.SourceNetworkID)
	assert.Equal(t, "wss://hooks-testnet-v3.xrpl-labs.com", cfg.HooksURL)
	assert.Equal(t, uint32(21338), cfg.HooksNetworkID)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, uint64(1000000), cfg.BatchBurnFeeDrops)
	assert.Equal(t, uint64(1000000000), cfg.SignerListBurnFeeDrops)
	assert.Equal(t, 32, cfg.SignerCount)
	assert.Equal(t, 0.80, cfg.SignerQuorumRatio)
	assert.Equal(t, 10*time.Second, cfg.XPOPDelay)
	assert.Equal(t, 0, cfg.XPOPRetries)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "1->21338", cfg.network())

	_, hasSeed := cfg.logFields()["wallet_seed"]
	assert.False(t, hasSeed)
	for _, v := range cfg.logFields() {
		assert.NotEqual(t, cfg.WalletSeed, v)
	}
}

func TestNewConfig_RequiresSeed(t *testing.T) {
	t.Setenv("WALLET_SEED", "")
	os.Unsetenv("WALLET_SEED")
	t.Setenv("XPOP_DIR", "/home/b2m/xpop")
	_, err := newConfig()
	assert.Error(t, err)
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("WALLET_SEED", "snoPBrXtMeMyMHUVTgbuqAfg1SUTb")
	t.Setenv("XPOP_DIR", "/tmp/xpop")
	t.Setenv("XPOP_SUFFIX", "-devmachine2")
	t.Setenv("XPOP_RETRIES", "5")
	t.Setenv("BATCH_SIZE", "10")

	cfg, err := newConfig()
	require.NoError(t, err)
	assert.Equal(t, "-devmachine2", cfg.XPOPSuffix)
	assert.Equal(t, 5, cfg.XPOPRetries)
	assert.Equal(t, 10, cfg.BatchSize)
}
