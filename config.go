package main

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type config struct {
	WalletSeed string `envconfig:"WALLET_SEED" required:"true"`

	SourceURL       string `envconfig:"SOURCE_URL" default:"wss://s.altnet.rippletest.net:51233"`
	SourceNetworkID uint32 `envconfig:"SOURCE_NETWORK_ID" default:"1"`
	HooksURL        string `envconfig:"HOOKS_URL" default:"wss://hooks-testnet-v3.xrpl-labs.com"`
	HooksNetworkID  uint32 `envconfig:"HOOKS_NETWORK_ID" default:"21338"`

	BatchSize              int     `envconfig:"BATCH_SIZE" default:"100"`
	BatchBurnFeeDrops      uint64  `envconfig:"BATCH_BURN_FEE_DROPS" default:"1000000"`
	SignerListBurnFeeDrops uint64  `envconfig:"SIGNERLIST_BURN_FEE_DROPS" default:"1000000000"`
	SignerCount            int     `envconfig:"SIGNER_COUNT" default:"32"`
	SignerQuorumRatio      float64 `envconfig:"SIGNER_QUORUM_RATIO" default:"0.80"`

	XPOPDir           string        `envconfig:"XPOP_DIR" required:"true"`
	XPOPSuffix        string        `envconfig:"XPOP_SUFFIX"`
	XPOPDelay         time.Duration `envconfig:"XPOP_DELAY" default:"10s"`
	XPOPRetries       int           `envconfig:"XPOP_RETRIES" default:"0"`
	XPOPRetryInterval time.Duration `envconfig:"XPOP_RETRY_INTERVAL" default:"2s"`

	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	DBPath         string        `envconfig:"DB_PATH" default:"db"`
	Frequency      int           `envconfig:"FREQUENCY" default:"0"` // in sec

	AlertWebhookURL string `envconfig:"ALERT_WEBHOOK_URL"`
	InfoWebhookURL  string `envconfig:"INFO_WEBHOOK_URL"`
	MetricsPort     string `envconfig:"METRICS_PORT"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}

// logFields is everything worth printing at startup. The seed is left out.
func (c config) logFields() logrus.Fields {
	return logrus.Fields{
		"source_url":        c.SourceURL,
		"source_network_id": c.SourceNetworkID,
		"hooks_url":         c.HooksURL,
		"hooks_network_id":  c.HooksNetworkID,
		"batch_size":        c.BatchSize,
		"signer_count":      c.SignerCount,
		"xpop_dir":          c.XPOPDir,
		"xpop_suffix":       c.XPOPSuffix,
		"xpop_delay":        c.XPOPDelay,
		"xpop_retries":      c.XPOPRetries,
		"db_path":           c.DBPath,
		"frequency":         c.Frequency,
	}
}

func (c config) network() string {
	return fmt.Sprintf("%d->%d", c.SourceNetworkID, c.HooksNetworkID)
}
