package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	// a .env file is optional, the environment may already carry everything
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.Fatalf("Error loading .env file: %v", err)
	}

	app := &cli.App{
		Name:  "b2m",
		Usage: "Burns XRP on the XRPL testnet and mints it on the Hooks V3 testnet",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "size",
				Usage:    "Number of burns in a batch (overrides BATCH_SIZE)",
				Required: false,
			},
			&cli.StringFlag{
				Name:     "suffix",
				Usage:    "Suffix of proof blob file names (overrides XPOP_SUFFIX)",
				Required: false,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "batch",
				Usage:  "Burn a batch of AccountSet transactions and mint each of them",
				Action: runWorkers(BatchSenderID),
			},
			{
				Name:   "signerlist",
				Usage:  "Burn through a SignerListSet with generated signers and mint it",
				Action: runWorkers(SignerListSenderID),
			},
			{
				Name:  "resume",
				Usage: "Mint the burns of a stored run that have no mint yet",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "run",
						Usage:    "Run id to resume, defaults to the last run",
						Required: false,
						Value:    "",
					},
				},
				Action: runWorkers(MintResumerID),
			},
			{
				Name:   "status",
				Usage:  "Print the last stored run and the Hooks V3 balance",
				Action: runWorkers(StatusReporterID),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func runWorkers(workerIDs ...int) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := newConfig()
		if err != nil {
			return err
		}
		if c.IsSet("size") {
			cfg.BatchSize = c.Int("size")
		}
		if c.IsSet("suffix") {
			cfg.XPOPSuffix = c.String("suffix")
		}
		if err := setupLogger(cfg.LogLevel); err != nil {
			return err
		}
		logrus.WithFields(cfg.logFields()).Info("Config loaded")

		s, err := NewServer(cfg, workerIDs, c.String("run"))
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.Run(c.Context); err != nil {
			return err
		}
		logrus.Info("Server stopped gracefully!")
		return nil
	}
}

func setupLogger(level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return nil
}
