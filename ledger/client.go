package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wojake/B2M-testnet/entities"
	"github.com/wojake/B2M-testnet/transaction"
)

const (
	// LedgerOffset is how many ledgers past the last validated one a transaction stays valid.
	LedgerOffset = 20
	// networks with an id at or below this value must not carry NetworkID
	restrictedNetworks = 1024
	feeCushion         = 1.2

	defaultPollInterval = time.Second
)

var (
	ErrNotConnected    = errors.New("ledger: client is not connected")
	ErrAccountNotFound = errors.New("ledger: account not found")
	ErrTxNotFound      = errors.New("ledger: transaction not found")
	ErrTxExpired       = errors.New("ledger: transaction expired before validation")
)

// Client talks to one rippled-compatible server.
type Client struct {
	url          string
	timeout      time.Duration
	pollInterval time.Duration
	transport    Transport
	logger       *logrus.Entry

	networkID *uint32
}

type Option func(*Client)

// WithTimeout bounds every single request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithTransport replaces scheme based dialing.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

func WithLogger(logger *logrus.Entry) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(serverURL string, opts ...Option) *Client {
	c := &Client{
		url:          serverURL,
		pollInterval: defaultPollInterval,
		logger:       logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) IsConnected() bool {
	return c.transport != nil
}

// Connect opens a websocket for ws/wss URLs and a JSON-RPC client for http/https URLs.
func (c *Client) Connect(ctx context.Context) error {
	if c.transport != nil {
		return nil
	}
	u, err := url.Parse(c.url)
	if err != nil {
		return fmt.Errorf("ledger: invalid server url %q: %w", c.url, err)
	}
	switch u.Scheme {
	case "ws", "wss":
		if c.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
		t, err := dialWebsocket(ctx, c.url)
		if err != nil {
			return fmt.Errorf("ledger: could not connect to %s: %w", c.url, err)
		}
		c.transport = t
	case "http", "https":
		c.transport = newHTTPTransport(c.url)
	default:
		return fmt.Errorf("ledger: unsupported url scheme %q", u.Scheme)
	}
	c.logger.Debugf("Connected to %s", c.url)
	return nil
}

func (c *Client) Disconnect() error {
	if c.transport == nil {
		return nil
	}
	err := c.transport.Close()
	c.transport = nil
	return err
}

// Request sends a raw command and decodes its result into out when out is not nil.
func (c *Client) Request(ctx context.Context, command string, params map[string]any, out any) error {
	if c.transport == nil {
		return ErrNotConnected
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	raw, err := c.transport.Request(ctx, command, params)
	if err != nil {
		return fmt.Errorf("ledger: %s request failed: %w", command, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("ledger: could not decode %s result: %w", command, err)
	}
	return nil
}

// AccountInfo returns the account root. An empty ledgerIndex lets the server pick its default.
func (c *Client) AccountInfo(ctx context.Context, address string, ledgerIndex string) (*entities.AccountData, error) {
	params := map[string]any{"account": address}
	if ledgerIndex != "" {
		params["ledger_index"] = ledgerIndex
	}
	var res entities.AccountInfoRes
	if err := c.Request(ctx, "account_info", params, &res); err != nil {
		if isRPCError(err, "actNotFound") {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, address)
		}
		return nil, err
	}
	return &res.AccountData, nil
}

func (c *Client) ServerInfo(ctx context.Context) (*entities.ServerInfo, error) {
	var res entities.ServerInfoRes
	if err := c.Request(ctx, "server_info", nil, &res); err != nil {
		return nil, err
	}
	return &res.Info, nil
}

func (c *Client) ValidatedLedgerIndex(ctx context.Context) (uint32, error) {
	var res entities.LedgerRes
	if err := c.Request(ctx, "ledger", map[string]any{"ledger_index": "validated"}, &res); err != nil {
		return 0, err
	}
	return res.LedgerIndex, nil
}

// NetworkID is read once from server_info and cached.
func (c *Client) NetworkID(ctx context.Context) (uint32, error) {
	if c.networkID != nil {
		return *c.networkID, nil
	}
	info, err := c.ServerInfo(ctx)
	if err != nil {
		return 0, err
	}
	id := info.NetworkID
	c.networkID = &id
	return id, nil
}

// FeeDrops is the open ledger fee scaled by the server load factor with a 20% cushion.
func (c *Client) FeeDrops(ctx context.Context) (uint64, error) {
	info, err := c.ServerInfo(ctx)
	if err != nil {
		return 0, err
	}
	if info.ValidatedLedger == nil {
		return 0, fmt.Errorf("ledger: server_info has no validated ledger")
	}
	loadFactor := info.LoadFactor
	if loadFactor <= 0 {
		loadFactor = 1
	}
	drops := info.ValidatedLedger.BaseFeeXRP * 1e6 * loadFactor * feeCushion
	return uint64(math.Ceil(drops)), nil
}

// Autofill returns a copy of tx with the fields the caller left out filled from the ledger.
// Fields already present are never touched.
func (c *Client) Autofill(ctx context.Context, tx transaction.Tx) (transaction.Tx, error) {
	out := tx.Clone()

	if !out.Has("NetworkID") {
		networkID, err := c.NetworkID(ctx)
		if err != nil {
			return nil, err
		}
		if networkID > restrictedNetworks {
			out["NetworkID"] = networkID
		}
	}
	if !out.Has("Sequence") {
		account, err := c.AccountInfo(ctx, out.Account(), "current")
		if err != nil {
			return nil, err
		}
		out["Sequence"] = account.Sequence
	}
	if !out.Has("Fee") {
		fee, err := c.FeeDrops(ctx)
		if err != nil {
			return nil, err
		}
		out["Fee"] = strconv.FormatUint(fee, 10)
	}
	if !out.Has("LastLedgerSequence") {
		validated, err := c.ValidatedLedgerIndex(ctx)
		if err != nil {
			return nil, err
		}
		out["LastLedgerSequence"] = validated + LedgerOffset
	}
	return out, nil
}

// Submit hands a signed blob to the server and returns the preliminary result.
func (c *Client) Submit(ctx context.Context, txBlob string) (*entities.SubmitRes, error) {
	var res entities.SubmitRes
	if err := c.Request(ctx, "submit", map[string]any{"tx_blob": txBlob}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Tx(ctx context.Context, hash string) (*entities.TxDetailRes, error) {
	var res entities.TxDetailRes
	if err := c.Request(ctx, "tx", map[string]any{"transaction": hash}, &res); err != nil {
		if isRPCError(err, "txnNotFound") {
			return nil, fmt.Errorf("%w: %s", ErrTxNotFound, hash)
		}
		return nil, err
	}
	return &res, nil
}

// SubmitAndWait submits signed and polls until it is in a validated ledger or its
// LastLedgerSequence has passed.
func (c *Client) SubmitAndWait(ctx context.Context, signed *transaction.Signed) (*entities.TxDetailRes, error) {
	lastLedger, ok := signed.Tx.Uint32("LastLedgerSequence")
	if !ok {
		return nil, fmt.Errorf("ledger: transaction %s has no LastLedgerSequence", signed.Hash)
	}
	submitted, err := c.Submit(ctx, signed.TxBlob)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("Submitted %s, preliminary result %s", signed.Hash, submitted.EngineResult)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		res, err := c.Tx(ctx, signed.Hash)
		switch {
		case err == nil && res.Validated:
			return res, nil
		case err != nil && !errors.Is(err, ErrTxNotFound):
			return nil, err
		}

		validated, err := c.ValidatedLedgerIndex(ctx)
		if err != nil {
			return nil, err
		}
		if validated > lastLedger {
			return nil, fmt.Errorf("%w: latest validated ledger %d is past LastLedgerSequence %d, preliminary result %s",
				ErrTxExpired, validated, lastLedger, submitted.EngineResult)
		}
	}
}

func isRPCError(err error, code string) bool {
	var rpcErr *entities.RPCError
	return errors.As(err, &rpcErr) && rpcErr.Code == code
}
