package workers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
	"github.com/wojake/B2M-testnet/transaction"
)

var ErrRunNotFound = errors.New("workers: run record not found")

type BurnRecord struct {
	TxType   string
	Sequence uint32
	Hash     string
	Result   string // engine result, or final result when waited on
}

// Mintable reports whether a proof can exist for the burn. Burns the ledger refused
// (tef, tem, tel) never reach a validated ledger. A waited signer list burn is final,
// so anything but tesSUCCESS is refused.
func (b *BurnRecord) Mintable() bool {
	for _, prefix := range []string{"tef", "tem", "tel"} {
		if strings.HasPrefix(b.Result, prefix) {
			return false
		}
	}
	if b.TxType == transaction.TypeSignerListSet {
		return b.Result == successResult
	}
	return true
}

type MintRecord struct {
	BurnHash string
	Sequence uint32
	Hash     string
	Result   string
}

// RunRecord is the persisted progress of one burn-to-mint run.
type RunRecord struct {
	ID        string
	Kind      string
	Account   string
	Status    string
	Error     string `json:",omitempty"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Signers   []string `json:",omitempty"`
	Burns     []*BurnRecord
	Mints     []*MintRecord
}

func NewRunRecord(kind, account string) *RunRecord {
	now := time.Now().UTC()
	return &RunRecord{
		ID:        strconv.FormatInt(now.UnixNano(), 10),
		Kind:      kind,
		Account:   account,
		Status:    RunStatusBurning,
		CreatedAt: now,
		UpdatedAt: now,
		Burns:     []*BurnRecord{},
		Mints:     []*MintRecord{},
	}
}

// PendingBurns returns, in burn order, the mintable burns that have no submitted mint yet.
func (r *RunRecord) PendingBurns() []*BurnRecord {
	minted := make(map[string]bool, len(r.Mints))
	for _, m := range r.Mints {
		minted[m.BurnHash] = true
	}
	pending := []*BurnRecord{}
	for _, b := range r.Burns {
		if !minted[b.Hash] && b.Mintable() {
			pending = append(pending, b)
		}
	}
	return pending
}

// RejectedBurns returns the burns no mint can ever redeem.
func (r *RunRecord) RejectedBurns() []*BurnRecord {
	rejected := []*BurnRecord{}
	for _, b := range r.Burns {
		if !b.Mintable() {
			rejected = append(rejected, b)
		}
	}
	return rejected
}

// Checkpoint persists run records in leveldb. A nil Checkpoint stores nothing.
type Checkpoint struct {
	db *leveldb.DB
}

func OpenCheckpoint(path string) (*Checkpoint, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("Could not open leveldb storage file %s - with err: %w", path, err)
	}
	return &Checkpoint{db: db}, nil
}

func (c *Checkpoint) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// Save writes run under its own key and marks it as the last run.
func (c *Checkpoint) Save(run *RunRecord) error {
	if c == nil {
		return nil
	}
	run.UpdatedAt = time.Now().UTC()
	runBytes, err := json.Marshal(run)
	if err != nil {
		return err
	}
	batch := new(leveldb.Batch)
	batch.Put([]byte(RunKeyPrefix+run.ID), runBytes)
	batch.Put([]byte(LastRunKey), []byte(run.ID))
	return c.db.Write(batch, nil)
}

func (c *Checkpoint) Load(id string) (*RunRecord, error) {
	if c == nil {
		return nil, ErrRunNotFound
	}
	runBytes, err := c.db.Get([]byte(RunKeyPrefix+id), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var run RunRecord
	if err := json.Unmarshal(runBytes, &run); err != nil {
		return nil, fmt.Errorf("Could not parse run record %s - with err: %w", id, err)
	}
	return &run, nil
}

func (c *Checkpoint) LoadLast() (*RunRecord, error) {
	if c == nil {
		return nil, ErrRunNotFound
	}
	id, err := c.db.Get([]byte(LastRunKey), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return c.Load(string(id))
}

// RunIDs lists every stored run id in key order.
func (c *Checkpoint) RunIDs() ([]string, error) {
	if c == nil {
		return nil, nil
	}
	ids := []string{}
	iter := c.db.NewIterator(util.BytesPrefix([]byte(RunKeyPrefix)), nil)
	defer iter.Release()
	for iter.Next() {
		ids = append(ids, strings.TrimPrefix(string(iter.Key()), RunKeyPrefix))
	}
	return ids, iter.Error()
}
