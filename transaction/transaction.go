package transaction

import (
	"fmt"
	"math"
	"strconv"
)

const (
	TypeAccountSet    = "AccountSet"
	TypeSignerListSet = "SignerListSet"
	TypeImport        = "Import"

	// MaxSignerEntries is the ledger limit on a signer list.
	MaxSignerEntries = 32
)

// Tx is a transaction in XRPL JSON form.
type Tx map[string]any

// Signed is a signed transaction ready for submission.
type Signed struct {
	Tx     Tx
	TxBlob string // upper-case hex
	Hash   string // upper-case hex transaction id
}

func (t Tx) Type() string {
	s, _ := t["TransactionType"].(string)
	return s
}

func (t Tx) Account() string {
	s, _ := t["Account"].(string)
	return s
}

func (t Tx) Has(field string) bool {
	_, ok := t[field]
	return ok
}

// Uint32 reads a numeric field whatever integer type it was stored with.
// Negative, fractional or out of range values are not ok.
func (t Tx) Uint32(field string) (uint32, bool) {
	switch v := t[field].(type) {
	case uint32:
		return v, true
	case int:
		if v < 0 || uint64(v) > math.MaxUint32 {
			return 0, false
		}
		return uint32(v), true
	case int64:
		if v < 0 || v > math.MaxUint32 {
			return 0, false
		}
		return uint32(v), true
	case uint64:
		if v > math.MaxUint32 {
			return 0, false
		}
		return uint32(v), true
	case float64:
		if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
			return 0, false
		}
		return uint32(v), true
	case string:
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, false
		}
		return uint32(n), true
	}
	return 0, false
}

func (t Tx) Sequence() uint32 {
	seq, _ := t.Uint32("Sequence")
	return seq
}

// Clone copies the top level so autofill and signing never mutate a caller's template.
func (t Tx) Clone() Tx {
	out := make(Tx, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Quorum is round(ratio * n) with halves rounded up.
func Quorum(n int, ratio float64) uint32 {
	return uint32(math.Floor(float64(n)*ratio + 0.5))
}

// SignerEntries wraps every address in a SignerEntry object with the same weight.
func SignerEntries(addresses []string, weight uint16) ([]any, error) {
	if len(addresses) == 0 || len(addresses) > MaxSignerEntries {
		return nil, fmt.Errorf("signer list must hold 1..%d entries, got %d", MaxSignerEntries, len(addresses))
	}
	entries := make([]any, 0, len(addresses))
	for _, addr := range addresses {
		entries = append(entries, map[string]any{
			"SignerEntry": map[string]any{
				"Account":      addr,
				"SignerWeight": weight,
			},
		})
	}
	return entries, nil
}
