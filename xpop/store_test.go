package xpop

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const burnHash = "3F1A6E1E8B52C8E1F6A4C2F0B9D9E7A5C3B1A09F8E7D6C5B4A3928170605F4E3"

func TestReadHex_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	content := []byte{0x00, 0x01, 0xab, 0xff, '{', '}'}
	require.NoError(t, os.WriteFile(filepath.Join(dir, burnHash), content, 0o644))

	store := NewStore(dir, "")
	blob, err := store.ReadHex(burnHash)
	require.NoError(t, err)
	assert.Equal(t, "0001abff7b7d", blob)
	assert.Equal(t, strings.ToLower(blob), blob)

	decoded, err := hex.DecodeString(blob)
	require.NoError(t, err)
	assert.Equal(t, content, decoded)
}

func TestPath_Suffix(t *testing.T) {
	store := NewStore("/var/xpop", ".json")
	assert.Equal(t, filepath.Join("/var/xpop", burnHash+".json"), store.Path(burnHash))
}

func TestRead_Missing(t *testing.T) {
	store := NewStore(t.TempDir(), "")
	_, err := store.Read(burnHash)
	assert.ErrorIs(t, err, ErrBlobMissing)
	assert.ErrorContains(t, err, burnHash)
}

func TestAwait_NoRetriesFailsImmediately(t *testing.T) {
	store := NewStore(t.TempDir(), "")
	start := time.Now()
	_, err := store.Await(context.Background(), burnHash, Policy{Interval: time.Second})
	assert.ErrorIs(t, err, ErrBlobMissing)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestAwait_DelayedBlob(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, ".xpop")
	go func() {
		time.Sleep(30 * time.Millisecond)
		os.WriteFile(filepath.Join(dir, burnHash+".xpop"), []byte("proof"), 0o644)
	}()

	blob, err := store.Await(context.Background(), burnHash, Policy{Retries: 10, Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, hex.EncodeToString([]byte("proof")), blob)
}

func TestAwait_Timeout(t *testing.T) {
	store := NewStore(t.TempDir(), "")
	_, err := store.Await(context.Background(), burnHash, Policy{Retries: 2, Interval: time.Millisecond})
	assert.ErrorIs(t, err, ErrBlobTimeout)
}

func TestAwait_Cancelled(t *testing.T) {
	store := NewStore(t.TempDir(), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Await(ctx, burnHash, Policy{Retries: 5, Interval: time.Second})
	assert.ErrorIs(t, err, context.Canceled)
}
