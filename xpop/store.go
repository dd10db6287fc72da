package xpop

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

var (
	ErrBlobMissing = errors.New("xpop: proof blob not found")
	ErrBlobTimeout = errors.New("xpop: proof blob did not appear in time")
)

const maxBackoff = 30 * time.Second

// Store reads the proof blobs a proof node writes to Dir, one file per burn
// named by its transaction hash.
type Store struct {
	Dir    string
	Suffix string
}

func NewStore(dir, suffix string) *Store {
	return &Store{Dir: dir, Suffix: suffix}
}

func (s *Store) Path(hash string) string {
	return filepath.Join(s.Dir, hash+s.Suffix)
}

func (s *Store) Read(hash string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(hash))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBlobMissing, s.Path(hash))
	}
	if err != nil {
		return nil, fmt.Errorf("xpop: could not read %s: %w", s.Path(hash), err)
	}
	// the proof node may have created the file without writing it yet
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrBlobMissing, s.Path(hash))
	}
	return data, nil
}

// ReadHex returns the blob as lower-case hex, ready for an Import transaction.
func (s *Store) ReadHex(hash string) (string, error) {
	data, err := s.Read(hash)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

// Policy controls how long Await keeps looking for a blob that is not there yet.
// Zero retries fails on the first miss.
type Policy struct {
	Retries  int
	Interval time.Duration
}

// Await reads the blob for hash, retrying with doubling intervals per policy.
func (s *Store) Await(ctx context.Context, hash string, policy Policy) (string, error) {
	interval := policy.Interval
	for attempt := 0; ; attempt++ {
		blob, err := s.ReadHex(hash)
		if err == nil {
			return blob, nil
		}
		if !errors.Is(err, ErrBlobMissing) {
			return "", err
		}
		if policy.Retries == 0 {
			return "", err
		}
		if attempt >= policy.Retries {
			return "", fmt.Errorf("%w: %s after %d retries", ErrBlobTimeout, s.Path(hash), policy.Retries)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(interval):
		}
		interval *= 2
		if interval > maxBackoff {
			interval = maxBackoff
		}
	}
}
