package addresscodec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
)

const (
	rippleAlphabet  = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"
	bitcoinAlphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

	AccountIDPrefix  byte = 0x00
	FamilySeedPrefix byte = 0x21

	AccountIDLength = 20
	SeedLength      = 16
)

var (
	ErrInvalidAlphabet = errors.New("addresscodec: character outside the ripple alphabet")
	ErrUnsupportedSeed = errors.New("addresscodec: only secp256k1 family seeds are supported")
)

// translate maps every character of s from one base58 alphabet to the other.
// Both alphabets have 58 symbols so the checksum layout of base58check is unchanged.
func translate(s, from, to string) (string, error) {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		idx := strings.IndexRune(from, r)
		if idx < 0 {
			return "", ErrInvalidAlphabet
		}
		sb.WriteByte(to[idx])
	}
	return sb.String(), nil
}

func encode(payload []byte, version byte) string {
	s, _ := translate(base58.CheckEncode(payload, version), bitcoinAlphabet, rippleAlphabet)
	return s
}

func decode(s string) ([]byte, byte, error) {
	btcStr, err := translate(s, rippleAlphabet, bitcoinAlphabet)
	if err != nil {
		return nil, 0, err
	}
	return base58.CheckDecode(btcStr)
}

// EncodeAccountID returns the classic r-address of a 20 byte account id.
func EncodeAccountID(accountID []byte) (string, error) {
	if len(accountID) != AccountIDLength {
		return "", fmt.Errorf("addresscodec: account id must be %d bytes, got %d", AccountIDLength, len(accountID))
	}
	return encode(accountID, AccountIDPrefix), nil
}

// DecodeAddress returns the account id behind a classic r-address.
func DecodeAddress(address string) ([]byte, error) {
	payload, version, err := decode(address)
	if err != nil {
		return nil, fmt.Errorf("addresscodec: invalid address %q: %w", address, err)
	}
	if version != AccountIDPrefix || len(payload) != AccountIDLength {
		return nil, fmt.Errorf("addresscodec: %q is not a classic address", address)
	}
	return payload, nil
}

func IsValidAddress(address string) bool {
	_, err := DecodeAddress(address)
	return err == nil
}

func EncodeSeed(entropy []byte) (string, error) {
	if len(entropy) != SeedLength {
		return "", fmt.Errorf("addresscodec: seed entropy must be %d bytes, got %d", SeedLength, len(entropy))
	}
	return encode(entropy, FamilySeedPrefix), nil
}

// DecodeSeed returns the 16 byte entropy of an "s..." family seed.
func DecodeSeed(seed string) ([]byte, error) {
	payload, version, err := decode(seed)
	if err != nil {
		return nil, fmt.Errorf("addresscodec: invalid seed: %w", err)
	}
	if version != FamilySeedPrefix || len(payload) != SeedLength {
		return nil, ErrUnsupportedSeed
	}
	return payload, nil
}
