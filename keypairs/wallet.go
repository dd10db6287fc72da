package keypairs

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/wojake/B2M-testnet/addresscodec"
	"github.com/wojake/B2M-testnet/codec"
	"github.com/wojake/B2M-testnet/transaction"
	"golang.org/x/crypto/ripemd160"
)

var ErrInvalidSignature = errors.New("keypairs: signature does not verify")

// Wallet is a secp256k1 XRPL account derived from a family seed.
type Wallet struct {
	seed           string
	privateKey     *btcec.PrivateKey
	PublicKey      []byte // 33 byte compressed
	ClassicAddress string
}

// FromSeed derives the regular (non-validator) key pair of account index 0.
func FromSeed(seed string) (*Wallet, error) {
	entropy, err := addresscodec.DecodeSeed(seed)
	if err != nil {
		return nil, err
	}
	return fromEntropy(seed, entropy)
}

// Generate creates a wallet from fresh random entropy.
func Generate() (*Wallet, error) {
	entropy := make([]byte, addresscodec.SeedLength)
	if _, err := rand.Read(entropy); err != nil {
		return nil, fmt.Errorf("keypairs: failed to read entropy: %w", err)
	}
	seed, err := addresscodec.EncodeSeed(entropy)
	if err != nil {
		return nil, err
	}
	return fromEntropy(seed, entropy)
}

func fromEntropy(seed string, entropy []byte) (*Wallet, error) {
	order := btcec.S256().Params().N

	root := deriveScalar(order, entropy)
	_, rootPub := btcec.PrivKeyFromBytes(root.FillBytes(make([]byte, 32)))

	// account index 0 of the root key's family
	intermediate := deriveScalar(order, rootPub.SerializeCompressed(), []byte{0, 0, 0, 0})

	secret := new(big.Int).Add(root, intermediate)
	secret.Mod(secret, order)

	priv, pub := btcec.PrivKeyFromBytes(secret.FillBytes(make([]byte, 32)))
	pubBytes := pub.SerializeCompressed()

	address, err := addresscodec.EncodeAccountID(AccountID(pubBytes))
	if err != nil {
		return nil, err
	}
	return &Wallet{
		seed:           seed,
		privateKey:     priv,
		PublicKey:      pubBytes,
		ClassicAddress: address,
	}, nil
}

// deriveScalar hashes prefix||counter until the result is a valid non-zero scalar.
func deriveScalar(order *big.Int, prefix ...[]byte) *big.Int {
	var counter [4]byte
	for i := uint32(0); ; i++ {
		binary.BigEndian.PutUint32(counter[:], i)
		parts := append(append([][]byte{}, prefix...), counter[:])
		k := new(big.Int).SetBytes(codec.Sha512Half(parts...))
		if k.Sign() > 0 && k.Cmp(order) < 0 {
			return k
		}
	}
}

// AccountID is RIPEMD160(SHA256(publicKey)).
func AccountID(publicKey []byte) []byte {
	sha := sha256.Sum256(publicKey)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}

func (w *Wallet) Seed() string {
	return w.seed
}

func (w *Wallet) PublicKeyHex() string {
	return strings.ToUpper(hex.EncodeToString(w.PublicKey))
}

func (w *Wallet) String() string {
	return w.ClassicAddress
}

// Sign fills SigningPubKey and TxnSignature on a copy of tx and returns the serialized blob and id.
func (w *Wallet) Sign(tx transaction.Tx) (*transaction.Signed, error) {
	if account := tx.Account(); account != "" && account != w.ClassicAddress {
		return nil, fmt.Errorf("keypairs: transaction account %s does not match wallet %s", account, w.ClassicAddress)
	}
	signedTx := tx.Clone()
	signedTx["SigningPubKey"] = w.PublicKeyHex()
	delete(signedTx, "TxnSignature")

	digest, err := codec.SigningHash(signedTx)
	if err != nil {
		return nil, fmt.Errorf("keypairs: failed to encode transaction for signing: %w", err)
	}
	sig := ecdsa.Sign(w.privateKey, digest)
	signedTx["TxnSignature"] = strings.ToUpper(hex.EncodeToString(sig.Serialize()))

	blob, err := codec.Encode(signedTx)
	if err != nil {
		return nil, fmt.Errorf("keypairs: failed to encode signed transaction: %w", err)
	}
	hash := codec.TransactionID(blob)
	signedTx["hash"] = hash

	return &transaction.Signed{
		Tx:     signedTx,
		TxBlob: strings.ToUpper(hex.EncodeToString(blob)),
		Hash:   hash,
	}, nil
}

// Verify checks a TxnSignature against the signing digest of tx and a public key.
func Verify(tx transaction.Tx, publicKeyHex string) error {
	sigHex, ok := tx["TxnSignature"].(string)
	if !ok {
		return fmt.Errorf("keypairs: transaction is not signed")
	}
	sigBytes, err := hex.DecodeString(sigHex)
	if err != nil {
		return fmt.Errorf("keypairs: invalid signature hex: %w", err)
	}
	sig, err := ecdsa.ParseDERSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("keypairs: invalid DER signature: %w", err)
	}
	pubBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return fmt.Errorf("keypairs: invalid public key hex: %w", err)
	}
	pub, err := btcec.ParsePubKey(pubBytes)
	if err != nil {
		return fmt.Errorf("keypairs: invalid public key: %w", err)
	}
	digest, err := codec.SigningHash(tx)
	if err != nil {
		return err
	}
	if !sig.Verify(digest, pub) {
		return ErrInvalidSignature
	}
	return nil
}
