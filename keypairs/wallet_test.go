package keypairs

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wojake/B2M-testnet/addresscodec"
	"github.com/wojake/B2M-testnet/codec"
	"github.com/wojake/B2M-testnet/transaction"
)

// seed of the "masterpassphrase" genesis account
const genesisSeed = "snoPBrXtMeMyMHUVTgbuqAfg1SUTb"

func TestFromSeed(t *testing.T) {
	w, err := FromSeed(genesisSeed)
	require.NoError(t, err)

	assert.Equal(t, "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh", w.ClassicAddress)
	assert.Equal(t, "0330E7FC9D56BB25D6893BA3F317AE5BCF33B3291BD63DB32654A313222F7FD020", w.PublicKeyHex())
	assert.Equal(t, genesisSeed, w.Seed())
	assert.Equal(t, w.ClassicAddress, w.String())
	assert.Equal(t,
		"1ACAAEDECE405B2A958212629E16F2EB46B153EEE94CDD350FDEFF52795525B7",
		strings.ToUpper(hex.EncodeToString(w.privateKey.Serialize())),
	)
}

func TestFromSeed_Invalid(t *testing.T) {
	_, err := FromSeed("rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh")
	assert.Error(t, err)

	_, err = FromSeed("")
	assert.Error(t, err)
}

func TestGenerate(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 8; i++ {
		w, err := Generate()
		require.NoError(t, err)
		assert.True(t, addresscodec.IsValidAddress(w.ClassicAddress))
		assert.False(t, seen[w.ClassicAddress], "generated wallets must be distinct")
		seen[w.ClassicAddress] = true

		again, err := FromSeed(w.Seed())
		require.NoError(t, err)
		assert.Equal(t, w.ClassicAddress, again.ClassicAddress)
	}
}

func TestSign(t *testing.T) {
	w, err := FromSeed(genesisSeed)
	require.NoError(t, err)

	tx := transaction.NewAccountSetBurn(w.ClassicAddress, 5, 1000000, 21338)
	signed, err := w.Sign(tx)
	require.NoError(t, err)

	assert.False(t, tx.Has("TxnSignature"), "template must not be mutated")
	assert.Equal(t, w.PublicKeyHex(), signed.Tx["SigningPubKey"])
	assert.Len(t, signed.Hash, 64)
	assert.Equal(t, signed.Hash, signed.Tx["hash"])

	blob, err := hex.DecodeString(signed.TxBlob)
	require.NoError(t, err)
	assert.Equal(t, signed.Hash, codec.TransactionID(blob))

	require.NoError(t, Verify(signed.Tx, w.PublicKeyHex()))

	// RFC6979 signing is deterministic
	again, err := w.Sign(tx)
	require.NoError(t, err)
	assert.Equal(t, signed.TxBlob, again.TxBlob)
	assert.Equal(t, signed.Hash, again.Hash)
}

func TestSign_TamperedTransaction(t *testing.T) {
	w, err := FromSeed(genesisSeed)
	require.NoError(t, err)

	signed, err := w.Sign(transaction.NewAccountSetBurn(w.ClassicAddress, 5, 1000000, 21338))
	require.NoError(t, err)

	signed.Tx["Sequence"] = uint32(6)
	assert.ErrorIs(t, Verify(signed.Tx, w.PublicKeyHex()), ErrInvalidSignature)
}

func TestSign_WrongAccount(t *testing.T) {
	w, err := FromSeed(genesisSeed)
	require.NoError(t, err)

	_, err = w.Sign(transaction.NewAccountSetBurn("rrrrrrrrrrrrrrrrrrrrBZbvji", 1, 10, 21338))
	assert.Error(t, err)
}
