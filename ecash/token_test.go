package ecash

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeTokenShares(t *testing.T) {

	const shares = 3

	token, err := MakeToken(helpers.NewRandSeed([]byte{0x01}), "alice", 20, shares)
	require.NoError(t, err)

	assert.Equal(t, 20, token.Amount())
	assert.Equal(t, "alice", token.Identity())
	assert.Equal(t, shares, token.Shares())
	assert.Equal(t, Created, token.State())
	assert.Len(t, token.ID(), helpers.TokenIDSize)

	tag := []byte(IdentTag + identDelimiter + "alice")

	note, err := ParseNote(token.Canonical(), shares)
	require.NoError(t, err)

	for i := 0; i < shares; i++ {
		left := token.Share(Left, i)
		right := token.Share(Right, i)

		assert.Equal(t, tag, helpers.Xor(left, right))

		assert.Equal(t, hex.EncodeToString(helpers.Sha3(left)), note.LeftHash[i])
		assert.Equal(t, hex.EncodeToString(helpers.Sha3(right)), note.RightHash[i])
	}
}

func TestMakeTokenSharePairsDiffer(t *testing.T) {

	token, err := MakeToken(helpers.NewRandSeed([]byte{0x02}), "alice", 20, 3)
	require.NoError(t, err)

	assert.NotEqual(t, token.Share(Left, 0), token.Share(Left, 1))
	assert.NotEqual(t, token.Share(Right, 0), token.Share(Right, 1))
}

func TestMakeTokenRejectsBadArguments(t *testing.T) {

	for _, tc := range []struct {
		name     string
		identity string
		amount   int
		shares   int
	}{
		{"zero amount", "alice", 0, 3},
		{"negative amount", "alice", -5, 3},
		{"zero shares", "alice", 20, 0},
		{"empty identity", "", 20, 3},
		{"identity with delimiter", "ali:ce", 20, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := MakeToken(helpers.NewRandSeed([]byte{0x03}), tc.identity, tc.amount, tc.shares)
			assert.Error(t, err)
		})
	}
}

func TestTokenLifecycle(t *testing.T) {

	key, err := blindsig.Generate(rand.Reader, testKeyBits)
	require.NoError(t, err)

	token, err := MakeToken(helpers.NewRandSeed([]byte{0x04}), "alice", 20, 3)
	require.NoError(t, err)

	// out of order before blinding
	assert.Error(t, token.AttachSignature(nil))
	assert.Error(t, token.Unblind(&key.PublicKey))
	assert.Error(t, token.MarkSpent())

	blinded, err := token.BlindDigest(&key.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, Blinded, token.State())

	_, err = token.BlindDigest(&key.PublicKey)
	assert.Error(t, err)

	signature, err := key.Sign(blinded)
	require.NoError(t, err)

	require.NoError(t, token.AttachSignature(signature))
	assert.Equal(t, Signed, token.State())

	require.NoError(t, token.Unblind(&key.PublicKey))
	assert.Equal(t, Unblinded, token.State())

	assert.NoError(t, key.PublicKey.Verify(token.Signature(), []byte(token.Canonical())))

	// spending is re-enterable
	require.NoError(t, token.MarkSpent())
	require.NoError(t, token.MarkSpent())
	assert.Equal(t, Spent, token.State())
}

func TestUnblindRejectsWrongSignature(t *testing.T) {

	key, err := blindsig.Generate(rand.Reader, testKeyBits)
	require.NoError(t, err)

	token, err := MakeToken(helpers.NewRandSeed([]byte{0x05}), "alice", 20, 3)
	require.NoError(t, err)

	blinded, err := token.BlindDigest(&key.PublicKey)
	require.NoError(t, err)

	signature, err := key.Sign(blinded)
	require.NoError(t, err)

	tampered := new(big.Int).Add(signature, big.NewInt(1))
	require.NoError(t, token.AttachSignature(tampered))

	assert.Error(t, token.Unblind(&key.PublicKey))
}
