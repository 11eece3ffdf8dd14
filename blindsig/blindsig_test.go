package blindsig

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKeyBits = 512

func TestBlindSignRoundTrip(t *testing.T) {
	key, err := Generate(rand.Reader, testKeyBits)
	require.NoError(t, err)

	message := []byte("EBANK1-20-abcdef-1a,2b-3c,4d")

	blinded, factor, err := key.Blind(rand.Reader, message)
	require.NoError(t, err)

	signature, err := key.Sign(blinded)
	require.NoError(t, err)

	// the signature over the blinded digest must not verify as-is
	assert.Error(t, key.Verify(signature, message))

	plain := key.Unblind(signature, factor)
	assert.NoError(t, key.Verify(plain, message))
}

func TestVerifyRejectsModifiedMessage(t *testing.T) {
	key, err := Generate(rand.Reader, testKeyBits)
	require.NoError(t, err)

	message := []byte("EBANK1-20-abcdef-1a,2b-3c,4d")

	blinded, factor, err := key.Blind(rand.Reader, message)
	require.NoError(t, err)
	signature, err := key.Sign(blinded)
	require.NoError(t, err)
	plain := key.Unblind(signature, factor)

	require.NoError(t, key.Verify(plain, message))

	for i := range message {
		modified := append([]byte{}, message...)
		modified[i] ^= 0x01

		assert.Error(t, key.Verify(plain, modified), "flipped byte %d", i)
	}
}

func TestSignRejectsOutOfRange(t *testing.T) {
	key, err := Generate(rand.Reader, testKeyBits)
	require.NoError(t, err)

	for _, blinded := range []*big.Int{
		nil,
		big.NewInt(0),
		big.NewInt(-1),
		key.N,
		new(big.Int).Add(key.N, big.NewInt(1)),
	} {
		_, err := key.Sign(blinded)
		assert.Error(t, err)
	}
}

func TestVerifyRejectsOutOfRange(t *testing.T) {
	key, err := Generate(rand.Reader, testKeyBits)
	require.NoError(t, err)

	message := []byte("message")

	for _, signature := range []*big.Int{
		nil,
		big.NewInt(0),
		key.N,
	} {
		assert.Error(t, key.Verify(signature, message))
	}
}

func TestBlindingFactorsDiffer(t *testing.T) {
	key, err := Generate(rand.Reader, testKeyBits)
	require.NoError(t, err)

	message := []byte("same message")

	blindedA, factorA, err := key.Blind(rand.Reader, message)
	require.NoError(t, err)
	blindedB, factorB, err := key.Blind(rand.Reader, message)
	require.NoError(t, err)

	// blinding hides the message: two blindings of one message differ
	assert.NotEqual(t, 0, blindedA.Cmp(blindedB))
	assert.NotEqual(t, 0, factorA.Cmp(factorB))
}
