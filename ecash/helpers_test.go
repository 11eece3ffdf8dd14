package ecash

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/stretchr/testify/require"
)

const testKeyBits = 512

func asError(err error, target interface{}) bool {
	return errors.As(err, target)
}

// signedToken runs the full withdrawal against the given bank key:
// create, blind, sign, unblind.
func signedToken(t *testing.T, key *blindsig.KeyPair, identity string, amount, shares int) *Token {
	token, err := MakeToken(helpers.NewRand(), identity, amount, shares)
	require.NoError(t, err)

	blinded, err := token.BlindDigest(&key.PublicKey)
	require.NoError(t, err)

	signature, err := key.Sign(blinded)
	require.NoError(t, err)

	require.NoError(t, token.AttachSignature(signature))
	require.NoError(t, token.Unblind(&key.PublicKey))

	return token
}

func issueToken(t *testing.T, identity string, amount, shares int) (*Token, *blindsig.KeyPair) {
	key, err := blindsig.Generate(rand.Reader, testKeyBits)
	require.NoError(t, err)

	return signedToken(t, key, identity, amount, shares), key
}

// recordFromToken builds the deposit record an honest acceptance of the
// given side would produce, bypassing the merchant.
func recordFromToken(token *Token, merchantID int, side Side) *DepositRecord {
	shares := make([][]byte, token.Shares())
	for i := 0; i < token.Shares(); i++ {
		shares[i] = token.Share(side, i)
	}

	return &DepositRecord{
		TokenID:    token.ID(),
		MerchantID: merchantID,
		Side:       side,
		Shares:     shares,
	}
}

// acceptWithSide drives real acceptances with deterministically seeded
// merchants until one draws the requested side.
func acceptWithSide(t *testing.T, token *Token, bankPK *blindsig.PublicKey, want Side) *DepositRecord {
	for seed := 0; seed < 256; seed++ {
		merchant := MakeMerchant(helpers.NewRandSeed([]byte{byte(seed), 0x42}), seed, token.Shares(), bankPK)

		record, err := merchant.Accept(token)
		require.NoError(t, err)

		if record.Side == want {
			return record
		}
	}

	t.Fatal("no seed yielded the requested side")
	return nil
}
