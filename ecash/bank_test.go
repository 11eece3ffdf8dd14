package ecash

import (
	"crypto/rand"
	"math/big"
	"sync"
	"testing"

	"github.com/dbogatov/dac-lib/dac"
	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBankAndMerchants(t *testing.T, shares, merchants int) (*Bank, []*Merchant) {

	key, err := blindsig.Generate(rand.Reader, testKeyBits)
	require.NoError(t, err)

	bank := MakeBank(key, shares)

	all := make([]*Merchant, merchants)
	for id := 0; id < merchants; id++ {
		all[id] = MakeMerchant(helpers.NewRandSeed([]byte{0x30, byte(id)}), id, shares, bank.PK())
		bank.RegisterMerchant(id, all[id].PK())
	}

	return bank, all
}

func TestBankSign(t *testing.T) {

	bank, _ := makeBankAndMerchants(t, 3, 0)

	token, err := MakeToken(helpers.NewRandSeed([]byte{0x31}), "alice", 20, 3)
	require.NoError(t, err)

	blinded, err := token.BlindDigest(bank.PK())
	require.NoError(t, err)

	signature, err := bank.Sign(blinded)
	require.NoError(t, err)

	require.NoError(t, token.AttachSignature(signature))
	require.NoError(t, token.Unblind(bank.PK()))
}

func TestBankSignRejectsOutOfRange(t *testing.T) {

	bank, _ := makeBankAndMerchants(t, 3, 0)

	_, err := bank.Sign(big.NewInt(0))
	require.Error(t, err)

	var signing *SigningError
	require.True(t, asError(err, &signing))
	assert.Error(t, signing.Unwrap())
}

func TestBankDepositFirstAccepted(t *testing.T) {

	bank, merchants := makeBankAndMerchants(t, 3, 1)

	token := signedToken(t, bank.key, "alice", 20, 3)

	record, err := merchants[0].Accept(token)
	require.NoError(t, err)

	outcome, err := bank.Deposit(record)
	require.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestBankDepositDoubleSpendIdentifiesSpender(t *testing.T) {

	bank, _ := makeBankAndMerchants(t, 3, 0)

	token := signedToken(t, bank.key, "alice", 20, 3)

	first := acceptWithSide(t, token, bank.PK(), Left)
	second := acceptWithSide(t, token, bank.PK(), Right)

	// the probing merchants are not pre-registered
	bank.RegisterMerchant(first.MerchantID, merchantPK(t, first.MerchantID, bank))
	bank.RegisterMerchant(second.MerchantID, merchantPK(t, second.MerchantID, bank))

	outcome, err := bank.Deposit(first)
	require.NoError(t, err)
	require.Nil(t, outcome)

	outcome, err = bank.Deposit(second)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, SpenderIdentified, outcome.Verdict)
	assert.Equal(t, "alice", outcome.Identity)
}

// merchantPK rebuilds the deterministic key acceptWithSide's probing
// merchant was created with.
func merchantPK(t *testing.T, seed int, bank *Bank) dac.PK {
	merchant := MakeMerchant(helpers.NewRandSeed([]byte{byte(seed), 0x42}), seed, bank.shares, bank.PK())
	return merchant.PK()
}

func TestBankDepositReplayIsMerchantDuplicate(t *testing.T) {

	bank, merchants := makeBankAndMerchants(t, 3, 1)

	token := signedToken(t, bank.key, "alice", 20, 3)

	record, err := merchants[0].Accept(token)
	require.NoError(t, err)

	outcome, err := bank.Deposit(record)
	require.NoError(t, err)
	require.Nil(t, outcome)

	outcome, err = bank.Deposit(record)
	require.NoError(t, err)
	require.NotNil(t, outcome)

	assert.Equal(t, MerchantDuplicate, outcome.Verdict)
	assert.Empty(t, outcome.Identity)
}

func TestBankDepositRejectsUnregisteredMerchant(t *testing.T) {

	bank, _ := makeBankAndMerchants(t, 3, 0)

	token := signedToken(t, bank.key, "alice", 20, 3)

	stranger := MakeMerchant(helpers.NewRandSeed([]byte{0x32}), 99, 3, bank.PK())

	record, err := stranger.Accept(token)
	require.NoError(t, err)

	_, err = bank.Deposit(record)
	assert.Error(t, err)
}

func TestBankDepositRejectsTamperedRecord(t *testing.T) {

	bank, merchants := makeBankAndMerchants(t, 3, 1)

	token := signedToken(t, bank.key, "alice", 20, 3)

	record, err := merchants[0].Accept(token)
	require.NoError(t, err)

	record.TokenID = record.TokenID[:len(record.TokenID)-1] + "?"

	_, err = bank.Deposit(record)
	assert.Error(t, err)
}

func TestBankDepositConcurrent(t *testing.T) {

	const deposits = 8

	bank, _ := makeBankAndMerchants(t, 3, 0)

	token := signedToken(t, bank.key, "alice", 20, 3)

	records := make([]*DepositRecord, deposits)
	for i := 0; i < deposits; i++ {
		side := Left
		if i%2 == 1 {
			side = Right
		}
		records[i] = acceptWithSide(t, token, bank.PK(), side)
		bank.RegisterMerchant(records[i].MerchantID, merchantPK(t, records[i].MerchantID, bank))
	}

	outcomes := make([]*Outcome, deposits)
	errors := make([]error, deposits)

	var wg sync.WaitGroup
	wg.Add(deposits)
	for i := 0; i < deposits; i++ {
		go func(i int) {
			defer wg.Done()
			outcomes[i], errors[i] = bank.Deposit(records[i])
		}(i)
	}
	wg.Wait()

	accepted := 0
	arbitrated := 0
	for i := 0; i < deposits; i++ {
		require.NoError(t, errors[i])
		if outcomes[i] == nil {
			accepted++
		} else {
			arbitrated++
		}
	}

	assert.Equal(t, 1, accepted)
	assert.Equal(t, deposits-1, arbitrated)
}
