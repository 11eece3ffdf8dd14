package ecash

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/dbogatov/dac-lib/dac"
	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/helpers"
)

// Bank holds the issuer's process-wide signing key pair (created once at
// startup, read-only afterwards), the registry of merchant deposit keys,
// and the spent-token ledger.
type Bank struct {
	key    *blindsig.KeyPair
	shares int

	merchants     map[int]dac.PK
	merchantsLock sync.RWMutex

	ledger     map[string]*DepositRecord
	ledgerLock sync.Mutex

	tokenLocks     map[string]*sync.Mutex
	tokenLocksLock sync.Mutex
}

// MakeBank ...
func MakeBank(key *blindsig.KeyPair, shares int) (bank *Bank) {

	bank = &Bank{
		key:        key,
		shares:     shares,
		merchants:  make(map[int]dac.PK),
		ledger:     make(map[string]*DepositRecord),
		tokenLocks: make(map[string]*sync.Mutex),
	}

	return
}

// PK ...
func (bank *Bank) PK() *blindsig.PublicKey {
	return &bank.key.PublicKey
}

// RegisterMerchant records a merchant's deposit-signing key.
func (bank *Bank) RegisterMerchant(id int, pk dac.PK) {

	bank.merchantsLock.Lock()
	defer bank.merchantsLock.Unlock()

	bank.merchants[id] = pk
}

// Sign is the bank's blind-signing facade: one stateless call against the
// process-wide key. The bank validates nothing here beyond what the
// primitive does; it cannot see what it is signing.
func (bank *Bank) Sign(blinded *big.Int) (signature *big.Int, e error) {

	signature, e = bank.key.Sign(blinded)
	if e != nil {
		return nil, &SigningError{Err: e}
	}

	return
}

// Deposit runs insert-if-absent-else-arbitrate on the ledger, keyed by
// token id under a per-token lock, so a second deposit for one token is
// observed exactly once even under concurrent merchant deposits.
//
// A nil outcome means the deposit is the first for its token and was
// accepted. A non-nil outcome is an arbitration result; Inconclusive is
// returned as-is for an operator to handle.
func (bank *Bank) Deposit(record *DepositRecord) (outcome *Outcome, e error) {

	bank.merchantsLock.RLock()
	pk, registered := bank.merchants[record.MerchantID]
	bank.merchantsLock.RUnlock()

	if !registered {
		return nil, fmt.Errorf("deposit from unregistered merchant %d", record.MerchantID)
	}

	schnorr := dac.MakeSchnorr(helpers.NewRand(), false)
	if e = schnorr.Verify(pk, record.Signature, record.Message()); e != nil {
		return nil, fmt.Errorf("merchant %d: deposit signature invalid: %v", record.MerchantID, e)
	}

	lock := bank.lockFor(record.TokenID)
	lock.Lock()
	defer lock.Unlock()

	bank.ledgerLock.Lock()
	existing, seen := bank.ledger[record.TokenID]
	if !seen {
		bank.ledger[record.TokenID] = record
	}
	bank.ledgerLock.Unlock()

	if !seen {
		return nil, nil
	}

	result, e := Arbitrate(record.TokenID, existing, record)
	if e != nil {
		return nil, e
	}

	return &result, nil
}

func (bank *Bank) lockFor(tokenID string) (lock *sync.Mutex) {

	bank.tokenLocksLock.Lock()
	defer bank.tokenLocksLock.Unlock()

	lock, exists := bank.tokenLocks[tokenID]
	if !exists {
		lock = &sync.Mutex{}
		bank.tokenLocks[tokenID] = lock
	}

	return
}
