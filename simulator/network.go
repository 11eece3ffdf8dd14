package simulator

import (
	"fmt"
	"sync"

	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/ecash"
	"github.com/dbogatov/ecash-simulator/helpers"
)

// Network ...
type Network struct {
	bank      *BankRunner
	merchants []*MerchantRunner
	spenders  []*Spender

	tokens     map[string]*tokenAudit
	tokensLock sync.Mutex
}

// tokenAudit is what the simulation remembers about every withdrawn token
// so the audit pass can check arbitration against ground truth.
type tokenAudit struct {
	identity string
	spends   int
	outcomes []*ecash.Outcome
}

// MakeNetwork ...
func MakeNetwork(bankKey *blindsig.KeyPair) (network *Network) {

	network = &Network{
		tokens: make(map[string]*tokenAudit),
	}

	network.bank = MakeBankRunner(bankKey)

	for merchant := 0; merchant < sysParams.Merchants; merchant++ {
		runner := MakeMerchantRunner(merchant)
		network.merchants = append(network.merchants, runner)
		network.bank.bank.RegisterMerchant(merchant, runner.merchant.PK())
	}

	for spender := 0; spender < sysParams.Spenders; spender++ {
		network.spenders = append(network.spenders, MakeSpender(spender))
	}

	return
}

func (network *Network) recordWithdrawal(tokenID, identity string, spends int) {

	network.tokensLock.Lock()
	defer network.tokensLock.Unlock()

	network.tokens[tokenID] = &tokenAudit{
		identity: identity,
		spends:   spends,
		outcomes: make([]*ecash.Outcome, 0),
	}
}

func (network *Network) recordOutcome(tokenID string, outcome *ecash.Outcome) {

	network.tokensLock.Lock()
	defer network.tokensLock.Unlock()

	audit, exists := network.tokens[tokenID]
	if !exists {
		panic(fmt.Sprintf("arbitration outcome for unknown token %s", tokenID))
	}
	audit.outcomes = append(audit.outcomes, outcome)
}

func (network *Network) stop() {

	for _, merchant := range network.merchants {
		merchant.exitChannel <- true
	}
	network.bank.exitChannel <- true
}

func merchantName(id int) string {
	return fmt.Sprintf("merchant-%d", id)
}

func spenderName(id int) string {
	return fmt.Sprintf("spender-%d", id)
}

func merchantsForToken(tokenID string) (merchants []int) {

	first := helpers.MerchantByHash(helpers.Sha3([]byte(tokenID)), sysParams.Merchants)
	recordCryptoEvent(sha3hash)

	merchants = make([]int, sysParams.Spends)
	for spend := 0; spend < sysParams.Spends; spend++ {
		merchants[spend] = (first + spend) % sysParams.Merchants
	}

	return
}
