package distributed

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/dbogatov/dac-lib/dac"
	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/ecash"
	"github.com/dbogatov/ecash-simulator/helpers"
	"gonum.org/v1/gonum/stat/distuv"
)

// Spender ...
type Spender struct {
	id       int
	identity string
	bankPK   *blindsig.PublicKey
	poisson  distuv.Poisson
}

// till serves one customer at a time; Accept draws from the merchant's PRG
// and may not run concurrently.
type till struct {
	merchant *ecash.Merchant
	lock     sync.Mutex
}

func runSpenders() (e error) {

	// the bank's public key is the only out-of-band configuration
	pkWire := makeRPCCallSync(sysParams.BankRPCAddress, "RPCBank.GetPK", new(int), new(PublicKeyWire)).(*PublicKeyWire)
	bankPK := &blindsig.PublicKey{
		N: new(big.Int).SetBytes(pkWire.N),
		E: new(big.Int).SetBytes(pkWire.E),
	}

	logger.Info("Received bank public key")

	merchants := make([]*till, sysParams.Merchants)
	for id := 0; id < sysParams.Merchants; id++ {
		merchants[id] = &till{
			merchant: ecash.MakeMerchant(helpers.NewRand(), id, sysParams.Shares, bankPK),
		}

		registration := &MerchantRegistration{
			ID: id,
			PK: dac.PointToBytes(merchants[id].merchant.PK()),
		}
		makeRPCCallSync(sysParams.BankRPCAddress, "RPCBank.RegisterMerchant", registration, new(bool))
	}

	logger.Infof("Registered %d merchants", sysParams.Merchants)

	var wgSpender sync.WaitGroup
	wgSpender.Add(sysParams.Spenders)

	for id := 0; id < sysParams.Spenders; id++ {

		spender := &Spender{
			id:       id,
			identity: fmt.Sprintf("spender-%d", id),
			bankPK:   bankPK,
		}
		if sysParams.Frequency > 0 {
			spender.poisson = distuv.Poisson{
				Lambda: 3600.0 / float64(sysParams.Frequency),
			}
		}

		go func(spender *Spender) {
			defer wgSpender.Done()

			spender.run(merchants)
		}(spender)
	}

	wgSpender.Wait()

	logger.Notice("All spenders done")

	return
}

func (spender *Spender) run(merchants []*till) {

	token := spender.withdraw()

	first := helpers.MerchantByHash(helpers.Sha3([]byte(token.ID())), sysParams.Merchants)

	for spend := 0; spend < sysParams.Spends; spend++ {

		if sysParams.Frequency > 0 {
			sleep := time.Duration((3600.0/spender.poisson.Rand())*1000) * time.Millisecond
			logger.Debugf("%s will wait %d ms", spender.identity, sleep.Milliseconds())
			time.Sleep(sleep)
		}

		spender.spend(token, merchants[(first+spend)%sysParams.Merchants])
	}
}

func (spender *Spender) withdraw() (token *ecash.Token) {

	token, e := ecash.MakeToken(helpers.NewRand(), spender.identity, sysParams.Amount, sysParams.Shares)
	if e != nil {
		logger.Fatal("ecash.MakeToken():", e)
	}

	blinded, e := token.BlindDigest(spender.bankPK)
	if e != nil {
		logger.Fatal("token.BlindDigest():", e)
	}

	reply := makeRPCCallSync(sysParams.BankRPCAddress, "RPCBank.Sign", &SignRequest{Blinded: blinded.Bytes()}, new(SignReply)).(*SignReply)

	if e = token.AttachSignature(new(big.Int).SetBytes(reply.Signature)); e != nil {
		logger.Fatal("token.AttachSignature():", e)
	}
	if e = token.Unblind(spender.bankPK); e != nil {
		logger.Fatal("token.Unblind():", e)
	}

	logger.Infof("%s withdrew token %s", spender.identity, token.ID())

	return
}

func (spender *Spender) spend(token *ecash.Token, at *till) {

	at.lock.Lock()
	record, e := at.merchant.Accept(token)
	at.lock.Unlock()
	if e != nil {
		logger.Fatal("merchant.Accept():", e)
	}

	deposit := &DepositWire{
		TokenID:    record.TokenID,
		MerchantID: record.MerchantID,
		Side:       int(record.Side),
		Shares:     record.Shares,
		Signature:  record.Signature.ToBytes(),
	}

	outcome := makeRPCCallSync(sysParams.BankRPCAddress, "RPCBank.Deposit", deposit, new(OutcomeWire)).(*OutcomeWire)

	if outcome.Arbitrated {
		logger.Noticef("Token %s arbitrated: %s %s", token.ID(), ecash.Verdict(outcome.Verdict), outcome.Identity)
	}
}
