package simulator

import (
	"math/big"
	"time"

	"github.com/dbogatov/ecash-simulator/ecash"
	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/dbogatov/fabric-amcl/amcl"
	"gonum.org/v1/gonum/stat/distuv"
)

// Spender ...
type Spender struct {
	id       int
	identity string
	prg      *amcl.RAND
	poisson  distuv.Poisson
}

// MakeSpender ...
func MakeSpender(id int) (spender *Spender) {

	spender = &Spender{
		id:       id,
		identity: spenderName(id),
		prg:      helpers.NewRand(),
	}

	if sysParams.Frequency > 0 {
		spender.poisson = distuv.Poisson{
			Lambda: 3600.0 / float64(sysParams.Frequency),
		}
	}

	return
}

// run withdraws one token and spends it sysParams.Spends times at distinct
// merchants. Two or more spends of the same token is the double-spend the
// bank is supposed to catch; nothing here prevents it.
func (spender *Spender) run() {

	timingInfo := SpendTimingInfo{
		start: time.Now(),
	}

	timingInfo.withdrawalStart = time.Now()
	token := spender.withdraw()
	timingInfo.withdrawalEnd = time.Now()

	execParams.network.recordWithdrawal(token.ID(), spender.identity, sysParams.Spends)

	merchants := merchantsForToken(token.ID())

	timingInfo.spendsStart = time.Now()
	for _, merchant := range merchants {

		if sysParams.Frequency > 0 {
			sleep := time.Duration((3600.0/spender.poisson.Rand())*1000) * time.Millisecond
			logger.Debugf("%s will wait %d ms", spender.identity, sleep.Milliseconds())
			time.Sleep(sleep)
		}

		spender.spend(token, merchant)
	}
	timingInfo.spendsEnd = time.Now()

	timingInfo.end = time.Now()
	recordSpendTimingInfo(timingInfo)

	logger.Infof("%s is done spending token %s", spender.identity, token.ID())
}

func (spender *Spender) withdraw() (token *ecash.Token) {

	logger.Infof("%s starts a withdrawal", spender.identity)

	token, e := ecash.MakeToken(spender.prg, spender.identity, sysParams.Amount, sysParams.Shares)
	if e != nil {
		panic(e)
	}
	for i := 0; i < 2*sysParams.Shares; i++ {
		recordCryptoEvent(sha3hash)
	}

	blinded, e := token.BlindDigest(sysParams.BankPK)
	if e != nil {
		panic(e)
	}
	recordCryptoEvent(blindDigest)

	request := &WithdrawalRequest{
		blinded:     blinded,
		spenderID:   spender.id,
		doneChannel: make(chan *big.Int, 1),
	}
	execParams.network.bank.withdrawalChannel <- request
	signature := <-request.doneChannel

	if e = token.AttachSignature(signature); e != nil {
		panic(e)
	}
	if e = token.Unblind(sysParams.BankPK); e != nil {
		panic(e)
	}
	recordCryptoEvent(unblindSig)
	recordCryptoEvent(verifyBlind)

	logger.Debugf("%s unblinded a signed token %s", spender.identity, token.ID())

	return
}

func (spender *Spender) spend(token *ecash.Token, merchant int) {

	request := &SpendRequest{
		token:       token,
		spenderID:   spender.id,
		doneChannel: make(chan bool, 1),
	}

	execParams.network.merchants[merchant].spendChannel <- request

	if !<-request.doneChannel {
		panic("honest spend rejected")
	}

	logger.Debugf("%s spent token %s at %s", spender.identity, token.ID(), merchantName(merchant))
}
