package simulator

import (
	"github.com/dbogatov/ecash-simulator/ecash"
	"github.com/dbogatov/ecash-simulator/helpers"
)

// SpendRequest ...
type SpendRequest struct {
	token       *ecash.Token
	spenderID   int
	doneChannel chan bool
}

// MerchantRunner serves spenders one at a time, like a till: it accepts a
// token, hands the spender a receipt, and only then reports the deposit to
// the bank.
type MerchantRunner struct {
	merchant *ecash.Merchant

	spendChannel chan *SpendRequest
	exitChannel  chan bool
}

// MakeMerchantRunner ...
func MakeMerchantRunner(id int) (runner *MerchantRunner) {

	runner = &MerchantRunner{
		merchant:     ecash.MakeMerchant(helpers.NewRand(), id, sysParams.Shares, sysParams.BankPK),
		spendChannel: make(chan *SpendRequest),
		exitChannel:  make(chan bool),
	}

	go runner.run()

	return
}

func (runner *MerchantRunner) run() {
	for {
		select {
		case request := <-runner.spendChannel:
			recordBandwidth(spenderName(request.spenderID), merchantName(runner.merchant.ID()), TokenTransfer{request.token})
			runner.serve(request)
			continue
		case <-runner.exitChannel:
		}
		break
	}
}

func (runner *MerchantRunner) serve(request *SpendRequest) {

	record, e := runner.merchant.Accept(request.token)
	recordCryptoEvent(verifyBlind)

	if e != nil {
		// a failed acceptance is a final rejection of this attempt
		logger.Errorf("%s rejected token %s: %v", merchantName(runner.merchant.ID()), request.token.ID(), e)
		request.doneChannel <- false
		return
	}

	for i := 0; i < sysParams.Shares; i++ {
		recordCryptoEvent(sha3hash)
	}
	recordCryptoEvent(signSchnorr)

	recordBandwidth(merchantName(runner.merchant.ID()), spenderName(request.spenderID), Receipt{})
	request.doneChannel <- true

	submission := &DepositSubmission{
		record:      record,
		merchantID:  runner.merchant.ID(),
		doneChannel: make(chan *ecash.Outcome, 1),
	}
	execParams.network.bank.depositChannel <- submission
	<-submission.doneChannel

	logger.Debugf("%s deposited token %s (%s side)", merchantName(runner.merchant.ID()), record.TokenID, record.Side)
}
