package simulator

import (
	"context"
	"math/big"

	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/ecash"
	"golang.org/x/sync/semaphore"
)

// WithdrawalRequest ...
type WithdrawalRequest struct {
	blinded     *big.Int
	spenderID   int
	doneChannel chan *big.Int
}

// DepositSubmission ...
type DepositSubmission struct {
	record      *ecash.DepositRecord
	merchantID  int
	doneChannel chan *ecash.Outcome
}

// BankRunner drives the bank: it signs whatever blinded digests spenders
// submit and feeds merchant deposits through the ledger, both behind
// weighted semaphores.
type BankRunner struct {
	bank *ecash.Bank

	ctx context.Context

	signingSemaphore *semaphore.Weighted
	depositSemaphore *semaphore.Weighted

	withdrawalChannel chan *WithdrawalRequest
	depositChannel    chan *DepositSubmission
	exitChannel       chan bool
}

// MakeBankRunner ...
func MakeBankRunner(key *blindsig.KeyPair) (runner *BankRunner) {

	runner = &BankRunner{
		bank:              ecash.MakeBank(key, sysParams.Shares),
		ctx:               context.TODO(),
		signingSemaphore:  semaphore.NewWeighted(int64(sysParams.ConcurrentSignings)),
		depositSemaphore:  semaphore.NewWeighted(int64(sysParams.ConcurrentDeposits)),
		withdrawalChannel: make(chan *WithdrawalRequest),
		depositChannel:    make(chan *DepositSubmission),
		exitChannel:       make(chan bool),
	}

	go runner.run()

	return
}

func (runner *BankRunner) run() {
	for {
		select {
		case request := <-runner.withdrawalChannel:
			recordBandwidth(spenderName(request.spenderID), "bank", BlindedDigest{request.blinded})
			if e := runner.signingSemaphore.Acquire(runner.ctx, 1); e != nil {
				panic(e)
			}
			go runner.sign(request)
			continue
		case submission := <-runner.depositChannel:
			recordBandwidth(merchantName(submission.merchantID), "bank", DepositTransfer{submission.record})
			if e := runner.depositSemaphore.Acquire(runner.ctx, 1); e != nil {
				panic(e)
			}
			go runner.processDeposit(submission)
			continue
		case <-runner.exitChannel:
		}
		break
	}
}

// sign is the issuing side of a withdrawal. The bank never sees the token
// it signs, only the blinded digest.
func (runner *BankRunner) sign(request *WithdrawalRequest) {

	defer runner.signingSemaphore.Release(1)

	signature, e := runner.bank.Sign(request.blinded)
	if e != nil {
		panic(e)
	}
	recordCryptoEvent(signBlind)

	recordBandwidth("bank", spenderName(request.spenderID), BankSignature{signature})

	request.doneChannel <- signature
}

func (runner *BankRunner) processDeposit(submission *DepositSubmission) {

	defer runner.depositSemaphore.Release(1)

	outcome, e := runner.bank.Deposit(submission.record)
	if e != nil {
		panic(e)
	}
	recordCryptoEvent(verifySchnorr)

	if outcome != nil {
		recordCryptoEvent(xorDecode)
		execParams.network.recordOutcome(submission.record.TokenID, outcome)
		logger.Infof("bank arbitrated token %s: %s", submission.record.TokenID, outcome.Verdict)

		if outcome.Verdict == ecash.Inconclusive {
			logger.Warningf("token %s: arbitration inconclusive, operator attention required", submission.record.TokenID)
		}

		recordBandwidth("bank", merchantName(submission.merchantID), OutcomeTransfer{outcome})
	} else {
		logger.Debugf("bank recorded first deposit for token %s", submission.record.TokenID)
	}

	submission.doneChannel <- outcome
}
