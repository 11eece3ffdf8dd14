package simulator

import (
	"sync"
	"time"
)

// CryptoEvent ...
type CryptoEvent string

const (
	sha3hash CryptoEvent = "hash"

	blindDigest CryptoEvent = "blind"
	signBlind   CryptoEvent = "sign-blind"
	unblindSig  CryptoEvent = "unblind"
	verifyBlind CryptoEvent = "verify-blind"

	signSchnorr   CryptoEvent = "sign-schnorr"
	verifySchnorr CryptoEvent = "verify-schnorr"

	xorDecode CryptoEvent = "xor-decode"
)

var recordCryptoEventLock = &sync.Mutex{}

func recordCryptoEvent(event CryptoEvent) {
	recordCryptoEventLock.Lock()
	defer recordCryptoEventLock.Unlock()

	if current, exists := execParams.cryptoEvents[event]; exists {
		execParams.cryptoEvents[event] = current + 1
	} else {
		execParams.cryptoEvents[event] = 1
	}
}

// SpendTimingInfo ...
type SpendTimingInfo struct {
	start time.Time
	end   time.Time

	withdrawalStart time.Time
	withdrawalEnd   time.Time

	spendsStart time.Time
	spendsEnd   time.Time
}

var recordSpendTimingInfoLock = &sync.Mutex{}

func recordSpendTimingInfo(info SpendTimingInfo) {

	recordSpendTimingInfoLock.Lock()
	defer recordSpendTimingInfoLock.Unlock()

	execParams.spendTimings = append(execParams.spendTimings, info)
}
