package simulator

import (
	"encoding/json"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/dbogatov/ecash-simulator/ecash"
)

type transferable interface {
	size() int
	name() string
}

var globalBandwidthLock = &sync.Mutex{}
var bandwidthLoggingLock = &sync.Mutex{}
var getLocksLock = &sync.Mutex{}
var networkEventID uint64 = 1

var connectionsMap = make(map[string]*sync.Mutex)

func recordBandwidth(from, to string, object transferable) {

	getLocks := func(key string) *sync.Mutex {
		getLocksLock.Lock()
		defer getLocksLock.Unlock()

		lock, exists := connectionsMap[key]
		if !exists {
			lock = &sync.Mutex{}
			connectionsMap[key] = lock
		}
		return lock
	}

	getWaitTime := func(bandwidth int) time.Duration {
		return time.Duration(1000*(float64(object.size())/float64(bandwidth))) * time.Millisecond
	}

	fromLock := getLocks(from)
	toLock := getLocks(to)

	var wg sync.WaitGroup
	wg.Add(3)

	spinWait := func(lock *sync.Mutex, waitTime time.Duration) {
		defer wg.Done()

		lock.Lock()
		defer lock.Unlock()

		time.Sleep(waitTime)
	}

	waitTimeGlobal := getWaitTime(sysParams.BandwidthGlobal)
	waitTimeLocal := getWaitTime(sysParams.BandwidthLocal)
	start := time.Now()

	go spinWait(fromLock, waitTimeLocal)
	go spinWait(toLock, waitTimeLocal)
	go spinWait(globalBandwidthLock, waitTimeGlobal)

	wg.Wait()

	end := time.Now()

	bandwidthLoggingLock.Lock()

	event, err := json.Marshal(NetworkEvent{
		From:            from,
		To:              to,
		Object:          object.name(),
		Size:            object.size(),
		Start:           start.Format(time.RFC3339Nano),
		End:             end.Format(time.RFC3339Nano),
		LocalBandwidth:  sysParams.BandwidthLocal,
		GlobalBandwidth: sysParams.BandwidthGlobal,
		ID:              networkEventID,
	})
	if err != nil {
		panic(err)
	}
	log.Printf("%s,\n", string(event))

	logger.Debugf("%s sent %d bytes of %s to %s\n", from, object.size(), object.name(), to)

	networkEventID++

	bandwidthLoggingLock.Unlock()
}

// NetworkEvent ...
type NetworkEvent struct {
	From            string
	To              string
	Object          string
	Size            int
	Start           string
	End             string
	GlobalBandwidth int
	LocalBandwidth  int
	ID              uint64
}

/// BlindedDigest

// BlindedDigest ...
type BlindedDigest struct {
	value *big.Int
}

func (digest BlindedDigest) size() int {
	return len(digest.value.Bytes())
}

func (digest BlindedDigest) name() string {
	return "blinded-digest"
}

/// BankSignature

// BankSignature ...
type BankSignature struct {
	value *big.Int
}

func (signature BankSignature) size() int {
	return len(signature.value.Bytes())
}

func (signature BankSignature) name() string {
	return "signature"
}

/// TokenTransfer

// TokenTransfer ...
type TokenTransfer struct {
	token *ecash.Token
}

func (transfer TokenTransfer) size() int {
	return len(transfer.token.Canonical()) + len(transfer.token.Signature().Bytes())
}

func (transfer TokenTransfer) name() string {
	return "token"
}

/// DepositTransfer

// DepositTransfer ...
type DepositTransfer struct {
	record *ecash.DepositRecord
}

func (transfer DepositTransfer) size() int {
	// message covers id, merchant, side and shares
	return len(transfer.record.Message()) + len(transfer.record.Signature.ToBytes())
}

func (transfer DepositTransfer) name() string {
	return "deposit-record"
}

/// OutcomeTransfer

// OutcomeTransfer ...
type OutcomeTransfer struct {
	outcome *ecash.Outcome
}

func (transfer OutcomeTransfer) size() int {
	return 1 + len(transfer.outcome.Identity)
}

func (transfer OutcomeTransfer) name() string {
	return "arbitration-outcome"
}

/// Receipt

// Receipt ...
type Receipt struct{}

func (receipt Receipt) size() int {
	return 1
}

func (receipt Receipt) name() string {
	return "receipt"
}
