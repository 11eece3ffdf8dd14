package helpers

import (
	"crypto/rand"

	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/op/go-logging"
)

// TokenIDSize ...
const TokenIDSize = 16

// SystemParameters ...
type SystemParameters struct {
	BankPK             *blindsig.PublicKey
	Spenders           int
	Merchants          int
	Spends             int // acceptances per token; 2+ is a double-spend
	Shares             int // identity shares per side (k)
	KeyBits            int
	Amount             int
	Frequency          int // spends per hour per spender, 0 means no delay
	ConcurrentDeposits int
	ConcurrentSignings int
	BandwidthGlobal    int // B/s
	BandwidthLocal     int // B/s
	Audit              bool
	RPCPort            int
	BankRPCAddress     string
}

// MakeSystemParameters ...
func MakeSystemParameters(logger *logging.Logger, spenders, merchants, spends, shares, keyBits, amount, frequency, concurrentDeposits, concurrentSignings, bandwidthGlobal, bandwidthLocal int, audit bool, rpcPort int, bankRPCAddress string) (sysParams *SystemParameters, bankKey *blindsig.KeyPair, e error) {

	sysParams = &SystemParameters{
		Spenders:           spenders,
		Merchants:          merchants,
		Spends:             spends,
		Shares:             shares,
		KeyBits:            keyBits,
		Amount:             amount,
		Frequency:          frequency,
		ConcurrentDeposits: concurrentDeposits,
		ConcurrentSignings: concurrentSignings,
		BandwidthGlobal:    bandwidthGlobal,
		BandwidthLocal:     bandwidthLocal,
		Audit:              audit,
		RPCPort:            rpcPort,
		BankRPCAddress:     bankRPCAddress,
	}

	logger.Noticef("%+v\n", sysParams)

	bankKey, e = blindsig.Generate(rand.Reader, keyBits)
	if e != nil {
		return nil, nil, e
	}
	sysParams.BankPK = &bankKey.PublicKey

	return
}
