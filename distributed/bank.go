package distributed

import (
	"fmt"
	"math/big"
	"net"
	"net/http"
	"net/rpc"

	"github.com/dbogatov/dac-lib/dac"
	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/ecash"
)

// RPCBank ...
type RPCBank struct {
	bank *ecash.Bank
}

// MakeRPCBank ...
func MakeRPCBank(key *blindsig.KeyPair) (rpcBank *RPCBank) {

	rpcBank = &RPCBank{
		bank: ecash.MakeBank(key, sysParams.Shares),
	}

	return
}

func runBank(bankKey *blindsig.KeyPair) (e error) {

	rpcBank := MakeRPCBank(bankKey)

	if e = rpc.Register(rpcBank); e != nil {
		return
	}
	rpc.HandleHTTP()

	listener, e := net.Listen("tcp", fmt.Sprintf(":%d", sysParams.RPCPort))
	if e != nil {
		return
	}

	logger.Noticef("Bank listening on :%d", sysParams.RPCPort)

	return http.Serve(listener, nil)
}

// GetPK ...
func (rpcBank *RPCBank) GetPK(args *int, reply *PublicKeyWire) (e error) {

	pk := rpcBank.bank.PK()
	reply.N = pk.N.Bytes()
	reply.E = pk.E.Bytes()

	logger.Debug("PK requested")

	return
}

// RegisterMerchant ...
func (rpcBank *RPCBank) RegisterMerchant(args *MerchantRegistration, reply *bool) (e error) {

	pk, e := dac.PointFromBytes(args.PK)
	if e != nil {
		return
	}

	rpcBank.bank.RegisterMerchant(args.ID, pk)
	*reply = true

	logger.Debugf("Merchant %d registered", args.ID)

	return
}

// Sign signs a blinded digest. The bank cannot tell what token it is
// signing; it only ever learns the commitments, never the shares.
func (rpcBank *RPCBank) Sign(args *SignRequest, reply *SignReply) (e error) {

	signature, e := rpcBank.bank.Sign(new(big.Int).SetBytes(args.Blinded))
	if e != nil {
		return
	}

	reply.Signature = signature.Bytes()

	logger.Debug("Blinded digest signed")

	return
}

// Deposit ...
func (rpcBank *RPCBank) Deposit(args *DepositWire, reply *OutcomeWire) (e error) {

	record := &ecash.DepositRecord{
		TokenID:    args.TokenID,
		MerchantID: args.MerchantID,
		Side:       ecash.Side(args.Side),
		Shares:     args.Shares,
		Signature:  *dac.SchnorrSignatureFromBytes(args.Signature),
	}

	outcome, e := rpcBank.bank.Deposit(record)
	if e != nil {
		return
	}

	if outcome == nil {
		reply.Arbitrated = false
		logger.Debugf("First deposit for token %s", args.TokenID)
		return
	}

	reply.Arbitrated = true
	reply.Verdict = int(outcome.Verdict)
	reply.Identity = outcome.Identity

	logger.Noticef("Token %s arbitrated: %s", args.TokenID, outcome.Verdict)

	return
}
