package ecash

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/dbogatov/dac-lib/dac"
	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/dbogatov/fabric-amcl/amcl"
)

// KeysHolder ...
type KeysHolder struct {
	pk dac.PK
	sk dac.SK
}

// DepositRecord is what a merchant sends to the bank after accepting a
// token: the chosen side and all k shares of that side, Schnorr-signed by
// the merchant so the bank knows who claims the deposit.
type DepositRecord struct {
	TokenID    string
	MerchantID int
	Side       Side
	Shares     [][]byte
	Signature  dac.SchnorrSignature
}

// Message returns the bytes the merchant's deposit signature covers.
func (record *DepositRecord) Message() (message []byte) {

	message = make([]byte, 0)

	message = append(message, []byte(record.TokenID)...)

	var id [4]byte
	binary.BigEndian.PutUint32(id[:], uint32(record.MerchantID))
	message = append(message, id[:]...)

	message = append(message, byte(record.Side))
	for _, share := range record.Shares {
		message = append(message, share...)
	}

	return
}

// Merchant accepts tokens on behalf of the bank. The PRG is injected so
// the side selection can be made deterministic.
type Merchant struct {
	KeysHolder

	id     int
	shares int
	bankPK *blindsig.PublicKey
	prg    *amcl.RAND
}

// MakeMerchant ...
func MakeMerchant(prg *amcl.RAND, id, shares int, bankPK *blindsig.PublicKey) (merchant *Merchant) {

	sk, pk := dac.GenerateKeys(prg, 0)

	merchant = &Merchant{
		KeysHolder: KeysHolder{
			pk: pk,
			sk: sk,
		},
		id:     id,
		shares: shares,
		bankPK: bankPK,
		prg:    prg,
	}

	return
}

// ID ...
func (merchant *Merchant) ID() int {
	return merchant.id
}

// PK is the merchant's deposit-signing key, registered with the bank.
func (merchant *Merchant) PK() dac.PK {
	return merchant.pk
}

// Accept verifies a token and produces a signed deposit record.
//
// The signature is checked first: a forged token must be rejected before
// any share is inspected, so a forger learns nothing about which
// commitments would have matched. One fair bit then selects the side for
// all k indices of this acceptance; revealing a consistent half keeps a
// merchant from mixing halves across indices. The first commitment
// mismatch aborts with no record.
func (merchant *Merchant) Accept(token *Token) (record *DepositRecord, e error) {

	if e = merchant.bankPK.Verify(token.Signature(), []byte(token.Canonical())); e != nil {
		return nil, &InvalidSignatureError{TokenID: token.ID()}
	}

	side := Side(merchant.prg.GetByte() & 1)

	note, e := ParseNote(token.Canonical(), merchant.shares)
	if e != nil {
		return nil, e
	}

	commitments := note.LeftHash
	if side == Right {
		commitments = note.RightHash
	}

	shares := make([][]byte, merchant.shares)
	for i := 0; i < merchant.shares; i++ {
		share := token.Share(side, i)
		if hex.EncodeToString(helpers.Sha3(share)) != commitments[i] {
			return nil, &TamperedTokenError{TokenID: token.ID(), Side: side, Index: i}
		}
		shares[i] = share
	}

	if e = token.MarkSpent(); e != nil {
		return nil, e
	}

	record = &DepositRecord{
		TokenID:    token.ID(),
		MerchantID: merchant.id,
		Side:       side,
		Shares:     shares,
	}

	schnorr := dac.MakeSchnorr(merchant.prg, false)
	record.Signature = schnorr.Sign(merchant.sk, record.Message())

	return
}
