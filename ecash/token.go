package ecash

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/dbogatov/fabric-amcl/amcl"
)

// Side selects one half of a token's split secret. One side alone reveals
// nothing; XOR-ing opposite sides of the same index reveals the identity tag.
type Side int

// Left / Right ...
const (
	Left Side = iota
	Right
)

func (side Side) String() string {
	if side == Left {
		return "left"
	}
	return "right"
}

// State is a token's lifecycle position. Transitions go strictly forward;
// Spent is re-entered on every acceptance, which is how a double-spend
// happens in the first place.
type State int

// Token lifecycle ...
const (
	Created State = iota
	Blinded
	Signed
	Unblinded
	Spent
)

// Token is one unit of value together with its split-secret identity
// shares and blind-signature lifecycle state. The owner identity never
// appears in the canonical string; it is only recoverable by arbitration.
type Token struct {
	id       string
	amount   int
	identity string

	left  [][]byte
	right [][]byte

	note *Note

	blinded   *big.Int
	factor    *big.Int
	signature *big.Int

	state State
}

// MakeToken creates a fresh token for the given owner identity: shares
// pairs of XOR shares, each pair decoding to "<IdentTag>:<identity>", and
// their commitments. The token starts in the Created state, unsigned.
func MakeToken(prg *amcl.RAND, identity string, amount, shares int) (token *Token, e error) {

	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amount)
	}
	if shares < 1 {
		return nil, fmt.Errorf("need at least one share pair, got %d", shares)
	}
	if identity == "" || strings.Contains(identity, identDelimiter) {
		return nil, fmt.Errorf("identity %q is empty or contains %q", identity, identDelimiter)
	}

	tag := []byte(IdentTag + identDelimiter + identity)

	token = &Token{
		id:       helpers.RandomString(prg, helpers.TokenIDSize),
		amount:   amount,
		identity: identity,
		left:     make([][]byte, shares),
		right:    make([][]byte, shares),
		state:    Created,
	}

	leftHash := make([]string, shares)
	rightHash := make([]string, shares)

	for i := 0; i < shares; i++ {
		token.left[i] = helpers.RandomBytes(prg, len(tag))
		token.right[i] = helpers.Xor(token.left[i], tag)

		leftHash[i] = hex.EncodeToString(helpers.Sha3(token.left[i]))
		rightHash[i] = hex.EncodeToString(helpers.Sha3(token.right[i]))
	}

	token.note = &Note{
		Amount:    amount,
		ID:        token.id,
		LeftHash:  leftHash,
		RightHash: rightHash,
	}

	return
}

// ID ...
func (token *Token) ID() string {
	return token.id
}

// Amount ...
func (token *Token) Amount() int {
	return token.amount
}

// Identity is known to the owner only; it is never transmitted.
func (token *Token) Identity() string {
	return token.identity
}

// State ...
func (token *Token) State() State {
	return token.state
}

// Shares ...
func (token *Token) Shares() int {
	return len(token.left)
}

// Signature ...
func (token *Token) Signature() *big.Int {
	return token.signature
}

// Canonical returns the canonical token string the bank's signature
// covers.
func (token *Token) Canonical() string {
	return token.note.Serialize()
}

// Share returns one revealed identity share.
func (token *Token) Share(side Side, i int) []byte {
	if side == Left {
		return token.left[i]
	}
	return token.right[i]
}

// BlindDigest computes the blinded digest of the canonical string,
// moving the token from Created to Blinded.
func (token *Token) BlindDigest(pk *blindsig.PublicKey) (blinded *big.Int, e error) {

	if token.state != Created {
		return nil, fmt.Errorf("token %s: cannot blind in state %d", token.id, token.state)
	}

	blinded, factor, e := pk.Blind(rand.Reader, []byte(token.Canonical()))
	if e != nil {
		return nil, e
	}

	token.blinded = blinded
	token.factor = factor
	token.state = Blinded

	return
}

// AttachSignature records the bank's signature over the blinded digest,
// moving the token from Blinded to Signed.
func (token *Token) AttachSignature(signature *big.Int) (e error) {

	if token.state != Blinded {
		return fmt.Errorf("token %s: cannot attach signature in state %d", token.id, token.state)
	}

	token.signature = signature
	token.state = Signed

	return
}

// Unblind strips the blinding factor, leaving a signature valid over the
// plain canonical string, and verifies it before moving to Unblinded.
func (token *Token) Unblind(pk *blindsig.PublicKey) (e error) {

	if token.state != Signed {
		return fmt.Errorf("token %s: cannot unblind in state %d", token.id, token.state)
	}

	plain := pk.Unblind(token.signature, token.factor)
	if e = pk.Verify(plain, []byte(token.Canonical())); e != nil {
		return
	}

	token.signature = plain
	token.state = Unblinded

	return
}

// MarkSpent records an acceptance. Valid from Unblinded and from Spent:
// nothing stops the owner from offering the token again, detection is the
// arbitration engine's job.
func (token *Token) MarkSpent() (e error) {

	if token.state != Unblinded && token.state != Spent {
		return fmt.Errorf("token %s: cannot spend in state %d", token.id, token.state)
	}

	token.state = Spent

	return
}
