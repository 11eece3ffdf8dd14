// Package blindsig implements Chaum RSA blind signatures: the bank signs a
// blinded digest without ever seeing the message, and the resulting
// signature verifies against the plain message once unblinded.
package blindsig

import (
	"crypto/rsa"
	"errors"
	"io"
	"math/big"

	"github.com/dbogatov/fabric-amcl/amcl"
)

var one = big.NewInt(1)

// PublicKey ...
type PublicKey struct {
	N *big.Int
	E *big.Int
}

// KeyPair ...
type KeyPair struct {
	PublicKey
	D *big.Int
}

// Generate creates a fresh RSA key pair for blind signing.
func Generate(random io.Reader, bits int) (key *KeyPair, e error) {

	rsaKey, e := rsa.GenerateKey(random, bits)
	if e != nil {
		return
	}

	key = &KeyPair{
		PublicKey: PublicKey{
			N: rsaKey.N,
			E: big.NewInt(int64(rsaKey.E)),
		},
		D: rsaKey.D,
	}

	return
}

// Blind hides the digest of a message under a fresh blinding factor.
// The factor must be kept by the requester for Unblind.
func (pk *PublicKey) Blind(random io.Reader, message []byte) (blinded, factor *big.Int, e error) {

	m := digest(message, pk.N)

	// factor must be invertible mod N
	for {
		factor, e = randomNumber(random, pk.N)
		if e != nil {
			return nil, nil, e
		}
		if new(big.Int).GCD(nil, nil, factor, pk.N).Cmp(one) == 0 {
			break
		}
	}

	blinded = new(big.Int).Exp(factor, pk.E, pk.N)
	blinded.Mul(blinded, m)
	blinded.Mod(blinded, pk.N)

	return
}

// Sign produces a signature over a blinded digest.
func (key *KeyPair) Sign(blinded *big.Int) (signature *big.Int, e error) {

	if blinded == nil {
		return nil, errors.New("blinded digest is nil")
	}
	if blinded.Sign() <= 0 || blinded.Cmp(key.N) >= 0 {
		return nil, errors.New("blinded digest out of range")
	}

	signature = new(big.Int).Exp(blinded, key.D, key.N)

	return
}

// Unblind removes the blinding factor from a signature over a blinded
// digest, yielding a signature valid over the plain message.
func (pk *PublicKey) Unblind(signature, factor *big.Int) (plain *big.Int) {

	plain = new(big.Int).ModInverse(factor, pk.N)
	plain.Mul(plain, signature)
	plain.Mod(plain, pk.N)

	return
}

// Verify checks a (plain) signature against a message.
func (pk *PublicKey) Verify(signature *big.Int, message []byte) (e error) {

	if signature == nil || signature.Sign() <= 0 || signature.Cmp(pk.N) >= 0 {
		return errors.New("signature out of range")
	}

	recovered := new(big.Int).Exp(signature, pk.E, pk.N)
	if recovered.Cmp(digest(message, pk.N)) != 0 {
		return errors.New("signature does not match message")
	}

	return nil
}

func digest(message []byte, n *big.Int) (m *big.Int) {

	hash := make([]byte, 32)
	sha3 := amcl.NewSHA3(amcl.SHA3_HASH256)
	for i := 0; i < len(message); i++ {
		sha3.Process(message[i])
	}
	sha3.Hash(hash[:])

	m = new(big.Int).SetBytes(hash)
	m.Mod(m, n)

	return
}

// randomNumber draws a uniform number in [1, max).
func randomNumber(random io.Reader, max *big.Int) (n *big.Int, e error) {

	bytes := make([]byte, (max.BitLen()+7)/8)
	for {
		if _, e = io.ReadFull(random, bytes); e != nil {
			return nil, e
		}
		n = new(big.Int).SetBytes(bytes)
		n.Mod(n, max)
		if n.Sign() > 0 {
			return
		}
	}
}
