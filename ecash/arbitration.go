package ecash

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dbogatov/ecash-simulator/helpers"
)

// Verdict classifies a pair of deposit records for one token.
type Verdict int

// Verdicts ...
const (
	// SpenderIdentified: the token owner spent twice; their identity was
	// recovered from the shares.
	SpenderIdentified Verdict = iota
	// MerchantDuplicate: the same deposit was submitted twice; the spender
	// is innocent.
	MerchantDuplicate
	// Inconclusive: the records fit neither pattern (corrupted shares or a
	// malformed acceptance). Must reach an operator, never auto-resolved.
	Inconclusive
)

func (verdict Verdict) String() string {
	switch verdict {
	case SpenderIdentified:
		return "spender-identified"
	case MerchantDuplicate:
		return "merchant-duplicate"
	default:
		return "inconclusive"
	}
}

// Outcome ...
type Outcome struct {
	Verdict  Verdict
	Identity string // set only for SpenderIdentified
}

// Arbitrate decides, from two deposit records for the same token, whether
// the spender double-spent or a merchant replayed a deposit. It is a pure
// function of its arguments; any "seen before" bookkeeping belongs to the
// deposit ledger.
//
// The shares are scanned in order and the first pair whose XOR decodes to
// the identity tag wins. Records drawn from opposite sides of a genuine
// token decode at every index, so index 0 normally decides; the remaining
// k-1 pairs are redundancy against corrupted shares.
func Arbitrate(tokenID string, a, b *DepositRecord) (outcome Outcome, e error) {

	if a.TokenID != tokenID || b.TokenID != tokenID {
		return Outcome{}, fmt.Errorf("deposit records are not both for token %s", tokenID)
	}
	if len(a.Shares) == 0 || len(a.Shares) != len(b.Shares) {
		return Outcome{}, fmt.Errorf("token %s: records carry %d and %d shares", tokenID, len(a.Shares), len(b.Shares))
	}

	prefix := IdentTag + identDelimiter

	for i := range a.Shares {
		decoded := helpers.Xor(a.Shares[i], b.Shares[i])
		if decoded == nil {
			continue
		}
		if text := string(decoded); strings.HasPrefix(text, prefix) {
			identity := strings.TrimPrefix(text, prefix)
			if identity != "" && !strings.Contains(identity, identDelimiter) {
				return Outcome{Verdict: SpenderIdentified, Identity: identity}, nil
			}
		}
	}

	// No index decoded. A merchant duplicate means literally the same
	// deposit: same side, identical shares throughout. Anything short of
	// that is not evidence of merchant fraud.
	if a.Side == b.Side {
		identical := true
		for i := range a.Shares {
			if !bytes.Equal(a.Shares[i], b.Shares[i]) {
				identical = false
				break
			}
		}
		if identical {
			return Outcome{Verdict: MerchantDuplicate}, nil
		}
	}

	return Outcome{Verdict: Inconclusive}, nil
}
