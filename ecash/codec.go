package ecash

import (
	"fmt"
	"strconv"
	"strings"
)

// BankTag opens every canonical token string; the trailing digit is the
// format version.
const BankTag = "EBANK1"

// IdentTag prefixes the identity string recovered by arbitration.
const IdentTag = "EID"

const fieldDelimiter = "-"
const listDelimiter = ","
const identDelimiter = ":"

// Note is the parsed canonical form of a token: everything the bank sees
// before signing. Hashes are hex strings in share order.
type Note struct {
	Amount    int
	ID        string
	LeftHash  []string
	RightHash []string
}

// Serialize produces the canonical token string
// <BankTag>-<amount>-<id>-<csv(leftHash)>-<csv(rightHash)>.
func (note *Note) Serialize() string {

	return strings.Join(
		[]string{
			BankTag,
			strconv.Itoa(note.Amount),
			note.ID,
			strings.Join(note.LeftHash, listDelimiter),
			strings.Join(note.RightHash, listDelimiter),
		},
		fieldDelimiter,
	)
}

// ParseNote parses a canonical token string, expecting exactly shares
// commitment hashes per side. Round-trips Serialize byte-identically.
func ParseNote(s string, shares int) (note *Note, e error) {

	fields := strings.Split(s, fieldDelimiter)
	if len(fields) != 5 {
		return nil, &FormatError{Reason: fmt.Sprintf("expected 5 fields, got %d", len(fields))}
	}

	if fields[0] != BankTag {
		return nil, &FormatError{Reason: fmt.Sprintf("bank tag %q is not %q", fields[0], BankTag)}
	}

	amount, err := strconv.Atoi(fields[1])
	if err != nil || amount < 0 {
		return nil, &FormatError{Reason: fmt.Sprintf("amount %q is not a non-negative integer", fields[1])}
	}

	leftHash := strings.Split(fields[3], listDelimiter)
	rightHash := strings.Split(fields[4], listDelimiter)

	if len(leftHash) != len(rightHash) {
		return nil, &FormatError{Reason: fmt.Sprintf("%d left hashes against %d right hashes", len(leftHash), len(rightHash))}
	}
	if len(leftHash) != shares {
		return nil, &FormatError{Reason: fmt.Sprintf("expected %d hashes per side, got %d", shares, len(leftHash))}
	}

	note = &Note{
		Amount:    amount,
		ID:        fields[2],
		LeftHash:  leftHash,
		RightHash: rightHash,
	}

	return
}
