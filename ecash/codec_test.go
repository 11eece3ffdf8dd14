package ecash

import (
	"fmt"
	"strings"
	"testing"

	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeNote(shares int) *Note {
	leftHash := make([]string, shares)
	rightHash := make([]string, shares)
	for i := 0; i < shares; i++ {
		leftHash[i] = fmt.Sprintf("%02x", 2*i)
		rightHash[i] = fmt.Sprintf("%02x", 2*i+1)
	}
	return &Note{
		Amount:    20,
		ID:        "wDni7cOZRzHSmZFY",
		LeftHash:  leftHash,
		RightHash: rightHash,
	}
}

func TestNoteRoundTrip(t *testing.T) {
	for _, shares := range []int{1, 2, 3, 5, 8} {
		t.Run(fmt.Sprintf("shares-%d", shares), func(t *testing.T) {
			note := makeNote(shares)

			parsed, err := ParseNote(note.Serialize(), shares)
			require.NoError(t, err)

			assert.Equal(t, note, parsed)
			assert.Equal(t, note.Serialize(), parsed.Serialize())
		})
	}
}

func TestTokenCanonicalRoundTrip(t *testing.T) {
	token, err := MakeToken(helpers.NewRandSeed([]byte{0x01}), "alice", 20, 3)
	require.NoError(t, err)

	parsed, err := ParseNote(token.Canonical(), 3)
	require.NoError(t, err)

	assert.Equal(t, token.Canonical(), parsed.Serialize())
	assert.Equal(t, token.ID(), parsed.ID)
	assert.Equal(t, token.Amount(), parsed.Amount)
}

func TestParseRejectsWrongTag(t *testing.T) {
	note := makeNote(2)

	for _, tag := range []string{"EBANK2", "ebank1", "XBANK1", ""} {
		s := tag + strings.TrimPrefix(note.Serialize(), BankTag)

		_, err := ParseNote(s, 2)
		require.Error(t, err)

		var formatErr *FormatError
		assert.True(t, asError(err, &formatErr), "want FormatError for tag %q", tag)
	}
}

func TestParseRejectsWrongFieldCount(t *testing.T) {
	note := makeNote(2)

	for _, s := range []string{
		note.Serialize() + "-extra",
		strings.Join(strings.Split(note.Serialize(), "-")[:4], "-"),
		"EBANK1",
		"",
	} {
		_, err := ParseNote(s, 2)

		var formatErr *FormatError
		assert.True(t, asError(err, &formatErr), "want FormatError for %q", s)
	}
}

func TestParseRejectsBadAmount(t *testing.T) {
	note := makeNote(2)

	for _, amount := range []string{"twenty", "20.5", "2a", ""} {
		fields := strings.Split(note.Serialize(), "-")
		fields[1] = amount

		_, err := ParseNote(strings.Join(fields, "-"), 2)

		var formatErr *FormatError
		assert.True(t, asError(err, &formatErr), "want FormatError for amount %q", amount)
	}

	// a negative amount introduces an extra delimiter, which is itself a
	// field count violation
	fields := strings.Split(note.Serialize(), "-")
	fields[1] = "-20"
	_, err := ParseNote(strings.Join(fields, "-"), 2)

	var formatErr *FormatError
	assert.True(t, asError(err, &formatErr))
}

func TestParseRejectsShareCountMismatch(t *testing.T) {
	note := makeNote(3)

	// left and right lengths differ
	unbalanced := &Note{
		Amount:    note.Amount,
		ID:        note.ID,
		LeftHash:  note.LeftHash[:2],
		RightHash: note.RightHash,
	}
	_, err := ParseNote(unbalanced.Serialize(), 3)
	var formatErr *FormatError
	assert.True(t, asError(err, &formatErr))

	// balanced but not the agreed redundancy parameter
	_, err = ParseNote(note.Serialize(), 2)
	assert.True(t, asError(err, &formatErr))

	_, err = ParseNote(note.Serialize(), 4)
	assert.True(t, asError(err, &formatErr))
}
