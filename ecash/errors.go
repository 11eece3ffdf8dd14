package ecash

import "fmt"

// FormatError signals a malformed canonical token string.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed token string: %s", e.Reason)
}

// InvalidSignatureError signals a token whose signature does not verify
// under the bank's public key. Acceptance aborts before any share is read.
type InvalidSignatureError struct {
	TokenID string
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("token %s: signature verification failed", e.TokenID)
}

// TamperedTokenError signals the first commitment mismatch found during
// acceptance. Remaining indices are not inspected.
type TamperedTokenError struct {
	TokenID string
	Side    Side
	Index   int
}

func (e *TamperedTokenError) Error() string {
	return fmt.Sprintf("token %s: share %s/%d does not match its commitment", e.TokenID, e.Side, e.Index)
}

// SigningError surfaces a failure of the signing primitive unchanged.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing failed: %v", e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}
