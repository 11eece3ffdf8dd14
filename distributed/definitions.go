package distributed

// Wire types for the net/rpc transport. Crypto objects travel as byte
// slices; big integers as big-endian bytes.

// PublicKeyWire ...
type PublicKeyWire struct {
	N []byte
	E []byte
}

// SignRequest ...
type SignRequest struct {
	Blinded []byte
}

// SignReply ...
type SignReply struct {
	Signature []byte
}

// MerchantRegistration ...
type MerchantRegistration struct {
	ID int
	PK []byte
}

// DepositWire ...
type DepositWire struct {
	TokenID    string
	MerchantID int
	Side       int
	Shares     [][]byte
	Signature  []byte
}

// OutcomeWire ...
type OutcomeWire struct {
	Arbitrated bool // false means first deposit, no outcome yet
	Verdict    int
	Identity   string
}
