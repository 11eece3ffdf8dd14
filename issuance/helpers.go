package issuance

import (
	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/dbogatov/fabric-amcl/amcl"
	"github.com/op/go-logging"
)

var logger *logging.Logger

// SetLogger ...
func SetLogger(l *logging.Logger) {
	logger = l
}

// prgReader adapts the AMCL PRG to io.Reader so key generation can be
// made deterministic.
type prgReader struct {
	prg *amcl.RAND
}

func (reader prgReader) Read(p []byte) (n int, e error) {

	for i := range p {
		p[i] = reader.prg.GetByte()
	}

	return len(p), nil
}

// generateSigner derives the benchmark signing key from a fixed seed so
// that the server and all clients agree on the public key without any
// exchange.
func generateSigner(keyBits int) (key *blindsig.KeyPair) {

	key, e := blindsig.Generate(prgReader{helpers.NewRandSeed([]byte{0x13})}, keyBits)
	if e != nil {
		logger.Fatal("blindsig.Generate():", e)
	}

	return
}
