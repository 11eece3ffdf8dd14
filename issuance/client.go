package issuance

import (
	"bytes"
	"context"
	"crypto/rand"
	"io/ioutil"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/dbogatov/ecash-simulator/helpers"
	"golang.org/x/sync/semaphore"
)

type signatureIndex struct {
	signatureBytes []byte
	index          int
}

// StartRequests fires runs blind-signing requests with at most concurrent
// in flight. Unless trust is set, every signature is unblinded and
// verified afterwards.
func StartRequests(runs, concurrent, keyBits int, trust bool) {

	// a hack to get the signing PK for all clients
	pk := &generateSigner(keyBits).PublicKey

	prg := helpers.NewRandSeed([]byte{0x14})

	messages := make([][]byte, runs)
	blinded := make([]*big.Int, runs)
	factors := make([]*big.Int, runs)
	for i := 0; i < runs; i++ {
		messages[i] = helpers.RandomBytes(prg, 32)

		var e error
		blinded[i], factors[i], e = pk.Blind(rand.Reader, messages[i])
		if e != nil {
			panic(e)
		}
	}

	var wgRequest sync.WaitGroup
	wgRequest.Add(runs)
	signatures := make(chan signatureIndex, runs)
	ctx := context.TODO()
	sem := semaphore.NewWeighted(int64(concurrent))

	logger.Noticef("Starting... (%d runs, %d concurrent)", runs, concurrent)
	start := time.Now()

	for i := 0; i < runs; i++ {
		if e := sem.Acquire(ctx, 1); e != nil {
			panic(e)
		}

		go func(i int, sem *semaphore.Weighted) {
			defer wgRequest.Done()
			defer sem.Release(1)

			response, err := http.Post("http://localhost:8765", "application/octet-stream", bytes.NewBuffer(blinded[i].Bytes()))
			if err != nil {
				panic(err)
			}
			defer response.Body.Close()

			if !trust {
				body, _ := ioutil.ReadAll(response.Body)

				signatures <- signatureIndex{
					signatureBytes: body,
					index:          i,
				}
			}
			logger.Debugf("Signature %d received", i)
		}(i, sem)
	}

	wgRequest.Wait()

	elapsed := time.Now().Sub(start)
	logger.Noticef("Requests completed in %d ms (%.1f requests per second).", elapsed.Milliseconds(), float64(runs)/float64(elapsed.Seconds()))

	close(signatures)

	if !trust {
		logger.Notice("Verifying all signatures... (can take up quite some time)")

		var wgVerify sync.WaitGroup

		for signature := range signatures {
			wgVerify.Add(1)

			go func(signature signatureIndex) {
				defer wgVerify.Done()

				plain := pk.Unblind(new(big.Int).SetBytes(signature.signatureBytes), factors[signature.index])
				if e := pk.Verify(plain, messages[signature.index]); e != nil {
					panic(e)
				}
			}(signature)
		}

		wgVerify.Wait()
	}

	logger.Notice("Done.")
}
