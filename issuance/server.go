package issuance

import (
	"io/ioutil"
	"math/big"
	"net/http"

	"github.com/dbogatov/ecash-simulator/blindsig"
)

var signer *blindsig.KeyPair

// RunServer serves the bank's blind-signing endpoint for the benchmark.
func RunServer(keyBits int) {

	signer = generateSigner(keyBits)

	logger.Notice("Server starting. Ctl+C to stop")

	http.HandleFunc("/", handleSignRequest)
	if e := http.ListenAndServe(":8765", nil); e != nil {
		logger.Fatal(e)
	}
}

func handleSignRequest(w http.ResponseWriter, r *http.Request) {

	body, e := ioutil.ReadAll(r.Body)
	if e != nil {
		http.Error(w, e.Error(), http.StatusBadRequest)
		return
	}

	signature, e := signer.Sign(new(big.Int).SetBytes(body))
	if e != nil {
		http.Error(w, e.Error(), http.StatusBadRequest)
		return
	}

	w.Write(signature.Bytes())
}
