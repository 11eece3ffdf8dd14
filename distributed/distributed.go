// Package distributed runs the e-cash protocol over net/rpc: the bank is a
// standalone process serving withdrawals and deposits; spenders and their
// merchants run in a second process and talk to it over the wire.
package distributed

import (
	"fmt"
	"net/rpc"

	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/op/go-logging"
)

var logger *logging.Logger

// SetLogger ...
func SetLogger(l *logging.Logger) {
	logger = l
}

var sysParams helpers.SystemParameters

// Simulate runs one role of the distributed deployment.
func Simulate(role string, bankKey *blindsig.KeyPair, params *helpers.SystemParameters) (e error) {

	sysParams = *params

	switch role {
	case "bank":
		return runBank(bankKey)
	case "spender":
		return runSpenders()
	default:
		return fmt.Errorf("unknown role %q (want bank or spender)", role)
	}
}

type rpcCallClient struct {
	client *rpc.Client
	call   *rpc.Call
}

func makeRPCCall(address, method string, args interface{}, reply interface{}) (callClient rpcCallClient) {

	client, err := rpc.DialHTTP("tcp", address)
	if err != nil {
		logger.Fatal("dialing:", err)
	}

	callClient = rpcCallClient{
		client: client,
		call:   client.Go(method, args, reply, nil),
	}

	return
}

func makeRPCCallSync(address, method string, args interface{}, reply interface{}) interface{} {

	callClient := makeRPCCall(address, method, args, reply)

	<-callClient.call.Done
	if callClient.call.Error != nil {
		logger.Fatal(callClient.call.Error)
	}
	callClient.client.Close()

	return callClient.call.Reply
}
