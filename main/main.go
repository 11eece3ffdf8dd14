package main

import (
	"log"
	"os"
	"time"

	"github.com/dbogatov/ecash-simulator/distributed"
	"github.com/dbogatov/ecash-simulator/helpers"
	"github.com/dbogatov/ecash-simulator/issuance"
	"github.com/dbogatov/ecash-simulator/simulator"
	"github.com/op/go-logging"
	"github.com/urfave/cli/v2"
)

var logger = logging.MustGetLogger("main")

func main() {

	protocolFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "spenders",
			Value: 3,
			Usage: "number of spenders, one withdrawn token each",
		},
		&cli.IntFlag{
			Name:  "merchants",
			Value: 2,
			Usage: "number of merchants",
		},
		&cli.IntFlag{
			Name:  "spends",
			Value: 2,
			Usage: "acceptances per token (2 and up is a double-spend)",
		},
		&cli.IntFlag{
			Name:  "shares",
			Value: 3,
			Usage: "identity share pairs per token (redundancy parameter)",
		},
		&cli.IntFlag{
			Name:  "key-bits",
			Value: 2048,
			Usage: "bank RSA key length",
		},
		&cli.IntFlag{
			Name:  "amount",
			Value: 20,
			Usage: "face value of every token",
		},
		&cli.IntFlag{
			Name:  "frequency",
			Value: 0,
			Usage: "spends per hour per spender (0 for no delays)",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Value: false,
			Usage: "verbose output",
		},
	}

	app := &cli.App{
		Name:     "ecash-simulator",
		Usage:    "runs offline anonymous e-cash simulation",
		Version:  "v0.0.1",
		Compiled: time.Now(),
		Authors: []*cli.Author{
			&cli.Author{
				Name:  "Dmytro Bogatov",
				Email: "dmytro@dbogatov.org",
			},
		},
		Copyright: "(c) 2020 Dmytro Bogatov",

		Commands: []*cli.Command{
			{
				Name:  "simulate",
				Usage: "in-process simulation: spenders double-spend, the bank arbitrates",
				Flags: append(protocolFlags,
					&cli.IntFlag{
						Name:  "conc-deposits",
						Value: 10,
						Usage: "number of concurrent deposits the bank can process",
					},
					&cli.IntFlag{
						Name:  "conc-signings",
						Value: 3,
						Usage: "number of concurrent withdrawals the bank can sign",
					},
					&cli.IntFlag{
						Name:  "bandwidth",
						Value: 1024 * 1024, // 1 MB/s
						Usage: "bandwidth in bytes per second",
					},
					&cli.BoolFlag{
						Name:  "audit",
						Value: true,
						Usage: "whether to check all arbitration outcomes against ground truth at the end",
					},
				),
				Action: func(c *cli.Context) error {
					configureLogging(c.Bool("verbose"))

					os.Remove("network-log.log")
					f, err := os.OpenFile("network-log.log", os.O_WRONLY|os.O_CREATE, 0666)
					if err != nil {
						logger.Fatalf("error opening file: %v", err)
					}
					defer f.Close()

					log.SetOutput(f)

					sys, bankKey, err := helpers.MakeSystemParameters(
						logger,
						c.Int("spenders"),
						c.Int("merchants"),
						c.Int("spends"),
						c.Int("shares"),
						c.Int("key-bits"),
						c.Int("amount"),
						c.Int("frequency"),
						c.Int("conc-deposits"),
						c.Int("conc-signings"),
						c.Int("bandwidth"),
						c.Int("bandwidth"),
						c.Bool("audit"),
						0,
						"",
					)
					if err != nil {
						return err
					}

					return simulator.Simulate(bankKey, sys)
				},
			},
			{
				Name:  "distributed",
				Usage: "runs one role of the net/rpc deployment",
				Flags: append(protocolFlags,
					&cli.StringFlag{
						Name:  "role",
						Value: "bank",
						Usage: "bank or spender",
					},
					&cli.IntFlag{
						Name:  "rpc-port",
						Value: 8008,
						Usage: "port the bank listens on",
					},
					&cli.StringFlag{
						Name:  "bank-address",
						Value: "localhost:8008",
						Usage: "bank RPC address for the spender role",
					},
				),
				Action: func(c *cli.Context) error {
					configureLogging(c.Bool("verbose"))

					sys, bankKey, err := helpers.MakeSystemParameters(
						logger,
						c.Int("spenders"),
						c.Int("merchants"),
						c.Int("spends"),
						c.Int("shares"),
						c.Int("key-bits"),
						c.Int("amount"),
						c.Int("frequency"),
						1,
						1,
						0,
						0,
						false,
						c.Int("rpc-port"),
						c.String("bank-address"),
					)
					if err != nil {
						return err
					}

					return distributed.Simulate(c.String("role"), bankKey, sys)
				},
			},
			{
				Name:  "issuance-bench",
				Usage: "benchmarks the bank's blind-signing endpoint over HTTP",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "server",
						Value: false,
						Usage: "run the signing server instead of the client",
					},
					&cli.IntFlag{
						Name:  "runs",
						Value: 100,
						Usage: "total number of signing requests",
					},
					&cli.IntFlag{
						Name:  "concurrent",
						Value: 10,
						Usage: "number of in-flight requests",
					},
					&cli.IntFlag{
						Name:  "key-bits",
						Value: 2048,
						Usage: "bank RSA key length",
					},
					&cli.BoolFlag{
						Name:  "trust",
						Value: false,
						Usage: "skip client-side verification of received signatures",
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Value: false,
						Usage: "verbose output",
					},
				},
				Action: func(c *cli.Context) error {
					configureLogging(c.Bool("verbose"))

					if c.Bool("server") {
						issuance.RunServer(c.Int("key-bits"))
					} else {
						issuance.StartRequests(c.Int("runs"), c.Int("concurrent"), c.Int("key-bits"), c.Bool("trust"))
					}

					return nil
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		logger.Fatal(err)
	}
}

func configureLogging(verbose bool) {
	logging.SetFormatter(
		logging.MustStringFormatter(`%{color}%{time:15:04:05.000} %{shortfunc:22s} ▶ %{level:6s} %{id:03x}%{color:reset} |	 %{message}`),
	)
	levelBackend := logging.AddModuleLevel(logging.NewLogBackend(os.Stdout, "", 0))
	if verbose {
		levelBackend.SetLevel(logging.DEBUG, "")
	} else {
		levelBackend.SetLevel(logging.INFO, "")
	}
	logging.SetBackend(levelBackend)

	simulator.SetLogger(logger)
	distributed.SetLogger(logger)
	issuance.SetLogger(logger)
}
