package simulator

import (
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/dbogatov/ecash-simulator/blindsig"
	"github.com/dbogatov/ecash-simulator/ecash"
	"github.com/dbogatov/ecash-simulator/helpers"
)

var sysParams helpers.SystemParameters
var execParams ExecutionParameters = ExecutionParameters{
	cryptoEvents: make(map[CryptoEvent]int, 0),
	spendTimings: make([]SpendTimingInfo, 0),
}

// Simulate runs the in-process e-cash network: every spender withdraws a
// token and spends it at sysParams.Spends merchants; every deposit flows
// through the bank's ledger; the audit pass checks arbitration against
// ground truth.
func Simulate(bankKey *blindsig.KeyPair, params *helpers.SystemParameters) (e error) {

	sysParams = *params

	start := time.Now()

	execParams.network = MakeNetwork(bankKey)

	var wgSpender sync.WaitGroup
	wgSpender.Add(sysParams.Spenders)

	for spender := 0; spender < sysParams.Spenders; spender++ {

		go func(spender int) {
			defer wgSpender.Done()

			// first sleep uniform
			if sysParams.Frequency > 0 {
				time.Sleep(time.Duration(rand.Intn(sysParams.Frequency*1000)) * time.Millisecond)
			}

			execParams.network.spenders[spender].run()

		}(spender)
	}

	wgSpender.Wait()

	// a merchant only takes the exit signal once its in-flight deposits
	// have settled, so the ledger is complete when stop returns
	execParams.network.stop()

	if sysParams.Audit {
		audit()
	}

	logger.Noticef("Simulation completed in %d seconds", int(math.Round(time.Since(start).Seconds())))

	if len(execParams.spendTimings) > 0 {
		printStats()
	}

	return
}

// audit replays the ledger against ground truth. Every double-spent token
// must have produced one arbitration outcome per extra deposit, and every
// identification must name the true owner. An identical-side pair is
// indistinguishable from a replayed deposit by design, so MerchantDuplicate
// is legitimate there; Inconclusive is not.
func audit() {

	logger.Noticef("Audit started over %d tokens", len(execParams.network.tokens))

	identified := 0
	duplicates := 0

	for tokenID, tokenAudit := range execParams.network.tokens {

		if len(tokenAudit.outcomes) != tokenAudit.spends-1 {
			panic("audit failed: outcome count does not match extra deposits")
		}

		for _, outcome := range tokenAudit.outcomes {
			switch outcome.Verdict {
			case ecash.SpenderIdentified:
				if outcome.Identity != tokenAudit.identity {
					panic("audit failed: wrong spender identified")
				}
				identified++
			case ecash.MerchantDuplicate:
				duplicates++
			default:
				logger.Fatalf("audit failed: token %s arbitration inconclusive", tokenID)
			}
		}
	}

	logger.Noticef("Audit completed: %d spenders identified, %d same-side collisions", identified, duplicates)
}

func printStats() {

	// crypto events
	logger.Critical("Crypto events:")
	for event, times := range execParams.cryptoEvents {
		logger.Criticalf("\t%-20s : %3d : (%4.1f per token)\n", event, times, float64(times)/float64(len(execParams.network.tokens)))
	}

	// spend timings
	logger.Criticalf("For %d tokens", len(execParams.spendTimings))
	printTimingBasics := func(
		start func(SpendTimingInfo) time.Time,
		end func(SpendTimingInfo) time.Time,
		description string,
	) {
		var min, max, total, avg time.Duration
		var totals = make([]time.Duration, 0, len(execParams.spendTimings))
		min = time.Duration(3600000 * time.Second)
		total = 0
		max = 0

		for _, info := range execParams.spendTimings {
			elapsed := end(info).Sub(start(info))
			if elapsed < min {
				min = elapsed
			}
			if elapsed > max {
				max = elapsed
			}
			total += elapsed
			totals = append(totals, elapsed)
		}
		avg = time.Duration(total.Nanoseconds() / int64(len(execParams.spendTimings)))

		sort.Slice(totals, func(i, j int) bool {
			return totals[i] < totals[j]
		})

		logger.Criticalf("%15s : min %4d ms, max %4d ms, avg %4d ms, median: %d ms\n", description, min.Milliseconds(), max.Milliseconds(), avg.Milliseconds(), totals[len(totals)/2].Milliseconds())
	}

	printTimingBasics(
		func(info SpendTimingInfo) time.Time { return info.start },
		func(info SpendTimingInfo) time.Time { return info.end },
		"total",
	)
	printTimingBasics(
		func(info SpendTimingInfo) time.Time { return info.withdrawalStart },
		func(info SpendTimingInfo) time.Time { return info.withdrawalEnd },
		"withdrawals",
	)
	printTimingBasics(
		func(info SpendTimingInfo) time.Time { return info.spendsStart },
		func(info SpendTimingInfo) time.Time { return info.spendsEnd },
		"spends",
	)
}

// ExecutionParameters ...
type ExecutionParameters struct {
	network      *Network
	cryptoEvents map[CryptoEvent]int
	spendTimings []SpendTimingInfo
}
