// Command dia-avp-sweep appends one undocumented (proprietary) AVP
// code at a time to the anchored outgoing message of a baseline
// scenario and replays it, to see whether the peer accepts, ignores,
// or rejects it. It is the Go analogue of the original diafuzzer
// tool's fuzz-proprietary-avps.py.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/blorticus-go/diafuzzer/config"
	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/dictionary"
	"github.com/blorticus-go/diafuzzer/mutator"
	"github.com/blorticus-go/diafuzzer/replay"
	"github.com/blorticus-go/diafuzzer/tagger"
)

func main() {
	args := ProcessCommandLineArguments()
	if args.Applications == "" {
		dieOnError(fmt.Errorf("-applications is required"))
	}

	cfg := config.Default()
	if args.ConfigFile != "" {
		loaded, err := config.Load(args.ConfigFile)
		dieOnError(err)
		cfg = loaded
	}
	if args.LocalHost != "" {
		cfg.LocalHost = args.LocalHost
	}
	if args.LocalRealm != "" {
		cfg.LocalRealm = args.LocalRealm
	}

	logger, err := cfg.NewLogger()
	dieOnError(err)
	defer logger.Sync()

	dir, err := dictionary.LoadDirectory(strings.Split(args.Applications, ","),
		dictionary.WithSearchPath(strings.Split(args.SearchPath, ",")),
		dictionary.WithLogger(logger))
	dieOnError(err)

	entity := &diameter.DiameterEntity{
		OriginHost:  cfg.LocalHost,
		OriginRealm: cfg.LocalRealm,
		VendorID:    cfg.VendorID,
	}

	dial := dialerFor(args.Transport, args.Remote)
	ids := diameter.NewSequenceGeneratorSet()
	scenario := handshakeScenario(entity, ids)

	baselineConn, err := dial()
	dieOnError(err)
	captured, err := replay.RunBaseline(baselineConn, entity, scenario)
	baselineConn.Close()
	dieOnError(err)

	for _, c := range captured {
		if tagErr := tagger.Tag(c.Message, dir); tagErr != nil {
			logger.Warnw("failed to tag baseline message", "error", tagErr)
		}
	}

	tested := 0
	produce := func(yield func(*mutator.Descriptor) bool) {
		mutator.ProprietarySweep(captured, uint32(args.VendorID), []byte{0x01}, uint32(args.MinCode), uint32(args.MaxCode), func(d *mutator.Descriptor) bool {
			tested++
			if tested%1000 == 0 {
				logger.Infow("proprietary sweep progress", "tested", tested)
			}
			return yield(d)
		})
	}

	err = replay.SweepStream(dial, entity, scenario, produce, logger)
	dieOnError(err)

	fmt.Printf("tested %d candidate AVP code(s)\n", tested)
}

func dialerFor(transport, remote string) replay.Dialer {
	switch transport {
	case "sctp":
		return func() (replay.Transport, error) { return replay.DialSCTP(remote) }
	default:
		return func() (replay.Transport, error) { return replay.DialTCP(remote) }
	}
}

func dieOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
