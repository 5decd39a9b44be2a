// Command dia-fuzz records a baseline capabilities-exchange scenario
// against a target, enumerates structural and value mutations of it
// against a dictionary, and replays the scenario once per mutation.
// It is the Go analogue of the original diafuzzer tool's fuzz.py.
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

	if args.Mode != "client" {
		dieOnError(fmt.Errorf("mode %q is not yet supported; only client mode is implemented", args.Mode))
	}
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
	if args.VendorID != 0 {
		cfg.VendorID = uint32(args.VendorID)
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

	logger.Infow("baseline captured", "messages", len(captured))

	for _, c := range captured {
		if err := tagger.Tag(c.Message, dir); err != nil {
			logger.Warnw("failed to tag baseline message", "error", err)
		}
	}

	descriptors := mutator.Enumerate(captured)
	logger.Infow("generated mutation descriptors", "count", len(descriptors))

	results, err := replay.Sweep(dial, entity, scenario, descriptors, logger)
	dieOnError(err)

	ok, failed := 0, 0
	for _, r := range results {
		if r.Err == nil {
			ok++
		} else {
			failed++
		}
	}
	fmt.Printf("%d descriptor(s) replayed: %d ok, %d reported an error\n", len(results), ok, failed)
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
