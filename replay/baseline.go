package replay

import (
	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/mutator"
)

// RunBaseline runs scenario over conn with no mutation applied,
// returning the decoded, ordered sequence of messages it sent and
// received (not yet tagged; RunBaseline does no tagging). It is the unmutated reference run Sweep replays against
// per descriptor, and the verification run it falls back to when a
// mutated run's connection breaks.
func RunBaseline(conn Transport, self *diameter.DiameterEntity, scenario Scenario) ([]mutator.CapturedMessage, error) {
	return Run(conn, self, scenario, nil)
}

// A BaselineSource supplies a captured baseline sequence from
// somewhere other than a live RunBaseline call - a recorded PCAP or
// PDML trace, for instance. Enumerate only needs the tagged
// CapturedMessage sequence BaselineSource produces; how that sequence
// was captured is deliberately out of scope here; wiring a concrete
// BaselineSource over packet-capture files is left to a future
// capture-ingestion package.
type BaselineSource func() ([]mutator.CapturedMessage, error)
