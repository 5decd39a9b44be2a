package main

import (
	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/replay"
)

// handshakeScenario is the built-in scripted exchange this CLI drives:
// a capabilities exchange, nothing more. A real deployment would load
// its own scenario instead - the scenario loader and execution harness
// for an externally supplied scenario file is explicitly out of scope
// here, so this CLI only ever replays the one scenario it has
// compiled in.
func handshakeScenario(entity *diameter.DiameterEntity, ids *diameter.SequenceGenerator) replay.Scenario {
	return func(session replay.Session) error {
		cer := entity.CapabilitiesExchangeRequest(ids.NextHopByHopId(), ids.NextEndToEndId())

		if err := session.Send(cer); err != nil {
			return err
		}

		_, err := session.Recv()
		return err
	}
}
