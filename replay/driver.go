package replay

import (
	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/mutator"
)

// Run drives scenario over conn once: the scenario runs in its own
// goroutine against a channelSession, while this loop owns conn
// directly. Every message the scenario sends passes through mutate (if
// given) before being written to conn; every message read from conn is
// auto-answered, if it is a Device-Watchdog-Request, without reaching
// the scenario, and otherwise handed to the scenario's next Recv. The
// full sent/received sequence, in the order it actually occurred, is
// returned regardless of whether the run ended in error.
//
// Run returns once scenario itself returns or the connection fails;
// the caller is responsible for closing conn afterward, which also
// unblocks Run's background stream-reading goroutine if scenario ended
// first.
func Run(conn Transport, self *diameter.DiameterEntity, scenario Scenario, mutate MutateFunc) ([]mutator.CapturedMessage, error) {
	session := newChannelSession()

	scenarioDone := make(chan error, 1)
	go func() {
		scenarioDone <- scenario(session)
	}()

	done := make(chan struct{})
	defer close(done)

	reads := make(chan incomingResult)
	go func() {
		reader := NewMessageStreamReader(conn)
		for {
			msg, err := reader.ReadNextMessage()
			select {
			case reads <- incomingResult{msg: msg, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var captured []mutator.CapturedMessage
	sentCount := 0

	for {
		select {
		case err := <-scenarioDone:
			if err != nil {
				return captured, newScenarioError("scenario function returned an error", err)
			}
			return captured, nil

		case msg := <-session.outgoing:
			outbound := []*diameter.Message{msg}
			if mutate != nil {
				var err error
				outbound, err = mutate(sentCount, msg)
				if err != nil {
					return captured, newScenarioError("mutation descriptor failed to apply", err)
				}
			}
			for _, m := range outbound {
				if _, err := conn.Write(m.Encode()); err != nil {
					return captured, err
				}
				captured = append(captured, mutator.CapturedMessage{Message: m, IsOutgoing: true})
			}
			sentCount++

		case r := <-reads:
			if r.err != nil {
				return captured, r.err
			}

			if r.msg.IsDeviceWatchdogRequest() {
				dwa := self.DeviceWatchdogAnswer(r.msg)
				if _, err := conn.Write(dwa.Encode()); err != nil {
					return captured, err
				}
				continue
			}

			captured = append(captured, mutator.CapturedMessage{Message: r.msg, IsOutgoing: false})

			select {
			case session.incoming <- incomingResult{msg: r.msg}:
			case err := <-scenarioDone:
				if err != nil {
					return captured, newScenarioError("scenario function returned an error", err)
				}
				return captured, nil
			}
		}
	}
}
