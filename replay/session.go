package replay

import "github.com/blorticus-go/diafuzzer/diameter"

// A Session is what a Scenario uses to drive one exchange: Send
// queues msg for transmission (after any bound mutation descriptor
// has had a chance to act on it), Recv blocks for the next inbound
// message. Device-Watchdog-Requests are answered by the driver
// itself and never reach Recv.
type Session interface {
	Send(msg *diameter.Message) error
	Recv() (*diameter.Message, error)
}

// A Scenario is the user-supplied scripted exchange: it drives a
// Session to send and receive messages in whatever order the protocol
// under test requires, returning an error if the exchange did not go
// the way it expected.
type Scenario func(session Session) error

// A MutateFunc is offered every outgoing message in order, numbered
// from 0, before it is written to the transport. It returns the
// messages to actually transmit in its place (a pass-through MutateFunc
// returns a single-element slice containing msg unchanged).
type MutateFunc func(outgoingIndex int, msg *diameter.Message) ([]*diameter.Message, error)

type incomingResult struct {
	msg *diameter.Message
	err error
}

// channelSession is the in-process, goroutine-local implementation of
// Session: Run owns both channels and runs the scenario goroutine
// against them, mirroring (in Go idiom) the socketpair the original
// Python driver used to hand messages between the scenario thread and its
// own forwarding loop.
type channelSession struct {
	outgoing chan *diameter.Message
	incoming chan incomingResult
}

func newChannelSession() *channelSession {
	return &channelSession{
		outgoing: make(chan *diameter.Message),
		incoming: make(chan incomingResult),
	}
}

func (s *channelSession) Send(msg *diameter.Message) error {
	s.outgoing <- msg
	return nil
}

func (s *channelSession) Recv() (*diameter.Message, error) {
	r := <-s.incoming
	return r.msg, r.err
}
