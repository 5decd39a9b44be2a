package mutator

import "github.com/blorticus-go/diafuzzer/diameter"

// A CapturedMessage pairs a decoded, tagged message from a baseline
// run with the direction it travelled: IsOutgoing is true for a
// message the scenario sent, false for one it received.
type CapturedMessage struct {
	Message    *diameter.Message
	IsOutgoing bool
}

// An Anchor identifies which outgoing message of a scenario a
// mutation descriptor targets. OutgoingIndex counts only outgoing
// messages, from 0; a replay driver matches it against the i-th
// message the scenario is about to send, asserting Code and IsRequest
// agree with what the baseline saw at that position.
type Anchor struct {
	OutgoingIndex int
	Code          uint32
	IsRequest     bool
}
