package mutator

import "fmt"

// ProprietarySweep calls yield once for every (outgoing message,
// candidate AVP code) pair with code in [minCode, maxCode), appending
// a single AVP of vendorID carrying value to the anchored message.
// Descriptors are built lazily and handed to yield one at a time
// rather than materialized into a slice, since the probed code range
// can span the full 24-bit Diameter AVP code space; ProprietarySweep
// stops as soon as yield returns false.
//
// This is the proprietary/vendor AVP acceptance probe: rather than
// enumerating structural or value mutations of AVPs the dictionary
// already knows, it appends an undocumented AVP code/vendor pair to an
// otherwise well-formed message and lets the driver observe whether
// the peer accepts, ignores, or rejects it.
func ProprietarySweep(captured []CapturedMessage, vendorID uint32, value []byte, minCode, maxCode uint32, yield func(*Descriptor) bool) {
	sent := 0
	for _, c := range captured {
		if !c.IsOutgoing {
			continue
		}
		anchor := Anchor{OutgoingIndex: sent, Code: c.Message.Code, IsRequest: c.Message.IsRequest()}

		for code := minCode; code < maxCode; code++ {
			d := &Descriptor{
				Anchor:      anchor,
				Description: fmt.Sprintf("try proprietary AVP code=%d,vendor=%d", code, vendorID),
				Tag:         AppendSynthetic,
				AvpCode:     code,
				AvpVendorID: vendorID,
				Value:       value,
			}
			if !yield(d) {
				return
			}
		}

		sent++
	}
}
