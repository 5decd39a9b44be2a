package mutator

import (
	"fmt"

	"github.com/blorticus-go/diafuzzer/diameter"
)

// A Tag names the kind of edit a Descriptor applies. Enumerate only
// ever produces Absent, Overpresent, and SetValue descriptors; Omit,
// Stutter, and AppendSynthetic exist so a hand-built or scripted
// Descriptor can drive the same Apply/replay machinery for sequence-
// level attacks that structural enumeration does not generate on its
// own.
type Tag int

const (
	// Absent removes every AVP matching Path's final step from its
	// parent.
	Absent Tag = iota
	// Overpresent clones the last AVP matching Path's final step
	// until Count occurrences exist.
	Overpresent
	// SetValue replaces the value of the AVP at Path with Value.
	SetValue
	// Omit drops the message: Apply returns no messages to transmit.
	Omit
	// Stutter transmits the message twice, assigning the second copy
	// fresh hop-by-hop/end-to-end IDs.
	Stutter
	// AppendSynthetic appends a brand new AVP with code AvpCode and
	// vendor AvpVendorID, carrying Value, as an additional child of
	// the parent of the AVP Path selects (the message itself when Path
	// is empty or has a single step).
	AppendSynthetic
)

func (t Tag) String() string {
	switch t {
	case Absent:
		return "Absent"
	case Overpresent:
		return "Overpresent"
	case SetValue:
		return "SetValue"
	case Omit:
		return "Omit"
	case Stutter:
		return "Stutter"
	case AppendSynthetic:
		return "AppendSynthetic"
	default:
		return "Unknown"
	}
}

// A Descriptor is one concrete mutation: which outgoing message it
// anchors to, a human-readable Description for reporting, and the
// edit it applies, captured as plain fields rather than a closure so
// Apply can dispatch with a switch on Tag instead of invoking
// arbitrary captured behaviour.
type Descriptor struct {
	Anchor      Anchor
	Description string

	Tag   Tag
	Path  string
	Count int
	Value []byte

	// AvpCode/AvpVendorID are only consulted by AppendSynthetic, to
	// build the new AVP's header.
	AvpCode     uint32
	AvpVendorID uint32
}

// Apply performs this descriptor's edit against msg (which callers
// must have already cloned from the baseline) and returns the
// messages that should be transmitted in msg's place: zero for Omit,
// two for Stutter, one otherwise. nextIDs supplies fresh hop-by-hop
// and end-to-end IDs for Stutter's second copy; it is only called for
// that tag and may be nil for every other one.
func (d *Descriptor) Apply(msg *diameter.Message, nextIDs func() (hopByHop, endToEnd uint32)) ([]*diameter.Message, error) {
	switch d.Tag {
	case Omit:
		return nil, nil

	case Stutter:
		second := msg.Clone()
		if nextIDs != nil {
			second.HopByHopID, second.EndToEndID = nextIDs()
		}
		return []*diameter.Message{msg, second}, nil

	case Absent:
		if err := msg.SuppressAvps(d.Path); err != nil {
			return nil, &MutationError{Reason: err.Error()}
		}

	case Overpresent:
		if err := msg.OverflowAvps(d.Path, d.Count); err != nil {
			return nil, &MutationError{Reason: err.Error()}
		}

	case SetValue:
		if err := msg.ModifyValue(d.Path, d.Value); err != nil {
			return nil, &MutationError{Reason: err.Error()}
		}

	case AppendSynthetic:
		avp := diameter.NewAVP(d.AvpCode, d.AvpVendorID, true, false, d.Value)
		if err := msg.InsertAvp(parentOf(d.Path), avp); err != nil {
			return nil, &MutationError{Reason: err.Error()}
		}

	default:
		return nil, &MutationError{Reason: fmt.Sprintf("unknown mutation tag %d", d.Tag)}
	}

	return []*diameter.Message{msg}, nil
}

// parentOf strips the final step from a path, leaving the path to its
// parent (the empty string selects the message itself).
func parentOf(path string) string {
	i := lastSlash(path)
	if i <= 0 {
		return ""
	}
	return path[:i]
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}
