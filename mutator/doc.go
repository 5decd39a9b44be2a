// Package mutator enumerates mutation descriptors from a tagged
// baseline message sequence and applies one descriptor at a time to a
// cloned message during replay: structural edits (suppress/overflow a
// qualified-AVP slot), value edits (enumerated/UTF-8/length/format
// attacks against a leaf AVP), and a deep self-stacking edit for
// Grouped AVPs whose CCF ends in an unbounded wildcard slot.
package mutator
