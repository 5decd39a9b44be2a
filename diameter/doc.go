// Package diameter implements the Diameter base protocol wire format:
// Message and AVP encoding/decoding (RFC 6733 §3), tolerant recursive
// detection of grouped AVPs, and a path-addressing algebra used by the
// mutator and replay packages to reach into a decoded message without
// a dictionary in hand.
//
// The package never consults a dictionary. Typing and CCF validation
// live in the dictionary and tagger packages; this package only knows
// bytes, lengths, and padding.
package diameter
