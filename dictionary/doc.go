// Package dictionary parses the textual ".dia" dictionary grammar that
// describes a Diameter application's AVPs, messages, and grouped-AVP
// layouts (RFC 6733 Command Code Format), resolves @inherits module
// references, and exposes a Directory that indexes loaded applications
// by application ID and by (vendor, code) for AVP/message lookup.
//
// The package has no notion of wire bytes; that is the diameter
// package's job. A Directory only knows the model a wire message is
// checked against.
package dictionary
