// Package tagger annotates a decoded diameter.Message/AVP tree with
// references into a dictionary.Directory: which Msg the message
// matches, and for each AVP, which QualifiedAvp slot of its parent's
// CCF it fills (if any) and which Avp definition describes it (model
// or wildcard-resolved).
package tagger
