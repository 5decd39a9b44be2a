package mutator

import "fmt"

// A MutationError reports a failure to apply a mutation descriptor:
// the path it names does not resolve against the message it is
// applied to, or resolves to something the descriptor's edit cannot
// act on (e.g. overflow with nothing to clone).
type MutationError struct {
	Reason string
}

func (e *MutationError) Error() string { return fmt.Sprintf("mutation error: %s", e.Reason) }
