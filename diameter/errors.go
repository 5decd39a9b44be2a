package diameter

import "fmt"

// A CodecError reports a failure to decode a Message or AVP from a byte
// buffer: a truncated header, an impossible length, or a short read.
type CodecError struct {
	Context string
	Reason  string
	Err     error
}

func (e *CodecError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("codec error (%s): %s: %s", e.Context, e.Reason, e.Err)
	}
	return fmt.Sprintf("codec error (%s): %s", e.Context, e.Reason)
}

func (e *CodecError) Unwrap() error { return e.Err }

// A PathError reports a failure to resolve or parse a path-addressing
// string against a decoded Message/AVP tree.
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path error (%q): %s", e.Path, e.Reason)
}

func newCodecError(context, reason string, err error) *CodecError {
	return &CodecError{Context: context, Reason: reason, Err: err}
}

func newPathError(path, reason string) *PathError {
	return &PathError{Path: path, Reason: reason}
}
