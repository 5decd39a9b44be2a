package replay

import (
	"io"

	"github.com/blorticus-go/diafuzzer/diameter"
)

// streamReadChunk is the size of each underlying Read call; Diameter
// messages over TCP/SCTP rarely approach it, but one oversized AVP
// (an overflow or proprietary-sweep mutation) can, so ReadNextMessage
// keeps calling Read until ExtractNextMessage reports a complete
// message rather than assuming one Read is enough.
const streamReadChunk = 9100

// A MessageStreamReader decodes Diameter messages one at a time from
// an underlying byte stream, buffering bytes across Read calls until
// diameter.ExtractNextMessage can decode a complete message from what
// has accumulated so far.
type MessageStreamReader struct {
	source  io.Reader
	pending []byte
	chunk   []byte
}

// NewMessageStreamReader wraps source for message-at-a-time reading.
func NewMessageStreamReader(source io.Reader) *MessageStreamReader {
	return &MessageStreamReader{source: source, chunk: make([]byte, streamReadChunk)}
}

// ReadNextMessage blocks until a complete Diameter message has
// arrived on the underlying stream, then returns it. err is non-nil
// either because the stream itself failed (including io.EOF on a
// clean close) or because a buffered message failed to decode (a
// malformed header or body); in either case the returned message is
// nil.
func (r *MessageStreamReader) ReadNextMessage() (*diameter.Message, error) {
	for {
		msg, consumed, ok, err := diameter.ExtractNextMessage(r.pending)
		if err != nil {
			return nil, err
		}
		if ok {
			r.pending = append([]byte(nil), r.pending[consumed:]...)
			return msg, nil
		}

		n, err := r.source.Read(r.chunk)
		if n > 0 {
			r.pending = append(r.pending, r.chunk[:n]...)
		}
		if err != nil {
			return nil, err
		}
	}
}
