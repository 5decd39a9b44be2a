package diameter

import (
	"encoding/binary"
)

const (
	messageFlagRequest               uint8 = 0x80
	messageFlagProxiable              uint8 = 0x40
	messageFlagError                  uint8 = 0x20
	messageFlagPotentiallyRetransmitted uint8 = 0x10
	messageFlagReservedMask           uint8 = 0x0f

	messageHeaderLength = 20
	diameterVersion      = 1
)

// A Message is a decoded Diameter message: the 20-byte header plus its
// top-level AVPs. Length behaves like AVP.Length: nil means "recompute
// on Encode", a pinned value forces a specific wire length regardless
// of the actual encoded AVP bytes.
//
// Model is populated by the tagger package once a dictionary is
// available; it is nil on a freshly decoded Message.
type Message struct {
	Version     uint8
	Flags       uint8
	Code        uint32
	AppID       uint32
	HopByHopID  uint32
	EndToEndID  uint32
	Avps        []*AVP
	Length      *int

	Model any
}

// NewMessage builds a Message with the given command code, application
// ID, and flags. HopByHopID/EndToEndID are left at 0; callers normally
// fill them from a SequenceGenerator before sending.
func NewMessage(code, appID uint32, isRequest, isProxiable bool, avps ...*AVP) *Message {
	var flags uint8
	if isRequest {
		flags |= messageFlagRequest
	}
	if isProxiable {
		flags |= messageFlagProxiable
	}
	return &Message{
		Version: diameterVersion,
		Flags:   flags,
		Code:    code,
		AppID:   appID,
		Avps:    avps,
	}
}

func (m *Message) IsRequest() bool     { return m.Flags&messageFlagRequest != 0 }
func (m *Message) IsProxiable() bool   { return m.Flags&messageFlagProxiable != 0 }
func (m *Message) IsError() bool       { return m.Flags&messageFlagError != 0 }
func (m *Message) IsPotentiallyRetransmitted() bool {
	return m.Flags&messageFlagPotentiallyRetransmitted != 0
}

// Body returns the concatenated encoding of the top-level AVPs.
func (m *Message) Body() []byte {
	var body []byte
	for _, avp := range m.Avps {
		body = append(body, avp.Encode()...)
	}
	return body
}

// EncodedLength returns the pinned Length if set, or
// messageHeaderLength+len(Body()) otherwise.
func (m *Message) EncodedLength() int {
	if m.Length != nil {
		return *m.Length
	}
	return messageHeaderLength + len(m.Body())
}

// Encode serializes the full message: header followed by every
// top-level AVP's own (already-padded) encoding.
func (m *Message) Encode() []byte {
	body := m.Body()
	length := m.EncodedLength()

	buf := make([]byte, 0, length)
	buf = append(buf, m.Version)
	buf = append(buf, byte(length>>16), byte(length>>8), byte(length))
	buf = append(buf, m.Flags&(messageFlagReservedMask|messageFlagRequest|messageFlagProxiable|messageFlagError|messageFlagPotentiallyRetransmitted))
	buf = append(buf, byte(m.Code>>16), byte(m.Code>>8), byte(m.Code))
	buf = appendUint32(buf, m.AppID)
	buf = appendUint32(buf, m.HopByHopID)
	buf = appendUint32(buf, m.EndToEndID)
	buf = append(buf, body...)

	return buf
}

// DecodeMessage decodes a single message from input. input must
// contain at least one complete message; trailing bytes are ignored.
func DecodeMessage(input []byte) (*Message, error) {
	if len(input) < messageHeaderLength {
		return nil, newCodecError("message", "buffer shorter than the message header", nil)
	}

	version := input[0]
	length := int(input[1])<<16 | int(input[2])<<8 | int(input[3])
	flags := input[4]
	code := uint32(input[5])<<16 | uint32(input[6])<<8 | uint32(input[7])
	appID := binary.BigEndian.Uint32(input[8:12])
	hbh := binary.BigEndian.Uint32(input[12:16])
	ete := binary.BigEndian.Uint32(input[16:20])

	if length < messageHeaderLength {
		return nil, newCodecError("message", "declared length shorter than the header it must contain", nil)
	}
	if length > len(input) {
		return nil, newCodecError("message", "declared length exceeds the available buffer", nil)
	}

	m := &Message{
		Version:    version,
		Flags:      flags,
		Code:       code,
		AppID:      appID,
		HopByHopID: hbh,
		EndToEndID: ete,
	}

	rest := input[messageHeaderLength:length]
	for len(rest) > 0 {
		avp, err := DecodeAVP(rest)
		if err != nil {
			return nil, newCodecError("message", "failed decoding a top-level AVP", err)
		}
		if avp.PaddedLength == 0 || avp.PaddedLength%4 != 0 || avp.PaddedLength > len(rest) {
			return nil, newCodecError("message", "top-level AVP padded length misaligned with the remaining buffer", nil)
		}
		m.Avps = append(m.Avps, avp)
		rest = rest[avp.PaddedLength:]
	}

	return m, nil
}

// Clone returns a deep copy of the message. The clone's Length is
// unpinned regardless of the receiver's.
func (m *Message) Clone() *Message {
	clone := &Message{
		Version:    m.Version,
		Flags:      m.Flags,
		Code:       m.Code,
		AppID:      m.AppID,
		HopByHopID: m.HopByHopID,
		EndToEndID: m.EndToEndID,
		Model:      m.Model,
	}
	if len(m.Avps) > 0 {
		clone.Avps = make([]*AVP, len(m.Avps))
		for i, avp := range m.Avps {
			clone.Avps[i] = avp.Clone()
		}
	}
	return clone
}

// Equal reports whether m and other encode to the same wire bytes,
// ignoring any pinned Length on either message or its AVPs.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.Version != other.Version || m.Flags != other.Flags || m.Code != other.Code ||
		m.AppID != other.AppID || m.HopByHopID != other.HopByHopID || m.EndToEndID != other.EndToEndID {
		return false
	}
	if len(m.Avps) != len(other.Avps) {
		return false
	}
	for i := range m.Avps {
		if !m.Avps[i].Equal(other.Avps[i]) {
			return false
		}
	}
	return true
}

// FirstAvpMatching returns the first top-level AVP with the given code
// and vendor ID, or nil if there is none.
func (m *Message) FirstAvpMatching(code, vendorID uint32) *AVP {
	for _, avp := range m.Avps {
		if avp.Code == code && avp.VendorID == vendorID {
			return avp
		}
	}
	return nil
}

// ExtractNextMessage scans buf for one complete, length-prefixed
// Diameter message. It returns the decoded message, the number of
// bytes consumed from buf, and true on success. If buf does not yet
// hold a complete message it returns (nil, 0, false) without error,
// so callers can keep reading into the same buffer; it returns a
// non-nil error when the header is malformed or when a complete
// message fails to decode.
func ExtractNextMessage(buf []byte) (*Message, int, bool, error) {
	if len(buf) < messageHeaderLength {
		return nil, 0, false, nil
	}

	length := int(buf[1])<<16 | int(buf[2])<<8 | int(buf[3])
	if length < messageHeaderLength {
		return nil, 0, false, newCodecError("stream", "declared message length shorter than the header it must contain", nil)
	}
	if length > len(buf) {
		return nil, 0, false, nil
	}

	m, err := DecodeMessage(buf[:length])
	if err != nil {
		return nil, 0, false, err
	}
	return m, length, true, nil
}
