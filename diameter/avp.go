package diameter

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"
)

const (
	avpFlagVendorSpecific uint8 = 0x80
	avpFlagMandatory      uint8 = 0x40
	avpFlagProtected      uint8 = 0x20
	avpFlagReservedMask   uint8 = 0x1f

	nonVendorSpecificAvpHeaderLength = 8
	vendorSpecificAvpHeaderLength    = 12
)

// An AVP is a decoded Diameter attribute-value pair. Data holds the raw,
// unparsed value bytes exactly as they appear on the wire (without
// padding). When the value looks like a sequence of nested AVPs, Avps
// holds the tolerant, recursively decoded children; Data is kept as
// well. Encode builds the value from Avps whenever Avps is non-empty,
// and from Data otherwise.
//
// Length is nil until something pins it: a freshly built or decoded AVP
// recomputes its wire length on every Encode call. A mutation that
// wants a length/value mismatch sets Length explicitly; touching Data
// or Avps through the path-addressing operations below clears any
// previously pinned Length, so pinning only survives until the AVP is
// next modified through those operations.
//
// ModelAvp and QualifiedAvp are populated by the tagger package once a
// dictionary is available; both are nil on a freshly decoded AVP.
type AVP struct {
	Code           uint32
	VendorSpecific bool
	Mandatory      bool
	Protected      bool
	Reserved       uint8
	VendorID       uint32
	Data           []byte
	Avps           []*AVP
	Length         *int
	PaddedLength   int

	ModelAvp     any
	QualifiedAvp any
}

// NewAVP builds an AVP carrying opaque data. code and vendorID follow
// RFC 6733 §4.1; vendorID of 0 means the AVP is not vendor-specific.
func NewAVP(code uint32, vendorID uint32, mandatory, protected bool, data []byte) *AVP {
	return &AVP{
		Code:           code,
		VendorSpecific: vendorID != 0,
		Mandatory:      mandatory,
		Protected:      protected,
		VendorID:       vendorID,
		Data:           data,
	}
}

// NewGroupedAVP builds an AVP whose value is the encoding of children.
func NewGroupedAVP(code uint32, vendorID uint32, mandatory, protected bool, children []*AVP) *AVP {
	a := NewAVP(code, vendorID, mandatory, protected, nil)
	a.Avps = children
	return a
}

// HeaderLength returns 8, or 12 when the AVP is vendor-specific.
func (avp *AVP) HeaderLength() int {
	if avp.VendorSpecific {
		return vendorSpecificAvpHeaderLength
	}
	return nonVendorSpecificAvpHeaderLength
}

// Body returns the bytes that would be encoded as this AVP's value: the
// concatenation of each child's Encode() when Avps is non-empty, Data
// otherwise.
func (avp *AVP) Body() []byte {
	if len(avp.Avps) > 0 {
		var body []byte
		for _, child := range avp.Avps {
			body = append(body, child.Encode()...)
		}
		return body
	}
	return avp.Data
}

// EncodedLength returns the unpadded wire length that Encode would use:
// the pinned Length if one is set, or HeaderLength()+len(Body()).
func (avp *AVP) EncodedLength() int {
	if avp.Length != nil {
		return *avp.Length
	}
	return avp.HeaderLength() + len(avp.Body())
}

// Encode serializes the AVP, including trailing zero padding to a
// 4-byte boundary. It does not mutate the receiver.
func (avp *AVP) Encode() []byte {
	body := avp.Body()
	length := avp.EncodedLength()

	buf := make([]byte, 0, length+4)
	buf = appendUint32(buf, avp.Code)

	flags := avp.Reserved & avpFlagReservedMask
	if avp.VendorSpecific {
		flags |= avpFlagVendorSpecific
	}
	if avp.Mandatory {
		flags |= avpFlagMandatory
	}
	if avp.Protected {
		flags |= avpFlagProtected
	}

	buf = append(buf, flags, byte(length>>16), byte(length>>8), byte(length))

	if avp.VendorSpecific {
		buf = appendUint32(buf, avp.VendorID)
	}

	buf = append(buf, body...)

	if pad := length % 4; pad != 0 {
		buf = append(buf, make([]byte, 4-pad)...)
	}

	return buf
}

// DecodeAVP decodes a single AVP from the front of input. It does not
// require input to hold exactly one AVP; trailing bytes beyond the
// decoded AVP's padded length are ignored by this call (the caller
// slices past PaddedLength to continue).
//
// If the AVP's value is at least 12 bytes long, DecodeAVP attempts to
// parse it as a sequence of nested AVPs. The attempt is discarded,
// leaving Avps nil, unless it fully consumes the value with every
// child's padded length aligned — so a scalar AVP that merely happens
// to look structured never loses its raw Data.
func DecodeAVP(input []byte) (*AVP, error) {
	if len(input) < nonVendorSpecificAvpHeaderLength {
		return nil, newCodecError("avp", "buffer shorter than an AVP header", nil)
	}

	code := binary.BigEndian.Uint32(input[0:4])
	flags := input[4]
	length := int(input[5])<<16 | int(input[6])<<8 | int(input[7])

	vendorSpecific := flags&avpFlagVendorSpecific != 0
	headerLen := nonVendorSpecificAvpHeaderLength
	if vendorSpecific {
		headerLen = vendorSpecificAvpHeaderLength
	}

	if length < headerLen {
		return nil, newCodecError("avp", "declared length shorter than the header it must contain", nil)
	}
	if length > len(input) {
		return nil, newCodecError("avp", "declared length exceeds the available buffer", nil)
	}

	pos := nonVendorSpecificAvpHeaderLength
	var vendorID uint32
	if vendorSpecific {
		if len(input) < vendorSpecificAvpHeaderLength {
			return nil, newCodecError("avp", "vendor-specific flag set but buffer too short for a vendor ID", nil)
		}
		vendorID = binary.BigEndian.Uint32(input[8:12])
		pos = vendorSpecificAvpHeaderLength
	}

	dataLen := length - headerLen
	if pos+dataLen > len(input) {
		return nil, newCodecError("avp", "declared length exceeds the available buffer", nil)
	}

	data := make([]byte, dataLen)
	copy(data, input[pos:pos+dataLen])

	paddedLength := length
	if r := dataLen % 4; r != 0 {
		paddedLength += 4 - r
	}
	if paddedLength > len(input) {
		return nil, newCodecError("avp", "padded length exceeds the available buffer", nil)
	}

	avp := &AVP{
		Code:           code,
		VendorSpecific: vendorSpecific,
		Mandatory:      flags&avpFlagMandatory != 0,
		Protected:      flags&avpFlagProtected != 0,
		Reserved:       flags & avpFlagReservedMask,
		VendorID:       vendorID,
		Data:           data,
		PaddedLength:   paddedLength,
	}

	if children, ok := tryDecodeNestedAvps(data); ok {
		avp.Avps = children
	}

	return avp, nil
}

func tryDecodeNestedAvps(data []byte) ([]*AVP, bool) {
	if len(data) < vendorSpecificAvpHeaderLength {
		return nil, false
	}

	var children []*AVP
	rest := data

	for len(rest) > 0 {
		child, err := DecodeAVP(rest)
		if err != nil {
			return nil, false
		}
		if child.PaddedLength == 0 || child.PaddedLength%4 != 0 || child.PaddedLength > len(rest) {
			return nil, false
		}
		children = append(children, child)
		rest = rest[child.PaddedLength:]
	}

	if len(children) == 0 {
		return nil, false
	}
	return children, true
}

// Clone returns a deep copy of the AVP, including its children. The
// clone's Length is unpinned (nil) regardless of the receiver's.
func (avp *AVP) Clone() *AVP {
	clone := &AVP{
		Code:           avp.Code,
		VendorSpecific: avp.VendorSpecific,
		Mandatory:      avp.Mandatory,
		Protected:      avp.Protected,
		Reserved:       avp.Reserved,
		VendorID:       avp.VendorID,
		PaddedLength:   avp.PaddedLength,
		ModelAvp:       avp.ModelAvp,
		QualifiedAvp:   avp.QualifiedAvp,
	}
	if avp.Data != nil {
		clone.Data = append([]byte(nil), avp.Data...)
	}
	if len(avp.Avps) > 0 {
		clone.Avps = make([]*AVP, len(avp.Avps))
		for i, child := range avp.Avps {
			clone.Avps[i] = child.Clone()
		}
	}
	return clone
}

// Equal reports whether avp and other encode identically, ignoring any
// pinned Length and comparing nested AVPs structurally rather than by
// raw Data when both have children.
func (avp *AVP) Equal(other *AVP) bool {
	if avp == nil || other == nil {
		return avp == other
	}
	if avp.Code != other.Code || avp.VendorSpecific != other.VendorSpecific ||
		avp.Mandatory != other.Mandatory || avp.Protected != other.Protected ||
		avp.VendorID != other.VendorID {
		return false
	}
	if len(avp.Avps) != len(other.Avps) {
		return false
	}
	if len(avp.Avps) > 0 {
		for i := range avp.Avps {
			if !avp.Avps[i].Equal(other.Avps[i]) {
				return false
			}
		}
		return true
	}
	return bytesEqual(avp.Data, other.Data)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// packUnsigned encodes an unsigned integer datatype (Unsigned32/64) in
// network byte order using its natural width.
func packUnsigned[T constraints.Unsigned](v T, width int) []byte {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	return buf
}

// unpackUnsigned decodes an unsigned integer datatype of the given
// byte width, network byte order.
func unpackUnsigned[T constraints.Unsigned](data []byte) T {
	var v T
	for _, b := range data {
		v = v<<8 | T(b)
	}
	return v
}

// NewUnsigned32AVP builds a scalar AVP carrying an Unsigned32 value.
func NewUnsigned32AVP(code, vendorID uint32, mandatory, protected bool, value uint32) *AVP {
	return NewAVP(code, vendorID, mandatory, protected, packUnsigned(value, 4))
}

// NewUnsigned64AVP builds a scalar AVP carrying an Unsigned64 value.
func NewUnsigned64AVP(code, vendorID uint32, mandatory, protected bool, value uint64) *AVP {
	return NewAVP(code, vendorID, mandatory, protected, packUnsigned(value, 8))
}

// Unsigned32 interprets Data as an Unsigned32/Enumerated value.
func (avp *AVP) Unsigned32() uint32 { return unpackUnsigned[uint32](avp.Data) }

// Unsigned64 interprets Data as an Unsigned64 value.
func (avp *AVP) Unsigned64() uint64 { return unpackUnsigned[uint64](avp.Data) }

// UTF8String interprets Data as a UTF8String/DiamIdent/DiamURI value.
func (avp *AVP) UTF8String() string { return string(avp.Data) }

// NewUTF8StringAVP builds a scalar AVP carrying a UTF8String value.
func NewUTF8StringAVP(code, vendorID uint32, mandatory, protected bool, value string) *AVP {
	return NewAVP(code, vendorID, mandatory, protected, []byte(value))
}

// AllowsStacking reports whether this AVP's current children could
// accept another copy of its own last child appended without violating
// the wire format (i.e. there is at least one child to stack). The
// dictionary-aware notion of "the CCF's trailing slot is a wildcard
// multi-AVP" lives in dictionary.Avp.AllowsStacking; this check is
// purely structural, and the mutator consults only the dictionary one.
func (avp *AVP) AllowsStacking() bool {
	return len(avp.Avps) > 0
}
