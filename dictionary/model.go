package dictionary

import "fmt"

// A DataType is one of the Diameter base or derived AVP datatypes a
// .dia grammar can declare for an AVP (RFC 6733 §4.2/§4.3).
type DataType int

const (
	DataTypeUnknown DataType = iota
	DataTypeOctetString
	DataTypeInteger32
	DataTypeInteger64
	DataTypeUnsigned32
	DataTypeUnsigned64
	DataTypeFloat32
	DataTypeFloat64
	DataTypeGrouped
	DataTypeAddress
	DataTypeTime
	DataTypeUTF8String
	DataTypeEnumerated
	DataTypeDiameterIdentity
	DataTypeDiameterURI
	DataTypeIPFilterRule
	DataTypeQoSFilterRule
)

func (d DataType) String() string {
	switch d {
	case DataTypeOctetString:
		return "OctetString"
	case DataTypeInteger32:
		return "Integer32"
	case DataTypeInteger64:
		return "Integer64"
	case DataTypeUnsigned32:
		return "Unsigned32"
	case DataTypeUnsigned64:
		return "Unsigned64"
	case DataTypeFloat32:
		return "Float32"
	case DataTypeFloat64:
		return "Float64"
	case DataTypeGrouped:
		return "Grouped"
	case DataTypeAddress:
		return "Address"
	case DataTypeTime:
		return "Time"
	case DataTypeUTF8String:
		return "UTF8String"
	case DataTypeEnumerated:
		return "Enumerated"
	case DataTypeDiameterIdentity:
		return "DiameterIdentity"
	case DataTypeDiameterURI:
		return "DiameterURI"
	case DataTypeIPFilterRule:
		return "IPFilterRule"
	case DataTypeQoSFilterRule:
		return "QoSFilterRule"
	default:
		return "Unknown"
	}
}

func dataTypeFromName(name string) (DataType, bool) {
	switch name {
	case "OctetString":
		return DataTypeOctetString, true
	case "Integer32":
		return DataTypeInteger32, true
	case "Integer64":
		return DataTypeInteger64, true
	case "Unsigned32":
		return DataTypeUnsigned32, true
	case "Unsigned64":
		return DataTypeUnsigned64, true
	case "Float32":
		return DataTypeFloat32, true
	case "Float64":
		return DataTypeFloat64, true
	case "Grouped":
		return DataTypeGrouped, true
	case "Address":
		return DataTypeAddress, true
	case "Time":
		return DataTypeTime, true
	case "UTF8String":
		return DataTypeUTF8String, true
	case "Enumerated":
		return DataTypeEnumerated, true
	case "DiameterIdentity", "DiamIdent":
		return DataTypeDiameterIdentity, true
	case "DiameterURI", "DiamURI":
		return DataTypeDiameterURI, true
	case "IPFilterRule":
		return DataTypeIPFilterRule, true
	case "QoSFilterRule":
		return DataTypeQoSFilterRule, true
	default:
		return DataTypeUnknown, false
	}
}

// knownLengthDatatypes gives the fixed wire lengths (in bytes) a
// datatype is allowed to have, when its length is known independent of
// content. Address has two (IPv4-tagged, IPv6-tagged). Time is fixed
// at 4 bytes per RFC 6733 §4.3.1, resolving the duplicate dict-key
// ambiguity the Python source carried (it assigned Time both 8 and 4,
// with the later assignment silently winning).
var knownLengthDatatypes = map[DataType][]int{
	DataTypeInteger32:  {4},
	DataTypeInteger64:  {8},
	DataTypeUnsigned32: {4},
	DataTypeUnsigned64: {8},
	DataTypeFloat32:    {4},
	DataTypeFloat64:    {8},
	DataTypeAddress:    {2 + 4, 2 + 16},
	DataTypeTime:       {4},
	DataTypeEnumerated: {4},
}

// KnownLengths returns the fixed wire lengths a value of this datatype
// may take, or nil if the datatype has no fixed length (OctetString,
// UTF8String, Grouped, and the identity/URI/filter-rule string types).
func KnownLengths(d DataType) []int {
	return knownLengthDatatypes[d]
}

// An Avp is one @avp_types entry: a named, coded, typed AVP definition
// with its mandatory/vendor-specific/protected flag defaults and,
// for Enumerated and Grouped AVPs, the associated value table or
// child layout.
type Avp struct {
	Name           string
	Code           uint32
	DataType       DataType
	Mandatory      bool
	VendorSpecific bool
	Protected      bool
	VendorID       uint32

	Grouped             []*QualifiedAvp
	ValueToDescription  map[int64]string
	DescriptionToValue  map[string]int64
}

func newAvp(name string, code uint32, dataType DataType, flags string) (*Avp, error) {
	for _, c := range flags {
		if c != '-' && c != 'M' && c != 'V' && c != 'P' {
			return nil, newError(ErrInvalidAVPFlags, flags)
		}
	}

	a := &Avp{Name: name, Code: code, DataType: dataType}
	for _, c := range flags {
		switch c {
		case 'M':
			a.Mandatory = true
		case 'V':
			a.VendorSpecific = true
		case 'P':
			a.Protected = true
		}
	}
	return a, nil
}

// AllowsStacking reports whether this AVP is Grouped and its CCF ends
// in an unbounded wildcard AVP slot ("*[ AVP ]" with no min/max), which
// the mutator's deep self-stacking attack needs in order to append
// another copy of an arbitrary child without violating the model.
func (a *Avp) AllowsStacking() bool {
	if a.DataType != DataTypeGrouped || len(a.Grouped) == 0 {
		return false
	}
	last := a.Grouped[len(a.Grouped)-1]
	return last.Name == "AVP" && last.Multiple && last.Min == nil && last.Max == nil
}

// ToType renders the AVP as an @avp_types line: name, code, datatype,
// flags.
func (a *Avp) ToType() string {
	flags := ""
	if a.Mandatory {
		flags += "M"
	}
	if a.VendorSpecific {
		flags += "V"
	}
	if a.Protected {
		flags += "P"
	}
	if flags == "" {
		flags = "-"
	}
	return fmt.Sprintf("%-45s\t%-9d\t%-20s\t%-4s", a.Name, a.Code, a.DataType.String(), flags)
}

// A QualifiedAvp is one entry of a message or grouped-AVP's CCF body:
// a named AVP reference decorated with its occurrence semantics
// (fixed "< >", required "{ }", optional "[ ]") and, when Multiple,
// an optional min/max repeat count. Avp is resolved by Application's
// verify step once every AVP it names is known; it stays nil for the
// sentinel name "AVP" (the generic wildcard slot).
type QualifiedAvp struct {
	Name      string
	Multiple  bool
	Min       *int
	Max       *int
	Semantics string // "fixed", "required", or "optional"
	Avp       *Avp
}

// Accept reports whether cnt occurrences of this AVP satisfy the
// qualifier: exactly one for a non-multiple fixed/required slot, zero
// or one for a non-multiple optional slot, and bounded by Min/Max
// (when set) for a multiple slot.
func (qa *QualifiedAvp) Accept(cnt int) bool {
	switch qa.Semantics {
	case "fixed", "required":
		if !qa.Multiple {
			return cnt == 1
		}
		if qa.Min != nil && cnt < *qa.Min {
			return false
		}
		if qa.Max != nil && cnt > *qa.Max {
			return false
		}
		return true
	case "optional":
		if !qa.Multiple {
			return cnt == 0 || cnt == 1
		}
		return true
	default:
		return false
	}
}

// String renders the qualified AVP as it appears in a CCF body, e.g.
// " 3*   { Subscription-Id }".
func (qa *QualifiedAvp) String() string {
	var decorated string
	switch qa.Semantics {
	case "fixed":
		decorated = fmt.Sprintf("< %s >", qa.Name)
	case "required":
		decorated = fmt.Sprintf("{ %s }", qa.Name)
	default:
		decorated = fmt.Sprintf("[ %s ]", qa.Name)
	}

	qual := ""
	if qa.Multiple {
		if qa.Min != nil {
			qual += fmt.Sprintf("%2d", *qa.Min)
		} else {
			qual += "  "
		}
		qual += "*"
		if qa.Max != nil {
			qual += fmt.Sprintf("%2d", *qa.Max)
		} else {
			qual += "  "
		}
	} else {
		qual += "     "
	}

	return fmt.Sprintf("%s %s", qual, decorated)
}

// A Msg is one @messages entry: a command name/code with its
// REQ/PXY/ERR flags, the application ID it belongs to, and its CCF
// body of qualified AVPs.
type Msg struct {
	Name  string
	Code  uint32
	R, P, E bool
	AppID uint32
	Avps  []*QualifiedAvp
}

// String renders the message as a CCF definition.
func (m *Msg) String() string {
	var flags []string
	if m.R {
		flags = append(flags, "REQ")
	}
	if m.P {
		flags = append(flags, "PXY")
	}
	if m.E {
		flags = append(flags, "ERR")
	}

	s := fmt.Sprintf("%s ::= <Diameter Header: %d", m.Name, m.Code)
	for _, f := range flags {
		s += ", " + f
	}
	if m.AppID > 0 {
		s += fmt.Sprintf(", %d", m.AppID)
	}
	s += ">\n"

	for _, qa := range m.Avps {
		s += qa.String() + "\n"
	}
	return s
}
