package diameter

import (
	"fmt"
	"strings"
)

// String renders the AVP as an indented tree: code, vendor (if
// vendor-specific), flags, and either its data or, for a Grouped AVP,
// its children rendered the same way one level deeper. It does not
// know AVP names - those come from a dictionary, which this package
// does not depend on - so a caller with a tagged message wanting
// names should render through the tagger package's model instead.
func (avp *AVP) String() string {
	return avp.indentedString(0)
}

func (avp *AVP) indentedString(depth int) string {
	pad := strings.Repeat("  ", depth)

	var flags []string
	if avp.Mandatory {
		flags = append(flags, "M")
	}
	if avp.Protected {
		flags = append(flags, "P")
	}
	if avp.VendorSpecific {
		flags = append(flags, fmt.Sprintf("V=%d", avp.VendorID))
	}

	header := fmt.Sprintf("%sAVP(code=%d", pad, avp.Code)
	if len(flags) > 0 {
		header += ", " + strings.Join(flags, ",")
	}

	if len(avp.Avps) > 0 {
		header += ") {\n"
		for _, child := range avp.Avps {
			header += child.indentedString(depth+1) + "\n"
		}
		header += pad + "}"
		return header
	}

	return fmt.Sprintf("%s, data=%q)", header, string(avp.Data))
}
