package dictionary

import (
	"fmt"
	"sort"
	"strings"
)

// String renders the Application back to .dia text. It is not
// guaranteed to reproduce the original source byte-for-byte (comments
// and section ordering are not preserved). Only the application's own
// AVPs and messages are rendered: @inherits sections are not written,
// so inherited AVPs and messages are not reproduced, and an output
// whose messages reference an inherited AVP fails to re-load. It is
// used for diffing a loaded dictionary against its source and for the
// cache-sanity check in cmd/dia-gencache.
func (app *Application) String() string {
	var b strings.Builder

	if app.ID != nil {
		fmt.Fprintf(&b, "@id\t%d\n", *app.ID)
	}
	if app.Name != "" && app.Version != "" {
		fmt.Fprintf(&b, "@name\t%s\t%s\n\n", app.Name, app.Version)
	} else if app.Name != "" {
		fmt.Fprintf(&b, "@name\t%s\n\n", app.Name)
	}
	if app.DefaultVendorID != nil {
		fmt.Fprintf(&b, "@vendor\t%d\t%s\n\n", *app.DefaultVendorID, app.DefaultVendorName)
	}

	if len(app.Avps) > 0 {
		b.WriteString("@avp_types\n")
		sorted := append([]*Avp(nil), app.Avps...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })
		for _, a := range sorted {
			b.WriteString(a.ToType())
			b.WriteString("\n")
		}
		b.WriteString("\n")

		byVendor := map[uint32][]string{}
		var vendorOrder []uint32
		for _, a := range app.Avps {
			if !a.VendorSpecific {
				continue
			}
			if _, ok := byVendor[a.VendorID]; !ok {
				vendorOrder = append(vendorOrder, a.VendorID)
			}
			byVendor[a.VendorID] = append(byVendor[a.VendorID], a.Name)
		}
		sort.Slice(vendorOrder, func(i, j int) bool { return vendorOrder[i] < vendorOrder[j] })
		for _, v := range vendorOrder {
			fmt.Fprintf(&b, "@avp_vendor_id\t%d\n", v)
			for _, name := range byVendor[v] {
				b.WriteString(name)
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	if len(app.Msgs) > 0 {
		b.WriteString("\n@messages\n")
		for _, m := range app.Msgs {
			b.WriteString(m.String())
			b.WriteString("\n")
		}
	}

	hasGrouped := false
	for _, a := range app.Avps {
		if a.DataType == DataTypeGrouped {
			hasGrouped = true
			break
		}
	}
	if hasGrouped {
		b.WriteString("@grouped\n")
		for _, a := range app.Avps {
			if a.DataType != DataTypeGrouped {
				continue
			}
			fmt.Fprintf(&b, "%s ::= <AVP Header: %d>\n", a.Name, a.Code)
			for _, qa := range a.Grouped {
				b.WriteString(qa.String())
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	for _, a := range app.Avps {
		if a.DataType != DataTypeEnumerated {
			continue
		}
		fmt.Fprintf(&b, "@enum %s\n", a.Name)
		values := make([]int64, 0, len(a.ValueToDescription))
		for v := range a.ValueToDescription {
			values = append(values, v)
		}
		sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
		for _, v := range values {
			fmt.Fprintf(&b, "%-45s\t%d\n", strings.ToUpper(a.ValueToDescription[v]), v)
		}
		b.WriteString("\n")
	}

	return b.String()
}
