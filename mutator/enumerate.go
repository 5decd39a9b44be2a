package mutator

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/blorticus-go/diafuzzer/dictionary"
	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/tagger"
)

type avpKey struct {
	code   uint32
	vendor uint32
}

func groupByCode(avps []*diameter.AVP) map[avpKey][]*diameter.AVP {
	groups := make(map[avpKey][]*diameter.AVP, len(avps))
	for _, a := range avps {
		k := avpKey{a.Code, a.VendorID}
		groups[k] = append(groups[k], a)
	}
	return groups
}

// pathStepFor renders the single path step that selects a among its
// siblings: an index suffix is only included when more than one
// sibling shares a's code/vendor, matching diameter.ComputePath.
func pathStepFor(a *diameter.AVP, groups map[avpKey][]*diameter.AVP) string {
	step := fmt.Sprintf("code=%d", a.Code)
	if a.VendorID != 0 {
		step = fmt.Sprintf("%s,vendor=%d", step, a.VendorID)
	}

	siblings := groups[avpKey{a.Code, a.VendorID}]
	if len(siblings) != 1 {
		step = fmt.Sprintf("%s[%d]", step, indexOfIdentity(siblings, a))
	}
	return step
}

func indexOfIdentity(avps []*diameter.AVP, target *diameter.AVP) int {
	for i, a := range avps {
		if a == target {
			return i
		}
	}
	return -1
}

type pathedAvp struct {
	path string
	avp  *diameter.AVP
}

// unfoldAvps walks msg's full AVP tree, depth-first, assigning each
// AVP (top-level or nested within a Grouped AVP) the full path that
// selects it from the message.
func unfoldAvps(msg *diameter.Message) []pathedAvp {
	var nodes []pathedAvp

	var explode func(a *diameter.AVP, path string)
	explode = func(a *diameter.AVP, path string) {
		nodes = append(nodes, pathedAvp{path: path, avp: a})

		if len(a.Avps) == 0 {
			return
		}
		groups := groupByCode(a.Avps)
		for _, child := range a.Avps {
			explode(child, path+"/"+pathStepFor(child, groups))
		}
	}

	groups := groupByCode(msg.Avps)
	for _, a := range msg.Avps {
		explode(a, "/"+pathStepFor(a, groups))
	}
	return nodes
}

type groupedVariant struct {
	avp         *diameter.AVP
	count       int
	description string
}

// groupedVariants yields the structural absent/overpresent variants
// for every AVP in avps that was tagged with a qualified-AVP slot: the
// slot is absent, present 64 times regardless of its declared max, and
// (when the slot declares a max) present one more time than allowed.
func groupedVariants(avps []*diameter.AVP) []groupedVariant {
	var out []groupedVariant
	for _, a := range avps {
		qa := tagger.QualifiedAvpOf(a)
		if qa == nil {
			continue
		}

		out = append(out, groupedVariant{avp: a, count: 0, description: "absent"})
		out = append(out, groupedVariant{avp: a, count: 64, description: "present 64 times"})
		if qa.Max != nil {
			out = append(out, groupedVariant{avp: a, count: *qa.Max + 1, description: "present more than max allowed"})
		}
	}
	return out
}

type valueVariant struct {
	data        []byte
	description string
}

// nonGroupedVariants yields the value-mutation payloads for a as
// determined by its tagged model datatype (datatype-specific attacks
// for Enumerated and UTF8String, on top of the generic overflow and
// format-specifier attacks every datatype gets).
func nonGroupedVariants(a *diameter.AVP) []valueVariant {
	var out []valueVariant

	if model := tagger.ModelAvpOf(a); model != nil {
		switch model.DataType {
		case dictionary.DataTypeEnumerated:
			lo, hi := enumRange(model)
			out = append(out, valueVariant{packInt32(lo - 1), "Enumerated lower than allowed"})
			out = append(out, valueVariant{packInt32(hi + 1), "Enumerated bigger than allowed"})

		case dictionary.DataTypeUTF8String:
			for _, bad := range [][]byte{{0x80}, {0xbf}, bytes.Repeat([]byte{0x80}, 128)} {
				out = append(out, valueVariant{bad, "UTF8String continuations"})
			}
			out = append(out, valueVariant{[]byte{0xc0, ' '}, "UTF8String lonely start"})
			for _, bad := range [][]byte{{0xfe}, {0xff}} {
				out = append(out, valueVariant{bad, "UTF8String impossible bytes"})
			}
			out = append(out, valueVariant{[]byte{0xc0, 0xaf}, "UTF8String overlong"})
			for _, bad := range [][]byte{{0xef, 0xbf, 0xbe}, {0xef, 0xbf, 0xbf}} {
				out = append(out, valueVariant{bad, "UTF8String non-characters in 16bits"})
			}
		}
	}

	out = append(out, valueVariant{[]byte{}, "empty value"})

	for _, length := range []int{3, 128 + 64, 8192 + 64} {
		out = append(out, valueVariant{bytes.Repeat([]byte{0xfe}, length), fmt.Sprintf("Generic overflow with %d bytes", length)})
	}

	for _, format := range []string{"%n", "%-1$n", "%4096$n"} {
		out = append(out, valueVariant{bytes.Repeat([]byte(format), 1024), fmt.Sprintf("Generic overflow with format specifier %s", format)})
	}

	return out
}

func enumRange(model *dictionary.Avp) (lo, hi int64) {
	first := true
	for v := range model.ValueToDescription {
		if first || v < lo {
			lo = v
		}
		if first || v > hi {
			hi = v
		}
		first = false
	}
	return
}

func packInt32(v int64) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(int32(v)))
	return buf
}

// Enumerate builds the deterministic list of mutation descriptors for
// a captured baseline sequence: outgoing messages in order, then
// within each message the top-level structural mutations, one set per
// tagged top-level AVP in the order those AVPs appear in the message
// (not CCF order; a CCF slot with no AVP in the message yields none),
// then a depth-first pass of per-leaf value mutations (with a
// self-stacking descriptor for every Grouped AVP whose model allows
// it). Re-running Enumerate on the same captured sequence yields an
// identical list.
func Enumerate(captured []CapturedMessage) []*Descriptor {
	var descriptors []*Descriptor
	sent := 0

	for _, c := range captured {
		if !c.IsOutgoing {
			continue
		}
		msg := c.Message
		anchor := Anchor{OutgoingIndex: sent, Code: msg.Code, IsRequest: msg.IsRequest()}

		topGroups := groupByCode(msg.Avps)
		for _, gv := range groupedVariants(msg.Avps) {
			path := "/" + pathStepFor(gv.avp, topGroups)
			descriptors = append(descriptors, structuralDescriptor(anchor, gv, path))
		}

		for _, node := range unfoldAvps(msg) {
			model := tagger.ModelAvpOf(node.avp)
			if model == nil {
				continue
			}

			if model.DataType == dictionary.DataTypeGrouped {
				childGroups := groupByCode(node.avp.Avps)
				for _, gv := range groupedVariants(node.avp.Avps) {
					path := node.path + "/" + pathStepFor(gv.avp, childGroups)
					descriptors = append(descriptors, structuralDescriptor(anchor, gv, path))
				}

				if model.AllowsStacking() {
					data := node.avp.OverflowStacking(diameter.DefaultStackingDepth)
					descriptors = append(descriptors, &Descriptor{
						Anchor:      anchor,
						Description: fmt.Sprintf("%s self-stacked -> %d", model.Name, len(data)),
						Tag:         SetValue,
						Path:        node.path,
						Value:       data,
					})
				}
				continue
			}

			for _, vv := range nonGroupedVariants(node.avp) {
				descriptors = append(descriptors, &Descriptor{
					Anchor:      anchor,
					Description: fmt.Sprintf("%s %s", model.Name, vv.description),
					Tag:         SetValue,
					Path:        node.path,
					Value:       vv.data,
				})
			}
		}

		sent++
	}

	return descriptors
}

func structuralDescriptor(anchor Anchor, gv groupedVariant, path string) *Descriptor {
	if gv.count == 0 {
		return &Descriptor{Anchor: anchor, Description: gv.description, Tag: Absent, Path: path}
	}
	return &Descriptor{Anchor: anchor, Description: gv.description, Tag: Overpresent, Path: path, Count: gv.count}
}
