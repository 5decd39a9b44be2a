package diameter

import "fmt"

// String renders the message header and its top-level AVPs as an
// indented tree, in the style of dictionary.Msg.String()'s CCF
// rendering.
func (m *Message) String() string {
	var flags []string
	if m.IsRequest() {
		flags = append(flags, "R")
	}
	if m.IsProxiable() {
		flags = append(flags, "P")
	}
	if m.IsError() {
		flags = append(flags, "E")
	}
	if m.IsPotentiallyRetransmitted() {
		flags = append(flags, "T")
	}

	s := fmt.Sprintf("Msg(code=%d, app_id=%d", m.Code, m.AppID)
	for _, f := range flags {
		s += ", " + f
	}
	s += fmt.Sprintf(", hbh=%d, ete=%d) {\n", m.HopByHopID, m.EndToEndID)
	for _, avp := range m.Avps {
		s += avp.indentedString(1) + "\n"
	}
	s += "}"
	return s
}
