package main

import (
	"fmt"
	"strings"

	"github.com/blorticus-go/diafuzzer/diameter"
	"github.com/blorticus-go/diafuzzer/tagger"
)

// renderMessage renders msg as an indented tree in its own layout
// (name with app_id/hbh/ete, then one `name = "data"` line per leaf
// AVP), not diameter.Message.String()'s layout; it uses a tagged
// message's or AVP's dictionary name in place of its bare code
// wherever tagging (via the tagger package) found one.
func renderMessage(msg *diameter.Message) string {
	var b strings.Builder

	name := fmt.Sprintf("code=%d", msg.Code)
	if model := tagger.ModelOf(msg); model != nil {
		name = model.Name
	}

	fmt.Fprintf(&b, "%s(app_id=%d, hbh=%d, ete=%d) {\n", name, msg.AppID, msg.HopByHopID, msg.EndToEndID)
	for _, avp := range msg.Avps {
		renderAvp(&b, avp, 1)
	}
	b.WriteString("}")
	return b.String()
}

func renderAvp(b *strings.Builder, avp *diameter.AVP, depth int) {
	pad := strings.Repeat("  ", depth)

	name := fmt.Sprintf("code=%d", avp.Code)
	if model := tagger.ModelAvpOf(avp); model != nil {
		name = model.Name
	}

	if len(avp.Avps) > 0 {
		fmt.Fprintf(b, "%s%s {\n", pad, name)
		for _, child := range avp.Avps {
			renderAvp(b, child, depth+1)
		}
		fmt.Fprintf(b, "%s}\n", pad)
		return
	}

	fmt.Fprintf(b, "%s%s = %q\n", pad, name, string(avp.Data))
}
