package tagger

import (
	"fmt"

	"github.com/blorticus-go/diafuzzer/dictionary"
	"github.com/blorticus-go/diafuzzer/diameter"
)

// Tag resolves msg against dir: it sets msg.Model to the matching
// dictionary.Msg and recursively annotates every AVP (top-level and
// nested within Grouped AVPs) with ModelAvp/QualifiedAvp references.
//
// An AVP's QualifiedAvp is the CCF slot of its parent (message or
// Grouped AVP) it filled — nil if the parent's CCF has no slot
// (including no wildcard "AVP" slot) that could have matched it.
// ModelAvp is the dictionary.Avp describing it: the QualifiedAvp's own
// Avp when the slot names a specific AVP, or the directory-wide
// (vendor, code) lookup otherwise — so an AVP arriving in a message's
// wildcard slot is still typed when the directory knows it by vendor
// and code, even though the message's CCF didn't name it specifically.
func Tag(msg *diameter.Message, dir *dictionary.Directory) error {
	models, err := dir.FindMsgs(msg.AppID, msg.Code, msg.IsRequest())
	if err != nil {
		return &TagError{Reason: err.Error()}
	}
	if len(models) == 0 {
		return &TagError{Reason: fmt.Sprintf("no command defined for app_id=%d code=%d request=%v", msg.AppID, msg.Code, msg.IsRequest())}
	}
	if len(models) > 1 {
		return &TagError{Reason: fmt.Sprintf("multiple commands defined for app_id=%d code=%d request=%v", msg.AppID, msg.Code, msg.IsRequest())}
	}

	model := models[0]
	msg.Model = model

	tagAvps(msg.Avps, model.Avps, dir)
	return nil
}

func tagAvps(wireAvps []*diameter.AVP, modelQavps []*dictionary.QualifiedAvp, dir *dictionary.Directory) {
	for _, wire := range wireAvps {
		qa := findMatchingQualifiedAvp(wire, modelQavps)
		if qa != nil {
			wire.QualifiedAvp = qa
		} else {
			wire.QualifiedAvp = nil
		}

		var model *dictionary.Avp
		if qa != nil {
			model = qa.Avp
		}
		if model == nil {
			model = findMatchingModelAvp(wire, dir)
		}
		if model != nil {
			wire.ModelAvp = model
		} else {
			wire.ModelAvp = nil
		}

		if model != nil && model.DataType == dictionary.DataTypeGrouped {
			tagAvps(wire.Avps, model.Grouped, dir)
		}
	}
}

func findMatchingQualifiedAvp(wire *diameter.AVP, modelQavps []*dictionary.QualifiedAvp) *dictionary.QualifiedAvp {
	var wildcard *dictionary.QualifiedAvp
	for _, qa := range modelQavps {
		if qa.Name == "AVP" {
			wildcard = qa
		}
	}

	for _, qa := range modelQavps {
		if qa.Avp != nil && qa.Avp.VendorID == wire.VendorID && qa.Avp.Code == wire.Code {
			return qa
		}
	}

	if wildcard != nil {
		return wildcard
	}
	return nil
}

func findMatchingModelAvp(wire *diameter.AVP, dir *dictionary.Directory) *dictionary.Avp {
	matches := dir.FindAvps(wire.VendorID, wire.Code)
	if len(matches) == 0 {
		return nil
	}
	return matches[0]
}

// ModelAvpOf returns the dictionary.Avp a Tag call attached to avp, or
// nil if the AVP has not been tagged or was left untyped.
func ModelAvpOf(avp *diameter.AVP) *dictionary.Avp {
	model, _ := avp.ModelAvp.(*dictionary.Avp)
	return model
}

// QualifiedAvpOf returns the dictionary.QualifiedAvp a Tag call
// attached to avp, or nil if the AVP has not been tagged or matched no
// CCF slot.
func QualifiedAvpOf(avp *diameter.AVP) *dictionary.QualifiedAvp {
	qa, _ := avp.QualifiedAvp.(*dictionary.QualifiedAvp)
	return qa
}

// ModelOf returns the dictionary.Msg a Tag call attached to msg, or
// nil if the message has not been tagged.
func ModelOf(msg *diameter.Message) *dictionary.Msg {
	model, _ := msg.Model.(*dictionary.Msg)
	return model
}
