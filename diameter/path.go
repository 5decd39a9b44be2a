package diameter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// A path selects one AVP within a Message tree. Its grammar is a
// sequence of slash-separated steps, each "code=<u32>[,vendor=<u32>][[<index>]]":
// the vendor clause defaults to 0 (non-vendor-specific) and the index
// clause defaults to 0 (the first match among siblings sharing the
// same code/vendor). The empty path ("" or "/") selects the message
// itself and is only valid where an operation documents it.
var pathStepPattern = regexp.MustCompile(`^code=(\d+)(?:,vendor=(\d+))?(?:\[(\d+)\])?$`)

type pathSelector struct {
	code   uint32
	vendor uint32
	index  int
}

func parsePathStep(step string) (pathSelector, error) {
	m := pathStepPattern.FindStringSubmatch(step)
	if m == nil {
		return pathSelector{}, newPathError(step, "step does not match code=<n>[,vendor=<n>][[<index>]]")
	}

	code, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return pathSelector{}, newPathError(step, "code is not a valid uint32")
	}

	var vendor uint64
	if m[2] != "" {
		vendor, err = strconv.ParseUint(m[2], 10, 32)
		if err != nil {
			return pathSelector{}, newPathError(step, "vendor is not a valid uint32")
		}
	}

	var index uint64
	if m[3] != "" {
		index, err = strconv.ParseUint(m[3], 10, 64)
		if err != nil {
			return pathSelector{}, newPathError(step, "index is not a valid integer")
		}
	}

	return pathSelector{code: uint32(code), vendor: uint32(vendor), index: int(index)}, nil
}

func splitPath(path string) ([]string, error) {
	if path == "" || path == "/" {
		return nil, nil
	}
	if !strings.HasPrefix(path, "/") {
		return nil, newPathError(path, "path must start with /")
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/"), nil
}

func selectMatching(avps []*AVP, sel pathSelector) []*AVP {
	var out []*AVP
	for _, a := range avps {
		if a.Code == sel.code && a.VendorID == sel.vendor {
			out = append(out, a)
		}
	}
	return out
}

func selectOne(avps []*AVP, sel pathSelector) (*AVP, error) {
	matches := selectMatching(avps, sel)
	if sel.index < 0 || sel.index >= len(matches) {
		return nil, newPathError("", fmt.Sprintf("no AVP matching code=%d,vendor=%d at index %d (found %d)", sel.code, sel.vendor, sel.index, len(matches)))
	}
	return matches[sel.index], nil
}

// EvalPath resolves path against the message's top-level AVPs and
// returns the AVP it selects. An empty path is invalid here: a
// message is not itself an AVP.
func (m *Message) EvalPath(path string) (*AVP, error) {
	steps, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		return nil, newPathError(path, "path selects the message itself, not an AVP")
	}

	sel, err := parsePathStep(steps[0])
	if err != nil {
		return nil, err
	}
	avp, err := selectOne(m.Avps, sel)
	if err != nil {
		return nil, err
	}
	return avp.evalRemaining(steps[1:])
}

func (avp *AVP) evalRemaining(steps []string) (*AVP, error) {
	if len(steps) == 0 {
		return avp, nil
	}
	sel, err := parsePathStep(steps[0])
	if err != nil {
		return nil, err
	}
	child, err := selectOne(avp.Avps, sel)
	if err != nil {
		return nil, err
	}
	return child.evalRemaining(steps[1:])
}

// ModifyValue replaces the value of the AVP at path with value,
// discarding any nested Avps it held, and unpins the Length of every
// AVP on the path from the message down to the target (and the
// message's own Length), forcing them all to re-encode at their new
// natural size.
func (m *Message) ModifyValue(path string, value []byte) error {
	steps, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return newPathError(path, "path selects the message itself, not an AVP")
	}

	m.Length = nil

	sel, err := parsePathStep(steps[0])
	if err != nil {
		return err
	}
	avp, err := selectOne(m.Avps, sel)
	if err != nil {
		return err
	}
	return avp.modifyRemaining(steps[1:], value)
}

func (avp *AVP) modifyRemaining(steps []string, value []byte) error {
	avp.Length = nil
	if len(steps) == 0 {
		avp.Data = value
		avp.Avps = nil
		return nil
	}
	sel, err := parsePathStep(steps[0])
	if err != nil {
		return err
	}
	child, err := selectOne(avp.Avps, sel)
	if err != nil {
		return err
	}
	return child.modifyRemaining(steps[1:], value)
}

// SuppressAvps removes every AVP matching the final step of path from
// its parent (the message if path has one step, an AVP otherwise). It
// unpins the Length of every node it descends through.
func (m *Message) SuppressAvps(path string) error {
	steps, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return newPathError(path, "path must select at least one step to suppress")
	}

	m.Length = nil

	if len(steps) == 1 {
		sel, err := parsePathStep(steps[0])
		if err != nil {
			return err
		}
		m.Avps = removeMatching(m.Avps, sel)
		return nil
	}

	sel, err := parsePathStep(steps[0])
	if err != nil {
		return err
	}
	avp, err := selectOne(m.Avps, sel)
	if err != nil {
		return err
	}
	return avp.suppressRemaining(steps[1:])
}

func (avp *AVP) suppressRemaining(steps []string) error {
	avp.Length = nil

	if len(steps) == 1 {
		sel, err := parsePathStep(steps[0])
		if err != nil {
			return err
		}
		avp.Avps = removeMatching(avp.Avps, sel)
		return nil
	}

	sel, err := parsePathStep(steps[0])
	if err != nil {
		return err
	}
	child, err := selectOne(avp.Avps, sel)
	if err != nil {
		return err
	}
	return child.suppressRemaining(steps[1:])
}

func removeMatching(avps []*AVP, sel pathSelector) []*AVP {
	out := avps[:0:0]
	for _, a := range avps {
		if a.Code == sel.code && a.VendorID == sel.vendor {
			continue
		}
		out = append(out, a)
	}
	return out
}

// OverflowAvps ensures that the parent selected by all but the final
// step of path holds at least count AVPs matching the final step's
// code/vendor, appending clones of the last existing match as needed.
// It is an error if the final step matches no existing AVP at all,
// since there would be nothing to clone.
func (m *Message) OverflowAvps(path string, count int) error {
	steps, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		return newPathError(path, "path must select at least one step to overflow")
	}

	m.Length = nil

	if len(steps) == 1 {
		sel, err := parsePathStep(steps[0])
		if err != nil {
			return err
		}
		avps, err := overflow(m.Avps, sel, count)
		if err != nil {
			return err
		}
		m.Avps = avps
		return nil
	}

	sel, err := parsePathStep(steps[0])
	if err != nil {
		return err
	}
	avp, err := selectOne(m.Avps, sel)
	if err != nil {
		return err
	}
	return avp.overflowRemaining(steps[1:], count)
}

func (avp *AVP) overflowRemaining(steps []string, count int) error {
	avp.Length = nil

	if len(steps) == 1 {
		sel, err := parsePathStep(steps[0])
		if err != nil {
			return err
		}
		children, err := overflow(avp.Avps, sel, count)
		if err != nil {
			return err
		}
		avp.Avps = children
		return nil
	}

	sel, err := parsePathStep(steps[0])
	if err != nil {
		return err
	}
	child, err := selectOne(avp.Avps, sel)
	if err != nil {
		return err
	}
	return child.overflowRemaining(steps[1:], count)
}

func overflow(avps []*AVP, sel pathSelector, count int) ([]*AVP, error) {
	matches := selectMatching(avps, sel)
	if len(matches) == 0 {
		return nil, newPathError("", fmt.Sprintf("no AVP matching code=%d,vendor=%d to clone for overflow", sel.code, sel.vendor))
	}
	last := matches[len(matches)-1]
	out := avps
	for i := len(matches); i < count; i++ {
		out = append(out, last.Clone())
	}
	return out, nil
}

// InsertAvp appends avp as a new child of the AVP or message selected
// by path (the empty path selects the message itself), unpinning
// Length along the way.
func (m *Message) InsertAvp(path string, avp *AVP) error {
	steps, err := splitPath(path)
	if err != nil {
		return err
	}

	m.Length = nil

	if len(steps) == 0 {
		m.Avps = append(m.Avps, avp)
		return nil
	}

	sel, err := parsePathStep(steps[0])
	if err != nil {
		return err
	}
	parent, err := selectOne(m.Avps, sel)
	if err != nil {
		return err
	}
	return parent.insertRemaining(steps[1:], avp)
}

func (avp *AVP) insertRemaining(steps []string, child *AVP) error {
	avp.Length = nil

	if len(steps) == 0 {
		avp.Avps = append(avp.Avps, child)
		return nil
	}

	sel, err := parsePathStep(steps[0])
	if err != nil {
		return err
	}
	next, err := selectOne(avp.Avps, sel)
	if err != nil {
		return err
	}
	return next.insertRemaining(steps[1:], child)
}

// ComputePath returns the path that selects avp among the message's
// top-level AVPs, including an index suffix only when more than one
// sibling shares avp's code/vendor. It is an error if avp is not
// actually one of m.Avps (by identity).
func (m *Message) ComputePath(avp *AVP) (string, error) {
	return computePathAmong(m.Avps, avp)
}

// ComputePath returns the path step that selects child among this
// AVP's own children, by the same rule as Message.ComputePath.
func (avp *AVP) ComputePath(child *AVP) (string, error) {
	return computePathAmong(avp.Avps, child)
}

func computePathAmong(siblings []*AVP, target *AVP) (string, error) {
	var matches []*AVP
	targetIndex := -1

	for _, s := range siblings {
		if s.Code != target.Code || s.VendorID != target.VendorID {
			continue
		}
		if s == target {
			targetIndex = len(matches)
		}
		matches = append(matches, s)
	}

	if targetIndex == -1 {
		return "", newPathError("", fmt.Sprintf("AVP code=%d,vendor=%d is not among the siblings searched", target.Code, target.VendorID))
	}

	step := fmt.Sprintf("code=%d", target.Code)
	if target.VendorID != 0 {
		step = fmt.Sprintf("%s,vendor=%d", step, target.VendorID)
	}
	if len(matches) > 1 {
		step = fmt.Sprintf("%s[%d]", step, targetIndex)
	}
	return "/" + step, nil
}
