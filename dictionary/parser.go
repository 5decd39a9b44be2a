package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// DefaultSearchPath is consulted by LoadApplication to resolve
// @inherits module references when no explicit search path is given.
var DefaultSearchPath = []string{"./specs"}

var (
	qualifiedAvpPattern = regexp.MustCompile(`^\s*(\d+)?\s*(\*)?\s*(\d+)?\s*([\[\{<])\s*([a-zA-Z0-9-]+)\s*([\]\}>])\s*$`)

	// RFC 6733's own CCF examples put the command name outside the
	// angle brackets (CER/CEA/DWR/... in the RFC text itself do this),
	// so that's the form accepted here rather than the letter of the
	// ABNF.
	ccfHeaderPattern = regexp.MustCompile(`\s*([a-zA-Z0-9-]+)\s*::\s*=\s*<\s*Diameter[- ]Header\s*:\s*(\d+)((?:\s*,\s*(?:REQ|PXY|ERR))*)(?:\s*,\s*(\d+))?\s*>`)
	ccfFlagPattern   = regexp.MustCompile(`\s*,\s*(REQ|PXY|ERR)`)

	groupedHeaderPattern = regexp.MustCompile(`\s*([a-zA-Z0-9-]+)\s*::\s*=\s*<\s*AVP[- ][Hh]eader\s*:\s*(\d+)(?:\s*,?\s*(\d+))?\s*>`)

	sectionPattern = regexp.MustCompile(`(?m)^@(\w+)((?:[ \t]+[a-zA-Z0-9_-]+)*)[ \t]*$([^@]*)`)
	sectionArgPattern = regexp.MustCompile(`[a-zA-Z0-9_-]+`)
)

// tokenize strips trailing ";..." comments, trailing line endings, and
// blank lines.
func tokenize(whole string) []string {
	var tokens []string
	for _, l := range strings.Split(whole, "\n") {
		l = strings.TrimRight(l, "\r\n")
		if i := strings.IndexByte(l, ';'); i >= 0 {
			l = l[:i]
		}
		if strings.TrimSpace(l) != "" {
			tokens = append(tokens, l)
		}
	}
	return tokens
}

func parseQualifiedAvpLine(l string) (*QualifiedAvp, bool) {
	m := qualifiedAvpPattern.FindStringSubmatch(l)
	if m == nil {
		return nil, false
	}

	minStr, timesStr, maxStr, startDelim, name, endDelim := m[1], m[2], m[3], m[4], m[5], m[6]

	var semantics string
	switch startDelim + endDelim {
	case "<>":
		semantics = "fixed"
	case "[]":
		semantics = "optional"
	case "{}":
		semantics = "required"
	default:
		return nil, false
	}

	qa := &QualifiedAvp{Name: name, Semantics: semantics, Multiple: timesStr == "*"}
	if minStr != "" {
		n, _ := strconv.Atoi(minStr)
		qa.Min = &n
	}
	if maxStr != "" {
		n, _ := strconv.Atoi(maxStr)
		qa.Max = &n
	}
	return qa, true
}

type ccfHeader struct {
	name          string
	code          uint32
	r, p, e       bool
	appID         uint32
}

func parseCCFHeader(l string) (*ccfHeader, bool) {
	m := ccfHeaderPattern.FindStringSubmatch(l)
	if m == nil {
		return nil, false
	}

	code, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return nil, false
	}

	h := &ccfHeader{name: m[1], code: uint32(code)}
	for _, fm := range ccfFlagPattern.FindAllStringSubmatch(m[3], -1) {
		switch fm[1] {
		case "REQ":
			h.r = true
		case "PXY":
			h.p = true
		case "ERR":
			h.e = true
		}
	}
	if m[4] != "" {
		appID, err := strconv.ParseUint(m[4], 10, 32)
		if err == nil {
			h.appID = uint32(appID)
		}
	}
	return h, true
}

type groupedHeader struct {
	name      string
	code      uint32
	vendorID  uint32
}

func parseGroupedHeader(l string) (*groupedHeader, bool) {
	m := groupedHeaderPattern.FindStringSubmatch(l)
	if m == nil {
		return nil, false
	}
	code, err := strconv.ParseUint(m[2], 10, 32)
	if err != nil {
		return nil, false
	}
	h := &groupedHeader{name: m[1], code: uint32(code)}
	if m[3] != "" {
		v, err := strconv.ParseUint(m[3], 10, 32)
		if err == nil {
			h.vendorID = uint32(v)
		}
	}
	return h, true
}

type messageBlock struct {
	header *ccfHeader
	avps   []*QualifiedAvp
}

// parseMessageBlocks parses a sequence of "hdr qual_avp*" blocks, the
// grammar shared by @messages (command headers) and @grouped
// (AVP headers) sections, specialized here to command headers.
func parseMessageBlocks(lines []string) ([]messageBlock, error) {
	var blocks []messageBlock
	var current *messageBlock

	for _, l := range lines {
		if current == nil {
			h, ok := parseCCFHeader(l)
			if !ok {
				return nil, newError(ErrMalformedCCFLine, l)
			}
			current = &messageBlock{header: h}
			continue
		}

		if qa, ok := parseQualifiedAvpLine(l); ok {
			current.avps = append(current.avps, qa)
			continue
		}

		h, ok := parseCCFHeader(l)
		if !ok {
			return nil, newError(ErrMalformedCCFLine, l)
		}
		blocks = append(blocks, *current)
		current = &messageBlock{header: h}
	}

	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks, nil
}

type groupedBlock struct {
	header *groupedHeader
	avps   []*QualifiedAvp
}

func parseGroupedBlocks(lines []string) ([]groupedBlock, error) {
	var blocks []groupedBlock
	var current *groupedBlock

	for _, l := range lines {
		if current == nil {
			h, ok := parseGroupedHeader(l)
			if !ok {
				return nil, newError(ErrMalformedCCFLine, l)
			}
			current = &groupedBlock{header: h}
			continue
		}

		if qa, ok := parseQualifiedAvpLine(l); ok {
			current.avps = append(current.avps, qa)
			continue
		}

		h, ok := parseGroupedHeader(l)
		if !ok {
			return nil, newError(ErrMalformedCCFLine, l)
		}
		blocks = append(blocks, *current)
		current = &groupedBlock{header: h}
	}

	if current != nil {
		blocks = append(blocks, *current)
	}
	return blocks, nil
}

type inheritRef struct {
	moduleName string
	avpNames   []string
}

type vendorAssignment struct {
	vendorID uint32
	avpNames []string
}

type enumDef struct {
	avpName string
	values  [][2]string
}

// An Application is one loaded .dia module: its own AVP/message/
// grouped/enum definitions plus whatever it pulled in via @inherits.
type Application struct {
	ID                *uint32
	Name              string
	Version           string
	DefaultVendorID   *uint32
	DefaultVendorName string

	Avps          []*Avp
	InheritedAvps []*Avp
	Msgs          []*Msg
	InheritedMsgs []*Msg

	avpVendors []vendorAssignment
	inherits   []inheritRef
	enums      []enumDef
	grouped    []groupedBlock
}

// FindAvps returns every AVP (own or inherited) satisfying f.
func (app *Application) FindAvps(f func(*Avp) bool) []*Avp {
	var out []*Avp
	for _, a := range app.Avps {
		if f(a) {
			out = append(out, a)
		}
	}
	for _, a := range app.InheritedAvps {
		if f(a) {
			out = append(out, a)
		}
	}
	return out
}

// FindMsgs returns every message (own or inherited) satisfying f.
func (app *Application) FindMsgs(f func(*Msg) bool) []*Msg {
	var out []*Msg
	for _, m := range app.Msgs {
		if f(m) {
			out = append(out, m)
		}
	}
	for _, m := range app.InheritedMsgs {
		if f(m) {
			out = append(out, m)
		}
	}
	return out
}

type loadOptions struct {
	searchPath []string
	logger     *zap.SugaredLogger
}

// A LoadOption customizes LoadApplication.
type LoadOption func(*loadOptions)

// WithSearchPath overrides DefaultSearchPath for resolving @inherits
// module references.
func WithSearchPath(paths []string) LoadOption {
	return func(o *loadOptions) { o.searchPath = paths }
}

// WithLogger attaches a logger for load diagnostics (ignored sections,
// inherited-module resolution). Defaults to a no-op logger.
func WithLogger(l *zap.SugaredLogger) LoadOption {
	return func(o *loadOptions) { o.logger = l }
}

// LoadApplication parses the .dia file at path, resolving @inherits
// references against the search path (DefaultSearchPath unless
// overridden), and returns the fully resolved Application.
func LoadApplication(path string, opts ...LoadOption) (*Application, error) {
	o := &loadOptions{searchPath: DefaultSearchPath, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(o)
	}
	return loadApplication(path, o, map[string]*Application{})
}

func loadApplication(path string, o *loadOptions, cache map[string]*Application) (*Application, error) {
	if app, ok := cache[path]; ok {
		return app, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(ErrModuleReadFailed, path, err)
	}

	app := &Application{}
	cache[path] = app

	for _, m := range sectionPattern.FindAllStringSubmatch(string(raw), -1) {
		name, argsField, content := m[1], m[2], m[3]
		args := sectionArgPattern.FindAllString(argsField, -1)

		switch name {
		case "id":
			if app.ID != nil {
				return nil, newError(ErrInvalidSectionOccurrence, "@id")
			}
			if len(args) != 1 {
				return nil, newError(ErrInvalidSectionArgument, "@id")
			}
			id, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return nil, wrapError(ErrInvalidSectionArgument, "@id", err)
			}
			v := uint32(id)
			app.ID = &v

		case "name":
			if app.Name != "" {
				return nil, newError(ErrInvalidSectionOccurrence, "@name")
			}
			if len(args) != 1 && len(args) != 2 {
				return nil, newError(ErrInvalidSectionArgument, "@name")
			}
			app.Name = args[0]
			if len(args) == 2 {
				app.Version = args[1]
			}

		case "vendor":
			if app.DefaultVendorID != nil {
				return nil, newError(ErrInvalidSectionOccurrence, "@vendor")
			}
			if len(args) != 2 {
				return nil, newError(ErrInvalidSectionArgument, "@vendor")
			}
			id, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return nil, wrapError(ErrInvalidSectionArgument, "@vendor", err)
			}
			v := uint32(id)
			app.DefaultVendorID = &v
			app.DefaultVendorName = args[1]

		case "avp_vendor_id":
			if len(args) != 1 {
				return nil, newError(ErrInvalidSectionArgument, "@avp_vendor_id")
			}
			id, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return nil, wrapError(ErrInvalidSectionArgument, "@avp_vendor_id", err)
			}
			app.avpVendors = append(app.avpVendors, vendorAssignment{vendorID: uint32(id), avpNames: tokenize(content)})

		case "inherits":
			if len(args) != 1 {
				return nil, newError(ErrInvalidSectionArgument, "@inherits")
			}
			app.inherits = append(app.inherits, inheritRef{moduleName: args[0], avpNames: tokenize(content)})

		case "avp_types":
			for _, l := range tokenize(content) {
				fields := strings.Fields(l)
				if len(fields) != 4 {
					return nil, newError(ErrAVPTypeInvalidLine, l)
				}
				avpName, codeStr, typeName, flags := fields[0], fields[1], fields[2], fields[3]

				if len(app.FindAvps(func(a *Avp) bool { return a.Code == mustParseCode(codeStr) })) > 0 {
					return nil, newError(ErrAVPDefinedMultipleTimes, codeStr)
				}

				dataType, ok := dataTypeFromName(typeName)
				if !ok {
					return nil, newError(ErrInvalidAVPType, typeName)
				}

				a, err := newAvp(avpName, mustParseCode(codeStr), dataType, flags)
				if err != nil {
					return nil, err
				}
				app.Avps = append(app.Avps, a)
			}

		case "messages":
			blocks, err := parseMessageBlocks(tokenize(content))
			if err != nil {
				return nil, err
			}
			for _, b := range blocks {
				if len(app.FindMsgs(func(m *Msg) bool { return m.Name == b.header.name })) > 0 {
					return nil, newError(ErrMsgDefinedMultipleTimes, b.header.name)
				}
				if b.header.appID != 0 && app.ID != nil && b.header.appID != *app.ID {
					return nil, newError(ErrMsgContainsInvalidID, b.header.name)
				}
				app.Msgs = append(app.Msgs, &Msg{
					Name: b.header.name, Code: b.header.code,
					R: b.header.r, P: b.header.p, E: b.header.e,
					Avps: b.avps,
				})
			}

		case "grouped":
			blocks, err := parseGroupedBlocks(tokenize(content))
			if err != nil {
				return nil, err
			}
			app.grouped = append(app.grouped, blocks...)

		case "enum":
			if len(args) != 1 {
				return nil, newError(ErrInvalidSectionArgument, "@enum")
			}
			var values [][2]string
			for _, l := range tokenize(content) {
				fields := strings.Fields(l)
				if len(fields) != 2 {
					return nil, newError(ErrAVPTypeInvalidLine, l)
				}
				values = append(values, [2]string{fields[0], fields[1]})
			}
			app.enums = append(app.enums, enumDef{avpName: args[0], values: values})

		case "prefix", "custom_types", "codecs", "end":
			o.logger.Debugw("ignoring section", "section", name)

		default:
			o.logger.Debugw("ignoring unrecognized section", "section", name)
		}
	}

	if len(app.Msgs) > 0 && app.ID == nil {
		return nil, newError(ErrMissingIDSection, path)
	}
	for _, m := range app.Msgs {
		m.AppID = deref(app.ID)
	}

	if app.Name == "" {
		base := filepath.Base(path)
		app.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	searchPath := o.searchPath
	if searchPath == nil {
		searchPath = DefaultSearchPath
	}

	for _, ref := range app.inherits {
		found := false
		for _, dir := range searchPath {
			modPath := filepath.Join(dir, ref.moduleName+".dia")
			if _, err := os.Stat(modPath); err != nil {
				continue
			}

			mod, err := loadApplication(modPath, o, cache)
			if err != nil {
				return nil, wrapError(ErrInheritedModuleNotFound, ref.moduleName, err)
			}

			names := ref.avpNames
			if len(names) == 0 {
				for _, a := range mod.Avps {
					names = append(names, a.Name)
				}
			}
			for _, name := range names {
				matches := mod.FindAvps(func(a *Avp) bool { return a.Name == name })
				if len(matches) != 1 {
					o.logger.Warnw("ambiguous inherited AVP name", "module", ref.moduleName, "name", name)
				}
				app.InheritedAvps = append(app.InheritedAvps, matches...)
			}
			app.InheritedMsgs = append(app.InheritedMsgs, mod.Msgs...)

			found = true
			break
		}
		if !found {
			return nil, newError(ErrInheritedModuleNotFound, ref.moduleName)
		}
	}

	for _, e := range app.enums {
		matches := app.FindAvps(func(a *Avp) bool { return a.Name == e.avpName })
		if len(matches) > 1 {
			return nil, newError(ErrAVPDefinedMultipleTimes, e.avpName)
		}
		if len(matches) == 0 {
			return nil, newError(ErrEnumDefinitionForUnknownAVP, e.avpName)
		}

		a := matches[0]
		a.ValueToDescription = map[int64]string{}
		a.DescriptionToValue = map[string]int64{}
		for _, kv := range e.values {
			desc, valStr := kv[0], kv[1]
			if _, exists := a.DescriptionToValue[desc]; exists {
				return nil, newError(ErrEnumDuplicatedDescription, desc)
			}
			n, err := strconv.ParseInt(valStr, 0, 64)
			if err != nil {
				return nil, wrapError(ErrAVPTypeInvalidLine, valStr, err)
			}
			if _, exists := a.ValueToDescription[n]; exists {
				return nil, newError(ErrEnumDuplicatedValue, valStr)
			}
			a.ValueToDescription[n] = desc
			a.DescriptionToValue[desc] = n
		}
	}

	for _, b := range app.grouped {
		matches := app.FindAvps(func(a *Avp) bool { return a.Name == b.header.name })
		if len(matches) == 0 {
			return nil, newError(ErrGroupedDefinitionForUnknownAVP, b.header.name)
		}
		matches[0].Grouped = b.avps
	}

	for _, va := range app.avpVendors {
		for _, a := range app.Avps {
			if contains(va.avpNames, a.Name) {
				a.VendorID = va.vendorID
			}
		}
	}
	for _, a := range app.Avps {
		if a.VendorSpecific && a.VendorID == 0 {
			if app.DefaultVendorID == nil {
				return nil, newError(ErrMissingDefaultVendorIDSection, a.Name)
			}
			a.VendorID = *app.DefaultVendorID
		}
	}

	for _, a := range app.Avps {
		if a.DataType == DataTypeEnumerated && len(a.ValueToDescription) == 0 {
			return nil, newError(ErrEnumeratedAVPNotValued, a.Name)
		}
		if a.DataType == DataTypeGrouped && len(a.Grouped) == 0 {
			return nil, newError(ErrGroupedAVPNotDefined, a.Name)
		}
	}

	if err := app.verify(); err != nil {
		return nil, err
	}

	return app, nil
}

// verify resolves every qualified-AVP name reference (in messages and
// in grouped-AVP bodies) to its Avp definition, failing if the name is
// undefined or ambiguous. The sentinel name "AVP" is left unresolved:
// it denotes the generic wildcard slot, not a specific AVP.
func (app *Application) verify() error {
	for _, m := range app.Msgs {
		for _, qa := range m.Avps {
			if qa.Name == "AVP" {
				continue
			}
			matches := app.FindAvps(func(a *Avp) bool { return a.Name == qa.Name })
			if len(matches) == 0 {
				return newError(ErrMsgUsesUndefinedAVP, fmt.Sprintf("%s references undefined AVP %s", m.Name, qa.Name))
			}
			if len(matches) != 1 {
				return newError(ErrAmbiguousAVPNaming, fmt.Sprintf("%s references ambiguous AVP name %s", m.Name, qa.Name))
			}
			qa.Avp = matches[0]
		}
	}

	for _, a := range app.Avps {
		if a.DataType != DataTypeGrouped {
			continue
		}
		for _, qa := range a.Grouped {
			if qa.Name == "AVP" {
				continue
			}
			matches := app.FindAvps(func(x *Avp) bool { return x.Name == qa.Name })
			if len(matches) == 0 {
				return newError(ErrAVPUsesUndefinedAVP, fmt.Sprintf("%s references undefined AVP %s", a.Name, qa.Name))
			}
			if len(matches) != 1 {
				return newError(ErrMultipleDefinitionFound, fmt.Sprintf("%s references ambiguous AVP name %s", a.Name, qa.Name))
			}
			qa.Avp = matches[0]
		}
	}

	return nil
}

func mustParseCode(s string) uint32 {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func deref(p *uint32) uint32 {
	if p == nil {
		return 0
	}
	return *p
}
