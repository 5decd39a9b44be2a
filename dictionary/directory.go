package dictionary

import (
	"strconv"

	"golang.org/x/exp/slices"

	"go.uber.org/zap"
)

// A Directory is a set of loaded Applications indexed for lookup by
// application ID (message resolution) and by (vendor, code) (AVP
// resolution) across every loaded application, the way a Diameter
// peer resolving an unfamiliar message against its full supported
// application set would.
type Directory struct {
	apps     []*Application
	byAppID  map[uint32][]*Application
}

// LoadDirectory loads every .dia file named in paths and returns the
// resulting Directory. Each path is resolved independently (with its
// own @inherits search), but inherited-module resolution is shared
// within a single LoadDirectory call so a module inherited by two of
// the named applications is only read from disk once.
func LoadDirectory(paths []string, opts ...LoadOption) (*Directory, error) {
	o := &loadOptions{searchPath: DefaultSearchPath, logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(o)
	}

	cache := map[string]*Application{}
	d := &Directory{byAppID: map[uint32][]*Application{}}

	for _, p := range paths {
		app, err := loadApplication(p, o, cache)
		if err != nil {
			return nil, err
		}
		d.addApplication(app)
	}

	return d, nil
}

func (d *Directory) addApplication(app *Application) {
	d.apps = append(d.apps, app)
	id := deref(app.ID)
	d.byAppID[id] = append(d.byAppID[id], app)
}

// Applications returns every loaded application, in load order.
func (d *Directory) Applications() []*Application {
	return slices.Clone(d.apps)
}

// FindMsgs returns every message in application appID matching code
// and the request/answer direction isRequest. It is an error if appID
// names no loaded application.
func (d *Directory) FindMsgs(appID, code uint32, isRequest bool) ([]*Msg, error) {
	apps, ok := d.byAppID[appID]
	if !ok {
		return nil, newError(ErrNonExistingAppID, strconv.FormatUint(uint64(appID), 10))
	}

	var out []*Msg
	for _, app := range apps {
		out = append(out, app.FindMsgs(func(m *Msg) bool {
			return m.AppID == appID && m.Code == code && m.R == isRequest
		})...)
	}
	return out, nil
}

// FindAvps returns every distinct AVP across all loaded applications
// matching vendorID and code. vendorID of 0 selects non-vendor-specific
// AVPs. Results are deduplicated by (code, vendor).
func (d *Directory) FindAvps(vendorID, code uint32) []*Avp {
	seen := map[[2]uint32]*Avp{}
	for _, app := range d.apps {
		matches := app.FindAvps(func(a *Avp) bool {
			if vendorID == 0 {
				return !a.VendorSpecific && a.Code == code
			}
			return a.VendorSpecific && a.VendorID == vendorID && a.Code == code
		})
		for _, a := range matches {
			seen[[2]uint32{a.VendorID, a.Code}] = a
		}
	}

	out := make([]*Avp, 0, len(seen))
	for _, a := range seen {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *Avp) int {
		if a.VendorID != b.VendorID {
			return int(a.VendorID) - int(b.VendorID)
		}
		return int(a.Code) - int(b.Code)
	})
	return out
}

// FindAvpsByApp is FindAvps scoped to the applications loaded under
// appID.
func (d *Directory) FindAvpsByApp(appID, vendorID, code uint32) ([]*Avp, error) {
	apps, ok := d.byAppID[appID]
	if !ok {
		return nil, newError(ErrNonExistingAppID, strconv.FormatUint(uint64(appID), 10))
	}

	var out []*Avp
	for _, app := range apps {
		out = append(out, app.FindAvps(func(a *Avp) bool {
			if vendorID == 0 {
				return !a.VendorSpecific && a.Code == code
			}
			return a.VendorSpecific && a.VendorID == vendorID && a.Code == code
		})...)
	}
	return out, nil
}

