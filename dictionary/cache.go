package dictionary

import (
	"bytes"
	"encoding/gob"
	"io"
)

// cachedApplication mirrors Application's exported, fully-resolved
// fields only: the unexported section-parsing scratch state
// (avpVendors, inherits, enums, grouped) is resolution input, not
// output, and has no business surviving into a persisted snapshot.
type cachedApplication struct {
	ID                *uint32
	Name              string
	Version           string
	DefaultVendorID   *uint32
	DefaultVendorName string
	Avps              []*Avp
	InheritedAvps     []*Avp
	Msgs              []*Msg
	InheritedMsgs     []*Msg
}

// WriteCache serializes a Directory's resolved applications to w in an
// internal format (gob, over a fixed field set and load order), opaque
// to peers: it exists only so a CLI front-end can precompile a
// dictionary search path once instead of re-parsing and re-resolving
// .dia text on every run. Enumerated value tables are Go maps, which
// gob writes in map iteration order, so two writes of the same
// Directory are not guaranteed to be byte-identical.
func WriteCache(d *Directory, w io.Writer) error {
	snapshot := make([]cachedApplication, len(d.apps))
	for i, app := range d.apps {
		snapshot[i] = cachedApplication{
			ID: app.ID, Name: app.Name, Version: app.Version,
			DefaultVendorID: app.DefaultVendorID, DefaultVendorName: app.DefaultVendorName,
			Avps: app.Avps, InheritedAvps: app.InheritedAvps,
			Msgs: app.Msgs, InheritedMsgs: app.InheritedMsgs,
		}
	}
	return gob.NewEncoder(w).Encode(snapshot)
}

// ReadCache deserializes a Directory previously written by WriteCache.
func ReadCache(r io.Reader) (*Directory, error) {
	var snapshot []cachedApplication
	if err := gob.NewDecoder(r).Decode(&snapshot); err != nil {
		return nil, wrapError(ErrModuleReadFailed, "cache", err)
	}

	d := &Directory{byAppID: map[uint32][]*Application{}}
	for _, c := range snapshot {
		app := &Application{
			ID: c.ID, Name: c.Name, Version: c.Version,
			DefaultVendorID: c.DefaultVendorID, DefaultVendorName: c.DefaultVendorName,
			Avps: c.Avps, InheritedAvps: c.InheritedAvps,
			Msgs: c.Msgs, InheritedMsgs: c.InheritedMsgs,
		}
		d.addApplication(app)
	}
	return d, nil
}

// EncodeCache is a convenience wrapper returning the cache bytes
// directly.
func EncodeCache(d *Directory) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCache(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
