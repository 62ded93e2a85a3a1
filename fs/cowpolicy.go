package fs

import "github.com/objectgrid/osd"

// cowPolicy is the default osd.CowPolicy: a per-open-file dirty-bit tracker.
// One instance belongs to exactly one open file for the file's lifetime, so
// the map is unbounded only by the number of distinct objects that file ever
// touches, never by the whole storage device.
type cowPolicy struct {
	enabled bool
	dirty   map[osd.ObjectNumber]bool
}

// NewCowPolicy returns a CowPolicy for one open file. When enabled is false,
// IsCOW always reports false and ObjectChanged is a no-op: the file behaves
// as if copy-on-write were never configured.
func NewCowPolicy(enabled bool) osd.CowPolicy {
	return &cowPolicy{enabled: enabled, dirty: make(map[osd.ObjectNumber]bool)}
}

func (p *cowPolicy) CowEnabled() bool { return p.enabled }

// IsCOW reports whether object n still needs a copy-on-write: true when COW
// is enabled and the object has not yet been written to in this file's
// current generation.
func (p *cowPolicy) IsCOW(n osd.ObjectNumber) bool {
	if !p.enabled {
		return false
	}
	return !p.dirty[n]
}

// ObjectChanged marks n as already copied/dirtied, so subsequent writes to n
// take the no-COW fast path for the remainder of this file's open lifetime.
func (p *cowPolicy) ObjectChanged(n osd.ObjectNumber) {
	if !p.enabled {
		return
	}
	p.dirty[n] = true
}
