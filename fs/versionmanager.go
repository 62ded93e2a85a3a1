package fs

import (
	"sort"
	"sync"

	"github.com/objectgrid/osd"
)

type versionKey struct {
	objectNumber osd.ObjectNumber
	version      osd.ObjectVersion
	timestamp    osd.Timestamp
}

// versionManager is the in-memory index of (objNo, version, timestamp) ->
// checksum for one open file's directory (spec component D). It is a
// derived cache, never a source of truth: every entry is rebuildable from
// the directory listing via LoadFileMetadata.
//
// Every method takes a mutex even though the execution model is
// single-threaded per file-id (spec §5), so one instance may also be used
// from several goroutines. Enumeration (GetFileList) does not use a
// versionManager; it reads object names from the directories directly.
type versionManager struct {
	mu             sync.Mutex
	byKey          map[versionKey]osd.ObjectVersionInfo
	byObject       map[osd.ObjectNumber][]osd.ObjectVersionInfo // kept sorted by Version ascending
	versioningOn   bool
	lastObjectId   osd.ObjectNumber
	haveLastObject bool
}

func newVersionManager(versioningEnabled bool) *versionManager {
	return &versionManager{
		byKey:        make(map[versionKey]osd.ObjectVersionInfo),
		byObject:     make(map[osd.ObjectNumber][]osd.ObjectVersionInfo),
		versioningOn: versioningEnabled,
	}
}

func (vm *versionManager) AddObjectVersionInfo(n osd.ObjectNumber, v osd.ObjectVersion, ts osd.Timestamp, c osd.Checksum) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	info := osd.ObjectVersionInfo{ObjectNumber: n, Version: v, Timestamp: ts, Checksum: c}
	key := versionKey{n, v, ts}
	if _, exists := vm.byKey[key]; !exists {
		list := vm.byObject[n]
		i := sort.Search(len(list), func(i int) bool { return list[i].Version >= v })
		list = append(list, osd.ObjectVersionInfo{})
		copy(list[i+1:], list[i:])
		list[i] = info
		vm.byObject[n] = list
	}
	vm.byKey[key] = info

	if !vm.haveLastObject || n > vm.lastObjectId {
		vm.lastObjectId = n
		vm.haveLastObject = true
	}
}

func (vm *versionManager) RemoveObjectVersionInfo(n osd.ObjectNumber, v osd.ObjectVersion, ts osd.Timestamp) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	key := versionKey{n, v, ts}
	delete(vm.byKey, key)

	list := vm.byObject[n]
	for i := range list {
		if list[i].Version == v && list[i].Timestamp == ts {
			vm.byObject[n] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(vm.byObject[n]) == 0 {
		delete(vm.byObject, n)
	}
}

func (vm *versionManager) GetObjectVersionInfo(n osd.ObjectNumber, v osd.ObjectVersion, ts osd.Timestamp) (osd.ObjectVersionInfo, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if info, ok := vm.byKey[versionKey{n, v, ts}]; ok {
		return info, nil
	}
	return osd.ObjectVersionInfo{}, osd.ErrNotFound
}

func (vm *versionManager) GetLargestObjectVersion(n osd.ObjectNumber) (osd.ObjectVersionInfo, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	list := vm.byObject[n]
	if len(list) == 0 {
		return osd.ObjectVersionInfo{}, osd.ErrNotFound
	}
	return list[len(list)-1], nil
}

func (vm *versionManager) GetLargestObjectVersionBefore(n osd.ObjectNumber, vUpper osd.ObjectVersion) (osd.ObjectVersionInfo, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	list := vm.byObject[n]
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Version < vUpper {
			return list[i], nil
		}
	}
	return osd.ObjectVersionInfo{}, osd.ErrNotFound
}

// GetLatestObjectVersionBefore returns the latest version of object n with
// Timestamp < tsUpper (tsUpper == NoCowTimestamp means no upper bound, so
// the largest known version is returned), COW-aware: when n is beyond objectCountCap (i.e. the
// file has since been truncated to fewer objects), it synthesizes a
// does-not-exist entry (Version == 0) rather than reporting NOT_FOUND.
func (vm *versionManager) GetLatestObjectVersionBefore(n osd.ObjectNumber, tsUpper osd.Timestamp, objectCountCap osd.ObjectNumber) (osd.ObjectVersionInfo, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if n >= objectCountCap {
		return osd.ObjectVersionInfo{ObjectNumber: n, Version: 0}, nil
	}

	list := vm.byObject[n]
	var best *osd.ObjectVersionInfo
	for i := range list {
		if tsUpper == osd.NoCowTimestamp || list[i].Timestamp < tsUpper {
			if best == nil || list[i].Version > best.Version {
				v := list[i]
				best = &v
			}
		}
	}
	if best == nil {
		return osd.ObjectVersionInfo{}, osd.ErrNotFound
	}
	return *best, nil
}

func (vm *versionManager) GetLastObjectId() osd.ObjectNumber {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.lastObjectId
}

func (vm *versionManager) IsVersioningEnabled() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.versioningOn
}

func (vm *versionManager) setVersioningEnabled(on bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.versioningOn = on
}

var _ osd.VersionManager = (*versionManager)(nil)
