package snapshot

import (
	"sort"
	"sync"
)

// Registry holds the latest snapshot per device.
//
// It replaces a process-wide device map: one Registry is created at
// startup and passed to the components that need it. Snapshots are
// immutable, so handing them out by value is safe.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]Snapshot
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]Snapshot)}
}

// Put stores snap as the latest snapshot for its device. An older
// snapshot never replaces a newer one.
//
// Returns:
//   - bool: true if the registry was updated
func (r *Registry) Put(snap Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.devices[snap.DeviceID]; ok && snap.CapturedAt.Before(current.CapturedAt) {
		return false
	}
	r.devices[snap.DeviceID] = snap
	return true
}

// Get returns the latest snapshot for deviceID.
func (r *Registry) Get(deviceID string) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.devices[deviceID]
	if !ok {
		return Snapshot{}, ErrDeviceNotFound
	}
	return snap, nil
}

// List returns the latest snapshots ordered by device ID.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Snapshot, 0, len(r.devices))
	for _, snap := range r.devices {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}

// Remove forgets a device. It reports whether the device was known.
func (r *Registry) Remove(deviceID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.devices[deviceID]; !ok {
		return false
	}
	delete(r.devices, deviceID)
	return true
}

// Count returns the number of known devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}
