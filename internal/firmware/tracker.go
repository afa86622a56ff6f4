package firmware

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Default limits for cross-device changelog queries.
const (
	DefaultRecentLimit    = 20
	DefaultChangelogLimit = 50
)

// Logger defines the logging interface used by the Tracker.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// entry holds one device history and the lock that serialises it.
type entry struct {
	mu      sync.Mutex
	history History
	dirty   bool // in-memory state not yet written to the store
	removed bool // pruned; holders must look the device up again
}

// Tracker records firmware changelogs for every monitored device.
//
// Observations for one device are serialised by a per-device mutex;
// different devices never contend. In-memory state is authoritative: a
// failed store write leaves the device dirty and the write is retried by
// Flush or by the next observation of that device.
//
// All public methods are thread-safe. Readers receive copies.
type Tracker struct {
	store  Store
	logger Logger

	mu      sync.RWMutex // protects devices and names
	devices map[string]*entry
	names   map[string]string
}

// NewTracker creates a tracker backed by store. Call Load before the first
// observation to restore persisted history.
func NewTracker(store Store) *Tracker {
	return &Tracker{
		store:   store,
		logger:  noopLogger{},
		devices: make(map[string]*entry),
		names:   make(map[string]string),
	}
}

// SetLogger sets the logger for the tracker.
func (t *Tracker) SetLogger(logger Logger) {
	t.logger = logger
}

// Load replaces in-memory state with the histories held by the store.
//
// Stored data is normalised on the way in: consecutive duplicate versions
// are collapsed and first_seen is clamped to be non-decreasing.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//
// Returns:
//   - error: ErrPersistence (wrapped) if the store cannot be read
func (t *Tracker) Load(ctx context.Context) error {
	histories, err := t.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("%w: loading: %w", ErrPersistence, err)
	}

	devices := make(map[string]*entry, len(histories))
	for _, h := range histories {
		if h.DeviceID == "" {
			continue
		}
		devices[h.DeviceID] = &entry{history: h.normalize()}
	}

	t.mu.Lock()
	previous := t.devices
	t.devices = devices
	for id, e := range devices {
		if _, ok := t.names[id]; !ok && e.history.DeviceName != "" {
			t.names[id] = e.history.DeviceName
		}
	}
	t.mu.Unlock()

	// Entry locks are never taken while holding t.mu.
	for _, e := range previous {
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
	}

	t.logger.Debug("firmware history loaded", "devices", len(devices))
	return nil
}

// SetDeviceName records the display name used in changelog output. A
// changed name on an existing history is persisted on the next write.
func (t *Tracker) SetDeviceName(deviceID, name string) {
	deviceID = strings.TrimSpace(deviceID)
	name = strings.TrimSpace(name)
	if deviceID == "" || name == "" {
		return
	}

	t.mu.Lock()
	t.names[deviceID] = name
	e := t.devices[deviceID]
	t.mu.Unlock()

	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.removed && e.history.DeviceName != name {
		e.history.DeviceName = name
		e.dirty = true
	}
}

// Observe records the firmware version reported for a device.
//
// Empty versions and the placeholders "unknown" and "unavailable" are
// ignored. The first version seen for a device yields SignalInitialized;
// a version different from the current one yields SignalChanged; a repeat
// of the current version yields SignalNone and changes nothing.
//
// When at is earlier than the last recorded event it is clamped to that
// event's first_seen so the changelog never goes backwards.
//
// Parameters:
//   - ctx: Context for the store write
//   - deviceID: Device the snapshot belongs to
//   - version: Resolved firmware version
//   - at: Snapshot capture time
//
// Returns:
//   - Observation: What happened; valid even when err is non-nil
//   - error: ErrPersistence (wrapped) if the store write failed
func (t *Tracker) Observe(ctx context.Context, deviceID, version string, at time.Time) (Observation, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return Observation{}, ErrDeviceIDRequired
	}
	if at.IsZero() {
		at = time.Now()
	}

	obs := Observation{DeviceID: deviceID, At: at.UTC()}
	version = strings.TrimSpace(version)
	if version == "" || isIgnoredVersion(version) {
		return obs, nil
	}
	obs.Version = version

	e := t.lockEntry(deviceID, true)
	defer e.mu.Unlock()

	h := &e.history
	obs.DeviceName = h.DisplayName()

	current, ok := h.CurrentVersion()
	if ok && current == version {
		if e.dirty {
			return obs, t.persist(ctx, e)
		}
		return obs, nil
	}

	if ok {
		obs.Signal = SignalChanged
		obs.Previous = current
		if last := h.Events[len(h.Events)-1].FirstSeen; obs.At.Before(last) {
			obs.At = last
		}
	} else {
		obs.Signal = SignalInitialized
	}

	h.Events = append(h.Events, Event{Version: version, FirstSeen: obs.At})
	e.dirty = true

	t.logger.Info("firmware change detected",
		"device_id", deviceID,
		"device", obs.DeviceName,
		"previous", previousOrInitial(obs.Previous),
		"version", version,
	)

	return obs, t.persist(ctx, e)
}

// Flush retries every pending store write.
//
// Returns:
//   - error: ErrPersistence (wrapped, joined per device) for writes that
//     failed again; nil when nothing is pending
func (t *Tracker) Flush(ctx context.Context) error {
	var errs []error
	for _, e := range t.entries() {
		e.mu.Lock()
		if !e.removed && e.dirty {
			if err := t.persist(ctx, e); err != nil {
				errs = append(errs, err)
			}
		}
		e.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Pending returns the number of devices with unsaved changes.
func (t *Tracker) Pending() int {
	n := 0
	for _, e := range t.entries() {
		e.mu.Lock()
		if !e.removed && e.dirty {
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Prune deletes the history of a device that is permanently gone.
// Histories are otherwise retained indefinitely.
//
// Returns:
//   - error: ErrHistoryNotFound if no history exists, ErrPersistence
//     (wrapped) if the store delete failed; memory is left untouched then
func (t *Tracker) Prune(ctx context.Context, deviceID string) error {
	e := t.lockEntry(deviceID, false)
	if e == nil {
		return fmt.Errorf("%w: %s", ErrHistoryNotFound, deviceID)
	}
	defer e.mu.Unlock()

	if err := t.store.Delete(ctx, deviceID); err != nil {
		return fmt.Errorf("%w: deleting %s: %w", ErrPersistence, deviceID, err)
	}

	e.removed = true
	t.mu.Lock()
	// A concurrent Load may have installed a fresh entry.
	if t.devices[deviceID] == e {
		delete(t.devices, deviceID)
		delete(t.names, deviceID)
	}
	t.mu.Unlock()

	t.logger.Info("firmware history pruned", "device_id", deviceID)
	return nil
}

// History returns a copy of the changelog for a device.
func (t *Tracker) History(deviceID string) (History, bool) {
	t.mu.RLock()
	e := t.devices[deviceID]
	t.mu.RUnlock()
	if e == nil {
		return History{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed || len(e.history.Events) == 0 {
		return History{}, false
	}
	return e.history.clone(), true
}

// CurrentVersion returns the latest recorded version for a device.
func (t *Tracker) CurrentVersion(deviceID string) (string, bool) {
	h, ok := t.History(deviceID)
	if !ok {
		return "", false
	}
	return h.CurrentVersion()
}

// Format renders "<current_version> (<N> updates)" for a device, or
// "unknown" when nothing has been recorded.
func (t *Tracker) Format(deviceID string) string {
	h, _ := t.History(deviceID)
	return h.Format()
}

// Devices returns the IDs of every device with recorded history, sorted.
func (t *Tracker) Devices() []string {
	all := t.Histories()
	ids := make([]string, len(all))
	for i, h := range all {
		ids[i] = h.DeviceID
	}
	return ids
}

// Histories returns copies of every non-empty history, sorted by device ID.
func (t *Tracker) Histories() []History {
	var out []History
	for _, e := range t.entries() {
		e.mu.Lock()
		if !e.removed && len(e.history.Events) > 0 {
			out = append(out, e.history.clone())
		}
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeviceID < out[j].DeviceID })
	return out
}

// RecentChanges returns up to limit changelog entries across all devices,
// newest first. A non-positive limit uses DefaultRecentLimit.
func (t *Tracker) RecentChanges(limit int) []Change {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	type indexed struct {
		Change
		seq int
	}

	var all []indexed
	for _, h := range t.Histories() {
		for i, ev := range h.Events {
			c := Change{
				DeviceID:   h.DeviceID,
				DeviceName: h.DisplayName(),
				Version:    ev.Version,
				At:         ev.FirstSeen,
			}
			if i > 0 {
				c.Previous = h.Events[i-1].Version
			}
			all = append(all, indexed{Change: c, seq: i})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].At.Equal(all[j].At) {
			return all[i].At.After(all[j].At)
		}
		if all[i].DeviceID != all[j].DeviceID {
			return all[i].DeviceID < all[j].DeviceID
		}
		return all[i].seq > all[j].seq
	})

	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]Change, len(all))
	for i := range all {
		out[i] = all[i].Change
	}
	return out
}

// ChangelogText renders the most recent changes as one line each, or a
// placeholder when nothing has been recorded. A non-positive limit uses
// DefaultChangelogLimit.
func (t *Tracker) ChangelogText(limit int) string {
	if limit <= 0 {
		limit = DefaultChangelogLimit
	}
	changes := t.RecentChanges(limit)
	if len(changes) == 0 {
		return "No firmware changes recorded yet"
	}

	lines := make([]string, len(changes))
	for i, c := range changes {
		lines[i] = c.Line()
	}
	return strings.Join(lines, "\n")
}

// Summary groups devices by current version and counts recorded events.
func (t *Tracker) Summary() Summary {
	s := Summary{VersionGroups: make(map[string][]string)}
	for _, h := range t.Histories() {
		current, _ := h.CurrentVersion()
		s.VersionGroups[current] = append(s.VersionGroups[current], h.DisplayName())
		s.TotalChanges += len(h.Events)
		s.TotalDevices++
	}
	for _, names := range s.VersionGroups {
		sort.Strings(names)
	}
	s.UniqueVersions = len(s.VersionGroups)
	return s
}

// Attributes returns the presenter view of a device history. Absent
// devices report "unknown" fields and false.
func (t *Tracker) Attributes(deviceID string) (Attributes, bool) {
	h, ok := t.History(deviceID)
	if !ok {
		return Attributes{
			CurrentVersion: UnknownVersion,
			FirstSeen:      UnknownVersion,
			History:        []string{},
		}, false
	}

	current, _ := h.CurrentVersion()
	attrs := Attributes{
		CurrentVersion: current,
		FirstSeen:      h.Events[0].FirstSeen.Format(time.DateOnly),
		TotalUpdates:   h.Updates(),
		History:        make([]string, 0, len(h.Events)),
	}
	for i := len(h.Events) - 1; i >= 0; i-- {
		ev := h.Events[i]
		ts := ev.FirstSeen.Format(changelogTimeFormat)
		if i == 0 {
			attrs.History = append(attrs.History, fmt.Sprintf("%s: %s (initial)", ts, ev.Version))
			continue
		}
		attrs.History = append(attrs.History, fmt.Sprintf("%s: %s -> %s", ts, h.Events[i-1].Version, ev.Version))
	}
	return attrs, true
}

// lockEntry returns the device entry with its mutex held. With create set
// a missing entry is created; otherwise nil is returned for unknown or
// empty histories.
func (t *Tracker) lockEntry(deviceID string, create bool) *entry {
	for {
		t.mu.Lock()
		e, ok := t.devices[deviceID]
		if !ok {
			if !create {
				t.mu.Unlock()
				return nil
			}
			e = &entry{history: History{DeviceID: deviceID, DeviceName: t.names[deviceID]}}
			t.devices[deviceID] = e
		}
		t.mu.Unlock()

		e.mu.Lock()
		if e.removed {
			e.mu.Unlock()
			continue
		}
		if !create && len(e.history.Events) == 0 {
			e.mu.Unlock()
			return nil
		}
		return e
	}
}

// entries returns the current entry pointers.
func (t *Tracker) entries() []*entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*entry, 0, len(t.devices))
	for _, e := range t.devices {
		out = append(out, e)
	}
	return out
}

// persist writes e to the store. The caller must hold e.mu.
func (t *Tracker) persist(ctx context.Context, e *entry) error {
	if err := t.store.Save(ctx, e.history.clone()); err != nil {
		e.dirty = true
		t.logger.Warn("firmware history write failed, will retry",
			"device_id", e.history.DeviceID,
			"error", err,
		)
		return fmt.Errorf("%w: saving %s: %w", ErrPersistence, e.history.DeviceID, err)
	}
	e.dirty = false
	return nil
}

func previousOrInitial(prev string) string {
	if prev == "" {
		return "initial"
	}
	return prev
}
