package snapshot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// PathSeparator separates segments of an attribute path.
const PathSeparator = "."

// Resolve walks attrs along a dotted path such as
// "settings.floodlight_settings.brightness".
//
// It reports false when any intermediate node is not a mapping, when a
// key is missing, or when the value found is an explicit null. Callers
// cannot tell those cases apart and should treat all of them as
// "not present on this device". Resolve never panics and never mutates.
func Resolve(attrs Value, path string) (Value, bool) {
	if path == "" {
		return Value{}, false
	}

	current := attrs
	for _, segment := range strings.Split(path, PathSeparator) {
		next, ok := current.Get(segment)
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// Exists reports whether path resolves to a non-null value.
func Exists(attrs Value, path string) bool {
	_, ok := Resolve(attrs, path)
	return ok
}

// ResolveString resolves path and returns it when the leaf is a string.
func ResolveString(attrs Value, path string) (string, bool) {
	v, ok := Resolve(attrs, path)
	if !ok {
		return "", false
	}
	return v.Str()
}

// ResolveText resolves path and renders scalar leaves as text. Numbers
// keep their shortest representation; maps and lists report false.
//
// Firmware versions normally arrive as strings but a handful of device
// kinds report a bare build number.
func ResolveText(attrs Value, path string) (string, bool) {
	v, ok := Resolve(attrs, path)
	if !ok {
		return "", false
	}
	switch v.Kind() {
	case KindString:
		return v.str, true
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64), true
	case KindBool:
		return strconv.FormatBool(v.b), true
	default:
		return "", false
	}
}

// Paths returns every leaf path of attrs, sorted. Nested maps are walked;
// lists and scalars are leaves.
func Paths(attrs Value) []string {
	var paths []string
	collectPaths(attrs, "", &paths)
	sort.Strings(paths)
	return paths
}

func collectPaths(v Value, prefix string, out *[]string) {
	for _, key := range v.Keys() {
		child := v.m[key]
		full := key
		if prefix != "" {
			full = prefix + PathSeparator + key
		}
		if child.kind == KindMap {
			collectPaths(child, full, out)
			continue
		}
		*out = append(*out, full)
	}
}

// MergeHealth builds the attribute tree seen by sensors.
//
// The poller keeps health data in two places: a "health" map inside the
// main device attributes and a separate health endpoint response. The
// endpoint response wins on conflicting keys. Entries of the "alerts" map
// are folded into health with an "alert_" prefix.
func MergeHealth(attrs, healthAttrs Value) Value {
	fields := attrs.Fields()
	if fields == nil {
		fields = make(map[string]Value)
	}

	health := make(map[string]Value)
	if base, ok := attrs.Get("health"); ok {
		for k, v := range base.Fields() {
			health[k] = v
		}
	}
	for k, v := range healthAttrs.Fields() {
		health[k] = v
	}
	if alerts, ok := attrs.Get("alerts"); ok {
		for k, v := range alerts.Fields() {
			health["alert_"+k] = v
		}
	}

	if len(health) > 0 {
		fields["health"] = Map(health)
	}
	return Value{kind: KindMap, m: fields}
}

// FormatUptime renders a number of seconds as "<d>d <h>h <m>m".
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	mins := (seconds % 3600) / 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, mins)
}

// UnixTime converts a Unix timestamp in seconds to UTC time.
func UnixTime(seconds float64) time.Time {
	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
