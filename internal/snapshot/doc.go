// Package snapshot models the per-device attribute data received from the
// polling coordinator and resolves dotted attribute paths against it.
//
// Attribute trees are represented by Value, a small sum type over
// string, number, boolean, null, map and list. Resolve walks a tree one
// path segment at a time and reports absence instead of failing:
//
//	attrs := snap.Attributes
//	if v, ok := snapshot.Resolve(attrs, "health.firmware_version"); ok {
//	    version, _ := v.Str()
//	}
//
// A missing key, an explicit null and a non-map intermediate node all
// resolve to "absent". Coercion to numbers, times or durations is left to
// the caller and happens only after a successful resolve.
package snapshot
