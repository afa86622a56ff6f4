// Package catalog is the declarative table of device attribute paths
// exposed as sensors, grouped into toggleable categories.
//
// Each Description names a dotted path into the device attributes and an
// optional coercer. Paths that do not resolve on a device are reported as
// unavailable, never as errors.
package catalog
