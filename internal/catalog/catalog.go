package catalog

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/ring-extended-core/internal/snapshot"
)

// Category groups sensor descriptions so presenters can toggle them.
type Category string

// Sensor categories.
const (
	CategoryHealth          Category = "health"
	CategoryPower           Category = "power"
	CategoryFirmware        Category = "firmware"
	CategoryVideo           Category = "video"
	CategoryAudio           Category = "audio"
	CategoryMotion          Category = "motion"
	CategoryCVDetection     Category = "cv_detection"
	CategoryCVPaid          Category = "cv_paid"
	CategoryOtherPaid       Category = "other_paid"
	CategoryNotifications   Category = "notifications"
	CategoryRecording       Category = "recording"
	CategoryFloodlight      Category = "floodlight"
	CategoryRadar           Category = "radar"
	CategoryLocalProcessing Category = "local_processing"
	CategoryFeatures        Category = "features"
	CategoryDeviceStatus    Category = "device_status"
)

// categoryOrder is the presentation order of categories.
var categoryOrder = []Category{
	CategoryHealth,
	CategoryPower,
	CategoryFirmware,
	CategoryVideo,
	CategoryAudio,
	CategoryMotion,
	CategoryCVDetection,
	CategoryCVPaid,
	CategoryOtherPaid,
	CategoryNotifications,
	CategoryRecording,
	CategoryFloodlight,
	CategoryRadar,
	CategoryLocalProcessing,
	CategoryFeatures,
	CategoryDeviceStatus,
}

var categoryNames = map[Category]string{
	CategoryHealth:          "Health & Connectivity",
	CategoryPower:           "Power & Battery",
	CategoryFirmware:        "Firmware",
	CategoryVideo:           "Video & Streaming",
	CategoryAudio:           "Audio",
	CategoryMotion:          "Motion Detection",
	CategoryCVDetection:     "CV Detection Types",
	CategoryCVPaid:          "CV Paid Features",
	CategoryOtherPaid:       "Other Paid Features",
	CategoryNotifications:   "Notifications",
	CategoryRecording:       "Recording & Storage",
	CategoryFloodlight:      "Floodlight",
	CategoryRadar:           "Radar / Bird's Eye",
	CategoryLocalProcessing: "Local Processing",
	CategoryFeatures:        "Feature Eligibility",
	CategoryDeviceStatus:    "Device Status",
}

// Categories returns every category in presentation order.
func Categories() []Category {
	out := make([]Category, len(categoryOrder))
	copy(out, categoryOrder)
	return out
}

// Name returns the display name of the category.
func (c Category) Name() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return string(c)
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// CategorySet is an enabled subset of categories.
type CategorySet map[Category]struct{}

// AllCategories returns a set with every category enabled.
func AllCategories() CategorySet {
	set := make(CategorySet, len(categoryOrder))
	for _, c := range categoryOrder {
		set[c] = struct{}{}
	}
	return set
}

// ParseCategories builds a set from category names. An empty list
// enables every category.
func ParseCategories(names []string) (CategorySet, error) {
	if len(names) == 0 {
		return AllCategories(), nil
	}

	set := make(CategorySet, len(names))
	for _, n := range names {
		c := Category(strings.ToLower(strings.TrimSpace(n)))
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, n)
		}
		set[c] = struct{}{}
	}
	return set, nil
}

// Contains reports whether c is enabled.
func (s CategorySet) Contains(c Category) bool {
	_, ok := s[c]
	return ok
}

// List returns the enabled categories in presentation order.
func (s CategorySet) List() []Category {
	var out []Category
	for _, c := range categoryOrder {
		if s.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// Unit is the unit of measurement shown next to a sensor value.
type Unit string

// Units used by the catalog.
const (
	UnitDBm               Unit = "dBm"
	UnitPercent           Unit = "%"
	UnitKilobitsPerSecond Unit = "kbit/s"
	UnitMegabitsPerSecond Unit = "Mbit/s"
	UnitSeconds           Unit = "s"
	UnitHours             Unit = "h"
	UnitDays              Unit = "d"
	UnitMillivolts        Unit = "mV"
	UnitVolts             Unit = "V"
	UnitMeters            Unit = "m"
	UnitPixels            Unit = "p"
)

// Coercer converts a resolved leaf into its presented form. It reports
// false when the leaf has the wrong type, which presents as absent.
type Coercer func(v snapshot.Value) (any, bool)

// Description maps one attribute path to a presented sensor.
type Description struct {
	Key      string
	Category Category
	Path     string
	Unit     Unit
	Coerce   Coercer
}

// Value resolves the description against attrs and applies the coercer.
// Plain descriptions return the leaf as a Go value (string, float64,
// bool, map or slice).
func (d Description) Value(attrs snapshot.Value) (any, bool) {
	v, ok := snapshot.Resolve(attrs, d.Path)
	if !ok {
		return nil, false
	}
	if d.Coerce != nil {
		return d.Coerce(v)
	}
	return v.Interface(), true
}

// Available reports whether the path resolves on this device.
func (d Description) Available(attrs snapshot.Value) bool {
	return snapshot.Exists(attrs, d.Path)
}

// CoerceFloat presents numbers and numeric strings as float64.
func CoerceFloat(v snapshot.Value) (any, bool) {
	f, ok := v.Float()
	if !ok {
		return nil, false
	}
	return f, true
}

// CoerceInt presents numbers and numeric strings truncated to int64.
func CoerceInt(v snapshot.Value) (any, bool) {
	n, ok := v.Int()
	if !ok {
		return nil, false
	}
	return n, true
}

// CoerceBoolFromInt presents a 0/1 flag (number, numeric string or bool)
// as a bool.
func CoerceBoolFromInt(v snapshot.Value) (any, bool) {
	if b, ok := v.Bool(); ok {
		return b, true
	}
	n, ok := v.Int()
	if !ok {
		return nil, false
	}
	return n != 0, true
}

// CoerceUptime presents a number of seconds as "<d>d <h>h <m>m".
func CoerceUptime(v snapshot.Value) (any, bool) {
	n, ok := v.Int()
	if !ok {
		return nil, false
	}
	return snapshot.FormatUptime(n), true
}

// CoerceUnixTime presents a Unix timestamp in seconds as a UTC time.
func CoerceUnixTime(v snapshot.Value) (any, bool) {
	f, ok := v.Float()
	if !ok {
		return nil, false
	}
	return snapshot.UnixTime(f).Format(time.RFC3339), true
}

// cvDetectionTypes are the computer-vision detection kinds reported under
// settings.cv_settings.detection_types.
var cvDetectionTypes = []string{
	"human",
	"motion",
	"other_motion",
	"loitering",
	"moving_vehicle",
	"vehicle",
	"animal",
	"package_delivery",
	"package_pickup",
	"unverified_motion",
	"motion_stop",
}

// cvDetectionSensors generates enabled/mode/notification descriptions for
// every detection type.
func cvDetectionSensors() []Description {
	out := make([]Description, 0, len(cvDetectionTypes)*3)
	for _, det := range cvDetectionTypes {
		base := "settings.cv_settings.detection_types." + det
		for _, field := range []string{"enabled", "mode", "notification"} {
			out = append(out, Description{
				Key:      "cv_" + det + "_" + field,
				Category: CategoryCVDetection,
				Path:     base + "." + field,
			})
		}
	}
	return out
}

var (
	buildOnce  sync.Once
	byCategory map[Category][]Description
	byKey      map[string]Description
)

func build() {
	buildOnce.Do(func() {
		byCategory = map[Category][]Description{
			CategoryHealth:          healthSensors,
			CategoryPower:           powerSensors,
			CategoryFirmware:        firmwareSensors,
			CategoryVideo:           videoSensors,
			CategoryAudio:           audioSensors,
			CategoryMotion:          motionSensors,
			CategoryCVDetection:     append(cvDetectionSensors(), cvThresholdSensors...),
			CategoryCVPaid:          cvPaidSensors,
			CategoryOtherPaid:       otherPaidSensors,
			CategoryNotifications:   notificationSensors,
			CategoryRecording:       recordingSensors,
			CategoryFloodlight:      floodlightSensors,
			CategoryRadar:           radarSensors,
			CategoryLocalProcessing: localProcessingSensors,
			CategoryFeatures:        featureSensors,
			CategoryDeviceStatus:    deviceStatusSensors,
		}
		byKey = make(map[string]Description)
		for _, descs := range byCategory {
			for _, d := range descs {
				byKey[d.Key] = d
			}
		}
	})
}

// All returns every description in category order.
func All() []Description {
	return Enabled(AllCategories())
}

// Enabled returns the descriptions of the enabled categories, in category
// order.
func Enabled(set CategorySet) []Description {
	build()
	var out []Description
	for _, c := range set.List() {
		out = append(out, byCategory[c]...)
	}
	return out
}

// ByCategory returns the descriptions of one category.
func ByCategory(c Category) []Description {
	build()
	descs := byCategory[c]
	out := make([]Description, len(descs))
	copy(out, descs)
	return out
}

// Lookup returns the description with the given key.
func Lookup(key string) (Description, bool) {
	build()
	d, ok := byKey[key]
	return d, ok
}

// Paths returns the distinct attribute paths covered by the catalog, sorted.
func Paths() []string {
	seen := make(map[string]struct{})
	for _, d := range All() {
		seen[d.Path] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
