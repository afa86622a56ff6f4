package catalog

import (
	"errors"
	"testing"

	"github.com/nerrad567/ring-extended-core/internal/snapshot"
)

func TestCatalog_Integrity(t *testing.T) {
	all := All()
	if len(all) != 161 {
		t.Errorf("len(All()) = %d, want 161", len(all))
	}

	seen := make(map[string]bool)
	for _, d := range all {
		if d.Key == "" || d.Path == "" {
			t.Errorf("description with empty key or path: %+v", d)
		}
		if seen[d.Key] {
			t.Errorf("duplicate key %q", d.Key)
		}
		seen[d.Key] = true
		if !d.Category.Valid() {
			t.Errorf("%s: invalid category %q", d.Key, d.Category)
		}
	}

	for _, c := range Categories() {
		if len(ByCategory(c)) == 0 {
			t.Errorf("category %s has no descriptions", c)
		}
	}
	if got := len(ByCategory(CategoryCVDetection)); got != 36 {
		t.Errorf("cv_detection descriptions = %d, want 36", got)
	}
}

func TestParseCategories(t *testing.T) {
	set, err := ParseCategories([]string{"Health", " firmware "})
	if err != nil {
		t.Fatalf("ParseCategories() error = %v", err)
	}
	got := set.List()
	if len(got) != 2 || got[0] != CategoryHealth || got[1] != CategoryFirmware {
		t.Errorf("List() = %v", got)
	}

	all, err := ParseCategories(nil)
	if err != nil || len(all) != len(Categories()) {
		t.Errorf("ParseCategories(nil) = %v, %v", all, err)
	}

	if _, err := ParseCategories([]string{"lasers"}); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("ParseCategories() error = %v, want ErrUnknownCategory", err)
	}
}

func TestEnabled_FiltersCategories(t *testing.T) {
	set, _ := ParseCategories([]string{"firmware"})
	for _, d := range Enabled(set) {
		if d.Category != CategoryFirmware {
			t.Errorf("Enabled() returned %s from %s", d.Key, d.Category)
		}
	}
}

func TestDescription_Value(t *testing.T) {
	attrs := snapshot.FromAny(map[string]any{
		"health": map[string]any{
			"rssi":                 -55,
			"uptime_sec":           93784,
			"last_update_time":     1700000000,
			"ac_power":             "1",
			"egress_tx_rate":       "2.5",
			"firmware_avg_bitrate": 812.9,
			"battery_percentage":   nil,
		},
	})

	tests := []struct {
		key    string
		want   any
		wantOK bool
	}{
		{key: "rssi", want: float64(-55), wantOK: true},
		{key: "uptime_formatted", want: "1d 2h 3m", wantOK: true},
		{key: "uptime_sec", want: float64(93784), wantOK: true},
		{key: "last_update_time", want: "2023-11-14T22:13:20Z", wantOK: true},
		{key: "ac_power", want: true, wantOK: true},
		{key: "egress_tx_rate", want: 2.5, wantOK: true},
		{key: "firmware_avg_bitrate", want: int64(812), wantOK: true},
		{key: "battery_percentage", wantOK: false},
		{key: "packet_loss", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			d, ok := Lookup(tt.key)
			if !ok {
				t.Fatalf("Lookup(%q) missing", tt.key)
			}
			got, ok := d.Value(attrs)
			if ok != tt.wantOK {
				t.Fatalf("Value() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Value() = %#v, want %#v", got, tt.want)
			}
			if d.Available(attrs) != tt.wantOK {
				t.Errorf("Available() = %v, want %v", d.Available(attrs), tt.wantOK)
			}
		})
	}
}

func TestCoercers_TypeMismatchIsAbsent(t *testing.T) {
	coercers := map[string]Coercer{
		"float":  CoerceFloat,
		"int":    CoerceInt,
		"bool":   CoerceBoolFromInt,
		"uptime": CoerceUptime,
		"unix":   CoerceUnixTime,
	}
	for _, text := range []string{"not a number", "NaN", "Inf", "-Infinity", "1e400"} {
		bad := snapshot.String(text)
		for name, fn := range coercers {
			if _, ok := fn(bad); ok {
				t.Errorf("%s coercer accepted %q", name, text)
			}
		}
	}
}

func TestPaths(t *testing.T) {
	paths := Paths()
	for i := 1; i < len(paths); i++ {
		if paths[i-1] >= paths[i] {
			t.Fatalf("Paths() not sorted/unique at %d: %q >= %q", i, paths[i-1], paths[i])
		}
	}
}
