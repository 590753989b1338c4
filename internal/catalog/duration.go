package catalog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlacementRangeKey is the level range used to resolve a by-range default when a
// block is placed on the weekly canvas, where no player level is known.
const PlacementRangeKey = "1-6"

// MissingRangeMinutes is used when a by-range default has no entry for the requested key.
const MissingRangeMinutes = 20

// DefaultDuration is either a flat number of minutes or a mapping from a level
// range key ("1-6", "7-9") to minutes. The zero value is Flat(0).
type DefaultDuration struct {
	flat    int
	byRange map[string]int
}

// Flat returns a level-independent default.
func Flat(minutes int) DefaultDuration {
	return DefaultDuration{flat: minutes}
}

// ByRange returns a level-dependent default.
func ByRange(m map[string]int) DefaultDuration {
	cp := make(map[string]int, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return DefaultDuration{byRange: cp}
}

// IsRanged reports whether the default depends on the level range.
func (d DefaultDuration) IsRanged() bool { return d.byRange != nil }

// Ranges returns a copy of the range mapping, or nil for a flat default.
func (d DefaultDuration) Ranges() map[string]int {
	if d.byRange == nil {
		return nil
	}
	cp := make(map[string]int, len(d.byRange))
	for k, v := range d.byRange {
		cp[k] = v
	}
	return cp
}

// Resolve returns the minutes for rangeKey. A flat default ignores the key; a
// by-range default without that key yields MissingRangeMinutes.
func (d DefaultDuration) Resolve(rangeKey string) int {
	if d.byRange == nil {
		return d.flat
	}
	if v, ok := d.byRange[rangeKey]; ok {
		return v
	}
	return MissingRangeMinutes
}

// ForLevel returns the minutes for a numeric player level by finding the
// range key ("a-b") that contains it. An exact key match wins.
func (d DefaultDuration) ForLevel(level string) (int, bool) {
	if d.byRange == nil {
		return d.flat, true
	}
	if v, ok := d.byRange[level]; ok {
		return v, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(level))
	if err != nil {
		return 0, false
	}
	keys := make([]string, 0, len(d.byRange))
	for k := range d.byRange {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lo, hi, ok := parseRange(k)
		if ok && n >= lo && n <= hi {
			return d.byRange[k], true
		}
	}
	return 0, false
}

func parseRange(key string) (int, int, bool) {
	a, b, found := strings.Cut(key, "-")
	if !found {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, false
	}
	hi, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

func (d DefaultDuration) MarshalJSON() ([]byte, error) {
	if d.byRange != nil {
		return json.Marshal(d.byRange)
	}
	return json.Marshal(d.flat)
}

func (d *DefaultDuration) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*d = Flat(n)
		return nil
	}
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("defaultDuration must be a number or a range mapping: %w", err)
	}
	*d = ByRange(m)
	return nil
}

func (d DefaultDuration) MarshalYAML() (any, error) {
	if d.byRange != nil {
		return d.byRange, nil
	}
	return d.flat, nil
}

func (d *DefaultDuration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var n int
		if err := value.Decode(&n); err != nil {
			return fmt.Errorf("defaultDuration: %w", err)
		}
		*d = Flat(n)
	case yaml.MappingNode:
		var m map[string]int
		if err := value.Decode(&m); err != nil {
			return fmt.Errorf("defaultDuration: %w", err)
		}
		*d = ByRange(m)
	default:
		return fmt.Errorf("defaultDuration must be a number or a range mapping")
	}
	return nil
}
