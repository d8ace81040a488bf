// package settings holds typed user preferences and the toggle transition over them
package settings

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrNotToggleable is returned when toggling a setting that is unknown or not boolean.
var ErrNotToggleable = errors.New("setting is not toggleable")

// ErrUnknownSetting is returned when reading or writing a name outside the known set.
var ErrUnknownSetting = errors.New("unknown setting")

// Name identifies a known setting.
type Name string

const (
	CapoRequired Name = "capo_required"
	ShowChords   Name = "show_chords"
	CompactList  Name = "compact_list"
	ShowToolbar  Name = "show_toolbar"
	Language     Name = "language"
	SortField    Name = "sort_field"
	FontSize     Name = "font_size"
)

// Kind tags the type held by a [Value].
type Kind int

const (
	KindBool Kind = iota
	KindString
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	default:
		return "unknown"
	}
}

// Value is a tagged union of the setting types.
type Value struct {
	kind Kind
	b    bool
	s    string
	i    int
}

func Bool(b bool) Value     { return Value{kind: KindBool, b: b} }
func String(s string) Value { return Value{kind: KindString, s: s} }
func Int(i int) Value       { return Value{kind: KindInt, i: i} }

func (v Value) Kind() Kind { return v.kind }

// AsBool returns the boolean payload and whether the value is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsString returns the string payload and whether the value is a string.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsInt returns the integer payload and whether the value is an integer.
func (v Value) AsInt() (int, bool) { return v.i, v.kind == KindInt }

func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	default:
		return v.s
	}
}

// schema fixes the kind of every known setting.
var schema = map[Name]Kind{
	CapoRequired: KindBool,
	ShowChords:   KindBool,
	CompactList:  KindBool,
	ShowToolbar:  KindBool,
	Language:     KindString,
	SortField:    KindString,
	FontSize:     KindInt,
}

// Names returns every known setting name, sorted.
func Names() []Name {
	names := slices.Collect(maps.Keys(schema))
	slices.Sort(names)
	return names
}

// Settings is an immutable snapshot of preferences. Transitions return a new snapshot.
type Settings map[Name]Value

// Defaults returns the preferences used before any configuration is applied.
func Defaults() Settings {
	return Settings{
		CapoRequired: Bool(false),
		ShowChords:   Bool(true),
		CompactList:  Bool(false),
		ShowToolbar:  Bool(true),
		Language:     String("all"),
		SortField:    String("title"),
		FontSize:     Int(14),
	}
}

// Get returns the value for name.
func (s Settings) Get(name Name) (Value, bool) {
	v, ok := s[name]
	return v, ok
}

// Bool reads a boolean setting, returning false when absent or of another kind.
func (s Settings) Bool(name Name) bool {
	b, _ := s[name].AsBool()
	return b
}

// With returns a copy with name set to v. The value kind must match the schema.
func (s Settings) With(name Name, v Value) (Settings, error) {
	kind, ok := schema[name]
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownSetting, name)
	}
	if v.kind != kind {
		return s, fmt.Errorf("setting %q expects %s, got %s", name, kind, v.kind)
	}
	out := maps.Clone(s)
	if out == nil {
		out = Settings{}
	}
	out[name] = v
	return out, nil
}

// Toggle returns a copy of s with the boolean setting name flipped.
//
// Unknown names and non-boolean values fail with [ErrNotToggleable]; s is returned unchanged so callers can
// report the diagnostic and carry on with the previous state.
func Toggle(s Settings, name Name) (Settings, error) {
	if kind, ok := schema[name]; !ok || kind != KindBool {
		return s, fmt.Errorf("%w: %q", ErrNotToggleable, name)
	}

	current, ok := s[name]
	if !ok {
		current = Defaults()[name]
	}
	b, isBool := current.AsBool()
	if !isBool {
		return s, fmt.Errorf("%w: %q holds a %s", ErrNotToggleable, name, current.kind)
	}

	out := maps.Clone(s)
	if out == nil {
		out = Settings{}
	}
	out[name] = Bool(!b)
	return out, nil
}

// FromMap builds settings from loosely typed input such as a decoded config table.
//
// Known names with a matching type are applied over [Defaults]; the rest are reported in the returned error slice
// and otherwise ignored.
func FromMap(raw map[string]any) (Settings, []error) {
	out := Defaults()
	var errs []error

	for key, val := range raw {
		name := Name(key)
		kind, ok := schema[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownSetting, key))
			continue
		}

		var v Value
		switch typed := val.(type) {
		case bool:
			v = Bool(typed)
		case string:
			v = String(typed)
		case int:
			v = Int(typed)
		case int64:
			v = Int(int(typed))
		default:
			errs = append(errs, fmt.Errorf("setting %q: unsupported type %T", key, val))
			continue
		}

		if v.kind != kind {
			errs = append(errs, fmt.Errorf("setting %q expects %s, got %s", key, kind, v.kind))
			continue
		}
		out[name] = v
	}

	return out, errs
}
