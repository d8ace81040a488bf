package music

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// VocalRange is the span between the lowest and highest sung note, in semitones.
//
// An unknown range is represented by a nil *VocalRange, never by a zero-width range.
type VocalRange struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

// NewVocalRange builds a range, reporting false when low > high.
//
// Bounds are relative to the song's reference pitch and may be negative.
func NewVocalRange(low, high int) (*VocalRange, bool) {
	if low > high {
		return nil, false
	}
	return &VocalRange{Low: low, High: high}, true
}

// Semitones returns the size of the range.
func (r VocalRange) Semitones() int {
	return r.High - r.Low
}

// Contains reports whether inner fits entirely within r.
func (r VocalRange) Contains(inner VocalRange) bool {
	return r.Low <= inner.Low && inner.High <= r.High
}

// String renders the range as "low-high".
func (r VocalRange) String() string {
	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

// ParseRangeWindow parses a "low-high" or single "n" (meaning 0-n) window from user input.
// A leading minus belongs to the low bound, so "-3-4" is the window from -3 to 4.
//
// Unlike [ParseRange] this is strict: malformed input is an error.
func ParseRangeWindow(s string) (*VocalRange, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty range")
	}

	lowStr, highStr, found := s, "", false
	if i := strings.Index(s[1:], "-"); i >= 0 {
		lowStr, highStr, found = s[:i+1], s[i+2:], true
	}
	if !found {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid range %q: %w", s, err)
		}
		lowStr, highStr = "0", strconv.Itoa(n)
	}

	low, err := strconv.Atoi(strings.TrimSpace(lowStr))
	if err != nil {
		return nil, fmt.Errorf("invalid range low bound %q: %w", lowStr, err)
	}
	high, err := strconv.Atoi(strings.TrimSpace(highStr))
	if err != nil {
		return nil, fmt.Errorf("invalid range high bound %q: %w", highStr, err)
	}

	r, ok := NewVocalRange(low, high)
	if !ok {
		return nil, fmt.Errorf("invalid range %q: low bound exceeds high bound", s)
	}
	return r, nil
}

// rangeObject covers the object encodings found in catalog documents.
type rangeObject struct {
	Low       *int `json:"low"`
	High      *int `json:"high"`
	Semitones *int `json:"semitones"`
}

// ParseRange leniently decodes a raw range value.
//
// Accepted shapes: a semitone count (number or numeric string), {"low","high"}, {"semitones"}, or [low, high].
// Anything else, including null, negative sizes and inverted bounds, yields nil.
func ParseRange(raw json.RawMessage) *VocalRange {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	switch raw[0] {
	case '{':
		var obj rangeObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil
		}
		if obj.Low != nil && obj.High != nil {
			r, _ := NewVocalRange(*obj.Low, *obj.High)
			return r
		}
		if obj.Semitones != nil {
			r, _ := NewVocalRange(0, *obj.Semitones)
			return r
		}
		return nil
	case '[':
		var pair []int
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return nil
		}
		r, _ := NewVocalRange(pair[0], pair[1])
		return r
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		r, err := ParseRangeWindow(s)
		if err != nil {
			return nil
		}
		return r
	default:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil || n != float64(int(n)) {
			return nil
		}
		r, _ := NewVocalRange(0, int(n))
		return r
	}
}
