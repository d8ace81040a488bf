// package music models pitch classes, semitone arithmetic and vocal ranges
package music

import (
	"errors"
	"fmt"
)

// ErrInvalidKey is returned when a key name is not one of the twelve canonical pitch classes.
var ErrInvalidKey = errors.New("invalid key")

// Key is one of the twelve canonical pitch classes. The zero value is C.
type Key int

// Pitch classes in semitone order, using the Central European naming where B is B-flat and H is B natural.
const (
	C Key = iota
	CSharp
	D
	Es
	E
	F
	FSharp
	G
	As
	A
	B
	H
)

// Semitones per octave
const octave = 12

var keyNames = [octave]string{"C", "C#", "D", "Es", "E", "F", "F#", "G", "As", "A", "B", "H"}

var keysByName = func() map[string]Key {
	m := make(map[string]Key, octave)
	for i, name := range keyNames {
		m[name] = Key(i)
	}
	return m
}()

// Keys returns all twelve keys in semitone order.
func Keys() []Key {
	keys := make([]Key, octave)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// ParseKey resolves a canonical key name. Matching is exact; aliases such as "Db" or "c" are rejected.
func ParseKey(name string) (Key, error) {
	k, ok := keysByName[name]
	if !ok {
		return C, fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	return k, nil
}

// MustParseKey is like [ParseKey] but panics on failure. Intended for tests and static tables.
func MustParseKey(name string) Key {
	k, err := ParseKey(name)
	if err != nil {
		panic(err)
	}
	return k
}

// Valid reports whether k is one of the twelve pitch classes.
func (k Key) Valid() bool {
	return k >= C && k <= H
}

// String returns the canonical key name.
func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return keyNames[k]
}

// MarshalText implements [encoding.TextMarshaler].
func (k Key) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidKey, int(k))
	}
	return []byte(keyNames[k]), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SemitoneIndex returns the position of k within the octave, 0..11.
func SemitoneIndex(k Key) int {
	return mod(int(k), octave)
}

// Distance returns the upward semitone distance from a to b, 0..11.
func Distance(a, b Key) int {
	return mod(SemitoneIndex(b)-SemitoneIndex(a), octave)
}

// Transpose shifts k by n semitones. n may be negative; multiples of 12 are a no-op.
func Transpose(k Key, n int) Key {
	return Key(mod(SemitoneIndex(k)+mod(n, octave), octave))
}

// mod is the non-negative remainder of a / m.
func mod(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
