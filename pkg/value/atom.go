// Package value implements the engine's value model: typed, totally ordered
// Atoms, fixed-arity Tuples built from them, per-relation Schemas, and the
// normalized Delta type used to describe relation changes.
package value

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind identifies an Atom's runtime type. The numeric value doubles as the
// leading byte of an Atom's canonical encoding and therefore fixes the
// cross-type ordering described in spec §3.1: Boolean < Integer < Float <
// String < Symbol < ID.
type Kind uint8

const (
	KindBoolean Kind = iota
	KindInteger
	KindFloat
	KindString
	KindSymbol
	KindID
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "Boolean"
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindSymbol:
		return "Symbol"
	case KindID:
		return "ID"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Atom is an immutable, typed scalar value. The zero Atom is a Boolean
// false; use the constructors below to build the other variants.
type Atom struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string // used for String, Symbol and ID
}

// Bool constructs a Boolean atom.
func Bool(v bool) Atom { return Atom{kind: KindBoolean, b: v} }

// Int constructs an Integer atom.
func Int(v int64) Atom { return Atom{kind: KindInteger, i: v} }

// Float constructs a Float atom. NaN payloads are accepted but collapse to
// a single canonical NaN for ordering and encoding purposes (spec §3.1).
func Float(v float64) Atom { return Atom{kind: KindFloat, f: v} }

// Str constructs a String atom.
func Str(v string) Atom { return Atom{kind: KindString, s: v} }

// Symbol constructs a Symbol atom (an interned identifier, distinguished
// from String only by type tag and intended use).
func Symbol(v string) Atom { return Atom{kind: KindSymbol, s: v} }

// ID constructs an ID atom (an opaque identifier, typically a string or a
// UUID's string form).
func ID(v string) Atom { return Atom{kind: KindID, s: v} }

// Kind reports the atom's runtime type.
func (a Atom) Kind() Kind { return a.kind }

// AsBool returns the atom's value as a bool; it panics if Kind() != KindBoolean.
func (a Atom) AsBool() bool {
	if a.kind != KindBoolean {
		panic(fmt.Sprintf("value: AsBool on %s atom", a.kind))
	}
	return a.b
}

// AsInt returns the atom's value as an int64; it panics if Kind() != KindInteger.
func (a Atom) AsInt() int64 {
	if a.kind != KindInteger {
		panic(fmt.Sprintf("value: AsInt on %s atom", a.kind))
	}
	return a.i
}

// AsFloat returns the atom's value as a float64; it panics if Kind() != KindFloat.
func (a Atom) AsFloat() float64 {
	if a.kind != KindFloat {
		panic(fmt.Sprintf("value: AsFloat on %s atom", a.kind))
	}
	return a.f
}

// AsString returns the atom's value as a string; it panics unless Kind() is
// KindString, KindSymbol or KindID.
func (a Atom) AsString() string {
	switch a.kind {
	case KindString, KindSymbol, KindID:
		return a.s
	default:
		panic(fmt.Sprintf("value: AsString on %s atom", a.kind))
	}
}

// Order is the three-way comparison result of CompareTo.
type Order int

const (
	Less    Order = -1
	Equal   Order = 0
	Greater Order = 1
)

// CompareTo implements the total order of spec §3.1: first by type tag,
// then by the type-specific order (numeric for Integer/Float, UTF-8 byte
// order for String/Symbol/ID, false<true for Boolean). NaN is treated as
// strictly greater than every finite Float and equal to every other NaN.
func (a Atom) CompareTo(b Atom) Order {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return Less
		}
		return Greater
	}
	switch a.kind {
	case KindBoolean:
		return compareBool(a.b, b.b)
	case KindInteger:
		return compareInt(a.i, b.i)
	case KindFloat:
		return compareFloat(a.f, b.f)
	case KindString, KindSymbol, KindID:
		return compareString(a.s, b.s)
	default:
		panic(fmt.Sprintf("value: unreachable atom kind %d", a.kind))
	}
}

// Equal reports whether two atoms compare equal.
func (a Atom) Equal(b Atom) bool { return a.CompareTo(b) == Equal }

func compareBool(a, b bool) Order {
	if a == b {
		return Equal
	}
	if !a && b {
		return Less
	}
	return Greater
}

func compareInt(a, b int64) Order {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func compareFloat(a, b float64) Order {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return Equal
	case aNaN:
		return Greater
	case bNaN:
		return Less
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

func compareString(a, b string) Order {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// canonicalNaNBits is the encoding used for every NaN Float atom: it is
// constructed to sort strictly above the encoding of +Inf (see floatBits).
const canonicalNaNBits = uint64(0xFFFFFFFFFFFFFFFF)

// floatBits returns an order-preserving uint64 encoding of f: for any two
// finite (or infinite) floats x, y, floatBits(x) < floatBits(y) iff x < y.
// NaN collapses to canonicalNaNBits, which sorts above every such encoding.
func floatBits(f float64) uint64 {
	if math.IsNaN(f) {
		return canonicalNaNBits
	}
	if f == 0 {
		// Canonicalize -0.0 and +0.0 to the same encoding; they compare equal.
		f = 0
	}
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		// Negative: flip all bits so that more-negative values sort lower.
		return ^bits
	}
	// Non-negative: flip the sign bit so it sorts above all negatives.
	return bits | (1 << 63)
}

// Bytes returns the atom's canonical byte encoding (spec §3.1): the first
// byte is the type tag; the remainder orders identically to CompareTo when
// compared with bytes.Compare, for atoms of the same kind.
func (a Atom) Bytes() []byte {
	switch a.kind {
	case KindBoolean:
		v := byte(0)
		if a.b {
			v = 1
		}
		return []byte{byte(a.kind), v}
	case KindInteger:
		buf := make([]byte, 9)
		buf[0] = byte(a.kind)
		binary.BigEndian.PutUint64(buf[1:], uint64(a.i)^(1<<63))
		return buf
	case KindFloat:
		buf := make([]byte, 9)
		buf[0] = byte(a.kind)
		binary.BigEndian.PutUint64(buf[1:], floatBits(a.f))
		return buf
	case KindString, KindSymbol, KindID:
		buf := make([]byte, 1+len(a.s))
		buf[0] = byte(a.kind)
		copy(buf[1:], a.s)
		return buf
	default:
		panic(fmt.Sprintf("value: unreachable atom kind %d", a.kind))
	}
}

// String renders the atom for debugging/logging.
func (a Atom) String() string {
	switch a.kind {
	case KindBoolean:
		return fmt.Sprintf("%v", a.b)
	case KindInteger:
		return fmt.Sprintf("%d", a.i)
	case KindFloat:
		return fmt.Sprintf("%g", a.f)
	case KindString:
		return fmt.Sprintf("%q", a.s)
	case KindSymbol:
		return ":" + a.s
	case KindID:
		return "#" + a.s
	default:
		return fmt.Sprintf("<invalid atom kind %d>", a.kind)
	}
}
