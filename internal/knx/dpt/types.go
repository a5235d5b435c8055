package dpt

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldKind discriminates the variants a format Field can take.
type FieldKind uint8

const (
	// Bit is a single-bit boolean field.
	Bit FieldKind = iota
	// UnsignedInteger is an unsigned integer field of arbitrary bit width.
	UnsignedInteger
	// SignedInteger is a two's-complement integer field of arbitrary bit width.
	SignedInteger
	// Float is a floating-point field (KNX 2-byte or 4-byte float encodings).
	Float
	// String is a fixed-size character field with a declared encoding.
	String
	// Enumeration maps raw integer values to human-readable text.
	Enumeration
	// RefType is an alias that resolves to another format, cloned at a
	// new bit offset within the owning Type.
	RefType
)

// String returns a lower-case name for the field kind, for diagnostics.
func (k FieldKind) String() string {
	switch k {
	case Bit:
		return "bit"
	case UnsignedInteger:
		return "unsigned"
	case SignedInteger:
		return "signed"
	case Float:
		return "float"
	case String:
		return "string"
	case Enumeration:
		return "enum"
	case RefType:
		return "ref"
	default:
		return "unknown"
	}
}

// Field describes one bit range within a Type's total size.
type Field struct {
	// Name identifies the field within its Type (e.g. "mantissa").
	Name string

	Kind FieldKind

	// BitStart is the field's offset in bits from the start of the
	// datapoint's value (bit 0 = most significant bit of byte 0).
	BitStart int

	// Size is the field's width in bits.
	Size int

	// StringEncoding names the character encoding for a String field
	// (e.g. "ASCII", "ISO-8859-1"). Empty for non-String fields.
	StringEncoding string

	// EnumValues maps raw integer values to display text, for
	// Enumeration fields.
	EnumValues map[int64]string

	// RefName names the Type id a RefType field aliases. Resolved
	// against a Registry by Type.Resolve.
	RefName string
}

// ID is a KNX datapoint type identifier: "DPT-n" (generic) or
// "DPST-n-m" (specific subtype n.m).
type ID string

// Major returns the type's major number and, if present, its minor
// (subtype) number.
func (id ID) Major() (major int, minor int, hasMinor bool, err error) {
	s := string(id)
	switch {
	case strings.HasPrefix(s, "DPST-"):
		parts := strings.Split(strings.TrimPrefix(s, "DPST-"), "-")
		if len(parts) != 2 {
			return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		major, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		minor, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		return major, minor, true, nil
	case strings.HasPrefix(s, "DPT-"):
		major, err = strconv.Atoi(strings.TrimPrefix(s, "DPT-"))
		if err != nil {
			return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
		return major, 0, false, nil
	default:
		return 0, 0, false, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
}

// Validate checks that the id is well-formed.
func (id ID) Validate() error {
	_, _, _, err := id.Major()
	return err
}

// Type is a datapoint type: a fixed total bit size and an ordered list
// of format fields describing its layout.
type Type struct {
	ID     ID
	Size   int // total size in bits
	Fields []Field
}

// Resolve expands any RefType fields in t by looking up their RefName in
// reg and cloning the referenced Type's fields at the RefType field's
// BitStart. It returns a new Type; t itself is not mutated.
func (t Type) Resolve(reg *Registry) (Type, error) {
	resolved := Type{ID: t.ID, Size: t.Size}
	for _, f := range t.Fields {
		if f.Kind != RefType {
			resolved.Fields = append(resolved.Fields, f)
			continue
		}
		base, err := reg.Lookup(ID(f.RefName))
		if err != nil {
			return Type{}, fmt.Errorf("%w: field %q references %q: %v", ErrUnknownRef, f.Name, f.RefName, err)
		}
		base, err = base.Resolve(reg)
		if err != nil {
			return Type{}, err
		}
		for _, bf := range base.Fields {
			clone := bf
			clone.BitStart = f.BitStart + bf.BitStart
			resolved.Fields = append(resolved.Fields, clone)
		}
	}
	return resolved, nil
}
