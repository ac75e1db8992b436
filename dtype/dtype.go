// Package dtype describes fixed-shape structured records and exposes
// zero-copy, named-field views over raw slot bytes.
//
// A Dtype is an ordered list of named, fixed-width scalar fields. It never
// changes shape after construction: mimoring has no schema evolution
// (spec Non-goal), so Dtype is immutable once built.
package dtype

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies a fixed-width scalar field type.
type Kind uint8

const (
	I8 Kind = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	// Str is a fixed-length byte string ("Sn" in dtype strings). Its
	// width is carried on the Field, not the Kind.
	Str
)

// String returns the descriptor-string spelling of k (without a Str width).
func (k Kind) String() string {
	switch k {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Str:
		return "S"
	default:
		return "invalid"
	}
}

// Width returns the fixed width in bytes of k, or 0 for Str (whose width
// is per-field, see Field.Width).
func (k Kind) Width() int {
	switch k {
	case I8, U8:
		return 1
	case I16, U16:
		return 2
	case I32, U32, F32:
		return 4
	case I64, U64, F64:
		return 8
	default:
		return 0
	}
}

// Field is one named, fixed-width record member.
type Field struct {
	Name  string
	Kind  Kind
	Width int // only meaningful for Kind == Str; otherwise Kind.Width()
}

// size returns the byte width this field occupies in a packed record.
func (f Field) size() int {
	if f.Kind == Str {
		return f.Width
	}
	return f.Kind.Width()
}

// Dtype is an ordered, tightly packed structured record descriptor.
// Field access is by name; offsets are precomputed at construction, so a
// field's byte offset is a map lookup with no further allocation. The
// Field descriptor itself (see Dtype.Field) is found by a linear scan of
// the field list.
type Dtype struct {
	fields  []Field
	offsets map[string]int
	size    int
}

// New builds a Dtype from an ordered field list. Fields are packed with no
// padding, matching spec.md §3 ("Memory layout per slot ... tightly packed
// per the declared dtypes, with no padding"). Returns an error if fields is
// empty, a field has a non-positive size, or a name is duplicated.
func New(fields []Field) (*Dtype, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("dtype: at least one field is required")
	}

	offsets := make(map[string]int, len(fields))
	offset := 0
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("dtype: field name cannot be empty")
		}
		if _, dup := offsets[f.Name]; dup {
			return nil, fmt.Errorf("dtype: duplicate field name %q", f.Name)
		}
		sz := f.size()
		if sz <= 0 {
			return nil, fmt.Errorf("dtype: field %q has non-positive size", f.Name)
		}
		offsets[f.Name] = offset
		offset += sz
	}

	cp := make([]Field, len(fields))
	copy(cp, fields)

	return &Dtype{fields: cp, offsets: offsets, size: offset}, nil
}

// Parse builds a Dtype from a compact descriptor string, e.g.
// "value:f32,flags:u8,label:S8". This mirrors the teacher's
// string-based configuration convention (ParseSize/ParseDuration in the
// original lethe config.go) applied to structured dtypes instead of
// byte sizes and durations.
func Parse(s string) (*Dtype, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("dtype: empty descriptor string")
	}

	parts := strings.Split(s, ",")
	fields := make([]Field, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		nameAndKind := strings.SplitN(part, ":", 2)
		if len(nameAndKind) != 2 {
			return nil, fmt.Errorf("dtype: invalid field descriptor %q (want name:kind)", part)
		}
		name := strings.TrimSpace(nameAndKind[0])
		kindStr := strings.TrimSpace(nameAndKind[1])

		field, err := parseKind(name, kindStr)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	return New(fields)
}

func parseKind(name, kindStr string) (Field, error) {
	lower := strings.ToLower(kindStr)
	switch lower {
	case "i8":
		return Field{Name: name, Kind: I8}, nil
	case "i16":
		return Field{Name: name, Kind: I16}, nil
	case "i32":
		return Field{Name: name, Kind: I32}, nil
	case "i64":
		return Field{Name: name, Kind: I64}, nil
	case "u8":
		return Field{Name: name, Kind: U8}, nil
	case "u16":
		return Field{Name: name, Kind: U16}, nil
	case "u32":
		return Field{Name: name, Kind: U32}, nil
	case "u64":
		return Field{Name: name, Kind: U64}, nil
	case "f32":
		return Field{Name: name, Kind: F32}, nil
	case "f64":
		return Field{Name: name, Kind: F64}, nil
	}

	if strings.HasPrefix(lower, "s") {
		widthStr := kindStr[1:]
		width, err := strconv.Atoi(widthStr)
		if err != nil || width <= 0 {
			return Field{}, fmt.Errorf("dtype: invalid fixed-string width in %q", kindStr)
		}
		return Field{Name: name, Kind: Str, Width: width}, nil
	}

	return Field{}, fmt.Errorf("dtype: unknown scalar kind %q", kindStr)
}

// Fields returns the ordered field list. The returned slice must not be
// mutated by the caller.
func (d *Dtype) Fields() []Field { return d.fields }

// Size returns the total packed size in bytes of one record of this dtype.
func (d *Dtype) Size() int { return d.size }

// Offset returns the byte offset of the named field, and whether it exists.
func (d *Dtype) Offset(name string) (int, bool) {
	off, ok := d.offsets[name]
	return off, ok
}

// Field returns the Field descriptor for name, and whether it exists.
func (d *Dtype) Field(name string) (Field, bool) {
	for _, f := range d.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// MetadataDtype is the fixed per-slot metadata record shape required by
// spec.md §3/§6: counter (u64), timestamp_ns (u64), deadtime (f64). It is
// never configurable and is shared by every Buffer.
var MetadataDtype = mustNew([]Field{
	{Name: "counter", Kind: U64},
	{Name: "timestamp_ns", Kind: U64},
	{Name: "deadtime", Kind: F64},
})

func mustNew(fields []Field) *Dtype {
	d, err := New(fields)
	if err != nil {
		panic(fmt.Sprintf("dtype: invariant metadata dtype failed to build: %v", err))
	}
	return d
}
