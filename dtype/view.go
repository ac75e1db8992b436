package dtype

import (
	"fmt"
	"unsafe"
)

// View is a zero-copy, named-field accessor over one packed record's
// bytes. It does not own the memory: the byte slice backing a View is
// expected to live inside a shared-memory slot (see package shm) and is
// only valid for the lifetime of the session that checked the slot out.
//
// Field access is computed from the Dtype's precomputed offsets; numeric
// fields are read and written via unsafe.Pointer casts over the backing
// slice, the same zero-copy technique used for fixed-layout shared-memory
// records throughout the example pool (see
// AlephTX-aleph-tx/feeder/shm/seqlock.go's ShmBboMessage field access).
// A successful numeric field read or write does not allocate; Str returns
// a newly allocated string.
type View struct {
	dtype *Dtype
	bytes []byte
}

// NewView wraps raw bytes with the given dtype. len(raw) must be at least
// dtype.Size(); NewView panics otherwise, since a short slice indicates a
// programming error in the caller (slot storage must always hand out a
// window of the correct size).
func NewView(d *Dtype, raw []byte) View {
	if len(raw) < d.Size() {
		panic(fmt.Sprintf("dtype: view buffer too small: have %d bytes, need %d", len(raw), d.Size()))
	}
	return View{dtype: d, bytes: raw[:d.Size()]}
}

// Dtype returns the structured dtype this view interprets its bytes as.
func (v View) Dtype() *Dtype { return v.dtype }

// Bytes returns the raw backing slice. Callers that need to retain data
// beyond the session's lifetime (e.g. an Observer copying a snapshot
// before release, per spec.md §4.5) must copy it themselves.
func (v View) Bytes() []byte { return v.bytes }

func (v View) fieldPtr(name string) (unsafe.Pointer, Field, error) {
	off, ok := v.dtype.Offset(name)
	if !ok {
		return nil, Field{}, fmt.Errorf("dtype: unknown field %q", name)
	}
	f, _ := v.dtype.Field(name)
	return unsafe.Pointer(&v.bytes[off]), f, nil
}

// Int64 reads a signed integer field of any width as an int64.
func (v View) Int64(name string) (int64, error) {
	ptr, f, err := v.fieldPtr(name)
	if err != nil {
		return 0, err
	}
	switch f.Kind {
	case I8:
		return int64(*(*int8)(ptr)), nil
	case I16:
		return int64(*(*int16)(ptr)), nil
	case I32:
		return int64(*(*int32)(ptr)), nil
	case I64:
		return *(*int64)(ptr), nil
	default:
		return 0, fmt.Errorf("dtype: field %q is not a signed integer", name)
	}
}

// Uint64 reads an unsigned integer field of any width as a uint64.
func (v View) Uint64(name string) (uint64, error) {
	ptr, f, err := v.fieldPtr(name)
	if err != nil {
		return 0, err
	}
	switch f.Kind {
	case U8:
		return uint64(*(*uint8)(ptr)), nil
	case U16:
		return uint64(*(*uint16)(ptr)), nil
	case U32:
		return uint64(*(*uint32)(ptr)), nil
	case U64:
		return *(*uint64)(ptr), nil
	default:
		return 0, fmt.Errorf("dtype: field %q is not an unsigned integer", name)
	}
}

// Float64 reads a floating-point field of any width as a float64.
func (v View) Float64(name string) (float64, error) {
	ptr, f, err := v.fieldPtr(name)
	if err != nil {
		return 0, err
	}
	switch f.Kind {
	case F32:
		return float64(*(*float32)(ptr)), nil
	case F64:
		return *(*float64)(ptr), nil
	default:
		return 0, fmt.Errorf("dtype: field %q is not a float", name)
	}
}

// Str reads a fixed-length byte-string field, trimmed of trailing NUL
// padding.
func (v View) Str(name string) (string, error) {
	off, ok := v.dtype.Offset(name)
	if !ok {
		return "", fmt.Errorf("dtype: unknown field %q", name)
	}
	f, _ := v.dtype.Field(name)
	if f.Kind != Str {
		return "", fmt.Errorf("dtype: field %q is not a fixed string", name)
	}
	raw := v.bytes[off : off+f.Width]
	n := len(raw)
	for n > 0 && raw[n-1] == 0 {
		n--
	}
	return string(raw[:n]), nil
}

// SetInt64 writes a signed integer field, narrowing to the field's width.
func (v View) SetInt64(name string, val int64) error {
	ptr, f, err := v.fieldPtr(name)
	if err != nil {
		return err
	}
	switch f.Kind {
	case I8:
		*(*int8)(ptr) = int8(val)
	case I16:
		*(*int16)(ptr) = int16(val)
	case I32:
		*(*int32)(ptr) = int32(val)
	case I64:
		*(*int64)(ptr) = val
	default:
		return fmt.Errorf("dtype: field %q is not a signed integer", name)
	}
	return nil
}

// SetUint64 writes an unsigned integer field, narrowing to the field's width.
func (v View) SetUint64(name string, val uint64) error {
	ptr, f, err := v.fieldPtr(name)
	if err != nil {
		return err
	}
	switch f.Kind {
	case U8:
		*(*uint8)(ptr) = uint8(val)
	case U16:
		*(*uint16)(ptr) = uint16(val)
	case U32:
		*(*uint32)(ptr) = uint32(val)
	case U64:
		*(*uint64)(ptr) = val
	default:
		return fmt.Errorf("dtype: field %q is not an unsigned integer", name)
	}
	return nil
}

// SetFloat64 writes a floating-point field, narrowing to the field's width.
func (v View) SetFloat64(name string, val float64) error {
	ptr, f, err := v.fieldPtr(name)
	if err != nil {
		return err
	}
	switch f.Kind {
	case F32:
		*(*float32)(ptr) = float32(val)
	case F64:
		*(*float64)(ptr) = val
	default:
		return fmt.Errorf("dtype: field %q is not a float", name)
	}
	return nil
}

// SetStr writes a fixed-length byte-string field, truncating or
// zero-padding val to the field's declared width.
func (v View) SetStr(name, val string) error {
	off, ok := v.dtype.Offset(name)
	if !ok {
		return fmt.Errorf("dtype: unknown field %q", name)
	}
	f, _ := v.dtype.Field(name)
	if f.Kind != Str {
		return fmt.Errorf("dtype: field %q is not a fixed string", name)
	}
	dst := v.bytes[off : off+f.Width]
	n := copy(dst, val)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

// CopyOut returns an owned copy of the view's bytes. Observers must call
// this for any data they need after releasing their token (spec.md §4.5).
func (v View) CopyOut() []byte {
	cp := make([]byte, len(v.bytes))
	copy(cp, v.bytes)
	return cp
}
