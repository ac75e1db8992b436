package dtype

import "testing"

func mustDtype(t *testing.T, fields ...Field) *Dtype {
	t.Helper()
	d, err := New(fields)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestView_IntRoundTrip(t *testing.T) {
	d := mustDtype(t, Field{Name: "a", Kind: I8}, Field{Name: "b", Kind: I64})
	raw := make([]byte, d.Size())
	v := NewView(d, raw)

	if err := v.SetInt64("a", -5); err != nil {
		t.Fatal(err)
	}
	if err := v.SetInt64("b", -123456789); err != nil {
		t.Fatal(err)
	}

	got, err := v.Int64("a")
	if err != nil || got != -5 {
		t.Errorf("a = %d, %v; want -5, nil", got, err)
	}
	got, err = v.Int64("b")
	if err != nil || got != -123456789 {
		t.Errorf("b = %d, %v; want -123456789, nil", got, err)
	}
}

func TestView_UintRoundTrip(t *testing.T) {
	d := mustDtype(t, Field{Name: "x", Kind: U16}, Field{Name: "y", Kind: U64})
	raw := make([]byte, d.Size())
	v := NewView(d, raw)

	if err := v.SetUint64("x", 65535); err != nil {
		t.Fatal(err)
	}
	if err := v.SetUint64("y", 1<<40); err != nil {
		t.Fatal(err)
	}

	if got, err := v.Uint64("x"); err != nil || got != 65535 {
		t.Errorf("x = %d, %v; want 65535, nil", got, err)
	}
	if got, err := v.Uint64("y"); err != nil || got != 1<<40 {
		t.Errorf("y = %d, %v; want %d, nil", got, err, uint64(1)<<40)
	}
}

func TestView_FloatRoundTrip(t *testing.T) {
	d := mustDtype(t, Field{Name: "f32", Kind: F32}, Field{Name: "f64", Kind: F64})
	raw := make([]byte, d.Size())
	v := NewView(d, raw)

	if err := v.SetFloat64("f32", 3.5); err != nil {
		t.Fatal(err)
	}
	if err := v.SetFloat64("f64", 2.718281828459045); err != nil {
		t.Fatal(err)
	}

	if got, err := v.Float64("f32"); err != nil || got != 3.5 {
		t.Errorf("f32 = %v, %v; want 3.5, nil", got, err)
	}
	if got, err := v.Float64("f64"); err != nil || got != 2.718281828459045 {
		t.Errorf("f64 = %v, %v; want 2.718281828459045, nil", got, err)
	}
}

func TestView_StrRoundTrip(t *testing.T) {
	d := mustDtype(t, Field{Name: "label", Kind: Str, Width: 8})
	raw := make([]byte, d.Size())
	v := NewView(d, raw)

	if err := v.SetStr("label", "hi"); err != nil {
		t.Fatal(err)
	}
	got, err := v.Str("label")
	if err != nil || got != "hi" {
		t.Errorf("label = %q, %v; want \"hi\", nil", got, err)
	}

	// Truncation: value longer than field width is cut, not an error.
	if err := v.SetStr("label", "waytoolongforthisfield"); err != nil {
		t.Fatal(err)
	}
	got, err = v.Str("label")
	if err != nil || len(got) != 8 {
		t.Errorf("label = %q (len %d), %v; want len 8, nil", got, len(got), err)
	}
}

func TestView_UnknownField(t *testing.T) {
	d := mustDtype(t, Field{Name: "a", Kind: I32})
	v := NewView(d, make([]byte, d.Size()))

	if _, err := v.Int64("nope"); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, err := v.Float64("a"); err == nil {
		t.Error("expected type-mismatch error reading int field as float")
	}
}

func TestView_AliasesBackingBytes(t *testing.T) {
	d := mustDtype(t, Field{Name: "a", Kind: U32})
	raw := make([]byte, d.Size())
	v := NewView(d, raw)

	if err := v.SetUint64("a", 42); err != nil {
		t.Fatal(err)
	}

	// A second view over the same backing slice must observe the write:
	// this is the zero-copy contract the whole package exists for.
	v2 := NewView(d, raw)
	got, err := v2.Uint64("a")
	if err != nil || got != 42 {
		t.Errorf("got %d, %v; want 42, nil via aliased view", got, err)
	}
}

func TestNewView_PanicsOnShortBuffer(t *testing.T) {
	d := mustDtype(t, Field{Name: "a", Kind: U64})
	defer func() {
		if recover() == nil {
			t.Error("expected panic for undersized buffer")
		}
	}()
	NewView(d, make([]byte, 2))
}
