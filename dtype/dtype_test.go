package dtype

import "testing"

func TestNew_RejectsEmptyFields(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for empty field list")
	}
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	_, err := New([]Field{
		{Name: "x", Kind: U32},
		{Name: "x", Kind: F32},
	})
	if err == nil {
		t.Fatal("expected error for duplicate field name")
	}
}

func TestNew_RejectsNonPositiveStrWidth(t *testing.T) {
	_, err := New([]Field{{Name: "label", Kind: Str, Width: 0}})
	if err == nil {
		t.Fatal("expected error for zero-width string field")
	}
}

func TestNew_PacksFieldsWithNoPadding(t *testing.T) {
	d, err := New([]Field{
		{Name: "a", Kind: U8},
		{Name: "b", Kind: U32},
		{Name: "c", Kind: F64},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Size() != 1+4+8 {
		t.Fatalf("got size %d, want %d", d.Size(), 13)
	}

	cases := []struct {
		name string
		want int
	}{
		{"a", 0},
		{"b", 1},
		{"c", 5},
	}
	for _, tc := range cases {
		off, ok := d.Offset(tc.name)
		if !ok {
			t.Fatalf("field %q not found", tc.name)
		}
		if off != tc.want {
			t.Errorf("offset(%q) = %d, want %d", tc.name, off, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		descriptor string
		wantErr    bool
		wantSize   int
	}{
		{"single scalar", "value:f32", false, 4},
		{"multi scalar", "value:f32,flags:u8", false, 5},
		{"fixed string", "label:S8,value:i16", false, 10},
		{"case insensitive kind", "value:F64", false, 8},
		{"empty", "", true, 0},
		{"missing colon", "value", true, 0},
		{"unknown kind", "value:nope", true, 0},
		{"bad string width", "label:Sx", true, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Parse(tc.descriptor)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.descriptor)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", tc.descriptor, err)
			}
			if d.Size() != tc.wantSize {
				t.Errorf("size = %d, want %d", d.Size(), tc.wantSize)
			}
		})
	}
}

func TestMetadataDtype_Shape(t *testing.T) {
	fields := MetadataDtype.Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 metadata fields, got %d", len(fields))
	}
	want := []string{"counter", "timestamp_ns", "deadtime"}
	for i, name := range want {
		if fields[i].Name != name {
			t.Errorf("field %d = %q, want %q", i, fields[i].Name, name)
		}
	}
	if MetadataDtype.Size() != 8+8+8 {
		t.Errorf("metadata size = %d, want 24", MetadataDtype.Size())
	}
}
