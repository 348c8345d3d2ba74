package schema

import (
	"errors"
	"testing"

	"github.com/elliotchance/orderedmap/v3"
)

func TestFlagDecodeLaw(t *testing.T) {
	f, err := NewFlag("f", 2, 5)
	if err != nil {
		t.Fatalf("new flag: %v", err)
	}
	if got := f.Decode(0x2C); got != 3 {
		t.Fatalf("decode 0x2C: got %d want 3", got)
	}

	// decode(w) == (w >> start) & ((1<<(stop-start))-1) for all ranges.
	words := []uint32{0, 1, 0x2C, 0xFFFF_FFFF, 0xDEAD_BEEF}
	for start := uint(0); start <= 32; start++ {
		for stop := start; stop <= 32; stop++ {
			f, err := NewFlag("f", start, stop)
			if err != nil {
				t.Fatalf("new flag [%d,%d): %v", start, stop, err)
			}
			for _, w := range words {
				var want uint32
				if stop > start {
					mask := uint32(1)<<(stop-start) - 1
					if stop-start == 32 {
						mask = 0xFFFF_FFFF
					}
					want = (w >> start) & mask
				}
				if got := f.Decode(w); got != want {
					t.Fatalf("flag [%d,%d) decode %#x: got %d want %d", start, stop, w, got, want)
				}
			}
		}
	}
}

func TestFlagInvalidRanges(t *testing.T) {
	if _, err := NewFlag("f", 5, 2); err == nil {
		t.Fatalf("expected error for start above stop")
	}
	if _, err := NewFlag("f", 0, 33); err == nil {
		t.Fatalf("expected error for stop beyond 32")
	}
}

func TestScalarKinds(t *testing.T) {
	m, err := NewMessage(0x01, "KINDS", []Descriptor{
		Scalar{Name: "u1", Kind: KindU1, Count: 1},
		Scalar{Name: "i1", Kind: KindI1, Count: 1},
		Scalar{Name: "u2", Kind: KindU2, Count: 1},
		Scalar{Name: "i2", Kind: KindI2, Count: 1},
		Scalar{Name: "u4", Kind: KindU4, Count: 1},
		Scalar{Name: "i4", Kind: KindI4, Count: 1},
	})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	payload := []byte{
		0xFF,       // u1
		0xFF,       // i1 = -1
		0x34, 0x12, // u2 LE
		0xFF, 0xFF, // i2 = -1
		0x78, 0x56, 0x34, 0x12, // u4 LE
		0xFF, 0xFF, 0xFF, 0xFF, // i4 = -1
	}
	rec, err := m.Decode(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantU := map[string]uint64{"u1": 0xFF, "u2": 0x1234, "u4": 0x12345678}
	for name, want := range wantU {
		v, _ := rec.Fields.Get(name)
		if v.(uint64) != want {
			t.Fatalf("%s: got %v want %d", name, v, want)
		}
	}
	for _, name := range []string{"i1", "i2", "i4"} {
		v, _ := rec.Fields.Get(name)
		if v.(int64) != -1 {
			t.Fatalf("%s: got %v want -1", name, v)
		}
	}
}

func TestScalarStringStripsNULAndSubstitutes(t *testing.T) {
	m, err := NewMessage(0x02, "STR", []Descriptor{
		Scalar{Name: "s", Kind: KindStr, Count: 8},
	})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	rec, err := m.Decode([]byte{'R', 'O', 'M', 0xFF, '3', 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, _ := rec.Fields.Get("s")
	if v.(string) != "ROM?3" {
		t.Fatalf("string: got %q want %q", v, "ROM?3")
	}
}

func TestFixedSizeLengthMismatch(t *testing.T) {
	m, err := NewMessage(0x03, "FIXED", []Descriptor{
		Scalar{Name: "a", Kind: KindU1, Count: 1},
		Scalar{Name: "b", Kind: KindU2, Count: 1},
	})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	if _, err := m.Decode([]byte{1, 2, 3}); err != nil {
		t.Fatalf("exact size: %v", err)
	}
	for _, n := range []int{2, 4} {
		_, err := m.Decode(make([]byte, n))
		var lm *LengthMismatchError
		if !errors.As(err, &lm) {
			t.Fatalf("len %d: expected LengthMismatchError, got %v", n, err)
		}
		if lm.Expected != 3 || lm.Actual != n {
			t.Fatalf("len %d: unexpected mismatch detail: %+v", n, lm)
		}
	}
}

func repeatedMessage(t *testing.T) *Message {
	t.Helper()
	m, err := NewMessage(0x04, "REP", []Descriptor{
		Scalar{Name: "count", Kind: KindU2, Count: 1},
		RepeatedBlock{Name: "items", Inner: []Descriptor{
			Scalar{Name: "x", Kind: KindU2, Count: 1},
			Scalar{Name: "y", Kind: KindU2, Count: 1},
		}},
	})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	return m
}

func TestRepeatResolution(t *testing.T) {
	m := repeatedMessage(t)
	// Base size 2, unit size 4: length 6 is one repetition, 10 two, 14 three.
	for _, tc := range []struct {
		length int
		reps   int
	}{
		{6, 1}, {10, 2}, {14, 3},
	} {
		rec, err := m.Decode(make([]byte, tc.length))
		if err != nil {
			t.Fatalf("len %d: %v", tc.length, err)
		}
		v, _ := rec.Fields.Get("items")
		items := v.([]*orderedmap.OrderedMap[string, any])
		if len(items) != tc.reps {
			t.Fatalf("len %d: got %d repetitions want %d", tc.length, len(items), tc.reps)
		}
	}
	for _, n := range []int{2, 8} {
		_, err := m.Decode(make([]byte, n))
		var lm *LengthMismatchError
		if !errors.As(err, &lm) {
			t.Fatalf("len %d: expected LengthMismatchError, got %v", n, err)
		}
	}
}

func TestRepeatedDecodeIsIndependentAcrossCalls(t *testing.T) {
	m := repeatedMessage(t)
	payload2 := []byte{0xAA, 0xBB, 1, 0, 2, 0, 3, 0, 4, 0}
	payload3 := []byte{0xCC, 0xDD, 5, 0, 6, 0, 7, 0, 8, 0, 9, 0, 10, 0}

	first, err := m.Decode(payload2)
	if err != nil {
		t.Fatalf("first decode: %v", err)
	}
	second, err := m.Decode(payload3)
	if err != nil {
		t.Fatalf("second decode: %v", err)
	}
	third, err := m.Decode(payload2)
	if err != nil {
		t.Fatalf("third decode: %v", err)
	}

	count := func(rec *Record) int {
		v, _ := rec.Fields.Get("items")
		return len(v.([]*orderedmap.OrderedMap[string, any]))
	}
	if count(first) != 2 || count(second) != 3 || count(third) != 2 {
		t.Fatalf("repetition counts leaked across decodes: %d %d %d",
			count(first), count(second), count(third))
	}

	v, _ := first.Fields.Get("items")
	x, _ := v.([]*orderedmap.OrderedMap[string, any])[0].Get("x")
	if x.(uint64) != 1 {
		t.Fatalf("first decode mutated: x=%v", x)
	}
}

func TestBitFieldDecode(t *testing.T) {
	m, err := NewMessage(0x05, "BITS", []Descriptor{
		BitField{Name: "flags", Width: 2, Flags: []Flag{
			MustFlag("lo", 0, 4),
			MustFlag("mid", 4, 12),
			MustFlag("hi", 12, 16),
		}},
	})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	rec, err := m.Decode([]byte{0x34, 0x12}) // word 0x1234 LE
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, _ := rec.Fields.Get("flags")
	flags := v.(*orderedmap.OrderedMap[string, uint32])
	for name, want := range map[string]uint32{"lo": 0x4, "mid": 0x23, "hi": 0x1} {
		got, _ := flags.Get(name)
		if got != want {
			t.Fatalf("flag %s: got %#x want %#x", name, got, want)
		}
	}
}

func TestSchemaValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		id    int
		descs []Descriptor
	}{
		{"id out of range", 0x100, []Descriptor{Scalar{Name: "a", Kind: KindU1, Count: 1}}},
		{"invalid kind", 0x01, []Descriptor{Scalar{Name: "a", Kind: Kind(99), Count: 1}}},
		{"zero count", 0x01, []Descriptor{Scalar{Name: "a", Kind: KindU1, Count: 0}}},
		{"bad width", 0x01, []Descriptor{BitField{Name: "b", Width: 3}}},
		{"flag beyond width", 0x01, []Descriptor{
			BitField{Name: "b", Width: 1, Flags: []Flag{{Name: "f", Start: 0, Stop: 9}}},
		}},
		{"double repeat", 0x01, []Descriptor{
			RepeatedBlock{Name: "r1", Inner: []Descriptor{Scalar{Name: "a", Kind: KindU1, Count: 1}}},
			RepeatedBlock{Name: "r2", Inner: []Descriptor{Scalar{Name: "b", Kind: KindU1, Count: 1}}},
		}},
		{"zero-size repeat unit", 0x01, []Descriptor{
			RepeatedBlock{Name: "r", Inner: nil},
		}},
		{"nested repeat", 0x01, []Descriptor{
			RepeatedBlock{Name: "outer", Inner: []Descriptor{
				RepeatedBlock{Name: "inner", Inner: []Descriptor{Scalar{Name: "a", Kind: KindU1, Count: 1}}},
			}},
		}},
	}
	for _, tc := range cases {
		_, err := NewMessage(tc.id, "BAD", tc.descs)
		var se *SchemaError
		if !errors.As(err, &se) {
			t.Fatalf("%s: expected SchemaError, got %v", tc.name, err)
		}
	}
}

func TestRegistryDispatch(t *testing.T) {
	msg := MustMessage(0x07, "PVT", Scalar{Name: "a", Kind: KindU1, Count: 1})
	cls := MustClass(0x01, "NAV", msg)
	reg := NewRegistry(cls)

	if !reg.Contains(0x01, 0x07) {
		t.Fatalf("expected pair to be registered")
	}
	if reg.Contains(0x01, 0x08) || reg.Contains(0x02, 0x07) {
		t.Fatalf("unexpected registration")
	}

	rec, err := reg.Decode(0x01, 0x07, []byte{42})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Class != "NAV" || rec.Message != "PVT" {
		t.Fatalf("record names: %s/%s", rec.Class, rec.Message)
	}

	_, err = reg.Decode(0x01, 0x08, nil)
	var um *UnknownMessageError
	if !errors.As(err, &um) || !um.ClassKnown {
		t.Fatalf("unknown message in known class: %v", err)
	}
	_, err = reg.Decode(0x02, 0x07, nil)
	if !errors.As(err, &um) || um.ClassKnown {
		t.Fatalf("unknown class: %v", err)
	}
}

func TestRegistryLastWriteWins(t *testing.T) {
	cls := MustClass(0x01, "NAV",
		MustMessage(0x07, "OLD", Scalar{Name: "a", Kind: KindU1, Count: 1}),
	)
	cls.Register(MustMessage(0x07, "NEW", Scalar{Name: "a", Kind: KindU1, Count: 1}))
	reg := NewRegistry(cls)
	rec, err := reg.Decode(0x01, 0x07, []byte{1})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Message != "NEW" {
		t.Fatalf("expected replacement schema, got %s", rec.Message)
	}
}
