package schema

import (
	"encoding/binary"
	"math"

	"github.com/elliotchance/orderedmap/v3"
)

// Kind identifies the wire representation of one scalar element.
type Kind uint8

const (
	KindU1 Kind = iota + 1 // unsigned 8-bit
	KindI1                 // signed 8-bit
	KindU2                 // unsigned 16-bit little-endian
	KindI2                 // signed 16-bit little-endian
	KindU4                 // unsigned 32-bit little-endian
	KindI4                 // signed 32-bit little-endian
	KindR4                 // IEEE754 single
	KindR8                 // IEEE754 double
	KindCh                 // raw byte
	KindStr                // fixed-length ASCII, NUL padded
)

func (k Kind) valid() bool {
	return k >= KindU1 && k <= KindStr
}

// Size returns the wire size of a single element of this kind in bytes.
// For KindStr the element size is 1; the scalar's count is the string length.
func (k Kind) Size() int {
	switch k {
	case KindU1, KindI1, KindCh, KindStr:
		return 1
	case KindU2, KindI2:
		return 2
	case KindU4, KindI4, KindR4:
		return 4
	case KindR8:
		return 8
	default:
		return 0
	}
}

// Descriptor describes one element of a message's byte layout. The set of
// implementations is closed: Pad, Scalar, BitField and RepeatedBlock.
type Descriptor interface {
	sealed()
}

// Pad skips a run of bytes and produces no field.
type Pad struct {
	Count int
}

func (Pad) sealed() {}

// Scalar reads Count elements of the given kind. Count > 1 yields a slice,
// except for KindStr where Count is the byte length of a single string.
type Scalar struct {
	Name  string
	Kind  Kind
	Count int
}

func (Scalar) sealed() {}

// Flag is a named sub-range of bits [Start, Stop) within a bit field word.
// Zero-indexed, stop exclusive.
type Flag struct {
	Name  string
	Start uint
	Stop  uint

	mask uint32
}

// NewFlag validates the bit range and precomputes the extraction mask.
func NewFlag(name string, start, stop uint) (Flag, error) {
	f := Flag{Name: name, Start: start, Stop: stop}
	if err := f.validate(); err != nil {
		return Flag{}, err
	}
	f.mask = flagMask(start, stop)
	return f, nil
}

// MustFlag is NewFlag that panics on invalid ranges. Intended for static
// data dictionary tables.
func MustFlag(name string, start, stop uint) Flag {
	f, err := NewFlag(name, start, stop)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Flag) validate() error {
	if f.Start > f.Stop {
		return &SchemaError{Field: f.Name, Reason: "flag start index above stop index"}
	}
	if f.Stop > 32 {
		return &SchemaError{Field: f.Name, Reason: "flag stop index beyond 32 bits"}
	}
	return nil
}

func flagMask(start, stop uint) uint32 {
	var m uint32
	for i := start; i < stop; i++ {
		m |= 1 << i
	}
	return m
}

// Decode extracts the flag's bits from an already-decoded word.
func (f Flag) Decode(word uint32) uint32 {
	return (word & f.mask) >> f.Start
}

// BitField is a single word of Width bytes split into named Flags.
type BitField struct {
	Name  string
	Width int
	Flags []Flag
}

func (BitField) sealed() {}

// RepeatedBlock is an ordered inner layout repeated a per-decode resolved
// number of times. Inner descriptors may not themselves be RepeatedBlocks.
type RepeatedBlock struct {
	Name  string
	Inner []Descriptor
}

func (RepeatedBlock) sealed() {}

// cursor is a forward-only view over a payload buffer.
type cursor struct {
	buf []byte
	off int
}

func (c *cursor) take(n int) ([]byte, error) {
	if c.off+n > len(c.buf) {
		return nil, ErrTruncated
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func decodeDescriptor(d Descriptor, cur *cursor, fields *orderedmap.OrderedMap[string, any], repeat int) error {
	switch t := d.(type) {
	case Pad:
		_, err := cur.take(t.Count)
		return err
	case Scalar:
		v, err := t.decode(cur)
		if err != nil {
			return err
		}
		fields.Set(t.Name, v)
		return nil
	case BitField:
		v, err := t.decode(cur)
		if err != nil {
			return err
		}
		fields.Set(t.Name, v)
		return nil
	case RepeatedBlock:
		v, err := t.decode(cur, repeat)
		if err != nil {
			return err
		}
		fields.Set(t.Name, v)
		return nil
	default:
		return &SchemaError{Reason: "unknown descriptor variant"}
	}
}

func (s Scalar) decode(cur *cursor) (any, error) {
	if s.Kind == KindStr {
		raw, err := cur.take(s.Count)
		if err != nil {
			return nil, err
		}
		return decodeASCII(raw), nil
	}
	if s.Kind == KindCh && s.Count > 1 {
		raw, err := cur.take(s.Count)
		if err != nil {
			return nil, err
		}
		out := make([]byte, s.Count)
		copy(out, raw)
		return out, nil
	}
	if s.Count == 1 {
		return decodeElement(s.Kind, cur)
	}
	switch s.Kind {
	case KindU1, KindU2, KindU4:
		out := make([]uint64, s.Count)
		for i := range out {
			v, err := decodeElement(s.Kind, cur)
			if err != nil {
				return nil, err
			}
			out[i] = v.(uint64)
		}
		return out, nil
	case KindI1, KindI2, KindI4:
		out := make([]int64, s.Count)
		for i := range out {
			v, err := decodeElement(s.Kind, cur)
			if err != nil {
				return nil, err
			}
			out[i] = v.(int64)
		}
		return out, nil
	case KindR4:
		out := make([]float32, s.Count)
		for i := range out {
			v, err := decodeElement(s.Kind, cur)
			if err != nil {
				return nil, err
			}
			out[i] = v.(float32)
		}
		return out, nil
	case KindR8:
		out := make([]float64, s.Count)
		for i := range out {
			v, err := decodeElement(s.Kind, cur)
			if err != nil {
				return nil, err
			}
			out[i] = v.(float64)
		}
		return out, nil
	default:
		return nil, &SchemaError{Field: s.Name, Reason: "invalid scalar kind"}
	}
}

func decodeElement(k Kind, cur *cursor) (any, error) {
	raw, err := cur.take(k.Size())
	if err != nil {
		return nil, err
	}
	switch k {
	case KindU1:
		return uint64(raw[0]), nil
	case KindI1:
		return int64(int8(raw[0])), nil
	case KindU2:
		return uint64(binary.LittleEndian.Uint16(raw)), nil
	case KindI2:
		return int64(int16(binary.LittleEndian.Uint16(raw))), nil
	case KindU4:
		return uint64(binary.LittleEndian.Uint32(raw)), nil
	case KindI4:
		return int64(int32(binary.LittleEndian.Uint32(raw))), nil
	case KindR4:
		return math.Float32frombits(binary.LittleEndian.Uint32(raw)), nil
	case KindR8:
		return math.Float64frombits(binary.LittleEndian.Uint64(raw)), nil
	case KindCh:
		return raw[0], nil
	default:
		return nil, &SchemaError{Reason: "invalid scalar kind"}
	}
}

// decodeASCII strips trailing NUL padding and substitutes '?' for any byte
// outside printable ASCII. Substitution is total; string decode never fails.
func decodeASCII(raw []byte) string {
	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	out := make([]byte, end)
	for i, b := range raw[:end] {
		if b < 0x20 || b > 0x7E {
			out[i] = '?'
			continue
		}
		out[i] = b
	}
	return string(out)
}

func (b BitField) decode(cur *cursor) (*orderedmap.OrderedMap[string, uint32], error) {
	raw, err := cur.take(b.Width)
	if err != nil {
		return nil, err
	}
	var word uint32
	switch b.Width {
	case 1:
		word = uint32(raw[0])
	case 2:
		word = uint32(binary.LittleEndian.Uint16(raw))
	case 4:
		word = binary.LittleEndian.Uint32(raw)
	}
	out := orderedmap.NewOrderedMapWithCapacity[string, uint32](len(b.Flags))
	for _, f := range b.Flags {
		out.Set(f.Name, f.Decode(word))
	}
	return out, nil
}

func (r RepeatedBlock) decode(cur *cursor, repeat int) ([]*orderedmap.OrderedMap[string, any], error) {
	out := make([]*orderedmap.OrderedMap[string, any], 0, repeat+1)
	for i := 0; i <= repeat; i++ {
		rep := orderedmap.NewOrderedMap[string, any]()
		for _, d := range r.Inner {
			if err := decodeDescriptor(d, cur, rep, 0); err != nil {
				return nil, err
			}
		}
		out = append(out, rep)
	}
	return out, nil
}

// wireSize returns the fixed encoded size of a descriptor. RepeatedBlock
// reports the size of one repetition.
func wireSize(d Descriptor) int {
	switch t := d.(type) {
	case Pad:
		return t.Count
	case Scalar:
		return t.Kind.Size() * t.Count
	case BitField:
		return t.Width
	case RepeatedBlock:
		n := 0
		for _, inner := range t.Inner {
			n += wireSize(inner)
		}
		return n
	default:
		return 0
	}
}
