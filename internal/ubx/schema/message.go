package schema

import (
	"github.com/elliotchance/orderedmap/v3"
)

// Record is one fully decoded message. Fields preserve declaration order;
// a BitField value is an ordered flag map and a RepeatedBlock value is a
// slice of ordered maps, one per repetition. Records are created fresh per
// decode and never share state with the schema that produced them.
type Record struct {
	Class   string
	Message string
	Fields  *orderedmap.OrderedMap[string, any]
}

// Message is the validated, immutable layout of one message type. All
// per-decode state (cursor, repeat count, partial fields) lives in call
// locals so one Message may serve concurrent readers.
type Message struct {
	id    uint8
	name  string
	descs []Descriptor

	hasRepeat bool
	baseSize  int // fixed size of all non-repeated descriptors
	unitSize  int // size of one repetition, 0 when no RepeatedBlock
}

// NewMessage validates the descriptor list and returns an immutable message
// schema. Descriptors are deep-copied; later mutation of the arguments does
// not affect the schema.
func NewMessage(id int, name string, descs []Descriptor) (*Message, error) {
	if id < 0 || id > 0xFF {
		return nil, &SchemaError{Message: name, Reason: "message id out of range 0x00..0xFF"}
	}
	m := &Message{id: uint8(id), name: name, descs: make([]Descriptor, 0, len(descs))}
	for _, d := range descs {
		norm, err := normalize(d, name, false)
		if err != nil {
			return nil, err
		}
		if _, ok := norm.(RepeatedBlock); ok {
			if m.hasRepeat {
				return nil, &SchemaError{Message: name, Reason: "multiple repeated blocks in one message"}
			}
			m.hasRepeat = true
			m.unitSize = wireSize(norm)
			if m.unitSize == 0 {
				return nil, &SchemaError{Message: name, Reason: "zero-size repeat unit"}
			}
		} else {
			m.baseSize += wireSize(norm)
		}
		m.descs = append(m.descs, norm)
	}
	return m, nil
}

// MustMessage is NewMessage that panics on invalid layouts. Intended for
// static data dictionary tables.
func MustMessage(id int, name string, descs ...Descriptor) *Message {
	m, err := NewMessage(id, name, descs)
	if err != nil {
		panic(err)
	}
	return m
}

// normalize validates one descriptor and returns a private copy with flag
// masks filled in.
func normalize(d Descriptor, msg string, inner bool) (Descriptor, error) {
	switch t := d.(type) {
	case Pad:
		if t.Count < 1 {
			return nil, &SchemaError{Message: msg, Reason: "pad count below 1"}
		}
		return t, nil
	case Scalar:
		if !t.Kind.valid() {
			return nil, &SchemaError{Message: msg, Field: t.Name, Reason: "invalid scalar kind"}
		}
		if t.Count < 1 {
			return nil, &SchemaError{Message: msg, Field: t.Name, Reason: "scalar count below 1"}
		}
		return t, nil
	case BitField:
		if t.Width != 1 && t.Width != 2 && t.Width != 4 {
			return nil, &SchemaError{Message: msg, Field: t.Name, Reason: "bit field width not 1, 2 or 4"}
		}
		flags := make([]Flag, len(t.Flags))
		for i, f := range t.Flags {
			if err := f.validate(); err != nil {
				return nil, err
			}
			if f.Stop > uint(t.Width)*8 {
				return nil, &SchemaError{Message: msg, Field: f.Name, Reason: "flag stop index beyond bit field width"}
			}
			f.mask = flagMask(f.Start, f.Stop)
			flags[i] = f
		}
		return BitField{Name: t.Name, Width: t.Width, Flags: flags}, nil
	case RepeatedBlock:
		if inner {
			return nil, &SchemaError{Message: msg, Field: t.Name, Reason: "nested repeated block"}
		}
		ds := make([]Descriptor, len(t.Inner))
		for i, in := range t.Inner {
			norm, err := normalize(in, msg, true)
			if err != nil {
				return nil, err
			}
			ds[i] = norm
		}
		return RepeatedBlock{Name: t.Name, Inner: ds}, nil
	default:
		return nil, &SchemaError{Message: msg, Reason: "unknown descriptor variant"}
	}
}

// ID returns the message id.
func (m *Message) ID() uint8 { return m.id }

// Name returns the message name.
func (m *Message) Name() string { return m.name }

// Size returns the total wire size for the given repeat count. The repeat
// count is zero-based: a RepeatedBlock with count k occupies k+1 repetitions.
func (m *Message) Size(repeat int) int {
	if !m.hasRepeat {
		return m.baseSize
	}
	return m.baseSize + (repeat+1)*m.unitSize
}

// resolveRepeat finds the repeat count whose total size equals the payload
// length. The linear search is intentional: payloads are at most a few
// hundred bytes, and it rejects any length that is not base plus a positive
// multiple of the unit size.
func (m *Message) resolveRepeat(payloadLen int) (int, error) {
	if !m.hasRepeat {
		if m.baseSize != payloadLen {
			return 0, &LengthMismatchError{Message: m.name, Expected: m.baseSize, Actual: payloadLen}
		}
		return 0, nil
	}
	for k := 0; ; k++ {
		total := m.Size(k)
		if total == payloadLen {
			return k, nil
		}
		if total > payloadLen {
			return 0, &LengthMismatchError{Message: m.name, Expected: total, Actual: payloadLen}
		}
	}
}

// Decode resolves the repeat count for the payload and decodes it into a
// fresh record. Decoding is all-or-nothing; no partial record is returned.
func (m *Message) Decode(payload []byte) (*Record, error) {
	repeat, err := m.resolveRepeat(len(payload))
	if err != nil {
		return nil, err
	}
	cur := &cursor{buf: payload}
	fields := orderedmap.NewOrderedMap[string, any]()
	for _, d := range m.descs {
		if err := decodeDescriptor(d, cur, fields, repeat); err != nil {
			return nil, err
		}
	}
	return &Record{Message: m.name, Fields: fields}, nil
}
