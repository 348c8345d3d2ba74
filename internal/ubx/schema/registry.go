package schema

// Class groups message schemas under one class id. Mutable only while the
// registry is being built; decoding treats it as read-only.
type Class struct {
	id       uint8
	name     string
	messages map[uint8]*Message
}

// NewClass validates the class id and registers the given messages.
func NewClass(id int, name string, msgs ...*Message) (*Class, error) {
	if id < 0 || id > 0xFF {
		return nil, &SchemaError{Class: name, Reason: "class id out of range 0x00..0xFF"}
	}
	c := &Class{id: uint8(id), name: name, messages: make(map[uint8]*Message, len(msgs))}
	for _, m := range msgs {
		c.Register(m)
	}
	return c, nil
}

// MustClass is NewClass that panics on an invalid id. Intended for static
// data dictionary tables.
func MustClass(id int, name string, msgs ...*Message) *Class {
	c, err := NewClass(id, name, msgs...)
	if err != nil {
		panic(err)
	}
	return c
}

// ID returns the class id.
func (c *Class) ID() uint8 { return c.id }

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Register inserts a message schema, replacing any previous schema with the
// same id.
func (c *Class) Register(m *Message) {
	c.messages[m.ID()] = m
}

// Contains reports whether a message id is registered.
func (c *Class) Contains(msgID uint8) bool {
	_, ok := c.messages[msgID]
	return ok
}

// Registry is the two-level class/message schema table. Build it once before
// decoding starts; it is safe to share read-only across concurrent readers.
type Registry struct {
	classes map[uint8]*Class
}

// NewRegistry builds a registry from the given classes.
func NewRegistry(classes ...*Class) *Registry {
	r := &Registry{classes: make(map[uint8]*Class, len(classes))}
	for _, c := range classes {
		r.Register(c)
	}
	return r
}

// Register inserts a class, replacing any previous class with the same id.
func (r *Registry) Register(c *Class) {
	r.classes[c.ID()] = c
}

// ContainsClass reports whether a class id is registered.
func (r *Registry) ContainsClass(classID uint8) bool {
	_, ok := r.classes[classID]
	return ok
}

// Contains reports whether the (class id, message id) pair is registered.
func (r *Registry) Contains(classID, msgID uint8) bool {
	c, ok := r.classes[classID]
	return ok && c.Contains(msgID)
}

// Lookup returns the class and message names for a registered id pair.
func (r *Registry) Lookup(classID, msgID uint8) (clsName, msgName string, ok bool) {
	c, ok := r.classes[classID]
	if !ok {
		return "", "", false
	}
	m, ok := c.messages[msgID]
	if !ok {
		return "", "", false
	}
	return c.name, m.Name(), true
}

// Decode dispatches a payload to the registered message schema.
func (r *Registry) Decode(classID, msgID uint8, payload []byte) (*Record, error) {
	c, ok := r.classes[classID]
	if !ok {
		return nil, &UnknownMessageError{ClassID: classID, MessageID: msgID}
	}
	m, ok := c.messages[msgID]
	if !ok {
		return nil, &UnknownMessageError{ClassID: classID, MessageID: msgID, ClassKnown: true}
	}
	rec, err := m.Decode(payload)
	if err != nil {
		return nil, err
	}
	rec.Class = c.name
	return rec, nil
}
