package stun

// UnknownAttributes represents the UNKNOWN-ATTRIBUTES attribute: the list
// of comprehension-required attribute types an error response rejected
// because it didn't recognize them.
//
// RFC 8489 Section 14.13. Each entry is encoded as a full 2-byte type
// (not 1 byte): the attribute's value is simply the concatenation of the
// rejected types, padded to 4-byte alignment if the count is odd.
type UnknownAttributes []AttrType

// AddTo adds UNKNOWN-ATTRIBUTES to message.
func (a UnknownAttributes) AddTo(m *Message) error {
	v := make([]byte, len(a)*2)
	for i, t := range a {
		bin.PutUint16(v[i*2:i*2+2], t.Value())
	}
	m.Add(AttrUnknownAttributes, v)

	return nil
}

// GetFrom decodes UNKNOWN-ATTRIBUTES from message.
func (a *UnknownAttributes) GetFrom(m *Message) error {
	v, err := m.Get(AttrUnknownAttributes)
	if err != nil {
		return err
	}
	if len(v)%2 != 0 {
		return &DecodeErr{Kind: BadLength, Reason: "UNKNOWN-ATTRIBUTES value must be a whole number of 2-byte entries"}
	}
	*a = (*a)[:0]
	for i := 0; i+2 <= len(v); i += 2 {
		*a = append(*a, AttrType(bin.Uint16(v[i:i+2])))
	}

	return nil
}
