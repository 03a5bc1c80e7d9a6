package stun

// Setter applies itself to a Message, adding or mutating attributes.
type Setter interface {
	AddTo(m *Message) error
}

// Getter extracts itself from a decoded Message.
type Getter interface {
	GetFrom(m *Message) error
}

// Checker verifies a property of a decoded Message (e.g. an integrity or
// fingerprint attribute) without mutating it.
type Checker interface {
	Check(m *Message) error
}

// Build resets m, writes the header, and applies setters in order. Setters
// that compute a MAC or CRC (MessageIntegrity, MessageIntegritySHA256,
// Fingerprint) rely on being applied after every attribute they must cover,
// so order matters: see RFC 8489 Section 14.5-14.6.
func (m *Message) Build(setters ...Setter) error {
	m.Reset()
	m.WriteHeader()
	for _, s := range setters {
		if err := s.AddTo(m); err != nil {
			return err
		}
	}
	// Write m.Length into the header once more now that every Setter has
	// run, so the on-wire length field holds the final size.
	m.WriteLength()

	return nil
}

// Check runs checkers against m in order, stopping at the first error.
func (m *Message) Check(checkers ...Checker) error {
	for _, c := range checkers {
		if err := c.Check(m); err != nil {
			return err
		}
	}

	return nil
}

// Parse runs getters against m in order, stopping at the first error. It
// does not decode m.Raw itself: m must already be decoded (e.g. via Write).
func (m *Message) Parse(getters ...Getter) error {
	for _, g := range getters {
		if err := g.GetFrom(m); err != nil {
			return err
		}
	}

	return nil
}

// Build is a package-level convenience that builds a fresh Message.
func Build(setters ...Setter) (*Message, error) {
	m := new(Message)

	return m, m.Build(setters...)
}

// MustBuild is like Build but panics on error. Intended for tests and
// fixed-shape construction where the setter list is known not to fail.
func MustBuild(setters ...Setter) *Message {
	m, err := Build(setters...)
	if err != nil {
		panic(err)
	}

	return m
}
