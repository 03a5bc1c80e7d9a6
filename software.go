package stun

import "errors"

const softwareRawMaxB = 763

// ErrSoftwareTooBig means that the SOFTWARE value is bigger than 763 bytes
// (128 characters can require up to 4 bytes each in UTF-8).
var ErrSoftwareTooBig = errors.New(
	"SOFTWARE attribute bigger than 763 bytes or 128 characters",
)

// Software represents the SOFTWARE attribute: a free-text description of
// the agent, comprehension-optional.
//
// RFC 8489 Section 14.14.
type Software struct {
	Raw []byte
}

// NewSoftware returns a Software with the given value.
func NewSoftware(software string) *Software {
	return &Software{Raw: []byte(software)}
}

func (s *Software) String() string {
	return string(s.Raw)
}

// AddTo adds SOFTWARE to message.
func (s *Software) AddTo(m *Message) error {
	if len(s.Raw) > softwareRawMaxB {
		return ErrSoftwareTooBig
	}
	m.Add(AttrSoftware, s.Raw)

	return nil
}

// GetFrom decodes SOFTWARE from message.
func (s *Software) GetFrom(m *Message) error {
	v, err := m.Get(AttrSoftware)
	if err != nil {
		return err
	}
	if err := checkUTF8("SOFTWARE", v); err != nil {
		return err
	}
	s.Raw = v

	return nil
}
