package stun

import "errors"

const maxNonceB = 763

// ErrNonceTooBig means that the NONCE value is bigger than 763 bytes.
var ErrNonceTooBig = errors.New("NONCE value bigger than 763 bytes")

// Nonce represents the NONCE attribute: an opaque server-issued challenge
// echoed back in a long-term credential exchange. Unlike USERNAME/REALM,
// its value is not required to be valid UTF-8.
//
// RFC 8489 Section 14.10.
type Nonce struct {
	Raw []byte
}

// NewNonce returns a Nonce with the given value.
func NewNonce(nonce string) *Nonce {
	return &Nonce{Raw: []byte(nonce)}
}

func (n Nonce) String() string {
	return string(n.Raw)
}

// AddTo adds NONCE to message.
func (n *Nonce) AddTo(m *Message) error {
	if len(n.Raw) > maxNonceB {
		return ErrNonceTooBig
	}
	m.Add(AttrNonce, n.Raw)

	return nil
}

// GetFrom decodes NONCE from message.
func (n *Nonce) GetFrom(m *Message) error {
	v, err := m.Get(AttrNonce)
	if err != nil {
		return err
	}
	n.Raw = v

	return nil
}
