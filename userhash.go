package stun

import (
	"crypto/sha256"
	"errors"
)

// userhashSize is the fixed size of a USERHASH value: SHA-256 digest.
const userhashSize = sha256.Size

// ErrUserhashBadLength means the USERHASH value was not 32 bytes.
var ErrUserhashBadLength = errors.New("USERHASH value must be 32 bytes")

// Userhash represents the USERHASH attribute: SHA-256 of
// "username:realm", used to anonymize USERNAME on the wire for
// long-term-credential requests built with anonymity requested.
//
// RFC 8489 Section 14.11.
type Userhash struct {
	Raw [userhashSize]byte
}

// NewUserhash computes the USERHASH value for username and realm.
func NewUserhash(username, realm string) Userhash {
	h := sha256.Sum256([]byte(username + credentialsSep + realm))

	return Userhash{Raw: h}
}

// AddTo adds USERHASH to message.
func (u Userhash) AddTo(m *Message) error {
	m.Add(AttrUserhash, u.Raw[:])

	return nil
}

// GetFrom decodes USERHASH from message.
func (u *Userhash) GetFrom(m *Message) error {
	v, err := m.Get(AttrUserhash)
	if err != nil {
		return err
	}
	if len(v) != userhashSize {
		return ErrUserhashBadLength
	}
	copy(u.Raw[:], v)

	return nil
}
