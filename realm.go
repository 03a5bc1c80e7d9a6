package stun

import "errors"

const maxRealmB = 763

// ErrRealmTooBig means that the REALM value is bigger than 763 bytes.
var ErrRealmTooBig = errors.New("REALM value bigger than 763 bytes")

// Realm represents the REALM attribute: the long-term credential
// realm, fed into USERHASH and the long-term key derivation (auth.go).
// Input is accepted verbatim; SASLprep normalization is out of scope.
//
// RFC 8489 Section 14.9.
type Realm struct {
	Raw []byte
}

// NewRealm returns a Realm with the given value.
func NewRealm(realm string) *Realm {
	return &Realm{Raw: []byte(realm)}
}

func (r Realm) String() string {
	return string(r.Raw)
}

// AddTo adds REALM to message.
func (r *Realm) AddTo(m *Message) error {
	if len(r.Raw) > maxRealmB {
		return ErrRealmTooBig
	}
	m.Add(AttrRealm, r.Raw)

	return nil
}

// GetFrom decodes REALM from message.
func (r *Realm) GetFrom(m *Message) error {
	v, err := m.Get(AttrRealm)
	if err != nil {
		return err
	}
	if err := checkUTF8("REALM", v); err != nil {
		return err
	}
	r.Raw = v

	return nil
}
