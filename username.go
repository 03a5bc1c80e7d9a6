package stun

import "errors"

const maxUsernameB = 513

// ErrUsernameTooBig means that the USERNAME value is bigger than 513 bytes.
var ErrUsernameTooBig = errors.New("USERNAME value bigger than 513 bytes")

// Username represents the USERNAME attribute: the UTF-8 identity used in
// short-term credentials, or the cleartext identity in long-term
// credentials when anonymity is not requested (see auth.go).
//
// RFC 8489 Section 14.3.
type Username struct {
	Raw []byte
}

// NewUsername returns a Username with the given value.
func NewUsername(username string) *Username {
	return &Username{Raw: []byte(username)}
}

func (u Username) String() string {
	return string(u.Raw)
}

// AddTo adds USERNAME to message.
func (u *Username) AddTo(m *Message) error {
	if len(u.Raw) > maxUsernameB {
		return ErrUsernameTooBig
	}
	m.Add(AttrUsername, u.Raw)

	return nil
}

// GetFrom decodes USERNAME from message.
func (u *Username) GetFrom(m *Message) error {
	v, err := m.Get(AttrUsername)
	if err != nil {
		return err
	}
	if err := checkUTF8("USERNAME", v); err != nil {
		return err
	}
	u.Raw = v

	return nil
}
