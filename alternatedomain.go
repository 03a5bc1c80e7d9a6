package stun

import "errors"

const maxAlternateDomainB = 763

// ErrAlternateDomainTooBig means that the ALTERNATE-DOMAIN value is bigger
// than 763 bytes.
var ErrAlternateDomainTooBig = errors.New("ALTERNATE-DOMAIN value bigger than 763 bytes")

// AlternateDomain represents the ALTERNATE-DOMAIN attribute, carrying the
// domain name of a server an ALTERNATE-SERVER response redirects the
// client to (used for TLS/DTLS certificate validation against that name).
//
// RFC 8489 Section 14.14 references this alongside SOFTWARE; same text
// framing and size limit.
type AlternateDomain struct {
	Raw []byte
}

// NewAlternateDomain returns an AlternateDomain with the given value.
func NewAlternateDomain(domain string) *AlternateDomain {
	return &AlternateDomain{Raw: []byte(domain)}
}

func (d *AlternateDomain) String() string {
	return string(d.Raw)
}

// AddTo adds ALTERNATE-DOMAIN to message.
func (d *AlternateDomain) AddTo(m *Message) error {
	if len(d.Raw) > maxAlternateDomainB {
		return ErrAlternateDomainTooBig
	}
	m.Add(AttrAlternateDomain, d.Raw)

	return nil
}

// GetFrom decodes ALTERNATE-DOMAIN from message.
func (d *AlternateDomain) GetFrom(m *Message) error {
	v, err := m.Get(AttrAlternateDomain)
	if err != nil {
		return err
	}
	if err := checkUTF8("ALTERNATE-DOMAIN", v); err != nil {
		return err
	}
	d.Raw = v

	return nil
}
