package stun

// OutgoingMessage describes a STUN message to build: its transaction id,
// class/method and attributes, an optional authentication exchange, and
// whether to append SOFTWARE and/or FINGERPRINT as the final attributes.
//
// RFC 8489 Section 6.
type OutgoingMessage struct {
	Class  MessageClass
	Method Method

	// TransactionID is used verbatim if non-zero; otherwise Encode
	// generates a fresh random one (the common case for requests).
	TransactionID [TransactionIDSize]byte

	// Attributes are method-specific setters, applied before
	// authentication so that MESSAGE-INTEGRITY (if requested) covers
	// them too.
	Attributes []Setter

	// Credentials, if non-nil, authenticates the message per Integrity.
	Credentials Credentials
	Integrity   Integrity

	// Software, if non-empty, is appended as SOFTWARE.
	Software string
	// Fingerprint, if true, appends FINGERPRINT as the very last
	// attribute (invariant 3).
	Fingerprint bool
}

// Encode builds the wire image of o: header, method-specific attributes,
// authentication attributes, then SOFTWARE and FINGERPRINT. The length
// field is kept correct incrementally by Message.Add/Build as each
// attribute is appended (Section 4.2), so MESSAGE-INTEGRITY and
// FINGERPRINT see the right prefix automatically provided they're applied
// last, in that order.
func (o OutgoingMessage) Encode() ([]byte, error) {
	m := New()
	m.Type = MessageType{Class: o.Class, Method: o.Method}
	if o.TransactionID == ([TransactionIDSize]byte{}) {
		m.TransactionID = NewTransactionID()
	} else {
		m.TransactionID = o.TransactionID
	}
	m.WriteHeader()

	for _, s := range o.Attributes {
		if err := s.AddTo(m); err != nil {
			return nil, err
		}
	}

	if o.Credentials != nil {
		if err := Authenticate(o.Credentials, o.Integrity).AddTo(m); err != nil {
			return nil, err
		}
	}

	if o.Software != "" {
		if err := NewSoftware(o.Software).AddTo(m); err != nil {
			return nil, err
		}
	}

	if o.Fingerprint {
		if err := Fingerprint.AddTo(m); err != nil {
			return nil, err
		}
	}

	// Write m.Length into the header once more now that every attribute
	// (and the integrity/fingerprint Setters' pre-bump and restore) is
	// done, so the on-wire length field holds the final value.
	m.WriteLength()

	return append([]byte(nil), m.Raw...), nil
}
