package stun

// Integrity is the set of integrity attributes an authentication exchange
// requests. The set drives which attributes Authenticate appends, always
// in SHA-1-then-SHA-256 order when both are requested.
//
// RFC 8489 Section 14.5-14.6.
type Integrity int

// Possible requested integrity sets.
const (
	IntegritySha1 Integrity = iota
	IntegritySha256
	IntegrityBoth
)

func (i Integrity) wantsSha1() bool   { return i == IntegritySha1 || i == IntegrityBoth }
func (i Integrity) wantsSha256() bool { return i == IntegritySha256 || i == IntegrityBoth }

// Credentials is either ShortTermCredentials or LongTermCredentials: the
// two ways a STUN request can authenticate itself (RFC 8489 Section 9-10).
type Credentials interface {
	authSetters(integrity Integrity) []Setter
}

// ShortTermCredentials authenticates with a username and a password
// shared out of band (e.g. via ICE's SDP exchange).
type ShortTermCredentials struct {
	Username string
	Password string
}

func (c ShortTermCredentials) authSetters(integrity Integrity) []Setter {
	setters := []Setter{NewUsername(c.Username)}
	if integrity.wantsSha1() {
		setters = append(setters, NewShortTermIntegrity(c.Password))
	}
	if integrity.wantsSha256() {
		setters = append(setters, NewShortTermIntegritySHA256(c.Password))
	}

	return setters
}

// LongTermCredentials authenticates against a server-issued NONCE/REALM
// challenge. When Anonymity is set, USERHASH replaces USERNAME on the
// wire (RFC 8489 Section 14.11). Algorithm selects the long-term key
// derivation hash; its zero value means MD5 and PASSWORD-ALGORITHM is
// omitted (the RFC 8489 default), matching legacy RFC 5389 peers.
type LongTermCredentials struct {
	Username  string
	Nonce     string
	Realm     string
	Password  string
	Anonymity bool
	Algorithm PasswordAlgorithm
}

func (c LongTermCredentials) algorithm() PasswordAlgorithm {
	if c.Algorithm == 0 {
		return AlgorithmMD5
	}

	return c.Algorithm
}

func (c LongTermCredentials) authSetters(integrity Integrity) []Setter {
	var setters []Setter
	if c.Anonymity {
		setters = append(setters, NewUserhash(c.Username, c.Realm))
	} else {
		setters = append(setters, NewUsername(c.Username))
	}
	setters = append(setters, NewNonce(c.Nonce), NewRealm(c.Realm))

	algo := c.algorithm()
	if c.Algorithm != 0 {
		setters = append(setters, PasswordAlgorithms{Algorithms: []PasswordAlgorithmAttr{{Algorithm: algo}}})
	}

	if integrity.wantsSha1() {
		setters = append(setters, NewLongTermIntegrity(c.Username, c.Realm, c.Password, algo))
	}
	if integrity.wantsSha256() {
		setters = append(setters, NewLongTermIntegritySHA256(c.Username, c.Realm, c.Password, algo))
	}

	return setters
}

// Authenticate returns a Setter that applies creds' full authentication
// attribute sequence - USERNAME or USERHASH, then (for long-term) NONCE,
// REALM, and PASSWORD-ALGORITHM, then the requested integrity
// attribute(s) - in the order RFC 8489 Section 9.1-9.2 and 14.5-14.6
// require.
func Authenticate(creds Credentials, integrity Integrity) Setter {
	return authenticator{creds: creds, integrity: integrity}
}

type authenticator struct {
	creds     Credentials
	integrity Integrity
}

func (a authenticator) AddTo(m *Message) error {
	for _, s := range a.creds.authSetters(a.integrity) {
		if err := s.AddTo(m); err != nil {
			return err
		}
	}

	return nil
}

// AuthenticationView is the decoded authentication-related attributes of
// an IncomingMessage: whichever of USERNAME/USERHASH, NONCE, REALM,
// PASSWORD-ALGORITHM, MESSAGE-INTEGRITY, and MESSAGE-INTEGRITY-SHA256
// were present. A caller verifies integrity against it by looking up the
// matching key out of band and calling VerifyShortTerm/VerifyLongTerm.
type AuthenticationView struct {
	Username        *Username
	Userhash        *Userhash
	Nonce           *Nonce
	Realm           *Realm
	PasswordAlgo    *PasswordAlgorithmAttr
	HasIntegrity    bool
	HasIntegritySHA bool
}

// authenticatedAttributes returns the prefix of m.Attributes a receiver
// may trust for authentication purposes: everything up to and including
// the first MESSAGE-INTEGRITY, plus MESSAGE-INTEGRITY-SHA256 and
// FINGERPRINT if they follow it. RFC 8489 Section 14.5-14.6 require
// MESSAGE-INTEGRITY to be the last attribute except for those two, so
// anything else appearing after it falls outside the MAC's coverage and
// must not be allowed to influence authentication or the
// UNKNOWN-ATTRIBUTES response.
func authenticatedAttributes(m *Message) Attributes {
	out := make(Attributes, 0, len(m.Attributes))
	pastIntegrity := false
	for _, a := range m.Attributes {
		if pastIntegrity && a.Type != AttrMessageIntegritySHA256 && a.Type != AttrFingerprint {
			continue
		}
		out = append(out, a)
		if a.Type == AttrMessageIntegrity {
			pastIntegrity = true
		}
	}

	return out
}

// authenticationViewFrom decodes the authentication-related attributes
// present on m, if any, restricted to authenticatedAttributes(m). A
// message with none of them returns a zero AuthenticationView and no
// error.
func authenticationViewFrom(m *Message) (AuthenticationView, error) {
	var view AuthenticationView

	trusted := &Message{Attributes: authenticatedAttributes(m)}

	if _, ok := trusted.Attributes.Get(AttrUsername); ok {
		var u Username
		if err := u.GetFrom(trusted); err != nil {
			return view, err
		}
		view.Username = &u
	}
	if _, ok := trusted.Attributes.Get(AttrUserhash); ok {
		var u Userhash
		if err := u.GetFrom(trusted); err != nil {
			return view, err
		}
		view.Userhash = &u
	}
	if _, ok := trusted.Attributes.Get(AttrNonce); ok {
		var n Nonce
		if err := n.GetFrom(trusted); err != nil {
			return view, err
		}
		view.Nonce = &n
	}
	if _, ok := trusted.Attributes.Get(AttrRealm); ok {
		var r Realm
		if err := r.GetFrom(trusted); err != nil {
			return view, err
		}
		view.Realm = &r
	}
	if _, ok := trusted.Attributes.Get(AttrPasswordAlgorithm); ok {
		var p PasswordAlgorithms
		if err := p.GetFrom(trusted); err != nil {
			return view, err
		}
		if len(p.Algorithms) > 0 {
			view.PasswordAlgo = &p.Algorithms[0]
		}
	}
	_, view.HasIntegrity = trusted.Attributes.Get(AttrMessageIntegrity)
	_, view.HasIntegritySHA = trusted.Attributes.Get(AttrMessageIntegritySHA256)

	return view, nil
}

// VerifyShortTerm checks m's MESSAGE-INTEGRITY and/or
// MESSAGE-INTEGRITY-SHA256 (whichever is present) against password,
// treated as a short-term credential key.
func VerifyShortTerm(m *Message, password string) error {
	if _, ok := m.Attributes.Get(AttrMessageIntegrity); ok {
		if err := NewShortTermIntegrity(password).Check(m); err != nil {
			return err
		}
	}
	if _, ok := m.Attributes.Get(AttrMessageIntegritySHA256); ok {
		if err := NewShortTermIntegritySHA256(password).Check(m); err != nil {
			return err
		}
	}

	return nil
}

// VerifyLongTerm checks m's MESSAGE-INTEGRITY and/or
// MESSAGE-INTEGRITY-SHA256 against the long-term key derived from
// username, realm, and password using algorithm (AlgorithmMD5 if the
// message carried no PASSWORD-ALGORITHM).
func VerifyLongTerm(m *Message, username, realm, password string, algorithm PasswordAlgorithm) error {
	if algorithm == 0 {
		algorithm = AlgorithmMD5
	}
	if _, ok := m.Attributes.Get(AttrMessageIntegrity); ok {
		if err := NewLongTermIntegrity(username, realm, password, algorithm).Check(m); err != nil {
			return err
		}
	}
	if _, ok := m.Attributes.Get(AttrMessageIntegritySHA256); ok {
		if err := NewLongTermIntegritySHA256(username, realm, password, algorithm).Check(m); err != nil {
			return err
		}
	}

	return nil
}
