// Package stun implements Session Traversal Utilities for NAT (STUN),
// RFC 8489.
//
// Definitions
//
// STUN Agent: an entity that implements the STUN protocol, either a STUN
// client or a STUN server.
//
// STUN Client: an entity that sends STUN requests and receives STUN
// responses. A STUN client can also send indications.
//
// STUN Server: an entity that receives STUN requests and sends STUN
// responses. A STUN server can also send indications.
//
// Transport Address: the combination of an IP address and port number.
//
// The package is a synchronous, stateless codec: Message.Encode and
// Message.Decode operate only on the byte slices handed to them, so any
// number of goroutines may build or parse independent messages
// concurrently. Transport (UDP/TCP/TLS/DTLS listening, dispatch) is
// outside this package; see the stunnet subpackage for the narrow
// interface the rest of a server needs.
package stun

import "encoding/binary"

// bin is shorthand for binary.BigEndian, the byte order used throughout
// the STUN wire format.
var bin = binary.BigEndian //nolint:gochecknoglobals

// DefaultPort is the IANA-assigned port for unencrypted STUN over UDP/TCP.
const DefaultPort = 3478

// DefaultPortDTLS is the IANA-assigned port for STUN over TLS/DTLS.
const DefaultPortDTLS = 5349
