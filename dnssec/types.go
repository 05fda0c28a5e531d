package dnssec

import (
	"github.com/miekg/dns"
)

type Zone interface {
	Name() string
	GetDNSKEYRecords() ([]dns.RR, error)
}

type result struct {
	name string
	zone Zone
	msg  *dns.Msg

	keys      signatures
	answer    signatures
	authority signatures

	err error

	dsRecords []*dns.DS

	state             AuthenticationResult
	denialOfExistence DenialOfExistenceState
}

type signatures []*signature

// Represents a single signature (rrsig), along with its key, and the records is signs.
type signature struct {
	zone string

	name  string
	rtype uint16

	key   *dns.DNSKEY
	rrsig *dns.RRSIG
	rrset []dns.RR

	wildcard bool

	verified bool
	err      error

	dsSha256 string // For debugging
}
