package dnssec

import "github.com/miekg/dns"

// staticZone adapts an already-resolved DNSKEY RRset - typically a Good
// KeyEntry handed back by FindKey - to the Zone interface the verify_*
// validators expect, without needing a live lookup of their own.
type staticZone struct {
	name    string
	dnskeys []dns.RR
}

func (z staticZone) Name() string { return z.name }

func (z staticZone) GetDNSKEYRecords() ([]dns.RR, error) {
	return z.dnskeys, nil
}
